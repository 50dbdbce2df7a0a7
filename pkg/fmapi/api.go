// Package fmapi serves the files manager's HTTP status surface.
package fmapi

import (
	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

type Api struct {
	Api    huma.API
	Router *chi.Mux
}

func NewApi() *Api {
	router := chi.NewMux()
	router.Use(middleware.RequestID)
	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)

	config := huma.DefaultConfig("Files Manager", "1.0.0")
	config.Info.Description = "Liveness and statistics of the files manager's document and key-value stores."

	api := humachi.New(router, config)

	return &Api{Api: api, Router: router}
}
