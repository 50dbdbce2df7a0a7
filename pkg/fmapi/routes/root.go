package routes

import (
	"github.com/danielgtaylor/huma/v2"
	"github.com/quatton/filesmanager/pkg/fmapi/services"
)

// RegisterAPI registers every route. svcs may be nil when only the OpenAPI
// document is needed.
func RegisterAPI(api huma.API, svcs *services.Services) {
	RegisterStatus(api, svcs)
}
