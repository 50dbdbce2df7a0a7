package routes

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/quatton/filesmanager/pkg/fmapi/schemas"
	"github.com/quatton/filesmanager/pkg/fmapi/services"
)

type StatusOutput struct {
	Body schemas.StatusResponse
}

type StatsOutput struct {
	Body schemas.StatsResponse
}

type HealthOutput struct {
	Body schemas.HealthResponse
}

// RegisterStatus registers GET /health, GET /status and GET /stats. All of them
// answer 200; an unavailable store shows up as degraded, false or 0.
func RegisterStatus(api huma.API, svcs *services.Services) {
	huma.Register(api, huma.Operation{
		OperationID: "health-check",
		Method:      http.MethodGet,
		Path:        "/health",
		Summary:     "Health check",
		Description: "Folds both store liveness flags into a single ok or degraded",
		Tags:        []string{"General"},
	}, func(ctx context.Context, input *struct{}) (*HealthOutput, error) {
		resp := &HealthOutput{}
		resp.Body.Status = "degraded"
		if svcs.KV.IsAlive() && svcs.DB.IsAlive() {
			resp.Body.Status = "ok"
		}
		return resp, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "get-status",
		Method:      http.MethodGet,
		Path:        "/status",
		Summary:     "Store liveness",
		Description: "Reports whether the key-value store and the document store are alive",
		Tags:        []string{"General"},
	}, func(ctx context.Context, input *struct{}) (*StatusOutput, error) {
		resp := &StatusOutput{}
		resp.Body.Redis = svcs.KV.IsAlive()
		resp.Body.DB = svcs.DB.IsAlive()
		return resp, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "get-stats",
		Method:      http.MethodGet,
		Path:        "/stats",
		Summary:     "Collection sizes",
		Description: "Returns the number of users and files in the document store",
		Tags:        []string{"General"},
	}, func(ctx context.Context, input *struct{}) (*StatsOutput, error) {
		resp := &StatsOutput{}
		resp.Body.Users = svcs.DB.NbUsers(ctx)
		resp.Body.Files = svcs.DB.NbFiles(ctx)
		return resp, nil
	})
}
