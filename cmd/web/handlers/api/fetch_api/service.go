// Package fetch_api exposes the fetch pipeline over HTTP.
package fetch_api

import (
	"context"

	"thirdcoast.systems/fetchbox/internal/format"
	"thirdcoast.systems/fetchbox/internal/jobs"
)

//go:generate mockgen -destination=mocks/mock_service.go -package=mocks thirdcoast.systems/fetchbox/cmd/web/handlers/api/fetch_api Service

// Service is satisfied by *pipeline.Service.
type Service interface {
	Submit(ctx context.Context, raw string, opts format.Options) (string, error)
	Open(id string) (jobs.Job, error)
	Delivered(j jobs.Job)
	Failed(j jobs.Job, cause error)
}
