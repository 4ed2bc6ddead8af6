package application

import (
	"context"

	"github.com/alorle/iptv-catalog/internal/port/driven"
	"github.com/alorle/iptv-catalog/metrics"
)

// HealthService orchestrates health checks for the application and its dependencies.
type HealthService struct {
	repo driven.CatalogRepository
}

// NewHealthService creates a new health check service.
func NewHealthService(repo driven.CatalogRepository) *HealthService {
	return &HealthService{repo: repo}
}

// ComponentHealth represents the health status of a single component.
type ComponentHealth struct {
	Status string // "ok" or "error"
	Error  string // empty if status is "ok", otherwise contains error message
}

// HealthStatus represents the overall health status of the application.
type HealthStatus struct {
	Status  string          // "ok" if all components are healthy, "degraded" otherwise
	Catalog ComponentHealth // catalog repository health
}

// Check performs health checks on all dependencies.
func (s *HealthService) Check(ctx context.Context) HealthStatus {
	status := HealthStatus{
		Status:  "ok",
		Catalog: ComponentHealth{Status: "ok"},
	}

	if err := s.repo.Ping(ctx); err != nil {
		status.Catalog = ComponentHealth{
			Status: "error",
			Error:  err.Error(),
		}
		status.Status = "degraded"
		metrics.RecordHealthCheckFailure()
	}

	return status
}
