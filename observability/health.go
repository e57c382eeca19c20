package observability

import "context"

// HealthStatus is the health state of a component or the whole service.
type HealthStatus string

const (
	HealthStatusUp       HealthStatus = "up"
	HealthStatusDown     HealthStatus = "down"
	HealthStatusDegraded HealthStatus = "degraded"
)

// Health describes a single component: the HTTP server, the model, the
// transcription engine.
type Health struct {
	Name    string            `json:"name"`
	Status  HealthStatus      `json:"status"`
	Message string            `json:"message,omitempty"`
	Details map[string]string `json:"details,omitempty"`
}

// ServiceHealth aggregates component health into an overall service status.
type ServiceHealth struct {
	Service    string       `json:"service"`
	Status     HealthStatus `json:"status"`
	Version    string       `json:"version,omitempty"`
	Components []Health     `json:"components,omitempty"`
}

// HealthChecker is implemented by components that can report their health.
type HealthChecker interface {
	CheckHealth(ctx context.Context) Health
}

// severity orders statuses so aggregation can take the worst one seen.
var severity = map[HealthStatus]int{
	HealthStatusUp:       0,
	HealthStatusDegraded: 1,
	HealthStatusDown:     2,
}

// NewServiceHealth creates a ServiceHealth that starts out up.
func NewServiceHealth(service, version string) *ServiceHealth {
	return &ServiceHealth{
		Service: service,
		Status:  HealthStatusUp,
		Version: version,
	}
}

// AddComponent records a component result. The overall status only ever
// worsens: down wins over degraded, degraded over up.
func (sh *ServiceHealth) AddComponent(ch Health) {
	sh.Components = append(sh.Components, ch)
	if severity[ch.Status] > severity[sh.Status] {
		sh.Status = ch.Status
	}
}
