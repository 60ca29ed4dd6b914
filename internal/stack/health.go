package stack

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"sullivan/internal/config"
	"sullivan/internal/services/compose"
)

// ProbeResult records one bounded health probe. An unhealthy result is a
// warning for the operator, never an operation failure.
type ProbeResult struct {
	Service string
	Healthy bool
	Detail  string
}

// Check probes the health of a single service. Each declared service gets
// whichever check its declaration supports.
type Check interface {
	Service() string
	Probe(ctx context.Context) ProbeResult
}

// httpCheck probes a service's own HTTP endpoint.
type httpCheck struct {
	service string
	url     string
	client  *http.Client
}

func (c httpCheck) Service() string { return c.service }

func (c httpCheck) Probe(ctx context.Context) ProbeResult {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url, nil)
	if err != nil {
		return ProbeResult{Service: c.service, Detail: err.Error()}
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return ProbeResult{Service: c.service, Detail: err.Error()}
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 200 && resp.StatusCode < 400 {
		return ProbeResult{Service: c.service, Healthy: true, Detail: resp.Status}
	}
	return ProbeResult{Service: c.service, Detail: resp.Status}
}

// containerCheck falls back to the container runtime's view for services that
// expose no HTTP endpoint.
type containerCheck struct {
	service  string
	snapshot func(ctx context.Context) (map[string]compose.ContainerStatus, error)
}

func (c containerCheck) Service() string { return c.service }

func (c containerCheck) Probe(ctx context.Context) ProbeResult {
	statuses, err := c.snapshot(ctx)
	if err != nil {
		return ProbeResult{Service: c.service, Detail: err.Error()}
	}
	status, ok := statuses[c.service]
	if !ok {
		return ProbeResult{Service: c.service, Detail: "no container"}
	}
	detail := status.State
	if status.Health != "" {
		detail = fmt.Sprintf("%s (%s)", status.State, status.Health)
	}
	running := strings.EqualFold(status.State, "running")
	healthy := running && (status.Health == "" || strings.EqualFold(status.Health, "healthy"))
	return ProbeResult{Service: c.service, Healthy: healthy, Detail: detail}
}

// checkFor picks the strongest probe the declaration supports.
func checkFor(svc config.Service, timeout time.Duration, snapshot func(ctx context.Context) (map[string]compose.ContainerStatus, error)) Check {
	if strings.TrimSpace(svc.HealthURL) != "" {
		return httpCheck{
			service: svc.Name,
			url:     svc.HealthURL,
			client:  &http.Client{Timeout: timeout},
		}
	}
	return containerCheck{service: svc.Name, snapshot: snapshot}
}
