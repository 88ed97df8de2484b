package httpapi

import (
	"context"
	"strings"
	"time"

	"github.com/seenimoa/bonosportal/pkg/models"
)

const (
	actuatorHealthPath = "/actuator/health"
	rolesPath          = "/api/v1/roles"
)

type actuatorWire struct {
	Status string `json:"status"`
}

// Health asks the actuator endpoint first. Backends without actuator are
// reached through the roles listing instead; only when both fail is the
// backend reported unreachable, with the second error.
func (c *Client) Health(ctx context.Context) (*models.BackendHealth, error) {
	start := time.Now()

	var wire actuatorWire
	err := c.get(ctx, actuatorHealthPath, nil, &wire)
	if err == nil {
		status := strings.ToUpper(strings.TrimSpace(wire.Status))
		if status == "" {
			status = "UP"
		}
		return &models.BackendHealth{Status: status, Via: models.HealthViaActuator, ElapsedMS: time.Since(start).Milliseconds()}, nil
	}
	c.log.Debug().Err(err).Msg("actuator health unavailable, trying roles")

	if err := c.get(ctx, rolesPath, nil, nil); err != nil {
		return nil, err
	}
	return &models.BackendHealth{Status: "UP", Via: models.HealthViaAPI, ElapsedMS: time.Since(start).Milliseconds()}, nil
}
