package coursedex

import (
	"context"
	"errors"
	"net/http"
)

// Health checks the health of all system components. A degraded system is
// reported in the status, not as an error.
func (c *Client) Health(ctx context.Context) (HealthStatus, error) {
	var out HealthStatus
	err := c.doJSON(ctx, "health", http.MethodGet, "/health", nil, &out)
	if err != nil {
		// The server answers 503 with the same body when degraded.
		var apiErr *APIError
		if errors.As(err, &apiErr) && apiErr.Status == http.StatusServiceUnavailable {
			if decodeErr := decodeJSON(apiErr.body, &out); decodeErr == nil {
				return out, nil
			}
		}
		return HealthStatus{}, err
	}
	return out, nil
}
