package jenkins

import (
	"context"
)

// TestConnection probes the server: first the authenticated "who am I"
// endpoint, then the basic info endpoint as a fallback. It reports ok with
// best-effort identity text from whichever succeeded; when both fail, the
// first failure's message is surfaced.
func (c *Client) TestConnection(ctx context.Context) *ConnectionResult {
	resp, whoamiErr := c.get(ctx, "/me/api/json?tree=fullName,id")
	if whoamiErr == nil {
		identity := stringOr(resp.body, "fullName", "")
		if identity == "" {
			identity = stringOr(resp.body, "id", "")
		}
		if identity == "" {
			identity = resp.header.Get("X-Jenkins")
		}
		return &ConnectionResult{OK: true, Version: identity}
	}

	resp, fallbackErr := c.get(ctx, "/api/json?tree=nodeDescription,nodeName")
	if fallbackErr == nil {
		identity := stringOr(resp.body, "nodeDescription", "")
		if identity == "" {
			identity = stringOr(resp.body, "nodeName", "")
		}
		if identity == "" {
			identity = resp.header.Get("X-Jenkins")
		}
		return &ConnectionResult{OK: true, Version: identity}
	}

	return &ConnectionResult{OK: false, Error: whoamiErr.Error()}
}
