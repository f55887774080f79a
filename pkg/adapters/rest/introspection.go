package rest

import (
	"github.com/aretw0/introspection"
)

// ClientState exposes internal state for observability.
type ClientState struct {
	BaseURL       string `json:"base_url"`
	CSRFHeader    string `json:"csrf_header"`
	HasToken      bool   `json:"has_token"`
	Requests      int    `json:"requests"`
	Failures      int    `json:"failures"`
	LastStatus    int    `json:"last_status,omitempty"`
	LastRequestID string `json:"last_request_id,omitempty"`
}

// State implements introspection.Introspectable.
func (c *Client) State() any {
	c.mu.Lock()
	defer c.mu.Unlock()
	return ClientState{
		BaseURL:       c.base.String(),
		CSRFHeader:    c.csrfHeader,
		HasToken:      c.token != "",
		Requests:      c.stats.requests,
		Failures:      c.stats.failures,
		LastStatus:    c.stats.lastStatus,
		LastRequestID: c.stats.lastRequestID,
	}
}

// ComponentType implements introspection.Component.
func (c *Client) ComponentType() string {
	return "rest-client"
}

var _ introspection.Introspectable = (*Client)(nil)
var _ introspection.Component = (*Client)(nil)
