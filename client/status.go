package client

import (
	"context"
	"encoding/json"
	"log/slog"
)

const statusOK = 200

type statusResponse struct {
	CodeReturn *int `json:"code_return"`
}

// IsConnected reports whether the remote service answers its status endpoint with
// code_return 200. Failures are logged and reported as not connected.
func (c *Client) IsConnected(ctx context.Context) bool {
	url := c.baseURL + statusPath
	log := c.log.With(slog.String("op", "IsConnected"), slog.String("url", url))

	data, err := c.getBody(ctx, url)
	if err != nil {
		log.Warn("Status check failed", slog.Any("error", err))
		return false
	}

	resp := &statusResponse{}
	err = json.Unmarshal(data, resp)
	if err != nil {
		log.Warn("Cannot decode status", slog.Any("error", err))
		return false
	}
	if resp.CodeReturn == nil {
		log.Warn("Status response has no code_return")
		return false
	}

	log.Debug("Status received", slog.Int("code_return", *resp.CodeReturn))
	return *resp.CodeReturn == statusOK
}
