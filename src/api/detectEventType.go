package api

import (
	"encoding/json"
	"fmt"

	"github.com/aws/aws-lambda-go/events"
)

const (
	EventHTTPAPI   = "http-api"
	EventRESTProxy = "rest-proxy"
)

// DetectEventType tells API Gateway HTTP API (payload v2) events from REST proxy (v1) ones.
func DetectEventType(event json.RawMessage) (string, error) {
	var probe struct {
		Version    string `json:"version"`
		RouteKey   string `json:"routeKey"`
		HTTPMethod string `json:"httpMethod"`
	}

	if err := json.Unmarshal(event, &probe); err != nil {
		return "", fmt.Errorf("cannot read event: %w", err)
	}

	if probe.Version == "2.0" || probe.RouteKey != "" {
		return EventHTTPAPI, nil
	}

	// REST proxy events carry httpMethod at the top level.
	var proxyEvent events.APIGatewayProxyRequest
	if err := json.Unmarshal(event, &proxyEvent); err == nil && proxyEvent.HTTPMethod != "" {
		return EventRESTProxy, nil
	}

	return "", fmt.Errorf("unknown event type")
}
