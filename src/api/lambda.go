package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/aws/aws-lambda-go/events"

	"groundwater-quality-api/src/types"
)

// HandleEvent is the Lambda entry point: it detects the API Gateway payload version
// and dispatches to the matching handler.
func (a *API) HandleEvent(ctx context.Context, event json.RawMessage) (interface{}, error) {
	eventType, err := DetectEventType(event)
	if err != nil {
		a.logger.Error("error detecting event type", "error", err)
		return nil, err
	}

	switch eventType {
	case EventHTTPAPI:
		var req events.APIGatewayV2HTTPRequest
		if err := json.Unmarshal(event, &req); err != nil {
			return nil, fmt.Errorf("error unmarshalling HTTP API event: %w", err)
		}
		return a.HandleHTTP(ctx, req)

	default:
		var req events.APIGatewayProxyRequest
		if err := json.Unmarshal(event, &req); err != nil {
			return nil, fmt.Errorf("error unmarshalling REST proxy event: %w", err)
		}
		return a.HandleProxy(ctx, req)
	}
}

// HandleHTTP serves an API Gateway HTTP API (payload v2) request.
func (a *API) HandleHTTP(ctx context.Context, req events.APIGatewayV2HTTPRequest) (events.APIGatewayV2HTTPResponse, error) {
	method, path := routeOf(req.RouteKey, req.RequestContext.HTTP.Method, req.RawPath)
	status, body := a.dispatch(ctx, method, path, req.QueryStringParameters[types.AttrKodePos])

	return events.APIGatewayV2HTTPResponse{
		StatusCode: status,
		Headers:    corsHeaders,
		Body:       eventBody(body),
	}, nil
}

// HandleProxy serves an API Gateway REST proxy (payload v1) request.
func (a *API) HandleProxy(ctx context.Context, req events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	status, body := a.dispatch(ctx, req.HTTPMethod, req.Path, req.QueryStringParameters[types.AttrKodePos])

	return events.APIGatewayProxyResponse{
		StatusCode: status,
		Headers:    corsHeaders,
		Body:       eventBody(body),
	}, nil
}

func (a *API) dispatch(ctx context.Context, method, path, kodePos string) (int, any) {
	start := a.clock.Now()

	var (
		status int
		body   any
	)

	switch {
	case method == http.MethodOptions:
		status, body = http.StatusNoContent, nil
	case method == http.MethodGet && path == RouteGroundwater:
		status, body = a.GroundwaterQuality(ctx, kodePos)
	case method == http.MethodGet && path == RoutePostalCodes:
		status, body = a.PostalCodes(ctx)
	default:
		status, body = http.StatusNotFound, errorResponse("Not Found")
	}

	a.observe(method, path, status, start)
	return status, body
}

// routeOf trusts the route key only when it names a literal route ("GET /kode-pos").
// Greedy keys such as "ANY /{proxy+}" and $default fall back to the request line, and
// a stage prefix on the raw path is ignored.
func routeOf(routeKey, method, rawPath string) (string, string) {
	if m, p, ok := strings.Cut(routeKey, " "); ok && (p == RouteGroundwater || p == RoutePostalCodes) {
		if m != "ANY" {
			method = m
		}
		return method, p
	}

	for _, route := range []string{RouteGroundwater, RoutePostalCodes} {
		if strings.HasSuffix(rawPath, route) {
			return method, route
		}
	}
	return method, rawPath
}

func eventBody(body any) string {
	if body == nil {
		return ""
	}
	return string(marshalBody(body))
}
