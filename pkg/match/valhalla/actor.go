package valhalla

import (
	"context"
)

// ActorFunc is an in-process trace_route implementation, for deployments
// that embed the oracle instead of running it as a service.
type ActorFunc func(ctx context.Context, req TraceRequest) (TraceResponse, error)

// ActorMatcher adapts an ActorFunc to the Matcher contract, carrying the
// same matching parameters as the HTTP transport.
type ActorMatcher struct {
	fn ActorFunc
}

func NewActorMatcher(fn ActorFunc) *ActorMatcher {
	return &ActorMatcher{fn: fn}
}

func (m *ActorMatcher) TraceRoute(ctx context.Context, shape []ShapePoint) (string, error) {
	trace, err := m.fn(ctx, NewTraceRequest(shape))
	if err != nil {
		return "", err
	}
	return geometry(trace)
}
