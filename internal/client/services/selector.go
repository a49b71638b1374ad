package services

import (
	"fmt"
	"strings"
)

// FallbackPolicy decides which remote failures are retried locally.
type FallbackPolicy string

const (
	// FallbackAny retries locally on every remote error. A remote refusal
	// (wrong password) can therefore end up reported as the local error.
	FallbackAny FallbackPolicy = "any"
	// FallbackUnreachable retries locally only when the remote store could
	// not answer; refusals are returned as they are.
	FallbackUnreachable FallbackPolicy = "unreachable"
)

func ParseFallbackPolicy(s string) (FallbackPolicy, error) {
	switch p := FallbackPolicy(strings.ToLower(strings.TrimSpace(s))); p {
	case "":
		return FallbackAny, nil
	case FallbackAny, FallbackUnreachable:
		return p, nil
	default:
		return "", fmt.Errorf("unknown fallback policy %q", s)
	}
}

// Selector picks the backend semantics for an orchestrator instance. It is
// fixed at construction.
type Selector struct {
	RemotePreferred bool
	Policy          FallbackPolicy
}
