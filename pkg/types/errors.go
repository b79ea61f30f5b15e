// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import (
	"errors"
	"fmt"
	"strings"
)

// ConfigurationError reports a missing credential. It is fatal for the
// operation that needed the credential and is never retried.
type ConfigurationError struct {
	// Key is the secret name (e.g. "tavily-api-key").
	Key string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("credential %q is not configured", e.Key)
}

// ProviderError reports a failed call to one external capability.
type ProviderError struct {
	// Provider names the service (e.g. "tavily", "anthropic").
	Provider string

	// Op names the operation (e.g. "search", "stream").
	Op string

	// Status is the HTTP status code, or 0 when the call never got a response.
	Status int

	Err error
}

func (e *ProviderError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s %s", e.Provider, e.Op)
	if e.Status != 0 {
		fmt.Fprintf(&b, ": HTTP %d", e.Status)
	}
	if e.Err != nil {
		fmt.Fprintf(&b, ": %v", e.Err)
	}
	return b.String()
}

func (e *ProviderError) Unwrap() error { return e.Err }

// ParseError reports a generation response without the expected structured
// payload. Callers substitute a safe default instead of propagating it.
type ParseError struct {
	What string
	Err  error
}

func (e *ParseError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("parsing %s: no payload found", e.What)
	}
	return fmt.Sprintf("parsing %s: %v", e.What, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// TotalFailureError reports that every research provider failed for a guest.
type TotalFailureError struct {
	Name   string
	Causes []error
}

func (e *TotalFailureError) Error() string {
	msgs := make([]string, 0, len(e.Causes))
	for _, c := range e.Causes {
		msgs = append(msgs, c.Error())
	}
	if len(msgs) == 0 {
		return fmt.Sprintf("total research failure for %q", e.Name)
	}
	return fmt.Sprintf("total research failure for %q: %s", e.Name, strings.Join(msgs, "; "))
}

func (e *TotalFailureError) Unwrap() []error { return e.Causes }

// IsConfiguration reports whether err carries a ConfigurationError.
func IsConfiguration(err error) bool {
	var ce *ConfigurationError
	return errors.As(err, &ce)
}
