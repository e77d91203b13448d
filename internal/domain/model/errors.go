package model

import (
	"errors"
	"fmt"
	"strings"
)

// Error kinds. Callers match them with errors.Is; the typed errors below carry
// the diagnostic detail and match the corresponding kind.
var (
	ErrConfigurationMissing   = errors.New("configuration missing")
	ErrRepositoryUnresolved   = fmt.Errorf("%w: repository not specified", ErrConfigurationMissing)
	ErrMalformedReference     = errors.New("malformed pull request reference")
	ErrTransportFailure       = errors.New("transport failure")
	ErrGraphQLOperationFailed = errors.New("graphql operation failed")
	ErrMalformedResponse      = errors.New("malformed response")
	ErrPaginationExceeded     = errors.New("pagination exceeded")
)

// TransportError reports a failed request or a non-success HTTP status.
// StatusCode is zero when no response was received.
type TransportError struct {
	Op         string
	StatusCode int
	Body       string
	Err        error
}

func (e *TransportError) Error() string {
	var b strings.Builder
	b.WriteString(e.Op)
	if e.StatusCode != 0 {
		fmt.Fprintf(&b, ": HTTP %d", e.StatusCode)
	}
	switch {
	case e.Err != nil:
		fmt.Fprintf(&b, ": %v", e.Err)
	case e.Body != "":
		fmt.Fprintf(&b, ": %s", e.Body)
	}
	return b.String()
}

func (e *TransportError) Unwrap() error { return e.Err }

// Is matches ErrTransportFailure.
func (e *TransportError) Is(target error) bool { return target == ErrTransportFailure }

// GraphQLError reports a GraphQL response that carried an errors array.
type GraphQLError struct {
	Op       string
	Messages []string
}

func (e *GraphQLError) Error() string {
	return fmt.Sprintf("%s: graphql errors: %s", e.Op, strings.Join(e.Messages, "; "))
}

// Is matches ErrGraphQLOperationFailed.
func (e *GraphQLError) Is(target error) bool { return target == ErrGraphQLOperationFailed }

// MalformedResponseError reports a required field missing from, or an
// unrecognized value in, an otherwise successful payload.
type MalformedResponseError struct {
	Entity string
	Field  string
	Value  string // Set for unrecognized enum values.
}

func (e *MalformedResponseError) Error() string {
	if e.Value != "" {
		return fmt.Sprintf("malformed %s: unrecognized %s %q", e.Entity, e.Field, e.Value)
	}
	return fmt.Sprintf("malformed %s: missing required field %q", e.Entity, e.Field)
}

// Is matches ErrMalformedResponse.
func (e *MalformedResponseError) Is(target error) bool { return target == ErrMalformedResponse }
