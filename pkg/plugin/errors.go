package plugin

import (
	"errors"
	"fmt"
)

type ErrorKind string

const (
	KindConnection ErrorKind = "connection_error"
	KindAuth       ErrorKind = "auth_error"
	KindQuery      ErrorKind = "query_error"
	KindNetwork    ErrorKind = "network_error"
	KindConfig     ErrorKind = "config_error"
)

// ProbeError classifies a failed probe invocation or a failed plugin
// construction.
type ProbeError struct {
	Kind    ErrorKind
	Backend string
	Op      string
	Err     error
}

func NewError(kind ErrorKind, backend, op string, err error) *ProbeError {
	return &ProbeError{Kind: kind, Backend: backend, Op: op, Err: err}
}

func (e *ProbeError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s failed in %s: %v", e.Backend, e.Kind, e.Op, e.Err)
	}
	return fmt.Sprintf("%s: %s failed in %s", e.Backend, e.Kind, e.Op)
}

func (e *ProbeError) Unwrap() error {
	return e.Err
}

// KindOf returns the kind of the first ProbeError in err's chain. Errors that
// were not classified by a probe are reported as query errors.
func KindOf(err error) ErrorKind {
	var pe *ProbeError
	if errors.As(err, &pe) {
		return pe.Kind
	}
	return KindQuery
}
