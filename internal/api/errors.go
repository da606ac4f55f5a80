package api

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrRouteExhausted = errors.New("all fetch routes failed")
	ErrNotFound       = errors.New("upstream resource not found")
	ErrUnknownPath    = errors.New("no upstream mapping for path")
)

// StatusError is a non-2xx upstream reply.
type StatusError struct {
	Status int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("upstream status %d", e.Status)
}

type RouteAttempt struct {
	Route Route
	Err   error
}

// RouteExhaustedError is returned when every route for a path failed. It
// matches ErrNotFound when the relay or the direct upstream answered 404;
// a 404 from a third-party proxy or mirror is not taken as authoritative.
type RouteExhaustedError struct {
	Path     string
	Attempts []RouteAttempt
}

func (e *RouteExhaustedError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "all %d fetch routes failed for %s", len(e.Attempts), e.Path)
	for i, a := range e.Attempts {
		if i == 0 {
			b.WriteString(": ")
		} else {
			b.WriteString("; ")
		}
		fmt.Fprintf(&b, "%s: %v", a.Route.Kind, a.Err)
	}
	return b.String()
}

func (e *RouteExhaustedError) Is(target error) bool {
	switch target {
	case ErrRouteExhausted:
		return true
	case ErrNotFound:
		return e.NotFound()
	}
	return false
}

func (e *RouteExhaustedError) Unwrap() []error {
	errs := make([]error, 0, len(e.Attempts))
	for _, a := range e.Attempts {
		errs = append(errs, a.Err)
	}
	return errs
}

func (e *RouteExhaustedError) NotFound() bool {
	for _, a := range e.Attempts {
		if !a.Route.Kind.Authoritative() {
			continue
		}
		var se *StatusError
		if errors.As(a.Err, &se) && se.Status == 404 {
			return true
		}
	}
	return false
}
