package api

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrNetwork wraps transport failures: DNS, refused connections, timeouts.
	ErrNetwork = errors.New("network error")
	// ErrDecode wraps malformed response bodies.
	ErrDecode = errors.New("decode error")
)

// HTTPError is a non-2xx response.
type HTTPError struct {
	URL    string
	Status int
	Body   string
}

func (e *HTTPError) Error() string {
	msg := fmt.Sprintf("GET %s: HTTP %d", e.URL, e.Status)
	if e.Body != "" {
		msg += ": " + e.Body
	}
	return msg
}

// Violation is one failed schema rule for one record.
type Violation struct {
	Index int
	Rule  string
	Err   error // set when the rule could not be evaluated
}

func (v Violation) String() string {
	if v.Err != nil {
		return fmt.Sprintf("record %d: %s: %v", v.Index, v.Rule, v.Err)
	}
	return fmt.Sprintf("record %d: %s", v.Index, v.Rule)
}

// SchemaError lists the records of a response that broke a named schema.
type SchemaError struct {
	Schema     string
	Violations []Violation
}

func (e *SchemaError) Error() string {
	const maxShown = 3
	parts := make([]string, 0, maxShown)
	for i, v := range e.Violations {
		if i == maxShown {
			parts = append(parts, fmt.Sprintf("and %d more", len(e.Violations)-maxShown))
			break
		}
		parts = append(parts, v.String())
	}
	return fmt.Sprintf("schema %q: %s", e.Schema, strings.Join(parts, "; "))
}
