// Package fault defines the error values used by the sales domain.
//
// Business-rule failures travel as plain values, never panics: each failure
// is an Error carrying a stable machine-readable code, and operations that
// can violate several rules at once return a List so callers see every
// violated condition, not just the first.
package fault

import "strings"

// Error is a domain failure with a stable code and a human-readable message.
// Errors are comparable values, so errors.Is works against the package-level
// sentinels declared by each domain package.
type Error struct {
	Code    string
	Message string
}

// New creates an Error with the given code and message.
func New(code, message string) Error {
	return Error{Code: code, Message: message}
}

func (e Error) Error() string {
	return e.Message
}

// List is a collection of domain failures reported together.
type List []Error

func (l List) Error() string {
	msgs := make([]string, len(l))
	for i, e := range l {
		msgs[i] = e.Message
	}
	return strings.Join(msgs, "; ")
}

// Unwrap exposes the individual failures so errors.Is and errors.As can
// match any member of the list.
func (l List) Unwrap() []error {
	errs := make([]error, len(l))
	for i, e := range l {
		errs[i] = e
	}
	return errs
}

// Has reports whether the list contains a failure with the given code.
func (l List) Has(code string) bool {
	for _, e := range l {
		if e.Code == code {
			return true
		}
	}
	return false
}
