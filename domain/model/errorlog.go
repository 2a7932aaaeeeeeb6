package model

import (
	"fmt"
	"strings"
)

// NoErrorsFound is the explicit sentinel for a run that completed with an
// empty error log, so callers can tell "zero errors" from "didn't check".
const NoErrorsFound = "No errors found."

// FitFailure records one isolated iteration failure: the removed species
// or substitute-tree index, and the opaque fitter message.
type FitFailure struct {
	Key     string `json:"key"`
	Message string `json:"message"`
}

// ErrorLog accumulates per-iteration fitting failures in iteration order.
type ErrorLog struct {
	Failures []FitFailure `json:"failures"`
}

// Add appends one failure keyed by species identifier or tree index.
func (l *ErrorLog) Add(key string, err error) {
	l.Failures = append(l.Failures, FitFailure{Key: key, Message: err.Error()})
}

// Len returns the failure count.
func (l *ErrorLog) Len() int {
	return len(l.Failures)
}

// Keys returns the failed iteration keys in iteration order.
func (l *ErrorLog) Keys() []string {
	keys := make([]string, len(l.Failures))
	for i, f := range l.Failures {
		keys[i] = f.Key
	}
	return keys
}

// Summary renders a human-readable account, or the no-errors sentinel.
func (l *ErrorLog) Summary() string {
	if len(l.Failures) == 0 {
		return NoErrorsFound
	}
	return fmt.Sprintf("%d fits failed: %s", len(l.Failures), strings.Join(l.Keys(), ", "))
}
