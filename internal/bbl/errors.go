package bbl

import "fmt"

// fatalError wraps a decoding failure that aborts the whole Parse call, as
// distinct from a per-frame corruption that the orchestrator recovers from
// on its own.
type fatalError struct {
	msg string
}

func (e *fatalError) Error() string {
	return "bbl: " + e.msg
}

func fatalf(format string, args ...any) error {
	return &fatalError{msg: fmt.Sprintf(format, args...)}
}
