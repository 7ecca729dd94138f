package notebook

import "fmt"

// parseError signals a notebook body that is not valid structured data.
type parseError struct{ err error }

func (e parseError) Error() string { return "parse notebook: " + e.err.Error() }
func (e parseError) Unwrap() error { return e.err }

// IsParseError reports whether err indicates a malformed notebook document.
func IsParseError(err error) bool {
	_, ok := err.(parseError)
	return ok
}

// scriptError signals a script subprocess that exited non-zero.
type scriptError struct {
	path   string
	err    error
	output string
}

func (e scriptError) Error() string {
	if e.output == "" {
		return fmt.Sprintf("script %s failed: %v", e.path, e.err)
	}
	return fmt.Sprintf("script %s failed: %v; output tail: %s", e.path, e.err, e.output)
}

func (e scriptError) Unwrap() error { return e.err }

// IsScriptFailure reports whether err indicates a non-zero script exit.
func IsScriptFailure(err error) bool {
	_, ok := err.(scriptError)
	return ok
}

// ScriptOutput returns the captured output tail of a script failure, if any.
func ScriptOutput(err error) string {
	if se, ok := err.(scriptError); ok {
		return se.output
	}
	return ""
}
