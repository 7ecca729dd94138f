package inference

import "fmt"

// exitedEarlyError signals a server process that died before reporting ready.
type exitedEarlyError struct {
	err        error
	stderrTail string
}

func (e exitedEarlyError) Error() string {
	if e.stderrTail == "" {
		return fmt.Sprintf("server exited before ready: %v", e.err)
	}
	return fmt.Sprintf("server exited before ready: %v; stderr tail: %s", e.err, e.stderrTail)
}

func (e exitedEarlyError) Unwrap() error { return e.err }

// IsExitedEarly reports whether err indicates the server died during startup.
func IsExitedEarly(err error) bool {
	_, ok := err.(exitedEarlyError)
	return ok
}

// readyTimeoutError signals an exhausted readiness poll budget.
type readyTimeoutError struct {
	url      string
	attempts int
}

func (e readyTimeoutError) Error() string {
	return fmt.Sprintf("server at %s not ready after %d attempts", e.url, e.attempts)
}

// IsReadyTimeout reports whether err indicates the readiness poll gave up.
func IsReadyTimeout(err error) bool {
	_, ok := err.(readyTimeoutError)
	return ok
}
