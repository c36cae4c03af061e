package release

// Exit codes used by standalone step invocation.
const (
	ExitSuccess = 0
	ExitFailure = 1
)

// Result is the outcome of an update step.
type Result struct {
	// Success reports whether the version was persisted.
	Success bool
	// Message is a human-readable description of the outcome.
	Message string
	// Err holds the classified cause of a failure; nil on success.
	Err error
}

// ExitCode maps the success flag to a process exit status.
func (r Result) ExitCode() int {
	if r.Success {
		return ExitSuccess
	}

	return ExitFailure
}
