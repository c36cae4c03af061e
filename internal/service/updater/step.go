package updater

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/oshokin/sweetmoney-versioning/internal/domain/release"
	"github.com/oshokin/sweetmoney-versioning/internal/logger"
	"github.com/oshokin/sweetmoney-versioning/internal/repository/record"
)

// bannerWidth is the width of the "=" rule framing the changelog.
const bannerWidth = 70

// Step is one versioned update.
type Step struct {
	// Version is the literal stored in the Version Record.
	Version string
	// Title is shown in the starting line, e.g. "Bug Fixes".
	Title string
	// Summary completes the success message after the version.
	Summary string
	// Changelog lines are printed between the banners.
	Changelog []string
}

// Runner binds a step to its repository and output.
type Runner struct {
	// step is the update to apply.
	step *Step
	// repo stores the Version Record.
	repo record.Repository
	// out receives the prefixed progress lines.
	out io.Writer
}

// NewRunner creates a Runner; a nil out discards progress lines.
func NewRunner(step *Step, repo record.Repository, out io.Writer) *Runner {
	if out == nil {
		out = io.Discard
	}

	return &Runner{
		step: step,
		repo: repo,
		out:  out,
	}
}

// Run applies the step. Failures, panics included, are reported through the result.
func (r *Runner) Run(ctx context.Context) release.Result {
	return r.step.Apply(ctx, r.repo, r.out)
}

// Standalone runs the step and returns the process exit code.
func (r *Runner) Standalone(ctx context.Context) int {
	return r.Run(ctx).ExitCode()
}

// Apply sets the Version Record to the step version and prints the changelog.
//
//nolint:nonamedreturns // The deferred recover rewrites the result.
func (s *Step) Apply(ctx context.Context, repo record.Repository, out io.Writer) (result release.Result) {
	if out == nil {
		out = io.Discard
	}

	ctx = logger.WithKV(ctx, "version", s.Version)

	s.printf(out, "Starting update to v%s (%s)", s.Version, s.Title)

	defer func() {
		if recovered := recover(); recovered != nil {
			result = s.fail(ctx, out, fmt.Errorf("%w: %v", errStepPanicked, recovered))
		}
	}()

	if repo == nil {
		return s.fail(ctx, out, errNoRepository)
	}

	if _, err := repo.SetCurrent(ctx, s.Version); err != nil {
		return s.fail(ctx, out, err)
	}

	s.printf(out, "System version updated successfully to %s!", s.Version)
	s.printf(out, "")
	s.printf(out, "%s", strings.Repeat("=", bannerWidth))
	s.printf(out, "Update to v%s completed successfully!", s.Version)
	s.printf(out, "")

	for _, line := range s.Changelog {
		s.printf(out, "%s", line)
	}

	s.printf(out, "%s", strings.Repeat("=", bannerWidth))

	logger.Info(ctx, "Update step applied")

	return release.Result{
		Success: true,
		Message: s.SuccessMessage(),
	}
}

// SuccessMessage is the message returned when the step succeeds.
func (s *Step) SuccessMessage() string {
	return fmt.Sprintf("Successfully updated to v%s - %s", s.Version, s.Summary)
}

// fail prints and logs the cause and converts it into a failed result.
// Error-level entries carry a stack trace.
func (s *Step) fail(ctx context.Context, out io.Writer, err error) release.Result {
	message := "Error updating system version: " + err.Error()

	s.printf(out, "%s", message)
	logger.ErrorKV(ctx, "Update step failed", "error", err, "kind", release.KindOf(err))

	return release.Result{
		Success: false,
		Message: message,
		Err:     err,
	}
}

// printf writes one prefixed progress line.
func (s *Step) printf(out io.Writer, format string, args ...any) {
	_, _ = fmt.Fprintf(out, "[Update v%s] %s\n", s.Version, fmt.Sprintf(format, args...))
}
