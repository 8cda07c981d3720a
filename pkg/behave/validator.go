package behave

import (
	"context"
	"errors"
	"os/exec"

	"github.com/charmbracelet/log"
)

// ValidationStatus is the outcome of an external validator run.
type ValidationStatus int

const (
	// ValidationPassed means the validator ran and reported success.
	ValidationPassed ValidationStatus = iota
	// ValidationFailed means the validator ran and reported problems,
	// or did not finish within the configured timeout.
	ValidationFailed
	// ValidationSkipped means the validator binary is not installed.
	ValidationSkipped
)

// ValidateBIDS runs the external BIDS validator against outputRoot.
// The call is bounded by cfg.ValidatorTimeout; a missing validator
// binary is a skip, not a failure. The validator's combined output is
// logged.
func ValidateBIDS(ctx context.Context, outputRoot string, cfg Config) ValidationStatus {
	ctx, cancel := context.WithTimeout(ctx, cfg.ValidatorTimeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, "deno", "run", "-ERN", "jsr:@bids/validator",
		outputRoot, "--ignoreWarnings", "-v")
	out, err := cmd.CombinedOutput()

	switch {
	case err == nil:
		log.Info("BIDS validation passed")
		log.Debug(string(out))
		return ValidationPassed
	case errors.Is(ctx.Err(), context.DeadlineExceeded):
		log.Error("BIDS validation timed out", "timeout", cfg.ValidatorTimeout)
		return ValidationFailed
	case errors.Is(err, exec.ErrNotFound):
		log.Warn("BIDS validator (deno) not found, skipping validation")
		return ValidationSkipped
	default:
		log.Error("BIDS validation failed", "error", err)
		if len(out) > 0 {
			log.Error(string(out))
		}
		return ValidationFailed
	}
}
