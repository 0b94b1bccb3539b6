package cli

import (
	"log/slog"

	"github.com/roach88/trainaudit/internal/profile"
	"github.com/roach88/trainaudit/internal/timeline"
)

// DefaultPattern is the snapshot glob used when --pattern is not given.
const DefaultPattern = timeline.DefaultPattern

// loadOptions are the input flags shared by audit, validate and trace.
type loadOptions struct {
	Pattern string
	Profile string
}

// loadProfile returns the embedded defaults when path is empty.
func loadProfile(path string) (profile.Profile, error) {
	if path == "" {
		return profile.Default(), nil
	}
	return profile.Load(path)
}

// loadInputs resolves the profile and loads the timeline with its block scope.
// Failures are reported through the formatter and come back as ExitErrors.
func loadInputs(f *OutputFormatter, dir string, lo loadOptions, logger *slog.Logger) (profile.Profile, *timeline.Timeline, error) {
	p, err := loadProfile(lo.Profile)
	if err != nil {
		return profile.Profile{}, nil, f.Fail(ExitCommandError, ErrCodeProfile, err.Error(),
			map[string]string{"path": lo.Profile}, err)
	}
	if lo.Profile != "" {
		logger.Debug("profile loaded", "path", lo.Profile, "block_scope", string(p.BlockScope))
	}

	loader := &timeline.Loader{Pattern: lo.Pattern, Scope: p.BlockScope, Logger: logger}
	tl, err := loader.Load(dir)
	if err != nil {
		code, message, details := describeLoadError(err)
		return profile.Profile{}, nil, f.Fail(ExitCommandError, code, message, details, err)
	}
	return p, tl, nil
}
