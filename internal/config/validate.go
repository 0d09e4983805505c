package config

import (
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/gobwas/glob"
)

var (
	// ErrEmptyEndpoint indicates a missing oracle endpoint with no fixture configured
	ErrEmptyEndpoint = errors.New("empty oracle endpoint")

	// ErrInvalidEndpoint indicates an oracle endpoint that is not an absolute http(s) URL
	ErrInvalidEndpoint = errors.New("invalid oracle endpoint")

	// ErrInvalidTimeout indicates a non-positive request timeout
	ErrInvalidTimeout = errors.New("invalid oracle timeout")

	// ErrInvalidRateLimit indicates a negative request rate
	ErrInvalidRateLimit = errors.New("invalid oracle rate limit")

	// ErrEmptySourceBase indicates a missing source link base
	ErrEmptySourceBase = errors.New("empty source url base")

	// ErrEmptyOutputDir indicates a missing output directory
	ErrEmptyOutputDir = errors.New("empty output directory")

	// ErrEmptyMarker indicates a blank table marker
	ErrEmptyMarker = errors.New("empty table marker")

	// ErrInvalidExclude indicates an exclude pattern that does not compile
	ErrInvalidExclude = errors.New("invalid exclude pattern")
)

// Validate checks that the configuration is valid and complete.
func Validate(cfg *Config) error {
	var errs []error

	if err := validateOracle(&cfg.Oracle); err != nil {
		errs = append(errs, err)
	}

	if strings.TrimSpace(cfg.Source.URLBase) == "" {
		errs = append(errs, fmt.Errorf("%w: url_base is required", ErrEmptySourceBase))
	}

	if err := validateOutput(&cfg.Output); err != nil {
		errs = append(errs, err)
	}

	if err := validateTraversal(&cfg.Traversal); err != nil {
		errs = append(errs, err)
	}

	if len(errs) > 0 {
		return joinErrors(errs)
	}

	return nil
}

func validateOracle(cfg *OracleConfig) error {
	var errs []error

	// A fixture replaces the remote service, so the endpoint is only checked without one
	if cfg.Fixture == "" {
		if strings.TrimSpace(cfg.Endpoint) == "" {
			errs = append(errs, fmt.Errorf("%w: endpoint is required", ErrEmptyEndpoint))
		} else if u, err := url.Parse(cfg.Endpoint); err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			errs = append(errs, fmt.Errorf("%w: must be an absolute http(s) URL, got '%s'", ErrInvalidEndpoint, cfg.Endpoint))
		}
	}

	if cfg.TimeoutSeconds <= 0 {
		errs = append(errs, fmt.Errorf("%w: timeout_seconds must be positive, got %d", ErrInvalidTimeout, cfg.TimeoutSeconds))
	}

	// Zero disables throttling
	if cfg.RequestsPerSecond < 0 {
		errs = append(errs, fmt.Errorf("%w: requests_per_second cannot be negative, got %.2f", ErrInvalidRateLimit, cfg.RequestsPerSecond))
	}

	if len(errs) > 0 {
		return joinErrors(errs)
	}

	return nil
}

func validateOutput(cfg *OutputConfig) error {
	var errs []error

	if strings.TrimSpace(cfg.Dir) == "" {
		errs = append(errs, fmt.Errorf("%w: dir is required", ErrEmptyOutputDir))
	}

	if strings.TrimSpace(cfg.YesMarker) == "" {
		errs = append(errs, fmt.Errorf("%w: yes_marker is required", ErrEmptyMarker))
	}
	if strings.TrimSpace(cfg.NoMarker) == "" {
		errs = append(errs, fmt.Errorf("%w: no_marker is required", ErrEmptyMarker))
	}

	if len(errs) > 0 {
		return joinErrors(errs)
	}

	return nil
}

func validateTraversal(cfg *TraversalConfig) error {
	var errs []error

	for _, pattern := range cfg.Exclude {
		if _, err := glob.Compile(pattern, '/'); err != nil {
			errs = append(errs, fmt.Errorf("%w: %s: %v", ErrInvalidExclude, pattern, err))
		}
	}

	if len(errs) > 0 {
		return joinErrors(errs)
	}

	return nil
}

// joinErrors combines multiple errors into a single error with clear formatting.
func joinErrors(errs []error) error {
	if len(errs) == 0 {
		return nil
	}

	if len(errs) == 1 {
		return errs[0]
	}

	var msgs []string
	for _, err := range errs {
		msgs = append(msgs, err.Error())
	}

	return fmt.Errorf("validation failed:\n  - %s", strings.Join(msgs, "\n  - "))
}
