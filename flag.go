package main

import (
	"regexp"
	"strings"
	"time"

	"github.com/caarlos0/duration"
)

// flagErrorPatterns maps pflag's error messages to the friendlier ones shown
// to the user. The capture group pulls out the offending flag name.
var flagErrorPatterns = []struct {
	prefix string
	flag   *regexp.Regexp
	reason string
}{
	{"flag needs an argument:", regexp.MustCompile(`(?:'.' in )?(-[\w-]+)$`), "Flag %s needs an argument."},
	{"unknown flag:", regexp.MustCompile(`(-[\w-]+)$`), "Unknown flag %s."},
	{"unknown shorthand flag:", regexp.MustCompile(`in (-\w+)$`), "Unknown flag %s."},
	{"invalid argument", regexp.MustCompile(`for "(.+)" flag`), "Invalid value for flag %s."},
}

func newFlagParseError(err error) flagParseError {
	fpe := flagParseError{err: err, reason: err.Error()}
	for _, pattern := range flagErrorPatterns {
		if !strings.HasPrefix(fpe.reason, pattern.prefix) {
			continue
		}
		if sub := pattern.flag.FindStringSubmatch(fpe.reason); len(sub) > 1 {
			fpe.flag = sub[1]
		}
		fpe.reason = pattern.reason
		break
	}
	return fpe
}

type flagParseError struct {
	err    error
	reason string
	flag   string
}

func (f flagParseError) Error() string {
	return f.err.Error()
}

// ReasonFormat returns the user-facing message with a %s placeholder for the
// flag name.
func (f flagParseError) ReasonFormat() string {
	return f.reason
}

func (f flagParseError) Flag() string {
	return f.flag
}

// timeoutFlag parses --timeout values with human units like "2m30s" or "1h".
type timeoutFlag struct {
	d *time.Duration
}

func newTimeoutFlag(p *time.Duration, def time.Duration) *timeoutFlag {
	*p = def
	return &timeoutFlag{p}
}

func (f *timeoutFlag) Set(s string) error {
	v, err := duration.Parse(s)
	if err != nil {
		return err //nolint:wrapcheck
	}
	*f.d = v
	return nil
}

func (f *timeoutFlag) String() string { return f.d.String() }

func (*timeoutFlag) Type() string { return "duration" }
