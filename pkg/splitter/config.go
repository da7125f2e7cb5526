// Copyright Open Responses Gateway Authors
// SPDX-License-Identifier: Apache-2.0

package splitter

import (
	"errors"
	"fmt"
)

// DefaultTargetLength is the default chunk size in length units.
const DefaultTargetLength = 600

// DefaultOverlapLength is the default overlap between adjacent chunks.
const DefaultOverlapLength = 100

// ErrConfiguration is wrapped by every validation failure.
var ErrConfiguration = errors.New("invalid splitter configuration")

// SeparatorPosition controls which side of a split keeps the separator.
type SeparatorPosition int

const (
	// SeparatorStart attaches the separator to the start of the following piece.
	SeparatorStart SeparatorPosition = iota
	// SeparatorEnd attaches the separator to the end of the preceding piece.
	SeparatorEnd
)

// DefaultSeparators returns the default hierarchy, coarsest first:
// paragraph break, line break, sentence end, space. Text that none of
// these can bound is force-split, which covers the per-character case.
func DefaultSeparators() []string {
	return []string{"\n\n", "\n", ". ", "? ", "! ", " "}
}

// Config holds the splitting parameters. It is treated as immutable once
// handed to New.
type Config struct {
	TargetLength  int
	OverlapLength int
	Separators    []string
	KeepSeparator SeparatorPosition
	// Length measures text. Nil means RuneCount.
	Length LengthFunc
}

// DefaultConfig returns the default configuration. Separators stay at the
// start of the following piece; set KeepSeparator to SeparatorEnd to attach
// each one to the end of the preceding piece instead.
func DefaultConfig() Config {
	return Config{
		TargetLength:  DefaultTargetLength,
		OverlapLength: DefaultOverlapLength,
		Separators:    DefaultSeparators(),
		KeepSeparator: SeparatorStart,
		Length:        RuneCount,
	}
}

// ConfigError describes a single invalid field.
type ConfigError struct {
	Field  string
	Reason string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

// Unwrap lets callers match any ConfigError against ErrConfiguration.
func (e *ConfigError) Unwrap() error {
	return ErrConfiguration
}

// Validate checks the configuration before any text is processed.
func (c Config) Validate() error {
	if c.TargetLength <= 0 {
		return &ConfigError{Field: "target_length", Reason: fmt.Sprintf("must be positive, got %d", c.TargetLength)}
	}
	if c.OverlapLength < 0 {
		return &ConfigError{Field: "overlap_length", Reason: fmt.Sprintf("cannot be negative, got %d", c.OverlapLength)}
	}
	if c.OverlapLength >= c.TargetLength {
		return &ConfigError{
			Field:  "overlap_length",
			Reason: fmt.Sprintf("%d must be smaller than target_length %d", c.OverlapLength, c.TargetLength),
		}
	}
	for i, sep := range c.Separators {
		if sep == "" {
			return &ConfigError{Field: fmt.Sprintf("separators[%d]", i), Reason: "empty separator"}
		}
	}
	switch c.KeepSeparator {
	case SeparatorStart, SeparatorEnd:
	default:
		return &ConfigError{Field: "keep_separator", Reason: fmt.Sprintf("unknown position %d", c.KeepSeparator)}
	}
	return nil
}

// ParseSeparatorPosition maps "start" / "end" to a SeparatorPosition.
// The empty string selects SeparatorStart.
func ParseSeparatorPosition(s string) (SeparatorPosition, error) {
	switch s {
	case "", "start":
		return SeparatorStart, nil
	case "end":
		return SeparatorEnd, nil
	default:
		return 0, &ConfigError{Field: "keep_separator", Reason: fmt.Sprintf("unknown position %q", s)}
	}
}
