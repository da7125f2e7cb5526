// Copyright Open Responses Gateway Authors
// SPDX-License-Identifier: Apache-2.0

package splitter

import (
	"errors"
	"strings"
	"testing"
)

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name  string
		cfg   Config
		field string // expected ConfigError field, empty for valid
	}{
		{"default", DefaultConfig(), ""},
		{"zero overlap", Config{TargetLength: 1}, ""},
		{"zero target", Config{TargetLength: 0}, "target_length"},
		{"negative target", Config{TargetLength: -3}, "target_length"},
		{"negative overlap", Config{TargetLength: 10, OverlapLength: -1}, "overlap_length"},
		{"overlap equals target", Config{TargetLength: 10, OverlapLength: 10}, "overlap_length"},
		{"overlap exceeds target", Config{TargetLength: 10, OverlapLength: 20}, "overlap_length"},
		{"empty separator", Config{TargetLength: 10, Separators: []string{"\n", ""}}, "separators[1]"},
		{"unknown separator position", Config{TargetLength: 10, KeepSeparator: 7}, "keep_separator"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if tt.field == "" {
				if err != nil {
					t.Fatalf("Validate() = %v, want nil", err)
				}
				return
			}
			if !errors.Is(err, ErrConfiguration) {
				t.Fatalf("Validate() = %v, want ErrConfiguration", err)
			}
			var ce *ConfigError
			if !errors.As(err, &ce) || ce.Field != tt.field {
				t.Errorf("Validate() field = %v, want %q", err, tt.field)
			}
		})
	}
}

func TestNew_RejectsInvalidConfig(t *testing.T) {
	_, err := New(Config{TargetLength: 100, OverlapLength: 100})
	if !errors.Is(err, ErrConfiguration) {
		t.Errorf("New() error = %v, want ErrConfiguration", err)
	}
	if _, err := Split(Config{TargetLength: 0}, "doc", "text"); !errors.Is(err, ErrConfiguration) {
		t.Errorf("Split() error = %v, want ErrConfiguration", err)
	}
}

func TestParseSeparatorPosition(t *testing.T) {
	tests := []struct {
		in      string
		want    SeparatorPosition
		wantErr bool
	}{
		{"", SeparatorStart, false},
		{"start", SeparatorStart, false},
		{"end", SeparatorEnd, false},
		{"middle", 0, true},
	}
	for _, tt := range tests {
		got, err := ParseSeparatorPosition(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseSeparatorPosition(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseSeparatorPosition(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestLengthHelpers(t *testing.T) {
	if got := prefixWithin("héllo", 2, RuneCount); got != len("hé") {
		t.Errorf("prefixWithin = %d, want %d", got, len("hé"))
	}
	if got := prefixWithin("héllo", 0, RuneCount); got != 1 {
		t.Errorf("prefixWithin with zero limit = %d, want one rune", got)
	}
	if got := prefixWithin(strings.Repeat("ab", 5000), 7, RuneCount); got != 7 {
		t.Errorf("prefixWithin on long text = %d, want 7", got)
	}
	if got := prefixWithin("abc", 10, RuneCount); got != 3 {
		t.Errorf("prefixWithin larger than text = %d, want 3", got)
	}
	if got := suffixWithin("héllo", 3, RuneCount); got != len("hé") {
		t.Errorf("suffixWithin = %d, want %d", got, len("hé"))
	}
	if got := suffixWithin("abc", 0, RuneCount); got != 3 {
		t.Errorf("suffixWithin with zero limit = %d, want 3", got)
	}
	if got := suffixWithin("abc", 10, RuneCount); got != 0 {
		t.Errorf("suffixWithin larger than text = %d, want 0", got)
	}
}
