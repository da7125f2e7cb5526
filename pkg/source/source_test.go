// Copyright Open Responses Gateway Authors
// SPDX-License-Identifier: Apache-2.0

package source

import (
	"reflect"
	"testing"
)

func TestParseExtensions(t *testing.T) {
	got := ParseExtensions(" .PDF, txt,,html ")
	want := []string{".pdf", ".txt", ".html"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("ParseExtensions() = %v, want %v", got, want)
	}
	if got := ParseExtensions(""); got != nil {
		t.Errorf("ParseExtensions(\"\") = %v, want nil", got)
	}
}

func TestMatchExtension(t *testing.T) {
	exts := []string{".pdf", ".txt"}
	tests := []struct {
		name string
		exts []string
		want bool
	}{
		{"report.PDF", exts, true},
		{"notes.txt", exts, true},
		{"image.png", exts, false},
		{"anything", nil, true},
	}
	for _, tt := range tests {
		if got := MatchExtension(tt.name, tt.exts); got != tt.want {
			t.Errorf("MatchExtension(%q) = %v, want %v", tt.name, got, tt.want)
		}
	}
}

func TestCleanName(t *testing.T) {
	tests := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{"a.txt", "a.txt", false},
		{"dir/../b.txt", "b.txt", false},
		{`dir\c.txt`, "dir/c.txt", false},
		{"", "", true},
		{"../escape.txt", "", true},
		{"/etc/passwd", "", true},
		{".", "", true},
	}
	for _, tt := range tests {
		got, err := CleanName(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("CleanName(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("CleanName(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
