// Copyright Open Responses Gateway Authors
// SPDX-License-Identifier: Apache-2.0

package extractor

import (
	"bytes"
	"encoding/json"
	"strings"
)

// extractJSON pretty-prints a JSON document. Invalid JSON is returned as-is.
func extractJSON(content []byte) (string, error) {
	var buf bytes.Buffer
	if err := json.Indent(&buf, content, "", "  "); err != nil {
		return string(content), nil
	}
	return buf.String(), nil
}

// extractJSONL pretty-prints each line and separates records with a blank
// line, so every record is a paragraph for the splitter.
func extractJSONL(content []byte) (string, error) {
	var records []string
	for _, line := range strings.Split(string(content), "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		var buf bytes.Buffer
		if err := json.Indent(&buf, []byte(line), "", "  "); err != nil {
			records = append(records, line)
			continue
		}
		records = append(records, buf.String())
	}
	return strings.Join(records, "\n\n"), nil
}
