// Copyright Open Responses Gateway Authors
// SPDX-License-Identifier: Apache-2.0

package extractor

import (
	"bytes"
	"errors"
	"unicode/utf8"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// extractText passes plain text through, dropping a UTF-8 byte order mark.
// Content that is not UTF-8 is most likely a binary format we do not read.
func extractText(content []byte) (string, error) {
	content = bytes.TrimPrefix(content, utf8BOM)
	if !utf8.Valid(content) {
		return "", errors.New("content is not valid UTF-8 text")
	}
	return string(content), nil
}
