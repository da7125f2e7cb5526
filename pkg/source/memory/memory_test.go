// Copyright Open Responses Gateway Authors
// SPDX-License-Identifier: Apache-2.0

package memory_test

import (
	"testing"

	"github.com/leseb/docsplit/pkg/source"
	"github.com/leseb/docsplit/pkg/source/memory"
	"github.com/leseb/docsplit/pkg/source/sourcetest"
)

func TestMemoryConformance(t *testing.T) {
	sourcetest.RunConformanceTests(t, func(t *testing.T, exts []string) source.Source {
		return memory.New(exts)
	})
}
