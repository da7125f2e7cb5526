// Copyright Open Responses Gateway Authors
// SPDX-License-Identifier: Apache-2.0

package memory_test

import (
	"testing"

	"github.com/leseb/docsplit/pkg/chunkstore"
	"github.com/leseb/docsplit/pkg/chunkstore/chunkstoretest"
	"github.com/leseb/docsplit/pkg/chunkstore/memory"
)

func TestMemoryConformance(t *testing.T) {
	chunkstoretest.RunConformanceTests(t, func(t *testing.T) chunkstore.Store {
		return memory.New()
	})
}
