// Copyright Open Responses Gateway Authors
// SPDX-License-Identifier: Apache-2.0

package s3_test

import (
	"context"
	"os"
	"testing"

	"github.com/leseb/docsplit/pkg/source"
	srcs3 "github.com/leseb/docsplit/pkg/source/s3"
	"github.com/leseb/docsplit/pkg/source/sourcetest"
)

func TestS3Conformance(t *testing.T) {
	bucket := os.Getenv("SOURCE_S3_BUCKET")
	endpoint := os.Getenv("SOURCE_S3_ENDPOINT")
	if bucket == "" || endpoint == "" {
		t.Skip("Skipping S3 conformance tests: SOURCE_S3_BUCKET and SOURCE_S3_ENDPOINT must be set (e.g. with MinIO)")
	}

	region := os.Getenv("SOURCE_S3_REGION")
	if region == "" {
		region = "us-east-1"
	}

	sourcetest.RunConformanceTests(t, func(t *testing.T, exts []string) source.Source {
		store, err := srcs3.New(context.Background(), srcs3.Options{
			Bucket:     bucket,
			Region:     region,
			Prefix:     "test-" + t.Name() + "/",
			Endpoint:   endpoint,
			Extensions: exts,
		})
		if err != nil {
			t.Fatalf("s3.New: %v", err)
		}
		return store
	})
}

func TestNew_RequiresBucket(t *testing.T) {
	if _, err := srcs3.New(context.Background(), srcs3.Options{}); err == nil {
		t.Error("expected error when bucket is empty")
	}
}
