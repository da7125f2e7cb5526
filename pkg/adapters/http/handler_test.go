// Copyright Open Responses Gateway Authors
// SPDX-License-Identifier: Apache-2.0

package http

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"

	"github.com/leseb/docsplit/pkg/chunkstore/memory"
	"github.com/leseb/docsplit/pkg/normalize"
	"github.com/leseb/docsplit/pkg/splitter"
	"github.com/leseb/docsplit/pkg/vectorstore"
	vsmemory "github.com/leseb/docsplit/pkg/vectorstore/memory"
)

type runeEmbedder struct{}

func (runeEmbedder) Embed(_ context.Context, inputs []string) ([][]float32, error) {
	out := make([][]float32, len(inputs))
	for i, in := range inputs {
		out[i] = []float32{float32(strings.Count(in, "x")), float32(strings.Count(in, "y"))}
	}
	return out, nil
}

func newHandler(t *testing.T, withSinks bool) *Handler {
	t.Helper()
	opts := Options{
		Splitter:   splitter.Config{TargetLength: 9, OverlapLength: 2, Separators: []string{" "}},
		Normalizer: normalize.New(normalize.DefaultOptions()),
	}
	if withSinks {
		opts.Store = memory.New()
		ix := vectorstore.NewIndexer(runeEmbedder{}, vsmemory.New(), "docs", 2)
		if err := ix.EnsureStore(context.Background()); err != nil {
			t.Fatalf("EnsureStore: %v", err)
		}
		opts.Indexer = ix
	}
	h, err := New(opts, nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return h
}

func do(t *testing.T, h http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func upload(t *testing.T, h http.Handler, name, content string, fields map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile("file", name)
	if err != nil {
		t.Fatalf("CreateFormFile: %v", err)
	}
	fw.Write([]byte(content))
	for k, v := range fields {
		mw.WriteField(k, v)
	}
	mw.Close()

	req := httptest.NewRequest(http.MethodPost, "/v1/documents", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(rec.Body.Bytes(), &v); err != nil {
		t.Fatalf("decode response %q: %v", rec.Body.String(), err)
	}
	return v
}

type errorBody struct {
	Error struct {
		Type    string `json:"type"`
		Message string `json:"message"`
	} `json:"error"`
}

func TestHealth(t *testing.T) {
	rec := do(t, newHandler(t, false), http.MethodGet, "/health", nil)
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), "healthy") {
		t.Errorf("GET /health = %d %s", rec.Code, rec.Body.String())
	}
}

func TestChunks(t *testing.T) {
	rec := do(t, newHandler(t, false), http.MethodPost, "/v1/chunks", map[string]any{
		"name": "doc",
		"text": "AAAA BBBB CCCC DDDD",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	resp := decode[ChunkResponse](t, rec)
	if resp.Name != "doc" || resp.Length != 19 || resp.ChunkCount != 3 {
		t.Errorf("unexpected response header: %+v", resp)
	}
	want := []string{"AAAA BBBB", "BB CCCC", "CC DDDD"}
	for i, c := range resp.Chunks {
		if c.Text != want[i] {
			t.Errorf("chunk[%d] = %q, want %q", i, c.Text, want[i])
		}
	}
	if resp.Chunks[1].ID != "doc_1" || resp.Chunks[1].Overlap != 2 {
		t.Errorf("unexpected chunk: %+v", resp.Chunks[1])
	}
}

func TestChunks_Overrides(t *testing.T) {
	rec := do(t, newHandler(t, false), http.MethodPost, "/v1/chunks", map[string]any{
		"text":           "a  b",
		"target_length":  100,
		"overlap_length": 0,
		"normalize":      false,
	})
	resp := decode[ChunkResponse](t, rec)
	if resp.ChunkCount != 1 || resp.Chunks[0].Text != "a  b" {
		t.Errorf("unexpected response: %+v", resp)
	}
	if resp.Name != "document" {
		t.Errorf("default name = %q", resp.Name)
	}
}

func TestChunks_EmptyTextWarns(t *testing.T) {
	rec := do(t, newHandler(t, false), http.MethodPost, "/v1/chunks", map[string]any{"text": "   "})
	resp := decode[ChunkResponse](t, rec)
	if rec.Code != http.StatusOK || resp.ChunkCount != 0 || resp.Warning == "" {
		t.Errorf("expected empty result with warning, got %d %+v", rec.Code, resp)
	}
	if resp.Chunks == nil {
		t.Error("chunks should be an empty array, not null")
	}
}

func TestChunks_InvalidConfig(t *testing.T) {
	tests := map[string]map[string]any{
		"overlap too large": {"text": "x", "target_length": 5, "overlap_length": 5},
		"zero target":       {"text": "x", "target_length": 0},
		"empty separator":   {"text": "x", "separators": []string{""}},
		"bad position":      {"text": "x", "keep_separator": "middle"},
	}
	for name, body := range tests {
		t.Run(name, func(t *testing.T) {
			rec := do(t, newHandler(t, false), http.MethodPost, "/v1/chunks", body)
			if rec.Code != http.StatusBadRequest {
				t.Fatalf("status = %d, want 400", rec.Code)
			}
			if e := decode[errorBody](t, rec); e.Error.Type != "invalid_config" {
				t.Errorf("error type = %q, want invalid_config", e.Error.Type)
			}
		})
	}
}

func TestChunks_MalformedBody(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/v1/chunks", strings.NewReader("{"))
	rec := httptest.NewRecorder()
	newHandler(t, false).ServeHTTP(rec, req)
	if e := decode[errorBody](t, rec); rec.Code != http.StatusBadRequest || e.Error.Type != "invalid_request" {
		t.Errorf("got %d %+v", rec.Code, e)
	}
}

func TestDocuments_Lifecycle(t *testing.T) {
	h := newHandler(t, true)

	rec := upload(t, h, "notes.txt", "xxxx yyyy xxxx", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("upload status = %d, body %s", rec.Code, rec.Body.String())
	}
	uploaded := decode[ChunkResponse](t, rec)
	if uploaded.ChunkCount == 0 {
		t.Fatal("upload produced no chunks")
	}

	rec = do(t, h, http.MethodGet, "/v1/documents", nil)
	list := decode[struct {
		Data []DocumentObject `json:"data"`
	}](t, rec)
	if len(list.Data) != 1 || list.Data[0].Name != "notes.txt" || list.Data[0].ChunkCount != uploaded.ChunkCount {
		t.Errorf("unexpected document list: %+v", list.Data)
	}
	if len(list.Data) == 1 {
		if _, err := uuid.Parse(list.Data[0].RunID); err != nil {
			t.Errorf("uploaded document run_id %q is not a uuid: %v", list.Data[0].RunID, err)
		}
	}

	rec = do(t, h, http.MethodGet, "/v1/documents/notes.txt/chunks", nil)
	stored := decode[ChunkResponse](t, rec)
	if stored.ChunkCount != uploaded.ChunkCount || stored.Length != uploaded.Length {
		t.Errorf("stored chunks %+v differ from uploaded %+v", stored, uploaded)
	}

	rec = do(t, h, http.MethodPost, "/v1/search", map[string]any{"query": "yyy", "top_k": 1})
	hits := decode[struct {
		Data []SearchHit `json:"data"`
	}](t, rec)
	if len(hits.Data) != 1 || !strings.Contains(hits.Data[0].Text, "yyyy") {
		t.Errorf("unexpected search hits: %+v", hits.Data)
	}

	rec = do(t, h, http.MethodDelete, "/v1/documents/notes.txt", nil)
	if rec.Code != http.StatusOK {
		t.Errorf("delete status = %d", rec.Code)
	}
	rec = do(t, h, http.MethodGet, "/v1/documents/notes.txt/chunks", nil)
	if rec.Code != http.StatusNotFound {
		t.Errorf("chunks after delete status = %d, want 404", rec.Code)
	}
	rec = do(t, h, http.MethodDelete, "/v1/documents/notes.txt", nil)
	if rec.Code != http.StatusNotFound {
		t.Errorf("second delete status = %d, want 404", rec.Code)
	}
}

func TestDocuments_UploadErrors(t *testing.T) {
	h := newHandler(t, true)

	rec := upload(t, h, "broken.pdf", "not a pdf", nil)
	if e := decode[errorBody](t, rec); rec.Code != http.StatusUnprocessableEntity || e.Error.Type != "extraction_error" {
		t.Errorf("corrupt pdf: got %d %+v", rec.Code, e)
	}

	rec = upload(t, h, "a.txt", "text", map[string]string{"target_length": "ten"})
	if rec.Code != http.StatusBadRequest {
		t.Errorf("non-numeric target_length: status = %d, want 400", rec.Code)
	}

	rec = upload(t, h, "a.txt", "text", map[string]string{"target_length": "4", "overlap_length": "4"})
	if e := decode[errorBody](t, rec); rec.Code != http.StatusBadRequest || e.Error.Type != "invalid_config" {
		t.Errorf("invalid overrides: got %d %+v", rec.Code, e)
	}
}

func TestNotConfigured(t *testing.T) {
	h := newHandler(t, false)
	for _, tc := range []struct{ method, path string }{
		{http.MethodGet, "/v1/documents"},
		{http.MethodGet, "/v1/documents/a/chunks"},
		{http.MethodDelete, "/v1/documents/a"},
	} {
		rec := do(t, h, tc.method, tc.path, nil)
		if e := decode[errorBody](t, rec); rec.Code != http.StatusNotFound || e.Error.Type != "not_configured" {
			t.Errorf("%s %s: got %d %+v", tc.method, tc.path, rec.Code, e)
		}
	}
	rec := do(t, h, http.MethodPost, "/v1/search", map[string]any{"query": "x"})
	if rec.Code != http.StatusNotFound {
		t.Errorf("search without indexer: status = %d, want 404", rec.Code)
	}
}

func TestOpenAPI(t *testing.T) {
	rec := do(t, newHandler(t, false), http.MethodGet, "/openapi.json", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	doc := decode[map[string]any](t, rec)
	paths, ok := doc["paths"].(map[string]any)
	if !ok || paths["/v1/chunks"] == nil {
		t.Errorf("OpenAPI document missing /v1/chunks: %v", doc["paths"])
	}
}

func TestNew_RejectsInvalidBase(t *testing.T) {
	if _, err := New(Options{Splitter: splitter.Config{TargetLength: 0}}, nil); err == nil {
		t.Error("expected error for invalid base splitter config")
	}
}
