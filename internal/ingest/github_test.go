package ingest

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeBlob struct {
	path    string
	content string
	status  int // non-zero forces an error response
}

// newGitHubServer serves a recursive tree for octo/hello and one blob per
// entry. Blob SHAs are the entry index.
func newGitHubServer(t *testing.T, treeStatus int, blobs []fakeBlob) (*httptest.Server, *atomic.Int32) {
	t.Helper()
	var blobHits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch {
		case strings.HasPrefix(r.URL.Path, "/repos/octo/hello/git/trees/"):
			if treeStatus != 0 {
				w.WriteHeader(treeStatus)
				_, _ = w.Write([]byte(`{"message":"nope"}`))
				return
			}
			assert.Equal(t, "1", r.URL.Query().Get("recursive"))
			var entries []map[string]any
			for i, b := range blobs {
				entries = append(entries, map[string]any{
					"path": b.path, "type": "blob", "sha": fmt.Sprint(i), "size": len(b.content),
				})
			}
			entries = append(entries, map[string]any{"path": "src", "type": "tree", "sha": "dir"})
			_ = json.NewEncoder(w).Encode(map[string]any{"sha": "root", "tree": entries, "truncated": false})
		case strings.HasPrefix(r.URL.Path, "/repos/octo/hello/git/blobs/"):
			blobHits.Add(1)
			var idx int
			_, err := fmt.Sscan(strings.TrimPrefix(r.URL.Path, "/repos/octo/hello/git/blobs/"), &idx)
			if err != nil || idx >= len(blobs) {
				w.WriteHeader(http.StatusNotFound)
				return
			}
			b := blobs[idx]
			if b.status != 0 {
				w.WriteHeader(b.status)
				_, _ = w.Write([]byte(`{"message":"gone"}`))
				return
			}
			_ = json.NewEncoder(w).Encode(map[string]any{
				"sha":      fmt.Sprint(idx),
				"size":     len(b.content),
				"encoding": "base64",
				"content":  base64.StdEncoding.EncodeToString([]byte(b.content)),
			})
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	t.Cleanup(srv.Close)
	return srv, &blobHits
}

func testIngestConfig(baseURL string) Config {
	cfg := DefaultConfig()
	cfg.GitHubBaseURL = baseURL
	cfg.RequestsPerSecond = 0
	return cfg
}

func TestGitHubFetch(t *testing.T) {
	srv, _ := newGitHubServer(t, 0, []fakeBlob{
		{path: "README.md", content: "# Hello"},
		{path: "cmd/main.go", content: "package main"},
		{path: "node_modules/x/index.js", content: "skip me"},
		{path: "assets/logo.png", content: "png"},
	})

	f := NewGitHubFetcher(testIngestConfig(srv.URL), srv.Client(), nil)
	records, err := f.Fetch(context.Background(), RepoRef{Host: HostGitHub, Owner: "octo", Name: "hello"}, "token")
	require.NoError(t, err)

	got := recordPaths(records)
	require.Len(t, got, 2)
	assert.Equal(t, "# Hello", got["README.md"].Content)
	assert.Equal(t, "markdown", got["README.md"].Language)
	assert.Equal(t, "package main", got["cmd/main.go"].Content)
}

func TestGitHubFetchPartialFailure(t *testing.T) {
	srv, hits := newGitHubServer(t, 0, []fakeBlob{
		{path: "a.go", content: "package a"},
		{path: "b.go", content: "package b", status: http.StatusNotFound},
		{path: "c.go", content: "package c"},
		{path: "d.go", content: "package d", status: http.StatusInternalServerError},
		{path: "e.go", content: "package e"},
	})

	f := NewGitHubFetcher(testIngestConfig(srv.URL), srv.Client(), nil)
	records, err := f.Fetch(context.Background(), RepoRef{Host: HostGitHub, Owner: "octo", Name: "hello"}, "")
	require.NoError(t, err)

	assert.EqualValues(t, 5, hits.Load(), "every selected blob is requested")
	got := recordPaths(records)
	assert.Len(t, got, 3)
	assert.Contains(t, got, "a.go")
	assert.Contains(t, got, "c.go")
	assert.Contains(t, got, "e.go")
}

func TestGitHubFetchDropsBinaryBlob(t *testing.T) {
	srv, _ := newGitHubServer(t, 0, []fakeBlob{
		{path: "data.txt", content: string([]byte{0, 1, 2, 3, 4, 5})},
		{path: "ok.txt", content: "fine"},
	})

	f := NewGitHubFetcher(testIngestConfig(srv.URL), srv.Client(), nil)
	records, err := f.Fetch(context.Background(), RepoRef{Host: HostGitHub, Owner: "octo", Name: "hello"}, "")
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "ok.txt", records[0].Path)
}

func TestGitHubFetchCapsFileCount(t *testing.T) {
	var blobs []fakeBlob
	for i := range 8 {
		blobs = append(blobs, fakeBlob{path: fmt.Sprintf("f%d.go", i), content: "package f"})
	}
	srv, hits := newGitHubServer(t, 0, blobs)

	cfg := testIngestConfig(srv.URL)
	cfg.MaxRemoteFiles = 3
	records, err := NewGitHubFetcher(cfg, srv.Client(), nil).
		Fetch(context.Background(), RepoRef{Host: HostGitHub, Owner: "octo", Name: "hello"}, "")
	require.NoError(t, err)
	assert.Len(t, records, 3)
	assert.EqualValues(t, 3, hits.Load())
}

func TestGitHubFetchListingErrors(t *testing.T) {
	tests := []struct {
		status int
		want   error
	}{
		{http.StatusNotFound, ErrRepositoryNotFound},
		{http.StatusForbidden, ErrRepositoryNotFound},
		{http.StatusUnauthorized, ErrAuthenticationRequired},
	}
	for _, tt := range tests {
		t.Run(http.StatusText(tt.status), func(t *testing.T) {
			srv, _ := newGitHubServer(t, tt.status, nil)
			f := NewGitHubFetcher(testIngestConfig(srv.URL), srv.Client(), nil)
			_, err := f.Fetch(context.Background(), RepoRef{Host: HostGitHub, Owner: "octo", Name: "hello"}, "")
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestGitHubFetchTransportError(t *testing.T) {
	srv, _ := newGitHubServer(t, http.StatusBadGateway, nil)
	f := NewGitHubFetcher(testIngestConfig(srv.URL), srv.Client(), nil)
	_, err := f.Fetch(context.Background(), RepoRef{Host: HostGitHub, Owner: "octo", Name: "hello"}, "")

	var te *TransportError
	require.ErrorAs(t, err, &te)
	assert.Equal(t, http.StatusBadGateway, te.Status)
}

func TestDecodeBlob(t *testing.T) {
	data, err := decodeBlob("aGVs\nbG8=\n", "base64")
	require.NoError(t, err)
	assert.Equal(t, "hello", string(data))

	data, err = decodeBlob("plain", "utf-8")
	require.NoError(t, err)
	assert.Equal(t, "plain", string(data))

	_, err = decodeBlob("x", "rot13")
	assert.Error(t, err)

	_, err = decodeBlob("!!!", "base64")
	assert.Error(t, err)
}
