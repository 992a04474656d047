package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/julianshen/repodoc/internal/config"
	"github.com/julianshen/repodoc/internal/ingest"
	"github.com/julianshen/repodoc/internal/pipeline"
	"github.com/julianshen/repodoc/internal/tui"
)

func TestVersionString(t *testing.T) {
	s := versionString()
	assert.Contains(t, s, "repodoc")
	assert.Contains(t, s, version)
	assert.Contains(t, s, commit)
	assert.Contains(t, s, date)
}

func TestVersionCommand(t *testing.T) {
	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetArgs([]string{"version"})
	cmd.SetOut(&out)
	require.NoError(t, cmd.Execute())
	assert.Equal(t, versionString()+"\n", out.String())
}

func TestGenerateOptionsInputs(t *testing.T) {
	opts := &generateOptions{token: "tok", project: "demo", email: true, recipient: "a@b.c"}
	in := opts.inputs([]string{"octo/hello"})
	assert.Equal(t, tui.GenerateInputs{
		SourceType:  tui.SourceRemote,
		Locator:     "octo/hello",
		Token:       "tok",
		ProjectName: "demo",
		SendEmail:   true,
		Recipient:   "a@b.c",
	}, in)

	opts = &generateOptions{local: true}
	in = opts.inputs(nil)
	assert.Equal(t, tui.SourceLocal, in.SourceType)
	assert.Equal(t, ".", in.Path)
}

func TestConfigMapping(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Ingest.GitLabBaseURL = "https://gitlab.internal.example"

	ic := ingestConfig(cfg)
	assert.Equal(t, cfg.Ingest.MaxFileSize, ic.MaxFileSize)
	assert.Equal(t, cfg.Ingest.MaxRemoteFiles, ic.MaxRemoteFiles)
	assert.Equal(t, cfg.Ingest.RequestsPerSecond, ic.RequestsPerSecond)
	assert.Equal(t, "https://gitlab.internal.example", ic.GitLabBaseURL)

	pc := pipelineConfig(cfg)
	assert.Equal(t, pipeline.DefaultConfig(), pc)
}

func TestNewDeliverer(t *testing.T) {
	cfg := config.DefaultConfig()
	d, err := newDeliverer(cfg, nil)
	require.NoError(t, err)
	assert.Nil(t, d)

	cfg.Mail.Enabled = true
	cfg.Mail.Host = "smtp.example.com"
	cfg.Mail.From = "docs@example.com"
	d, err = newDeliverer(cfg, nil)
	require.NoError(t, err)
	assert.NotNil(t, d)

	cfg.Mail.Username = "user"
	t.Setenv(config.EnvSMTPPassword, "")
	_, err = newDeliverer(cfg, nil)
	assert.ErrorContains(t, err, "smtp password")
}

type captureIngester struct {
	got ingest.Source
}

func (c *captureIngester) Ingest(_ context.Context, src ingest.Source) ([]ingest.FileRecord, error) {
	c.got = src
	return nil, nil
}

func TestCredentialIngesterDefaults(t *testing.T) {
	t.Setenv(config.EnvGitHubToken, "gh-token")
	t.Setenv(config.EnvGitLabToken, "gl-token")

	cfg := config.DefaultConfig()
	cfg.Ingest.GitLabBaseURL = "https://code.internal.example"
	next := &captureIngester{}
	ci := &credentialIngester{next: next, cfg: cfg}

	tests := []struct {
		src  ingest.Source
		want ingest.Source
	}{
		{ingest.RemoteSource{Locator: "octo/hello"}, ingest.RemoteSource{Locator: "octo/hello", Credential: "gh-token"}},
		{ingest.RemoteSource{Locator: "gitlab.com/g/p"}, ingest.RemoteSource{Locator: "gitlab.com/g/p", Credential: "gl-token"}},
		{ingest.RemoteSource{Locator: "code.internal.example/g/p"}, ingest.RemoteSource{Locator: "code.internal.example/g/p", Credential: "gl-token"}},
		{ingest.RemoteSource{Locator: "octo/hello", Credential: "explicit"}, ingest.RemoteSource{Locator: "octo/hello", Credential: "explicit"}},
		{ingest.LocalSource{Path: "."}, ingest.LocalSource{Path: "."}},
	}
	for _, tt := range tests {
		_, err := ci.Ingest(context.Background(), tt.src)
		require.NoError(t, err)
		assert.Equal(t, tt.want, next.got)
	}
}

func TestExitCode(t *testing.T) {
	assert.Equal(t, 1, exitCode(errors.New("plain")))
	assert.Equal(t, 2, exitCode(&pipeline.RunError{Kind: pipeline.KindInvalidSource}))
	assert.Equal(t, 3, exitCode(&pipeline.RunError{Kind: pipeline.KindRepositoryNotFound}))
	assert.Equal(t, 3, exitCode(&pipeline.RunError{Kind: pipeline.KindAuthenticationRequired}))
	assert.Equal(t, 4, exitCode(fmt.Errorf("wrapped: %w", &pipeline.RunError{Kind: pipeline.KindTransportFailure})))
	assert.Equal(t, 5, exitCode(&pipeline.RunError{Kind: pipeline.KindStageFailure}))
}

// fakeLLMServer answers every chat completion with a document pair.
func fakeLLMServer(t *testing.T) *httptest.Server {
	t.Helper()
	content := "# Technical Specification\n\nGo service.\n" + pipeline.SplitMarker + "\n# Functional Specification\n\nUsers log in.\n"
	chunk, err := json.Marshal(map[string]any{
		"choices": []map[string]any{{"delta": map[string]string{"content": content}}},
	})
	require.NoError(t, err)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		w.Header().Set("Content-Type", "text/event-stream")
		fmt.Fprintf(w, "data: %s\n\ndata: [DONE]\n\n", chunk)
	}))
	t.Cleanup(server.Close)
	return server
}

func writeTestConfig(t *testing.T, baseURL string) string {
	t.Helper()
	cfg := config.DefaultConfig()
	cfg.Provider.Default = "fake"
	cfg.Provider.Model = "test-model"
	cfg.Provider.OpenAI = []config.OpenAICompatibleConfig{{
		Name:         "fake",
		BaseURL:      baseURL,
		APIKeySource: "config",
		APIKey:       "sk-fake-key-123456",
	}}
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, config.Save(path, cfg))
	return path
}

func TestGenerateLocalEndToEnd(t *testing.T) {
	server := fakeLLMServer(t)
	cfgPath := writeTestConfig(t, server.URL)

	repo := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(repo, "main.go"), []byte("package main\n\nfunc main() {}\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(repo, "README.md"), []byte("# Demo\n"), 0o644))
	outDir := filepath.Join(t.TempDir(), "docs")

	var stdout, stderr bytes.Buffer
	cmd := newRootCmd()
	cmd.SetArgs([]string{"--config", cfgPath, "generate", "--local", repo, "--project", "Demo App", "--format", "json", "--output", outDir})
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	require.NoError(t, cmd.Execute())

	var result pipeline.AnalysisResult
	require.NoError(t, json.Unmarshal(stdout.Bytes(), &result))
	assert.Equal(t, "# Technical Specification\n\nGo service.", result.TechnicalSpec)
	assert.Equal(t, "# Functional Specification\n\nUsers log in.", result.FunctionalSpec)
	assert.Equal(t, "Demo App", result.Metadata.ProjectName)
	assert.Equal(t, 2, result.Metadata.FileCount)
	assert.Equal(t, []string{"go", "markdown"}, result.Metadata.Languages)

	assert.Contains(t, stderr.String(), "[100%] Complete")
	assert.FileExists(t, filepath.Join(outDir, "demo-app-technical-spec.md"))
	assert.FileExists(t, filepath.Join(outDir, "demo-app-functional-spec.md"))
}

func TestGeneratePreview(t *testing.T) {
	server := fakeLLMServer(t)
	cfgPath := writeTestConfig(t, server.URL)

	repo := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(repo, "main.go"), []byte("package main\n"), 0o644))

	var stdout bytes.Buffer
	cmd := newRootCmd()
	cmd.SetArgs([]string{"--config", cfgPath, "generate", "--local", repo, "--preview"})
	cmd.SetOut(&stdout)
	cmd.SetErr(&bytes.Buffer{})
	require.NoError(t, cmd.Execute())

	assert.Contains(t, stdout.String(), "Functional Specification")
	assert.Contains(t, stdout.String(), "Users log in.")
}

func TestGenerateRequiresLocator(t *testing.T) {
	cmd := newRootCmd()
	cmd.SetArgs([]string{"generate"})
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})

	err := cmd.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "repository locator is required")
}

func TestGenerateRejectsUnknownFormat(t *testing.T) {
	cmd := newRootCmd()
	cmd.SetArgs([]string{"generate", "octo/hello", "--format", "xml"})
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})

	err := cmd.Execute()
	assert.ErrorContains(t, err, "unknown output format")
}

func TestGenerateInvalidSourceExitCode(t *testing.T) {
	server := fakeLLMServer(t)
	cfgPath := writeTestConfig(t, server.URL)

	cmd := newRootCmd()
	cmd.SetArgs([]string{"--config", cfgPath, "generate", "--local", filepath.Join(t.TempDir(), "missing")})
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})

	err := cmd.Execute()
	require.Error(t, err)
	assert.Equal(t, 2, exitCode(err))
}

func TestConfigInit(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.toml")

	run := func(args ...string) (string, error) {
		var out bytes.Buffer
		cmd := newRootCmd()
		cmd.SetArgs(append([]string{"--config", path, "config", "init"}, args...))
		cmd.SetOut(&out)
		cmd.SetErr(&bytes.Buffer{})
		err := cmd.Execute()
		return out.String(), err
	}

	out, err := run()
	require.NoError(t, err)
	assert.Contains(t, out, path)

	loaded, err := config.Load(path)
	require.NoError(t, err)
	assert.Equal(t, config.DefaultConfig(), loaded)

	_, err = run()
	assert.ErrorContains(t, err, "already exists")

	_, err = run("--force")
	assert.NoError(t, err)
}

func TestConfigShowMasksSecrets(t *testing.T) {
	cfgPath := writeTestConfig(t, "http://127.0.0.1:1")

	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetArgs([]string{"--config", cfgPath, "config", "show"})
	cmd.SetOut(&out)
	cmd.SetErr(&bytes.Buffer{})
	require.NoError(t, cmd.Execute())

	assert.Contains(t, out.String(), "effective configuration")
	assert.Contains(t, out.String(), "config.provider=fake")
	assert.False(t, strings.Contains(out.String(), "sk-fake-key-123456"))
}
