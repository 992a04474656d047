package ingest

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseRepoRef(t *testing.T) {
	tests := []struct {
		in   string
		want RepoRef
	}{
		{"octo/hello", RepoRef{Host: HostGitHub, Owner: "octo", Name: "hello"}},
		{"https://github.com/octo/hello", RepoRef{Host: HostGitHub, Owner: "octo", Name: "hello"}},
		{"https://github.com/octo/hello.git", RepoRef{Host: HostGitHub, Owner: "octo", Name: "hello"}},
		{"https://github.com/octo/hello/", RepoRef{Host: HostGitHub, Owner: "octo", Name: "hello"}},
		{"https://github.com/octo/hello/tree/dev", RepoRef{Host: HostGitHub, Owner: "octo", Name: "hello", Ref: "dev"}},
		{"github.com/octo/hello", RepoRef{Host: HostGitHub, Owner: "octo", Name: "hello"}},
		{"git@github.com:octo/hello.git", RepoRef{Host: HostGitHub, Owner: "octo", Name: "hello"}},
		{"https://gitlab.com/group/sub/proj", RepoRef{Host: HostGitLab, Owner: "group/sub", Name: "proj"}},
		{"https://gitlab.com/group/proj/-/tree/main", RepoRef{Host: HostGitLab, Owner: "group", Name: "proj", Ref: "main"}},
		{"git@gitlab.com:group/sub/proj.git", RepoRef{Host: HostGitLab, Owner: "group/sub", Name: "proj"}},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseRepoRef(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseRepoRefInvalid(t *testing.T) {
	for _, in := range []string{
		"",
		"   ",
		"hello",
		"https://github.com/octo",
		"https://github.com/a/b/c",
		"ftp://github.com/octo/hello",
		"octo/hel lo",
	} {
		_, err := ParseRepoRef(in)
		assert.ErrorIs(t, err, ErrInvalidSourceLocator, in)
	}
}

func TestRepoRefFullName(t *testing.T) {
	assert.Equal(t, "group/sub/proj", RepoRef{Owner: "group/sub", Name: "proj"}.FullName())
}

func TestLocalSourceValidate(t *testing.T) {
	dir := t.TempDir()
	assert.NoError(t, LocalSource{Path: dir}.Validate())
	assert.ErrorIs(t, LocalSource{Path: ""}.Validate(), ErrInvalidSourceLocator)
	assert.ErrorIs(t, LocalSource{Path: filepath.Join(dir, "nope")}.Validate(), ErrInvalidSourceLocator)

	file := filepath.Join(dir, "f.txt")
	writeFile(t, file, "x")
	assert.ErrorIs(t, LocalSource{Path: file}.Validate(), ErrInvalidSourceLocator)
}

func TestRemoteSourceValidate(t *testing.T) {
	assert.NoError(t, RemoteSource{Locator: "octo/hello"}.Validate())
	assert.ErrorIs(t, RemoteSource{Locator: "nope"}.Validate(), ErrInvalidSourceLocator)
}
