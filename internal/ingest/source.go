package ingest

import (
	"fmt"
	"os"
	"regexp"
	"strings"
)

// Source selects where a run's files come from. It is either RemoteSource or
// LocalSource.
type Source interface {
	// Validate checks the locator before any fetch is attempted.
	Validate() error
	isSource()
}

// RemoteSource is a repository reachable over a hosting API.
type RemoteSource struct {
	Locator    string // URL, host/owner/name, git@host:owner/name or owner/name
	Credential string // optional bearer token
}

// LocalSource is a directory on the local filesystem.
type LocalSource struct {
	Path string
}

func (RemoteSource) isSource() {}
func (LocalSource) isSource()  {}

// Validate parses the locator.
func (s RemoteSource) Validate() error {
	_, err := ParseRepoRef(s.Locator)
	return err
}

// Validate checks that the path exists and is a directory.
func (s LocalSource) Validate() error {
	if strings.TrimSpace(s.Path) == "" {
		return fmt.Errorf("%w: empty path", ErrInvalidSourceLocator)
	}
	info, err := os.Stat(s.Path)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidSourceLocator, err)
	}
	if !info.IsDir() {
		return fmt.Errorf("%w: %s is not a directory", ErrInvalidSourceLocator, s.Path)
	}
	return nil
}

// Hosts recognised by ParseRepoRef.
const (
	HostGitHub = "github.com"
	HostGitLab = "gitlab.com"
)

// RepoRef identifies a remote repository.
type RepoRef struct {
	Host  string
	Owner string // may contain slashes for GitLab subgroups
	Name  string
	Ref   string // optional branch, tag or commit
}

// FullName returns "owner/name".
func (r RepoRef) FullName() string {
	return r.Owner + "/" + r.Name
}

var (
	scpPattern    = regexp.MustCompile(`^git@([^:]+):(.+?)(?:\.git)?/?$`)
	schemePattern = regexp.MustCompile(`^(?:https?|ssh)://(?:[^@/]+@)?([^/]+)/(.+?)(?:\.git)?/?$`)
	namePattern   = regexp.MustCompile(`^[A-Za-z0-9_.-]+$`)
)

// ParseRepoRef parses a repository locator. Supported forms:
//   - https://github.com/owner/name(.git), optionally with /tree/<ref>
//   - github.com/owner/name
//   - git@gitlab.com:group/sub/name.git
//   - owner/name (GitHub)
func ParseRepoRef(locator string) (RepoRef, error) {
	locator = strings.TrimSpace(locator)
	if locator == "" {
		return RepoRef{}, fmt.Errorf("%w: empty repository locator", ErrInvalidSourceLocator)
	}

	var host, rest string
	switch {
	case scpPattern.MatchString(locator):
		m := scpPattern.FindStringSubmatch(locator)
		host, rest = m[1], m[2]
	case schemePattern.MatchString(locator):
		m := schemePattern.FindStringSubmatch(locator)
		host, rest = m[1], m[2]
	case strings.Contains(locator, "://"):
		return RepoRef{}, fmt.Errorf("%w: %q", ErrInvalidSourceLocator, locator)
	default:
		parts := strings.SplitN(locator, "/", 2)
		if len(parts) == 2 && strings.Contains(parts[0], ".") {
			host, rest = parts[0], strings.TrimSuffix(strings.TrimSuffix(parts[1], "/"), ".git")
		} else {
			host, rest = HostGitHub, strings.TrimSuffix(strings.TrimSuffix(locator, "/"), ".git")
		}
	}

	host = strings.ToLower(host)
	rest, ref := splitTreeRef(rest)

	segs := strings.Split(rest, "/")
	if len(segs) < 2 {
		return RepoRef{}, fmt.Errorf("%w: %q needs owner and name", ErrInvalidSourceLocator, locator)
	}
	if !isGitLabHost(host) && len(segs) != 2 {
		return RepoRef{}, fmt.Errorf("%w: %q", ErrInvalidSourceLocator, locator)
	}
	for _, s := range segs {
		if !namePattern.MatchString(s) {
			return RepoRef{}, fmt.Errorf("%w: bad path segment %q in %q", ErrInvalidSourceLocator, s, locator)
		}
	}

	return RepoRef{
		Host:  host,
		Owner: strings.Join(segs[:len(segs)-1], "/"),
		Name:  segs[len(segs)-1],
		Ref:   ref,
	}, nil
}

// splitTreeRef strips a "/tree/<ref>" or "/-/tree/<ref>" suffix.
func splitTreeRef(p string) (string, string) {
	for _, marker := range []string{"/-/tree/", "/tree/"} {
		if before, after, ok := strings.Cut(p, marker); ok {
			return before, after
		}
	}
	return p, ""
}

// isGitLabHost reports whether host looks like a GitLab instance.
func isGitLabHost(host string) bool {
	return host == HostGitLab || strings.Contains(host, "gitlab")
}
