package model

import (
	"fmt"
	"net/url"
	"regexp"
	"strconv"
	"strings"
)

// PRRef identifies a pull request within a repository.
type PRRef struct {
	Repo   string // "owner/repo"
	Number int
}

func (r PRRef) String() string {
	return fmt.Sprintf("%s#%d", r.Repo, r.Number)
}

// Owner returns the repository owner.
func (r PRRef) Owner() string {
	owner, _, _ := strings.Cut(r.Repo, "/")
	return owner
}

// Name returns the repository name.
func (r PRRef) Name() string {
	_, name, _ := strings.Cut(r.Repo, "/")
	return name
}

var (
	prPathPattern = regexp.MustCompile(`^/([^/]+)/([^/]+)/pull/(\d+)(?:/.*)?$`)
	repoPattern   = regexp.MustCompile(`^[A-Za-z0-9_.-]+/[A-Za-z0-9_.-]+$`)
)

// ResolveReference turns a pull request reference into a PRRef. reference is
// either a pull request URL (https://github.com/<owner>/<repo>/pull/<number>)
// or a bare number. For bare numbers the repository comes from explicitRepo,
// then defaultRepo. An explicit repo never overrides the repository in a URL.
// A URL must include its scheme: "github.com/acme/widgets/pull/42" is rejected
// as malformed rather than read as a number.
func ResolveReference(reference, explicitRepo, defaultRepo string) (PRRef, error) {
	reference = strings.TrimSpace(reference)
	if reference == "" {
		return PRRef{}, fmt.Errorf("%w: empty reference", ErrMalformedReference)
	}

	if strings.Contains(reference, "://") {
		return parsePRURL(reference)
	}

	number, err := parseNumber(strings.TrimPrefix(reference, "#"))
	if err != nil {
		return PRRef{}, fmt.Errorf("%w: %q is neither a URL nor a number", ErrMalformedReference, reference)
	}

	repo := explicitRepo
	if repo == "" {
		repo = defaultRepo
	}
	if repo == "" {
		return PRRef{}, fmt.Errorf("resolving %s: %w", reference, ErrRepositoryUnresolved)
	}
	if err := ValidateRepo(repo); err != nil {
		return PRRef{}, err
	}

	return PRRef{Repo: repo, Number: number}, nil
}

// ValidateRepo checks that repo has the "owner/repo" form.
func ValidateRepo(repo string) error {
	if !repoPattern.MatchString(repo) {
		return fmt.Errorf("%w: invalid repository %q: expected owner/repo", ErrMalformedReference, repo)
	}
	return nil
}

func parsePRURL(raw string) (PRRef, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return PRRef{}, fmt.Errorf("%w: %q: %v", ErrMalformedReference, raw, err)
	}

	m := prPathPattern.FindStringSubmatch(u.Path)
	if m == nil {
		return PRRef{}, fmt.Errorf("%w: %q is not a pull request URL", ErrMalformedReference, raw)
	}

	number, err := parseNumber(m[3])
	if err != nil {
		return PRRef{}, fmt.Errorf("%w: %q: invalid pull request number", ErrMalformedReference, raw)
	}

	repo := m[1] + "/" + m[2]
	if err := ValidateRepo(repo); err != nil {
		return PRRef{}, err
	}

	return PRRef{Repo: repo, Number: number}, nil
}

func parseNumber(s string) (int, error) {
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, err
	}
	if n <= 0 {
		return 0, fmt.Errorf("non-positive number %d", n)
	}
	return n, nil
}
