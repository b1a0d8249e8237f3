package checklist

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
)

// Ref identifies one checklist view: a release pull request plus the stage
// it is checked off for. Refs are values; changing the stage produces a new
// Ref via WithStage.
type Ref struct {
	Owner  string
	Repo   string
	Number int
	Stage  string
}

func (r Ref) String() string {
	return fmt.Sprintf("%s/%s#%d::%s", r.Owner, r.Repo, r.Number, r.Stage)
}

// Validate checks the ref identifies a pull request. Stage may be empty;
// whether a stage is valid is decided against the fetched checklist's config,
// not here.
func (r Ref) Validate() error {
	if r.Owner == "" || r.Repo == "" || r.Number <= 0 {
		return fmt.Errorf("not a valid checklist reference: %q", r)
	}
	return nil
}

// WithStage returns a copy of the ref pointing at the given stage.
func (r Ref) WithStage(stage string) Ref {
	r.Stage = stage
	return r
}

// Path returns the checklist's path on the server,
// /{owner}/{repo}/pull/{number} with the stage appended when set.
func (r Ref) Path() string {
	p := fmt.Sprintf("/%s/%s/pull/%d", r.Owner, r.Repo, r.Number)
	if r.Stage != "" {
		p += "/" + r.Stage
	}
	return p
}

// ParseRef accepts the forms users type on the command line:
//
//	owner/repo#123
//	owner/repo#123@stage
//	owner/repo/pull/123
//	owner/repo/pull/123/stage
//	https://host/owner/repo/pull/123/stage
//
// When the input names no stage, defaultStage is used.
func ParseRef(s, defaultStage string) (Ref, error) {
	orig := s
	if strings.Contains(s, "://") {
		u, err := url.Parse(s)
		if err != nil {
			return Ref{}, fmt.Errorf("parse checklist URL: %w", err)
		}
		s = strings.Trim(u.Path, "/")
	}

	ref := Ref{Stage: defaultStage}

	if i := strings.IndexByte(s, '#'); i >= 0 {
		repoPart, numPart := s[:i], s[i+1:]
		if j := strings.IndexByte(numPart, '@'); j >= 0 {
			ref.Stage = numPart[j+1:]
			numPart = numPart[:j]
		}
		owner, repo, ok := strings.Cut(repoPart, "/")
		if !ok {
			return Ref{}, fmt.Errorf("expected owner/repo#number, got %q", orig)
		}
		n, err := strconv.Atoi(numPart)
		if err != nil {
			return Ref{}, fmt.Errorf("pull request number in %q: %w", orig, err)
		}
		ref.Owner, ref.Repo, ref.Number = owner, repo, n
		return ref, ref.Validate()
	}

	parts := strings.Split(strings.Trim(s, "/"), "/")
	if len(parts) < 4 || parts[2] != "pull" {
		return Ref{}, fmt.Errorf("expected owner/repo/pull/number, got %q", orig)
	}
	n, err := strconv.Atoi(parts[3])
	if err != nil {
		return Ref{}, fmt.Errorf("pull request number in %q: %w", orig, err)
	}
	ref.Owner, ref.Repo, ref.Number = parts[0], parts[1], n
	if len(parts) > 4 {
		ref.Stage = parts[4]
	}
	return ref, ref.Validate()
}
