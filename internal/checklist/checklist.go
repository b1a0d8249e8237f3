// Package checklist holds the release-checklist domain model: the checklist
// aggregate fetched from the server, stage resolution, and the state machine
// that drives optimistic check toggling.
//
// Wire shapes follow the server: JSON keys are the capitalized Go field names.
package checklist

// GitHubUser identifies a user account. ID is the stable identity; Login and
// AvatarURL are display data.
type GitHubUser struct {
	ID        int
	Login     string
	AvatarURL string
}

// PullRequest carries the fields of a pull request the checklist renders.
// It doubles as the release PR (embedded in Checklist) and as a feature PR
// (embedded in Item).
type PullRequest struct {
	URL       string
	Title     string
	Body      string
	Owner     string
	Repo      string
	Number    int
	IsPrivate bool
	User      GitHubUser
}

// Config is the per-checklist configuration the server reads from the
// repository. Stages lists the valid stage names in declaration order; an
// empty list means the checklist has no staged mode.
type Config struct {
	Stages []string
}

// Item is one feature pull request merged into the release PR. CheckedBy
// holds the users who checked it, in arrival order, at most one entry per
// user ID.
type Item struct {
	PullRequest
	CheckedBy []GitHubUser
}

// Checklist is the aggregate view of a release pull request and its feature
// checklist for one stage.
type Checklist struct {
	PullRequest
	Stage  string
	Config *Config
	Items  []*Item
}

// ChecklistResponse is the server's reply to both the fetch and the check
// mutation endpoints. Me is nil when the session is anonymous.
type ChecklistResponse struct {
	Checklist *Checklist
	Me        *GitHubUser
}

// MeResponse is the landing-view payload: the viewer and their recent open
// pull requests, keyed by "owner/repo".
type MeResponse struct {
	Me           *GitHubUser
	PullRequests map[string][]*PullRequest
}

// ErrorType tags structured error payloads from the server.
type ErrorType string

// ErrorTypeNotAuthed marks a missing or expired session.
const ErrorTypeNotAuthed ErrorType = "not_authed"

// ErrorResponse is the structured error body the server sends on non-2xx
// statuses it understands.
type ErrorResponse struct {
	Type ErrorType
}

// CheckedByUser reports whether the user with the given ID has checked the item.
func (it *Item) CheckedByUser(id int) bool {
	for _, u := range it.CheckedBy {
		if u.ID == id {
			return true
		}
	}
	return false
}

// AddCheck records a check by the user. Adding a user who already checked the
// item is a no-op, so CheckedBy never holds duplicate IDs.
func (it *Item) AddCheck(u GitHubUser) {
	if it.CheckedByUser(u.ID) {
		return
	}
	it.CheckedBy = append(it.CheckedBy, u)
}

// RemoveCheck drops any check held by the given user ID.
func (it *Item) RemoveCheck(id int) {
	kept := it.CheckedBy[:0]
	for _, u := range it.CheckedBy {
		if u.ID != id {
			kept = append(kept, u)
		}
	}
	it.CheckedBy = kept
}

// Item returns the item for the given feature PR number, or nil.
func (c *Checklist) Item(number int) *Item {
	for _, it := range c.Items {
		if it.Number == number {
			return it
		}
	}
	return nil
}

// Completed reports whether every item has been checked by at least one user.
func (c *Checklist) Completed() bool {
	for _, it := range c.Items {
		if len(it.CheckedBy) == 0 {
			return false
		}
	}
	return true
}

// Checked counts items with at least one check.
func (c *Checklist) Checked() int {
	n := 0
	for _, it := range c.Items {
		if len(it.CheckedBy) > 0 {
			n++
		}
	}
	return n
}

// Stages returns the declared stage names, tolerating a nil Config.
func (c *Checklist) Stages() []string {
	if c.Config == nil {
		return nil
	}
	return c.Config.Stages
}

// Clone returns a deep copy of the checklist. Optimistic updates mutate a
// clone and publish it as the new snapshot, so references to the previous
// snapshot never change underneath their holders.
func (c *Checklist) Clone() *Checklist {
	next := *c
	next.Items = make([]*Item, len(c.Items))
	for i, it := range c.Items {
		cp := *it
		cp.CheckedBy = append([]GitHubUser(nil), it.CheckedBy...)
		next.Items[i] = &cp
	}
	if c.Config != nil {
		cfg := *c.Config
		cfg.Stages = append([]string(nil), c.Config.Stages...)
		next.Config = &cfg
	}
	return &next
}
