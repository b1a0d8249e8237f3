package checklist

import "errors"

// Phase names the state the machine is in for its current ref.
type Phase int

const (
	PhaseIdle Phase = iota
	PhaseLoading
	PhaseLoaded
	PhaseRedirecting
	PhaseError
)

func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhaseLoading:
		return "loading"
	case PhaseLoaded:
		return "loaded"
	case PhaseRedirecting:
		return "redirecting"
	case PhaseError:
		return "error"
	}
	return "unknown"
}

// ErrorKind classifies the failure that put the machine in PhaseError.
type ErrorKind int

const (
	ErrorNone ErrorKind = iota
	ErrorAuth
	ErrorTransport
)

// Navigator is the machine's only outward side effect: it is invoked with the
// corrected ref when stage resolution demands a redirect. Injected so the
// machine itself stays free of I/O.
type Navigator interface {
	Navigate(ref Ref)
}

// NavigatorFunc adapts a function to the Navigator interface.
type NavigatorFunc func(Ref)

func (f NavigatorFunc) Navigate(ref Ref) { f(ref) }

// FetchEffect asks the caller to fetch the checklist for Ref and feed the
// result back through ApplyFetch.
type FetchEffect struct {
	Ref Ref
}

// SetCheckEffect asks the caller to issue the check mutation and feed the
// result back through ApplySetCheck.
type SetCheckEffect struct {
	Ref           Ref
	FeatureNumber int
	Checked       bool
}

// Machine owns the checklist snapshot for one ref and drives loading, stage
// reconciliation, and optimistic toggling. It performs no I/O itself: Load
// and Toggle return effect values the caller executes, and the results come
// back through the Apply methods, tagged with the ref they were issued for so
// responses for an abandoned ref are discarded.
//
// A Machine is not goroutine safe; all calls must come from one event loop,
// with remote calls running off-loop and their results applied back on it.
type Machine struct {
	nav Navigator

	phase     Phase
	ref       Ref
	checklist *Checklist
	me        *GitHubUser
	errKind   ErrorKind
	err       error
	toggleErr error
	inflight  map[int]bool
}

// NewMachine returns an idle machine. nav may be nil when the caller never
// expects redirects (tests exercising only loaded behavior).
func NewMachine(nav Navigator) *Machine {
	return &Machine{nav: nav, inflight: map[int]bool{}}
}

// Load targets the machine at ref and returns the fetch to perform. Any
// state held for a previous ref is dropped.
func (m *Machine) Load(ref Ref) (FetchEffect, error) {
	if err := ref.Validate(); err != nil {
		return FetchEffect{}, err
	}
	m.phase = PhaseLoading
	m.ref = ref
	m.checklist = nil
	m.me = nil
	m.errKind = ErrorNone
	m.err = nil
	m.toggleErr = nil
	m.inflight = map[int]bool{}
	return FetchEffect{Ref: ref}, nil
}

// ApplyFetch publishes a fetch result. Results for a ref other than the
// machine's current one are discarded: the view has navigated on and the
// response belongs to a dead request.
func (m *Machine) ApplyFetch(ref Ref, resp *ChecklistResponse, err error) {
	if ref != m.ref || m.phase != PhaseLoading {
		return
	}
	if err != nil {
		m.err = err
		m.errKind = classify(err)
		m.phase = PhaseError
		return
	}

	// Stage reconciliation happens before the checklist is published, so a
	// snapshot whose stage the config does not declare is never displayed.
	if stage, redirect := ResolveStage(ref.Stage, resp.Checklist.Stages()); redirect {
		m.phase = PhaseRedirecting
		if m.nav != nil {
			m.nav.Navigate(ref.WithStage(stage))
		}
		return
	}

	m.checklist = resp.Checklist
	m.me = resp.Me
	m.phase = PhaseLoaded
}

// Toggle starts checking (checked=true) or unchecking an item. The snapshot
// is updated optimistically before the mutation is sent, and the item is
// gated so a second toggle while one is in flight is ignored rather than
// queued. Returns ok=false when the toggle is not allowed: machine not
// loaded, viewer unknown, item unknown, or item already in flight.
func (m *Machine) Toggle(featureNumber int, checked bool) (SetCheckEffect, bool) {
	if m.phase != PhaseLoaded || m.me == nil {
		return SetCheckEffect{}, false
	}
	if m.inflight[featureNumber] {
		return SetCheckEffect{}, false
	}
	if m.checklist.Item(featureNumber) == nil {
		return SetCheckEffect{}, false
	}

	next := m.checklist.Clone()
	it := next.Item(featureNumber)
	if checked {
		it.AddCheck(*m.me)
	} else {
		it.RemoveCheck(m.me.ID)
	}
	m.checklist = next
	m.inflight[featureNumber] = true

	return SetCheckEffect{Ref: m.ref, FeatureNumber: featureNumber, Checked: checked}, true
}

// ApplySetCheck publishes the server's answer to a toggle. On success the
// whole snapshot is replaced with the authoritative response; the optimistic
// edit from Toggle is discarded even when the server disagrees with it. On
// failure the optimistic edit stays visible and the error is surfaced via
// ToggleErr.
func (m *Machine) ApplySetCheck(ref Ref, featureNumber int, resp *ChecklistResponse, err error) {
	if ref != m.ref || m.phase != PhaseLoaded {
		return
	}
	delete(m.inflight, featureNumber)
	if err != nil {
		m.toggleErr = err
		return
	}
	m.checklist = resp.Checklist
	m.me = resp.Me
	m.toggleErr = nil
}

func classify(err error) ErrorKind {
	var authErr *AuthError
	if errors.As(err, &authErr) {
		return ErrorAuth
	}
	return ErrorTransport
}

// Phase reports the machine's current phase.
func (m *Machine) Phase() Phase { return m.phase }

// Ref reports the ref the machine is loaded for (zero in PhaseIdle).
func (m *Machine) Ref() Ref { return m.ref }

// Checklist returns the published snapshot, nil unless PhaseLoaded.
func (m *Machine) Checklist() *Checklist { return m.checklist }

// Viewer returns the authenticated user, nil when anonymous.
func (m *Machine) Viewer() *GitHubUser { return m.me }

// Err returns the failure that caused PhaseError.
func (m *Machine) Err() error { return m.err }

// ErrKind classifies Err.
func (m *Machine) ErrKind() ErrorKind { return m.errKind }

// ToggleErr returns the most recent toggle failure, cleared by the next
// successful toggle or Load.
func (m *Machine) ToggleErr() error { return m.toggleErr }

// InFlight reports whether a check mutation is outstanding for the item.
func (m *Machine) InFlight(featureNumber int) bool { return m.inflight[featureNumber] }

// Busy reports whether any check mutation is outstanding.
func (m *Machine) Busy() bool { return len(m.inflight) > 0 }
