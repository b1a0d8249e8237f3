package tui

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/require"

	"github.com/Makepad-fr/relcheck/internal/checklist"
	"github.com/Makepad-fr/relcheck/internal/gateway"
)

// fixtureServer serves one checklist for motemen/test-repository#2 with five
// feature items; items 4 and 5 start checked by user 8465. PUT/DELETE
// /api/check mutate it, and each mutation also sneaks in a concurrent check
// by another viewer on item 2, so acknowledgments differ from the client's
// speculative state.
type fixtureServer struct {
	mu       sync.Mutex
	checks   map[int][]checklist.GitHubUser
	requests int
}

var (
	fixtureViewer = checklist.GitHubUser{ID: 8465, Login: "motemen"}
	fixtureOther  = checklist.GitHubUser{ID: 100, Login: "contributor"}
)

func (f *fixtureServer) requestCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.requests
}

func newFixtureServer() *fixtureServer {
	return &fixtureServer{
		checks: map[int][]checklist.GitHubUser{
			4: {fixtureViewer},
			5: {fixtureViewer},
		},
	}
}

func (f *fixtureServer) checklist(stage string) *checklist.Checklist {
	items := make([]*checklist.Item, 0, 5)
	for n := 1; n <= 5; n++ {
		items = append(items, &checklist.Item{
			PullRequest: checklist.PullRequest{
				Owner: "motemen", Repo: "test-repository", Number: n,
				Title: "Feature " + strconv.Itoa(n),
			},
			CheckedBy: append([]checklist.GitHubUser(nil), f.checks[n]...),
		})
	}
	return &checklist.Checklist{
		PullRequest: checklist.PullRequest{
			Owner: "motemen", Repo: "test-repository", Number: 2,
			Title: "Release 2025-08-30",
		},
		Stage:  stage,
		Config: &checklist.Config{Stages: []string{"qa", "production"}},
		Items:  items,
	}
}

func (f *fixtureServer) handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/checklist", func(w http.ResponseWriter, req *http.Request) {
		f.mu.Lock()
		defer f.mu.Unlock()
		f.requests++
		me := fixtureViewer
		json.NewEncoder(w).Encode(checklist.ChecklistResponse{
			Checklist: f.checklist(req.URL.Query().Get("stage")),
			Me:        &me,
		})
	})
	mux.HandleFunc("/api/check", func(w http.ResponseWriter, req *http.Request) {
		f.mu.Lock()
		defer f.mu.Unlock()
		f.requests++
		n, _ := strconv.Atoi(req.URL.Query().Get("featureNumber"))
		switch req.Method {
		case http.MethodPut:
			f.checks[n] = append(f.checks[n], fixtureViewer)
		case http.MethodDelete:
			var kept []checklist.GitHubUser
			for _, u := range f.checks[n] {
				if u.ID != fixtureViewer.ID {
					kept = append(kept, u)
				}
			}
			f.checks[n] = kept
		default:
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		// concurrent activity by someone else
		f.checks[2] = []checklist.GitHubUser{fixtureOther}
		me := fixtureViewer
		json.NewEncoder(w).Encode(checklist.ChecklistResponse{
			Checklist: f.checklist(req.URL.Query().Get("stage")),
			Me:        &me,
		})
	})
	return mux
}

// drain runs commands synchronously, feeding resulting messages back into
// Update until no command remains, the way the bubbletea loop would.
func drain(t *testing.T, m tea.Model, cmd tea.Cmd) Model {
	t.Helper()
	for cmd != nil {
		msg := cmd()
		if msg == nil {
			break
		}
		if _, quit := msg.(tea.QuitMsg); quit {
			break
		}
		m, cmd = m.Update(msg)
	}
	return m.(Model)
}

func newTestModel(t *testing.T, url string, ref checklist.Ref) Model {
	t.Helper()
	client := gateway.NewClient(url)
	m, err := New(client, ref)
	require.NoError(t, err)
	model, _ := m.Update(tea.WindowSizeMsg{Width: 100, Height: 40})
	return model.(Model)
}

func qaRef() checklist.Ref {
	return checklist.Ref{Owner: "motemen", Repo: "test-repository", Number: 2, Stage: "qa"}
}

func TestLoadAndToggleEndToEnd(t *testing.T) {
	fixture := newFixtureServer()
	s := httptest.NewServer(fixture.handler())
	defer s.Close()

	m := newTestModel(t, s.URL, qaRef())
	m = drain(t, m, m.Init())

	require.Equal(t, checklist.PhaseLoaded, m.machine.Phase())
	cl := m.machine.Checklist()
	require.Len(t, cl.Items, 5)
	require.False(t, cl.Completed())
	require.Equal(t, 2, cl.Checked())

	// toggle the selected item (list starts on item 1)
	model, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{' '}})
	m = model.(Model)
	require.NotNil(t, cmd)

	// optimistic state is visible before the server answers
	require.True(t, m.machine.Checklist().Item(1).CheckedByUser(fixtureViewer.ID))
	require.True(t, m.machine.InFlight(1))

	// server acknowledgment replaces the snapshot wholesale, including the
	// concurrent check by another viewer
	m = drain(t, m, cmd)
	require.False(t, m.machine.InFlight(1))
	cl = m.machine.Checklist()
	require.True(t, cl.Item(1).CheckedByUser(fixtureViewer.ID))
	require.True(t, cl.Item(2).CheckedByUser(fixtureOther.ID))
}

func TestToggleWhileInFlightSendsOneRequest(t *testing.T) {
	fixture := newFixtureServer()
	s := httptest.NewServer(fixture.handler())
	defer s.Close()

	m := newTestModel(t, s.URL, qaRef())
	m = drain(t, m, m.Init())
	before := fixture.requestCount()

	model, cmd1 := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{' '}})
	m = model.(Model)
	require.NotNil(t, cmd1)

	// second space press on the same item while the first is in flight
	model, cmd2 := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{' '}})
	m = model.(Model)
	require.Nil(t, cmd2, "second toggle must be rejected, not queued")

	m = drain(t, m, cmd1)
	require.Equal(t, before+1, fixture.requestCount(), "exactly one setCheck sent")
}

func TestStageRedirectRefetchesUnderCorrectedRef(t *testing.T) {
	fixture := newFixtureServer()
	s := httptest.NewServer(fixture.handler())
	defer s.Close()

	// "staging" is not declared; the view must land on "qa" without ever
	// publishing the mismatched checklist.
	m := newTestModel(t, s.URL, qaRef().WithStage("staging"))
	m = drain(t, m, m.Init())

	require.Equal(t, checklist.PhaseLoaded, m.machine.Phase())
	require.Equal(t, "qa", m.machine.Ref().Stage)
	require.Equal(t, "qa", m.machine.Checklist().Stage)
}

func TestAuthErrorShowsSignInURL(t *testing.T) {
	s := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		json.NewEncoder(w).Encode(checklist.ErrorResponse{Type: checklist.ErrorTypeNotAuthed})
	}))
	defer s.Close()

	m := newTestModel(t, s.URL, qaRef())
	m = drain(t, m, m.Init())

	require.Equal(t, checklist.PhaseError, m.machine.Phase())
	require.Equal(t, checklist.ErrorAuth, m.machine.ErrKind())
	require.Nil(t, m.machine.Checklist())
	require.Contains(t, m.View(), "/auth?return_to=")
}

func TestTransportErrorRendered(t *testing.T) {
	s := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		http.Error(w, "backend exploded", http.StatusBadGateway)
	}))
	defer s.Close()

	m := newTestModel(t, s.URL, qaRef())
	m = drain(t, m, m.Init())

	require.Equal(t, checklist.PhaseError, m.machine.Phase())
	require.Equal(t, checklist.ErrorTransport, m.machine.ErrKind())
	require.Contains(t, m.View(), "backend exploded")
}

func TestCompletionShownWhenAllChecked(t *testing.T) {
	fixture := newFixtureServer()
	fixture.checks[1] = []checklist.GitHubUser{fixtureOther}
	fixture.checks[2] = []checklist.GitHubUser{fixtureOther}
	fixture.checks[3] = []checklist.GitHubUser{fixtureOther}
	s := httptest.NewServer(fixture.handler())
	defer s.Close()

	m := newTestModel(t, s.URL, qaRef())
	m = drain(t, m, m.Init())

	require.True(t, m.machine.Checklist().Completed())
	require.True(t, strings.Contains(m.View(), "all checked"))
}
