// Package tui renders one checklist in the terminal and forwards toggle
// intents to the state machine. The bubbletea run loop is the single logical
// thread: remote calls execute inside commands, and their results come back
// as messages applied in Update.
package tui

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/Makepad-fr/relcheck/internal/checklist"
	"github.com/Makepad-fr/relcheck/internal/gateway"
)

// fetchResultMsg carries a FetchChecklist outcome back onto the loop.
type fetchResultMsg struct {
	ref  checklist.Ref
	resp *checklist.ChecklistResponse
	err  error
}

// checkResultMsg carries a SetCheck outcome back onto the loop.
type checkResultMsg struct {
	ref           checklist.Ref
	featureNumber int
	resp          *checklist.ChecklistResponse
	err           error
}

// navRecorder collects the machine's redirect target so Update can start a
// fresh machine for the corrected ref.
type navRecorder struct {
	target *checklist.Ref
}

func (n *navRecorder) Navigate(ref checklist.Ref) {
	r := ref
	n.target = &r
}

func (n *navRecorder) take() (checklist.Ref, bool) {
	if n.target == nil {
		return checklist.Ref{}, false
	}
	ref := *n.target
	n.target = nil
	return ref, true
}

// listItem adapts a checklist item to bubbles/list.Item.
type listItem struct {
	item     *checklist.Item
	viewerID int
	inflight bool
	ascii    bool
}

func (i listItem) checked() bool { return len(i.item.CheckedBy) > 0 }

func (i listItem) box() string {
	if i.checked() {
		if i.ascii {
			return boxCheckedASCII
		}
		return boxChecked
	}
	if i.ascii {
		return boxUncheckedASCII
	}
	return boxUnchecked
}

func (i listItem) Title() string       { return i.item.Title }
func (i listItem) Description() string { return "" }
func (i listItem) FilterValue() string { return i.item.Title }

// itemDelegate renders one item per line: checkbox, feature number, title,
// and who checked it.
type itemDelegate struct{}

func (d itemDelegate) Height() int                               { return 1 }
func (d itemDelegate) Spacing() int                              { return 0 }
func (d itemDelegate) Update(msg tea.Msg, m *list.Model) tea.Cmd { return nil }
func (d itemDelegate) Render(w io.Writer, m list.Model, index int, item list.Item) {
	it, ok := item.(listItem)
	if !ok {
		return
	}

	box := mutedStyle.Render(it.box())
	text := fmt.Sprintf("#%d %s", it.item.Number, it.item.Title)
	if it.checked() {
		box = successStyle.Render(it.box())
		text = checkedStyle.Render(text)
	}

	var suffix string
	if len(it.item.CheckedBy) > 0 {
		logins := make([]string, 0, len(it.item.CheckedBy))
		for _, u := range it.item.CheckedBy {
			login := u.Login
			if u.ID == it.viewerID {
				login = accentStyle.Render(login)
			}
			logins = append(logins, login)
		}
		suffix = mutedStyle.Render("  ✔ " + strings.Join(logins, ", "))
	}
	if it.inflight {
		suffix += pendingStyle.Render("  …")
	}

	prefix := "  "
	if index == m.Index() {
		prefix = selectedStyle.Render("> ")
	}
	fmt.Fprintln(w, prefix+box+" "+text+suffix)
}

// Model is the bubbletea model for one checklist view.
type Model struct {
	client  *gateway.Client
	machine *checklist.Machine
	nav     *navRecorder
	timeout time.Duration
	ascii   bool

	list    list.Model
	initial checklist.FetchEffect
	width   int
	height  int
	err     error // fatal setup error, shown and quit
}

// Option customizes a Model.
type ModelOption func(*Model)

// WithASCII swaps checkbox glyphs for [x]/[ ] markers.
func WithASCII(ascii bool) ModelOption {
	return func(m *Model) { m.ascii = ascii }
}

// WithTimeout bounds each remote call issued by the view.
func WithTimeout(d time.Duration) ModelOption {
	return func(m *Model) { m.timeout = d }
}

// New builds the model and targets it at ref. The fetch starts when the
// program calls Init.
func New(client *gateway.Client, ref checklist.Ref, opts ...ModelOption) (Model, error) {
	nav := &navRecorder{}
	machine := checklist.NewMachine(nav)
	eff, err := machine.Load(ref)
	if err != nil {
		return Model{}, err
	}

	l := list.New(nil, itemDelegate{}, 0, 0)
	l.SetShowTitle(false)
	l.SetShowHelp(true)
	l.SetShowPagination(true)
	l.SetShowStatusBar(false)
	l.SetFilteringEnabled(true)
	l.Styles.HelpStyle = helpStyle
	l.Styles.PaginationStyle = helpStyle
	l.FilterInput.Prompt = "/ "

	toggleBind := key.NewBinding(key.WithKeys(" "), key.WithHelp("space", "check/uncheck"))
	reloadBind := key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "reload"))
	stageBind := key.NewBinding(key.WithKeys("s"), key.WithHelp("s", "next stage"))
	l.AdditionalShortHelpKeys = func() []key.Binding { return []key.Binding{toggleBind, reloadBind, stageBind} }
	l.AdditionalFullHelpKeys = func() []key.Binding { return []key.Binding{toggleBind, reloadBind, stageBind} }

	m := Model{
		client:  client,
		machine: machine,
		nav:     nav,
		timeout: 30 * time.Second,
		list:    l,
		initial: eff,
	}
	for _, o := range opts {
		o(&m)
	}
	return m, nil
}

// Init starts the initial fetch.
func (m Model) Init() tea.Cmd {
	return m.fetchCmd(m.initial)
}

func (m Model) fetchCmd(eff checklist.FetchEffect) tea.Cmd {
	client, timeout := m.client, m.timeout
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		resp, err := client.FetchChecklist(ctx, eff.Ref)
		return fetchResultMsg{ref: eff.Ref, resp: resp, err: err}
	}
}

func (m Model) setCheckCmd(eff checklist.SetCheckEffect) tea.Cmd {
	client, timeout := m.client, m.timeout
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		resp, err := client.SetCheck(ctx, eff.Ref, eff.FeatureNumber, eff.Checked)
		return checkResultMsg{ref: eff.Ref, featureNumber: eff.FeatureNumber, resp: resp, err: err}
	}
}

// restart points a fresh machine at ref; the old machine (and any responses
// still in flight for it) is abandoned.
func (m *Model) restart(ref checklist.Ref) tea.Cmd {
	m.machine = checklist.NewMachine(m.nav)
	eff, err := m.machine.Load(ref)
	if err != nil {
		m.err = err
		return tea.Quit
	}
	m.syncList()
	return m.fetchCmd(eff)
}

// syncList rebuilds the list rows from the machine's snapshot.
func (m *Model) syncList() {
	cl := m.machine.Checklist()
	if cl == nil {
		m.list.SetItems(nil)
		return
	}
	viewerID := 0
	if me := m.machine.Viewer(); me != nil {
		viewerID = me.ID
	}
	rows := make([]list.Item, 0, len(cl.Items))
	for _, it := range cl.Items {
		rows = append(rows, listItem{
			item:     it,
			viewerID: viewerID,
			inflight: m.machine.InFlight(it.Number),
			ascii:    m.ascii,
		})
	}
	m.list.SetItems(rows)
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.list.SetSize(msg.Width-4, msg.Height-8)
		return m, nil

	case fetchResultMsg:
		m.machine.ApplyFetch(msg.ref, msg.resp, msg.err)
		if target, ok := m.nav.take(); ok {
			return m, m.restart(target)
		}
		m.syncList()
		return m, nil

	case checkResultMsg:
		m.machine.ApplySetCheck(msg.ref, msg.featureNumber, msg.resp, msg.err)
		m.syncList()
		return m, nil

	case tea.KeyMsg:
		if m.list.FilterState() == list.Filtering {
			break
		}
		switch msg.String() {
		case "q", "esc", "ctrl+c":
			return m, tea.Quit
		case " ", "enter":
			return m.toggleSelected()
		case "r":
			return m, m.restart(m.machine.Ref())
		case "s":
			if target, ok := m.nextStage(); ok {
				return m, m.restart(target)
			}
			return m, nil
		}
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m Model) toggleSelected() (tea.Model, tea.Cmd) {
	it, ok := m.list.SelectedItem().(listItem)
	if !ok {
		return m, nil
	}
	me := m.machine.Viewer()
	if me == nil {
		return m, nil
	}
	checked := !it.item.CheckedByUser(me.ID)
	eff, ok := m.machine.Toggle(it.item.Number, checked)
	if !ok {
		return m, nil
	}
	m.syncList()
	return m, m.setCheckCmd(eff)
}

// nextStage cycles through the declared stages relative to the current one.
func (m Model) nextStage() (checklist.Ref, bool) {
	cl := m.machine.Checklist()
	if cl == nil {
		return checklist.Ref{}, false
	}
	stages := cl.Stages()
	if len(stages) < 2 {
		return checklist.Ref{}, false
	}
	ref := m.machine.Ref()
	for i, s := range stages {
		if s == ref.Stage {
			return ref.WithStage(stages[(i+1)%len(stages)]), true
		}
	}
	return ref.WithStage(stages[0]), true
}

func (m Model) View() string {
	if m.err != nil {
		return errorStyle.Render("✖ " + m.err.Error())
	}

	ref := m.machine.Ref()
	switch m.machine.Phase() {
	case checklist.PhaseIdle, checklist.PhaseLoading:
		return panelString(mutedStyle.Render("loading " + ref.String() + " …"))
	case checklist.PhaseRedirecting:
		return panelString(mutedStyle.Render("switching stage …"))
	case checklist.PhaseError:
		return panelString(m.errorView(ref))
	}

	return panelString(m.loadedView(ref))
}

func (m Model) errorView(ref checklist.Ref) string {
	if m.machine.ErrKind() == checklist.ErrorAuth {
		return errorStyle.Render("✖ not signed in") + "\n\n" +
			"Open in your browser to sign in:\n" +
			accentStyle.Render(m.client.AuthURL(ref.Path())) + "\n\n" +
			helpStyle.Render("then run `relcheck auth login` with the session token · q quit")
	}
	return errorStyle.Render("✖ "+ref.String()) + "\n\n" +
		m.machine.Err().Error() + "\n\n" +
		helpStyle.Render("r retry · q quit")
}

func (m Model) loadedView(ref checklist.Ref) string {
	cl := m.machine.Checklist()

	header := titleStyle.Render(cl.Title) + "  " + mutedStyle.Render(ref.String())

	var stageLine string
	if stages := cl.Stages(); len(stages) > 0 {
		tabs := make([]string, 0, len(stages))
		for _, s := range stages {
			if s == cl.Stage {
				tabs = append(tabs, selectedStyle.Render(" "+s+" "))
			} else {
				tabs = append(tabs, mutedStyle.Render(" "+s+" "))
			}
		}
		stageLine = strings.Join(tabs, " ")
	}

	done, total := cl.Checked(), len(cl.Items)
	progress := progressBar(done, total, 28)
	if cl.Completed() {
		progress += "  " + successStyle.Render("✔ all checked")
	}

	var footer string
	if err := m.machine.ToggleErr(); err != nil {
		footer = errorStyle.Render("✖ check not saved: ") + firstLine(err.Error())
	} else if me := m.machine.Viewer(); me != nil {
		footer = mutedStyle.Render("signed in as " + me.Login)
	} else {
		footer = mutedStyle.Render("read-only: not signed in")
	}

	sections := []string{header}
	if stageLine != "" {
		sections = append(sections, stageLine)
	}
	sections = append(sections, progress, "", m.list.View(), footer)
	return strings.Join(sections, "\n")
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}
