package ui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/groupscout/groupscout/internal/models"
	"github.com/groupscout/groupscout/internal/session"
	"github.com/groupscout/groupscout/internal/shared"
	"github.com/groupscout/groupscout/internal/view"
)

// ViewState represents the current view in the TUI.
type ViewState int

const (
	QueryView ViewState = iota
	ResultsView
	ActorPickView
)

// Model represents the TUI application state.
type Model struct {
	sess     *session.Session
	channels []string
	width    int
	height   int
	state    ViewState

	input     textinput.Model
	items     []models.DiscoveredItem
	filters   view.Filters
	pager     view.Pager
	selection view.Selection
	cursor    int
	actorList list.Model

	status  string
	errText string
	help    help.Model
	keys    keyMap
}

// actorItem wraps [models.Actor] to implement list.Item.
type actorItem struct {
	actor models.Actor
}

func (i actorItem) FilterValue() string { return i.actor.Label }
func (i actorItem) Title() string       { return i.actor.Label }
func (i actorItem) Description() string { return i.actor.ID }

type sessionUpdateMsg session.Update

type sessionClosedMsg struct{}

// NewModel creates a new TUI model over a running session. channels are the
// discovery sources submitted with every search.
func NewModel(sess *session.Session, uiCfg shared.UIConfig, channels []string) (*Model, error) {
	pager, err := view.NewPager(uiCfg.PageSizes, uiCfg.DefaultPageSize)
	if err != nil {
		return nil, err
	}

	input := textinput.New()
	input.Placeholder = "Search for groups..."
	input.CharLimit = 200
	input.Focus()

	return &Model{
		sess:      sess,
		channels:  channels,
		state:     QueryView,
		input:     input,
		pager:     pager,
		selection: view.NewSelection(),
		items:     sess.Items(),
		help:      help.New(),
		keys:      newKeyMap(),
	}, nil
}

// Init starts the update pump and the query cursor blink.
func (m *Model) Init() tea.Cmd {
	if len(m.items) > 0 {
		m.state = ResultsView
		m.input.Blur()
	}
	return tea.Batch(textinput.Blink, m.waitForUpdate())
}

// Update handles incoming messages and updates the model state.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		if m.actorList.Width() == 0 {
			m.actorList.SetSize(msg.Width-4, msg.Height-8)
		}
		return m, nil

	case tea.KeyMsg:
		switch m.state {
		case QueryView:
			return m.handleQueryKeys(msg)
		case ResultsView:
			return m.handleResultsKeys(msg)
		case ActorPickView:
			return m.handleActorPickKeys(msg)
		}

	case sessionUpdateMsg:
		m.applyUpdate(session.Update(msg))
		return m, m.waitForUpdate()

	case sessionClosedMsg:
		return m, tea.Quit
	}

	return m, nil
}

// View renders the UI based on the current view state.
func (m *Model) View() string {
	switch m.state {
	case QueryView:
		return m.renderQuery()
	case ResultsView:
		return m.renderResults()
	case ActorPickView:
		return m.renderActorPick()
	default:
		return ""
	}
}

// applyUpdate folds one session update into the model. Items are re-fetched
// rather than carried on the update so the view never goes stale.
func (m *Model) applyUpdate(u session.Update) {
	m.items = m.sess.Items()
	m.pager.Clamp(len(m.filtered()))

	switch u.Kind {
	case session.UpdateError:
		m.errText = u.Message
		m.status = ""
	default:
		m.errText = ""
		m.status = u.Message
	}

	if m.state == QueryView && u.Kind == session.UpdateItems {
		m.state = ResultsView
		m.input.Blur()
	}
}

func (m *Model) waitForUpdate() tea.Cmd {
	return func() tea.Msg {
		u, ok := <-m.sess.Updates()
		if !ok {
			return sessionClosedMsg{}
		}
		return sessionUpdateMsg(u)
	}
}

func (m *Model) handleQueryKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c":
		return m, tea.Quit
	case "esc":
		if len(m.items) > 0 {
			m.state = ResultsView
			m.input.Blur()
		}
		return m, nil
	case "enter":
		if err := m.sess.Submit(m.input.Value(), m.channels); err != nil {
			m.errText = err.Error()
			return m, nil
		}
		m.errText = ""
		m.selection.Clear()
		m.cursor = 0
		m.pager.Reset()
		m.state = ResultsView
		m.input.Blur()
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m *Model) handleResultsKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	filtered := m.filtered()
	page := m.pager.Slice(filtered)

	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	case "/":
		m.state = QueryView
		m.input.SetValue("")
		m.input.Focus()
		return m, textinput.Blink
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if m.cursor < len(page)-1 {
			m.cursor++
		}
	case "right", "n":
		if err := m.pager.SetPage(m.pager.Page()+1, len(filtered)); err == nil {
			m.cursor = 0
		}
	case "left", "p":
		if err := m.pager.SetPage(m.pager.Page()-1, len(filtered)); err == nil {
			m.cursor = 0
		}
	case "+":
		m.cyclePageSize()
	case " ":
		if item, ok := m.itemAtCursor(page); ok {
			m.selection.Toggle(item)
		}
	case "a":
		m.selection.SelectAll(filtered)
	case "c":
		m.selection.Clear()
	case "i":
		m.selection.Invert(filtered)
	case "f":
		m.cycleMembershipFilter()
	case "t":
		m.cycleKindFilter()
	case "s":
		if m.selection.Count() > 0 {
			for _, item := range view.Pick(filtered, m.selection) {
				m.sess.ToggleSaved(item.InternalID)
			}
			m.items = m.sess.Items()
		} else if item, ok := m.itemAtCursor(page); ok {
			m.sess.ToggleSaved(item.InternalID)
			m.items = m.sess.Items()
		}
	case "enter":
		if item, ok := m.itemAtCursor(page); ok {
			return m.beginJoin(item)
		}
	}
	return m, nil
}

func (m *Model) handleActorPickKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c":
		return m, tea.Quit
	case "esc":
		m.sess.CancelActorSelection()
		m.state = ResultsView
		return m, nil
	case "enter":
		selected := m.actorList.SelectedItem()
		if selected != nil {
			if ai, ok := selected.(actorItem); ok {
				if err := m.sess.ConfirmActor(ai.actor.ID); err != nil {
					m.errText = err.Error()
				} else {
					m.errText = ""
					m.status = fmt.Sprintf("Joining via %s...", ai.actor.Label)
				}
			}
		}
		m.state = ResultsView
		return m, nil
	}

	var cmd tea.Cmd
	m.actorList, cmd = m.actorList.Update(msg)
	return m, cmd
}

// beginJoin starts the join flow for one item; when several accounts are
// ready it opens the actor picker instead of dispatching.
func (m *Model) beginJoin(item models.DiscoveredItem) (tea.Model, tea.Cmd) {
	decision, eligible, err := m.sess.BeginAction(item.InternalID)
	if err != nil {
		m.errText = err.Error()
		return m, nil
	}
	m.errText = ""

	switch decision {
	case session.Dispatched:
		m.status = fmt.Sprintf("Joining %s...", displayName(item))
	case session.NeedsActor:
		items := make([]list.Item, len(eligible))
		for i, a := range eligible {
			items[i] = actorItem{actor: a}
		}
		m.actorList = list.New(items, list.NewDefaultDelegate(), 0, 0)
		m.actorList.Title = fmt.Sprintf("Join %s as", displayName(item))
		m.actorList.SetSize(m.width-4, m.height-8)
		m.state = ActorPickView
	}
	return m, nil
}

func (m *Model) filtered() []models.DiscoveredItem {
	return view.Apply(m.items, m.filters)
}

func (m *Model) itemAtCursor(page []models.DiscoveredItem) (models.DiscoveredItem, bool) {
	if m.cursor < 0 || m.cursor >= len(page) {
		return models.DiscoveredItem{}, false
	}
	return page[m.cursor], true
}

func (m *Model) cycleMembershipFilter() {
	switch m.filters.Membership {
	case view.AnyMembership:
		m.filters.Membership = view.NotJoinedBucket
	case view.NotJoinedBucket:
		m.filters.Membership = view.JoinedBucket
	default:
		m.filters.Membership = view.AnyMembership
	}
	m.afterFilterChange()
}

func (m *Model) cycleKindFilter() {
	switch {
	case m.filters.Kind == nil:
		kind := models.KindGroup
		m.filters.Kind = &kind
	case *m.filters.Kind == models.KindGroup:
		kind := models.KindChannel
		m.filters.Kind = &kind
	default:
		m.filters.Kind = nil
	}
	m.afterFilterChange()
}

func (m *Model) cyclePageSize() {
	sizes := m.pager.Sizes()
	for i, size := range sizes {
		if size == m.pager.PageSize() {
			next := sizes[(i+1)%len(sizes)]
			m.pager.SetPageSize(next)
			m.cursor = 0
			return
		}
	}
}

// afterFilterChange keeps the pager and cursor inside the new view. The
// selection is deliberately left alone; it survives filter changes.
func (m *Model) afterFilterChange() {
	m.pager.Reset()
	m.cursor = 0
	m.pager.Clamp(len(m.filtered()))
}

func displayName(item models.DiscoveredItem) string {
	if item.Title != "" {
		return item.Title
	}
	if item.Handle != "" {
		return "@" + item.Handle
	}
	return fmt.Sprintf("#%d", item.InternalID)
}
