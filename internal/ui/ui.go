package ui

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"

	"repodeck/internal/config"
	"repodeck/internal/filter"
	"repodeck/internal/github"
	"repodeck/internal/repo"
	"repodeck/internal/storage"
)

type mode int

const (
	modeBrowse mode = iota
	modeSearch
)

var (
	titleStyle    = lipgloss.NewStyle().Bold(true)
	sectionStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	countStyle    = lipgloss.NewStyle().Faint(true)
	pressedStyle  = lipgloss.NewStyle().Reverse(true)
	focusedStyle  = lipgloss.NewStyle().Underline(true)
	badgeStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("11"))
	descStyle     = lipgloss.NewStyle().Faint(true)
	noMatchStyle  = lipgloss.NewStyle().Italic(true).Foreground(lipgloss.Color("9"))
	selectedStyle = lipgloss.NewStyle().Bold(true)
)

type reposFetchedMsg struct {
	repos []repo.Repository
}

type fetchFailedMsg struct {
	err error
}

// Model is the bubbletea model for the repository board.
type Model struct {
	store  *storage.Store
	client *github.Client
	cfg    config.Config
	log    *slog.Logger

	repos []repo.Repository
	cards []*filter.Card
	ctrl  *filter.Controller

	cursor      int
	focusToggle int
	mode        mode
	input       textinput.Model
	status      string
	fetching    bool
}

// New builds the model over an initial repository set. The repositories
// are regrouped active-first, the way the page lists them.
func New(store *storage.Store, client *github.Client, cfg config.Config, log *slog.Logger, repos []repo.Repository) Model {
	ti := textinput.New()
	ti.Placeholder = "Filter by name, language, or description"
	ti.CharLimit = 256
	ti.Width = 40

	m := Model{
		store:  store,
		client: client,
		cfg:    cfg,
		log:    log,
		input:  ti,
		status: fmt.Sprintf("Press %s to search, %s/%s to pick a language, %s to toggle it.",
			cfg.Keys.Search, cfg.Keys.NextFilter, cfg.Keys.PrevFilter, keyLabel(cfg.Keys.Toggle)),
	}
	m.setRepositories(repos)
	return m
}

// Run starts the program.
func Run(store *storage.Store, client *github.Client, cfg config.Config, log *slog.Logger, repos []repo.Repository) error {
	program := tea.NewProgram(New(store, client, cfg, log, repos))
	_, err := program.Run()
	return err
}

func (m *Model) setRepositories(repos []repo.Repository) {
	active, archived := repo.Split(repos)
	ordered := make([]repo.Repository, 0, len(repos))
	ordered = append(ordered, active...)
	ordered = append(ordered, archived...)

	cards := make([]*filter.Card, len(ordered))
	for i, r := range ordered {
		cards[i] = &filter.Card{
			Name:        r.Name,
			Language:    r.Language,
			Description: r.Description,
		}
	}
	sections := []*filter.Section{
		{Title: "Active repositories", Cards: cards[:len(active)], HasSummary: true},
		{Title: "Archived repositories", Cards: cards[len(active):], HasSummary: true},
	}

	m.repos = ordered
	m.cards = cards
	m.ctrl = filter.New(cards, sections, filter.TogglesFor(cards))
	m.cursor = 0
	m.focusToggle = 0
}

func (m Model) Init() tea.Cmd {
	return nil
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if m.mode == modeSearch {
			return m.updateSearchMode(msg)
		}
		return m.updateBrowseMode(msg.String())
	case tea.WindowSizeMsg:
		m.input.Width = msg.Width - 10
	case reposFetchedMsg:
		m.fetching = false
		m.setRepositories(msg.repos)
		m.status = fmt.Sprintf("Fetched %d repositories", len(msg.repos))
		if m.log != nil {
			m.log.Info("refresh complete", "count", len(msg.repos))
		}
	case fetchFailedMsg:
		m.fetching = false
		m.status = fmt.Sprintf("refresh failed: %v", msg.err)
		if m.log != nil {
			m.log.Error("refresh failed", "error", msg.err.Error())
		}
	}
	return m, nil
}

func (m Model) updateSearchMode(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case m.cfg.Keys.Cancel, "esc":
		m.mode = modeBrowse
		m.input.Blur()
		m.input.SetValue("")
		m.ctrl.SetQuery("")
		m.cursor = m.clampToVisible(m.cursor)
		m.status = "Search cleared"
		return m, nil
	case m.cfg.Keys.Confirm, "enter":
		m.mode = modeBrowse
		m.input.Blur()
		m.status = searchStatus(m.ctrl)
		return m, nil
	default:
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		m.ctrl.SetQuery(m.input.Value())
		m.cursor = m.clampToVisible(m.cursor)
		return m, cmd
	}
}

func (m Model) updateBrowseMode(key string) (tea.Model, tea.Cmd) {
	switch key {
	case "ctrl+c", m.cfg.Keys.Quit:
		return m, tea.Quit
	case m.cfg.Keys.Search:
		m.mode = modeSearch
		m.input.Focus()
		m.status = "Type to filter; Enter to keep, Esc to clear"
	case m.cfg.Keys.Refresh:
		if m.fetching {
			return m, nil
		}
		if m.client == nil || m.cfg.Username == "" {
			m.status = "Refresh unavailable; set username in config.toml"
			return m, nil
		}
		m.fetching = true
		m.status = fmt.Sprintf("Fetching repositories for %s...", m.cfg.Username)
		return m, m.fetchCmd()
	case m.cfg.Keys.Down, "down":
		m.cursor = m.moveCursor(1)
	case m.cfg.Keys.Up, "up":
		m.cursor = m.moveCursor(-1)
	case m.cfg.Keys.NextFilter:
		m.focusToggle = m.moveToggleFocus(1)
	case m.cfg.Keys.PrevFilter:
		m.focusToggle = m.moveToggleFocus(-1)
	case m.cfg.Keys.Toggle:
		m.ctrl.Click(m.focusToggle)
		m.cursor = m.clampToVisible(m.cursor)
		m.status = searchStatus(m.ctrl)
	case m.cfg.Keys.Detail:
		if r, ok := m.selectedRepo(); ok {
			m.status = fmt.Sprintf("%s • %s • ★ %s • %s",
				r.Name, r.HTMLURL, humanize.Comma(int64(r.Stars)), updatedLabel(r))
		} else {
			m.status = "No repository selected"
		}
	}
	return m, nil
}

func (m Model) fetchCmd() tea.Cmd {
	client := m.client
	store := m.store
	log := m.log
	username := m.cfg.Username
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
		defer cancel()
		repos, err := client.FetchPublicRepositories(ctx, username)
		if err != nil {
			return fetchFailedMsg{err: err}
		}
		if store != nil {
			if err := store.ReplaceAll(username, repos); err != nil && log != nil {
				log.Warn("cache update failed", "error", err.Error())
			}
		}
		return reposFetchedMsg{repos: repos}
	}
}

func (m Model) View() string {
	var b strings.Builder

	owner := m.cfg.Username
	if owner == "" {
		owner = "public"
	}
	b.WriteString(titleStyle.Render(owner + "'s repositories"))
	b.WriteString("\n")
	b.WriteString(countStyle.Render(m.ctrl.Summary))
	b.WriteString("\n\n")

	b.WriteString("Search: ")
	b.WriteString(m.input.View())
	b.WriteString("\n")
	b.WriteString(m.renderToggleRow())
	b.WriteString("\n\n")

	if m.ctrl.NoResults {
		b.WriteString(noMatchStyle.Render("No repositories match your search."))
		b.WriteString("\n")
	} else {
		b.WriteString(m.renderSections())
	}

	b.WriteString("\n")
	b.WriteString(m.status)
	b.WriteString("\n")
	b.WriteString(countStyle.Render(renderHelp(m.cfg.Keys)))
	return b.String()
}

func (m Model) renderToggleRow() string {
	parts := make([]string, 0, len(m.ctrl.Toggles()))
	for i, t := range m.ctrl.Toggles() {
		if t.Hidden {
			continue
		}
		label := "[" + t.Label + "]"
		switch {
		case t.Pressed && i == m.focusToggle:
			label = pressedStyle.Render(focusedStyle.Render(label))
		case t.Pressed:
			label = pressedStyle.Render(label)
		case i == m.focusToggle:
			label = focusedStyle.Render(label)
		}
		parts = append(parts, label)
	}
	return "Languages: " + strings.Join(parts, " ")
}

func (m Model) renderSections() string {
	var b strings.Builder
	for _, s := range m.ctrl.Sections() {
		if s.Hidden {
			continue
		}
		b.WriteString(sectionStyle.Render(s.Title))
		if s.HasSummary {
			b.WriteString(" ")
			b.WriteString(countStyle.Render(s.Summary))
		}
		b.WriteString("\n")
		if len(s.Cards) == 0 {
			b.WriteString(descStyle.Render("  (none)"))
			b.WriteString("\n")
			continue
		}
		for _, card := range s.Cards {
			if card.Hidden {
				continue
			}
			b.WriteString(m.renderCard(card))
		}
		b.WriteString("\n")
	}
	return b.String()
}

func (m Model) renderCard(card *filter.Card) string {
	idx := m.cardIndex(card)
	r := m.repos[idx]

	cursor := " "
	name := r.Name
	if idx == m.cursor && m.mode == modeBrowse {
		cursor = ">"
		name = selectedStyle.Render(name)
	}

	badges := ""
	if r.Fork {
		badges += " " + badgeStyle.Render("[Fork]")
	}
	if r.Archived {
		badges += " " + badgeStyle.Render("[Archived]")
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%s %s%s\n", cursor, name, badges)
	fmt.Fprintf(&b, "    %s\n", descStyle.Render(r.DisplayDescription()))
	fmt.Fprintf(&b, "    %s\n", countStyle.Render(fmt.Sprintf("Language: %s • Stars: %s • Updated: %s",
		r.DisplayLanguage(), humanize.Comma(int64(r.Stars)), updatedLabel(r))))
	return b.String()
}

func (m Model) cardIndex(card *filter.Card) int {
	for i, c := range m.cards {
		if c == card {
			return i
		}
	}
	return 0
}

func (m Model) visibleIndices() []int {
	var out []int
	for i, c := range m.cards {
		if !c.Hidden {
			out = append(out, i)
		}
	}
	return out
}

func (m Model) selectedRepo() (repo.Repository, bool) {
	if m.cursor < 0 || m.cursor >= len(m.repos) {
		return repo.Repository{}, false
	}
	if m.cards[m.cursor].Hidden {
		return repo.Repository{}, false
	}
	return m.repos[m.cursor], true
}

// moveCursor steps the cursor through visible cards only.
func (m Model) moveCursor(delta int) int {
	visible := m.visibleIndices()
	if len(visible) == 0 {
		return 0
	}
	pos := 0
	for i, idx := range visible {
		pos = i
		if idx >= m.cursor {
			break
		}
	}
	pos = clampCursor(pos+delta, len(visible))
	return visible[pos]
}

// clampToVisible snaps the cursor onto a visible card after the filter
// changes underneath it.
func (m Model) clampToVisible(cur int) int {
	visible := m.visibleIndices()
	if len(visible) == 0 {
		return 0
	}
	for _, idx := range visible {
		if idx >= cur {
			return idx
		}
	}
	return visible[len(visible)-1]
}

func (m Model) moveToggleFocus(delta int) int {
	toggles := m.ctrl.Toggles()
	if len(toggles) == 0 {
		return 0
	}
	i := m.focusToggle
	for range toggles {
		i += delta
		if i < 0 {
			i = len(toggles) - 1
		}
		if i >= len(toggles) {
			i = 0
		}
		if !toggles[i].Hidden {
			return i
		}
	}
	return m.focusToggle
}

func searchStatus(c *filter.Controller) string {
	if !c.Filtering() {
		return "Showing everything"
	}
	return fmt.Sprintf("Showing %d of %d repositories", c.VisibleCount(), c.Total())
}

func updatedLabel(r repo.Repository) string {
	if r.UpdatedAt.IsZero() {
		return "Unknown"
	}
	return humanize.Time(r.UpdatedAt)
}

func renderHelp(k config.Keymap) string {
	return fmt.Sprintf("%s/%s move • %s search • %s/%s language • %s toggle • %s detail • %s refresh • %s quit",
		k.Up, k.Down, k.Search, k.NextFilter, k.PrevFilter, keyLabel(k.Toggle), k.Detail, k.Refresh, k.Quit)
}

func keyLabel(key string) string {
	if key == " " {
		return "space"
	}
	return key
}

func clampCursor(cur, n int) int {
	if n <= 0 {
		return 0
	}
	if cur < 0 {
		return 0
	}
	if cur >= n {
		return n - 1
	}
	return cur
}
