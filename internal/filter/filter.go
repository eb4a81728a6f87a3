package filter

import (
	"fmt"
	"sort"
	"strings"
)

// UnknownLanguage is the sentinel a card with no language normalizes to.
const UnknownLanguage = "unknown"

// Card is one listing unit. Identity is its position in the controller's
// card slice; cards are only ever shown or hidden, never added or removed.
type Card struct {
	Name        string
	Language    string
	Description string
	Hidden      bool
}

// Section is a named group of cards with a derived visibility and an
// optional "visible/total" summary label. Total is fixed at construction.
type Section struct {
	Title      string
	Cards      []*Card
	Hidden     bool
	Total      int
	HasSummary bool
	Summary    string
}

// Toggle is one category filter button. The empty Language is reserved for
// the "all" button. A hidden toggle is inert: it cannot be pressed and
// clicks on it do nothing.
type Toggle struct {
	Language string
	Label    string
	Pressed  bool
	Hidden   bool
}

// Selection is the explicit state of the toggle group: either every card
// language is admitted (All) or only the listed ones are.
type Selection struct {
	All       bool
	Languages map[string]struct{}
}

// Controller owns the filter state for one page of cards. It recomputes
// card and section visibility, the empty-state flag, and the summary
// strings in full on every input event.
type Controller struct {
	cards    []*Card
	sections []*Section
	toggles  []*Toggle
	query    string
	total    int

	visible   int
	Summary   string
	NoResults bool
}

// New builds a controller over the given cards, sections, and toggles and
// runs the initial availability and filter passes.
func New(cards []*Card, sections []*Section, toggles []*Toggle) *Controller {
	c := &Controller{
		cards:    cards,
		sections: sections,
		toggles:  toggles,
		total:    len(cards),
	}
	for _, s := range c.sections {
		if s.Total == 0 {
			s.Total = len(s.Cards)
		}
	}
	c.ApplyLanguageAvailability()
	c.Apply()
	return c
}

// NormalizeLanguage lowercases a card language, mapping the empty string to
// the "unknown" sentinel.
func NormalizeLanguage(lang string) string {
	lang = strings.ToLower(strings.TrimSpace(lang))
	if lang == "" {
		return UnknownLanguage
	}
	return lang
}

// TogglesFor returns the toggle row for a card set: the "all" button
// followed by one button per distinct normalized language, sorted.
func TogglesFor(cards []*Card) []*Toggle {
	seen := map[string]string{}
	for _, card := range cards {
		norm := NormalizeLanguage(card.Language)
		if _, ok := seen[norm]; ok {
			continue
		}
		label := strings.TrimSpace(card.Language)
		if label == "" {
			label = "Unknown"
		}
		seen[norm] = label
	}
	langs := make([]string, 0, len(seen))
	for norm := range seen {
		langs = append(langs, norm)
	}
	sort.Strings(langs)

	toggles := []*Toggle{{Language: "", Label: "All", Pressed: true}}
	for _, lang := range langs {
		toggles = append(toggles, &Toggle{Language: lang, Label: seen[lang]})
	}
	return toggles
}

// SetQuery trims and lowercases q and reapplies the filter.
func (c *Controller) SetQuery(q string) {
	if c == nil {
		return
	}
	c.query = strings.ToLower(strings.TrimSpace(q))
	c.Apply()
}

// Query returns the normalized query currently applied.
func (c *Controller) Query() string {
	if c == nil {
		return ""
	}
	return c.query
}

// Click runs the toggle state machine for the toggle at index i, then
// reapplies the filter. Clicking "all" unpresses every specific toggle.
// Clicking a specific toggle flips it and unpresses "all"; if that leaves
// nothing pressed, "all" is pressed again. Out-of-range and hidden toggles
// are ignored.
func (c *Controller) Click(i int) {
	if c == nil || i < 0 || i >= len(c.toggles) {
		return
	}
	clicked := c.toggles[i]
	if clicked.Hidden {
		return
	}

	sel := c.SelectionState()
	if clicked.Language == "" {
		sel = Selection{All: true}
	} else {
		if sel.Languages == nil {
			sel.Languages = map[string]struct{}{}
		}
		if _, pressed := sel.Languages[clicked.Language]; pressed {
			delete(sel.Languages, clicked.Language)
		} else {
			sel.Languages[clicked.Language] = struct{}{}
		}
		sel.All = len(sel.Languages) == 0
	}
	c.writeSelection(sel)
	c.Apply()
}

// SelectionState derives the toggle group state from the pressed flags.
// Empty pressed set means AllSelected regardless of the "all" flag itself.
func (c *Controller) SelectionState() Selection {
	if c == nil {
		return Selection{All: true}
	}
	sel := Selection{Languages: map[string]struct{}{}}
	for _, t := range c.toggles {
		if t.Language != "" && t.Pressed && !t.Hidden {
			sel.Languages[t.Language] = struct{}{}
		}
	}
	sel.All = len(sel.Languages) == 0
	return sel
}

// writeSelection writes a selection back to the pressed flags, restoring
// the mutual-exclusivity invariant between "all" and the specifics.
func (c *Controller) writeSelection(sel Selection) {
	for _, t := range c.toggles {
		if t.Language == "" {
			t.Pressed = sel.All
			continue
		}
		_, on := sel.Languages[t.Language]
		t.Pressed = on && !t.Hidden
	}
}

// ApplyLanguageAvailability hides and unpresses every specific toggle whose
// language appears in no card. The "all" toggle is never hidden. If the
// pass leaves no specific toggle pressed, "all" is pressed. Safe to rerun.
func (c *Controller) ApplyLanguageAvailability() {
	if c == nil {
		return
	}
	present := map[string]struct{}{}
	for _, card := range c.cards {
		present[NormalizeLanguage(card.Language)] = struct{}{}
	}
	for _, t := range c.toggles {
		if t.Language == "" {
			continue
		}
		if _, ok := present[t.Language]; !ok {
			t.Hidden = true
			t.Pressed = false
		} else {
			t.Hidden = false
		}
	}
	c.writeSelection(c.SelectionState())
}

// Apply recomputes every card and section visibility, the empty-state
// flag, and the summary strings from the current query and selection.
func (c *Controller) Apply() {
	if c == nil {
		return
	}
	sel := c.SelectionState()
	filtering := c.query != "" || !sel.All

	visible := 0
	for _, card := range c.cards {
		card.Hidden = !c.matches(card, sel)
		if !card.Hidden {
			visible++
		}
	}
	c.visible = visible

	for _, s := range c.sections {
		shown := 0
		for _, card := range s.Cards {
			if !card.Hidden {
				shown++
			}
		}
		if filtering {
			s.Hidden = shown == 0
		} else {
			s.Hidden = false
		}
		if s.HasSummary {
			s.Summary = fmt.Sprintf("Repositories: %d/%d", shown, s.Total)
		}
	}

	c.NoResults = filtering && visible == 0
	c.Summary = fmt.Sprintf("Public repositories: %d/%d", visible, c.total)
}

func (c *Controller) matches(card *Card, sel Selection) bool {
	if c.query != "" {
		haystack := strings.ToLower(card.Name + " " + card.Language + " " + card.Description)
		if !strings.Contains(haystack, c.query) {
			return false
		}
	}
	if sel.All {
		return true
	}
	_, ok := sel.Languages[NormalizeLanguage(card.Language)]
	return ok
}

// Filtering reports whether any constraint is active.
func (c *Controller) Filtering() bool {
	if c == nil {
		return false
	}
	return c.query != "" || !c.SelectionState().All
}

// VisibleCount returns the number of cards shown by the last Apply.
func (c *Controller) VisibleCount() int {
	if c == nil {
		return 0
	}
	return c.visible
}

// Total returns the full card count, fixed at construction.
func (c *Controller) Total() int {
	if c == nil {
		return 0
	}
	return c.total
}

// Cards returns the controller's card slice.
func (c *Controller) Cards() []*Card {
	if c == nil {
		return nil
	}
	return c.cards
}

// Sections returns the controller's section slice.
func (c *Controller) Sections() []*Section {
	if c == nil {
		return nil
	}
	return c.sections
}

// Toggles returns the controller's toggle slice.
func (c *Controller) Toggles() []*Toggle {
	if c == nil {
		return nil
	}
	return c.toggles
}
