package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/groupscout/groupscout/internal/models"
	"github.com/groupscout/groupscout/internal/session"
	"github.com/groupscout/groupscout/internal/view"
)

func (m *Model) renderQuery() string {
	title := styles.title.Render("groupscout")
	prompt := fmt.Sprintf("%s\n\n%s", title, m.input.View())

	var note string
	if m.errText != "" {
		note = styles.err.Render(m.errText)
	} else if len(m.items) > 0 {
		note = styles.help.Render("esc returns to results")
	}

	helpView := m.help.ShortHelpView([]key.Binding{m.keys.enter, m.keys.quit})
	return fmt.Sprintf("%s\n\n%s\n\n%s", prompt, note, helpView)
}

func (m *Model) renderResults() string {
	filtered := m.filtered()
	page := m.pager.Slice(filtered)

	var b strings.Builder
	b.WriteString(m.renderHeader())
	b.WriteString("\n")

	if len(page) == 0 {
		b.WriteString(styles.dim.Render("No results in view."))
		b.WriteString("\n")
	}
	for i, item := range page {
		b.WriteString(m.renderRow(i, item))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(m.renderFooter(len(filtered)))
	b.WriteString("\n")
	b.WriteString(m.help.ShortHelpView(m.keys.ShortHelp()))
	return b.String()
}

func (m *Model) renderActorPick() string {
	helpKeys := []key.Binding{m.keys.enter, m.keys.back, m.keys.quit}
	helpView := m.help.ShortHelpView(helpKeys)
	return fmt.Sprintf("%s\n\n%s", m.actorList.View(), helpView)
}

func (m *Model) renderHeader() string {
	phase := m.sess.Phase()
	title := styles.title.Render(fmt.Sprintf("Results for %q", m.sess.Query()))

	var line string
	switch {
	case m.errText != "":
		line = styles.err.Render(m.errText)
	case phase == session.Completed:
		newCount, knownCount := m.sess.Counts()
		line = styles.ok.Render(fmt.Sprintf("Done: %d new, %d known", newCount, knownCount))
	case m.status != "":
		line = styles.warn.Render(m.status)
	default:
		line = styles.dim.Render(phase.String())
	}
	return fmt.Sprintf("%s\n%s\n", title, line)
}

func (m *Model) renderRow(index int, item models.DiscoveredItem) string {
	cursor := "  "
	if index == m.cursor {
		cursor = styles.cursor.Render("> ")
	}

	mark := "  "
	if m.selection.Has(item) {
		mark = styles.selected.Render("* ")
	}

	handle := item.Handle
	if handle != "" {
		handle = "@" + handle
	}

	row := fmt.Sprintf("%-36s %-18s %-8s %7s %s",
		clip(item.Title, 36), clip(handle, 18), item.Kind, memberCount(item), badges(item))
	if index == m.cursor {
		row = styles.cursor.Render(row)
	}
	return cursor + mark + row
}

func (m *Model) renderFooter(filteredCount int) string {
	parts := []string{
		fmt.Sprintf("page %d/%d", m.pager.Page(), m.pager.TotalPages(filteredCount)),
		fmt.Sprintf("%d items", filteredCount),
	}
	if n := m.selection.Count(); n > 0 {
		parts = append(parts, fmt.Sprintf("%d selected", n))
	}
	if desc := filterSummary(m.filters); desc != "" {
		parts = append(parts, desc)
	}
	if n := m.sess.PendingCount(); n > 0 {
		parts = append(parts, fmt.Sprintf("%d joins in flight", n))
	}
	return styles.dim.Render(strings.Join(parts, " · "))
}

func filterSummary(f view.Filters) string {
	var parts []string
	if f.Kind != nil {
		parts = append(parts, f.Kind.String())
	}
	switch f.Membership {
	case view.JoinedBucket:
		parts = append(parts, "joined")
	case view.NotJoinedBucket:
		parts = append(parts, "not joined")
	}
	if len(parts) == 0 {
		return ""
	}
	return "filter: " + strings.Join(parts, "+")
}

// badges renders per-item state markers: membership, novelty, saved flag.
func badges(item models.DiscoveredItem) string {
	var parts []string
	switch item.Membership {
	case models.Joining:
		parts = append(parts, styles.warn.Render("joining"))
	case models.Joined:
		parts = append(parts, styles.ok.Render("joined"))
	case models.Monitoring:
		parts = append(parts, styles.ok.Render("monitoring"))
	}
	if item.Novelty == models.NoveltyNew {
		parts = append(parts, styles.cursor.Render("new"))
	}
	if item.Saved {
		parts = append(parts, styles.selected.Render("saved"))
	}
	return strings.Join(parts, " ")
}

func memberCount(item models.DiscoveredItem) string {
	if item.MemberCount <= 0 {
		return "-"
	}
	return fmt.Sprintf("%d", item.MemberCount)
}

func clip(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max-1]) + "…"
}
