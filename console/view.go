package console

import (
	"fmt"
	"sort"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/sahilchouksey/mentor-hub-api/utils/listing"
)

// View renders the UI based on the current screen.
func (m *Model) View() string {
	if m.screen == screenLogin {
		return m.renderLogin()
	}

	var b strings.Builder
	b.WriteString(m.renderTabs())
	b.WriteString("\n")
	b.WriteString(styles.help.Render(strings.Join(m.ctrl().Breadcrumbs, " › ")))
	b.WriteString("\n")
	for _, banner := range m.ctrl().Banners() {
		style := styles.ok
		if banner.Kind == listing.BannerError {
			style = styles.err
		}
		b.WriteString(style.Render(banner.Message))
		b.WriteString("\n")
	}
	b.WriteString("\n")

	switch m.screen {
	case screenList:
		b.WriteString(m.renderList())
	case screenView:
		b.WriteString(m.renderDetail())
	case screenForm:
		b.WriteString(m.renderForm())
	case screenConfirm:
		b.WriteString(m.renderConfirm())
	case screenSend:
		b.WriteString(m.renderSend())
	}
	return b.String()
}

func (m *Model) renderLogin() string {
	var b strings.Builder
	b.WriteString(styles.title.Render("Mentor Hub admin"))
	b.WriteString("\n")
	b.WriteString(styles.label.Render("Username") + "\n" + m.username.View() + "\n\n")
	b.WriteString(styles.label.Render("Password") + "\n" + m.password.View() + "\n\n")
	if m.loginErr != nil {
		b.WriteString(styles.err.Render(m.loginErr.Error()) + "\n\n")
	}
	b.WriteString(styles.help.Render("enter: sign in • tab: switch field • esc: quit"))
	return b.String()
}

func (m *Model) renderTabs() string {
	tabs := make([]string, len(Resources))
	for i, res := range Resources {
		if i == m.resIdx {
			tabs[i] = styles.active.Render(res.Title)
		} else {
			tabs[i] = styles.tab.Render(res.Title)
		}
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, tabs...)
}

func (m *Model) renderList() string {
	c := m.ctrl()
	res := m.res()
	var b strings.Builder

	if m.searching || c.Search != "" {
		b.WriteString(m.search.View())
		b.WriteString("\n")
	}
	if res.FilterKey != "" {
		filter := c.Filters[res.FilterKey]
		if filter == "" {
			filter = "all"
		}
		b.WriteString(styles.help.Render(fmt.Sprintf("%s: %s", res.FilterKey, filter)))
		b.WriteString("\n")
	}

	if len(m.rows) == 0 && !m.loading {
		b.WriteString(styles.warn.Render("No records found"))
		b.WriteString("\n")
	} else {
		b.WriteString(m.table.View())
		b.WriteString("\n")
	}

	b.WriteString(m.renderPager())
	b.WriteString("\n")
	b.WriteString(m.help.View(m.keys))
	return b.String()
}

func (m *Model) renderPager() string {
	p := m.pagination
	if p.TotalPages == 0 {
		return ""
	}
	parts := make([]string, 0, len(p.PageWindow)+2)
	for _, n := range p.PageWindow {
		label := fmt.Sprintf(" %d ", n)
		if n == p.CurrentPage {
			label = styles.active.Render(fmt.Sprintf("%d", n))
		}
		parts = append(parts, label)
	}
	summary := fmt.Sprintf("%d records", p.Total)
	if m.loading {
		summary += " • loading…"
	}
	return strings.Join(parts, "") + "  " + styles.help.Render(summary)
}

func (m *Model) renderDetail() string {
	row := m.ctrl().Selected
	keys := make([]string, 0, len(row))
	for k := range row {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	for _, k := range keys {
		b.WriteString(styles.label.Render(fmt.Sprintf("%-18s", k)))
		b.WriteString(" ")
		b.WriteString(formatValue(row[k]))
		b.WriteString("\n")
	}
	b.WriteString("\n")
	b.WriteString(styles.help.Render("e: edit • esc: back"))
	return b.String()
}

func (m *Model) renderForm() string {
	var b strings.Builder
	title := "Add " + m.res().Title
	if m.form.IsUpdate() {
		title = "Edit " + m.res().Title
	}
	b.WriteString(styles.title.Render(title))
	b.WriteString("\n")

	for i, in := range m.inputs {
		label := in.label
		if i == m.focus {
			label = "› " + label
		}
		b.WriteString(styles.label.Render(label))
		b.WriteString("\n")
		b.WriteString(in.input.View())
		b.WriteString("\n")
		if msg := m.form.VisibleError(in.key); msg != "" {
			b.WriteString(styles.err.Render(msg))
			b.WriteString("\n")
		}
	}

	hint := "ctrl+s: save • tab: next field • esc: cancel"
	if len(m.res().Sections) > 0 {
		hint += " • ctrl+n: add program • ctrl+x: remove program"
	}
	b.WriteString("\n")
	b.WriteString(styles.help.Render(hint))
	return b.String()
}

func (m *Model) renderConfirm() string {
	pending := m.ctrl().PendingConfirm()
	if pending == nil {
		return ""
	}
	return styles.warn.Render(pending.Prompt) + "\n\n" + styles.help.Render("y: yes • n: no")
}

func (m *Model) renderSend() string {
	return styles.title.Render("Recipients") + "\n" + m.recipients.View() + "\n\n" +
		styles.help.Render("ctrl+s: send • esc: cancel")
}
