package tui

import (
	"fmt"
	"strings"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/sadopc/cupr/internal/analytics"
	"github.com/sadopc/cupr/internal/scoring"
	"github.com/sadopc/cupr/internal/store"
)

type shareModel struct {
	store  *store.Store
	width  int
	height int

	sessions []store.Session
	cursor   int

	sharing       bool // detail panel open
	publicViewing bool // read-only rendering as a link visitor sees it
	session       *store.Session
	shareURL      string
	copies        int
	views         int
}

func newShareModel(s *store.Store) shareModel {
	return shareModel{store: s}
}

func (m *shareModel) setSize(w, h int) {
	m.width = w
	m.height = h
}

type shareDataMsg struct {
	sessions []store.Session
}

type shareDetailMsg struct {
	session  *store.Session
	shareURL string
	copies   int
	views    int
}

// shareCopiedMsg reports a successful clipboard write, so the engagement
// counter only moves when the copy actually happened.
type shareCopiedMsg struct{}

func (m shareModel) refresh() tea.Cmd {
	return func() tea.Msg {
		sessions, _ := m.store.ListSessions()
		return shareDataMsg{sessions: sessions}
	}
}

func (m shareModel) openDetail(sessionID string) tea.Cmd {
	return func() tea.Msg {
		shareID, err := m.store.EnsureShareID(sessionID)
		if err != nil {
			return statusMsg{text: fmt.Sprintf("Share: %v", err), isError: true}
		}
		sess, err := m.store.GetSession(sessionID)
		if err != nil {
			return statusMsg{text: fmt.Sprintf("Share: %v", err), isError: true}
		}
		base, _ := m.store.GetSetting("share_base_url")
		copies, _ := m.store.CountEvents(sessionID, store.EventURLCopied)
		views, _ := m.store.CountEvents(sessionID, store.EventPublicView)
		return shareDetailMsg{
			session:  sess,
			shareURL: fmt.Sprintf("%s/?share=%s", strings.TrimRight(base, "/"), shareID),
			copies:   copies,
			views:    views,
		}
	}
}

func (m shareModel) update(msg tea.Msg) (shareModel, tea.Cmd) {
	switch msg := msg.(type) {
	case shareDataMsg:
		m.sessions = msg.sessions
		if m.cursor >= len(m.sessions) {
			m.cursor = max(0, len(m.sessions)-1)
		}
		return m, nil

	case shareDetailMsg:
		m.sharing = true
		m.publicViewing = false
		m.session = msg.session
		m.shareURL = msg.shareURL
		m.copies = msg.copies
		m.views = msg.views
		return m, nil

	case shareCopiedMsg:
		m.copies++
		return m, func() tea.Msg {
			return statusMsg{text: "Share link copied"}
		}

	case tea.KeyMsg:
		if m.sharing {
			return m.updateDetail(msg)
		}
		return m.updateList(msg)
	}
	return m, nil
}

func (m shareModel) updateList(msg tea.KeyMsg) (shareModel, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.Up):
		if m.cursor > 0 {
			m.cursor--
		}
	case key.Matches(msg, keys.Down):
		if m.cursor < len(m.sessions)-1 {
			m.cursor++
		}
	case key.Matches(msg, keys.Enter):
		if m.cursor < len(m.sessions) {
			return m, m.openDetail(m.sessions[m.cursor].SessionID)
		}
	}
	return m, nil
}

func (m shareModel) updateDetail(msg tea.KeyMsg) (shareModel, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.Back):
		if m.publicViewing {
			m.publicViewing = false
			return m, nil
		}
		m.sharing = false
		m.session = nil
		return m, nil

	case key.Matches(msg, keys.Copy):
		url := m.shareURL
		sess := m.session
		return m, func() tea.Msg {
			if err := clipboard.WriteAll(url); err != nil {
				return statusMsg{text: fmt.Sprintf("Clipboard: %v", err), isError: true}
			}
			// Best-effort event log; the copy already happened.
			m.store.AppendEvent(store.EventURLCopied, sess.SessionID, sess.UserEmail, "")
			return shareCopiedMsg{}
		}

	case key.Matches(msg, keys.View):
		if !m.publicViewing && m.session != nil {
			m.publicViewing = true
			m.views++
			sess := m.session
			return m, func() tea.Msg {
				m.store.AppendEvent(store.EventPublicView, sess.SessionID, sess.UserEmail, "")
				return nil
			}
		}
	}
	return m, nil
}

func (m shareModel) view() string {
	w := m.width - 4

	if m.publicViewing && m.session != nil {
		return m.renderPublicView(w)
	}
	if m.sharing && m.session != nil {
		return m.renderDetail(w)
	}
	return m.renderList(w)
}

func (m shareModel) renderList(w int) string {
	title := titleStyle.Render("Share")

	if len(m.sessions) == 0 {
		content := lipgloss.JoinVertical(lipgloss.Left,
			title,
			"",
			mutedStyle.Render("Nothing to share yet."),
		)
		return panelStyle.Width(w).Render(content)
	}

	var rows []string
	rows = append(rows, title)
	rows = append(rows, "")
	rows = append(rows, mutedStyle.Render("  Pick a session to generate its share link."))
	rows = append(rows, "")

	for i, sess := range m.sessions {
		cursor := "  "
		style := normalItemStyle
		if i == m.cursor {
			cursor = "> "
			style = selectedItemStyle
		}
		shared := " "
		if sess.ShareID != "" {
			shared = accentStyle.Render("●")
		}
		rows = append(rows, style.Render(fmt.Sprintf("%s%-12s %-30s ", cursor, sess.Date, truncate(sess.Name, 30)))+shared)
	}

	rows = append(rows, "")
	rows = append(rows, mutedStyle.Render("  enter: share link"))

	return panelStyle.Width(w).Render(strings.Join(rows, "\n"))
}

func (m shareModel) renderDetail(w int) string {
	sess := m.session
	title := titleStyle.Render("Share — " + sess.Name)

	var rows []string
	rows = append(rows, title)
	rows = append(rows, "")
	rows = append(rows, "  "+highlightStyle.Render(m.shareURL))
	rows = append(rows, "")
	rows = append(rows, fmt.Sprintf("  %s %s",
		mutedStyle.Render("Shared by"), sess.DisplayCupper()))
	rows = append(rows, fmt.Sprintf("  %s %d copies  %d public views",
		mutedStyle.Render("Engagement:"), m.copies, m.views))
	rows = append(rows, "")
	rows = append(rows, mutedStyle.Render("  c: copy link  v: public view  esc: back"))

	return activePanelStyle.Width(w).Render(strings.Join(rows, "\n"))
}

// renderPublicView shows the session the way a share-link visitor sees it:
// read-only, anonymous-mode respected, no owner controls.
func (m shareModel) renderPublicView(w int) string {
	sess := m.session

	var rows []string
	rows = append(rows, titleStyle.Render(sess.Name))
	rows = append(rows, mutedStyle.Render(fmt.Sprintf("  %s · %s · %s", sess.Date, sess.Protocol, sess.DisplayCupper())))
	rows = append(rows, "")

	if len(sess.Scores) == 0 {
		rows = append(rows, mutedStyle.Render("  Not scored yet."))
	} else {
		header := mutedStyle.Render(fmt.Sprintf("  %-20s %8s  %-12s %s", "Sample", "Total", "Grade", "Flavors"))
		rows = append(rows, header)
		for _, sc := range sess.Scores {
			rows = append(rows, fmt.Sprintf("  %-20s %s  %-12s %s",
				truncate(sc.SampleName, 20),
				totalStyle.Render(fmt.Sprintf("%8.2f", sc.Total)),
				scoring.Grade(sc.Total),
				mutedStyle.Render(truncate(strings.Join(sc.SelectedFlavors, ", "), 40)),
			))
		}
	}

	if ins, ok := analytics.SessionInsights(sess); ok {
		rows = append(rows, "")
		rows = append(rows, "  "+subtitleStyle.Render("Insights"))
		rows = append(rows, fmt.Sprintf("  %s %s   %s %s",
			mutedStyle.Render("Average"), totalStyle.Render(formatScore(ins.Average)),
			mutedStyle.Render("Range"), formatScore(ins.Range)))
		rows = append(rows, fmt.Sprintf("  %s %s   %s %s",
			mutedStyle.Render("Strongest"), attributeLabel(ins.BestCategory),
			mutedStyle.Render("Weakest"), attributeLabel(ins.WorstCategory)))
		if len(sess.Scores) > 1 {
			rows = append(rows, fmt.Sprintf("  %s %s   %s %s",
				mutedStyle.Render("Best sample"), truncate(ins.BestSample, 20),
				mutedStyle.Render("Lowest"), truncate(ins.WorstSample, 20)))
		}
		if len(ins.TopFlavors) > 0 {
			var names []string
			for _, fc := range ins.TopFlavors {
				names = append(names, fc.Name)
			}
			rows = append(rows, "  "+mutedStyle.Render("Top flavors: "+strings.Join(names, ", ")))
		}
	}

	if sess.SessionNotes != "" {
		rows = append(rows, "")
		rows = append(rows, "  "+mutedStyle.Render(sess.SessionNotes))
	}

	rows = append(rows, "")
	rows = append(rows, mutedStyle.Render("  esc: back"))

	return panelStyle.Width(w).Render(strings.Join(rows, "\n"))
}
