package tui

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/sadopc/cupr/internal/store"
)

var protocols = []string{"SCA Standard", "COE", "Custom"}

type sessionsModel struct {
	store  *store.Store
	width  int
	height int

	sessions       []store.Session
	cursor         int
	sampleCursor   int
	viewingSamples bool

	formActive bool
	form       *huh.Form
	formType   string // "session", "edit_session", "sample", "edit_sample"

	// Form field pointers (survive value copies)
	formName     *string
	formDate     *string
	formCupper   *string
	formProtocol *string
	formTemp     *string
	formCups     *string
	formBlind    *bool

	formSampleName *string
	formOrigin     *string
	formVariety    *string
	formProcess    *string
	formAltitude   *string
	formHarvest    *string

	editingID string // session_id being edited
}

func newSessionsModel(s *store.Store) sessionsModel {
	name, date, cupper, protocol, temp, cups := "", "", "", protocols[0], "", ""
	blind := false
	sn, so, sv, sp, sa, sh := "", "", "", "", "", ""
	return sessionsModel{
		store:          s,
		formName:       &name,
		formDate:       &date,
		formCupper:     &cupper,
		formProtocol:   &protocol,
		formTemp:       &temp,
		formCups:       &cups,
		formBlind:      &blind,
		formSampleName: &sn,
		formOrigin:     &so,
		formVariety:    &sv,
		formProcess:    &sp,
		formAltitude:   &sa,
		formHarvest:    &sh,
	}
}

func (m *sessionsModel) setSize(w, h int) {
	m.width = w
	m.height = h
}

type sessionsDataMsg struct {
	sessions []store.Session
}

func (m sessionsModel) refresh() tea.Cmd {
	return func() tea.Msg {
		sessions, _ := m.store.ListSessions()
		return sessionsDataMsg{sessions: sessions}
	}
}

func (m sessionsModel) selected() *store.Session {
	if m.cursor >= len(m.sessions) {
		return nil
	}
	return &m.sessions[m.cursor]
}

func (m sessionsModel) update(msg tea.Msg) (sessionsModel, tea.Cmd) {
	if m.formActive && m.form != nil {
		return m.updateForm(msg)
	}

	switch msg := msg.(type) {
	case sessionsDataMsg:
		m.sessions = msg.sessions
		if m.cursor >= len(m.sessions) {
			m.cursor = max(0, len(m.sessions)-1)
		}
		return m, nil

	case tea.KeyMsg:
		if m.viewingSamples {
			return m.updateSampleView(msg)
		}
		return m.updateSessionList(msg)
	}
	return m, nil
}

func (m sessionsModel) updateSessionList(msg tea.KeyMsg) (sessionsModel, tea.Cmd) {
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
		if len(m.sessions) > 0 {
			m.viewingSamples = true
			m.sampleCursor = 0
		}
	case key.Matches(msg, keys.New):
		return m.showSessionForm(nil)
	case key.Matches(msg, keys.Edit):
		if sess := m.selected(); sess != nil {
			return m.showSessionForm(sess)
		}
	case key.Matches(msg, keys.Delete):
		if sess := m.selected(); sess != nil {
			if err := m.store.DeleteSession(sess.SessionID); err != nil {
				return m, func() tea.Msg {
					return statusMsg{text: fmt.Sprintf("Delete session: %v", err), isError: true}
				}
			}
			return m, m.refresh()
		}
	case key.Matches(msg, keys.Score):
		if sess := m.selected(); sess != nil {
			if len(sess.Samples) == 0 {
				return m, func() tea.Msg {
					return statusMsg{text: "Register samples before scoring", isError: true}
				}
			}
			id := sess.SessionID
			return m, func() tea.Msg { return scoreSessionMsg{sessionID: id} }
		}
	}
	return m, nil
}

func (m sessionsModel) updateSampleView(msg tea.KeyMsg) (sessionsModel, tea.Cmd) {
	sess := m.selected()
	if sess == nil {
		m.viewingSamples = false
		return m, nil
	}
	switch {
	case key.Matches(msg, keys.Back):
		m.viewingSamples = false
		return m, nil
	case key.Matches(msg, keys.Up):
		if m.sampleCursor > 0 {
			m.sampleCursor--
		}
	case key.Matches(msg, keys.Down):
		if m.sampleCursor < len(sess.Samples)-1 {
			m.sampleCursor++
		}
	case key.Matches(msg, keys.New):
		return m.showSampleForm(nil)
	case key.Matches(msg, keys.Edit):
		if m.sampleCursor < len(sess.Samples) {
			return m.showSampleForm(&sess.Samples[m.sampleCursor])
		}
	case key.Matches(msg, keys.Delete):
		if m.sampleCursor < len(sess.Samples) {
			samples := append([]store.Sample(nil), sess.Samples...)
			samples = append(samples[:m.sampleCursor], samples[m.sampleCursor+1:]...)
			id := sess.SessionID
			return m, func() tea.Msg {
				if _, err := m.store.ReplaceSamples(id, samples); err != nil {
					return statusMsg{text: fmt.Sprintf("Delete sample: %v", err), isError: true}
				}
				return sessionSavedMsg{sessionID: id}
			}
		}
	}
	return m, nil
}

func (m sessionsModel) showSessionForm(sess *store.Session) (sessionsModel, tea.Cmd) {
	if sess == nil {
		m.formType = "session"
		m.editingID = ""
		*m.formName = ""
		*m.formDate = time.Now().Format("2006-01-02")
		*m.formCupper, _ = m.store.GetSetting("default_cupper")
		*m.formProtocol, _ = m.store.GetSetting("default_protocol")
		*m.formTemp, _ = m.store.GetSetting("water_temp")
		*m.formCups, _ = m.store.GetSetting("cups_per_sample")
		*m.formBlind = false
	} else {
		m.formType = "edit_session"
		m.editingID = sess.SessionID
		*m.formName = sess.Name
		*m.formDate = sess.Date
		*m.formCupper = sess.Cupper
		*m.formProtocol = sess.Protocol
		*m.formTemp = strconv.Itoa(sess.WaterTemp)
		*m.formCups = strconv.Itoa(sess.CupsPerSample)
		*m.formBlind = sess.Blind
	}
	if *m.formProtocol == "" {
		*m.formProtocol = protocols[0]
	}

	protoOptions := make([]huh.Option[string], len(protocols))
	for i, p := range protocols {
		protoOptions[i] = huh.NewOption(p, p)
	}

	m.form = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().Title("Session Name").Value(m.formName),
			huh.NewInput().Title("Date (YYYY-MM-DD)").Value(m.formDate),
			huh.NewInput().Title("Cupper").Value(m.formCupper),
			huh.NewSelect[string]().Title("Protocol").Options(protoOptions...).Value(m.formProtocol),
			huh.NewInput().Title("Water Temp (°C)").Value(m.formTemp),
			huh.NewInput().Title("Cups per Sample").Value(m.formCups),
			huh.NewConfirm().Title("Blind Tasting").Value(m.formBlind),
		),
	).WithShowHelp(true).WithShowErrors(true)

	m.formActive = true
	return m, m.form.Init()
}

func (m sessionsModel) showSampleForm(sm *store.Sample) (sessionsModel, tea.Cmd) {
	if sm == nil {
		m.formType = "sample"
		*m.formSampleName = ""
		*m.formOrigin = ""
		*m.formVariety = ""
		*m.formProcess = ""
		*m.formAltitude = ""
		*m.formHarvest = ""
	} else {
		m.formType = "edit_sample"
		*m.formSampleName = sm.Name
		*m.formOrigin = sm.Origin
		*m.formVariety = sm.Variety
		*m.formProcess = sm.Process
		*m.formAltitude = sm.Altitude
		*m.formHarvest = sm.HarvestYear
	}

	m.form = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().Title("Sample Name").Value(m.formSampleName),
			huh.NewInput().Title("Origin").Value(m.formOrigin),
			huh.NewInput().Title("Variety").Value(m.formVariety),
			huh.NewInput().Title("Process").Value(m.formProcess),
			huh.NewInput().Title("Altitude (masl)").Value(m.formAltitude),
			huh.NewInput().Title("Harvest Year").Value(m.formHarvest),
		),
	).WithShowHelp(true).WithShowErrors(true)

	m.formActive = true
	return m, m.form.Init()
}

func (m sessionsModel) updateForm(msg tea.Msg) (sessionsModel, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		if msg.String() == "esc" {
			m.formActive = false
			m.form = nil
			return m, nil
		}
	}

	form, cmd := m.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.form = f
	}

	if m.form.State == huh.StateCompleted {
		m.formActive = false
		switch m.formType {
		case "session", "edit_session":
			return m, m.saveSessionForm()
		case "sample", "edit_sample":
			return m, m.saveSampleForm()
		}
	}

	return m, cmd
}

func (m sessionsModel) saveSessionForm() tea.Cmd {
	if *m.formName == "" {
		return nil
	}
	temp, _ := strconv.Atoi(*m.formTemp)
	cups, _ := strconv.Atoi(*m.formCups)
	anonymous, _ := m.store.GetSetting("anonymous_mode")

	formType := m.formType
	editingID := m.editingID
	name, date, cupper := *m.formName, *m.formDate, *m.formCupper
	protocol, blind := *m.formProtocol, *m.formBlind

	return func() tea.Msg {
		if formType == "edit_session" {
			sess, err := m.store.GetSession(editingID)
			if err != nil {
				return statusMsg{text: fmt.Sprintf("Edit session: %v", err), isError: true}
			}
			sess.Name = name
			sess.Date = date
			sess.Cupper = cupper
			sess.Protocol = protocol
			sess.WaterTemp = temp
			sess.CupsPerSample = cups
			sess.Blind = blind
			if err := m.store.SaveSession(sess); err != nil {
				return statusMsg{text: fmt.Sprintf("Save session: %v", err), isError: true}
			}
			return sessionSavedMsg{sessionID: sess.SessionID}
		}

		sess, err := m.store.CreateSession(&store.Session{
			Name:          name,
			Date:          date,
			Cupper:        cupper,
			Protocol:      protocol,
			WaterTemp:     temp,
			CupsPerSample: cups,
			Blind:         blind,
			AnonymousMode: anonymous == "on",
		})
		if err != nil {
			return statusMsg{text: fmt.Sprintf("Create session: %v", err), isError: true}
		}
		return sessionSavedMsg{sessionID: sess.SessionID}
	}
}

func (m sessionsModel) saveSampleForm() tea.Cmd {
	sess := m.selected()
	if sess == nil || *m.formSampleName == "" {
		return nil
	}

	sample := store.Sample{
		Name:        *m.formSampleName,
		Origin:      *m.formOrigin,
		Variety:     *m.formVariety,
		Process:     *m.formProcess,
		Altitude:    *m.formAltitude,
		HarvestYear: *m.formHarvest,
	}

	samples := append([]store.Sample(nil), sess.Samples...)
	if m.formType == "edit_sample" && m.sampleCursor < len(samples) {
		samples[m.sampleCursor] = sample
	} else {
		samples = append(samples, sample)
	}

	id := sess.SessionID
	return func() tea.Msg {
		if _, err := m.store.ReplaceSamples(id, samples); err != nil {
			return statusMsg{text: fmt.Sprintf("Save sample: %v", err), isError: true}
		}
		return sessionSavedMsg{sessionID: id}
	}
}

func (m sessionsModel) view() string {
	if m.formActive && m.form != nil {
		title := titleStyle.Render("New Session")
		switch m.formType {
		case "edit_session":
			title = titleStyle.Render("Edit Session")
		case "sample":
			title = titleStyle.Render("New Sample")
		case "edit_sample":
			title = titleStyle.Render("Edit Sample")
		}
		formView := m.form.View()
		content := lipgloss.JoinVertical(lipgloss.Left, title, "", formView)
		return panelStyle.Width(m.width - 4).Render(content)
	}

	if m.viewingSamples {
		return m.renderSampleView()
	}
	return m.renderSessionList()
}

func (m sessionsModel) renderSessionList() string {
	w := m.width - 4
	title := titleStyle.Render("Cupping Sessions")

	if len(m.sessions) == 0 {
		content := lipgloss.JoinVertical(lipgloss.Left,
			title,
			"",
			mutedStyle.Render("No sessions yet. Press n to create one."),
		)
		return panelStyle.Width(w).Render(content)
	}

	var rows []string
	rows = append(rows, title)
	rows = append(rows, "")

	header := mutedStyle.Render(fmt.Sprintf("  %-12s %-26s %-16s %8s  %s", "Date", "Name", "Status", "Samples", "Cupper"))
	rows = append(rows, header)

	for i, sess := range m.sessions {
		cursor := "  "
		style := normalItemStyle
		if i == m.cursor {
			cursor = "> "
			style = selectedItemStyle
		}
		status := statusStyle(sess.Status).Render(fmt.Sprintf("%-16s", sess.Status))
		row := style.Render(fmt.Sprintf("%s%-12s %-26s ", cursor, sess.Date, truncate(sess.Name, 26))) +
			status +
			style.Render(fmt.Sprintf(" %7d  %s", len(sess.Samples), sess.Cupper))
		rows = append(rows, row)
	}

	rows = append(rows, "")
	rows = append(rows, mutedStyle.Render("  n: new  e: edit  d: delete  s: score  enter: samples"))

	return panelStyle.Width(w).Render(strings.Join(rows, "\n"))
}

func (m sessionsModel) renderSampleView() string {
	w := m.width - 4
	sess := m.selected()
	if sess == nil {
		return panelStyle.Width(w).Render(mutedStyle.Render("No session selected"))
	}
	title := titleStyle.Render(fmt.Sprintf("%s — Samples", sess.Name))

	if len(sess.Samples) == 0 {
		content := lipgloss.JoinVertical(lipgloss.Left,
			title,
			"",
			mutedStyle.Render("No samples. Press n to register one."),
		)
		return panelStyle.Width(w).Render(content)
	}

	var rows []string
	rows = append(rows, title)
	rows = append(rows, "")

	header := mutedStyle.Render(fmt.Sprintf("  %-20s %-16s %-14s %-12s %8s", "Name", "Origin", "Variety", "Process", "Score"))
	rows = append(rows, header)

	for i, sm := range sess.Samples {
		cursor := "  "
		style := normalItemStyle
		if i == m.sampleCursor {
			cursor = "> "
			style = selectedItemStyle
		}
		scoreStr := mutedStyle.Render("—")
		if sc := sess.SampleScore(sm.Name); sc != nil && sc.Total > 0 {
			scoreStr = totalStyle.Render(formatScore(sc.Total))
		}
		row := style.Render(fmt.Sprintf("%s%-20s %-16s %-14s %-12s ",
			cursor, truncate(sm.Name, 20), truncate(sm.Origin, 16),
			truncate(sm.Variety, 14), truncate(sm.Process, 12))) + scoreStr
		rows = append(rows, row)
	}

	rows = append(rows, "")
	rows = append(rows, mutedStyle.Render("  n: new  e: edit  d: remove  esc: back"))

	return panelStyle.Width(w).Render(strings.Join(rows, "\n"))
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	if n <= 1 {
		return s[:n]
	}
	return s[:n-1] + "…"
}
