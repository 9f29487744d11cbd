package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/sadopc/cupr/internal/scoring"
	"github.com/sadopc/cupr/internal/store"
)

// scoreRows is the scorecard layout: the ten attributes plus the defects
// deduction as the last row.
var scoreRows = append(append([]string{}, scoring.Categories...), "defects")

type scoringModel struct {
	store  *store.Store
	width  int
	height int

	session    *store.Session
	scores     []store.Score // one per sample, sample order
	sampleIdx  int
	attrCursor int

	formActive bool
	form       *huh.Form
	formType   string // "flavors", "notes"

	formFlavors      *[]string
	formNotes        *string
	formSessionNotes *string
}

func newScoringModel(s *store.Store) scoringModel {
	flavors := []string{}
	notes, sessionNotes := "", ""
	return scoringModel{
		store:            s,
		formFlavors:      &flavors,
		formNotes:        &notes,
		formSessionNotes: &sessionNotes,
	}
}

func (m *scoringModel) setSize(w, h int) {
	m.width = w
	m.height = h
}

type scoringDataMsg struct {
	session *store.Session
}

func (m scoringModel) load(sessionID string) tea.Cmd {
	return func() tea.Msg {
		sess, err := m.store.GetSession(sessionID)
		if err != nil {
			return statusMsg{text: fmt.Sprintf("Load session: %v", err), isError: true}
		}
		return scoringDataMsg{session: sess}
	}
}

func (m scoringModel) update(msg tea.Msg) (scoringModel, tea.Cmd) {
	if m.formActive && m.form != nil {
		return m.updateForm(msg)
	}

	switch msg := msg.(type) {
	case scoringDataMsg:
		m.session = msg.session
		m.scores = workingScores(msg.session)
		m.sampleIdx = 0
		m.attrCursor = 0
		*m.formSessionNotes = msg.session.SessionNotes
		return m, nil

	case tea.KeyMsg:
		if m.session == nil || len(m.scores) == 0 {
			return m, nil
		}
		switch {
		case key.Matches(msg, keys.Up):
			if m.attrCursor > 0 {
				m.attrCursor--
			}
		case key.Matches(msg, keys.Down):
			if m.attrCursor < len(scoreRows)-1 {
				m.attrCursor++
			}
		case key.Matches(msg, keys.Left):
			m.adjust(-1)
		case key.Matches(msg, keys.Right):
			m.adjust(1)
		case key.Matches(msg, keys.PrevSample):
			if m.sampleIdx > 0 {
				m.sampleIdx--
			}
		case key.Matches(msg, keys.NextSample):
			if m.sampleIdx < len(m.scores)-1 {
				m.sampleIdx++
			}
		case key.Matches(msg, keys.Flavors):
			return m.showFlavorForm()
		case key.Matches(msg, keys.Notes):
			return m.showNotesForm()
		case key.Matches(msg, keys.Submit):
			return m, m.submit()
		}
	}
	return m, nil
}

// workingScores aligns one editable score with every registered sample,
// seeding missing ones with the form defaults.
func workingScores(sess *store.Session) []store.Score {
	scores := make([]store.Score, 0, len(sess.Samples))
	for _, sm := range sess.Samples {
		if sc := sess.SampleScore(sm.Name); sc != nil {
			scores = append(scores, *sc)
			continue
		}
		scores = append(scores, store.Score{
			SampleName: sm.Name,
			Attributes: scoring.NewAttributes(),
		})
	}
	return scores
}

func (m *scoringModel) adjust(dir int) {
	sc := &m.scores[m.sampleIdx]
	row := scoreRows[m.attrCursor]
	switch row {
	case "uniformity":
		sc.Uniformity = clamp(sc.Uniformity+float64(dir)*2, 0, 10)
	case "clean_cup":
		sc.CleanCup = clamp(sc.CleanCup+float64(dir)*2, 0, 10)
	case "sweetness":
		sc.Sweetness = clamp(sc.Sweetness+float64(dir)*2, 0, 10)
	case "defects":
		sc.Defects = sc.Defects + float64(dir)*2
		if sc.Defects < 0 {
			sc.Defects = 0
		}
	default:
		v := sc.Value(row) + float64(dir)*0.25
		setAttr(&sc.Attributes, row, clamp(v, 6, 10))
	}
}

func setAttr(a *scoring.Attributes, category string, v float64) {
	switch category {
	case "fragrance":
		a.Fragrance = v
	case "flavor":
		a.Flavor = v
	case "aftertaste":
		a.Aftertaste = v
	case "acidity":
		a.Acidity = v
	case "body":
		a.Body = v
	case "balance":
		a.Balance = v
	case "overall":
		a.Overall = v
	}
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func (m scoringModel) showFlavorForm() (scoringModel, tea.Cmd) {
	sc := m.scores[m.sampleIdx]
	*m.formFlavors = append([]string{}, sc.SelectedFlavors...)
	m.formType = "flavors"

	var options []huh.Option[string]
	for _, cat := range scoring.FlavorWheel {
		for _, sub := range cat.Subcategories {
			for _, d := range sub.Descriptors {
				options = append(options, huh.NewOption(fmt.Sprintf("%s (%s)", d, cat.Name), d))
			}
		}
	}

	m.form = huh.NewForm(
		huh.NewGroup(
			huh.NewMultiSelect[string]().
				Title("Flavor Descriptors").
				Options(options...).
				Value(m.formFlavors),
		),
	).WithShowHelp(true).WithShowErrors(true)

	m.formActive = true
	return m, m.form.Init()
}

func (m scoringModel) showNotesForm() (scoringModel, tea.Cmd) {
	sc := m.scores[m.sampleIdx]
	*m.formNotes = sc.Notes
	m.formType = "notes"

	m.form = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().Title("Sample Notes").Value(m.formNotes),
			huh.NewInput().Title("Session Notes").Value(m.formSessionNotes),
		),
	).WithShowHelp(true).WithShowErrors(true)

	m.formActive = true
	return m, m.form.Init()
}

func (m scoringModel) updateForm(msg tea.Msg) (scoringModel, tea.Cmd) {
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
		sc := &m.scores[m.sampleIdx]
		switch m.formType {
		case "flavors":
			sc.SelectedFlavors = append([]string{}, *m.formFlavors...)
		case "notes":
			sc.Notes = *m.formNotes
		}
		return m, nil
	}

	return m, cmd
}

func (m scoringModel) submit() tea.Cmd {
	if m.session == nil {
		return nil
	}
	id := m.session.SessionID
	scores := append([]store.Score(nil), m.scores...)
	sessionNotes := *m.formSessionNotes

	return func() tea.Msg {
		sess, err := m.store.SubmitScores(id, scores, sessionNotes)
		if err != nil {
			return statusMsg{text: fmt.Sprintf("Submit scores: %v", err), isError: true}
		}
		return scoresSubmittedMsg{sessionID: id, status: sess.Status}
	}
}

func (m scoringModel) view() string {
	w := m.width - 4

	if m.session == nil {
		content := lipgloss.JoinVertical(lipgloss.Left,
			titleStyle.Render("Scoring"),
			"",
			mutedStyle.Render("Pick a session and press s to start scoring."),
		)
		return panelStyle.Width(w).Render(content)
	}

	if m.formActive && m.form != nil {
		title := titleStyle.Render("Flavor Wheel")
		if m.formType == "notes" {
			title = titleStyle.Render("Notes")
		}
		return panelStyle.Width(w).Render(
			lipgloss.JoinVertical(lipgloss.Left, title, "", m.form.View()),
		)
	}

	if len(m.scores) == 0 {
		return panelStyle.Width(w).Render(mutedStyle.Render("No samples registered for this session."))
	}

	sample := m.session.Samples[m.sampleIdx]
	sc := m.scores[m.sampleIdx]

	sampleName := sample.Name
	if m.session.Blind {
		sampleName = fmt.Sprintf("Sample %d", m.sampleIdx+1)
	}
	header := lipgloss.JoinHorizontal(lipgloss.Bottom,
		titleStyle.Render(m.session.Name),
		mutedStyle.Render(fmt.Sprintf("  sample %d/%d  ", m.sampleIdx+1, len(m.scores))),
		highlightStyle.Render(sampleName),
	)
	if !m.session.Blind && sample.Origin != "" {
		header += mutedStyle.Render("  " + sample.Origin)
	}

	var rows []string
	rows = append(rows, header)
	rows = append(rows, "")

	for i, row := range scoreRows {
		var value float64
		if row == "defects" {
			value = sc.Defects
		} else {
			value = sc.Value(row)
		}

		cursor := "  "
		style := normalItemStyle
		if i == m.attrCursor {
			cursor = "> "
			style = selectedItemStyle
		}
		gauge := renderGauge(row, value)
		rows = append(rows, style.Render(fmt.Sprintf("%s%-16s %6.2f  ", cursor, attributeLabel(row), value))+gauge)
	}

	total := sc.Attributes.Total()
	totalRow := "  " + totalStyle.Render(fmt.Sprintf("Total: %.2f", total)) +
		"  " + gradeStyle.Render(scoring.Grade(total))
	if next, pts, ok := scoring.NextGrade(total); ok {
		totalRow += mutedStyle.Render(fmt.Sprintf("  %.2f to %s", pts, next))
	}
	rows = append(rows, "")
	rows = append(rows, totalRow)

	if len(sc.SelectedFlavors) > 0 {
		rows = append(rows, "  "+accentStyle.Render("Flavors: ")+strings.Join(sc.SelectedFlavors, ", "))
	}
	if sc.Notes != "" {
		rows = append(rows, "  "+mutedStyle.Render("Notes: "+sc.Notes))
	}

	rows = append(rows, "")
	rows = append(rows, mutedStyle.Render("  ←/→: adjust  ↑/↓: attribute  [/]: sample  f: flavors  o: notes  enter: submit"))

	return panelStyle.Width(w).Render(strings.Join(rows, "\n"))
}

// renderGauge draws a coarse bar for the attribute value. Defects grow
// unbounded, so they get a plain count instead.
func renderGauge(row string, v float64) string {
	if row == "defects" {
		if v == 0 {
			return mutedStyle.Render("none")
		}
		return errorStyle.Render(strings.Repeat("▮", min(int(v/2), 20)))
	}
	filled := int(v)
	if filled < 0 {
		filled = 0
	}
	if filled > 10 {
		filled = 10
	}
	return accentStyle.Render(strings.Repeat("▮", filled)) +
		mutedStyle.Render(strings.Repeat("▯", 10-filled))
}
