package tui

import (
	"fmt"
	"strings"

	"github.com/NimbleMarkets/ntcharts/barchart"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/sadopc/cupr/internal/analytics"
	"github.com/sadopc/cupr/internal/scoring"
	"github.com/sadopc/cupr/internal/store"
)

type trendsMode int

const (
	trendsGrades trendsMode = iota
	trendsMonthly
	trendsWheel
	trendsModeCount
)

type trendsModel struct {
	store  *store.Store
	width  int
	height int

	mode    trendsMode
	report  analytics.TrendsReport
	hasData bool

	chart barchart.Model
}

func newTrendsModel(s *store.Store) trendsModel {
	return trendsModel{
		store: s,
		chart: barchart.New(60, 12),
	}
}

func (m *trendsModel) setSize(w, h int) {
	m.width = w
	m.height = h
}

type trendsDataMsg struct {
	report  analytics.TrendsReport
	hasData bool
}

func (m trendsModel) refresh() tea.Cmd {
	return func() tea.Msg {
		sessions, err := m.store.ListSessions()
		if err != nil {
			return statusMsg{text: fmt.Sprintf("Load trends: %v", err), isError: true}
		}
		report, ok := analytics.CommunityTrends(sessions)
		return trendsDataMsg{report: report, hasData: ok}
	}
}

func (m trendsModel) update(msg tea.Msg) (trendsModel, tea.Cmd) {
	switch msg := msg.(type) {
	case trendsDataMsg:
		m.report = msg.report
		m.hasData = msg.hasData
		m.buildChart()
		return m, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, keys.Tab):
			m.mode = (m.mode + 1) % trendsModeCount
			m.buildChart()
			return m, nil
		}
	}
	return m, nil
}

func (m *trendsModel) buildChart() {
	chartWidth := m.width - 8
	if chartWidth < 20 {
		chartWidth = 20
	}
	chartHeight := 10
	if m.height > 30 {
		chartHeight = 14
	}

	m.chart = barchart.New(chartWidth, chartHeight)

	var bars []barchart.BarData
	switch m.mode {
	case trendsWheel:
		for _, cat := range scoring.FlavorWheel {
			bars = append(bars, barchart.BarData{
				Label: truncate(cat.Name, 7),
				Values: []barchart.BarValue{{
					Name:  cat.Name,
					Value: float64(m.report.FlavorCategoryCounts[cat.Name]),
					Style: lipgloss.NewStyle().Foreground(lipgloss.Color(cat.Color)),
				}},
			})
		}
	case trendsMonthly:
		for _, mt := range m.report.TemporalTrends {
			bars = append(bars, barchart.BarData{
				Label: mt.Month,
				Values: []barchart.BarValue{{
					Name:  mt.Month,
					Value: mt.Average,
					Style: lipgloss.NewStyle().Foreground(colorPrimary),
				}},
			})
		}
	default:
		for _, grade := range scoring.Grades {
			bars = append(bars, barchart.BarData{
				Label: shortGrade(grade),
				Values: []barchart.BarValue{{
					Name:  grade,
					Value: float64(m.report.GradeCounts[grade]),
					Style: lipgloss.NewStyle().Foreground(gradeColor(grade)),
				}},
			})
		}
	}

	if len(bars) == 0 {
		bars = []barchart.BarData{{
			Label:  "",
			Values: []barchart.BarValue{{Value: 0, Style: lipgloss.NewStyle().Foreground(colorSubtle)}},
		}}
	}

	m.chart.PushAll(bars)
	m.chart.Draw()
}

func shortGrade(grade string) string {
	switch grade {
	case scoring.GradeOutstanding:
		return "90+"
	case scoring.GradeExcellent:
		return "85+"
	case scoring.GradeVeryGood:
		return "80+"
	case scoring.GradeGood:
		return "75+"
	}
	return "<75"
}

func gradeColor(grade string) lipgloss.Color {
	switch grade {
	case scoring.GradeOutstanding:
		return colorAccent
	case scoring.GradeExcellent:
		return colorSuccess
	case scoring.GradeVeryGood:
		return colorPrimary
	case scoring.GradeGood:
		return colorWarning
	}
	return colorMuted
}

func (m trendsModel) view() string {
	w := m.width - 4

	if !m.hasData {
		content := lipgloss.JoinVertical(lipgloss.Left,
			titleStyle.Render("Community Trends"),
			"",
			mutedStyle.Render("No sessions recorded yet."),
		)
		return panelStyle.Width(w).Render(content)
	}

	gradesTab := inactiveTabStyle.Render("Grades")
	monthlyTab := inactiveTabStyle.Render("Monthly")
	wheelTab := inactiveTabStyle.Render("Wheel")
	switch m.mode {
	case trendsMonthly:
		monthlyTab = activeTabStyle.Render("Monthly")
	case trendsWheel:
		wheelTab = activeTabStyle.Render("Wheel")
	default:
		gradesTab = activeTabStyle.Render("Grades")
	}
	header := lipgloss.JoinHorizontal(lipgloss.Bottom,
		titleStyle.Render("Community Trends"), "  ", gradesTab, monthlyTab, wheelTab,
	)

	chartView := m.chart.View()
	stats := m.renderStats()
	tables := m.renderTables(w)
	if m.mode == trendsWheel {
		tables = m.renderWheel()
	}
	nav := mutedStyle.Render("  tab: switch chart")

	return panelStyle.Width(w).Render(
		lipgloss.JoinVertical(lipgloss.Left,
			header, "", chartView, "", stats, "", tables, "", nav,
		),
	)
}

func (m trendsModel) renderStats() string {
	r := m.report
	counts := fmt.Sprintf("  %s sessions  %s samples scored",
		highlightStyle.Render(fmt.Sprintf("%d", r.TotalSessions)),
		highlightStyle.Render(fmt.Sprintf("%d", r.TotalSamples)),
	)
	if len(r.ScoreDistribution) == 0 {
		return counts + mutedStyle.Render("  (no scored sessions yet)")
	}
	dist := fmt.Sprintf("  mean %s  median %s  σ %s  min %s  max %s",
		totalStyle.Render(formatScore(r.Mean)),
		highlightStyle.Render(formatScore(r.Median)),
		mutedStyle.Render(formatScore(r.StdDev)),
		mutedStyle.Render(formatScore(r.Min)),
		mutedStyle.Render(formatScore(r.Max)),
	)
	return counts + "\n" + dist
}

func (m trendsModel) renderTables(w int) string {
	var cols []string

	if len(m.report.AverageScores) > 0 {
		var rows []string
		rows = append(rows, subtitleStyle.Render("Attribute Averages"))
		for _, cat := range scoring.Categories {
			avg, ok := m.report.AverageScores[cat]
			if !ok {
				continue
			}
			rows = append(rows, fmt.Sprintf("%-16s %s", attributeLabel(cat), formatScore(avg)))
		}
		cols = append(cols, strings.Join(rows, "\n"))
	}

	if len(m.report.PopularFlavors) > 0 {
		var rows []string
		rows = append(rows, subtitleStyle.Render("Popular Flavors"))
		for _, fc := range m.report.PopularFlavors {
			rows = append(rows, fmt.Sprintf("%-16s %d", truncate(fc.Name, 16), fc.Count))
		}
		cols = append(cols, strings.Join(rows, "\n"))
	}

	if len(m.report.TopOrigins) > 0 {
		var rows []string
		rows = append(rows, subtitleStyle.Render("Top Origins"))
		for _, oc := range m.report.TopOrigins {
			rows = append(rows, fmt.Sprintf("%-16s %d", truncate(oc.Origin, 16), oc.Count))
		}
		cols = append(cols, strings.Join(rows, "\n"))
	}

	if len(m.report.ProtocolUsage) > 0 {
		var rows []string
		rows = append(rows, subtitleStyle.Render("Protocols"))
		for _, p := range protocols {
			if n, ok := m.report.ProtocolUsage[p]; ok {
				rows = append(rows, fmt.Sprintf("%-16s %d", p, n))
			}
		}
		for p, n := range m.report.ProtocolUsage {
			if !knownProtocol(p) {
				rows = append(rows, fmt.Sprintf("%-16s %d", truncate(p, 16), n))
			}
		}
		cols = append(cols, strings.Join(rows, "\n"))
	}

	if len(cols) == 0 {
		return ""
	}
	gap := lipgloss.NewStyle().Width(4).Render("")
	var joined []string
	for i, c := range cols {
		if i > 0 {
			joined = append(joined, gap)
		}
		joined = append(joined, c)
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, joined...)
}

// renderWheel lists every wheel category with its community pick count and
// the descriptors underneath it, for browsing.
func (m trendsModel) renderWheel() string {
	var rows []string
	for _, cat := range scoring.FlavorWheel {
		name := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color(cat.Color)).Render(cat.Name)
		rows = append(rows, fmt.Sprintf("%s  %d picks", name, m.report.FlavorCategoryCounts[cat.Name]))
		for _, sub := range cat.Subcategories {
			rows = append(rows, mutedStyle.Render(fmt.Sprintf("  %-14s %s", sub.Name, strings.Join(sub.Descriptors, ", "))))
		}
	}
	return strings.Join(rows, "\n")
}

func knownProtocol(p string) bool {
	for _, known := range protocols {
		if p == known {
			return true
		}
	}
	return false
}
