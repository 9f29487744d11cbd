package tui

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/sadopc/cupr/internal/analytics"
	"github.com/sadopc/cupr/internal/scoring"
	"github.com/sadopc/cupr/internal/store"
)

func keyRune(r rune) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}}
}

func newTestStore(t *testing.T) *store.Store {
	t.Helper()
	s, err := store.NewMemory()
	if err != nil {
		t.Fatalf("new memory store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func newScoredTestSession(t *testing.T, s *store.Store) *store.Session {
	t.Helper()
	sess, err := s.CreateSession(&store.Session{
		Name:    "Morning Table",
		Date:    "2026-08-01",
		Samples: []store.Sample{{Name: "A", Origin: "Ethiopia"}},
	})
	if err != nil {
		t.Fatal(err)
	}
	a := scoring.NewAttributes()
	a.Fragrance = 8.0
	sess, err = s.SubmitScores(sess.SessionID, []store.Score{
		{SampleName: "A", Attributes: a},
	}, "")
	if err != nil {
		t.Fatal(err)
	}
	return sess
}

// ============================================================
// View state
// ============================================================

func TestViewNames(t *testing.T) {
	if len(viewNames) != 5 {
		t.Fatalf("expected 5 view names, got %d", len(viewNames))
	}
	expected := []string{"Sessions", "Scoring", "Trends", "Share", "Settings"}
	for i, name := range expected {
		if viewNames[i] != name {
			t.Fatalf("viewNames[%d] = %q, want %q", i, viewNames[i], name)
		}
	}
}

func TestViewStateConstants(t *testing.T) {
	if viewSessions != 0 || viewScoring != 1 || viewTrends != 2 || viewShare != 3 || viewSettings != 4 {
		t.Fatal("view state constants out of order")
	}
}

// ============================================================
// Helper functions
// ============================================================

func TestFormatScore(t *testing.T) {
	tests := []struct {
		v    float64
		want string
	}{
		{0, "0.00"},
		{86.5, "86.50"},
		{8.25, "8.25"},
	}
	for _, tt := range tests {
		if got := formatScore(tt.v); got != tt.want {
			t.Errorf("formatScore(%v) = %q, want %q", tt.v, got, tt.want)
		}
	}
}

func TestFormatTotal(t *testing.T) {
	got := formatTotal(86.0)
	if got != "86.00 (Excellent)" {
		t.Fatalf("formatTotal(86) = %q", got)
	}
}

func TestAttributeLabel(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"fragrance", "Fragrance/Aroma"},
		{"clean_cup", "Clean Cup"},
		{"flavor", "Flavor"},
		{"overall", "Overall"},
		{"defects", "Defects"},
		{"", ""},
	}
	for _, tt := range tests {
		if got := attributeLabel(tt.in); got != tt.want {
			t.Errorf("attributeLabel(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestTruncate(t *testing.T) {
	if got := truncate("short", 10); got != "short" {
		t.Fatalf("got %q", got)
	}
	got := truncate("a very long sample name", 10)
	if len([]rune(got)) > 10 {
		t.Fatalf("truncated to %d runes: %q", len([]rune(got)), got)
	}
	if !strings.HasSuffix(got, "…") {
		t.Fatalf("expected ellipsis: %q", got)
	}
}

func TestClamp(t *testing.T) {
	if clamp(5, 6, 10) != 6 {
		t.Fatal("clamp below")
	}
	if clamp(11, 6, 10) != 10 {
		t.Fatal("clamp above")
	}
	if clamp(8, 6, 10) != 8 {
		t.Fatal("clamp inside")
	}
}

func TestMinMax(t *testing.T) {
	if min(3, 5) != 3 || min(5, 3) != 3 {
		t.Fatal("min broken")
	}
	if max(3, 5) != 5 || max(5, 3) != 5 {
		t.Fatal("max broken")
	}
}

// ============================================================
// Scoring model
// ============================================================

func TestScoreRowsLayout(t *testing.T) {
	if len(scoreRows) != 11 {
		t.Fatalf("expected 11 rows, got %d", len(scoreRows))
	}
	if scoreRows[len(scoreRows)-1] != "defects" {
		t.Fatal("defects should be the last row")
	}
}

func TestWorkingScoresSeedsDefaults(t *testing.T) {
	sess := &store.Session{
		Samples: []store.Sample{{Name: "A"}, {Name: "B"}},
		Scores:  []store.Score{{SampleName: "B", Attributes: scoring.NewAttributes(), Total: 80}},
	}
	scores := workingScores(sess)
	if len(scores) != 2 {
		t.Fatalf("got %d scores", len(scores))
	}
	// A is fresh: form defaults.
	if scores[0].SampleName != "A" || scores[0].Fragrance != 6.0 || scores[0].Uniformity != 10.0 {
		t.Fatalf("fresh score: %+v", scores[0])
	}
	// B keeps its existing values.
	if scores[1].SampleName != "B" || scores[1].Total != 80 {
		t.Fatalf("existing score: %+v", scores[1])
	}
}

func TestAdjustPrimaryQuarterSteps(t *testing.T) {
	s := newTestStore(t)
	m := newScoringModel(s)
	m.session = &store.Session{Samples: []store.Sample{{Name: "A"}}}
	m.scores = workingScores(m.session)

	m.attrCursor = 0 // fragrance
	m.adjust(1)
	if m.scores[0].Fragrance != 6.25 {
		t.Fatalf("fragrance = %v, want 6.25", m.scores[0].Fragrance)
	}
	m.adjust(-1)
	m.adjust(-1) // clamps at the floor
	if m.scores[0].Fragrance != 6.0 {
		t.Fatalf("fragrance = %v, want 6.0", m.scores[0].Fragrance)
	}
}

func TestAdjustCupAttributeSteps(t *testing.T) {
	s := newTestStore(t)
	m := newScoringModel(s)
	m.session = &store.Session{Samples: []store.Sample{{Name: "A"}}}
	m.scores = workingScores(m.session)

	for i, row := range scoreRows {
		if row == "uniformity" {
			m.attrCursor = i
		}
	}
	m.adjust(1) // clamps at 10
	if m.scores[0].Uniformity != 10 {
		t.Fatalf("uniformity = %v", m.scores[0].Uniformity)
	}
	m.adjust(-1)
	if m.scores[0].Uniformity != 8 {
		t.Fatalf("uniformity = %v, want 8", m.scores[0].Uniformity)
	}
}

func TestAdjustDefectsNonNegative(t *testing.T) {
	s := newTestStore(t)
	m := newScoringModel(s)
	m.session = &store.Session{Samples: []store.Sample{{Name: "A"}}}
	m.scores = workingScores(m.session)

	m.attrCursor = len(scoreRows) - 1 // defects
	m.adjust(-1)
	if m.scores[0].Defects != 0 {
		t.Fatalf("defects = %v, want 0", m.scores[0].Defects)
	}
	m.adjust(1)
	m.adjust(1)
	if m.scores[0].Defects != 4 {
		t.Fatalf("defects = %v, want 4", m.scores[0].Defects)
	}
}

func TestSetAttrCoversPrimaries(t *testing.T) {
	a := scoring.NewAttributes()
	for _, cat := range []string{"fragrance", "flavor", "aftertaste", "acidity", "body", "balance", "overall"} {
		setAttr(&a, cat, 9.0)
		if a.Value(cat) != 9.0 {
			t.Fatalf("setAttr(%q) did not stick", cat)
		}
	}
}

// ============================================================
// Trends helpers
// ============================================================

func TestShortGrade(t *testing.T) {
	tests := []struct {
		grade, want string
	}{
		{scoring.GradeOutstanding, "90+"},
		{scoring.GradeExcellent, "85+"},
		{scoring.GradeVeryGood, "80+"},
		{scoring.GradeGood, "75+"},
		{scoring.GradeFair, "<75"},
	}
	for _, tt := range tests {
		if got := shortGrade(tt.grade); got != tt.want {
			t.Errorf("shortGrade(%q) = %q, want %q", tt.grade, got, tt.want)
		}
	}
}

func TestKnownProtocol(t *testing.T) {
	if !knownProtocol("SCA Standard") {
		t.Fatal("SCA Standard should be known")
	}
	if knownProtocol("Secret Lab Protocol") {
		t.Fatal("unexpected protocol should be unknown")
	}
}

// ============================================================
// App model
// ============================================================

func TestNewApp(t *testing.T) {
	s := newTestStore(t)
	app := NewApp(s)

	if app.activeView != viewSessions {
		t.Fatal("default view should be sessions")
	}
	if app.showHelp {
		t.Fatal("help should be hidden by default")
	}
	if app.exportPicking {
		t.Fatal("export picker should be hidden by default")
	}
}

func TestAppIsFormActiveDefault(t *testing.T) {
	s := newTestStore(t)
	app := NewApp(s)

	if app.isFormActive() {
		t.Fatal("no forms should be active initially")
	}
}

func TestAppViewStates(t *testing.T) {
	s := newTestStore(t)
	app := NewApp(s)
	app.width = 120
	app.height = 40

	views := []viewState{viewSessions, viewScoring, viewTrends, viewShare, viewSettings}
	for _, v := range views {
		app.activeView = v
		output := app.View()
		if output == "" {
			t.Fatalf("view %d rendered empty", v)
		}
	}
}

func TestAppRenderHeaderContainsAllTabs(t *testing.T) {
	s := newTestStore(t)
	app := NewApp(s)
	app.width = 120
	app.height = 40

	header := app.renderHeader()
	for _, name := range viewNames {
		if !strings.Contains(header, name) {
			t.Fatalf("header missing tab %q", name)
		}
	}
}

func TestAppLoadingState(t *testing.T) {
	s := newTestStore(t)
	app := NewApp(s)
	output := app.View()
	if output != "Loading..." {
		t.Fatalf("expected 'Loading...', got %q", output)
	}
}

func TestAppStatusMessage(t *testing.T) {
	s := newTestStore(t)
	app := NewApp(s)
	app.width = 120
	app.height = 40
	app.status = "test status"

	footer := app.renderFooter()
	if !strings.Contains(footer, "test status") {
		t.Fatal("footer should contain status message")
	}
}

// ============================================================
// Sessions model
// ============================================================

func TestSessionsModelSelected(t *testing.T) {
	s := newTestStore(t)
	m := newSessionsModel(s)
	if m.selected() != nil {
		t.Fatal("empty list should select nothing")
	}

	sess := newScoredTestSession(t, s)
	sessions, _ := s.ListSessions()
	m.sessions = sessions
	got := m.selected()
	if got == nil || got.SessionID != sess.SessionID {
		t.Fatal("selected should return the cursor row")
	}
}

func TestSessionsViewRendersList(t *testing.T) {
	s := newTestStore(t)
	newScoredTestSession(t, s)
	sessions, _ := s.ListSessions()

	m := newSessionsModel(s)
	m.setSize(120, 40)
	m.sessions = sessions

	out := m.view()
	if !strings.Contains(out, "Morning Table") {
		t.Fatal("session list should show the session name")
	}
	if !strings.Contains(out, "Scored") {
		t.Fatal("session list should show status")
	}
}

// ============================================================
// Share model
// ============================================================

func TestShareDetailMessage(t *testing.T) {
	s := newTestStore(t)
	sess := newScoredTestSession(t, s)

	m := newShareModel(s)
	m.setSize(120, 40)

	cmd := m.openDetail(sess.SessionID)
	msg := cmd()
	detail, ok := msg.(shareDetailMsg)
	if !ok {
		t.Fatalf("expected shareDetailMsg, got %T", msg)
	}
	if !strings.Contains(detail.shareURL, "?share=") {
		t.Fatalf("share URL malformed: %q", detail.shareURL)
	}
	if detail.copies != 0 || detail.views != 0 {
		t.Fatal("fresh session should have no engagement")
	}

	// The token resolves back to the session.
	got, err := s.GetSessionByShareID(detail.session.ShareID)
	if err != nil || got.SessionID != sess.SessionID {
		t.Fatalf("share token lookup: %v", err)
	}
}

func TestSharePublicViewRespectsAnonymous(t *testing.T) {
	s := newTestStore(t)
	sess := newScoredTestSession(t, s)
	sess.Cupper = "Ayşe"
	sess.AnonymousMode = true
	if err := s.SaveSession(sess); err != nil {
		t.Fatal(err)
	}
	sess, _ = s.GetSession(sess.SessionID)

	m := newShareModel(s)
	m.setSize(120, 40)
	m.sharing = true
	m.publicViewing = true
	m.session = sess

	out := m.view()
	if strings.Contains(out, "Ayşe") {
		t.Fatal("public view must not leak the cupper name in anonymous mode")
	}
	if !strings.Contains(out, "Anonymous Taster") {
		t.Fatal("public view should show the anonymous label")
	}
}

func TestSharePublicViewShowsInsights(t *testing.T) {
	s := newTestStore(t)
	sess := newScoredTestSession(t, s)

	m := newShareModel(s)
	m.setSize(120, 40)
	m.sharing = true
	m.publicViewing = true
	m.session = sess

	out := m.view()
	if !strings.Contains(out, "Insights") {
		t.Fatal("public view should carry the insights block")
	}
	// The 10-point secondaries dominate; first in canonical order wins.
	if !strings.Contains(out, "Uniformity") {
		t.Fatal("insights should name the strongest attribute")
	}
	if !strings.Contains(out, "74.00") {
		t.Fatal("insights should show the session average")
	}
}

func TestShareCopyCountsOnlyAfterClipboard(t *testing.T) {
	s := newTestStore(t)
	sess := newScoredTestSession(t, s)

	m := newShareModel(s)
	m.sharing = true
	m.session = sess
	m.shareURL = "https://cupr.example/?share=abc"

	m, cmd := m.update(keyRune('c'))
	if cmd == nil {
		t.Fatal("copy should return a command")
	}
	if m.copies != 0 {
		t.Fatalf("copies counted before the clipboard write: %d", m.copies)
	}

	m, _ = m.update(shareCopiedMsg{})
	if m.copies != 1 {
		t.Fatalf("copies = %d after confirmed copy, want 1", m.copies)
	}
}

// ============================================================
// Trends: flavor wheel mode
// ============================================================

func TestTrendsTabCyclesToWheel(t *testing.T) {
	s := newTestStore(t)
	m := newTrendsModel(s)
	m.setSize(120, 40)

	m, _ = m.update(trendsDataMsg{
		report:  analytics.TrendsReport{FlavorCategoryCounts: map[string]int{"Fruity": 2}},
		hasData: true,
	})

	tab := tea.KeyMsg{Type: tea.KeyTab}
	m, _ = m.update(tab)
	m, _ = m.update(tab)
	if m.mode != trendsWheel {
		t.Fatalf("mode = %d after two tabs, want wheel", m.mode)
	}

	out := m.view()
	if !strings.Contains(out, "Fruity") || !strings.Contains(out, "2 picks") {
		t.Fatal("wheel view should list categories with their pick counts")
	}

	m, _ = m.update(tab)
	if m.mode != trendsGrades {
		t.Fatalf("mode = %d after wrap, want grades", m.mode)
	}
}

// ============================================================
// Scorecard: next grade hint
// ============================================================

func TestScorecardShowsNextGradeHint(t *testing.T) {
	s := newTestStore(t)
	sess := newScoredTestSession(t, s)

	m := newScoringModel(s)
	m.setSize(120, 40)
	m, _ = m.update(scoringDataMsg{session: sess})

	// Total 74.00 sits one point under Good.
	out := m.view()
	if !strings.Contains(out, "1.00 to Good") {
		t.Fatal("scorecard should hint the distance to the next grade")
	}
}

func TestScorecardNoHintAtTopGrade(t *testing.T) {
	s := newTestStore(t)
	sess := newScoredTestSession(t, s)

	m := newScoringModel(s)
	m.setSize(120, 40)
	m, _ = m.update(scoringDataMsg{session: sess})

	for _, cat := range scoring.Categories {
		setAttr(&m.scores[0].Attributes, cat, 10)
	}
	m.scores[0].Uniformity = 10
	m.scores[0].CleanCup = 10
	m.scores[0].Sweetness = 10

	out := m.view()
	if strings.Contains(out, " to Outstanding") {
		t.Fatal("no hint once the total is already in the top bracket")
	}
}

// ============================================================
// Sessions: delete errors surface
// ============================================================

func TestDeleteSessionErrorSurfaced(t *testing.T) {
	s := newTestStore(t)
	m := newSessionsModel(s)
	m.sessions = []store.Session{{SessionID: "missing", Name: "Ghost"}}

	m, cmd := m.update(keyRune('d'))
	if cmd == nil {
		t.Fatal("delete should return a command")
	}
	status, ok := cmd().(statusMsg)
	if !ok {
		t.Fatal("expected a status message")
	}
	if !status.isError || !strings.Contains(status.text, "Delete session") {
		t.Fatalf("unexpected status: %+v", status)
	}
}

// ============================================================
// Key bindings
// ============================================================

func TestKeyMapShortHelp(t *testing.T) {
	bindings := keys.ShortHelp()
	if len(bindings) == 0 {
		t.Fatal("short help should have bindings")
	}
}

func TestKeyMapFullHelp(t *testing.T) {
	groups := keys.FullHelp()
	if len(groups) == 0 {
		t.Fatal("full help should have groups")
	}
	for i, g := range groups {
		if len(g) == 0 {
			t.Fatalf("full help group %d is empty", i)
		}
	}
}

// ============================================================
// Styles (smoke test — just verify they don't panic)
// ============================================================

func TestStylesRender(t *testing.T) {
	styles := []struct {
		name string
		fn   func() string
	}{
		{"activeTab", func() string { return activeTabStyle.Render("test") }},
		{"inactiveTab", func() string { return inactiveTabStyle.Render("test") }},
		{"panel", func() string { return panelStyle.Render("test") }},
		{"activePanel", func() string { return activePanelStyle.Render("test") }},
		{"total", func() string { return totalStyle.Render("test") }},
		{"grade", func() string { return gradeStyle.Render("test") }},
		{"title", func() string { return titleStyle.Render("test") }},
		{"subtitle", func() string { return subtitleStyle.Render("test") }},
		{"accent", func() string { return accentStyle.Render("test") }},
		{"success", func() string { return successStyle.Render("test") }},
		{"warning", func() string { return warningStyle.Render("test") }},
		{"error", func() string { return errorStyle.Render("test") }},
		{"muted", func() string { return mutedStyle.Render("test") }},
		{"highlight", func() string { return highlightStyle.Render("test") }},
		{"header", func() string { return headerStyle.Render("test") }},
		{"footer", func() string { return footerStyle.Render("test") }},
		{"selectedItem", func() string { return selectedItemStyle.Render("test") }},
		{"normalItem", func() string { return normalItemStyle.Render("test") }},
	}

	for _, s := range styles {
		result := s.fn()
		if result == "" {
			t.Fatalf("style %q rendered empty", s.name)
		}
	}
}

func TestStatusStyle(t *testing.T) {
	if statusStyle(store.StatusScored).GetForeground() != successStyle.GetForeground() {
		t.Fatal("scored should use the success color")
	}
	if statusStyle(store.StatusReady).GetForeground() != warningStyle.GetForeground() {
		t.Fatal("ready should use the warning color")
	}
	if statusStyle(store.StatusSetup).GetForeground() != mutedStyle.GetForeground() {
		t.Fatal("setup should use the muted color")
	}
}
