package tui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/sadopc/cupr/internal/store"
)

type settingsModel struct {
	store  *store.Store
	width  int
	height int

	settings   []store.Setting
	formActive bool
	form       *huh.Form

	// Form values as pointers (survive value copies)
	defaultCupper   *string
	defaultProtocol *string
	waterTemp       *string
	cupsPerSample   *string
	shareBaseURL    *string
	anonymousMode   *string
}

func newSettingsModel(s *store.Store) settingsModel {
	dc, dp, wt, cps, sbu, am := "", "", "", "", "", ""
	return settingsModel{
		store:           s,
		defaultCupper:   &dc,
		defaultProtocol: &dp,
		waterTemp:       &wt,
		cupsPerSample:   &cps,
		shareBaseURL:    &sbu,
		anonymousMode:   &am,
	}
}

func (s *settingsModel) setSize(w, h int) {
	s.width = w
	s.height = h
}

type settingsDataMsg struct {
	settings []store.Setting
}

func (s settingsModel) refresh() tea.Cmd {
	return func() tea.Msg {
		settings, _ := s.store.GetAllSettings()
		return settingsDataMsg{settings: settings}
	}
}

func (s settingsModel) update(msg tea.Msg) (settingsModel, tea.Cmd) {
	if s.formActive && s.form != nil {
		return s.updateForm(msg)
	}

	switch msg := msg.(type) {
	case settingsDataMsg:
		s.settings = msg.settings
		return s, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, keys.Enter), key.Matches(msg, keys.Edit):
			return s.showForm()
		}
	}
	return s, nil
}

func (s settingsModel) showForm() (settingsModel, tea.Cmd) {
	*s.defaultCupper = s.getVal("default_cupper", "")
	*s.defaultProtocol = s.getVal("default_protocol", protocols[0])
	*s.waterTemp = s.getVal("water_temp", "93")
	*s.cupsPerSample = s.getVal("cups_per_sample", "5")
	*s.shareBaseURL = s.getVal("share_base_url", "https://cupr.coffee")
	*s.anonymousMode = s.getVal("anonymous_mode", "off")

	protoOptions := make([]huh.Option[string], len(protocols))
	for i, p := range protocols {
		protoOptions[i] = huh.NewOption(p, p)
	}

	s.form = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().Title("Default cupper").Value(s.defaultCupper),
			huh.NewSelect[string]().Title("Default protocol").Options(protoOptions...).Value(s.defaultProtocol),
			huh.NewInput().Title("Water temperature (°C)").Value(s.waterTemp),
			huh.NewInput().Title("Cups per sample").Value(s.cupsPerSample),
		).Title("Cupping"),
		huh.NewGroup(
			huh.NewInput().Title("Share base URL").Value(s.shareBaseURL),
			huh.NewSelect[string]().Title("Anonymous mode").
				Options(
					huh.NewOption("Off", "off"),
					huh.NewOption("On", "on"),
				).Value(s.anonymousMode),
		).Title("Sharing"),
	).WithShowHelp(true).WithShowErrors(true)

	s.formActive = true
	return s, s.form.Init()
}

func (s settingsModel) updateForm(msg tea.Msg) (settingsModel, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		if msg.String() == "esc" {
			s.formActive = false
			s.form = nil
			return s, nil
		}
	}

	form, cmd := s.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		s.form = f
	}

	if s.form.State == huh.StateCompleted {
		s.formActive = false
		s.saveSettings()
		return s, s.refresh()
	}

	return s, cmd
}

func (s settingsModel) saveSettings() {
	s.store.SetSetting("default_cupper", *s.defaultCupper)
	s.store.SetSetting("default_protocol", *s.defaultProtocol)
	s.store.SetSetting("water_temp", *s.waterTemp)
	s.store.SetSetting("cups_per_sample", *s.cupsPerSample)
	s.store.SetSetting("share_base_url", *s.shareBaseURL)
	s.store.SetSetting("anonymous_mode", *s.anonymousMode)
}

func (s settingsModel) getVal(k, fallback string) string {
	v, err := s.store.GetSetting(k)
	if err != nil || v == "" {
		return fallback
	}
	return v
}

func (s settingsModel) view() string {
	w := s.width - 4

	if s.formActive && s.form != nil {
		title := titleStyle.Render("Settings")
		formView := s.form.View()
		return panelStyle.Width(w).Render(
			lipgloss.JoinVertical(lipgloss.Left, title, "", formView),
		)
	}

	title := titleStyle.Render("Settings")
	hint := mutedStyle.Render("Press enter to edit settings")

	var rows []string
	rows = append(rows, title)
	rows = append(rows, "")

	for _, setting := range s.settings {
		label := lipgloss.NewStyle().Width(24).Render(setting.Key)
		value := highlightStyle.Render(setting.Value)
		rows = append(rows, fmt.Sprintf("  %s %s", label, value))
	}

	rows = append(rows, "")
	rows = append(rows, hint)

	return panelStyle.Width(w).Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
}
