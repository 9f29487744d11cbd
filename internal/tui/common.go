package tui

import (
	"fmt"

	"github.com/sadopc/cupr/internal/scoring"
)

// viewState represents the currently active view.
type viewState int

const (
	viewSessions viewState = iota
	viewScoring
	viewTrends
	viewShare
	viewSettings
)

var viewNames = []string{"Sessions", "Scoring", "Trends", "Share", "Settings"}

// --- Messages ---

type statusMsg struct {
	text    string
	isError bool
}

// scoreSessionMsg asks the app to open the scoring view for a session.
type scoreSessionMsg struct {
	sessionID string
}

type sessionSavedMsg struct {
	sessionID string
}

type scoresSubmittedMsg struct {
	sessionID string
	status    string
}

type exportDoneMsg struct {
	path string
}

type formDoneMsg struct{}
type formCancelMsg struct{}

// --- Helpers ---

func formatScore(v float64) string {
	return fmt.Sprintf("%.2f", v)
}

func formatTotal(total float64) string {
	return fmt.Sprintf("%.2f (%s)", total, scoring.Grade(total))
}

// attributeLabel renders the snake_case category names for display.
func attributeLabel(category string) string {
	switch category {
	case "clean_cup":
		return "Clean Cup"
	case "fragrance":
		return "Fragrance/Aroma"
	}
	if category == "" {
		return ""
	}
	return string(category[0]-'a'+'A') + category[1:]
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}

func max(a, b int) int {
	if a > b {
		return a
	}
	return b
}
