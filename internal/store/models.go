package store

import (
	"time"

	"github.com/sadopc/cupr/internal/scoring"
)

// Session status values. Setup and Ready to Score are both pre-scoring
// states; a session is Scored only once every sample carries a score.
const (
	StatusSetup  = "Setup"
	StatusReady  = "Ready to Score"
	StatusScored = "Scored"
)

type Session struct {
	ID            int64
	SessionID     string // stable opaque identifier
	ShareID       string // public lookup token, empty until first share
	UserEmail     string
	Name          string
	Date          string // YYYY-MM-DD
	Cupper        string
	Protocol      string
	WaterTemp     int
	CupsPerSample int
	Blind         bool
	Status        string
	SessionNotes  string
	AnonymousMode bool
	ScoredDate    string // RFC3339, set once when scoring first completes
	CreatedAt     time.Time
	UpdatedAt     time.Time

	Samples []Sample
	Scores  []Score
}

// DisplayCupper is the cupper name as it may be shown publicly.
func (s *Session) DisplayCupper() string {
	if s.AnonymousMode {
		return "Anonymous Taster"
	}
	return s.Cupper
}

// SampleScore returns the score recorded for the named sample, if any.
func (s *Session) SampleScore(sampleName string) *Score {
	for i := range s.Scores {
		if s.Scores[i].SampleName == sampleName {
			return &s.Scores[i]
		}
	}
	return nil
}

// Sample is the immutable descriptive metadata of one coffee on the table.
type Sample struct {
	Name        string
	Origin      string
	Variety     string
	Process     string
	Altitude    string
	HarvestYear string
}

// Score is one sample's sensory evaluation. Total is derived from the
// attributes and recomputed on every write; it is never accepted from the
// caller as-is.
type Score struct {
	SampleName string
	scoring.Attributes
	Total           float64
	Notes           string
	SelectedFlavors []string
}

// AnalyticsEvent is an append-only interaction log entry. Events are
// best-effort: a failed write never blocks the operation that produced it.
type AnalyticsEvent struct {
	ID        int64
	EventType string
	SessionID string
	UserEmail string
	Data      string
	Timestamp time.Time
}

// Event types logged by the share/export surfaces.
const (
	EventURLCopied       = "url_copied"
	EventPublicView      = "public_view"
	EventSessionExported = "session_exported"
)

type Setting struct {
	Key   string
	Value string
}
