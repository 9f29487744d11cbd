package store

import (
	"fmt"
	"time"
)

// AppendEvent records one interaction in the append-only analytics log.
// Callers treat failures as best-effort; this just reports them.
func (s *Store) AppendEvent(eventType, sessionID, userEmail, data string) error {
	if eventType == "" {
		return fmt.Errorf("append event: missing event type")
	}
	now := time.Now().UTC().Format(time.RFC3339)
	_, err := s.db.Exec(
		`INSERT INTO analytics_events (event_type, session_id, user_email, data, timestamp)
		 VALUES (?, ?, ?, ?, ?)`,
		eventType, sessionID, userEmail, data, now,
	)
	if err != nil {
		return fmt.Errorf("append event: %w", err)
	}
	return nil
}

// ListEvents returns the events logged for a session, oldest first.
func (s *Store) ListEvents(sessionID string) ([]AnalyticsEvent, error) {
	rows, err := s.db.Query(
		`SELECT id, event_type, session_id, user_email, data, timestamp
		 FROM analytics_events WHERE session_id = ? ORDER BY id`, sessionID)
	if err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	defer rows.Close()

	var events []AnalyticsEvent
	for rows.Next() {
		var ev AnalyticsEvent
		var ts string
		if err := rows.Scan(&ev.ID, &ev.EventType, &ev.SessionID, &ev.UserEmail, &ev.Data, &ts); err != nil {
			return nil, err
		}
		ev.Timestamp, _ = time.Parse(time.RFC3339, ts)
		events = append(events, ev)
	}
	return events, rows.Err()
}

// CountEvents returns how many events of one type a session has accumulated.
func (s *Store) CountEvents(sessionID, eventType string) (int, error) {
	var n int
	err := s.db.QueryRow(
		`SELECT COUNT(*) FROM analytics_events WHERE session_id = ? AND event_type = ?`,
		sessionID, eventType,
	).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count events: %w", err)
	}
	return n, nil
}
