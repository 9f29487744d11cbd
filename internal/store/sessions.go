package store

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/sadopc/cupr/internal/scoring"
)

// CreateSession persists a new session record. A missing SessionID is
// generated; status is derived from the sample/score contents.
func (s *Store) CreateSession(sess *Session) (*Session, error) {
	if sess.SessionID == "" {
		sess.SessionID = uuid.NewString()
	}
	if sess.Date == "" {
		sess.Date = time.Now().UTC().Format("2006-01-02")
	}
	sess.Status = resolveStatus(sess.Samples, sess.Scores)
	if err := s.SaveSession(sess); err != nil {
		return nil, err
	}
	return s.GetSession(sess.SessionID)
}

// SaveSession writes the whole session record atomically: the session row is
// upserted and the samples/scores lists are replaced wholesale inside one
// transaction, so a stored record is never partially patched. Score totals
// are recomputed from the attributes on every save. An already assigned
// share token is kept even when the caller's copy lacks it.
func (s *Store) SaveSession(sess *Session) error {
	if sess.SessionID == "" {
		return fmt.Errorf("save session: missing session_id")
	}
	now := time.Now().UTC().Format(time.RFC3339)

	for i := range sess.Scores {
		sess.Scores[i].Total = sess.Scores[i].Attributes.Total()
	}

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin save session: %w", err)
	}
	defer tx.Rollback()

	shareID := sql.NullString{String: sess.ShareID, Valid: sess.ShareID != ""}

	_, err = tx.Exec(`
		INSERT INTO cupping_sessions
			(session_id, share_id, user_email, name, date, cupper, protocol,
			 water_temp, cups_per_sample, blind, status, session_notes,
			 anonymous_mode, scored_date, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(session_id) DO UPDATE SET
			share_id = COALESCE(cupping_sessions.share_id, excluded.share_id),
			user_email = excluded.user_email,
			name = excluded.name,
			date = excluded.date,
			cupper = excluded.cupper,
			protocol = excluded.protocol,
			water_temp = excluded.water_temp,
			cups_per_sample = excluded.cups_per_sample,
			blind = excluded.blind,
			status = excluded.status,
			session_notes = excluded.session_notes,
			anonymous_mode = excluded.anonymous_mode,
			scored_date = excluded.scored_date,
			updated_at = excluded.updated_at`,
		sess.SessionID, shareID, sess.UserEmail, sess.Name, sess.Date,
		sess.Cupper, sess.Protocol, sess.WaterTemp, sess.CupsPerSample,
		boolToInt(sess.Blind), sess.Status, sess.SessionNotes,
		boolToInt(sess.AnonymousMode), sess.ScoredDate, now, now,
	)
	if err != nil {
		return fmt.Errorf("upsert session: %w", err)
	}

	if _, err := tx.Exec(`DELETE FROM samples WHERE session_id = ?`, sess.SessionID); err != nil {
		return fmt.Errorf("clear samples: %w", err)
	}
	for i, sm := range sess.Samples {
		_, err := tx.Exec(`
			INSERT INTO samples (session_id, position, name, origin, variety, process, altitude, harvest_year)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			sess.SessionID, i, sm.Name, sm.Origin, sm.Variety, sm.Process, sm.Altitude, sm.HarvestYear,
		)
		if err != nil {
			return fmt.Errorf("insert sample %q: %w", sm.Name, err)
		}
	}

	if _, err := tx.Exec(`DELETE FROM scores WHERE session_id = ?`, sess.SessionID); err != nil {
		return fmt.Errorf("clear scores: %w", err)
	}
	for i, sc := range sess.Scores {
		flavors, err := json.Marshal(sc.SelectedFlavors)
		if err != nil {
			return fmt.Errorf("marshal flavors: %w", err)
		}
		if sc.SelectedFlavors == nil {
			flavors = []byte("[]")
		}
		_, err = tx.Exec(`
			INSERT INTO scores
				(session_id, position, sample_name, fragrance, flavor, aftertaste,
				 acidity, body, balance, uniformity, clean_cup, sweetness, overall,
				 defects, total, notes, selected_flavors)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			sess.SessionID, i, sc.SampleName,
			sc.Fragrance, sc.Flavor, sc.Aftertaste, sc.Acidity, sc.Body,
			sc.Balance, sc.Uniformity, sc.CleanCup, sc.Sweetness, sc.Overall,
			sc.Defects, sc.Total, sc.Notes, string(flavors),
		)
		if err != nil {
			return fmt.Errorf("insert score %q: %w", sc.SampleName, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit save session: %w", err)
	}
	return nil
}

// GetSession loads a fully hydrated session by its stable identifier.
func (s *Store) GetSession(sessionID string) (*Session, error) {
	return s.getSessionWhere(`session_id = ?`, sessionID)
}

// GetSessionByShareID loads a session by its public share token.
func (s *Store) GetSessionByShareID(shareID string) (*Session, error) {
	return s.getSessionWhere(`share_id = ?`, shareID)
}

func (s *Store) getSessionWhere(where string, arg any) (*Session, error) {
	row := s.db.QueryRow(`
		SELECT id, session_id, share_id, user_email, name, date, cupper,
		       protocol, water_temp, cups_per_sample, blind, status,
		       session_notes, anonymous_mode, scored_date, created_at, updated_at
		FROM cupping_sessions WHERE `+where, arg)

	sess, err := scanSession(row)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get session: %w", err)
	}
	if err := s.hydrate(sess); err != nil {
		return nil, err
	}
	return sess, nil
}

// ListSessions returns every stored session, all owners included, newest
// first. Used by the Trends engine for its full-corpus scan.
func (s *Store) ListSessions() ([]Session, error) {
	rows, err := s.db.Query(`
		SELECT id, session_id, share_id, user_email, name, date, cupper,
		       protocol, water_temp, cups_per_sample, blind, status,
		       session_notes, anonymous_mode, scored_date, created_at, updated_at
		FROM cupping_sessions ORDER BY date DESC, id DESC`)
	if err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}
	defer rows.Close()

	var sessions []Session
	for rows.Next() {
		sess, err := scanSession(rows)
		if err != nil {
			return nil, err
		}
		sessions = append(sessions, *sess)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	for i := range sessions {
		if err := s.hydrate(&sessions[i]); err != nil {
			return nil, err
		}
	}
	return sessions, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSession(row rowScanner) (*Session, error) {
	sess := &Session{}
	var shareID sql.NullString
	var blind, anonymous int
	var createdAt, updatedAt string

	err := row.Scan(
		&sess.ID, &sess.SessionID, &shareID, &sess.UserEmail, &sess.Name,
		&sess.Date, &sess.Cupper, &sess.Protocol, &sess.WaterTemp,
		&sess.CupsPerSample, &blind, &sess.Status, &sess.SessionNotes,
		&anonymous, &sess.ScoredDate, &createdAt, &updatedAt,
	)
	if err != nil {
		return nil, err
	}
	if shareID.Valid {
		sess.ShareID = shareID.String
	}
	sess.Blind = blind == 1
	sess.AnonymousMode = anonymous == 1
	sess.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
	sess.UpdatedAt, _ = time.Parse(time.RFC3339, updatedAt)
	return sess, nil
}

func (s *Store) hydrate(sess *Session) error {
	rows, err := s.db.Query(`
		SELECT name, origin, variety, process, altitude, harvest_year
		FROM samples WHERE session_id = ? ORDER BY position`, sess.SessionID)
	if err != nil {
		return fmt.Errorf("load samples: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var sm Sample
		if err := rows.Scan(&sm.Name, &sm.Origin, &sm.Variety, &sm.Process, &sm.Altitude, &sm.HarvestYear); err != nil {
			return err
		}
		sess.Samples = append(sess.Samples, sm)
	}
	if err := rows.Err(); err != nil {
		return err
	}

	scoreRows, err := s.db.Query(`
		SELECT sample_name, fragrance, flavor, aftertaste, acidity, body,
		       balance, uniformity, clean_cup, sweetness, overall, defects,
		       total, notes, selected_flavors
		FROM scores WHERE session_id = ? ORDER BY position`, sess.SessionID)
	if err != nil {
		return fmt.Errorf("load scores: %w", err)
	}
	defer scoreRows.Close()
	for scoreRows.Next() {
		var sc Score
		var flavors string
		err := scoreRows.Scan(
			&sc.SampleName, &sc.Fragrance, &sc.Flavor, &sc.Aftertaste,
			&sc.Acidity, &sc.Body, &sc.Balance, &sc.Uniformity, &sc.CleanCup,
			&sc.Sweetness, &sc.Overall, &sc.Defects, &sc.Total, &sc.Notes, &flavors,
		)
		if err != nil {
			return err
		}
		if flavors != "" {
			if err := json.Unmarshal([]byte(flavors), &sc.SelectedFlavors); err != nil {
				return fmt.Errorf("unmarshal flavors: %w", err)
			}
		}
		sess.Scores = append(sess.Scores, sc)
	}
	return scoreRows.Err()
}

// ReplaceSamples swaps a session's sample list. Scores for samples no longer
// on the list are dropped; if unscored samples remain afterwards the session
// regresses to a pre-scoring status and its scored date is cleared.
func (s *Store) ReplaceSamples(sessionID string, samples []Sample) (*Session, error) {
	sess, err := s.GetSession(sessionID)
	if err != nil {
		return nil, err
	}

	names := make(map[string]bool, len(samples))
	for _, sm := range samples {
		if sm.Name == "" {
			return nil, fmt.Errorf("sample name is required")
		}
		if names[sm.Name] {
			return nil, fmt.Errorf("duplicate sample name %q", sm.Name)
		}
		names[sm.Name] = true
	}

	var kept []Score
	for _, sc := range sess.Scores {
		if names[sc.SampleName] {
			kept = append(kept, sc)
		}
	}

	sess.Samples = samples
	sess.Scores = kept
	sess.Status = resolveStatus(sess.Samples, sess.Scores)
	if sess.Status != StatusScored {
		sess.ScoredDate = ""
	}
	if err := s.SaveSession(sess); err != nil {
		return nil, err
	}
	return s.GetSession(sessionID)
}

// SubmitScores replaces the session's entire score list together with the
// session notes. Partial sets are accepted but the session only becomes
// Scored once every registered sample has a score; the scored date is set
// on first completion and kept on replays, making identical re-submissions
// idempotent.
func (s *Store) SubmitScores(sessionID string, scores []Score, sessionNotes string) (*Session, error) {
	sess, err := s.GetSession(sessionID)
	if err != nil {
		return nil, err
	}

	registered := make(map[string]bool, len(sess.Samples))
	for _, sm := range sess.Samples {
		registered[sm.Name] = true
	}
	seen := make(map[string]bool, len(scores))
	for i := range scores {
		sc := &scores[i]
		if !registered[sc.SampleName] {
			return nil, fmt.Errorf("score for unregistered sample %q", sc.SampleName)
		}
		if seen[sc.SampleName] {
			return nil, fmt.Errorf("duplicate score for sample %q", sc.SampleName)
		}
		seen[sc.SampleName] = true
		if err := scoring.Validate(sc.Attributes); err != nil {
			return nil, fmt.Errorf("sample %q: %w", sc.SampleName, err)
		}
	}

	sess.Scores = scores
	sess.SessionNotes = sessionNotes
	sess.Status = resolveStatus(sess.Samples, sess.Scores)
	switch {
	case sess.Status != StatusScored:
		sess.ScoredDate = ""
	case sess.ScoredDate == "":
		sess.ScoredDate = time.Now().UTC().Format(time.RFC3339)
	}

	if err := s.SaveSession(sess); err != nil {
		return nil, err
	}
	return s.GetSession(sessionID)
}

// EnsureShareID assigns the session's public share token on first use and
// returns the existing one on every call after that.
func (s *Store) EnsureShareID(sessionID string) (string, error) {
	sess, err := s.GetSession(sessionID)
	if err != nil {
		return "", err
	}
	if sess.ShareID != "" {
		return sess.ShareID, nil
	}

	shareID := uuid.NewString()[:8]
	now := time.Now().UTC().Format(time.RFC3339)
	_, err = s.db.Exec(
		`UPDATE cupping_sessions SET share_id = ?, updated_at = ? WHERE session_id = ? AND share_id IS NULL`,
		shareID, now, sessionID,
	)
	if err != nil {
		return "", fmt.Errorf("assign share id: %w", err)
	}

	// Re-read in case a concurrent save won the race.
	sess, err = s.GetSession(sessionID)
	if err != nil {
		return "", err
	}
	return sess.ShareID, nil
}

// DeleteSession removes the session and, via cascade, its samples and scores.
func (s *Store) DeleteSession(sessionID string) error {
	res, err := s.db.Exec(`DELETE FROM cupping_sessions WHERE session_id = ?`, sessionID)
	if err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// resolveStatus derives the state-machine position from the record contents:
// no samples is Setup, samples without a complete score set is Ready to
// Score, one score per sample is Scored.
func resolveStatus(samples []Sample, scores []Score) string {
	if len(samples) == 0 {
		return StatusSetup
	}
	if len(scores) == 0 {
		return StatusReady
	}
	byName := make(map[string]bool, len(scores))
	for _, sc := range scores {
		byName[sc.SampleName] = true
	}
	for _, sm := range samples {
		if !byName[sm.Name] {
			return StatusReady
		}
	}
	return StatusScored
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
