package export

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/sadopc/cupr/internal/scoring"
	"github.com/sadopc/cupr/internal/store"
)

type jsonExport struct {
	ExportedAt string      `json:"exported_at"`
	Session    jsonSession `json:"session"`
}

type jsonSession struct {
	SessionID     string       `json:"session_id"`
	Name          string       `json:"name"`
	Date          string       `json:"date"`
	Cupper        string       `json:"cupper"`
	Protocol      string       `json:"protocol"`
	WaterTemp     int          `json:"water_temp"`
	CupsPerSample int          `json:"cups_per_sample"`
	Blind         bool         `json:"blind"`
	Status        string       `json:"status"`
	SessionNotes  string       `json:"session_notes,omitempty"`
	ScoredDate    string       `json:"scored_date,omitempty"`
	Samples       []jsonSample `json:"samples"`
	Scores        []jsonScore  `json:"scores"`
}

type jsonSample struct {
	Name        string `json:"name"`
	Origin      string `json:"origin,omitempty"`
	Variety     string `json:"variety,omitempty"`
	Process     string `json:"process,omitempty"`
	Altitude    string `json:"altitude,omitempty"`
	HarvestYear string `json:"harvest_year,omitempty"`
}

type jsonScore struct {
	SampleName string `json:"sample_name"`
	scoring.Attributes
	Total           float64  `json:"total"`
	Grade           string   `json:"grade"`
	Notes           string   `json:"notes,omitempty"`
	SelectedFlavors []string `json:"selected_flavors"`
}

// ToJSON writes the complete session record, samples and scores included,
// so the file round-trips without loss.
func ToJSON(sess *store.Session, path string) error {
	out := jsonExport{
		ExportedAt: time.Now().UTC().Format(time.RFC3339),
		Session: jsonSession{
			SessionID:     sess.SessionID,
			Name:          sess.Name,
			Date:          sess.Date,
			Cupper:        sess.DisplayCupper(),
			Protocol:      sess.Protocol,
			WaterTemp:     sess.WaterTemp,
			CupsPerSample: sess.CupsPerSample,
			Blind:         sess.Blind,
			Status:        sess.Status,
			SessionNotes:  sess.SessionNotes,
			ScoredDate:    sess.ScoredDate,
		},
	}
	for _, sm := range sess.Samples {
		out.Session.Samples = append(out.Session.Samples, jsonSample(sm))
	}
	for _, sc := range sess.Scores {
		flavors := sc.SelectedFlavors
		if flavors == nil {
			flavors = []string{}
		}
		out.Session.Scores = append(out.Session.Scores, jsonScore{
			SampleName:      sc.SampleName,
			Attributes:      sc.Attributes,
			Total:           sc.Total,
			Grade:           scoring.Grade(sc.Total),
			Notes:           sc.Notes,
			SelectedFlavors: flavors,
		})
	}

	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal json: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write json file: %w", err)
	}
	return nil
}
