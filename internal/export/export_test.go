package export

import (
	"encoding/csv"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/sadopc/cupr/internal/scoring"
	"github.com/sadopc/cupr/internal/store"
)

func testSession() *store.Session {
	a := scoring.NewAttributes()
	a.Fragrance = 8.25
	a.Flavor = 8.5
	a.Overall = 8.0
	sc := store.Score{
		SampleName:      "Yirgacheffe",
		Attributes:      a,
		Total:           a.Total(),
		Notes:           "floral, lime",
		SelectedFlavors: []string{"Jasmine", "Lime"},
	}
	return &store.Session{
		SessionID: "abc-123",
		Name:      "Morning Table",
		Date:      "2026-08-01",
		Cupper:    "Ayşe",
		Protocol:  "SCA Standard",
		WaterTemp: 93,
		Status:    store.StatusScored,
		Samples: []store.Sample{
			{Name: "Yirgacheffe", Origin: "Ethiopia", Process: "Washed"},
		},
		Scores: []store.Score{sc},
	}
}

// ============================================================
// CSV
// ============================================================

func TestToCSV(t *testing.T) {
	sess := testSession()
	path := filepath.Join(t.TempDir(), "out.csv")

	if err := ToCSV(sess, path); err != nil {
		t.Fatal(err)
	}

	f, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	records, err := csv.NewReader(f).ReadAll()
	if err != nil {
		t.Fatal(err)
	}
	if len(records) != 2 {
		t.Fatalf("got %d rows, want header + 1", len(records))
	}

	header := records[0]
	if header[0] != "Sample" || header[1] != "Origin" {
		t.Fatalf("unexpected header: %v", header)
	}

	row := records[1]
	if row[0] != "Yirgacheffe" || row[1] != "Ethiopia" {
		t.Fatalf("unexpected row: %v", row)
	}
	if row[2] != "8.25" {
		t.Fatalf("fragrance = %q", row[2])
	}
	// Grade column follows the total.
	wantGrade := scoring.Grade(sess.Scores[0].Total)
	found := false
	for _, cell := range row {
		if cell == wantGrade {
			found = true
		}
	}
	if !found {
		t.Fatalf("grade %q missing from row %v", wantGrade, row)
	}
}

func TestToCSVSkipsUnscoredSamples(t *testing.T) {
	sess := testSession()
	sess.Samples = append(sess.Samples, store.Sample{Name: "Unscored"})
	path := filepath.Join(t.TempDir(), "out.csv")

	if err := ToCSV(sess, path); err != nil {
		t.Fatal(err)
	}

	f, _ := os.Open(path)
	defer f.Close()
	records, _ := csv.NewReader(f).ReadAll()
	if len(records) != 2 {
		t.Fatalf("unscored sample should not produce a row: %d rows", len(records))
	}
}

// ============================================================
// JSON
// ============================================================

func TestToJSONRoundTrip(t *testing.T) {
	sess := testSession()
	path := filepath.Join(t.TempDir(), "out.json")

	if err := ToJSON(sess, path); err != nil {
		t.Fatal(err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}

	var out struct {
		ExportedAt string `json:"exported_at"`
		Session    struct {
			SessionID string `json:"session_id"`
			Name      string `json:"name"`
			Cupper    string `json:"cupper"`
			Samples   []struct {
				Name   string `json:"name"`
				Origin string `json:"origin"`
			} `json:"samples"`
			Scores []struct {
				SampleName string   `json:"sample_name"`
				Fragrance  float64  `json:"fragrance"`
				CleanCup   float64  `json:"clean_cup"`
				Total      float64  `json:"total"`
				Grade      string   `json:"grade"`
				Flavors    []string `json:"selected_flavors"`
			} `json:"scores"`
		} `json:"session"`
	}
	if err := json.Unmarshal(data, &out); err != nil {
		t.Fatal(err)
	}

	if out.ExportedAt == "" {
		t.Fatal("exported_at missing")
	}
	if out.Session.SessionID != "abc-123" || out.Session.Name != "Morning Table" {
		t.Fatalf("session fields: %+v", out.Session)
	}
	if len(out.Session.Samples) != 1 || out.Session.Samples[0].Origin != "Ethiopia" {
		t.Fatalf("samples: %+v", out.Session.Samples)
	}
	sc := out.Session.Scores[0]
	if sc.Fragrance != 8.25 || sc.CleanCup != 10 {
		t.Fatalf("attributes: %+v", sc)
	}
	if sc.Total != sess.Scores[0].Total {
		t.Fatalf("total = %v", sc.Total)
	}
	if sc.Grade != scoring.Grade(sc.Total) {
		t.Fatalf("grade = %q", sc.Grade)
	}
	if len(sc.Flavors) != 2 {
		t.Fatalf("flavors: %v", sc.Flavors)
	}
}

func TestToJSONRespectsAnonymousMode(t *testing.T) {
	sess := testSession()
	sess.AnonymousMode = true
	path := filepath.Join(t.TempDir(), "out.json")

	if err := ToJSON(sess, path); err != nil {
		t.Fatal(err)
	}
	data, _ := os.ReadFile(path)

	var out struct {
		Session struct {
			Cupper string `json:"cupper"`
		} `json:"session"`
	}
	json.Unmarshal(data, &out)
	if out.Session.Cupper != "Anonymous Taster" {
		t.Fatalf("cupper = %q", out.Session.Cupper)
	}
}
