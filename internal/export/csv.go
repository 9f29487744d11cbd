package export

import (
	"encoding/csv"
	"fmt"
	"os"
	"strings"

	"github.com/sadopc/cupr/internal/scoring"
	"github.com/sadopc/cupr/internal/store"
)

// ToCSV writes one row per scored sample. Sample metadata comes from the
// registered sample list; samples without a score are skipped.
func ToCSV(sess *store.Session, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create csv file: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	defer w.Flush()

	header := []string{"Sample", "Origin", "Fragrance", "Flavor", "Aftertaste", "Acidity",
		"Body", "Balance", "Uniformity", "Clean Cup", "Sweetness", "Overall",
		"Defects", "Total", "Grade", "Flavors", "Notes"}
	if err := w.Write(header); err != nil {
		return err
	}

	origins := make(map[string]string, len(sess.Samples))
	for _, sm := range sess.Samples {
		origins[sm.Name] = sm.Origin
	}

	for _, sc := range sess.Scores {
		row := []string{
			sc.SampleName,
			origins[sc.SampleName],
			num(sc.Fragrance), num(sc.Flavor), num(sc.Aftertaste), num(sc.Acidity),
			num(sc.Body), num(sc.Balance), num(sc.Uniformity), num(sc.CleanCup),
			num(sc.Sweetness), num(sc.Overall),
			num(sc.Defects), num(sc.Total),
			scoring.Grade(sc.Total),
			strings.Join(sc.SelectedFlavors, "; "),
			sc.Notes,
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}

	return w.Error()
}

func num(v float64) string {
	return fmt.Sprintf("%.2f", v)
}
