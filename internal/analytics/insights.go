// Package analytics derives read-only reports from stored cupping data:
// per-session insights and the community-wide trends scan. Everything here
// is pure computation over already-loaded records; no queries, no writes.
package analytics

import (
	"sort"

	"github.com/sadopc/cupr/internal/scoring"
	"github.com/sadopc/cupr/internal/store"
)

// Insights summarizes one session's score sheet.
type Insights struct {
	Average       float64
	Highest       float64
	Lowest        float64
	Range         float64
	BestSample    string
	WorstSample   string
	BestCategory  string
	WorstCategory string
	TopFlavors    []FlavorCount
}

type FlavorCount struct {
	Name  string
	Count int
}

// SessionInsights computes the summary for a single session. Scores with a
// non-positive total are treated as unset and skipped; the second return is
// false when nothing remains to aggregate.
func SessionInsights(sess *store.Session) (Insights, bool) {
	var scored []store.Score
	for _, sc := range sess.Scores {
		if sc.Total > 0 {
			scored = append(scored, sc)
		}
	}
	if len(scored) == 0 {
		return Insights{}, false
	}

	ins := Insights{
		Highest: scored[0].Total,
		Lowest:  scored[0].Total,
	}
	var sum float64
	for _, sc := range scored {
		sum += sc.Total
		if sc.Total > ins.Highest {
			ins.Highest = sc.Total
			ins.BestSample = sc.SampleName
		}
		if sc.Total < ins.Lowest {
			ins.Lowest = sc.Total
			ins.WorstSample = sc.SampleName
		}
	}
	if ins.BestSample == "" {
		ins.BestSample = scored[0].SampleName
	}
	if ins.WorstSample == "" {
		ins.WorstSample = scored[0].SampleName
	}
	ins.Average = sum / float64(len(scored))
	ins.Range = ins.Highest - ins.Lowest

	ins.BestCategory, ins.WorstCategory = categoryExtremes(scored)
	ins.TopFlavors = topFlavors(scored, 5)
	return ins, true
}

// categoryExtremes finds the strongest and weakest attribute by mean value.
// Ties resolve to the earlier attribute in canonical order.
func categoryExtremes(scores []store.Score) (best, worst string) {
	var bestAvg, worstAvg float64
	for i, cat := range scoring.Categories {
		var sum float64
		var n int
		for _, sc := range scores {
			if v := sc.Value(cat); v > 0 {
				sum += v
				n++
			}
		}
		if n == 0 {
			continue
		}
		avg := sum / float64(n)
		if best == "" || avg > bestAvg {
			best, bestAvg = scoring.Categories[i], avg
		}
		if worst == "" || avg < worstAvg {
			worst, worstAvg = scoring.Categories[i], avg
		}
	}
	return best, worst
}

// topFlavors counts selected descriptors across the given scores and returns
// the top n, most frequent first. Ties keep first-seen order, so the result
// is stable across runs.
func topFlavors(scores []store.Score, n int) []FlavorCount {
	counts := make(map[string]int)
	var order []string
	for _, sc := range scores {
		for _, f := range sc.SelectedFlavors {
			if _, seen := counts[f]; !seen {
				order = append(order, f)
			}
			counts[f]++
		}
	}
	return rankCounts(counts, order, n)
}

// rankCounts orders counted names by descending count, breaking ties by
// first-seen position, and truncates to n (n <= 0 means no limit).
func rankCounts(counts map[string]int, order []string, n int) []FlavorCount {
	pos := make(map[string]int, len(order))
	for i, name := range order {
		pos[name] = i
	}
	out := make([]FlavorCount, 0, len(order))
	for _, name := range order {
		out = append(out, FlavorCount{Name: name, Count: counts[name]})
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return pos[out[i].Name] < pos[out[j].Name]
	})
	if n > 0 && len(out) > n {
		out = out[:n]
	}
	return out
}
