package analytics

import (
	"math"
	"sort"
	"time"

	"github.com/sadopc/cupr/internal/scoring"
	"github.com/sadopc/cupr/internal/store"
)

// TrendsReport is the community-wide aggregation over every stored session.
type TrendsReport struct {
	TotalSessions int
	TotalSamples  int

	// Distribution statistics over the positive totals of scored sessions.
	Mean   float64
	Median float64
	StdDev float64
	Min    float64
	Max    float64

	ScoreDistribution []float64
	GradeCounts       map[string]int
	AverageScores     map[string]float64
	PopularFlavors    []FlavorCount
	// FlavorCategoryCounts buckets every descriptor pick by its wheel
	// category, keyed by category name.
	FlavorCategoryCounts map[string]int
	TemporalTrends       []MonthTrend
	TopOrigins           []OriginCount
	ProtocolUsage        map[string]int
}

type MonthTrend struct {
	Month    string // YYYY-MM
	Average  float64
	Sessions int
}

type OriginCount struct {
	Origin string
	Count  int
}

// CommunityTrends scans the full session corpus and produces the trends
// report. The second return is false when there are no sessions at all.
//
// Score statistics, grade counts, per-category averages, flavors and
// protocol usage consider only Scored sessions; the session and origin
// tallies cover everything.
func CommunityTrends(sessions []store.Session) (TrendsReport, bool) {
	if len(sessions) == 0 {
		return TrendsReport{}, false
	}

	rep := TrendsReport{
		TotalSessions:        len(sessions),
		GradeCounts:          make(map[string]int),
		AverageScores:        make(map[string]float64),
		FlavorCategoryCounts: make(map[string]int),
		ProtocolUsage:        make(map[string]int),
	}

	catSums := make(map[string]float64)
	catCounts := make(map[string]int)
	flavorCounts := make(map[string]int)
	var flavorOrder []string
	monthSums := make(map[string]float64)
	monthCounts := make(map[string]int)
	originCounts := make(map[string]int)
	var originOrder []string

	for _, sess := range sessions {
		for _, sm := range sess.Samples {
			origin := sm.Origin
			if origin == "" {
				origin = "Unknown"
			}
			if _, seen := originCounts[origin]; !seen {
				originOrder = append(originOrder, origin)
			}
			originCounts[origin]++
		}

		if sess.Status != store.StatusScored {
			continue
		}
		rep.TotalSamples += len(sess.Scores)
		rep.ProtocolUsage[sess.Protocol]++

		var sessSum float64
		var sessN int
		for _, sc := range sess.Scores {
			if sc.Total > 0 {
				rep.ScoreDistribution = append(rep.ScoreDistribution, sc.Total)
				rep.GradeCounts[scoring.Grade(sc.Total)]++
				sessSum += sc.Total
				sessN++
			}
			for _, cat := range scoring.Categories {
				if v := sc.Value(cat); v > 0 {
					catSums[cat] += v
					catCounts[cat]++
				}
			}
			for _, f := range sc.SelectedFlavors {
				if _, seen := flavorCounts[f]; !seen {
					flavorOrder = append(flavorOrder, f)
				}
				flavorCounts[f]++
				if cat := scoring.DescriptorCategory(f); cat != "" {
					rep.FlavorCategoryCounts[cat]++
				}
			}
		}

		// Temporal view: one data point per session, keyed by its month.
		// Sessions with unparseable dates are left out of this view only.
		if sessN > 0 {
			if t, err := time.Parse("2006-01-02", sess.Date); err == nil {
				month := t.Format("2006-01")
				monthSums[month] += sessSum / float64(sessN)
				monthCounts[month]++
			}
		}
	}

	if len(rep.ScoreDistribution) > 0 {
		rep.Mean, rep.Median, rep.StdDev, rep.Min, rep.Max = distStats(rep.ScoreDistribution)
	}

	for cat, n := range catCounts {
		rep.AverageScores[cat] = catSums[cat] / float64(n)
	}
	rep.PopularFlavors = rankCounts(flavorCounts, flavorOrder, 10)
	rep.TopOrigins = rankOrigins(originCounts, originOrder, 10)

	months := make([]string, 0, len(monthSums))
	for m := range monthSums {
		months = append(months, m)
	}
	sort.Strings(months)
	for _, m := range months {
		rep.TemporalTrends = append(rep.TemporalTrends, MonthTrend{
			Month:    m,
			Average:  monthSums[m] / float64(monthCounts[m]),
			Sessions: monthCounts[m],
		})
	}

	return rep, true
}

// distStats computes mean, median, population standard deviation, min and
// max over a non-empty sample list without mutating it.
func distStats(values []float64) (mean, median, stddev, min, max float64) {
	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)

	min = sorted[0]
	max = sorted[len(sorted)-1]

	var sum float64
	for _, v := range sorted {
		sum += v
	}
	mean = sum / float64(len(sorted))

	mid := len(sorted) / 2
	if len(sorted)%2 == 1 {
		median = sorted[mid]
	} else {
		median = (sorted[mid-1] + sorted[mid]) / 2
	}

	var sq float64
	for _, v := range sorted {
		d := v - mean
		sq += d * d
	}
	stddev = math.Sqrt(sq / float64(len(sorted)))
	return mean, median, stddev, min, max
}

func rankOrigins(counts map[string]int, order []string, n int) []OriginCount {
	pos := make(map[string]int, len(order))
	for i, name := range order {
		pos[name] = i
	}
	out := make([]OriginCount, 0, len(order))
	for _, name := range order {
		out = append(out, OriginCount{Origin: name, Count: counts[name]})
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return pos[out[i].Origin] < pos[out[j].Origin]
	})
	if n > 0 && len(out) > n {
		out = out[:n]
	}
	return out
}
