package scoring

import (
	"sort"
	"strconv"
)

// Rank orders totals by total point, highest first, ties broken by
// ascending bib. Entries with a Total-Result status are listed after the
// eligible ones, in bib order, without consuming a position; their token is
// the status token.
func Rank(totals []CompetitorTotal) []Standing {
	eligible := make([]Standing, 0, len(totals))
	var excluded []Standing
	for _, t := range totals {
		s := Standing{Bib: t.Bib, TotalPoint: t.TotalPoint, Status: t.Status}
		if t.Status.Set() {
			s.RankToken = t.Status.Token()
			excluded = append(excluded, s)
			continue
		}
		eligible = append(eligible, s)
	}

	sort.Slice(eligible, func(i, j int) bool {
		if eligible[i].TotalPoint != eligible[j].TotalPoint {
			return eligible[i].TotalPoint > eligible[j].TotalPoint
		}
		return eligible[i].Bib < eligible[j].Bib
	})
	for i := range eligible {
		eligible[i].Rank = i + 1
		eligible[i].RankToken = strconv.Itoa(i + 1)
	}

	sort.Slice(excluded, func(i, j int) bool { return excluded[i].Bib < excluded[j].Bib })
	return append(eligible, excluded...)
}

// RankByClass runs Rank separately inside every class. Totals without a
// class label are left out.
func RankByClass(totals []CompetitorTotal) []ClassStanding {
	byClass := make(map[string][]CompetitorTotal)
	for _, t := range totals {
		if t.Class == "" {
			continue
		}
		byClass[t.Class] = append(byClass[t.Class], t)
	}

	labels := make([]string, 0, len(byClass))
	for label := range byClass {
		labels = append(labels, label)
	}
	sort.Strings(labels)

	out := make([]ClassStanding, 0, len(labels))
	for _, label := range labels {
		out = append(out, ClassStanding{Class: label, Standings: Rank(byClass[label])})
	}
	return out
}
