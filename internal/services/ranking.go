package services

import (
	"sort"

	"recruitflow/screening-api/internal/models"
)

// RankRecords returns a new slice ordered by match score descending, with
// candidate name ascending as the tie-break. The sort is stable, so ranking
// an already-ranked slice reproduces it exactly. The input is not modified.
func RankRecords(records []models.ScreeningRecord) []models.ScreeningRecord {
	ranked := make([]models.ScreeningRecord, len(records))
	copy(ranked, records)

	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].MatchScore != ranked[j].MatchScore {
			return ranked[i].MatchScore > ranked[j].MatchScore
		}
		return ranked[i].CandidateName < ranked[j].CandidateName
	})

	return ranked
}
