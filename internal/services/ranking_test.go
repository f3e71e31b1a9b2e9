package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"recruitflow/screening-api/internal/models"
)

func record(name string, score int) models.ScreeningRecord {
	return models.ScreeningRecord{CandidateName: name, MatchScore: score}
}

func TestRankRecordsOrdersByScoreDescending(t *testing.T) {
	records := []models.ScreeningRecord{
		record("Carol", 55),
		record("Alice", 90),
		record("Bob", 72),
	}

	ranked := RankRecords(records)
	require.Len(t, ranked, 3)
	assert.Equal(t, "Alice", ranked[0].CandidateName)
	assert.Equal(t, "Bob", ranked[1].CandidateName)
	assert.Equal(t, "Carol", ranked[2].CandidateName)
}

func TestRankRecordsBreaksTiesByName(t *testing.T) {
	records := []models.ScreeningRecord{
		record("Zoe", 80),
		record("Amir", 80),
		record("Mia", 80),
	}

	ranked := RankRecords(records)
	assert.Equal(t, "Amir", ranked[0].CandidateName)
	assert.Equal(t, "Mia", ranked[1].CandidateName)
	assert.Equal(t, "Zoe", ranked[2].CandidateName)
}

func TestRankRecordsIsIdempotent(t *testing.T) {
	records := []models.ScreeningRecord{
		record("Zoe", 80),
		record("Amir", 80),
		record("Bob", 95),
		record("Carol", 10),
	}

	once := RankRecords(records)
	twice := RankRecords(once)
	assert.Equal(t, once, twice)
}

func TestRankRecordsDoesNotMutateInput(t *testing.T) {
	records := []models.ScreeningRecord{
		record("Low", 10),
		record("High", 90),
	}

	_ = RankRecords(records)
	assert.Equal(t, "Low", records[0].CandidateName)
	assert.Equal(t, "High", records[1].CandidateName)
}

func TestRankRecordsEmpty(t *testing.T) {
	assert.Empty(t, RankRecords(nil))
}

func TestRankRecordsFailureVariantsSinkToBottom(t *testing.T) {
	records := []models.ScreeningRecord{
		{CandidateName: "Broken", MatchScore: 0, Failed: true},
		record("Fine", 40),
	}

	ranked := RankRecords(records)
	assert.Equal(t, "Fine", ranked[0].CandidateName)
	assert.Equal(t, "Broken", ranked[1].CandidateName)
}
