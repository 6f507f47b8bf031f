package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/techmkce/attendance-engine-api/internal/models"
)

func record(id, session string, status models.AttendanceStatus) models.AttendanceRecord {
	return models.AttendanceRecord{
		ID:        id + "-" + session,
		StudentID: id,
		Session:   models.Session(session),
		Status:    status,
	}
}

func TestPartitionBySessionNormalizesCase(t *testing.T) {
	records := []models.AttendanceRecord{
		record("s1", "fn", models.AttendanceStatusPresent),
		record("s2", "FN", models.AttendanceStatusAbsent),
		record("s3", "AN", models.AttendanceStatusPresent),
	}

	breakdowns := PartitionBySession(records)
	require.Len(t, breakdowns, 2)

	fn := breakdowns[0]
	assert.Equal(t, models.SessionForenoon, fn.Session)
	assert.Equal(t, 2, fn.Total)
	assert.Equal(t, 1, fn.Present)
	assert.Equal(t, 1, fn.Absent)

	an := breakdowns[1]
	assert.Equal(t, models.SessionAfternoon, an.Session)
	assert.Equal(t, 1, an.Total)
	assert.Equal(t, 1, an.Present)
	assert.Equal(t, 0, an.Absent)
}

func TestPartitionBySessionAlwaysEmitsBothSessions(t *testing.T) {
	breakdowns := PartitionBySession([]models.AttendanceRecord{
		record("s1", "FN", models.AttendanceStatusPresent),
	})
	require.Len(t, breakdowns, 2)
	assert.Equal(t, models.SessionForenoon, breakdowns[0].Session)
	assert.Equal(t, models.SessionAfternoon, breakdowns[1].Session)
	assert.Equal(t, 0, breakdowns[1].Total)
	assert.Empty(t, breakdowns[1].Records)
}

func TestPartitionBySessionKeepsUnknownSessions(t *testing.T) {
	records := []models.AttendanceRecord{
		record("s1", "FN", models.AttendanceStatusPresent),
		record("s2", "EVE", models.AttendanceStatusAbsent),
		record("s3", "an", models.AttendanceStatusPresent),
		record("s4", "eve", models.AttendanceStatusPresent),
	}

	breakdowns := PartitionBySession(records)
	require.Len(t, breakdowns, 3)
	assert.Equal(t, models.Session("EVE"), breakdowns[2].Session)
	assert.Equal(t, 2, breakdowns[2].Total)

	// Every record lands in exactly one partition.
	total := 0
	for _, b := range breakdowns {
		assert.Equal(t, b.Total, b.Present+b.Absent)
		assert.Len(t, b.Records, b.Total)
		total += b.Total
	}
	assert.Equal(t, len(records), total)
}

func TestConsolidateSumsAcrossSessions(t *testing.T) {
	summaries := []models.SessionAttendanceSummary{
		{StudentID: "s1", StudentName: "Anita", Session: models.SessionForenoon, TotalDays: 10, PresentCount: 8},
		{StudentID: "s1", StudentName: "Anita", Session: models.SessionAfternoon, TotalDays: 10, PresentCount: 9},
	}

	consolidated := Consolidate(summaries)
	require.Len(t, consolidated, 1)
	assert.Equal(t, "s1", consolidated[0].StudentID)
	assert.Equal(t, 20, consolidated[0].TotalConducted)
	assert.Equal(t, 17, consolidated[0].TotalAttended)
	assert.InDelta(t, 85.0, consolidated[0].Percentage, 0.0001)
}

func TestConsolidatePreservesFirstAppearanceOrder(t *testing.T) {
	summaries := []models.SessionAttendanceSummary{
		{StudentID: "s2", Session: models.SessionForenoon, TotalDays: 5, PresentCount: 5},
		{StudentID: "s1", Session: models.SessionForenoon, TotalDays: 5, PresentCount: 4},
		{StudentID: "s2", Session: models.SessionAfternoon, TotalDays: 5, PresentCount: 3},
	}

	consolidated := Consolidate(summaries)
	require.Len(t, consolidated, 2)
	assert.Equal(t, "s2", consolidated[0].StudentID)
	assert.Equal(t, "s1", consolidated[1].StudentID)
	assert.Equal(t, 10, consolidated[0].TotalConducted)
	assert.Equal(t, 8, consolidated[0].TotalAttended)
}

func TestConsolidateZeroConductedGuard(t *testing.T) {
	consolidated := Consolidate([]models.SessionAttendanceSummary{
		{StudentID: "s1", TotalDays: 0, PresentCount: 0},
	})
	require.Len(t, consolidated, 1)
	assert.Zero(t, consolidated[0].Percentage)
}

func TestConsolidateLastRowWinsMetadata(t *testing.T) {
	summaries := []models.SessionAttendanceSummary{
		{StudentID: "s1", StudentName: "Old Name", Department: "CSE", TotalDays: 5, PresentCount: 5},
		{StudentID: "s1", StudentName: "New Name", Department: "ECE", TotalDays: 5, PresentCount: 4},
	}

	consolidated := Consolidate(summaries)
	require.Len(t, consolidated, 1)
	assert.Equal(t, "New Name", consolidated[0].StudentName)
	assert.Equal(t, "ECE", consolidated[0].Department)
}

func TestConsolidateSumPreservation(t *testing.T) {
	summaries := []models.SessionAttendanceSummary{
		{StudentID: "s1", TotalDays: 10, PresentCount: 7},
		{StudentID: "s2", TotalDays: 8, PresentCount: 8},
		{StudentID: "s1", TotalDays: 6, PresentCount: 2},
		{StudentID: "s3", TotalDays: 4, PresentCount: 0},
	}

	wantConducted := 0
	wantAttended := 0
	for _, row := range summaries {
		wantConducted += row.TotalDays
		wantAttended += row.PresentCount
	}

	gotConducted := 0
	gotAttended := 0
	for _, entry := range Consolidate(summaries) {
		gotConducted += entry.TotalConducted
		gotAttended += entry.TotalAttended
	}
	assert.Equal(t, wantConducted, gotConducted)
	assert.Equal(t, wantAttended, gotAttended)
}
