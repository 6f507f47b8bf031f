package service

import (
	"github.com/techmkce/attendance-engine-api/internal/models"
)

// PartitionBySession splits one day's raw records into per-session breakdowns.
// The partition key is the normalized session, so "fn" and "FN" share a
// partition. FN and AN always appear in the output, in that order, followed by
// any other session keys in first-appearance order. Every record lands in
// exactly one partition and total = present + absent holds per partition.
func PartitionBySession(records []models.AttendanceRecord) []models.SessionBreakdown {
	order := []models.Session{models.SessionForenoon, models.SessionAfternoon}
	groups := map[models.Session][]models.AttendanceRecord{
		models.SessionForenoon:  {},
		models.SessionAfternoon: {},
	}

	for _, record := range records {
		session := models.NormalizeSession(string(record.Session))
		if _, ok := groups[session]; !ok {
			order = append(order, session)
			groups[session] = []models.AttendanceRecord{}
		}
		groups[session] = append(groups[session], record)
	}

	breakdowns := make([]models.SessionBreakdown, 0, len(order))
	for _, session := range order {
		partition := groups[session]
		present := 0
		for _, record := range partition {
			if record.Status == models.AttendanceStatusPresent {
				present++
			}
		}
		breakdowns = append(breakdowns, models.SessionBreakdown{
			Session: session,
			Total:   len(partition),
			Present: present,
			Absent:  len(partition) - present,
			Records: partition,
		})
	}
	return breakdowns
}

// Consolidate merges per-session summary rows into one rollup per student:
// conducted and attended counts are summed across every row a student owns,
// whatever the session split. Output keeps first-appearance order. Student
// metadata is carried from the group's rows; when rows disagree the last seen
// row wins (the store denormalizes these fields, divergence is a data-quality
// issue, not a query failure).
func Consolidate(summaries []models.SessionAttendanceSummary) []models.ConsolidatedRangeAttendance {
	index := make(map[string]int, len(summaries))
	consolidated := make([]models.ConsolidatedRangeAttendance, 0, len(summaries))

	for _, row := range summaries {
		i, ok := index[row.StudentID]
		if !ok {
			i = len(consolidated)
			index[row.StudentID] = i
			consolidated = append(consolidated, models.ConsolidatedRangeAttendance{StudentID: row.StudentID})
		}
		entry := &consolidated[i]
		entry.StudentName = row.StudentName
		entry.Department = row.Department
		entry.Batch = row.Batch
		entry.Semester = row.Semester
		entry.CourseName = row.CourseName
		entry.TotalConducted += row.TotalDays
		entry.TotalAttended += row.PresentCount
	}

	for i := range consolidated {
		entry := &consolidated[i]
		if entry.TotalConducted > 0 {
			entry.Percentage = float64(entry.TotalAttended) / float64(entry.TotalConducted) * 100
		}
	}
	return consolidated
}
