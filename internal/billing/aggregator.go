package billing

import (
	"github.com/shopspring/decimal"

	"tutor-billing/internal/models"
)

type SubjectSummary struct {
	Subject              string
	TotalDurationMinutes int
	HourlyRate           decimal.Decimal
	TutorID              string
	LessonID             string
}

// AggregateLessonsBySubject groups lessons by exact subject label and sums
// their durations. Rate, tutor and lesson id of a summary come from the
// first lesson of that subject in input order; later lessons with a
// different rate do not change it. Summaries keep first-seen subject order.
//
// The caller is expected to pass lessons of one student within one Period.
func AggregateLessonsBySubject(lessons []models.Lesson) []SubjectSummary {
	index := make(map[string]int, len(lessons))
	summaries := make([]SubjectSummary, 0)

	for _, l := range lessons {
		i, ok := index[l.Subject]
		if !ok {
			index[l.Subject] = len(summaries)
			summaries = append(summaries, SubjectSummary{
				Subject:    l.Subject,
				HourlyRate: l.HourlyRate,
				TutorID:    l.TutorID,
				LessonID:   l.ID,
			})
			i = len(summaries) - 1
		}

		summaries[i].TotalDurationMinutes += l.DurationMinutes
	}

	return summaries
}

// LessonsInPeriod keeps the lessons whose start time falls inside p.
func LessonsInPeriod(lessons []models.Lesson, p Period) []models.Lesson {
	out := make([]models.Lesson, 0, len(lessons))
	for _, l := range lessons {
		if p.Contains(l.StartTime) {
			out = append(out, l)
		}
	}
	return out
}
