package postgres

import (
	"context"

	"github.com/google/uuid"

	"tutor-billing/internal/models"
)

const lessonColumns = `id, student_id, tutor_id, subject, start_time, duration_minutes,
	hourly_rate, total_amount, notes, created_at`

func (s *Storage) CreateLesson(ctx context.Context, l *models.Lesson) (string, error) {
	const op = "storage.postgres.CreateLesson"

	id := uuid.NewString()

	err := s.db.QueryRowxContext(ctx,
		`INSERT INTO lessons
		(id, student_id, tutor_id, subject, start_time, duration_minutes, hourly_rate, total_amount, notes)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING created_at`,
		id,
		l.StudentID,
		l.TutorID,
		l.Subject,
		l.StartTime,
		l.DurationMinutes,
		l.HourlyRate,
		l.TotalAmount,
		l.Notes,
	).Scan(&l.CreatedAt)
	if err != nil {
		return "", mapErr(op, err)
	}

	l.ID = id
	return id, nil
}

func (s *Storage) GetLesson(ctx context.Context, id string) (*models.Lesson, error) {
	const op = "storage.postgres.GetLesson"

	var l models.Lesson
	if err := s.db.GetContext(ctx, &l, `SELECT `+lessonColumns+` FROM lessons WHERE id=$1`, id); err != nil {
		return nil, mapErr(op, err)
	}

	return &l, nil
}

// FindLessons filters on the half-open range From <= start_time < To.
func (s *Storage) FindLessons(ctx context.Context, f models.LessonFilter) ([]*models.Lesson, error) {
	const op = "storage.postgres.FindLessons"

	var w where
	if f.StudentID != nil {
		w.add("student_id=$%d", *f.StudentID)
	}
	if f.TutorID != nil {
		w.add("tutor_id=$%d", *f.TutorID)
	}
	if f.From != nil {
		w.add("start_time >= $%d", *f.From)
	}
	if f.To != nil {
		w.add("start_time < $%d", *f.To)
	}

	lessons := make([]*models.Lesson, 0)
	query := `SELECT ` + lessonColumns + ` FROM lessons` + w.String() + ` ORDER BY start_time, created_at`
	if err := s.db.SelectContext(ctx, &lessons, query, w.args...); err != nil {
		return nil, mapErr(op, err)
	}

	return lessons, nil
}

func (s *Storage) UpdateLesson(ctx context.Context, l *models.Lesson) error {
	const op = "storage.postgres.UpdateLesson"

	res, err := s.db.ExecContext(ctx,
		`UPDATE lessons SET
			subject=$1,
			start_time=$2,
			duration_minutes=$3,
			hourly_rate=$4,
			total_amount=$5,
			notes=$6
		WHERE id=$7`,
		l.Subject,
		l.StartTime,
		l.DurationMinutes,
		l.HourlyRate,
		l.TotalAmount,
		l.Notes,
		l.ID,
	)
	if err != nil {
		return mapErr(op, err)
	}

	return expectAffected(op, res)
}

func (s *Storage) DeleteLesson(ctx context.Context, id string) error {
	const op = "storage.postgres.DeleteLesson"

	res, err := s.db.ExecContext(ctx, `DELETE FROM lessons WHERE id=$1`, id)
	if err != nil {
		return mapErr(op, err)
	}

	return expectAffected(op, res)
}
