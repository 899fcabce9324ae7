package postgres

import (
	"context"

	"github.com/google/uuid"

	"tutor-billing/internal/models"
)

// #### parents ####

func (s *Storage) CreateParent(ctx context.Context, p *models.Parent) (string, error) {
	const op = "storage.postgres.CreateParent"

	id := uuid.NewString()

	err := s.db.QueryRowxContext(ctx,
		`INSERT INTO parents (id, name, email) VALUES ($1, $2, $3) RETURNING created_at`,
		id, p.Name, p.Email,
	).Scan(&p.CreatedAt)
	if err != nil {
		return "", mapErr(op, err)
	}

	p.ID = id
	return id, nil
}

func (s *Storage) GetParent(ctx context.Context, id string) (*models.Parent, error) {
	const op = "storage.postgres.GetParent"

	var p models.Parent
	if err := s.db.GetContext(ctx, &p, `SELECT id, name, email, created_at FROM parents WHERE id=$1`, id); err != nil {
		return nil, mapErr(op, err)
	}

	return &p, nil
}

func (s *Storage) ListParents(ctx context.Context) ([]*models.Parent, error) {
	const op = "storage.postgres.ListParents"

	parents := make([]*models.Parent, 0)
	if err := s.db.SelectContext(ctx, &parents, `SELECT id, name, email, created_at FROM parents ORDER BY created_at`); err != nil {
		return nil, mapErr(op, err)
	}

	return parents, nil
}

// #### students ####

func (s *Storage) CreateStudent(ctx context.Context, st *models.Student) (string, error) {
	const op = "storage.postgres.CreateStudent"

	id := uuid.NewString()

	err := s.db.QueryRowxContext(ctx,
		`INSERT INTO students (id, name, parent_id) VALUES ($1, $2, $3) RETURNING created_at`,
		id, st.Name, st.ParentID,
	).Scan(&st.CreatedAt)
	if err != nil {
		return "", mapErr(op, err)
	}

	st.ID = id
	return id, nil
}

func (s *Storage) GetStudent(ctx context.Context, id string) (*models.Student, error) {
	const op = "storage.postgres.GetStudent"

	var st models.Student
	if err := s.db.GetContext(ctx, &st, `SELECT id, name, parent_id, created_at FROM students WHERE id=$1`, id); err != nil {
		return nil, mapErr(op, err)
	}

	return &st, nil
}

func (s *Storage) ListStudents(ctx context.Context, parentID *string) ([]*models.Student, error) {
	const op = "storage.postgres.ListStudents"

	var w where
	if parentID != nil {
		w.add("parent_id=$%d", *parentID)
	}

	students := make([]*models.Student, 0)
	query := `SELECT id, name, parent_id, created_at FROM students` + w.String() + ` ORDER BY created_at`
	if err := s.db.SelectContext(ctx, &students, query, w.args...); err != nil {
		return nil, mapErr(op, err)
	}

	return students, nil
}

// #### tutors ####

func (s *Storage) CreateTutor(ctx context.Context, t *models.Tutor) (string, error) {
	const op = "storage.postgres.CreateTutor"

	id := uuid.NewString()

	err := s.db.QueryRowxContext(ctx,
		`INSERT INTO tutors (id, name, email) VALUES ($1, $2, $3) RETURNING created_at`,
		id, t.Name, t.Email,
	).Scan(&t.CreatedAt)
	if err != nil {
		return "", mapErr(op, err)
	}

	t.ID = id
	return id, nil
}

func (s *Storage) GetTutor(ctx context.Context, id string) (*models.Tutor, error) {
	const op = "storage.postgres.GetTutor"

	var t models.Tutor
	if err := s.db.GetContext(ctx, &t, `SELECT id, name, email, created_at FROM tutors WHERE id=$1`, id); err != nil {
		return nil, mapErr(op, err)
	}

	return &t, nil
}

func (s *Storage) ListTutors(ctx context.Context) ([]*models.Tutor, error) {
	const op = "storage.postgres.ListTutors"

	tutors := make([]*models.Tutor, 0)
	if err := s.db.SelectContext(ctx, &tutors, `SELECT id, name, email, created_at FROM tutors ORDER BY created_at`); err != nil {
		return nil, mapErr(op, err)
	}

	return tutors, nil
}
