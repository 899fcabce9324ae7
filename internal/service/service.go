package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"tutor-billing/api"
	"tutor-billing/internal/idempotency"
	"tutor-billing/internal/models"
	"tutor-billing/internal/notify"
	"tutor-billing/pkg/response"
	"tutor-billing/pkg/sl"
)

type Service struct {
	store    Store
	keeper   idempotency.Keeper
	mailer   notify.Mailer
	log      *slog.Logger
	now      func() time.Time
	registry map[EntityKind]entityOps
}

func NewService(log *slog.Logger, store Store, keeper idempotency.Keeper, mailer notify.Mailer) *Service {
	s := &Service{
		store:  store,
		keeper: keeper,
		mailer: mailer,
		log:    log,
		now:    time.Now,
	}
	s.registry = s.buildRegistry()

	return s
}

type Store interface {
	// People
	CreateParent(ctx context.Context, p *models.Parent) (string, error)
	GetParent(ctx context.Context, id string) (*models.Parent, error)
	ListParents(ctx context.Context) ([]*models.Parent, error)
	CreateStudent(ctx context.Context, st *models.Student) (string, error)
	GetStudent(ctx context.Context, id string) (*models.Student, error)
	ListStudents(ctx context.Context, parentID *string) ([]*models.Student, error)
	CreateTutor(ctx context.Context, t *models.Tutor) (string, error)
	GetTutor(ctx context.Context, id string) (*models.Tutor, error)
	ListTutors(ctx context.Context) ([]*models.Tutor, error)

	// Lessons
	CreateLesson(ctx context.Context, l *models.Lesson) (string, error)
	GetLesson(ctx context.Context, id string) (*models.Lesson, error)
	FindLessons(ctx context.Context, f models.LessonFilter) ([]*models.Lesson, error)
	UpdateLesson(ctx context.Context, l *models.Lesson) error
	DeleteLesson(ctx context.Context, id string) error

	// Invoices
	CreateInvoice(ctx context.Context, inv *models.Invoice) (string, error)
	GetInvoice(ctx context.Context, id string) (*models.Invoice, error)
	FindInvoices(ctx context.Context, f models.InvoiceFilter) ([]*models.Invoice, error)
	UpdateInvoiceStatus(ctx context.Context, id string, status models.InvoiceStatus) error
	DeleteInvoice(ctx context.Context, id string) error

	// Security deposits
	CreateSecurityDeposit(ctx context.Context, d *models.SecurityDeposit) (string, error)
	GetSecurityDeposit(ctx context.Context, id string) (*models.SecurityDeposit, error)
	FindSecurityDeposits(ctx context.Context, f models.DepositFilter) ([]*models.SecurityDeposit, error)
	UpdateSecurityDepositStatus(ctx context.Context, id string, status models.DepositStatus) error
	DeleteSecurityDeposit(ctx context.Context, id string) error

	// Payouts
	CreateOrUpdatePayout(ctx context.Context, p *models.Payout) (string, error)
	GetPayout(ctx context.Context, id string) (*models.Payout, error)
	FindPayouts(ctx context.Context, f models.PayoutFilter) ([]*models.Payout, error)
	UpdatePayoutPenalty(ctx context.Context, p *models.Payout) error
	UpdatePayoutStatus(ctx context.Context, id string, status models.PayoutStatus, payoutDate *time.Time) error
	DeletePayout(ctx context.Context, id string) error
}

// rememberKey records the document created for an Idempotency-Key. A failure
// here does not undo the document, it only loses replay protection.
func (s *Service) rememberKey(ctx context.Context, scope string, key *string, id string) {
	if key == nil {
		return
	}

	if err := s.keeper.Remember(ctx, scope, *key, id); err != nil {
		s.log.Warn("Failed to remember idempotency key",
			slog.String("scope", scope),
			slog.String("resource_id", id),
			sl.Err(err),
		)
	}
}

func (s *Service) lookupKey(ctx context.Context, scope string, key *string) (string, bool, error) {
	if key == nil {
		return "", false, nil
	}

	id, ok, err := s.keeper.Lookup(ctx, scope, *key)
	if err != nil {
		return "", false, fmt.Errorf("%w: %v", response.ErrPersistence, err)
	}

	return id, ok, nil
}

func wrapNotFound(op string, err error) error {
	if errors.Is(err, response.ErrNotFound) {
		return fmt.Errorf("%s: %w", op, response.ErrNotFound)
	}
	return fmt.Errorf("%s: %w", op, err)
}

// People

func (s *Service) CreateParent(ctx context.Context, req *api.ParentRequest) (*api.ParentResponse, error) {
	const op = "service.CreateParent"

	parent := &models.Parent{Name: req.Name, Email: req.Email}

	id, err := s.store.CreateParent(ctx, parent)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return s.GetParent(ctx, id)
}

func (s *Service) GetParent(ctx context.Context, id string) (*api.ParentResponse, error) {
	const op = "service.GetParent"

	parent, err := s.store.GetParent(ctx, id)
	if err != nil {
		return nil, wrapNotFound(op, err)
	}

	return &api.ParentResponse{
		ID:        parent.ID,
		Name:      parent.Name,
		Email:     parent.Email,
		CreatedAt: parent.CreatedAt,
	}, nil
}

func (s *Service) ListParents(ctx context.Context) ([]*api.ParentResponse, error) {
	const op = "service.ListParents"

	parents, err := s.store.ListParents(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	result := make([]*api.ParentResponse, 0, len(parents))
	for _, p := range parents {
		result = append(result, &api.ParentResponse{
			ID:        p.ID,
			Name:      p.Name,
			Email:     p.Email,
			CreatedAt: p.CreatedAt,
		})
	}

	return result, nil
}

func (s *Service) CreateStudent(ctx context.Context, req *api.StudentRequest) (*api.StudentResponse, error) {
	const op = "service.CreateStudent"

	student := &models.Student{Name: req.Name, ParentID: req.ParentID}

	id, err := s.store.CreateStudent(ctx, student)
	if err != nil {
		return nil, wrapNotFound(op, err)
	}

	return s.GetStudent(ctx, id)
}

func (s *Service) GetStudent(ctx context.Context, id string) (*api.StudentResponse, error) {
	const op = "service.GetStudent"

	student, err := s.store.GetStudent(ctx, id)
	if err != nil {
		return nil, wrapNotFound(op, err)
	}

	return &api.StudentResponse{
		ID:        student.ID,
		Name:      student.Name,
		ParentID:  student.ParentID,
		CreatedAt: student.CreatedAt,
	}, nil
}

func (s *Service) ListStudents(ctx context.Context, parentID *string) ([]*api.StudentResponse, error) {
	const op = "service.ListStudents"

	students, err := s.store.ListStudents(ctx, parentID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	result := make([]*api.StudentResponse, 0, len(students))
	for _, st := range students {
		result = append(result, &api.StudentResponse{
			ID:        st.ID,
			Name:      st.Name,
			ParentID:  st.ParentID,
			CreatedAt: st.CreatedAt,
		})
	}

	return result, nil
}

func (s *Service) CreateTutor(ctx context.Context, req *api.TutorRequest) (*api.TutorResponse, error) {
	const op = "service.CreateTutor"

	tutor := &models.Tutor{Name: req.Name, Email: req.Email}

	id, err := s.store.CreateTutor(ctx, tutor)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return s.GetTutor(ctx, id)
}

func (s *Service) GetTutor(ctx context.Context, id string) (*api.TutorResponse, error) {
	const op = "service.GetTutor"

	tutor, err := s.store.GetTutor(ctx, id)
	if err != nil {
		return nil, wrapNotFound(op, err)
	}

	return &api.TutorResponse{
		ID:        tutor.ID,
		Name:      tutor.Name,
		Email:     tutor.Email,
		CreatedAt: tutor.CreatedAt,
	}, nil
}

func (s *Service) ListTutors(ctx context.Context) ([]*api.TutorResponse, error) {
	const op = "service.ListTutors"

	tutors, err := s.store.ListTutors(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	result := make([]*api.TutorResponse, 0, len(tutors))
	for _, t := range tutors {
		result = append(result, &api.TutorResponse{
			ID:        t.ID,
			Name:      t.Name,
			Email:     t.Email,
			CreatedAt: t.CreatedAt,
		})
	}

	return result, nil
}
