package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"tutor-billing/internal/models"
	"tutor-billing/pkg/response"
)

// Storage keeps everything in process memory. It backs local runs without
// postgres and the service tests.
type Storage struct {
	mu sync.RWMutex

	parents  map[string]models.Parent
	students map[string]models.Student
	tutors   map[string]models.Tutor
	lessons  map[string]models.Lesson
	invoices map[string]models.Invoice
	deposits map[string]models.SecurityDeposit
	payouts  map[string]models.Payout

	now  func() time.Time
	last time.Time
}

func New() *Storage {
	return &Storage{
		parents:  make(map[string]models.Parent),
		students: make(map[string]models.Student),
		tutors:   make(map[string]models.Tutor),
		lessons:  make(map[string]models.Lesson),
		invoices: make(map[string]models.Invoice),
		deposits: make(map[string]models.SecurityDeposit),
		payouts:  make(map[string]models.Payout),
		now:      func() time.Time { return time.Now().UTC() },
	}
}

func (s *Storage) Close() error {
	return nil
}

// stamp hands out strictly increasing timestamps so listings have a
// stable creation order. Callers hold the write lock.
func (s *Storage) stamp() time.Time {
	t := s.now()
	if !t.After(s.last) {
		t = s.last.Add(time.Microsecond)
	}
	s.last = t
	return t
}

func notFound(op string) error {
	return fmt.Errorf("%s: %w", op, response.ErrNotFound)
}

func sortByCreated[T any](items []*T, created func(*T) time.Time) {
	sort.SliceStable(items, func(i, j int) bool {
		return created(items[i]).Before(created(items[j]))
	})
}

// #### people ####

func (s *Storage) CreateParent(ctx context.Context, p *models.Parent) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	p.ID = uuid.NewString()
	p.CreatedAt = s.stamp()
	s.parents[p.ID] = *p

	return p.ID, nil
}

func (s *Storage) GetParent(ctx context.Context, id string) (*models.Parent, error) {
	const op = "storage.memory.GetParent"

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.parents[id]
	if !ok {
		return nil, notFound(op)
	}

	return &p, nil
}

func (s *Storage) ListParents(ctx context.Context) ([]*models.Parent, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*models.Parent, 0, len(s.parents))
	for _, p := range s.parents {
		p := p
		out = append(out, &p)
	}
	sortByCreated(out, func(p *models.Parent) time.Time { return p.CreatedAt })

	return out, nil
}

func (s *Storage) CreateStudent(ctx context.Context, st *models.Student) (string, error) {
	const op = "storage.memory.CreateStudent"

	if err := ctx.Err(); err != nil {
		return "", err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.parents[st.ParentID]; !ok {
		return "", notFound(op)
	}

	st.ID = uuid.NewString()
	st.CreatedAt = s.stamp()
	s.students[st.ID] = *st

	return st.ID, nil
}

func (s *Storage) GetStudent(ctx context.Context, id string) (*models.Student, error) {
	const op = "storage.memory.GetStudent"

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	st, ok := s.students[id]
	if !ok {
		return nil, notFound(op)
	}

	return &st, nil
}

func (s *Storage) ListStudents(ctx context.Context, parentID *string) ([]*models.Student, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*models.Student, 0)
	for _, st := range s.students {
		if parentID != nil && st.ParentID != *parentID {
			continue
		}
		st := st
		out = append(out, &st)
	}
	sortByCreated(out, func(st *models.Student) time.Time { return st.CreatedAt })

	return out, nil
}

func (s *Storage) CreateTutor(ctx context.Context, t *models.Tutor) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	t.ID = uuid.NewString()
	t.CreatedAt = s.stamp()
	s.tutors[t.ID] = *t

	return t.ID, nil
}

func (s *Storage) GetTutor(ctx context.Context, id string) (*models.Tutor, error) {
	const op = "storage.memory.GetTutor"

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	t, ok := s.tutors[id]
	if !ok {
		return nil, notFound(op)
	}

	return &t, nil
}

func (s *Storage) ListTutors(ctx context.Context) ([]*models.Tutor, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*models.Tutor, 0, len(s.tutors))
	for _, t := range s.tutors {
		t := t
		out = append(out, &t)
	}
	sortByCreated(out, func(t *models.Tutor) time.Time { return t.CreatedAt })

	return out, nil
}

// #### lessons ####

func (s *Storage) CreateLesson(ctx context.Context, l *models.Lesson) (string, error) {
	const op = "storage.memory.CreateLesson"

	if err := ctx.Err(); err != nil {
		return "", err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.students[l.StudentID]; !ok {
		return "", notFound(op)
	}
	if _, ok := s.tutors[l.TutorID]; !ok {
		return "", notFound(op)
	}

	l.ID = uuid.NewString()
	l.CreatedAt = s.stamp()
	s.lessons[l.ID] = *l

	return l.ID, nil
}

func (s *Storage) GetLesson(ctx context.Context, id string) (*models.Lesson, error) {
	const op = "storage.memory.GetLesson"

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	l, ok := s.lessons[id]
	if !ok {
		return nil, notFound(op)
	}

	return &l, nil
}

// FindLessons returns matching lessons ordered by start time, then by
// creation. The date range is half-open: From <= start < To.
func (s *Storage) FindLessons(ctx context.Context, f models.LessonFilter) ([]*models.Lesson, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*models.Lesson, 0)
	for _, l := range s.lessons {
		if f.StudentID != nil && l.StudentID != *f.StudentID {
			continue
		}
		if f.TutorID != nil && l.TutorID != *f.TutorID {
			continue
		}
		if f.From != nil && l.StartTime.Before(*f.From) {
			continue
		}
		if f.To != nil && !l.StartTime.Before(*f.To) {
			continue
		}
		l := l
		out = append(out, &l)
	}

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].StartTime.Equal(out[j].StartTime) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].StartTime.Before(out[j].StartTime)
	})

	return out, nil
}

func (s *Storage) UpdateLesson(ctx context.Context, l *models.Lesson) error {
	const op = "storage.memory.UpdateLesson"

	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	cur, ok := s.lessons[l.ID]
	if !ok {
		return notFound(op)
	}

	l.CreatedAt = cur.CreatedAt
	s.lessons[l.ID] = *l

	return nil
}

func (s *Storage) DeleteLesson(ctx context.Context, id string) error {
	const op = "storage.memory.DeleteLesson"

	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.lessons[id]; !ok {
		return notFound(op)
	}
	delete(s.lessons, id)

	return nil
}

// #### invoices ####

func (s *Storage) CreateInvoice(ctx context.Context, inv *models.Invoice) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	inv.ID = uuid.NewString()
	inv.CreatedAt = s.stamp()
	stored := *inv
	stored.Lines = append([]models.InvoiceLine(nil), inv.Lines...)
	s.invoices[inv.ID] = stored

	return inv.ID, nil
}

func (s *Storage) GetInvoice(ctx context.Context, id string) (*models.Invoice, error) {
	const op = "storage.memory.GetInvoice"

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	inv, ok := s.invoices[id]
	if !ok {
		return nil, notFound(op)
	}
	inv.Lines = append([]models.InvoiceLine(nil), inv.Lines...)

	return &inv, nil
}

func (s *Storage) FindInvoices(ctx context.Context, f models.InvoiceFilter) ([]*models.Invoice, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*models.Invoice, 0)
	for _, inv := range s.invoices {
		if f.StudentID != nil && inv.StudentID != *f.StudentID {
			continue
		}
		if f.ParentID != nil && inv.ParentID != *f.ParentID {
			continue
		}
		if f.Status != nil && inv.Status != *f.Status {
			continue
		}
		if f.Year != nil && inv.Year != *f.Year {
			continue
		}
		if f.Month != nil && inv.Month != *f.Month {
			continue
		}
		inv := inv
		inv.Lines = append([]models.InvoiceLine(nil), inv.Lines...)
		out = append(out, &inv)
	}
	sortByCreated(out, func(inv *models.Invoice) time.Time { return inv.CreatedAt })

	return out, nil
}

func (s *Storage) UpdateInvoiceStatus(ctx context.Context, id string, status models.InvoiceStatus) error {
	const op = "storage.memory.UpdateInvoiceStatus"

	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	inv, ok := s.invoices[id]
	if !ok {
		return notFound(op)
	}
	inv.Status = status
	s.invoices[id] = inv

	return nil
}

func (s *Storage) DeleteInvoice(ctx context.Context, id string) error {
	const op = "storage.memory.DeleteInvoice"

	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.invoices[id]; !ok {
		return notFound(op)
	}
	delete(s.invoices, id)

	return nil
}

// #### security deposits ####

func (s *Storage) CreateSecurityDeposit(ctx context.Context, d *models.SecurityDeposit) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	d.ID = uuid.NewString()
	d.CreatedAt = s.stamp()
	s.deposits[d.ID] = *d

	return d.ID, nil
}

func (s *Storage) GetSecurityDeposit(ctx context.Context, id string) (*models.SecurityDeposit, error) {
	const op = "storage.memory.GetSecurityDeposit"

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	d, ok := s.deposits[id]
	if !ok {
		return nil, notFound(op)
	}

	return &d, nil
}

func (s *Storage) FindSecurityDeposits(ctx context.Context, f models.DepositFilter) ([]*models.SecurityDeposit, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*models.SecurityDeposit, 0)
	for _, d := range s.deposits {
		if f.StudentID != nil && d.StudentID != *f.StudentID {
			continue
		}
		if f.ParentID != nil && d.ParentID != *f.ParentID {
			continue
		}
		if f.Status != nil && d.Status != *f.Status {
			continue
		}
		d := d
		out = append(out, &d)
	}
	sortByCreated(out, func(d *models.SecurityDeposit) time.Time { return d.CreatedAt })

	return out, nil
}

func (s *Storage) UpdateSecurityDepositStatus(ctx context.Context, id string, status models.DepositStatus) error {
	const op = "storage.memory.UpdateSecurityDepositStatus"

	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	d, ok := s.deposits[id]
	if !ok {
		return notFound(op)
	}
	d.Status = status
	s.deposits[id] = d

	return nil
}

func (s *Storage) DeleteSecurityDeposit(ctx context.Context, id string) error {
	const op = "storage.memory.DeleteSecurityDeposit"

	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.deposits[id]; !ok {
		return notFound(op)
	}
	delete(s.deposits, id)

	return nil
}

// #### payouts ####

// CreateOrUpdatePayout upserts on (tutor, period). An existing payout keeps
// its id, status and payout date; totals and penalty fields are replaced.
func (s *Storage) CreateOrUpdatePayout(ctx context.Context, p *models.Payout) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.stamp()
	for id, cur := range s.payouts {
		if cur.TutorID == p.TutorID && cur.Year == p.Year && cur.Month == p.Month {
			cur.TotalEarning = p.TotalEarning
			cur.PayoutAmount = p.PayoutAmount
			cur.PenaltyPercentage = p.PenaltyPercentage
			cur.PenaltyReason = p.PenaltyReason
			cur.UpdatedAt = now
			s.payouts[id] = cur
			return id, nil
		}
	}

	p.ID = uuid.NewString()
	p.CreatedAt = now
	p.UpdatedAt = now
	s.payouts[p.ID] = *p

	return p.ID, nil
}

func (s *Storage) GetPayout(ctx context.Context, id string) (*models.Payout, error) {
	const op = "storage.memory.GetPayout"

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.payouts[id]
	if !ok {
		return nil, notFound(op)
	}

	return &p, nil
}

func (s *Storage) FindPayouts(ctx context.Context, f models.PayoutFilter) ([]*models.Payout, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*models.Payout, 0)
	for _, p := range s.payouts {
		if f.TutorID != nil && p.TutorID != *f.TutorID {
			continue
		}
		if f.Status != nil && p.Status != *f.Status {
			continue
		}
		if f.Year != nil && p.Year != *f.Year {
			continue
		}
		if f.Month != nil && p.Month != *f.Month {
			continue
		}
		p := p
		out = append(out, &p)
	}
	sortByCreated(out, func(p *models.Payout) time.Time { return p.CreatedAt })

	return out, nil
}

func (s *Storage) UpdatePayoutPenalty(ctx context.Context, p *models.Payout) error {
	const op = "storage.memory.UpdatePayoutPenalty"

	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	cur, ok := s.payouts[p.ID]
	if !ok {
		return notFound(op)
	}
	cur.PayoutAmount = p.PayoutAmount
	cur.PenaltyPercentage = p.PenaltyPercentage
	cur.PenaltyReason = p.PenaltyReason
	cur.UpdatedAt = s.stamp()
	s.payouts[p.ID] = cur

	return nil
}

func (s *Storage) UpdatePayoutStatus(ctx context.Context, id string, status models.PayoutStatus, payoutDate *time.Time) error {
	const op = "storage.memory.UpdatePayoutStatus"

	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.payouts[id]
	if !ok {
		return notFound(op)
	}
	p.Status = status
	if payoutDate != nil {
		d := *payoutDate
		p.PayoutDate = &d
	}
	p.UpdatedAt = s.stamp()
	s.payouts[id] = p

	return nil
}

func (s *Storage) DeletePayout(ctx context.Context, id string) error {
	const op = "storage.memory.DeletePayout"

	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.payouts[id]; !ok {
		return notFound(op)
	}
	delete(s.payouts, id)

	return nil
}
