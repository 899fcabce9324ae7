package service

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tutor-billing/api"
	"tutor-billing/internal/notify"
	"tutor-billing/internal/storage/memory"
	"tutor-billing/pkg/response"
)

type fakeMailer struct {
	mu   sync.Mutex
	sent []notify.Message
	err  error
}

func (m *fakeMailer) Send(_ context.Context, msg notify.Message) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.err != nil {
		return m.err
	}
	m.sent = append(m.sent, msg)
	return nil
}

type fakeKeeper struct {
	keys map[string]string
}

func newFakeKeeper() *fakeKeeper {
	return &fakeKeeper{keys: make(map[string]string)}
}

func (k *fakeKeeper) Lookup(_ context.Context, scope, key string) (string, bool, error) {
	id, ok := k.keys[scope+":"+key]
	return id, ok, nil
}

func (k *fakeKeeper) Remember(_ context.Context, scope, key, id string) error {
	if _, ok := k.keys[scope+":"+key]; !ok {
		k.keys[scope+":"+key] = id
	}
	return nil
}

type fixture struct {
	svc     *Service
	store   *memory.Storage
	mailer  *fakeMailer
	keeper  *fakeKeeper
	parent  *api.ParentResponse
	student *api.StudentResponse
	tutor   *api.TutorResponse
}

var fixedNow = time.Date(2024, time.April, 10, 9, 30, 0, 0, time.UTC)

func setup(t *testing.T) *fixture {
	t.Helper()

	ctx := context.Background()
	store := memory.New()
	mailer := &fakeMailer{}
	keeper := newFakeKeeper()
	log := slog.New(slog.NewTextHandler(io.Discard, nil))

	svc := NewService(log, store, keeper, mailer)
	svc.now = func() time.Time { return fixedNow }

	parent, err := svc.CreateParent(ctx, &api.ParentRequest{Name: "Jane Doe", Email: "jane@example.com"})
	require.NoError(t, err)
	student, err := svc.CreateStudent(ctx, &api.StudentRequest{Name: "Tim Doe", ParentID: parent.ID})
	require.NoError(t, err)
	tutor, err := svc.CreateTutor(ctx, &api.TutorRequest{Name: "Ann Smith", Email: "ann@example.com"})
	require.NoError(t, err)

	return &fixture{
		svc:     svc,
		store:   store,
		mailer:  mailer,
		keeper:  keeper,
		parent:  parent,
		student: student,
		tutor:   tutor,
	}
}

func (f *fixture) logLesson(t *testing.T, subject, start string, minutes int, rate string) *api.LessonResponse {
	t.Helper()

	l, err := f.svc.CreateLesson(context.Background(), &api.LessonRequest{
		StudentID:       f.student.ID,
		TutorID:         f.tutor.ID,
		Subject:         subject,
		StartTime:       start,
		DurationMinutes: minutes,
		HourlyRate:      decimal.RequireFromString(rate),
	})
	require.NoError(t, err)
	return l
}

func TestCreateLesson(t *testing.T) {
	f := setup(t)

	l := f.logLesson(t, "Math", "2024-03-05T15:00:00Z", 50, "45")
	assert.Equal(t, "37.50", l.TotalAmount)
	assert.Equal(t, "45.00", l.HourlyRate)

	got, err := f.svc.GetLesson(context.Background(), l.ID)
	require.NoError(t, err)
	assert.Equal(t, l.ID, got.ID)
}

func TestCreateLesson_Validation(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	cases := []struct {
		name string
		req  api.LessonRequest
		want error
	}{
		{
			name: "negative duration",
			req: api.LessonRequest{StudentID: f.student.ID, TutorID: f.tutor.ID, Subject: "Math",
				StartTime: "2024-03-05T15:00:00Z", DurationMinutes: -1, HourlyRate: decimal.NewFromInt(40)},
			want: response.ErrValidation,
		},
		{
			name: "negative rate",
			req: api.LessonRequest{StudentID: f.student.ID, TutorID: f.tutor.ID, Subject: "Math",
				StartTime: "2024-03-05T15:00:00Z", DurationMinutes: 60, HourlyRate: decimal.NewFromInt(-5)},
			want: response.ErrValidation,
		},
		{
			name: "bad start time",
			req: api.LessonRequest{StudentID: f.student.ID, TutorID: f.tutor.ID, Subject: "Math",
				StartTime: "tomorrow", DurationMinutes: 60, HourlyRate: decimal.NewFromInt(40)},
			want: response.ErrValidation,
		},
		{
			name: "unknown student",
			req: api.LessonRequest{StudentID: "nope", TutorID: f.tutor.ID, Subject: "Math",
				StartTime: "2024-03-05T15:00:00Z", DurationMinutes: 60, HourlyRate: decimal.NewFromInt(40)},
			want: response.ErrNotFound,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := f.svc.CreateLesson(ctx, &tc.req)
			assert.ErrorIs(t, err, tc.want)
		})
	}
}

func TestUpdateLesson_RecomputesTotal(t *testing.T) {
	f := setup(t)
	l := f.logLesson(t, "Math", "2024-03-05T15:00:00Z", 60, "40")

	updated, err := f.svc.UpdateLesson(context.Background(), l.ID, &api.LessonUpdateRequest{
		Subject:         "Physics",
		StartTime:       "2024-03-06T15:00:00Z",
		DurationMinutes: 90,
		HourlyRate:      decimal.NewFromInt(40),
		Notes:           "moved",
	})
	require.NoError(t, err)
	assert.Equal(t, "Physics", updated.Subject)
	assert.Equal(t, "60.00", updated.TotalAmount)
	assert.Equal(t, "moved", updated.Notes)
}

func TestPreviewInvoice(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	f.logLesson(t, "Math", "2024-03-01T00:00:00Z", 50, "45")
	f.logLesson(t, "Physics", "2024-03-12T16:00:00Z", 90, "40")
	// first instant of April belongs to April
	f.logLesson(t, "Math", "2024-04-01T00:00:00Z", 600, "45")

	inv, err := f.svc.PreviewInvoice(ctx, f.student.ID, 2024, 3)
	require.NoError(t, err)

	require.Len(t, inv.Lines, 2)
	assert.Equal(t, "Math", inv.Lines[0].Subject)
	assert.Equal(t, "0.8", inv.Lines[0].Hours)
	assert.Equal(t, "36.00", inv.Lines[0].Amount)
	assert.Equal(t, "60.00", inv.Lines[1].Amount)
	assert.Equal(t, "96.00", inv.Subtotal)
	assert.Equal(t, "5.76", inv.Tax)
	assert.Equal(t, "101.76", inv.Total)
	assert.Equal(t, "unpaid", inv.Status)
	assert.Equal(t, f.parent.ID, inv.ParentID)
	assert.Empty(t, inv.ID)

	stored, err := f.svc.ListInvoices(ctx, &InvoiceFilters{})
	require.NoError(t, err)
	assert.Empty(t, stored, "preview must not persist")
}

func TestPreviewInvoice_EmptyMonth(t *testing.T) {
	f := setup(t)

	inv, err := f.svc.PreviewInvoice(context.Background(), f.student.ID, 2024, 6)
	require.NoError(t, err)
	assert.Empty(t, inv.Lines)
	assert.Equal(t, "0.00", inv.Total)
}

func TestPreviewInvoice_Errors(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	_, err := f.svc.PreviewInvoice(ctx, "missing", 2024, 3)
	assert.ErrorIs(t, err, response.ErrNotFound)

	_, err = f.svc.PreviewInvoice(ctx, f.student.ID, 2024, 13)
	assert.ErrorIs(t, err, response.ErrValidation)
}

func TestSaveAndSendInvoice(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	f.logLesson(t, "Math", "2024-03-05T15:00:00Z", 60, "40")

	inv, err := f.svc.SaveAndSendInvoice(ctx, &api.InvoiceRequest{StudentID: f.student.ID, Year: 2024, Month: 3}, nil)
	require.NoError(t, err)
	assert.NotEmpty(t, inv.ID)
	assert.NotNil(t, inv.CreatedAt)
	assert.Equal(t, "42.40", inv.Total)

	require.Len(t, f.mailer.sent, 1)
	assert.Equal(t, "jane@example.com", f.mailer.sent[0].To.Address)
	assert.Contains(t, f.mailer.sent[0].Subject, inv.InvoiceNumber)
	assert.Equal(t, inv.ID, f.mailer.sent[0].Ref)
	require.NotNil(t, inv.CreatedAt)
	assert.Contains(t, f.mailer.sent[0].Text, "Issued: "+inv.CreatedAt.Format("2006-01-02"))
	assert.NotContains(t, f.mailer.sent[0].Text, "0001-01-01")
}

func TestSaveAndSendInvoice_NotificationFailureKeepsInvoice(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	f.logLesson(t, "Math", "2024-03-05T15:00:00Z", 60, "40")
	f.mailer.err = errors.New("smtp down")

	inv, err := f.svc.SaveAndSendInvoice(ctx, &api.InvoiceRequest{StudentID: f.student.ID, Year: 2024, Month: 3}, nil)
	require.ErrorIs(t, err, response.ErrExternalService)
	require.NotNil(t, inv)

	stored, err := f.svc.GetInvoice(ctx, inv.ID)
	require.NoError(t, err)
	assert.Equal(t, inv.InvoiceNumber, stored.InvoiceNumber)
}

func TestSaveAndSendInvoice_IdempotencyKeyReplays(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	f.logLesson(t, "Math", "2024-03-05T15:00:00Z", 60, "40")
	key := "retry-1"
	req := &api.InvoiceRequest{StudentID: f.student.ID, Year: 2024, Month: 3}

	first, err := f.svc.SaveAndSendInvoice(ctx, req, &key)
	require.NoError(t, err)
	second, err := f.svc.SaveAndSendInvoice(ctx, req, &key)
	require.NoError(t, err)

	assert.Equal(t, first.ID, second.ID)
	assert.Len(t, f.mailer.sent, 1)

	all, err := f.svc.ListInvoices(ctx, &InvoiceFilters{})
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestUpdateInvoiceStatus(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	inv, err := f.svc.SaveAndSendInvoice(ctx, &api.InvoiceRequest{StudentID: f.student.ID, Year: 2024, Month: 3}, nil)
	require.NoError(t, err)

	for i := 0; i < 2; i++ {
		got, err := f.svc.UpdateInvoiceStatus(ctx, inv.ID, "paid")
		require.NoError(t, err)
		assert.Equal(t, "paid", got.Status)
	}

	_, err = f.svc.UpdateInvoiceStatus(ctx, inv.ID, "refunded")
	assert.ErrorIs(t, err, response.ErrValidation)

	_, err = f.svc.UpdateInvoiceStatus(ctx, "missing", "paid")
	assert.ErrorIs(t, err, response.ErrNotFound)

	status := "paid"
	paid, err := f.svc.ListInvoices(ctx, &InvoiceFilters{Status: &status})
	require.NoError(t, err)
	assert.Len(t, paid, 1)

	require.NoError(t, f.svc.DeleteInvoice(ctx, inv.ID))
	assert.ErrorIs(t, f.svc.DeleteInvoice(ctx, inv.ID), response.ErrNotFound)
}

func TestCreateSecurityDeposit(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	dep, err := f.svc.CreateSecurityDeposit(ctx, &api.DepositRequest{
		StudentID: f.student.ID,
		Amount:    decimal.NewFromInt(200),
	}, nil)
	require.NoError(t, err)

	assert.Equal(t, "draft", dep.Status)
	assert.Equal(t, "200.00", dep.Amount)
	assert.Equal(t, "2024-04-10", dep.Date)
	assert.Equal(t, f.parent.ID, dep.ParentID)
	require.Len(t, f.mailer.sent, 1)
	assert.Equal(t, dep.ID, f.mailer.sent[0].Ref)

	got, err := f.svc.UpdateSecurityDepositStatus(ctx, dep.ID, "paid")
	require.NoError(t, err)
	assert.Equal(t, "paid", got.Status)
}

func TestCreateSecurityDeposit_Validation(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	_, err := f.svc.CreateSecurityDeposit(ctx, &api.DepositRequest{StudentID: f.student.ID, Amount: decimal.Zero}, nil)
	assert.ErrorIs(t, err, response.ErrValidation)

	_, err = f.svc.CreateSecurityDeposit(ctx, &api.DepositRequest{
		StudentID: f.student.ID, Amount: decimal.NewFromInt(10), Date: "10/04/2024",
	}, nil)
	assert.ErrorIs(t, err, response.ErrValidation)

	deps, err := f.svc.ListSecurityDeposits(ctx, &DepositFilters{})
	require.NoError(t, err)
	assert.Empty(t, deps)
}

func TestGeneratePayout(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	f.logLesson(t, "Math", "2024-03-05T15:00:00Z", 60, "40")
	f.logLesson(t, "Math", "2024-03-07T15:00:00Z", 90, "40")
	f.logLesson(t, "Math", "2024-02-28T15:00:00Z", 60, "40")

	p, err := f.svc.GeneratePayout(ctx, &api.PayoutGenerateRequest{TutorID: f.tutor.ID, Year: 2024, Month: 3})
	require.NoError(t, err)

	assert.Equal(t, "100.00", p.TotalEarning)
	assert.Equal(t, "75.00", p.PayoutAmount)
	assert.Equal(t, "Pending", p.Status)
	assert.Nil(t, p.PayoutDate)
}

func TestApplyPenalty_CompoundsAndPersists(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	// 160 minutes at 50/h earns 133.33; 75% of it is 99.9975
	f.logLesson(t, "Math", "2024-03-05T15:00:00Z", 160, "50")

	p, err := f.svc.GeneratePayout(ctx, &api.PayoutGenerateRequest{TutorID: f.tutor.ID, Year: 2024, Month: 3})
	require.NoError(t, err)

	_, err = f.svc.ApplyPenalty(ctx, p.ID, &api.PenaltyRequest{Percentage: decimal.NewFromInt(10), Reason: "late"})
	require.NoError(t, err)
	_, err = f.svc.ApplyPenalty(ctx, p.ID, &api.PenaltyRequest{Percentage: decimal.NewFromInt(10), Reason: "  late again "})
	require.NoError(t, err)

	stored, err := f.store.GetPayout(ctx, p.ID)
	require.NoError(t, err)
	assert.True(t, decimal.RequireFromString("80.997975").Equal(stored.PayoutAmount), stored.PayoutAmount.String())
	assert.Equal(t, "late again", stored.PenaltyReason)
}

func TestApplyPenalty_InvalidInputLeavesPayout(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	f.logLesson(t, "Math", "2024-03-05T15:00:00Z", 60, "40")

	p, err := f.svc.GeneratePayout(ctx, &api.PayoutGenerateRequest{TutorID: f.tutor.ID, Year: 2024, Month: 3})
	require.NoError(t, err)

	_, err = f.svc.ApplyPenalty(ctx, p.ID, &api.PenaltyRequest{Percentage: decimal.NewFromInt(10), Reason: "   "})
	assert.ErrorIs(t, err, response.ErrValidation)
	_, err = f.svc.ApplyPenalty(ctx, p.ID, &api.PenaltyRequest{Percentage: decimal.Zero, Reason: "late"})
	assert.ErrorIs(t, err, response.ErrValidation)
	_, err = f.svc.ApplyPenalty(ctx, p.ID, &api.PenaltyRequest{Percentage: decimal.NewFromInt(150), Reason: "late"})
	assert.ErrorIs(t, err, response.ErrValidation)

	got, err := f.svc.GetPayout(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, "30.00", got.PayoutAmount)
	assert.Empty(t, got.PenaltyReason)

	_, err = f.svc.ApplyPenalty(ctx, "missing", &api.PenaltyRequest{Percentage: decimal.NewFromInt(10), Reason: "late"})
	assert.ErrorIs(t, err, response.ErrNotFound)
}

func TestGeneratePayout_RegenerationResetsPenaltyKeepsStatus(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	f.logLesson(t, "Math", "2024-03-05T15:00:00Z", 60, "40")
	req := &api.PayoutGenerateRequest{TutorID: f.tutor.ID, Year: 2024, Month: 3}

	p, err := f.svc.GeneratePayout(ctx, req)
	require.NoError(t, err)
	_, err = f.svc.ApplyPenalty(ctx, p.ID, &api.PenaltyRequest{Percentage: decimal.NewFromInt(50), Reason: "no-show"})
	require.NoError(t, err)
	_, err = f.svc.UpdatePayoutStatus(ctx, p.ID, "In Process")
	require.NoError(t, err)

	f.logLesson(t, "Math", "2024-03-06T15:00:00Z", 60, "40")
	again, err := f.svc.GeneratePayout(ctx, req)
	require.NoError(t, err)

	assert.Equal(t, p.ID, again.ID)
	assert.Equal(t, "80.00", again.TotalEarning)
	assert.Equal(t, "60.00", again.PayoutAmount)
	assert.Equal(t, "0", again.PenaltyPercentage)
	assert.Empty(t, again.PenaltyReason)
	assert.Equal(t, "In Process", again.Status)

	all, err := f.svc.ListPayouts(ctx, &PayoutFilters{TutorID: &f.tutor.ID})
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestUpdatePayoutStatus(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	p, err := f.svc.GeneratePayout(ctx, &api.PayoutGenerateRequest{TutorID: f.tutor.ID, Year: 2024, Month: 3})
	require.NoError(t, err)

	// any transition is allowed, including backwards
	for _, st := range []string{"Completed", "Pending", "Completed"} {
		got, err := f.svc.UpdatePayoutStatus(ctx, p.ID, st)
		require.NoError(t, err)
		assert.Equal(t, st, got.Status)
	}

	got, err := f.svc.GetPayout(ctx, p.ID)
	require.NoError(t, err)
	require.NotNil(t, got.PayoutDate)
	assert.True(t, fixedNow.Equal(*got.PayoutDate))

	_, err = f.svc.UpdatePayoutStatus(ctx, p.ID, "Done")
	assert.ErrorIs(t, err, response.ErrValidation)

	_, err = f.svc.UpdatePayoutStatus(ctx, "missing", "Completed")
	assert.ErrorIs(t, err, response.ErrNotFound)
}

func TestEntityRegistry(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	l := f.logLesson(t, "Math", "2024-03-05T15:00:00Z", 60, "40")

	v, err := f.svc.GetEntity(ctx, "lesson", l.ID)
	require.NoError(t, err)
	assert.IsType(t, &api.LessonResponse{}, v)

	_, err = f.svc.GetEntity(ctx, "classroom", l.ID)
	assert.ErrorIs(t, err, response.ErrValidation)

	require.NoError(t, f.svc.DeleteEntity(ctx, "lesson", l.ID))
	assert.ErrorIs(t, f.svc.DeleteEntity(ctx, "lesson", l.ID), response.ErrNotFound)
	assert.ErrorIs(t, f.svc.DeleteEntity(ctx, "payout", "missing"), response.ErrNotFound)
}

func TestTutorEarnings(t *testing.T) {
	f := setup(t)
	f.logLesson(t, "Math", "2024-03-05T15:00:00Z", 60, "40")
	f.logLesson(t, "Physics", "2024-03-06T15:00:00Z", 30, "60")
	f.logLesson(t, "Math", "2024-03-07T15:00:00Z", 30, "40")

	e, err := f.svc.TutorEarnings(context.Background(), f.tutor.ID, 2024, 3)
	require.NoError(t, err)

	require.Len(t, e.Subjects, 2)
	assert.Equal(t, "Math", e.Subjects[0].Subject)
	assert.Equal(t, 2, e.Subjects[0].Lessons)
	assert.Equal(t, 90, e.Subjects[0].TotalDurationMinutes)
	assert.Equal(t, "60.00", e.Subjects[0].TotalAmount)
	assert.Equal(t, "90.00", e.TotalEarning)
	assert.Equal(t, "67.50", e.PayoutAmount)
	assert.Equal(t, "22.50", e.PlatformFee)
}
