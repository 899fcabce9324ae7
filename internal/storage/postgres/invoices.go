package postgres

import (
	"context"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"tutor-billing/internal/models"
)

const invoiceColumns = `id, invoice_number, student_id, parent_id, subtotal, tax, total,
	status, period_year, period_month, created_at`

type invoiceLineRow struct {
	InvoiceID string `db:"invoice_id"`
	Position  int    `db:"position"`
	models.InvoiceLine
}

// #### invoices ####

func (s *Storage) CreateInvoice(ctx context.Context, inv *models.Invoice) (string, error) {
	const op = "storage.postgres.CreateInvoice"

	id := uuid.NewString()

	err := s.withTx(ctx, func(tx *sqlx.Tx) error {
		err := tx.QueryRowxContext(ctx,
			`INSERT INTO invoices
			(id, invoice_number, student_id, parent_id, subtotal, tax, total, status, period_year, period_month)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
			RETURNING created_at`,
			id,
			inv.InvoiceNumber,
			inv.StudentID,
			inv.ParentID,
			inv.Subtotal,
			inv.Tax,
			inv.Total,
			string(inv.Status),
			inv.Year,
			int(inv.Month),
		).Scan(&inv.CreatedAt)
		if err != nil {
			return err
		}

		for i, line := range inv.Lines {
			_, err := tx.ExecContext(ctx,
				`INSERT INTO invoice_lines (invoice_id, position, subject, rate, hours, amount)
				VALUES ($1, $2, $3, $4, $5, $6)`,
				id, i, line.Subject, line.Rate, line.Hours, line.Amount,
			)
			if err != nil {
				return err
			}
		}

		return nil
	})
	if err != nil {
		return "", mapErr(op, err)
	}

	inv.ID = id
	return id, nil
}

func (s *Storage) GetInvoice(ctx context.Context, id string) (*models.Invoice, error) {
	const op = "storage.postgres.GetInvoice"

	var inv models.Invoice
	if err := s.db.GetContext(ctx, &inv, `SELECT `+invoiceColumns+` FROM invoices WHERE id=$1`, id); err != nil {
		return nil, mapErr(op, err)
	}

	invoices := []*models.Invoice{&inv}
	if err := s.attachLines(ctx, invoices); err != nil {
		return nil, mapErr(op, err)
	}

	return &inv, nil
}

func (s *Storage) FindInvoices(ctx context.Context, f models.InvoiceFilter) ([]*models.Invoice, error) {
	const op = "storage.postgres.FindInvoices"

	var w where
	if f.StudentID != nil {
		w.add("student_id=$%d", *f.StudentID)
	}
	if f.ParentID != nil {
		w.add("parent_id=$%d", *f.ParentID)
	}
	if f.Status != nil {
		w.add("status=$%d", string(*f.Status))
	}
	if f.Year != nil {
		w.add("period_year=$%d", *f.Year)
	}
	if f.Month != nil {
		w.add("period_month=$%d", int(*f.Month))
	}

	invoices := make([]*models.Invoice, 0)
	query := `SELECT ` + invoiceColumns + ` FROM invoices` + w.String() + ` ORDER BY created_at`
	if err := s.db.SelectContext(ctx, &invoices, query, w.args...); err != nil {
		return nil, mapErr(op, err)
	}

	if err := s.attachLines(ctx, invoices); err != nil {
		return nil, mapErr(op, err)
	}

	return invoices, nil
}

func (s *Storage) attachLines(ctx context.Context, invoices []*models.Invoice) error {
	if len(invoices) == 0 {
		return nil
	}

	ids := make([]string, 0, len(invoices))
	byID := make(map[string]*models.Invoice, len(invoices))
	for _, inv := range invoices {
		ids = append(ids, inv.ID)
		byID[inv.ID] = inv
		inv.Lines = make([]models.InvoiceLine, 0)
	}

	var rows []invoiceLineRow
	err := s.db.SelectContext(ctx, &rows,
		`SELECT invoice_id, position, subject, rate, hours, amount
		FROM invoice_lines
		WHERE invoice_id = ANY($1)
		ORDER BY invoice_id, position`,
		pq.Array(ids),
	)
	if err != nil {
		return err
	}

	for _, row := range rows {
		inv := byID[row.InvoiceID]
		inv.Lines = append(inv.Lines, row.InvoiceLine)
	}

	return nil
}

func (s *Storage) UpdateInvoiceStatus(ctx context.Context, id string, status models.InvoiceStatus) error {
	const op = "storage.postgres.UpdateInvoiceStatus"

	res, err := s.db.ExecContext(ctx, `UPDATE invoices SET status=$1 WHERE id=$2`, string(status), id)
	if err != nil {
		return mapErr(op, err)
	}

	return expectAffected(op, res)
}

func (s *Storage) DeleteInvoice(ctx context.Context, id string) error {
	const op = "storage.postgres.DeleteInvoice"

	res, err := s.db.ExecContext(ctx, `DELETE FROM invoices WHERE id=$1`, id)
	if err != nil {
		return mapErr(op, err)
	}

	return expectAffected(op, res)
}

// #### security deposits ####

const depositColumns = `id, invoice_number, student_id, parent_id, amount, status, deposit_date, created_at`

func (s *Storage) CreateSecurityDeposit(ctx context.Context, d *models.SecurityDeposit) (string, error) {
	const op = "storage.postgres.CreateSecurityDeposit"

	id := uuid.NewString()

	err := s.db.QueryRowxContext(ctx,
		`INSERT INTO security_deposits
		(id, invoice_number, student_id, parent_id, amount, status, deposit_date)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING created_at`,
		id,
		d.InvoiceNumber,
		d.StudentID,
		d.ParentID,
		d.Amount,
		string(d.Status),
		d.Date,
	).Scan(&d.CreatedAt)
	if err != nil {
		return "", mapErr(op, err)
	}

	d.ID = id
	return id, nil
}

func (s *Storage) GetSecurityDeposit(ctx context.Context, id string) (*models.SecurityDeposit, error) {
	const op = "storage.postgres.GetSecurityDeposit"

	var d models.SecurityDeposit
	if err := s.db.GetContext(ctx, &d, `SELECT `+depositColumns+` FROM security_deposits WHERE id=$1`, id); err != nil {
		return nil, mapErr(op, err)
	}

	return &d, nil
}

func (s *Storage) FindSecurityDeposits(ctx context.Context, f models.DepositFilter) ([]*models.SecurityDeposit, error) {
	const op = "storage.postgres.FindSecurityDeposits"

	var w where
	if f.StudentID != nil {
		w.add("student_id=$%d", *f.StudentID)
	}
	if f.ParentID != nil {
		w.add("parent_id=$%d", *f.ParentID)
	}
	if f.Status != nil {
		w.add("status=$%d", string(*f.Status))
	}

	deposits := make([]*models.SecurityDeposit, 0)
	query := `SELECT ` + depositColumns + ` FROM security_deposits` + w.String() + ` ORDER BY created_at`
	if err := s.db.SelectContext(ctx, &deposits, query, w.args...); err != nil {
		return nil, mapErr(op, err)
	}

	return deposits, nil
}

func (s *Storage) UpdateSecurityDepositStatus(ctx context.Context, id string, status models.DepositStatus) error {
	const op = "storage.postgres.UpdateSecurityDepositStatus"

	res, err := s.db.ExecContext(ctx, `UPDATE security_deposits SET status=$1 WHERE id=$2`, string(status), id)
	if err != nil {
		return mapErr(op, err)
	}

	return expectAffected(op, res)
}

func (s *Storage) DeleteSecurityDeposit(ctx context.Context, id string) error {
	const op = "storage.postgres.DeleteSecurityDeposit"

	res, err := s.db.ExecContext(ctx, `DELETE FROM security_deposits WHERE id=$1`, id)
	if err != nil {
		return mapErr(op, err)
	}

	return expectAffected(op, res)
}
