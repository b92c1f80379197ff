package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/freelog/freelog/internal/calendar"
	finance "github.com/freelog/freelog/internal/finance/domain"
	"github.com/freelog/freelog/internal/money"
)

type paymentRepository struct {
	db *sql.DB
}

var _ finance.PaymentRepository = (*paymentRepository)(nil)

const paymentSelect = `SELECT pm.id, pm.owner_id, pm.project_id, p.name, pm.client_id, c.name, pm.amount_cents,
	pm.description, pm.status, pm.due_date, pm.paid_date, pm.created_at
	FROM payments pm
	JOIN projects p ON p.id = pm.project_id
	JOIN clients c ON c.id = pm.client_id`

func scanPayment(s scanner) (*finance.Payment, error) {
	var (
		p                    finance.Payment
		amount, due, created int64
		paid                 sql.NullInt64
	)
	if err := s.Scan(&p.ID, &p.OwnerID, &p.ProjectID, &p.ProjectName, &p.ClientID, &p.ClientName, &amount,
		&p.Description, &p.Status, &due, &paid, &created); err != nil {
		return nil, err
	}
	p.Amount = money.Cents(amount)
	p.DueDate = calendar.FromUnix(due)
	p.PaidDate = dateFrom(paid)
	p.CreatedAt = timeFrom(created)
	return &p, nil
}

func (r *paymentRepository) Create(ctx context.Context, p *finance.Payment) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO payments (id, owner_id, project_id, client_id, amount_cents, description, status, due_date, paid_date, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		p.ID, p.OwnerID, p.ProjectID, p.ClientID, int64(p.Amount), p.Description, string(p.Status),
		p.DueDate.Unix(), nullDate(p.PaidDate), p.CreatedAt.Unix(),
	)
	if err != nil {
		return fmt.Errorf("failed to insert payment: %w", err)
	}
	return nil
}

func (r *paymentRepository) FindByID(ctx context.Context, ownerID, id string) (*finance.Payment, error) {
	p, err := scanPayment(r.db.QueryRowContext(ctx, paymentSelect+` WHERE pm.owner_id = ? AND pm.id = ?`, ownerID, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, &finance.PaymentNotFoundError{ID: id}
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find payment: %w", err)
	}
	return p, nil
}

func (r *paymentRepository) List(ctx context.Context, ownerID string) ([]*finance.Payment, error) {
	return r.list(ctx, paymentSelect+` WHERE pm.owner_id = ? ORDER BY pm.due_date, pm.created_at`, ownerID)
}

func (r *paymentRepository) ListByClientEmail(ctx context.Context, email string) ([]*finance.Payment, error) {
	return r.list(ctx, paymentSelect+` WHERE c.email = ? ORDER BY pm.due_date, pm.created_at`, strings.ToLower(strings.TrimSpace(email)))
}

func (r *paymentRepository) MarkPaid(ctx context.Context, id string, date calendar.Date) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE payments SET status = ?, paid_date = ? WHERE id = ?`, string(finance.StatusPaid), date.Unix(), id)
	if err != nil {
		return fmt.Errorf("failed to mark payment paid: %w", err)
	}
	return requireAffected(res, &finance.PaymentNotFoundError{ID: id})
}

func (r *paymentRepository) list(ctx context.Context, query string, args ...any) ([]*finance.Payment, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list payments: %w", err)
	}
	defer func() { _ = rows.Close() }()

	out := []*finance.Payment{}
	for rows.Next() {
		p, err := scanPayment(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan payment: %w", err)
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list payments: %w", err)
	}
	return out, nil
}
