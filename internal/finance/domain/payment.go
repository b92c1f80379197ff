// Package domain holds payments and the budget summaries built from them.
package domain

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/freelog/freelog/internal/calendar"
	"github.com/freelog/freelog/internal/money"
	"github.com/freelog/freelog/internal/validation"
)

// PaymentStatus is whether a payment has been received.
type PaymentStatus string

const (
	StatusPaid     PaymentStatus = "paid"
	StatusToBePaid PaymentStatus = "to-be-paid"
)

// ParsePaymentStatus validates a payment status string.
func ParsePaymentStatus(s string) (PaymentStatus, error) {
	switch PaymentStatus(s) {
	case StatusPaid, StatusToBePaid:
		return PaymentStatus(s), nil
	default:
		return "", fmt.Errorf("invalid payment status %q", s)
	}
}

// Payment is an amount owed by a client against one project.
type Payment struct {
	ID          string        `json:"id"`
	OwnerID     string        `json:"owner_id"`
	ProjectID   string        `json:"project_id"`
	ProjectName string        `json:"project_name,omitempty"`
	ClientID    string        `json:"client_id"`
	ClientName  string        `json:"client_name,omitempty"`
	Amount      money.Cents   `json:"amount"`
	Description string        `json:"description"`
	Status      PaymentStatus `json:"status"`
	DueDate     calendar.Date `json:"due_date"`
	PaidDate    calendar.Date `json:"paid_date"`
	CreatedAt   time.Time     `json:"created_at"`
}

// MarkPaid records that the payment was received on date.
func (p *Payment) MarkPaid(date calendar.Date) error {
	if date.IsZero() {
		return &validation.Error{Fields: map[string]string{"paid_date": "Paid date is required"}}
	}
	p.Status = StatusPaid
	p.PaidDate = date
	return nil
}

// NewPaymentInput is the payment form.
type NewPaymentInput struct {
	ProjectID   string        `json:"project_id"`
	Amount      money.Cents   `json:"amount"`
	Description string        `json:"description"`
	Status      PaymentStatus `json:"status"`
	DueDate     calendar.Date `json:"due_date"`
	PaidDate    calendar.Date `json:"paid_date"`
}

// Validate checks the payment form. A paid date is only required, and only
// kept, when the payment is already paid.
func (in NewPaymentInput) Validate() error {
	var v validation.Errors
	if strings.TrimSpace(in.ProjectID) == "" {
		v.Add("project_id", "Please select a project")
	}
	switch {
	case in.Amount <= 0:
		v.Add("amount", "Amount must be a valid positive number")
	case in.Amount > money.Max:
		v.Add("amount", "Amount must be at most "+money.Max.String())
	}
	if strings.TrimSpace(in.Description) == "" {
		v.Add("description", "Description is required")
	}
	if in.DueDate.IsZero() {
		v.Add("due_date", "Due date is required")
	}
	switch in.Status {
	case "", StatusToBePaid:
	case StatusPaid:
		if in.PaidDate.IsZero() {
			v.Add("paid_date", "Paid date is required")
		}
	default:
		v.Add("status", fmt.Sprintf("invalid payment status %q", in.Status))
	}
	return v.Err()
}

// Build returns the payment described by the form for the given project.
func (in NewPaymentInput) Build(id, ownerID, clientID string, now time.Time) *Payment {
	p := &Payment{
		ID:          id,
		OwnerID:     ownerID,
		ProjectID:   in.ProjectID,
		ClientID:    clientID,
		Amount:      in.Amount,
		Description: strings.TrimSpace(in.Description),
		Status:      StatusToBePaid,
		DueDate:     in.DueDate,
		CreatedAt:   now,
	}
	if in.Status == StatusPaid {
		p.Status = StatusPaid
		p.PaidDate = in.PaidDate
	}
	return p
}

// PaymentNotFoundError indicates that no payment with the ID is visible to the caller.
type PaymentNotFoundError struct {
	ID string
}

// Error implements the error interface.
func (e *PaymentNotFoundError) Error() string {
	return fmt.Sprintf("payment not found: id=%q", e.ID)
}

// PaymentRepository persists payments.
type PaymentRepository interface {
	Create(ctx context.Context, p *Payment) error
	FindByID(ctx context.Context, ownerID, id string) (*Payment, error)
	List(ctx context.Context, ownerID string) ([]*Payment, error)
	ListByClientEmail(ctx context.Context, email string) ([]*Payment, error)
	MarkPaid(ctx context.Context, id string, date calendar.Date) error
}
