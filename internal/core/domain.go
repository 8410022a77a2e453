package core

import (
	"errors"
	"strings"
	"time"
)

const (
	TypeIncome       = "income"
	TypeExpense      = "expense"
	TypeCompensation = "compensation"
	TypeSavings      = "savings"
	TypeInvestment   = "investment"
)

const (
	Debit  Direction = "debit"
	Credit Direction = "credit"
)

// MaxNoteLength bounds the free-text note on a transaction.
const MaxNoteLength = 500

type (
	Direction string

	Date struct {
		time.Time
	}

	// TransactionType is a reference entity; direction decides whether the
	// amount counts against or towards the balance. Amounts themselves are
	// always positive.
	TransactionType struct {
		ID        string
		Name      string
		Direction Direction
	}

	Category struct {
		ID        string
		Name      string
		Color     string
		CreatedAt time.Time
		UpdatedAt time.Time
	}

	Currency struct {
		ID     string
		Code   string
		Symbol string
	}

	Transaction struct {
		ID         string
		TypeID     string
		CategoryID string
		CurrencyID string
		Amount     Money
		Date       Date
		Note       string
		CreatedAt  time.Time
		UpdatedAt  time.Time
	}

	// Settlement links a compensation transaction to the transaction it
	// offsets. Several settlements may target the same compensated
	// transaction (partial settlements).
	Settlement struct {
		ID             string
		CompensatedID  string // transaction being offset
		CompensationID string // transaction performing the offset
		Amount         Money
		CreatedAt      time.Time
	}

	// CompensationStatus is the derived settlement state of one
	// transaction. It is computed, never stored.
	CompensationStatus struct {
		Original         Money
		Compensated      Money
		Remaining        Money
		FullyCompensated bool
	}

	// AnnotatedTransaction carries the settlement aggregate alongside the
	// transaction so list consumers never re-query per row.
	AnnotatedTransaction struct {
		Transaction
		Compensated Money
	}
)

var (
	ErrInvalidDate    = errors.New("invalid date")
	ErrInvalidAmount  = errors.New("invalid amount")
	ErrEmptyNote      = errors.New("empty note")
	ErrNoteTooLong    = errors.New("note too long")
	ErrUnsafeNote     = errors.New("note contains disallowed sequence")
	ErrUnknownType    = errors.New("unknown transaction type")
	ErrEmptyReference = errors.New("empty reference")
)

// Types returns the fixed transaction type set in display order.
func Types() []TransactionType {
	return []TransactionType{
		{ID: TypeIncome, Name: "Income", Direction: Credit},
		{ID: TypeExpense, Name: "Expense", Direction: Debit},
		{ID: TypeCompensation, Name: "Compensation", Direction: Credit},
		{ID: TypeSavings, Name: "Savings", Direction: Debit},
		{ID: TypeInvestment, Name: "Investment", Direction: Debit},
	}
}

// CompensatableTypes are the types a settlement may be recorded against.
func CompensatableTypes() []string {
	return []string{TypeIncome, TypeExpense, TypeInvestment}
}

func IsValidType(id string) bool {
	for _, t := range Types() {
		if t.ID == id {
			return true
		}
	}
	return false
}

// notePatterns are screened out of notes as defense in depth; the storage
// layer parameterizes every query regardless.
var notePatterns = []string{
	"--", "/*", "*/",
	"union select", "drop table", "insert into", "delete from",
}

func validateNote(note string) error {
	if len(strings.TrimSpace(note)) == 0 {
		return ErrEmptyNote
	}
	if len(note) > MaxNoteLength {
		return ErrNoteTooLong
	}
	lower := strings.ToLower(note)
	for _, p := range notePatterns {
		if strings.Contains(lower, p) {
			return ErrUnsafeNote
		}
	}
	return nil
}

func (d Date) Validate() error {
	if d.IsZero() {
		return ErrInvalidDate
	}
	return nil
}

// NewDate creates a Date from year, month, day.
func NewDate(year, month, day int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)}
}

// ParseDate parses a YYYY-MM-DD string.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return Date{}, ErrInvalidDate
	}
	return Date{Time: t}, nil
}

// ISO returns the date in YYYY-MM-DD form, the canonical stored format.
func (d Date) ISO() string {
	return d.Format("2006-01-02")
}

func (t Transaction) Validate() error {
	if err := t.Date.Validate(); err != nil {
		return err
	}
	if err := t.Amount.Validate(); err != nil {
		return err
	}
	if !IsValidType(t.TypeID) {
		return ErrUnknownType
	}
	if strings.TrimSpace(t.CategoryID) == "" || strings.TrimSpace(t.CurrencyID) == "" {
		return ErrEmptyReference
	}
	return validateNote(t.Note)
}

func (s Settlement) Validate() error {
	if err := s.Amount.Validate(); err != nil {
		return err
	}
	if strings.TrimSpace(s.CompensatedID) == "" || strings.TrimSpace(s.CompensationID) == "" {
		return ErrEmptyReference
	}
	return nil
}

// NewCompensationStatus derives the settlement state from the original
// amount and the settled sum. Over-settlement clamps the remainder at
// zero instead of going negative.
func NewCompensationStatus(original, compensated Money) CompensationStatus {
	remaining := original.Cents - compensated.Cents
	if remaining < 0 {
		remaining = 0
	}
	return CompensationStatus{
		Original:         original,
		Compensated:      compensated,
		Remaining:        Money{Cents: remaining},
		FullyCompensated: remaining == 0,
	}
}

// Remaining is the outstanding amount after settlements, floored at zero.
func (a AnnotatedTransaction) Remaining() Money {
	r := a.Amount.Cents - a.Compensated.Cents
	if r < 0 {
		r = 0
	}
	return Money{Cents: r}
}

func (a AnnotatedTransaction) FullyCompensated() bool {
	return a.Remaining().Cents == 0
}

// Status derives the full compensation view of the annotated row.
func (a AnnotatedTransaction) Status() CompensationStatus {
	return NewCompensationStatus(a.Amount, a.Compensated)
}
