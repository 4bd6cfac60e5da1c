package core

import (
	"errors"
	"strings"
	"time"
	"unicode/utf8"
)

const (
	WithdrawalCash   WithdrawalKind = "cash"
	WithdrawalOnline WithdrawalKind = "online"
)

// DateLayout is the storage and display format of a record date.
const DateLayout = "2006-01-02"

type (
	// WithdrawalKind says which ledger a cash-out is taken from.
	WithdrawalKind string

	Date struct {
		time.Time
	}

	Money struct {
		Cents int64
	}

	// Record is one daybook entry. OpeningCash, ClosingCash and Variance are
	// derived and owned by the ledger recalculation.
	Record struct {
		ID             int64
		Date           Date
		OpeningCash    Money
		CashSales      Money
		OnlineSales    Money
		CashTakenOut   Money
		WithdrawalKind WithdrawalKind
		ClosingCash    Money
		Variance       Money
		Note           string
		CreatedBy      int64
		CreatedAt      time.Time
		UpdatedAt      time.Time
	}

	// RecordInput carries the user-entered fields of a record.
	RecordInput struct {
		CashSales      Money
		OnlineSales    Money
		CashTakenOut   Money
		WithdrawalKind WithdrawalKind
		Note           string
		// CashOutOnly zeroes both sales fields. Honoured for privileged users only.
		CashOutOnly bool
	}

	// RequestContext identifies who is acting and what "today" is for them.
	RequestContext struct {
		UserID     int64
		Privileged bool
		Today      Date
	}
)

var (
	ErrRecordNotFound        = errors.New("record not found")
	ErrForbidden             = errors.New("operation requires a privileged user")
	ErrAlreadySubmitted      = errors.New("a record was already submitted today")
	ErrInvalidWithdrawalKind = errors.New("invalid withdrawal kind")
	ErrNoteTooLong           = errors.New("note too long (max 1000 characters)")
)

// MaxNoteLength bounds the free-text note of a record, in characters.
const MaxNoteLength = 1000

// ParseWithdrawalKind parses a withdrawal kind strictly.
func ParseWithdrawalKind(s string) (WithdrawalKind, error) {
	switch WithdrawalKind(strings.ToLower(strings.TrimSpace(s))) {
	case WithdrawalCash:
		return WithdrawalCash, nil
	case WithdrawalOnline:
		return WithdrawalOnline, nil
	default:
		return "", ErrInvalidWithdrawalKind
	}
}

// ParseWithdrawalKindOrDefault falls back to cash for empty or unknown input.
func ParseWithdrawalKindOrDefault(s string) WithdrawalKind {
	k, err := ParseWithdrawalKind(s)
	if err != nil {
		return WithdrawalCash
	}
	return k
}

// AffectsCash reports whether a withdrawal of this kind reduces physical cash.
// Anything that is not explicitly online is treated as cash.
func (k WithdrawalKind) AffectsCash() bool {
	return k != WithdrawalOnline
}

func (k WithdrawalKind) String() string {
	if k == "" {
		return string(WithdrawalCash)
	}
	return string(k)
}

// NewDate creates a new Date from year, month, day
func NewDate(year, month, day int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)}
}

// DateOf truncates t to its calendar day in t's own location.
func DateOf(t time.Time) Date {
	y, m, d := t.Date()
	return NewDate(y, int(m), d)
}

// ParseDate parses a YYYY-MM-DD string.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(DateLayout, strings.TrimSpace(s))
	if err != nil {
		return Date{}, err
	}
	return Date{Time: t}, nil
}

func (d Date) String() string {
	if d.IsZero() {
		return ""
	}
	return d.Format(DateLayout)
}

// OnOrBefore reports whether d falls on or before other, by calendar day.
func (d Date) OnOrBefore(other Date) bool {
	return d.String() <= other.String()
}

func (d Date) Validate() error {
	if d.IsZero() {
		return errors.New("date cannot be zero")
	}
	return nil
}

func (m Money) Add(o Money) Money { return Money{Cents: m.Cents + o.Cents} }
func (m Money) Sub(o Money) Money { return Money{Cents: m.Cents - o.Cents} }
func (m Money) IsZero() bool      { return m.Cents == 0 }

// EffectiveCashOut is the part of CashTakenOut that leaves the physical till.
func (r Record) EffectiveCashOut() Money {
	if r.WithdrawalKind.AffectsCash() {
		return r.CashTakenOut
	}
	return Money{}
}

// EffectiveOnlineOut is the part of CashTakenOut charged to the online balance.
func (r Record) EffectiveOnlineOut() Money {
	if r.WithdrawalKind.AffectsCash() {
		return Money{}
	}
	return r.CashTakenOut
}

// IsCashOutOnly reports a pure withdrawal entry with no sales.
func (r Record) IsCashOutOnly() bool {
	return r.CashSales.IsZero() && r.OnlineSales.IsZero() && r.CashTakenOut.Cents > 0
}

// Normalize applies the privileged-only cash-out rule and defaults the kind.
func (in RecordInput) Normalize(privileged bool) RecordInput {
	if in.CashOutOnly && privileged {
		in.CashSales = Money{}
		in.OnlineSales = Money{}
	}
	in.CashOutOnly = in.CashOutOnly && privileged
	if in.WithdrawalKind == "" {
		in.WithdrawalKind = WithdrawalCash
	}
	in.Note = strings.TrimSpace(in.Note)
	return in
}

func (in RecordInput) Validate() error {
	if _, err := ParseWithdrawalKind(string(in.WithdrawalKind)); err != nil {
		return err
	}
	if utf8.RuneCountInString(in.Note) > MaxNoteLength {
		return ErrNoteTooLong
	}
	return nil
}

// Input returns the user-entered fields of r.
func (r Record) Input() RecordInput {
	return RecordInput{
		CashSales:      r.CashSales,
		OnlineSales:    r.OnlineSales,
		CashTakenOut:   r.CashTakenOut,
		WithdrawalKind: r.WithdrawalKind,
		Note:           r.Note,
	}
}

// Apply copies the input fields onto r, leaving derived balances alone.
func (in RecordInput) Apply(r Record) Record {
	r.CashSales = in.CashSales
	r.OnlineSales = in.OnlineSales
	r.CashTakenOut = in.CashTakenOut
	r.WithdrawalKind = in.WithdrawalKind
	r.Note = in.Note
	return r
}
