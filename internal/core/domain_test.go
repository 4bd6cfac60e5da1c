package core

import (
	"errors"
	"strings"
	"testing"
	"time"
)

func TestDateValidate(t *testing.T) {
	cases := []struct {
		d  Date
		ok bool
	}{
		{NewDate(2025, 1, 1), true},
		{NewDate(2025, 12, 31), true},
		{Date{Time: time.Time{}}, false}, // zero time
	}
	for i, tc := range cases {
		err := tc.d.Validate()
		if tc.ok && err != nil {
			t.Fatalf("case %d expected ok, got %v", i, err)
		}
		if !tc.ok && err == nil {
			t.Fatalf("case %d expected error", i)
		}
	}
}

func TestDateOfAndOrdering(t *testing.T) {
	loc := time.FixedZone("UTC+5", 5*3600)
	// 2025-03-01 02:00 at UTC+5 is still 2025-02-28 in UTC
	d := DateOf(time.Date(2025, 3, 1, 2, 0, 0, 0, loc))
	if d.String() != "2025-03-01" {
		t.Fatalf("DateOf = %s, want 2025-03-01", d)
	}
	if !NewDate(2025, 2, 28).OnOrBefore(d) || !d.OnOrBefore(d) {
		t.Error("OnOrBefore should hold for earlier and equal days")
	}
	if d.OnOrBefore(NewDate(2025, 2, 28)) {
		t.Error("OnOrBefore should fail for later days")
	}

	parsed, err := ParseDate("2025-03-01")
	if err != nil || parsed.String() != d.String() {
		t.Fatalf("ParseDate = %v, %v", parsed, err)
	}
	if _, err := ParseDate("01/03/2025"); err == nil {
		t.Error("expected error for wrong layout")
	}
}

func TestParseWithdrawalKind(t *testing.T) {
	cases := []struct {
		in   string
		want WithdrawalKind
		ok   bool
	}{
		{"cash", WithdrawalCash, true},
		{" Online ", WithdrawalOnline, true},
		{"", "", false},
		{"card", "", false},
	}
	for _, tc := range cases {
		got, err := ParseWithdrawalKind(tc.in)
		if tc.ok && (err != nil || got != tc.want) {
			t.Fatalf("%q expected %q, got %q (err=%v)", tc.in, tc.want, got, err)
		}
		if !tc.ok && !errors.Is(err, ErrInvalidWithdrawalKind) {
			t.Fatalf("%q expected ErrInvalidWithdrawalKind, got %v", tc.in, err)
		}
	}
	if ParseWithdrawalKindOrDefault("card") != WithdrawalCash {
		t.Error("unknown kind should default to cash")
	}
}

func TestRecordDerivedHelpers(t *testing.T) {
	r := Record{CashTakenOut: Money{Cents: 300}, WithdrawalKind: WithdrawalOnline}
	if !r.EffectiveCashOut().IsZero() || r.EffectiveOnlineOut().Cents != 300 {
		t.Errorf("online withdrawal split wrong: cash=%v online=%v", r.EffectiveCashOut(), r.EffectiveOnlineOut())
	}
	if !r.IsCashOutOnly() {
		t.Error("expected cash-out-only record")
	}
	r.CashSales = Money{Cents: 1}
	if r.IsCashOutOnly() {
		t.Error("record with sales is not cash-out-only")
	}
}

func TestRecordInputNormalize(t *testing.T) {
	in := RecordInput{
		CashSales:   Money{Cents: 100},
		OnlineSales: Money{Cents: 200},
		Note:        "  hello ",
		CashOutOnly: true,
	}

	priv := in.Normalize(true)
	if !priv.CashSales.IsZero() || !priv.OnlineSales.IsZero() || !priv.CashOutOnly {
		t.Errorf("privileged cash-out-only should zero sales: %+v", priv)
	}
	if priv.WithdrawalKind != WithdrawalCash || priv.Note != "hello" {
		t.Errorf("unexpected defaults: %+v", priv)
	}

	plain := in.Normalize(false)
	if plain.CashSales.Cents != 100 || plain.OnlineSales.Cents != 200 || plain.CashOutOnly {
		t.Errorf("non-privileged cash-out-only flag must be ignored: %+v", plain)
	}
}

func TestRecordInputValidate(t *testing.T) {
	good := RecordInput{WithdrawalKind: WithdrawalOnline}
	if err := good.Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}
	if err := (RecordInput{WithdrawalKind: "card"}).Validate(); !errors.Is(err, ErrInvalidWithdrawalKind) {
		t.Errorf("expected ErrInvalidWithdrawalKind, got %v", err)
	}
	long := RecordInput{WithdrawalKind: WithdrawalCash, Note: strings.Repeat("x", MaxNoteLength+1)}
	if err := long.Validate(); !errors.Is(err, ErrNoteTooLong) {
		t.Errorf("expected ErrNoteTooLong, got %v", err)
	}
	// 1000 Devanagari characters are 3000 bytes but still within the limit.
	hindi := RecordInput{WithdrawalKind: WithdrawalCash, Note: strings.Repeat("न", MaxNoteLength)}
	if err := hindi.Validate(); err != nil {
		t.Errorf("multi-byte note of %d characters rejected: %v", MaxNoteLength, err)
	}
	hindi.Note += "न"
	if err := hindi.Validate(); !errors.Is(err, ErrNoteTooLong) {
		t.Errorf("expected ErrNoteTooLong for %d characters, got %v", MaxNoteLength+1, err)
	}
}

func TestRecordInputRoundTrip(t *testing.T) {
	r := Record{
		ID:             3,
		CashSales:      Money{Cents: 100},
		OnlineSales:    Money{Cents: 50},
		CashTakenOut:   Money{Cents: 20},
		WithdrawalKind: WithdrawalOnline,
		Note:           "n",
		ClosingCash:    Money{Cents: 999},
	}
	got := r.Input().Apply(Record{ID: 3, ClosingCash: Money{Cents: 999}})
	if got != r {
		t.Errorf("Input/Apply lost fields:\n got %+v\nwant %+v", got, r)
	}
}
