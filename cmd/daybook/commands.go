package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"

	"daybook/internal/core"
	"daybook/internal/render"
	"daybook/internal/services"
)

const usage = `usage: daybook <command> [flags]

commands:
  add          -user ID [-cash-sales N] [-online-sales N] [-taken-out N] [-kind cash|online] [-note TEXT] [-cash-out-only]
  edit         -user ID -id RECORD [same amount flags; unset flags keep their value]
  delete       -user ID -id RECORD
  list         print the ledger
  recalculate  -user ID
  status       -user ID  (has the user submitted today?)
`

var errUsage = errors.New("invalid usage")

type contextResolver interface {
	RequestContextFor(ctx context.Context, userID int64) (core.RequestContext, error)
}

type app struct {
	svc   *services.DayBookService
	roles contextResolver
	out   io.Writer
}

func (a *app) run(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return errUsage
	}
	cmd, rest := args[0], args[1:]
	switch cmd {
	case "add":
		return a.add(ctx, rest)
	case "edit":
		return a.edit(ctx, rest)
	case "delete":
		return a.delete(ctx, rest)
	case "list":
		return a.svc.Render(ctx, render.NewTable(a.out))
	case "recalculate":
		return a.recalculate(ctx, rest)
	case "status":
		return a.status(ctx, rest)
	default:
		return fmt.Errorf("%w: unknown command %q", errUsage, cmd)
	}
}

// recordFlags are the amount flags shared by add and edit.
type recordFlags struct {
	cashSales, onlineSales, takenOut string
	kind, note                       string
	cashOutOnly                      bool
}

func newFlagSet(name string, user *int64) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	fs.Int64Var(user, "user", 0, "acting user id")
	return fs
}

func (rf *recordFlags) register(fs *flag.FlagSet) {
	fs.StringVar(&rf.cashSales, "cash-sales", "", "cash sales amount")
	fs.StringVar(&rf.onlineSales, "online-sales", "", "online sales amount")
	fs.StringVar(&rf.takenOut, "taken-out", "", "amount taken out")
	fs.StringVar(&rf.kind, "kind", "", "ledger the withdrawal is taken from (cash|online)")
	fs.StringVar(&rf.note, "note", "", "free-text note")
	fs.BoolVar(&rf.cashOutOnly, "cash-out-only", false, "record a withdrawal without sales (privileged)")
}

// overlay applies the flags that were set on the command line to in.
func (rf *recordFlags) overlay(fs *flag.FlagSet, in core.RecordInput) core.RecordInput {
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "cash-sales":
			in.CashSales = core.ParseAmount(rf.cashSales)
		case "online-sales":
			in.OnlineSales = core.ParseAmount(rf.onlineSales)
		case "taken-out":
			in.CashTakenOut = core.ParseAmount(rf.takenOut)
		case "kind":
			in.WithdrawalKind = core.ParseWithdrawalKindOrDefault(rf.kind)
		case "note":
			in.Note = rf.note
		case "cash-out-only":
			in.CashOutOnly = rf.cashOutOnly
		}
	})
	return in
}

func (a *app) requestContext(ctx context.Context, user int64) (core.RequestContext, error) {
	if user <= 0 {
		return core.RequestContext{}, fmt.Errorf("%w: -user is required", errUsage)
	}
	return a.roles.RequestContextFor(ctx, user)
}

func parse(fs *flag.FlagSet, args []string) error {
	if err := fs.Parse(args); err != nil {
		return fmt.Errorf("%w: %v", errUsage, err)
	}
	return nil
}

func (a *app) add(ctx context.Context, args []string) error {
	var user int64
	var rf recordFlags
	fs := newFlagSet("add", &user)
	rf.register(fs)
	if err := parse(fs, args); err != nil {
		return err
	}
	rc, err := a.requestContext(ctx, user)
	if err != nil {
		return err
	}

	rec, err := a.svc.Add(ctx, rc, rf.overlay(fs, core.RecordInput{}))
	if err != nil {
		return err
	}
	a.printRecord("added", rec)
	return nil
}

func (a *app) edit(ctx context.Context, args []string) error {
	var user, id int64
	var rf recordFlags
	fs := newFlagSet("edit", &user)
	fs.Int64Var(&id, "id", 0, "record id")
	rf.register(fs)
	if err := parse(fs, args); err != nil {
		return err
	}
	if id <= 0 {
		return fmt.Errorf("%w: -id is required", errUsage)
	}
	rc, err := a.requestContext(ctx, user)
	if err != nil {
		return err
	}
	if !rc.Privileged {
		return core.ErrForbidden
	}

	existing, err := a.svc.Get(ctx, id)
	if err != nil {
		return err
	}
	rec, err := a.svc.Edit(ctx, rc, id, rf.overlay(fs, existing.Input()))
	if err != nil {
		return err
	}
	a.printRecord("updated", rec)
	return nil
}

func (a *app) delete(ctx context.Context, args []string) error {
	var user, id int64
	fs := newFlagSet("delete", &user)
	fs.Int64Var(&id, "id", 0, "record id")
	if err := parse(fs, args); err != nil {
		return err
	}
	if id <= 0 {
		return fmt.Errorf("%w: -id is required", errUsage)
	}
	rc, err := a.requestContext(ctx, user)
	if err != nil {
		return err
	}
	if err := a.svc.Delete(ctx, rc, id); err != nil {
		return err
	}
	fmt.Fprintf(a.out, "record %d deleted\n", id)
	return nil
}

func (a *app) recalculate(ctx context.Context, args []string) error {
	var user int64
	fs := newFlagSet("recalculate", &user)
	if err := parse(fs, args); err != nil {
		return err
	}
	rc, err := a.requestContext(ctx, user)
	if err != nil {
		return err
	}
	if !rc.Privileged {
		return core.ErrForbidden
	}
	balances, err := a.svc.Recalculate(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "recalculated %d records\n", len(balances))
	return nil
}

func (a *app) status(ctx context.Context, args []string) error {
	var user int64
	fs := newFlagSet("status", &user)
	if err := parse(fs, args); err != nil {
		return err
	}
	rc, err := a.requestContext(ctx, user)
	if err != nil {
		return err
	}
	submitted, err := a.svc.HasSubmittedToday(ctx, rc)
	if err != nil {
		return err
	}
	answer := "no"
	if submitted {
		answer = "yes"
	}
	fmt.Fprintf(a.out, "user %d submitted on %s: %s\n", rc.UserID, rc.Today, answer)
	return nil
}

func (a *app) printRecord(verb string, rec core.Record) {
	fmt.Fprintf(a.out, "record %d %s for %s: opening %s, closing %s\n",
		rec.ID, verb, rec.Date, rec.OpeningCash, rec.ClosingCash)
}
