// Package render draws the ledger as a plain-text table.
package render

import (
	"context"
	"fmt"
	"io"
	"text/tabwriter"

	"daybook/internal/core"
	"daybook/internal/ports"
)

var _ ports.Renderer = (*Table)(nil)

// Table writes one row per record plus a totals footer.
type Table struct {
	w io.Writer
}

func NewTable(w io.Writer) *Table {
	return &Table{w: w}
}

var header = []string{"ID", "DATE", "OPENING", "CASH SALES", "ONLINE SALES", "TAKEN OUT", "FROM", "CLOSING", "ONLINE BAL", "NOTE"}

func (t *Table) Render(_ context.Context, ledger core.Ledger) error {
	tw := tabwriter.NewWriter(t.w, 0, 0, 2, ' ', tabwriter.AlignRight)
	online := ledger.OnlineByID()

	writeRow(tw, header...)
	for _, r := range ledger.Records {
		note := r.Note
		if r.IsCashOutOnly() {
			note = "[cash out] " + note
		}
		writeRow(tw,
			fmt.Sprint(r.ID),
			r.Date.String(),
			r.OpeningCash.String(),
			r.CashSales.String(),
			r.OnlineSales.String(),
			r.CashTakenOut.String(),
			r.WithdrawalKind.String(),
			r.ClosingCash.String(),
			online[r.ID].Closing.String(),
			note,
		)
	}
	if err := tw.Flush(); err != nil {
		return fmt.Errorf("write table: %w", err)
	}

	_, err := fmt.Fprintf(t.w, "\n%d records  cash on hand %s  online balance %s\n",
		len(ledger.Records), ledger.CurrentCash(), ledger.CurrentOnline())
	return err
}

func writeRow(w io.Writer, cells ...string) {
	for _, c := range cells {
		fmt.Fprint(w, c, "\t")
	}
	fmt.Fprintln(w)
}
