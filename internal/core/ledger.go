package core

// Balance is the derived part of a record produced by Recalculate.
type Balance struct {
	ID          int64
	OpeningCash Money
	ClosingCash Money
	Variance    Money
}

// OnlineBalance is the running online total after a record.
type OnlineBalance struct {
	ID      int64
	Opening Money
	Closing Money
}

// Ledger is the read model handed to renderers: records in ascending id order
// and the online side ledger computed over them.
type Ledger struct {
	Records []Record
	Online  []OnlineBalance
}

// ComputeBalance derives closing cash and variance for r given its opening cash.
// Online withdrawals do not touch the physical till.
func ComputeBalance(opening Money, r Record) Balance {
	out := r.EffectiveCashOut()
	closing := r.CashSales.Add(opening).Sub(out)
	expected := opening.Add(r.CashSales).Sub(out)
	return Balance{
		ID:          r.ID,
		OpeningCash: opening,
		ClosingCash: closing,
		Variance:    closing.Sub(expected),
	}
}

// Recalculate rebuilds the cash chain over records sorted by ascending id.
// Every record opens with its predecessor's closing cash; the first opens at zero.
// The input is not modified.
func Recalculate(records []Record) []Balance {
	balances := make([]Balance, 0, len(records))
	var previousClosing Money
	for _, r := range records {
		b := ComputeBalance(previousClosing, r)
		balances = append(balances, b)
		previousClosing = b.ClosingCash
	}
	return balances
}

// ApplyBalances returns a copy of records with the derived fields replaced.
// Balances are matched by id; records without a balance are copied unchanged.
func ApplyBalances(records []Record, balances []Balance) []Record {
	byID := make(map[int64]Balance, len(balances))
	for _, b := range balances {
		byID[b.ID] = b
	}
	out := make([]Record, len(records))
	for i, r := range records {
		if b, ok := byID[r.ID]; ok {
			r.OpeningCash = b.OpeningCash
			r.ClosingCash = b.ClosingCash
			r.Variance = b.Variance
		}
		out[i] = r
	}
	return out
}

// Changed reports whether b differs from the derived fields stored on r.
func (b Balance) Changed(r Record) bool {
	return b.OpeningCash != r.OpeningCash || b.ClosingCash != r.ClosingCash || b.Variance != r.Variance
}

// OnlineBalances runs the online side ledger over records sorted by ascending id:
// online sales add to the balance and online-designated withdrawals subtract.
func OnlineBalances(records []Record) []OnlineBalance {
	out := make([]OnlineBalance, 0, len(records))
	var previous Money
	for _, r := range records {
		closing := previous.Add(r.OnlineSales).Sub(r.EffectiveOnlineOut())
		out = append(out, OnlineBalance{ID: r.ID, Opening: previous, Closing: closing})
		previous = closing
	}
	return out
}

// OnlineByID indexes the side ledger by record id.
func (l Ledger) OnlineByID() map[int64]OnlineBalance {
	m := make(map[int64]OnlineBalance, len(l.Online))
	for _, b := range l.Online {
		m[b.ID] = b
	}
	return m
}

// CurrentCash is the closing cash of the last record, or zero.
func (l Ledger) CurrentCash() Money {
	if len(l.Records) == 0 {
		return Money{}
	}
	return l.Records[len(l.Records)-1].ClosingCash
}

// CurrentOnline is the closing online balance of the last record, or zero.
func (l Ledger) CurrentOnline() Money {
	if len(l.Online) == 0 {
		return Money{}
	}
	return l.Online[len(l.Online)-1].Closing
}

// NewLedger builds the read model from records in ascending id order.
func NewLedger(records []Record) Ledger {
	if records == nil {
		records = []Record{}
	}
	return Ledger{Records: records, Online: OnlineBalances(records)}
}
