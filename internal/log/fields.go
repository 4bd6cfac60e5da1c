package log

// Common field names for structured logging
const (
	FieldComponent    = "component"
	FieldOperation    = "operation"
	FieldError        = "error"
	FieldUserID       = "user_id"
	FieldPrivileged   = "privileged"
	FieldRecordID     = "record_id"
	FieldRecordDate   = "record_date"
	FieldOpeningCents = "opening_cents"
	FieldClosingCents = "closing_cents"
	FieldCashSales    = "cash_sales_cents"
	FieldOnlineSales  = "online_sales_cents"
	FieldCashOut      = "cash_taken_out_cents"
	FieldKind         = "withdrawal_kind"
	FieldRecords      = "records"
	FieldUpdated      = "updated"
	FieldReason       = "reason"
	FieldMessageID    = "message_id"
	FieldDuration     = "duration_ms"
)

// Components defines standard component names
const (
	ComponentApp     = "app"
	ComponentLedger  = "ledger"
	ComponentStorage = "storage"
	ComponentAMQP    = "amqp"
	ComponentWorker  = "worker"
	ComponentSheets  = "sheets"
	ComponentBackend = "backend"
	ComponentCLI     = "cli"
)

// Operations defines standard operation names
const (
	OpAdd         = "add"
	OpEdit        = "edit"
	OpDelete      = "delete"
	OpList        = "list"
	OpRecalculate = "recalculate"
	OpRender      = "render"
	OpMirror      = "mirror"
	OpStartup     = "startup"
	OpShutdown    = "shutdown"
)

// LogFields provides a builder pattern for structured log fields
type LogFields map[string]any

// NewFields creates a new LogFields instance
func NewFields() LogFields {
	return make(LogFields)
}

// WithComponent adds component field
func (f LogFields) WithComponent(component string) LogFields {
	f[FieldComponent] = component
	return f
}

// WithOperation adds operation field
func (f LogFields) WithOperation(op string) LogFields {
	f[FieldOperation] = op
	return f
}

// WithError adds error field
func (f LogFields) WithError(err error) LogFields {
	if err != nil {
		f[FieldError] = err.Error()
	}
	return f
}

// WithUser adds the acting user
func (f LogFields) WithUser(userID int64, privileged bool) LogFields {
	f[FieldUserID] = userID
	f[FieldPrivileged] = privileged
	return f
}

// WithRecord adds record identity and amounts
func (f LogFields) WithRecord(id int64, date string, cashSales, onlineSales, cashOut int64, kind string) LogFields {
	f[FieldRecordID] = id
	f[FieldRecordDate] = date
	f[FieldCashSales] = cashSales
	f[FieldOnlineSales] = onlineSales
	f[FieldCashOut] = cashOut
	f[FieldKind] = kind
	return f
}

// WithBalance adds the derived cash balance of a record
func (f LogFields) WithBalance(openingCents, closingCents int64) LogFields {
	f[FieldOpeningCents] = openingCents
	f[FieldClosingCents] = closingCents
	return f
}

// ToSlice converts LogFields to a slice for slog
func (f LogFields) ToSlice() []any {
	slice := make([]any, 0, len(f)*2)
	for k, v := range f {
		slice = append(slice, k, v)
	}
	return slice
}
