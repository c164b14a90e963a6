package models

// BillStatus is the payment state of a bill.
type BillStatus string

const (
	StatusPaid    BillStatus = "PAID"
	StatusUnpaid  BillStatus = "UNPAID"
	StatusOverdue BillStatus = "OVERDUE"
)

// BillItem is a single line item on a bill.
// Amount is expected to equal Quantity*Rate; it is only recomputed when
// quantity or rate is edited through the item helpers, never on load.
type BillItem struct {
	Description string  `json:"description"`
	Quantity    float64 `json:"quantity"`
	Rate        float64 `json:"rate"`
	Amount      float64 `json:"amount"`
}

// Bill is a single invoice/ledger record. The JSON field names match the
// serialized form stored in the data slot, so a stored sequence round-trips
// without translation.
type Bill struct {
	// ID is assigned at creation and immutable thereafter.
	ID            string `json:"id"`
	InvoiceNumber string `json:"invoiceNumber,omitempty"`

	// CustomerName is the grouping key for customer aggregation
	// (trimmed, case-sensitive exact match).
	CustomerName string `json:"customerName"`

	// Date and DueDate are calendar dates as YYYY-MM-DD strings.
	// DueDate defaults to Date when left blank at save time.
	Date    string `json:"date"`
	DueDate string `json:"dueDate"`

	Status BillStatus `json:"status"`

	// Currency is a 3-letter code resolved against the currency catalog
	// for display; unknown codes fall back to the first catalog entry.
	Currency string `json:"currency"`

	// Items is ordered and user-controlled.
	Items []BillItem `json:"items"`

	// TotalAmount is recomputed at save time as the sum of item amounts.
	TotalAmount float64 `json:"totalAmount"`

	Notes    string   `json:"notes,omitempty"`
	ImageURL string   `json:"imageUrl,omitempty"`
	Tags     []string `json:"tags"`

	// LastModified is an RFC3339 timestamp set on every save.
	LastModified string `json:"lastModified"`

	// IsNew marks a record created by the capture flow and not yet edited.
	// Cleared on the next save.
	IsNew      bool `json:"isNew,omitempty"`
	IsModified bool `json:"isModified,omitempty"`
}

// Customer is a read-only profile derived from all bills sharing a trimmed
// customer name. It is recomputed from the full bill list and never persisted.
type Customer struct {
	Name       string   `json:"name"`
	TotalSpent float64  `json:"totalSpent"`
	BillCount  int      `json:"billCount"`
	LastActive string   `json:"lastActive"`
	Tags       []string `json:"tags"`
}

// SummaryStats are headline figures derived from the full bill list.
type SummaryStats struct {
	TotalRevenue     float64 `json:"totalRevenue"`
	BillCount        int     `json:"billCount"`
	AverageBillValue float64 `json:"averageBillValue"`
}
