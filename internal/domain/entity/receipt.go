package entity

// ReceiptHeader holds the brand block printed at the top of a receipt.
type ReceiptHeader struct {
	StoreName string `json:"store_name"`
	Title     string `json:"title"`
}

// ReceiptItem is one table row. Amounts are already formatted to two decimals.
type ReceiptItem struct {
	Name      string `json:"name"`
	Quantity  int    `json:"quantity"`
	UnitPrice string `json:"unit_price"`
	Total     string `json:"total"`
}

// ReceiptSummary holds the formatted totals block.
type ReceiptSummary struct {
	Subtotal        string `json:"subtotal"`
	Discount        string `json:"discount"`
	Total           string `json:"total"`
	PaymentReceived string `json:"payment_received"`
	Change          string `json:"change"`
}

// Receipt is the medium-independent document model of a sales ticket.
// It is composed from a Sale and the catalog at render time and is not stored.
type Receipt struct {
	Header        ReceiptHeader  `json:"header"`
	TransactionID string         `json:"transaction_id"`
	Date          string         `json:"date"`
	Cashier       string         `json:"cashier"`
	StoreLocation string         `json:"store_location"`
	Items         []ReceiptItem  `json:"items"`
	Summary       ReceiptSummary `json:"summary"`
	Footer        string         `json:"footer"`
	FileName      string         `json:"file_name"`
}
