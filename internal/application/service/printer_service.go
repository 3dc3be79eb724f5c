package service

import (
	"fmt"
	"strconv"

	"github.com/sangkips/masterstock-api/internal/domain/entity"
	"github.com/sangkips/masterstock-api/pkg/printer"
	"go.uber.org/zap"
)

// PrinterService formats receipts for and sends them to the thermal printer.
type PrinterService struct {
	printer     printer.Printer
	printerType string
	charWidth   int
	logger      *zap.Logger
}

// NewPrinterService creates a new printer service.
func NewPrinterService(p printer.Printer, printerType string, charWidth int, logger *zap.Logger) *PrinterService {
	if charWidth <= 0 {
		charWidth = printer.Width58mm
	}
	return &PrinterService{
		printer:     p,
		printerType: printerType,
		charWidth:   charWidth,
		logger:      logger,
	}
}

// PrinterStatus returns the current printer status information.
type PrinterStatus struct {
	Configured bool   `json:"configured"`
	Connected  bool   `json:"connected"`
	Type       string `json:"type"`
	CharWidth  int    `json:"char_width"`
}

// GetStatus returns printer connection status.
func (s *PrinterService) GetStatus() *PrinterStatus {
	return &PrinterStatus{
		Configured: s.printerType != printer.TypeNone && s.printerType != "",
		Connected:  s.printer.IsConnected(),
		Type:       s.printerType,
		CharWidth:  s.charWidth,
	}
}

// Format renders r as an ESC/POS job sized for the configured paper.
func (s *PrinterService) Format(r *entity.Receipt) []byte {
	return FormatReceiptESCPOS(r, s.charWidth)
}

// Send delivers a rendered job to the printer.
func (s *PrinterService) Send(data []byte) error {
	if err := s.printer.Print(data); err != nil {
		return fmt.Errorf("failed to print receipt: %w", err)
	}
	s.logger.Debug("print job sent", zap.Int("bytes", len(data)))
	return nil
}

// TestPrint sends a sample receipt to the printer.
// The receipt is returned even when printing fails.
func (s *PrinterService) TestPrint() (*entity.Receipt, error) {
	receipt := &entity.Receipt{
		Header: entity.ReceiptHeader{
			StoreName: "PRINTER TEST",
			Title:     ReceiptTitle,
		},
		TransactionID: "TEST-001",
		Date:          "Test Date",
		Cashier:       "System",
		StoreLocation: "Test Store",
		Items: []entity.ReceiptItem{
			{Name: "Item 1", Quantity: 1, UnitPrice: "10.00", Total: "10.00"},
			{Name: "Item 2", Quantity: 2, UnitPrice: "5.00", Total: "10.00"},
		},
		Summary: entity.ReceiptSummary{
			Subtotal:        "20.00",
			Discount:        "0.00",
			Total:           "20.00",
			PaymentReceived: "20.00",
			Change:          "0.00",
		},
		Footer: "Printer width " + strconv.Itoa(s.charWidth) + " characters.",
	}

	if err := s.Send(s.Format(receipt)); err != nil {
		return receipt, fmt.Errorf("test print failed: %w", err)
	}
	return receipt, nil
}

// FormatReceiptESCPOS renders a receipt as an ESC/POS job for a thermal
// printer with the given line width.
func FormatReceiptESCPOS(r *entity.Receipt, width int) []byte {
	doc := printer.NewDocument(width)
	cols := receiptColumns(doc.Width())

	// Header
	doc.SetAlign(printer.AlignCenter).
		SetBold(true).
		SetFontSize(printer.FontTall).
		Text(r.Header.StoreName).
		SetFontSize(printer.FontNormal).
		Text(r.Header.Title).
		SetBold(false).
		SetAlign(printer.AlignLeft).
		LineFeed()

	for _, m := range metadataLines(r) {
		doc.Wrapped(m.label + " " + m.value)
	}

	doc.Separator('-')

	// Items
	doc.SetBold(true).
		Row("Item", []string{"Qty", "Price", "Total"}, cols).
		SetBold(false)
	for _, item := range r.Items {
		doc.Row(item.Name, []string{strconv.Itoa(item.Quantity), money(item.UnitPrice), money(item.Total)}, cols)
	}

	doc.Separator('-')

	// Totals
	for _, s := range summaryLines(r) {
		if s.label == "Total:" {
			doc.SetBold(true).KeyValue(s.label, s.value).SetBold(false)
			continue
		}
		doc.KeyValue(s.label, s.value)
	}

	doc.Separator('-')

	// Footer
	doc.SetAlign(printer.AlignCenter).
		Wrapped(r.Footer).
		SetAlign(printer.AlignLeft)

	doc.FeedLines(3).
		PartialCut()

	return doc.Bytes()
}
