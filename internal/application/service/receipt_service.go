package service

import (
	"context"
	"fmt"
	"time"

	"github.com/sangkips/masterstock-api/internal/domain/entity"
	"github.com/sangkips/masterstock-api/internal/domain/repository"
	"github.com/sangkips/masterstock-api/pkg/apperror"
	"github.com/sangkips/masterstock-api/pkg/metrics"
	"go.uber.org/zap"
)

// Receipt renditions
const (
	RenderDisplay  = "display"
	RenderPrint    = "print"
	RenderDownload = "download"
)

const (
	ReceiptTitle       = "Sales Ticket"
	ReceiptDateLayout  = "2006-01-02 15:04:05"
	UnknownProductName = "Unknown product"
)

// ReceiptOptions carries the store identity printed on every receipt.
type ReceiptOptions struct {
	StoreName    string
	ReturnPolicy string
	// Location is the time zone dates are rendered in. Nil means UTC.
	Location *time.Location
}

// ReceiptFileName returns the download name of a sale's receipt.
func ReceiptFileName(saleID string) string {
	return "sales_ticket_" + saleID + ".pdf"
}

// BuildReceipt composes the document model of a sale. Product names are
// resolved from products at render time; items whose product is gone
// render as UnknownProductName.
func BuildReceipt(sale *entity.Sale, products []entity.Product, opts ReceiptOptions) *entity.Receipt {
	names := make(map[string]string, len(products))
	for _, p := range products {
		names[p.ID] = p.Name
	}

	loc := opts.Location
	if loc == nil {
		loc = time.UTC
	}

	receipt := &entity.Receipt{
		Header: entity.ReceiptHeader{
			StoreName: opts.StoreName,
			Title:     ReceiptTitle,
		},
		TransactionID: sale.ID,
		Date:          sale.Date.In(loc).Format(ReceiptDateLayout),
		Cashier:       sale.Cashier,
		StoreLocation: sale.StoreLocation,
		Items:         make([]entity.ReceiptItem, 0, len(sale.Items)),
		Summary: entity.ReceiptSummary{
			Subtotal:        sale.Subtotal.StringFixed(2),
			Discount:        sale.Discount.StringFixed(2),
			Total:           sale.Total.StringFixed(2),
			PaymentReceived: sale.PaymentReceived.StringFixed(2),
			Change:          sale.Change.StringFixed(2),
		},
		Footer:   opts.ReturnPolicy,
		FileName: ReceiptFileName(sale.ID),
	}

	for _, item := range sale.Items {
		name, ok := names[item.ProductID]
		if !ok {
			name = UnknownProductName
		}
		receipt.Items = append(receipt.Items, entity.ReceiptItem{
			Name:      name,
			Quantity:  item.Quantity,
			UnitPrice: item.Price.StringFixed(2),
			Total:     item.LineTotal().StringFixed(2),
		})
	}

	return receipt
}

// ReceiptView is the on-screen rendition.
type ReceiptView struct {
	Receipt *entity.Receipt `json:"receipt"`
	Text    string          `json:"text"`
}

// PrintResult reports a print rendition. A printer failure does not fail
// the request; it is reported in Warning.
type PrintResult struct {
	Receipt *entity.Receipt `json:"receipt"`
	Printed bool            `json:"printed"`
	Warning string          `json:"warning,omitempty"`
}

// ReceiptFile is the downloadable rendition.
type ReceiptFile struct {
	Name        string
	ContentType string
	Content     []byte
}

// ReceiptService renders finalized sales.
type ReceiptService struct {
	catalog     repository.CatalogStore
	ledger      repository.SaleLedger
	printer     *PrinterService
	opts        ReceiptOptions
	textWidth   int
	compressPDF bool
	logger      *zap.Logger
	metrics     *metrics.Metrics

	formatPDF func(r *entity.Receipt, created time.Time, compress bool) ([]byte, error)
}

// NewReceiptService creates a new receipt service
func NewReceiptService(
	catalog repository.CatalogStore,
	ledger repository.SaleLedger,
	printerService *PrinterService,
	opts ReceiptOptions,
	compressPDF bool,
	logger *zap.Logger,
	m *metrics.Metrics,
) *ReceiptService {
	return &ReceiptService{
		catalog:     catalog,
		ledger:      ledger,
		printer:     printerService,
		opts:        opts,
		textWidth:   receiptTextWidth,
		compressPDF: compressPDF,
		logger:      logger,
		metrics:     m,
		formatPDF:   FormatReceiptPDF,
	}
}

// Build returns the document model of sale against the current catalog.
func (s *ReceiptService) Build(ctx context.Context, sale *entity.Sale) (*entity.Receipt, error) {
	products, err := s.catalog.List(ctx)
	if err != nil {
		return nil, err
	}
	return BuildReceipt(sale, products, s.opts), nil
}

// Display renders the on-screen rendition of a recorded sale.
func (s *ReceiptService) Display(ctx context.Context, saleID string) (*ReceiptView, error) {
	sale, err := s.sale(ctx, saleID)
	if err != nil {
		return nil, err
	}
	return s.DisplaySale(ctx, sale)
}

// DisplaySale renders the on-screen rendition of sale.
func (s *ReceiptService) DisplaySale(ctx context.Context, sale *entity.Sale) (*ReceiptView, error) {
	receipt, err := s.Build(ctx, sale)
	if err != nil {
		return nil, err
	}

	view := &ReceiptView{Receipt: receipt}
	err = s.render(RenderDisplay, sale.ID, func() error {
		view.Text = FormatReceiptText(receipt, s.textWidth)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return view, nil
}

// Print sends the ESC/POS rendition of a recorded sale to the printer.
func (s *ReceiptService) Print(ctx context.Context, saleID string) (*PrintResult, error) {
	sale, err := s.sale(ctx, saleID)
	if err != nil {
		return nil, err
	}
	receipt, err := s.Build(ctx, sale)
	if err != nil {
		return nil, err
	}

	var data []byte
	err = s.render(RenderPrint, sale.ID, func() error {
		data = s.printer.Format(receipt)
		return nil
	})
	if err != nil {
		return nil, err
	}

	result := &PrintResult{Receipt: receipt, Printed: true}
	if err := s.printer.Send(data); err != nil {
		s.logger.Warn("receipt not printed", zap.String("sale_id", sale.ID), zap.Error(err))
		result.Printed = false
		result.Warning = err.Error()
	}
	return result, nil
}

// Download renders the PDF rendition of a recorded sale.
func (s *ReceiptService) Download(ctx context.Context, saleID string) (*ReceiptFile, error) {
	sale, err := s.sale(ctx, saleID)
	if err != nil {
		return nil, err
	}
	receipt, err := s.Build(ctx, sale)
	if err != nil {
		return nil, err
	}

	file := &ReceiptFile{Name: receipt.FileName, ContentType: "application/pdf"}
	err = s.render(RenderDownload, sale.ID, func() error {
		content, err := s.formatPDF(receipt, sale.Date, s.compressPDF)
		if err != nil {
			return err
		}
		file.Content = content
		return nil
	})
	if err != nil {
		return nil, err
	}
	return file, nil
}

func (s *ReceiptService) sale(ctx context.Context, id string) (*entity.Sale, error) {
	sale, err := s.ledger.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if sale == nil {
		return nil, apperror.NewNotFoundError("Sale")
	}
	return sale, nil
}

// render runs fn and turns any error or panic into a RenderError.
func (s *ReceiptService) render(mode, saleID string, fn func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
		if err != nil {
			s.metrics.ObserveRenderFailure(mode)
			s.logger.Error("receipt rendition failed",
				zap.String("mode", mode),
				zap.String("sale_id", saleID),
				zap.Error(err),
			)
			err = apperror.NewRenderError(mode, err)
		}
	}()
	return fn()
}
