package invoicing

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/tileshop/backend/internal/domain/invoicing"
	"github.com/tileshop/backend/internal/infrastructure/export"
	"github.com/tileshop/backend/internal/infrastructure/printing"
	"github.com/tileshop/backend/internal/infrastructure/telemetry"
)

// InvoiceFinder resolves an invoice by UUID or number
type InvoiceFinder interface {
	Find(ctx context.Context, ref string) (*invoicing.Invoice, error)
}

// Document is a rendered invoice ready to be served
type Document struct {
	Filename   string
	Content    []byte
	PageCount  int
	Strategy   string
	ArchiveKey string
}

// DocumentServiceConfig wires a DocumentService
type DocumentServiceConfig struct {
	Finder      InvoiceFinder
	InvoiceRepo invoicing.InvoiceRepository
	Renderer    printing.InvoiceRenderer
	// Strategy labels metrics when rendering fails before a result exists
	Strategy string
	// Archive is optional; nil disables archiving
	Archive  printing.PDFStorage
	Register *export.RegisterWriter
	Metrics  *telemetry.InvoiceMetrics
	Logger   *zap.Logger
	Location *time.Location
}

// DocumentService produces printable and exportable invoice documents
type DocumentService struct {
	finder   InvoiceFinder
	repo     invoicing.InvoiceRepository
	renderer printing.InvoiceRenderer
	strategy string
	archive  printing.PDFStorage
	register *export.RegisterWriter
	metrics  *telemetry.InvoiceMetrics
	logger   *zap.Logger
	loc      *time.Location
}

// NewDocumentService creates a new DocumentService
func NewDocumentService(cfg DocumentServiceConfig) *DocumentService {
	s := &DocumentService{
		finder:   cfg.Finder,
		repo:     cfg.InvoiceRepo,
		renderer: cfg.Renderer,
		strategy: cfg.Strategy,
		archive:  cfg.Archive,
		register: cfg.Register,
		metrics:  cfg.Metrics,
		logger:   cfg.Logger,
		loc:      cfg.Location,
	}
	if s.logger == nil {
		s.logger = zap.NewNop()
	}
	if s.loc == nil {
		s.loc = time.Local
	}
	if s.register == nil {
		s.register = export.NewRegisterWriter(s.loc)
	}
	return s
}

// PDFFileName is the download name of an invoice PDF
func PDFFileName(number string) string {
	return "Invoice_" + invoicing.SafeFileName(number) + ".pdf"
}

// RenderPDF renders the invoice identified by ref. Archive failures are
// logged and do not fail the render.
func (s *DocumentService) RenderPDF(ctx context.Context, ref string) (*Document, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "document", "render_pdf",
		telemetry.SpanAttrStrategy, s.strategy,
	)
	defer span.End()

	inv, err := s.finder.Find(ctx, ref)
	if err != nil {
		return nil, err
	}
	telemetry.SetAttributes(span,
		telemetry.SpanAttrInvoiceNumber, inv.InvoiceNumber,
		telemetry.SpanAttrItemCount, len(inv.Items),
	)

	doc := printing.NewInvoiceDocument(inv, s.loc)
	start := time.Now()
	result, err := s.renderer.Render(ctx, doc)
	if err != nil {
		s.metrics.RenderFailed(ctx, s.strategy, time.Since(start))
		telemetry.RecordError(span, err)
		s.logger.Error("Failed to render invoice PDF",
			zap.String("invoice_number", inv.InvoiceNumber),
			zap.String("strategy", s.strategy),
			zap.Int("items", len(inv.Items)),
			zap.Error(err),
		)
		return nil, err
	}

	strategy := result.Strategy
	if strategy == "" {
		strategy = s.strategy
	}
	s.metrics.PDFRendered(ctx, strategy, time.Since(start))

	out := &Document{
		Filename:  PDFFileName(inv.InvoiceNumber),
		Content:   result.PDFData,
		PageCount: result.PageCount,
		Strategy:  strategy,
	}

	if s.archive != nil {
		key := printing.ArchiveKey(inv.InvoiceNumber, doc.Date)
		if _, err := s.archive.Store(ctx, key, result.PDFData); err != nil {
			s.logger.Warn("Failed to archive invoice PDF",
				zap.String("invoice_number", inv.InvoiceNumber),
				zap.String("key", key),
				zap.Error(err),
			)
		} else {
			out.ArchiveKey = key
			telemetry.SetAttributes(span, telemetry.SpanAttrArchiveKey, key)
		}
	}
	return out, nil
}

// ExportRegister writes every invoice matching filter to an XLSX workbook.
// Pagination in the filter is ignored.
func (s *DocumentService) ExportRegister(ctx context.Context, filter InvoiceListFilter) ([]byte, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "document", "export_register")
	defer span.End()

	filter.Page = 1
	filter.PageSize = 100
	domainFilter := filter.toDomain()

	var all []invoicing.Invoice
	for {
		page, err := s.repo.FindAll(ctx, domainFilter)
		if err != nil {
			telemetry.RecordError(span, err)
			return nil, fmt.Errorf("load invoices for export: %w", err)
		}
		all = append(all, page...)
		if len(page) < domainFilter.PageSize {
			break
		}
		domainFilter.Page++
	}
	telemetry.SetAttributes(span, "invoice_count", len(all))

	data, err := s.register.Write(all)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, fmt.Errorf("write invoice register: %w", err)
	}
	return data, nil
}
