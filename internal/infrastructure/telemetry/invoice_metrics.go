package telemetry

import (
	"context"
	"errors"
	"time"

	"go.opentelemetry.io/otel/metric"
)

// InvoiceMetrics records invoicing and rendering counters. A nil
// *InvoiceMetrics is valid and records nothing.
type InvoiceMetrics struct {
	invoicesCreated  *Counter
	pdfRendered      *Counter
	renderFailures   *Counter
	thumbnailSkipped *Counter
	renderDuration   *Histogram
}

// NewInvoiceMetrics registers the invoicing instruments on meter
func NewInvoiceMetrics(meter metric.Meter) (*InvoiceMetrics, error) {
	created, err1 := NewCounter(meter, "invoice_created_total", "Invoices created", "{invoice}")
	rendered, err2 := NewCounter(meter, "invoice_pdf_rendered_total", "Invoice PDFs rendered", "{document}")
	failed, err3 := NewCounter(meter, "invoice_pdf_render_failures_total", "Invoice PDF renders that failed", "{document}")
	skipped, err4 := NewCounter(meter, "invoice_thumbnail_skipped_total", "Tile images skipped while rendering", "{image}")
	duration, err5 := NewHistogram(meter, HistogramOpts{
		Name:        "invoice_pdf_render_duration_seconds",
		Description: "Invoice PDF render latency",
		Unit:        "s",
		Boundaries:  RenderDurationBuckets,
	})
	if err := errors.Join(err1, err2, err3, err4, err5); err != nil {
		return nil, err
	}
	return &InvoiceMetrics{
		invoicesCreated:  created,
		pdfRendered:      rendered,
		renderFailures:   failed,
		thumbnailSkipped: skipped,
		renderDuration:   duration,
	}, nil
}

func (m *InvoiceMetrics) InvoiceCreated(ctx context.Context) {
	if m == nil {
		return
	}
	m.invoicesCreated.Inc(ctx)
}

// PDFRendered records a successful render by strategy
func (m *InvoiceMetrics) PDFRendered(ctx context.Context, strategy string, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.pdfRendered.Inc(ctx, AttrStrategy.String(strategy))
	m.renderDuration.RecordDuration(ctx, elapsed, AttrStrategy.String(strategy), AttrOutcome.String("ok"))
}

func (m *InvoiceMetrics) RenderFailed(ctx context.Context, strategy string, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.renderFailures.Inc(ctx, AttrStrategy.String(strategy))
	m.renderDuration.RecordDuration(ctx, elapsed, AttrStrategy.String(strategy), AttrOutcome.String("error"))
}

func (m *InvoiceMetrics) ThumbnailSkipped(ctx context.Context) {
	if m == nil {
		return
	}
	m.thumbnailSkipped.Inc(ctx)
}
