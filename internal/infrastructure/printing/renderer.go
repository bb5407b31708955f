package printing

import (
	"context"
	"time"
)

// Strategy names accepted by printing.strategy
const (
	StrategyOverlay = "overlay"
	StrategyHTML    = "html"
)

// RenderResult contains the output from PDF rendering
type RenderResult struct {
	// PDFData is the raw PDF file content
	PDFData []byte
	// PageCount is the number of pages in the PDF
	PageCount int
	// RenderDuration is how long the rendering took
	RenderDuration time.Duration
	// Strategy names the renderer that produced the file
	Strategy string
	// SkippedImages counts thumbnails that could not be decoded
	SkippedImages int
}

// InvoiceRenderer turns an invoice document into PDF bytes
type InvoiceRenderer interface {
	Render(ctx context.Context, doc *InvoiceDocument) (*RenderResult, error)
	// Close releases any resources held by the renderer
	Close() error
}

// RenderError is a fatal rendering failure. Thumbnail problems are never
// reported this way; they are logged and the image is skipped.
type RenderError struct {
	Code    string
	Message string
	Cause   error
}

func (e *RenderError) Error() string {
	if e.Cause != nil {
		return e.Message + ": " + e.Cause.Error()
	}
	return e.Message
}

func (e *RenderError) Unwrap() error {
	return e.Cause
}

// Error codes for rendering failures
const (
	ErrCodeRenderTimeout  = "RENDER_TIMEOUT"
	ErrCodeRenderFailed   = "RENDER_FAILED"
	ErrCodeInvalidHTML    = "INVALID_HTML"
	ErrCodeTemplateMap    = "TEMPLATE_MAP_INVALID"
	ErrCodeBackground     = "TEMPLATE_BACKGROUND_INVALID"
	ErrCodeFont           = "FONT_INVALID"
	ErrCodeStorageFailed  = "STORAGE_FAILED"
	ErrCodeInvalidRequest = "INVALID_REQUEST"
)

// NewRenderError creates a new RenderError
func NewRenderError(code, message string, cause error) *RenderError {
	return &RenderError{
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}
