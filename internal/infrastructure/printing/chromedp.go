package printing

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"
	"go.uber.org/zap"
)

const (
	defaultChromeTimeout = 30 * time.Second
	defaultScale         = 1.0
	defaultMarginMM      = 10.0

	a4WidthMM  = 210.0
	a4HeightMM = 297.0
)

const pageFooterTemplate = `<div style="font-size:7pt;width:100%;text-align:center;color:#666">` +
	`Page <span class="pageNumber"></span> of <span class="totalPages"></span></div>`

// ChromedpConfig contains configuration for the chromedp renderer
type ChromedpConfig struct {
	// DefaultTimeout bounds one render
	DefaultTimeout time.Duration
	// RemoteURL is the URL of a remote Chrome/Chromium instance (optional)
	// If empty, chromedp will launch a new browser instance
	RemoteURL string
	// NoSandbox runs Chrome without sandbox (required for Docker/root)
	NoSandbox bool
	// Scale for rendering (default: 1.0)
	Scale float64
	// Paper size and uniform margin in millimetres, A4 with 10mm by default
	PaperWidthMM  float64
	PaperHeightMM float64
	MarginMM      float64
	// Engine produces the invoice HTML
	Engine *TemplateEngine
	Logger *zap.Logger
}

// ChromedpRenderer prints the HTML invoice layout through headless Chrome
type ChromedpRenderer struct {
	config      *ChromedpConfig
	engine      *TemplateEngine
	logger      *zap.Logger
	allocCtx    context.Context
	allocCancel context.CancelFunc
}

// NewChromedpRenderer creates the renderer. The browser is started lazily on
// the first render.
func NewChromedpRenderer(config *ChromedpConfig) (*ChromedpRenderer, error) {
	if config == nil {
		config = &ChromedpConfig{}
	}
	if config.DefaultTimeout == 0 {
		config.DefaultTimeout = defaultChromeTimeout
	}
	if config.Scale == 0 {
		config.Scale = defaultScale
	}
	if config.PaperWidthMM == 0 || config.PaperHeightMM == 0 {
		config.PaperWidthMM, config.PaperHeightMM = a4WidthMM, a4HeightMM
	}
	if config.MarginMM == 0 {
		config.MarginMM = defaultMarginMM
	}

	logger := config.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	engine := config.Engine
	if engine == nil {
		engine = NewTemplateEngine()
	}

	renderer := &ChromedpRenderer{
		config: config,
		engine: engine,
		logger: logger.Named("chromedp_renderer"),
	}
	renderer.initAllocator()
	return renderer, nil
}

func (r *ChromedpRenderer) initAllocator() {
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", true),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-first-run", true),
		chromedp.Flag("disable-default-apps", true),
		chromedp.Flag("disable-extensions", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.Flag("disable-background-networking", true),
		chromedp.Flag("disable-sync", true),
		chromedp.Flag("disable-translate", true),
		chromedp.Flag("font-render-hinting", "none"),
	)
	if r.config.NoSandbox {
		opts = append(opts, chromedp.Flag("no-sandbox", true))
	}

	if r.config.RemoteURL != "" {
		r.allocCtx, r.allocCancel = chromedp.NewRemoteAllocator(context.Background(), r.config.RemoteURL)
	} else {
		r.allocCtx, r.allocCancel = chromedp.NewExecAllocator(context.Background(), opts...)
	}
}

// Render lays the invoice out as HTML and prints it to PDF
func (r *ChromedpRenderer) Render(ctx context.Context, doc *InvoiceDocument) (*RenderResult, error) {
	html, err := r.engine.RenderInvoice(doc)
	if err != nil {
		return nil, err
	}
	result, err := r.renderHTML(ctx, html)
	if err != nil {
		return nil, err
	}
	r.logger.Info("invoice rendered",
		zap.String("invoice_number", doc.Number),
		zap.Int("bytes", len(result.PDFData)),
		zap.Int("pages", result.PageCount),
		zap.Duration("duration", result.RenderDuration))
	return result, nil
}

func (r *ChromedpRenderer) renderHTML(ctx context.Context, html string) (*RenderResult, error) {
	if strings.TrimSpace(html) == "" {
		return nil, NewRenderError(ErrCodeInvalidHTML, "HTML content is empty", nil)
	}
	startTime := time.Now()

	ctx, cancel := context.WithTimeout(ctx, r.config.DefaultTimeout)
	defer cancel()

	browserCtx, browserCancel := chromedp.NewContext(r.allocCtx,
		chromedp.WithLogf(func(format string, args ...interface{}) {
			r.logger.Debug(fmt.Sprintf(format, args...))
		}),
	)
	defer browserCancel()

	// tie the browser tab to the caller's deadline
	stop := context.AfterFunc(ctx, browserCancel)
	defer stop()

	params := r.buildPrintParams()
	var pdfData []byte
	err := chromedp.Run(browserCtx,
		chromedp.Navigate("about:blank"),
		chromedp.ActionFunc(func(ctx context.Context) error {
			frameTree, err := page.GetFrameTree().Do(ctx)
			if err != nil {
				return err
			}
			return page.SetDocumentContent(frameTree.Frame.ID, html).Do(ctx)
		}),
		chromedp.ActionFunc(func(ctx context.Context) error {
			data, _, err := page.PrintToPDF().
				WithPrintBackground(params.printBackground).
				WithPaperWidth(params.paperWidth).
				WithPaperHeight(params.paperHeight).
				WithMarginTop(params.margin).
				WithMarginRight(params.margin).
				WithMarginBottom(params.margin).
				WithMarginLeft(params.margin).
				WithScale(params.scale).
				WithDisplayHeaderFooter(true).
				WithHeaderTemplate("<span></span>").
				WithFooterTemplate(pageFooterTemplate).
				Do(ctx)
			if err != nil {
				return err
			}
			pdfData = data
			return nil
		}),
	)

	if err != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return nil, NewRenderError(ErrCodeRenderTimeout,
				fmt.Sprintf("PDF rendering timed out after %v", r.config.DefaultTimeout), err)
		}
		if errors.Is(ctx.Err(), context.Canceled) {
			return nil, NewRenderError(ErrCodeRenderTimeout, "PDF rendering was cancelled", err)
		}
		r.logger.Error("chromedp rendering failed", zap.Error(err))
		return nil, NewRenderError(ErrCodeRenderFailed, "chromedp execution failed", err)
	}
	if len(pdfData) == 0 {
		return nil, NewRenderError(ErrCodeRenderFailed, "generated PDF is empty", nil)
	}

	return &RenderResult{
		PDFData:        pdfData,
		PageCount:      estimatePageCount(pdfData),
		RenderDuration: time.Since(startTime),
		Strategy:       StrategyHTML,
	}, nil
}

// printParams holds the parameters for PDF printing
type printParams struct {
	paperWidth      float64
	paperHeight     float64
	margin          float64
	scale           float64
	printBackground bool
}

// buildPrintParams converts the configured paper to inches, which Chrome expects.
// The bottom margin always leaves room for the page footer.
func (r *ChromedpRenderer) buildPrintParams() *printParams {
	margin := r.config.MarginMM
	if margin < defaultMarginMM {
		margin = defaultMarginMM
	}
	return &printParams{
		paperWidth:      mmToInches(r.config.PaperWidthMM),
		paperHeight:     mmToInches(r.config.PaperHeightMM),
		margin:          mmToInches(margin),
		scale:           r.config.Scale,
		printBackground: true,
	}
}

// Close releases resources held by the renderer
func (r *ChromedpRenderer) Close() error {
	if r.allocCancel != nil {
		r.allocCancel()
	}
	return nil
}

func mmToInches(mm float64) float64 {
	return mm / 25.4
}

// estimatePageCount counts page objects, excluding the page tree root
func estimatePageCount(pdfData []byte) int {
	count := bytes.Count(pdfData, []byte("/Type /Page")) - bytes.Count(pdfData, []byte("/Type /Pages"))
	return max(count, 1)
}

var (
	_ InvoiceRenderer = (*ChromedpRenderer)(nil)
	_ InvoiceRenderer = (*OverlayRenderer)(nil)
)
