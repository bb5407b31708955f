package printing

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/disintegration/imaging"
	"github.com/go-pdf/fpdf"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

const (
	coreFont = "Helvetica"
	utf8Font = "invoice"

	imagePadding = 2.0
)

var (
	colorBrown = [3]int{89, 56, 38}
	colorGrey  = [3]int{102, 102, 102}
	colorBlack = [3]int{0, 0, 0}
	colorWhite = [3]int{255, 255, 255}
)

// OverlayConfig configures an OverlayRenderer
type OverlayConfig struct {
	// Background is an image drawn under every page. Empty draws on blank pages.
	Background string
	// FontPath is a UTF-8 TrueType font. When set, all text uses it and
	// amounts carry the rupee glyph.
	FontPath       string
	ThumbnailWidth int
	Logger         *zap.Logger
	// OnThumbnailFailure is called once per skipped thumbnail
	OnThumbnailFailure func()
}

// OverlayRenderer draws invoice data at fixed coordinates on top of the
// pre-rendered template artwork. It is safe for concurrent use; every
// Render builds its own document.
type OverlayRenderer struct {
	tmap        *TemplateMap
	background  []byte
	bgType      string
	font        []byte
	thumbWidth  int
	logger      *zap.Logger
	onThumbFail func()
}

// NewOverlayRenderer validates the background and font once up front
func NewOverlayRenderer(tmap *TemplateMap, cfg OverlayConfig) (*OverlayRenderer, error) {
	if tmap == nil {
		return nil, NewRenderError(ErrCodeTemplateMap, "template map is required", nil)
	}
	if err := tmap.Validate(); err != nil {
		return nil, NewRenderError(ErrCodeTemplateMap, "invalid template map", err)
	}

	r := &OverlayRenderer{
		tmap:        tmap,
		thumbWidth:  cfg.ThumbnailWidth,
		logger:      cfg.Logger,
		onThumbFail: cfg.OnThumbnailFailure,
	}
	if r.logger == nil {
		r.logger = zap.NewNop()
	}
	r.logger = r.logger.Named("overlay_renderer")
	if r.thumbWidth <= 0 {
		r.thumbWidth = DefaultThumbnailWidth
	}

	if cfg.Background != "" {
		bg, typ, err := loadBackground(cfg.Background)
		if err != nil {
			return nil, NewRenderError(ErrCodeBackground, "failed to load template background "+cfg.Background, err)
		}
		r.background, r.bgType = bg, typ
	}

	if cfg.FontPath != "" {
		font, err := os.ReadFile(cfg.FontPath)
		if err != nil {
			return nil, NewRenderError(ErrCodeFont, "failed to read font "+cfg.FontPath, err)
		}
		r.font = font
	}
	return r, nil
}

// loadBackground returns PNG or JPEG bytes fpdf can embed directly.
// Other formats are converted to PNG.
func loadBackground(path string) ([]byte, string, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, "", err
	}
	_, format, err := image.DecodeConfig(bytes.NewReader(raw))
	if err != nil {
		return nil, "", fmt.Errorf("decode background: %w", err)
	}
	switch format {
	case "png":
		return raw, "PNG", nil
	case "jpeg":
		return raw, "JPG", nil
	}
	img, err := imaging.Decode(bytes.NewReader(raw))
	if err != nil {
		return nil, "", fmt.Errorf("decode background: %w", err)
	}
	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.PNG); err != nil {
		return nil, "", err
	}
	return buf.Bytes(), "PNG", nil
}

// Glyph is the currency symbol this renderer prints
func (r *OverlayRenderer) Glyph() string {
	if r.font != nil {
		return RupeeGlyph
	}
	return RupeeFallback
}

// Close is a no-op; the renderer holds no external resources
func (r *OverlayRenderer) Close() error { return nil }

// Render draws the invoice onto as many template pages as it needs
func (r *OverlayRenderer) Render(ctx context.Context, doc *InvoiceDocument) (*RenderResult, error) {
	if doc == nil {
		return nil, NewRenderError(ErrCodeInvalidRequest, "invoice document is required", nil)
	}
	start := time.Now()

	pages := Paginate(doc.Items, r.tmap)
	w := r.newPageWriter(doc, len(pages))

	for _, page := range pages {
		if err := ctx.Err(); err != nil {
			return nil, NewRenderError(ErrCodeRenderTimeout, "rendering cancelled", err)
		}
		w.drawPage(page)
	}

	if w.pdf.Err() {
		return nil, NewRenderError(ErrCodeRenderFailed, "failed to draw invoice", w.pdf.Error())
	}
	var buf bytes.Buffer
	if err := w.pdf.Output(&buf); err != nil {
		return nil, NewRenderError(ErrCodeRenderFailed, "failed to write PDF", err)
	}

	r.logger.Debug("invoice rendered",
		zap.String("invoice_number", doc.Number),
		zap.Int("pages", len(pages)),
		zap.Int("skipped_images", w.skipped),
		zap.Duration("duration", time.Since(start)),
	)

	return &RenderResult{
		PDFData:        buf.Bytes(),
		PageCount:      len(pages),
		RenderDuration: time.Since(start),
		Strategy:       StrategyOverlay,
		SkippedImages:  w.skipped,
	}, nil
}

// pageWriter holds the per-document drawing state
type pageWriter struct {
	r          *OverlayRenderer
	tmap       *TemplateMap
	pdf        *fpdf.Fpdf
	doc        *InvoiceDocument
	totalPages int
	family     string
	tr         func(string) string
	glyph      string
	skipped    int
	images     int
}

func (r *OverlayRenderer) newPageWriter(doc *InvoiceDocument, totalPages int) *pageWriter {
	tmap := r.tmap
	pdf := fpdf.NewCustom(&fpdf.InitType{
		OrientationStr: "P",
		UnitStr:        "pt",
		Size:           fpdf.SizeType{Wd: tmap.PageWidth, Ht: tmap.PageHeight},
	})
	pdf.SetMargins(0, 0, 0)
	pdf.SetAutoPageBreak(false, 0)
	pdf.SetCreator("tileshop", false)
	pdf.SetTitle("Invoice "+doc.Number, true)

	w := &pageWriter{
		r:          r,
		tmap:       tmap,
		pdf:        pdf,
		doc:        doc,
		totalPages: totalPages,
		family:     coreFont,
		glyph:      r.Glyph(),
	}
	if r.font != nil {
		for _, style := range []string{"", "B", "I"} {
			pdf.AddUTF8FontFromBytes(utf8Font, style, r.font)
		}
		w.family = utf8Font
		w.tr = func(s string) string { return s }
	} else {
		w.tr = pdf.UnicodeTranslatorFromDescriptor("")
	}
	if r.background != nil {
		pdf.RegisterImageOptionsReader("background", fpdf.ImageOptions{ImageType: r.bgType}, bytes.NewReader(r.background))
	}
	return w
}

func (w *pageWriter) drawPage(page Page) {
	w.pdf.AddPage()
	if w.r.background != nil {
		w.pdf.ImageOptions("background", 0, 0, w.tmap.PageWidth, w.tmap.PageHeight, false,
			fpdf.ImageOptions{ImageType: w.r.bgType}, 0, "")
	}
	w.drawHeader(page.Number)

	for _, el := range page.Elements {
		switch el.Kind {
		case ElementSectionHeader:
			w.drawSectionHeader(el)
		case ElementItem:
			w.drawItem(el)
		case ElementSectionTotal:
			w.drawSectionTotal(el)
		}
	}

	if page.Number == w.totalPages {
		w.drawFooter()
		return
	}
	w.setFont("I", 8, colorGrey)
	w.centered("Continued on next page...", w.tmap.PageWidth/2, page.Limit+20)
}

func (w *pageWriter) setFont(style string, size float64, c [3]int) {
	w.pdf.SetFont(w.family, style, size)
	w.pdf.SetTextColor(c[0], c[1], c[2])
}

func (w *pageWriter) text(x, y float64, s string) {
	w.pdf.Text(x, y, w.tr(s))
}

func (w *pageWriter) width(s string) float64 {
	return w.pdf.GetStringWidth(w.tr(s))
}

func (w *pageWriter) rightAligned(s string, x, y float64) {
	w.text(x-w.width(s), y, s)
}

func (w *pageWriter) centered(s string, x, y float64) {
	w.text(x-w.width(s)/2, y, s)
}

func (w *pageWriter) money(d decimal.Decimal) string {
	return FormatCurrency(d, w.glyph)
}

type alignment int

const (
	alignLeft alignment = iota
	alignCenter
	alignRight
)

// inBox draws s vertically centred in a box, truncated to what the
// column can hold
func (w *pageWriter) inBox(s string, x, y, width, height, size float64, align alignment) {
	s = truncateForWidth(s, width, size)
	baseline := y + height/2 + size/3
	switch align {
	case alignCenter:
		w.centered(s, x+width/2, baseline)
	case alignRight:
		w.rightAligned(s, x+width-2, baseline)
	default:
		w.text(x+2, baseline, s)
	}
}

// truncateForWidth approximates a glyph as half the font size wide
func truncateForWidth(s string, width, size float64) string {
	limit := int(width / (size * 0.5))
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	if limit <= 2 {
		return ".."
	}
	return string(runes[:limit-2]) + ".."
}

func firstN(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}

func (w *pageWriter) drawHeader(pageNum int) {
	q := w.tmap.QuotationBox
	number := w.doc.Number
	if w.totalPages > 1 {
		number += fmt.Sprintf(" (Page %d/%d)", pageNum, w.totalPages)
	}
	w.setFont("B", 7.5, colorBlack)
	w.text(q.NumberValue.X, q.NumberValue.YFromTop, number)

	w.setFont("", 7.5, colorBlack)
	w.text(q.DateValue.X, q.DateValue.YFromTop, w.doc.Date.Format("02/01/2006"))
	if w.doc.Reference != "" {
		w.text(q.ReferenceValue.X, q.ReferenceValue.YFromTop, firstN(w.doc.Reference, 18))
	}

	w.drawParty(w.tmap.BuyerSection, w.doc.Buyer)
	w.drawParty(w.tmap.ConsigneeSection, w.doc.ShipTo)
}

func (w *pageWriter) drawParty(block PartyBlock, p Party) {
	if p.Name != "" {
		w.setFont("B", 7.5, colorBlack)
		w.text(block.Name.X, block.Name.YFromTop, firstN(p.Name, 35))
	}
	w.setFont("", 7, colorBlack)
	if p.Phone != "" {
		w.text(block.Phone.X, block.Phone.YFromTop, "Ph: "+p.Phone)
	}
	line1, line2 := splitAddress(p.Address)
	if line1 != "" {
		w.text(block.AddressLine1.X, block.AddressLine1.YFromTop, line1)
	}
	if line2 != "" {
		w.text(block.AddressLine2.X, block.AddressLine2.YFromTop, line2)
	}
	if block.GSTIN != nil && p.GSTIN != "" {
		w.text(block.GSTIN.X, block.GSTIN.YFromTop, "GSTIN: "+p.GSTIN)
	}
}

// splitAddress breaks an address into two printed lines at 40 and 80 characters
func splitAddress(addr string) (string, string) {
	runes := []rune(strings.TrimSpace(addr))
	if len(runes) <= 40 {
		return string(runes), ""
	}
	end := len(runes)
	if end > 80 {
		end = 80
	}
	return string(runes[:40]), strings.TrimSpace(string(runes[40:end]))
}

func (w *pageWriter) mask(box *MaskBox, y float64) {
	if box == nil {
		return
	}
	w.pdf.SetFillColor(colorWhite[0], colorWhite[1], colorWhite[2])
	w.pdf.Rect(box.X, y, box.Width, box.Height, "F")
}

func (w *pageWriter) drawSectionHeader(el Element) {
	band := w.tmap.Table.SectionHeader
	w.mask(band.MaskBox, el.Y-2)
	w.setFont("B", 9, colorBrown)
	w.centered(strings.ToUpper(el.Section), w.tmap.PageWidth/2, el.Y+band.Height/2-3)
}

func (w *pageWriter) drawSectionTotal(el Element) {
	band := w.tmap.Table.SectionTotal
	amount := w.tmap.Column(ColAmount)
	w.mask(band.MaskBox, el.Y)

	w.setFont("B", 7, colorBrown)
	w.rightAligned(el.Section+"'s Total Amount:", amount.X-5, el.Y+band.Height/2-2)

	w.setFont("B", 7, colorBlack)
	w.inBox(w.money(el.Total), amount.X, el.Y, amount.Width, band.Height, 7, alignRight)
}

func (w *pageWriter) drawItem(el Element) {
	item := el.Item
	y, h := el.Y, el.Height
	col := w.tmap.Column

	w.setFont("", 7, colorBlack)
	c := col(ColSrNo)
	w.inBox(strconv.Itoa(el.SrNo), c.X, y, c.Width, h, 7, alignCenter)
	c = col(ColName)
	w.inBox(item.TileName, c.X, y, c.Width, h, 7, alignLeft)
	c = col(ColSize)
	w.inBox(item.Size, c.X, y, c.Width, h, 7, alignCenter)
	c = col(ColRateBox)
	w.inBox(w.money(item.RatePerBox), c.X, y, c.Width, h, 7, alignRight)
	c = col(ColRateSqft)
	w.inBox(w.money(item.RatePerSqft), c.X, y, c.Width, h, 7, alignRight)
	c = col(ColQuantity)
	w.inBox(fmt.Sprintf("%d box", item.BoxQty), c.X, y, c.Width, h, 7, alignCenter)
	c = col(ColDisc)
	w.inBox(item.DiscountPercent.Round(0).String()+"%", c.X, y, c.Width, h, 7, alignCenter)
	c = col(ColAmount)
	w.inBox(w.money(item.FinalAmount), c.X, y, c.Width, h, 7, alignRight)

	if item.HasImage() {
		w.drawThumbnail(el)
	}
}

func (w *pageWriter) drawThumbnail(el Element) {
	thumb, err := DecodeThumbnail(el.Item.TileImage, w.r.thumbWidth)
	if err != nil {
		w.skipped++
		w.r.logger.Warn("skipping tile image",
			zap.String("invoice_number", w.doc.Number),
			zap.String("section", el.Section),
			zap.Int("row", el.SrNo),
			zap.Error(err),
		)
		if w.r.onThumbFail != nil {
			w.r.onThumbFail()
		}
		return
	}

	col := w.tmap.Column(ColImage)
	boxW, boxH := col.ImgWidth-2*imagePadding, col.ImgHeight-2*imagePadding
	dw, dh := fitBox(thumb.Width, thumb.Height, boxW, boxH)
	x := col.X + (col.Width-dw)/2
	y := el.Y + (el.Height-dh)/2

	w.images++
	name := "thumb-" + strconv.Itoa(w.images)
	opts := fpdf.ImageOptions{ImageType: "JPG"}
	w.pdf.RegisterImageOptionsReader(name, opts, bytes.NewReader(thumb.JPEG))
	w.pdf.ImageOptions(name, x, y, dw, dh, false, opts, 0, "")
}

func (w *pageWriter) drawFooter() {
	fs := w.tmap.FinancialSummary
	w.setFont("", 7.5, colorBlack)
	w.rightAligned(w.money(w.doc.Subtotal), fs.ValueX, fs.TotalAmount.YFromTop)
	w.rightAligned(w.money(w.doc.TransportCharges), fs.ValueX, fs.Transport.YFromTop)
	w.rightAligned(w.money(w.doc.UnloadingCharges), fs.ValueX, fs.Unloading.YFromTop)

	if w.doc.GSTApplicable() {
		w.rightAligned(w.money(w.doc.GSTAmount), fs.ValueX, fs.GST.YFromTop)
	} else {
		w.setFont("I", 7, colorGrey)
		w.rightAligned("As applicable", fs.ValueX, fs.GST.YFromTop)
	}

	w.setFont("B", 8, colorWhite)
	w.rightAligned(w.money(w.doc.GrandTotal), fs.ValueX, fs.FinalAmount.YFromTop)

	w.drawRemarks()
}

func (w *pageWriter) drawRemarks() {
	box := w.tmap.OverallRemarks
	remarks := strings.TrimSpace(w.doc.Remarks)
	if remarks == "" || box.MaxWidth <= 0 {
		return
	}
	w.setFont("", 7, colorBlack)
	for i, line := range wrapWords(remarks, box.MaxWidth, w.width) {
		w.text(box.X, box.YFromTop+float64(i)*10, line)
	}
}

// wrapWords greedily fills lines up to maxWidth as measured by width.
// A single word wider than maxWidth gets a line of its own.
func wrapWords(s string, maxWidth float64, width func(string) float64) []string {
	var lines []string
	var current string
	for _, word := range strings.Fields(s) {
		candidate := word
		if current != "" {
			candidate = current + " " + word
		}
		if current != "" && width(candidate) > maxWidth {
			lines = append(lines, current)
			current = word
			continue
		}
		current = candidate
	}
	if current != "" {
		lines = append(lines, current)
	}
	return lines
}
