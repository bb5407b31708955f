package printing

import (
	"bytes"
	"html/template"
	"maps"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/tileshop/backend/internal/domain/invoicing"
)

// TemplateEngine renders invoice HTML with html/template and a set of
// formatting functions.
type TemplateEngine struct {
	funcMap template.FuncMap
	glyph   string
	invoice *template.Template
}

// TemplateEngineOption configures the template engine
type TemplateEngineOption func(*TemplateEngine)

// WithCurrencyGlyph sets the symbol formatMoney prefixes amounts with
func WithCurrencyGlyph(glyph string) TemplateEngineOption {
	return func(e *TemplateEngine) {
		e.glyph = glyph
	}
}

// NewTemplateEngine creates a template engine with the built-in invoice
// layout. Browsers always have the rupee glyph, so it is the default.
func NewTemplateEngine(opts ...TemplateEngineOption) *TemplateEngine {
	e := &TemplateEngine{glyph: RupeeGlyph}
	for _, opt := range opts {
		opt(e)
	}

	e.funcMap = template.FuncMap{
		"formatMoney":  func(v interface{}) string { return FormatCurrency(toDecimal(v), e.glyph) },
		"formatNumber": func(v interface{}) string { return FormatIndianNumber(toDecimal(v)) },
		"formatRate":   formatRate,
		"formatDate":   formatDate,
		"formatPct":    formatPct,
		"upper":        strings.ToUpper,
		"title":        titleCase,
		"truncate":     truncate,
		"add":          func(a, b int) int { return a + b },
		"positive":     func(v interface{}) bool { return toDecimal(v).IsPositive() },
		"imageURL":     imageURL,
	}
	e.invoice = template.Must(template.New("invoice").Funcs(e.funcMap).Parse(invoiceHTML))
	return e
}

// invoiceView is the data the invoice layout is executed with
type invoiceView struct {
	*InvoiceDocument
	Groups []invoicing.Section
}

// RenderInvoice renders the built-in invoice layout
func (e *TemplateEngine) RenderInvoice(doc *InvoiceDocument) (string, error) {
	if doc == nil {
		return "", NewRenderError(ErrCodeInvalidRequest, "invoice document is required", nil)
	}
	view := invoiceView{InvoiceDocument: doc, Groups: doc.Sections()}

	var buf bytes.Buffer
	if err := e.invoice.Execute(&buf, view); err != nil {
		return "", NewRenderError(ErrCodeRenderFailed, "failed to execute invoice template", err)
	}
	return buf.String(), nil
}

// RenderString renders an ad-hoc template string with the engine's functions
func (e *TemplateEngine) RenderString(name, content string, data interface{}) (string, error) {
	if content == "" {
		return "", NewRenderError(ErrCodeInvalidHTML, "template content is empty", nil)
	}
	tmpl, err := template.New(name).Funcs(e.funcMap).Parse(content)
	if err != nil {
		return "", NewRenderError(ErrCodeInvalidHTML, "failed to parse template", err)
	}
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", NewRenderError(ErrCodeRenderFailed, "failed to execute template", err)
	}
	return buf.String(), nil
}

// GetFuncMap returns a copy of the template function map
func (e *TemplateEngine) GetFuncMap() template.FuncMap {
	funcMap := make(template.FuncMap, len(e.funcMap))
	maps.Copy(funcMap, e.funcMap)
	return funcMap
}

// formatRate prints a rate with two decimals and no grouping
func formatRate(v interface{}) string {
	return toDecimal(v).StringFixed(2)
}

// formatPct rounds a percentage to a whole number: 7.5 -> "8%"
func formatPct(v interface{}) string {
	return toDecimal(v).Round(0).String() + "%"
}

func formatDate(v interface{}) string {
	t, ok := v.(time.Time)
	if !ok || t.IsZero() {
		return ""
	}
	return t.Format("02/01/2006")
}

// truncate cuts s to n runes, ending with ".."
func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	if n <= 2 {
		return string(runes[:n])
	}
	return string(runes[:n-2]) + ".."
}

// imageURL turns a stored tile image into an inline data URI. Bare base64
// payloads are labelled JPEG; browsers sniff the real format.
func imageURL(s string) template.URL {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "data:image/") {
		return template.URL(s)
	}
	if strings.ContainsAny(s, "\"'<> :") {
		return ""
	}
	return template.URL("data:image/jpeg;base64," + s)
}

// titleCase converts string to title case using proper Unicode handling
func titleCase(s string) string {
	caser := cases.Title(language.English)
	return caser.String(s)
}

// toDecimal converts various types to decimal.Decimal
func toDecimal(v interface{}) decimal.Decimal {
	switch val := v.(type) {
	case decimal.Decimal:
		return val
	case *decimal.Decimal:
		if val == nil {
			return decimal.Zero
		}
		return *val
	case int:
		return decimal.NewFromInt(int64(val))
	case int64:
		return decimal.NewFromInt(val)
	case float64:
		return decimal.NewFromFloat(val)
	case string:
		d, err := decimal.NewFromString(val)
		if err != nil {
			return decimal.Zero
		}
		return d
	default:
		return decimal.Zero
	}
}

const invoiceHTML = `<!DOCTYPE html>
<html>
<head>
<meta charset="UTF-8">
<title>Invoice {{.Number}}</title>
<style>
  body { font-family: Helvetica, Arial, sans-serif; font-size: 9pt; color: #222; margin: 0; }
  .head { display: flex; justify-content: space-between; border-bottom: 2px solid #593826; padding-bottom: 8px; }
  .head h1 { color: #593826; font-size: 16pt; margin: 0; }
  .parties { display: flex; gap: 24px; margin: 10px 0; }
  .parties div { flex: 1; }
  .label { color: #777; font-size: 7pt; text-transform: uppercase; }
  table { width: 100%; border-collapse: collapse; }
  th { background: #decdba; font-size: 7.5pt; padding: 4px; text-align: left; }
  td { padding: 4px; border-bottom: 1px solid #eee; vertical-align: middle; }
  tr { page-break-inside: avoid; }
  .num { text-align: right; white-space: nowrap; }
  .mid { text-align: center; }
  .section td { text-align: center; font-weight: bold; color: #593826; border-bottom: 1px solid #593826; }
  .subtotal td { font-weight: bold; }
  .subtotal .lbl { text-align: right; color: #593826; }
  img.thumb { max-width: 30px; max-height: 30px; }
  .summary { width: 45%; margin-left: auto; margin-top: 12px; }
  .summary td { border: none; padding: 2px 4px; }
  .grand td { background: #593826; color: #fff; font-weight: bold; }
  .muted { color: #666; font-style: italic; }
  .remarks { margin-top: 12px; font-size: 8pt; }
</style>
</head>
<body>
<div class="head">
  <h1>Tax Invoice</h1>
  <div>
    <div><b>{{.Number}}</b></div>
    <div>Date: {{formatDate .Date}}</div>
    {{- if .Reference}}<div>Ref: {{truncate .Reference 18}}</div>{{end}}
  </div>
</div>
<div class="parties">
  <div>
    <div class="label">Buyer</div>
    <b>{{.Buyer.Name}}</b>
    {{- if .Buyer.Phone}}<div>Ph: {{.Buyer.Phone}}</div>{{end}}
    {{- if .Buyer.Address}}<div>{{.Buyer.Address}}</div>{{end}}
    {{- if .Buyer.GSTIN}}<div>GSTIN: {{.Buyer.GSTIN}}</div>{{end}}
  </div>
  <div>
    <div class="label">Consignee</div>
    <b>{{.ShipTo.Name}}</b>
    {{- if .ShipTo.Phone}}<div>Ph: {{.ShipTo.Phone}}</div>{{end}}
    {{- if .ShipTo.Address}}<div>{{.ShipTo.Address}}</div>{{end}}
  </div>
</div>
<table>
  <thead>
    <tr><th>Sr</th><th>Tile</th><th></th><th>Size</th><th class="num">Rate/Box</th><th class="num">Rate/Sqft</th><th class="mid">Qty</th><th class="mid">Disc</th><th class="num">Amount</th></tr>
  </thead>
  <tbody>
  {{- range .Groups}}
    <tr class="section"><td colspan="9">{{upper .Name}}</td></tr>
    {{- range $i, $item := .Items}}
    <tr>
      <td class="mid">{{add $i 1}}</td>
      <td>{{title $item.TileName}}</td>
      <td>{{if $item.HasImage}}<img class="thumb" src="{{imageURL $item.TileImage}}">{{end}}</td>
      <td class="mid">{{$item.Size}}</td>
      <td class="num">{{formatRate $item.RatePerBox}}</td>
      <td class="num">{{formatRate $item.RatePerSqft}}</td>
      <td class="mid">{{$item.BoxQty}} box</td>
      <td class="mid">{{formatPct $item.DiscountPercent}}</td>
      <td class="num">{{formatMoney $item.FinalAmount}}</td>
    </tr>
    {{- end}}
    <tr class="subtotal"><td colspan="8" class="lbl">{{.Name}}'s Total Amount:</td><td class="num">{{formatMoney .Total}}</td></tr>
  {{- end}}
  </tbody>
</table>
<table class="summary">
  <tr><td>Total Amount</td><td class="num">{{formatMoney .Subtotal}}</td></tr>
  <tr><td>Transport</td><td class="num">{{formatMoney .TransportCharges}}</td></tr>
  <tr><td>Unloading</td><td class="num">{{formatMoney .UnloadingCharges}}</td></tr>
  <tr><td>GST{{if positive .GSTPercent}} ({{formatRate .GSTPercent}}%){{end}}</td>
      <td class="num">{{if .GSTApplicable}}{{formatMoney .GSTAmount}}{{else}}<span class="muted">As applicable</span>{{end}}</td></tr>
  <tr class="grand"><td>Grand Total</td><td class="num">{{formatMoney .GrandTotal}}</td></tr>
  {{- if positive .AmountPaid}}
  <tr><td>Paid</td><td class="num">{{formatMoney .AmountPaid}}</td></tr>
  <tr><td>Pending</td><td class="num">{{formatMoney .PendingBalance}}</td></tr>
  {{- end}}
</table>
{{- if .Remarks}}
<div class="remarks"><span class="label">Remarks</span><div>{{.Remarks}}</div></div>
{{- end}}
</body>
</html>
`
