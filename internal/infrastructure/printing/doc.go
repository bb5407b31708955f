// Package printing renders invoices to PDF.
//
// Two InvoiceRenderer implementations exist:
//   - OverlayRenderer draws the variable invoice data with go-pdf/fpdf on top
//     of a fixed template background whose coordinates come from a TemplateMap.
//   - ChromedpRenderer fills an html/template layout and prints it with
//     headless Chrome.
//
// Layout is computed by Paginate, separately from drawing, so page breaking
// can be tested without producing a PDF. Generated files can be archived in a
// PDFStorage.
//
// Example usage:
//
//	tmap, err := LoadTemplateMap("assets/pdf/template_map.json")
//	if err != nil {
//	    return err
//	}
//	renderer, err := NewOverlayRenderer(tmap, OverlayConfig{Background: "assets/pdf/invoice-template.png"})
//	if err != nil {
//	    return err
//	}
//	result, err := renderer.Render(ctx, NewInvoiceDocument(invoice, loc))
package printing
