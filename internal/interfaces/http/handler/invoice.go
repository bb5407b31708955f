package handler

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	invoicingapp "github.com/tileshop/backend/internal/application/invoicing"
)

const (
	contentTypePDF  = "application/pdf"
	contentTypeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

// InvoiceHandler handles invoice CRUD, PDF download and register export
type InvoiceHandler struct {
	BaseHandler
	invoiceService  *invoicingapp.InvoiceService
	documentService *invoicingapp.DocumentService
	now             func() time.Time
}

// NewInvoiceHandler creates a new InvoiceHandler
func NewInvoiceHandler(invoiceService *invoicingapp.InvoiceService, documentService *invoicingapp.DocumentService) *InvoiceHandler {
	return &InvoiceHandler{
		invoiceService:  invoiceService,
		documentService: documentService,
		now:             time.Now,
	}
}

// Create godoc
// @ID           createInvoice
// @Summary      Create an invoice
// @Description  Calculates every line item and the totals, then allocates the next
// @Description  "TTS / NNN / YYYY-YY" number for the invoice date's financial year
// @Tags         invoices
// @Accept       json
// @Produce      json
// @Param        request body invoicingapp.CreateInvoiceRequest true "Invoice"
// @Success      201 {object} APIResponse[invoicingapp.InvoiceResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse "Customer not found"
// @Failure      503 {object} ErrorResponse "Invoice numbering contended"
// @Security     BearerAuth
// @Router       /invoices [post]
func (h *InvoiceHandler) Create(c *gin.Context) {
	var req invoicingapp.CreateInvoiceRequest
	if !h.BindJSON(c, &req) {
		return
	}

	invoice, err := h.invoiceService.Create(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, invoice)
}

// List godoc
// @ID           listInvoices
// @Summary      List invoices
// @Tags         invoices
// @Produce      json
// @Param        status query string false "Draft, Sent, Paid or Cancelled"
// @Param        customer_id query string false "Customer ID" format(uuid)
// @Param        search query string false "Invoice number or customer name"
// @Param        page query int false "Page number" default(1)
// @Param        page_size query int false "Page size" default(20) maximum(100)
// @Success      200 {object} APIResponse[[]invoicingapp.InvoiceResponse]
// @Security     BearerAuth
// @Router       /invoices [get]
func (h *InvoiceHandler) List(c *gin.Context) {
	var filter invoicingapp.InvoiceListFilter
	if !h.BindQuery(c, &filter) {
		return
	}

	invoices, total, err := h.invoiceService.List(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, invoices, total, filter.Page, filter.PageSize)
}

// Get godoc
// @ID           getInvoice
// @Summary      Get an invoice
// @Tags         invoices
// @Produce      json
// @Param        ref path string true "Invoice ID or URL-encoded invoice number"
// @Success      200 {object} APIResponse[invoicingapp.InvoiceResponse]
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /invoices/{ref} [get]
func (h *InvoiceHandler) Get(c *gin.Context) {
	invoice, err := h.invoiceService.Get(c.Request.Context(), c.Param("ref"))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, invoice)
}

// Update godoc
// @ID           updateInvoice
// @Summary      Update an invoice
// @Description  Paid invoices are immutable. Totals are always recomputed.
// @Tags         invoices
// @Accept       json
// @Produce      json
// @Param        ref path string true "Invoice ID or URL-encoded invoice number"
// @Param        request body invoicingapp.UpdateInvoiceRequest true "Changed fields"
// @Success      200 {object} APIResponse[invoicingapp.InvoiceResponse]
// @Failure      403 {object} ErrorResponse "Cannot edit a Paid invoice"
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /invoices/{ref} [put]
func (h *InvoiceHandler) Update(c *gin.Context) {
	var req invoicingapp.UpdateInvoiceRequest
	if !h.BindJSON(c, &req) {
		return
	}

	invoice, err := h.invoiceService.Update(c.Request.Context(), c.Param("ref"), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, invoice)
}

// Delete godoc
// @ID           deleteInvoice
// @Summary      Delete an invoice
// @Tags         invoices
// @Produce      json
// @Param        ref path string true "Invoice ID or URL-encoded invoice number"
// @Success      200 {object} APIResponse[dto.MessageResponse]
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /invoices/{ref} [delete]
func (h *InvoiceHandler) Delete(c *gin.Context) {
	if err := h.invoiceService.Delete(c.Request.Context(), c.Param("ref")); err != nil {
		h.HandleError(c, err)
		return
	}
	h.Message(c, "Invoice deleted successfully")
}

// DownloadPDF godoc
// @ID           downloadInvoicePdf
// @Summary      Download the invoice PDF
// @Tags         invoices
// @Produce      application/pdf
// @Param        ref path string true "Invoice ID or URL-encoded invoice number"
// @Success      200 {file} file
// @Header       200 {string} X-Archive-Key "Archive key when archiving is enabled"
// @Failure      404 {object} ErrorResponse
// @Failure      500 {object} ErrorResponse "Rendering failed"
// @Security     BearerAuth
// @Router       /invoices/{ref}/pdf [get]
func (h *InvoiceHandler) DownloadPDF(c *gin.Context) {
	h.servePDF(c, "attachment", "no-cache")
}

// PublicPDF godoc
// @ID           publicInvoicePdf
// @Summary      View the invoice PDF without authentication
// @Description  Shareable link for customers; rendered inline and cacheable for an hour
// @Tags         public
// @Produce      application/pdf
// @Param        ref path string true "Invoice ID or URL-encoded invoice number"
// @Success      200 {file} file
// @Failure      404 {object} ErrorResponse
// @Router       /public/invoices/{ref}/pdf [get]
func (h *InvoiceHandler) PublicPDF(c *gin.Context) {
	h.servePDF(c, "inline", "public, max-age=3600")
}

func (h *InvoiceHandler) servePDF(c *gin.Context, disposition, cacheControl string) {
	doc, err := h.documentService.RenderPDF(c.Request.Context(), c.Param("ref"))
	if err != nil {
		h.HandleError(c, err)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("%s; filename=%s", disposition, doc.Filename))
	c.Header("Cache-Control", cacheControl)
	c.Header("X-Page-Count", strconv.Itoa(doc.PageCount))
	if doc.ArchiveKey != "" {
		c.Header("X-Archive-Key", doc.ArchiveKey)
	}
	c.Data(http.StatusOK, contentTypePDF, doc.Content)
}

// ExportRegister godoc
// @ID           exportInvoiceRegister
// @Summary      Export the invoice register
// @Description  XLSX workbook of every invoice matching the filter, pagination ignored
// @Tags         invoices
// @Produce      application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Param        status query string false "Draft, Sent, Paid or Cancelled"
// @Param        customer_id query string false "Customer ID" format(uuid)
// @Param        search query string false "Invoice number or customer name"
// @Success      200 {file} file
// @Security     BearerAuth
// @Router       /invoices/export.xlsx [get]
func (h *InvoiceHandler) ExportRegister(c *gin.Context) {
	var filter invoicingapp.InvoiceListFilter
	if !h.BindQuery(c, &filter) {
		return
	}

	data, err := h.documentService.ExportRegister(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	filename := fmt.Sprintf("invoices_%s.xlsx", h.now().Format("20060102"))
	c.Header("Content-Disposition", "attachment; filename="+filename)
	c.Header("Cache-Control", "no-cache")
	c.Data(http.StatusOK, contentTypeXLSX, data)
}
