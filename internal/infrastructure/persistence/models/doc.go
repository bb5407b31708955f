// Package models contains GORM persistence models that map to database tables.
// Domain entities carry no ORM tags; each model converts to and from its
// aggregate through ToDomain and FromDomain.
//
// Tables:
//   - tiles: TileModel
//   - customers: CustomerModel
//   - invoices: InvoiceModel
//   - invoice_line_items: InvoiceLineItemModel, ordered by position
package models
