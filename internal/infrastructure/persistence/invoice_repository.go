package persistence

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/tileshop/backend/internal/domain/invoicing"
	"github.com/tileshop/backend/internal/domain/shared"
	"github.com/tileshop/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormInvoiceRepository implements invoicing.InvoiceRepository using GORM
type GormInvoiceRepository struct {
	db *gorm.DB
}

// NewGormInvoiceRepository creates a new GormInvoiceRepository
func NewGormInvoiceRepository(db *gorm.DB) *GormInvoiceRepository {
	return &GormInvoiceRepository{db: db}
}

// FindByID finds a non-deleted invoice with its items
func (r *GormInvoiceRepository) FindByID(ctx context.Context, id uuid.UUID) (*invoicing.Invoice, error) {
	var model models.InvoiceModel
	if err := r.db.WithContext(ctx).
		Preload("Items", orderItems).
		Where("id = ? AND deleted = ?", id, false).
		First(&model).Error; err != nil {
		return nil, translateNotFound(err)
	}
	return model.ToDomain(), nil
}

// FindByNumber finds a non-deleted invoice by its number
func (r *GormInvoiceRepository) FindByNumber(ctx context.Context, number string) (*invoicing.Invoice, error) {
	var model models.InvoiceModel
	if err := r.db.WithContext(ctx).
		Preload("Items", orderItems).
		Where("invoice_number = ? AND deleted = ?", number, false).
		First(&model).Error; err != nil {
		return nil, translateNotFound(err)
	}
	return model.ToDomain(), nil
}

// FindAll finds non-deleted invoices matching the filter, items included
func (r *GormInvoiceRepository) FindAll(ctx context.Context, filter shared.Filter) ([]invoicing.Invoice, error) {
	var invoiceModels []models.InvoiceModel
	query := r.applyFilter(r.db.WithContext(ctx).Model(&models.InvoiceModel{}), filter, true)
	if err := query.Preload("Items", orderItems).Find(&invoiceModels).Error; err != nil {
		return nil, err
	}

	invoices := make([]invoicing.Invoice, len(invoiceModels))
	for i := range invoiceModels {
		invoices[i] = *invoiceModels[i].ToDomain()
	}
	return invoices, nil
}

// Count counts non-deleted invoices matching the filter
func (r *GormInvoiceRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	var count int64
	if err := r.applyFilter(r.db.WithContext(ctx).Model(&models.InvoiceModel{}), filter, false).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// Create inserts a new invoice with its items. A taken invoice number
// yields shared.ErrAlreadyExists so the caller can allocate again.
func (r *GormInvoiceRepository) Create(ctx context.Context, invoice *invoicing.Invoice) error {
	model := models.InvoiceModelFromDomain(invoice)
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("Items").Create(model).Error; err != nil {
			if isUniqueViolation(err) {
				return shared.ErrAlreadyExists
			}
			return fmt.Errorf("create invoice: %w", err)
		}
		if len(model.Items) > 0 {
			if err := tx.Create(&model.Items).Error; err != nil {
				return fmt.Errorf("create invoice items: %w", err)
			}
		}
		return nil
	})
}

// Save updates an existing invoice with an optimistic version check and
// replaces its line items
func (r *GormInvoiceRepository) Save(ctx context.Context, invoice *invoicing.Invoice) error {
	model := models.InvoiceModelFromDomain(invoice)
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&models.InvoiceModel{}).
			Where("id = ? AND version = ?", invoice.ID, invoice.Version-1).
			Updates(map[string]any{
				"reference_name":    model.ReferenceName,
				"consignee_name":    model.ConsigneeName,
				"consignee_phone":   model.ConsigneePhone,
				"consignee_address": model.ConsigneeAddress,
				"overall_remarks":   model.OverallRemarks,
				"gst_percent":       model.GSTPercent,
				"gst_amount":        model.GSTAmount,
				"status":            model.Status,
				"transport_charges": model.TransportCharges,
				"unloading_charges": model.UnloadingCharges,
				"subtotal":          model.Subtotal,
				"grand_total":       model.GrandTotal,
				"amount_paid":       model.AmountPaid,
				"pending_balance":   model.PendingBalance,
				"deleted":           model.Deleted,
				"version":           model.Version,
				"updated_at":        model.UpdatedAt,
			})
		if result.Error != nil {
			return fmt.Errorf("update invoice: %w", result.Error)
		}
		if result.RowsAffected == 0 {
			return shared.ErrConcurrencyConflict
		}

		// Delete rows no longer present, then upsert the rest in order.
		currentIDs := make([]uuid.UUID, len(model.Items))
		for i := range model.Items {
			currentIDs[i] = model.Items[i].ID
		}
		del := tx.Where("invoice_id = ?", invoice.ID)
		if len(currentIDs) > 0 {
			del = del.Where("id NOT IN ?", currentIDs)
		}
		if err := del.Delete(&models.InvoiceLineItemModel{}).Error; err != nil {
			return fmt.Errorf("delete removed invoice items: %w", err)
		}
		for i := range model.Items {
			if err := tx.Save(&model.Items[i]).Error; err != nil {
				return fmt.Errorf("save invoice item: %w", err)
			}
		}
		return nil
	})
}

// SoftDelete flags an invoice as deleted. Its number stays reserved.
func (r *GormInvoiceRepository) SoftDelete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Model(&models.InvoiceModel{}).
		Where("id = ? AND deleted = ?", id, false).
		Updates(map[string]any{
			"deleted":    true,
			"updated_at": time.Now(),
			"version":    gorm.Expr("version + 1"),
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// FindNumbersForFinancialYear returns every number of the financial year,
// soft-deleted invoices included
func (r *GormInvoiceRepository) FindNumbersForFinancialYear(ctx context.Context, fy string) ([]string, error) {
	var numbers []string
	if err := r.db.WithContext(ctx).Model(&models.InvoiceModel{}).
		Where("invoice_number LIKE ?", invoicing.FinancialYearPattern(fy)).
		Pluck("invoice_number", &numbers).Error; err != nil {
		return nil, fmt.Errorf("scan invoice numbers: %w", err)
	}
	return numbers, nil
}

// SumPendingByCustomer sums pending_balance over the customer's non-deleted invoices
func (r *GormInvoiceRepository) SumPendingByCustomer(ctx context.Context, customerID uuid.UUID) (decimal.Decimal, error) {
	var total decimal.NullDecimal
	row := r.db.WithContext(ctx).Model(&models.InvoiceModel{}).
		Select("SUM(pending_balance)").
		Where("customer_id = ? AND deleted = ?", customerID, false).
		Row()
	if err := row.Scan(&total); err != nil {
		return decimal.Zero, fmt.Errorf("sum pending balance: %w", err)
	}
	if !total.Valid {
		return decimal.Zero, nil
	}
	return total.Decimal, nil
}

func (r *GormInvoiceRepository) applyFilter(query *gorm.DB, filter shared.Filter, paginate bool) *gorm.DB {
	query = query.Where("deleted = ?", false)

	if status, ok := filter.Filters["status"]; ok && status != "" {
		query = query.Where("status = ?", status)
	}
	if customerID, ok := filter.Filters["customer_id"]; ok && customerID != nil && customerID != "" {
		query = query.Where("customer_id = ?", customerID)
	}
	if filter.Search != "" {
		pattern := likePattern(filter.Search)
		query = query.Where(
			"LOWER(invoice_number) LIKE ? ESCAPE '"+likeEscape+"' OR LOWER(customer_name) LIKE ? ESCAPE '"+likeEscape+"' OR LOWER(reference_name) LIKE ? ESCAPE '"+likeEscape+"'",
			pattern, pattern, pattern,
		)
	}
	if !paginate {
		return query
	}

	filter = filter.Normalize()
	sortField := ValidateSortField(filter.OrderBy, InvoiceSortFields, "created_at")
	sortOrder := ValidateSortOrder(filter.OrderDir)
	query = query.Order(fmt.Sprintf("%s %s", sortField, sortOrder))

	return query.Offset(filter.Offset()).Limit(filter.PageSize)
}

func orderItems(db *gorm.DB) *gorm.DB {
	return db.Order("position ASC")
}

// Ensure GormInvoiceRepository implements InvoiceRepository
var _ invoicing.InvoiceRepository = (*GormInvoiceRepository)(nil)
