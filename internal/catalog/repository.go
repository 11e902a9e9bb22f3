package catalog

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/mercaline/storefront-backend/pkg/db/models"
)

// Repository wires together catalog persistence for items, discounts, and taxes.
type Repository struct {
	db *gorm.DB
}

// NewRepository builds a repository tied to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// WithTx returns a repository bound to the provided transaction.
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	return &Repository{db: tx}
}

// CreateItem inserts a new catalog item.
func (r *Repository) CreateItem(ctx context.Context, item *models.Item) (*models.Item, error) {
	if err := r.db.WithContext(ctx).Create(item).Error; err != nil {
		return nil, err
	}
	return item, nil
}

// UpdateItem saves the full item row.
func (r *Repository) UpdateItem(ctx context.Context, item *models.Item) (*models.Item, error) {
	if err := r.db.WithContext(ctx).Save(item).Error; err != nil {
		return nil, err
	}
	return item, nil
}

// DeleteItem removes an item by ID.
func (r *Repository) DeleteItem(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Where("id = ?", id).Delete(&models.Item{}).Error
}

// FindItemByID loads a single item.
func (r *Repository) FindItemByID(ctx context.Context, id uuid.UUID) (*models.Item, error) {
	var item models.Item
	if err := r.db.WithContext(ctx).First(&item, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &item, nil
}

// FindItemsByIDs loads the given items in one query. Callers that need to
// detect missing IDs compare the result length against the input.
func (r *Repository) FindItemsByIDs(ctx context.Context, ids []uuid.UUID) ([]models.Item, error) {
	var items []models.Item
	if len(ids) == 0 {
		return items, nil
	}
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

// ListItems returns all catalog items, newest first.
func (r *Repository) ListItems(ctx context.Context) ([]models.Item, error) {
	var items []models.Item
	if err := r.db.WithContext(ctx).Order("created_at DESC").Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

// CreateDiscount inserts a new discount.
func (r *Repository) CreateDiscount(ctx context.Context, discount *models.Discount) (*models.Discount, error) {
	if err := r.db.WithContext(ctx).Create(discount).Error; err != nil {
		return nil, err
	}
	return discount, nil
}

// DeleteDiscount removes a discount. Orders referencing it fall back to no
// discount through the SET NULL constraint.
func (r *Repository) DeleteDiscount(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Where("id = ?", id).Delete(&models.Discount{}).Error
}

// FindDiscountByID loads a single discount.
func (r *Repository) FindDiscountByID(ctx context.Context, id uuid.UUID) (*models.Discount, error) {
	var discount models.Discount
	if err := r.db.WithContext(ctx).First(&discount, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &discount, nil
}

// ListDiscounts returns all discounts.
func (r *Repository) ListDiscounts(ctx context.Context) ([]models.Discount, error) {
	var discounts []models.Discount
	if err := r.db.WithContext(ctx).Order("created_at DESC").Find(&discounts).Error; err != nil {
		return nil, err
	}
	return discounts, nil
}

// CreateTax inserts a new tax rate.
func (r *Repository) CreateTax(ctx context.Context, tax *models.Tax) (*models.Tax, error) {
	if err := r.db.WithContext(ctx).Create(tax).Error; err != nil {
		return nil, err
	}
	return tax, nil
}

// DeleteTax removes a tax rate. Orders referencing it fall back to no tax
// through the SET NULL constraint.
func (r *Repository) DeleteTax(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Where("id = ?", id).Delete(&models.Tax{}).Error
}

// FindTaxByID loads a single tax rate.
func (r *Repository) FindTaxByID(ctx context.Context, id uuid.UUID) (*models.Tax, error) {
	var tax models.Tax
	if err := r.db.WithContext(ctx).First(&tax, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &tax, nil
}

// ListTaxes returns all tax rates.
func (r *Repository) ListTaxes(ctx context.Context) ([]models.Tax, error) {
	var taxes []models.Tax
	if err := r.db.WithContext(ctx).Order("created_at DESC").Find(&taxes).Error; err != nil {
		return nil, err
	}
	return taxes, nil
}
