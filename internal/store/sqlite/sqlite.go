package sqlite

import (
	"context"
	"errors"
	"fmt"
	"time"

	gsqlite "github.com/glebarez/sqlite"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"

	"warungpos/backend/internal/domain"
	"warungpos/backend/internal/store"
)

type productRow struct {
	ID             string          `gorm:"primaryKey"`
	Name           string          `gorm:"index"`
	Price          decimal.Decimal `gorm:"type:text"`
	Stock          int
	Category       string
	Description    string
	Image          string
	TaxRate        decimal.NullDecimal `gorm:"type:text"`
	MinStockLevel  int
	RentalDuration string
}

func (productRow) TableName() string { return "products" }

type orderRow struct {
	ID       string    `gorm:"primaryKey"`
	Date     time.Time `gorm:"index"`
	Items    datatypes.JSONType[[]domain.CartItem]
	Total    decimal.Decimal `gorm:"type:text"`
	TaxTotal decimal.Decimal `gorm:"type:text"`
	Customer datatypes.JSONType[*domain.CustomerInfo]
}

func (orderRow) TableName() string { return "orders" }

type customerRow struct {
	ID    string `gorm:"primaryKey"`
	Name  string `gorm:"index"`
	Phone string `gorm:"index"`
	Place string
}

func (customerRow) TableName() string { return "customers" }

type settingsRow struct {
	ID                  string `gorm:"primaryKey"`
	Name                string
	Address             string
	Phone               string
	Email               string
	Logo                string
	PaymentQRCode       string
	FooterMessage       string
	PoweredByText       *string
	TaxEnabled          *bool
	DefaultTaxRate      decimal.NullDecimal `gorm:"type:text"`
	ShowLogo            *bool
	ShowPaymentQR       *bool
	AIDescriptionPrompt *string
}

func (settingsRow) TableName() string { return "settings" }

// Store is the durable local store: one sqlite file holding the four
// collections.
type Store struct {
	db *gorm.DB
}

// New opens (or creates) the database at dsn and migrates the schema. Use
// "file::memory:?cache=shared" for an ephemeral database.
func New(dsn string) (*Store, error) {
	db, err := gorm.Open(gsqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	// sqlite allows one writer; serialising avoids SQLITE_BUSY under load.
	sqlDB.SetMaxOpenConns(1)

	if err := db.AutoMigrate(&productRow{}, &orderRow{}, &customerRow{}, &settingsRow{}); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("migrate sqlite: %w", err)
	}
	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func (s *Store) ListProducts(ctx context.Context) ([]domain.Product, error) {
	var rows []productRow
	if err := s.db.WithContext(ctx).Order("name").Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]domain.Product, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.toDomain())
	}
	return out, nil
}

func (s *Store) ListOrders(ctx context.Context) ([]domain.Order, error) {
	var rows []orderRow
	if err := s.db.WithContext(ctx).Order("date DESC").Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]domain.Order, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.toDomain())
	}
	return out, nil
}

func (s *Store) ListCustomers(ctx context.Context) ([]domain.Customer, error) {
	var rows []customerRow
	if err := s.db.WithContext(ctx).Order("name").Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]domain.Customer, 0, len(rows))
	for _, row := range rows {
		out = append(out, domain.Customer{ID: row.ID, Name: row.Name, Phone: row.Phone, Place: row.Place})
	}
	return out, nil
}

func (s *Store) GetShopDetails(ctx context.Context) (*domain.ShopDetails, error) {
	var row settingsRow
	err := s.db.WithContext(ctx).Where("id = ?", domain.ShopDetailsKey).First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	details := row.toDomain()
	return &details, nil
}

func (s *Store) SaveProduct(ctx context.Context, product domain.Product) error {
	row := productFromDomain(product)
	return upsert(s.db.WithContext(ctx), &row)
}

func (s *Store) SaveProducts(ctx context.Context, products []domain.Product) error {
	if len(products) == 0 {
		return nil
	}
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return saveProducts(tx, products)
	})
}

func (s *Store) SaveOrder(ctx context.Context, order domain.Order) error {
	row := orderFromDomain(order)
	return upsert(s.db.WithContext(ctx), &row)
}

func (s *Store) SaveCustomer(ctx context.Context, customer domain.Customer) error {
	row := customerRow{ID: customer.ID, Name: customer.Name, Phone: customer.Phone, Place: customer.Place}
	return upsert(s.db.WithContext(ctx), &row)
}

func (s *Store) SaveShopDetails(ctx context.Context, details domain.ShopDetails) error {
	row := settingsFromDomain(details)
	return upsert(s.db.WithContext(ctx), &row)
}

func (s *Store) CommitOrder(ctx context.Context, order domain.Order, products []domain.Product) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		row := orderFromDomain(order)
		if err := upsert(tx, &row); err != nil {
			return err
		}
		return saveProducts(tx, products)
	})
}

func (s *Store) RemoveOrder(ctx context.Context, id string, products []domain.Product) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Delete(&orderRow{}, "id = ?", id).Error; err != nil {
			return err
		}
		return saveProducts(tx, products)
	})
}

func (s *Store) DeleteProduct(ctx context.Context, id string) error {
	return s.db.WithContext(ctx).Delete(&productRow{}, "id = ?", id).Error
}

func (s *Store) DeleteCustomer(ctx context.Context, id string) error {
	return s.db.WithContext(ctx).Delete(&customerRow{}, "id = ?", id).Error
}

func (s *Store) ClearProducts(ctx context.Context) error {
	return s.db.WithContext(ctx).Where("1 = 1").Delete(&productRow{}).Error
}

func (s *Store) ClearOrders(ctx context.Context) error {
	return s.db.WithContext(ctx).Where("1 = 1").Delete(&orderRow{}).Error
}

func (s *Store) ClearCustomers(ctx context.Context) error {
	return s.db.WithContext(ctx).Where("1 = 1").Delete(&customerRow{}).Error
}

func (s *Store) ClearShopDetails(ctx context.Context) error {
	return s.db.WithContext(ctx).Where("1 = 1").Delete(&settingsRow{}).Error
}

func upsert(db *gorm.DB, row any) error {
	return db.Clauses(clause.OnConflict{UpdateAll: true}).Create(row).Error
}

func saveProducts(tx *gorm.DB, products []domain.Product) error {
	for _, p := range products {
		row := productFromDomain(p)
		if err := upsert(tx, &row); err != nil {
			return err
		}
	}
	return nil
}

func productFromDomain(p domain.Product) productRow {
	row := productRow{
		ID:             p.ID,
		Name:           p.Name,
		Price:          p.Price,
		Stock:          p.Stock,
		Category:       p.Category,
		Description:    p.Description,
		Image:          p.Image,
		MinStockLevel:  p.MinStockLevel,
		RentalDuration: p.RentalDuration,
	}
	if p.TaxRate != nil {
		row.TaxRate = decimal.NewNullDecimal(*p.TaxRate)
	}
	return row
}

func (r productRow) toDomain() domain.Product {
	p := domain.Product{
		ID:             r.ID,
		Name:           r.Name,
		Price:          r.Price,
		Stock:          r.Stock,
		Category:       r.Category,
		Description:    r.Description,
		Image:          r.Image,
		MinStockLevel:  r.MinStockLevel,
		RentalDuration: r.RentalDuration,
	}
	if r.TaxRate.Valid {
		rate := r.TaxRate.Decimal
		p.TaxRate = &rate
	}
	return p
}

func orderFromDomain(o domain.Order) orderRow {
	return orderRow{
		ID:       o.ID,
		Date:     o.Date.UTC(),
		Items:    datatypes.NewJSONType(o.Items),
		Total:    o.Total,
		TaxTotal: o.TaxTotal,
		Customer: datatypes.NewJSONType(o.Customer),
	}
}

func (r orderRow) toDomain() domain.Order {
	return domain.Order{
		ID:       r.ID,
		Date:     r.Date,
		Items:    r.Items.Data(),
		Total:    r.Total,
		TaxTotal: r.TaxTotal,
		Customer: r.Customer.Data(),
	}
}

func settingsFromDomain(d domain.ShopDetails) settingsRow {
	row := settingsRow{
		ID:                  domain.ShopDetailsKey,
		Name:                d.Name,
		Address:             d.Address,
		Phone:               d.Phone,
		Email:               d.Email,
		Logo:                d.Logo,
		PaymentQRCode:       d.PaymentQRCode,
		FooterMessage:       d.FooterMessage,
		PoweredByText:       d.PoweredByText,
		TaxEnabled:          d.TaxEnabled,
		ShowLogo:            d.ShowLogo,
		ShowPaymentQR:       d.ShowPaymentQR,
		AIDescriptionPrompt: d.AIDescriptionPrompt,
	}
	if d.DefaultTaxRate != nil {
		row.DefaultTaxRate = decimal.NewNullDecimal(*d.DefaultTaxRate)
	}
	return row
}

func (r settingsRow) toDomain() domain.ShopDetails {
	d := domain.ShopDetails{
		Name:                r.Name,
		Address:             r.Address,
		Phone:               r.Phone,
		Email:               r.Email,
		Logo:                r.Logo,
		PaymentQRCode:       r.PaymentQRCode,
		FooterMessage:       r.FooterMessage,
		PoweredByText:       r.PoweredByText,
		TaxEnabled:          r.TaxEnabled,
		ShowLogo:            r.ShowLogo,
		ShowPaymentQR:       r.ShowPaymentQR,
		AIDescriptionPrompt: r.AIDescriptionPrompt,
	}
	if r.DefaultTaxRate.Valid {
		rate := r.DefaultTaxRate.Decimal
		d.DefaultTaxRate = &rate
	}
	return d
}
