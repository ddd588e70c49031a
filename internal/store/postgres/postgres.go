package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"warungpos/backend/internal/domain"
	"warungpos/backend/internal/store"
)

const changeChannel = "warungpos_changes"

type Store struct {
	db          *sql.DB
	databaseURL string
	log         *zap.Logger
}

func New(ctx context.Context, databaseURL string, log *zap.Logger) (*Store, error) {
	if log == nil {
		log = zap.NewNop()
	}
	db, err := sql.Open("pgx", databaseURL)
	if err != nil {
		return nil, err
	}

	db.SetMaxIdleConns(4)
	db.SetMaxOpenConns(10)
	db.SetConnMaxLifetime(30 * time.Minute)

	pingCtx, cancel := context.WithTimeout(ctx, 6*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, err
	}

	return &Store{db: db, databaseURL: databaseURL, log: log.Named("postgres")}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) ListProducts(ctx context.Context) ([]domain.Product, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, price, stock, category, description, image, "taxRate", "minStockLevel", "rentalDuration"
		FROM products
		ORDER BY lower(name)
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	products := make([]domain.Product, 0, 64)
	for rows.Next() {
		var (
			p       domain.Product
			taxRate decimal.NullDecimal
		)
		if err := rows.Scan(&p.ID, &p.Name, &p.Price, &p.Stock, &p.Category, &p.Description, &p.Image, &taxRate, &p.MinStockLevel, &p.RentalDuration); err != nil {
			return nil, err
		}
		if taxRate.Valid {
			rate := taxRate.Decimal
			p.TaxRate = &rate
		}
		products = append(products, p)
	}
	return products, rows.Err()
}

func (s *Store) ListOrders(ctx context.Context) ([]domain.Order, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, date, items, total, "taxTotal", customer
		FROM orders
		ORDER BY date DESC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	orders := make([]domain.Order, 0, 128)
	for rows.Next() {
		var (
			o           domain.Order
			itemsRaw    []byte
			customerRaw []byte
		)
		if err := rows.Scan(&o.ID, &o.Date, &itemsRaw, &o.Total, &o.TaxTotal, &customerRaw); err != nil {
			return nil, err
		}
		if err := json.Unmarshal(itemsRaw, &o.Items); err != nil {
			return nil, fmt.Errorf("decode items of order %s: %w", o.ID, err)
		}
		if len(customerRaw) > 0 && string(customerRaw) != "null" {
			var customer domain.CustomerInfo
			if err := json.Unmarshal(customerRaw, &customer); err != nil {
				return nil, fmt.Errorf("decode customer of order %s: %w", o.ID, err)
			}
			o.Customer = &customer
		}
		orders = append(orders, o)
	}
	return orders, rows.Err()
}

func (s *Store) ListCustomers(ctx context.Context) ([]domain.Customer, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, name, phone, place FROM customers ORDER BY lower(name)`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	customers := make([]domain.Customer, 0, 64)
	for rows.Next() {
		var c domain.Customer
		if err := rows.Scan(&c.ID, &c.Name, &c.Phone, &c.Place); err != nil {
			return nil, err
		}
		customers = append(customers, c)
	}
	return customers, rows.Err()
}

func (s *Store) GetShopDetails(ctx context.Context) (*domain.ShopDetails, error) {
	var (
		d       domain.ShopDetails
		taxRate decimal.NullDecimal
		powered sql.NullString
		prompt  sql.NullString
		taxOn   sql.NullBool
		logoOn  sql.NullBool
		qrOn    sql.NullBool
	)
	err := s.db.QueryRowContext(ctx, `
		SELECT name, address, phone, email, logo, "paymentQrCode", "footerMessage", "poweredByText",
		       "taxEnabled", "defaultTaxRate", "showLogo", "showPaymentQr", "aiDescriptionPrompt"
		FROM settings
		WHERE id = $1
	`, domain.ShopDetailsKey).Scan(&d.Name, &d.Address, &d.Phone, &d.Email, &d.Logo, &d.PaymentQRCode, &d.FooterMessage,
		&powered, &taxOn, &taxRate, &logoOn, &qrOn, &prompt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrNotFound
		}
		return nil, err
	}
	if powered.Valid {
		d.PoweredByText = &powered.String
	}
	if prompt.Valid {
		d.AIDescriptionPrompt = &prompt.String
	}
	if taxOn.Valid {
		d.TaxEnabled = &taxOn.Bool
	}
	if logoOn.Valid {
		d.ShowLogo = &logoOn.Bool
	}
	if qrOn.Valid {
		d.ShowPaymentQR = &qrOn.Bool
	}
	if taxRate.Valid {
		d.DefaultTaxRate = &taxRate.Decimal
	}
	return &d, nil
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func (s *Store) SaveProduct(ctx context.Context, product domain.Product) error {
	return upsertProduct(ctx, s.db, product)
}

func (s *Store) SaveProducts(ctx context.Context, products []domain.Product) error {
	if len(products) == 0 {
		return nil
	}
	return s.inTx(ctx, func(tx *sql.Tx) error {
		for _, p := range products {
			if err := upsertProduct(ctx, tx, p); err != nil {
				return err
			}
		}
		return nil
	})
}

func (s *Store) SaveOrder(ctx context.Context, order domain.Order) error {
	return upsertOrder(ctx, s.db, order)
}

// CommitOrder writes the order and its stock adjustments in one transaction.
func (s *Store) CommitOrder(ctx context.Context, order domain.Order, products []domain.Product) error {
	return s.inTx(ctx, func(tx *sql.Tx) error {
		if err := upsertOrder(ctx, tx, order); err != nil {
			return err
		}
		for _, p := range products {
			if err := upsertProduct(ctx, tx, p); err != nil {
				return err
			}
		}
		return nil
	})
}

func (s *Store) SaveCustomer(ctx context.Context, customer domain.Customer) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO customers (id, name, phone, place)
		VALUES ($1,$2,$3,$4)
		ON CONFLICT (id) DO UPDATE SET name = EXCLUDED.name, phone = EXCLUDED.phone, place = EXCLUDED.place
	`, customer.ID, customer.Name, customer.Phone, customer.Place)
	return err
}

func (s *Store) SaveShopDetails(ctx context.Context, d domain.ShopDetails) error {
	var taxRate decimal.NullDecimal
	if d.DefaultTaxRate != nil {
		taxRate = decimal.NewNullDecimal(*d.DefaultTaxRate)
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO settings (id, name, address, phone, email, logo, "paymentQrCode", "footerMessage", "poweredByText",
		                      "taxEnabled", "defaultTaxRate", "showLogo", "showPaymentQr", "aiDescriptionPrompt")
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14)
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name, address = EXCLUDED.address, phone = EXCLUDED.phone, email = EXCLUDED.email,
			logo = EXCLUDED.logo, "paymentQrCode" = EXCLUDED."paymentQrCode", "footerMessage" = EXCLUDED."footerMessage",
			"poweredByText" = EXCLUDED."poweredByText", "taxEnabled" = EXCLUDED."taxEnabled",
			"defaultTaxRate" = EXCLUDED."defaultTaxRate", "showLogo" = EXCLUDED."showLogo",
			"showPaymentQr" = EXCLUDED."showPaymentQr", "aiDescriptionPrompt" = EXCLUDED."aiDescriptionPrompt"
	`, domain.ShopDetailsKey, d.Name, d.Address, d.Phone, d.Email, d.Logo, d.PaymentQRCode, d.FooterMessage,
		d.PoweredByText, d.TaxEnabled, taxRate, d.ShowLogo, d.ShowPaymentQR, d.AIDescriptionPrompt)
	return err
}

func (s *Store) DeleteProduct(ctx context.Context, id string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM products WHERE id = $1`, id)
	return err
}

func (s *Store) RemoveOrder(ctx context.Context, id string, products []domain.Product) error {
	return s.inTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM orders WHERE id = $1`, id); err != nil {
			return err
		}
		for _, p := range products {
			if err := upsertProduct(ctx, tx, p); err != nil {
				return err
			}
		}
		return nil
	})
}

func (s *Store) DeleteCustomer(ctx context.Context, id string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM customers WHERE id = $1`, id)
	return err
}

func (s *Store) ClearProducts(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM products`)
	return err
}

func (s *Store) ClearOrders(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM orders`)
	return err
}

func (s *Store) ClearCustomers(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM customers`)
	return err
}

func (s *Store) ClearShopDetails(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM settings`)
	return err
}

// MaxOrderID ignores ids that are not plain integers.
func (s *Store) MaxOrderID(ctx context.Context) (int64, error) {
	var maxID int64
	err := s.db.QueryRowContext(ctx, `
		SELECT COALESCE(MAX(id::bigint), 0)
		FROM orders
		WHERE id ~ '^[0-9]{1,18}$'
	`).Scan(&maxID)
	return maxID, err
}

// Listen opens a dedicated connection, LISTENs on the change channel and
// forwards every notification naming a known collection. The channel is
// closed when ctx ends or the connection drops.
func (s *Store) Listen(ctx context.Context) (<-chan domain.ChangeEvent, error) {
	conn, err := pgx.Connect(ctx, s.databaseURL)
	if err != nil {
		return nil, err
	}
	if _, err := conn.Exec(ctx, "LISTEN "+changeChannel); err != nil {
		_ = conn.Close(context.Background())
		return nil, err
	}

	events := make(chan domain.ChangeEvent, 16)
	go func() {
		defer close(events)
		defer func() {
			_ = conn.Close(context.Background())
		}()

		for {
			n, err := conn.WaitForNotification(ctx)
			if err != nil {
				if ctx.Err() == nil {
					s.log.Warn("change feed stopped", zap.Error(err))
				}
				return
			}
			collection, ok := domain.ParseCollection(n.Payload)
			if !ok {
				continue
			}
			select {
			case events <- domain.ChangeEvent{Collection: collection, At: time.Now().UTC()}:
			case <-ctx.Done():
				return
			}
		}
	}()
	return events, nil
}

func (s *Store) inTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		_ = tx.Rollback()
	}()
	if err := fn(tx); err != nil {
		return err
	}
	return tx.Commit()
}

func upsertProduct(ctx context.Context, db execer, p domain.Product) error {
	var taxRate decimal.NullDecimal
	if p.TaxRate != nil {
		taxRate = decimal.NewNullDecimal(*p.TaxRate)
	}
	_, err := db.ExecContext(ctx, `
		INSERT INTO products (id, name, price, stock, category, description, image, "taxRate", "minStockLevel", "rentalDuration")
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name, price = EXCLUDED.price, stock = EXCLUDED.stock, category = EXCLUDED.category,
			description = EXCLUDED.description, image = EXCLUDED.image, "taxRate" = EXCLUDED."taxRate",
			"minStockLevel" = EXCLUDED."minStockLevel", "rentalDuration" = EXCLUDED."rentalDuration"
	`, p.ID, p.Name, p.Price, p.Stock, p.Category, p.Description, p.Image, taxRate, p.MinStockLevel, p.RentalDuration)
	return err
}

func upsertOrder(ctx context.Context, db execer, o domain.Order) error {
	items, err := json.Marshal(o.Items)
	if err != nil {
		return err
	}
	var customer any
	if o.Customer != nil {
		raw, err := json.Marshal(o.Customer)
		if err != nil {
			return err
		}
		customer = string(raw)
	}
	_, err = db.ExecContext(ctx, `
		INSERT INTO orders (id, date, items, total, "taxTotal", customer)
		VALUES ($1,$2,$3::jsonb,$4,$5,$6::jsonb)
		ON CONFLICT (id) DO UPDATE SET
			date = EXCLUDED.date, items = EXCLUDED.items, total = EXCLUDED.total,
			"taxTotal" = EXCLUDED."taxTotal", customer = EXCLUDED.customer
	`, o.ID, o.Date.UTC(), string(items), o.Total, o.TaxTotal, customer)
	return err
}
