package repo

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"sync"

	"github.com/bookstore/ledger/internal/db"
	"github.com/bookstore/ledger/internal/validate"
	"go.uber.org/multierr"
	"go.uber.org/zap"
)

var (
	// ErrProductNotFound is returned when a product is not found
	ErrProductNotFound = errors.New("product not found")

	// ErrDeleteNotConfirmed is returned when a delete was requested without confirmation
	ErrDeleteNotConfirmed = errors.New("delete not confirmed")

	// ErrInvalidPrice is returned for negative or non-finite prices
	ErrInvalidPrice = errors.New("price must be a non-negative number")

	// ErrInvalidQuantity is returned for negative stock counts
	ErrInvalidQuantity = errors.New("quantity must not be negative")
)

// FieldError reports a single rejected field
type FieldError struct {
	Field string
	Err   error
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("%s: %v", e.Field, e.Err)
}

func (e *FieldError) Unwrap() error {
	return e.Err
}

// ProductUpdate carries optional new values. Nil fields are left unchanged.
type ProductUpdate struct {
	Title    *string
	Author   *string
	Category *string
	Price    *float64
	Quantity *int
}

// CatalogRepository handles product catalog operations
type CatalogRepository struct {
	mu       sync.RWMutex
	products []db.Product
	nextID   int
	log      *zap.Logger
}

// NewCatalogRepository creates an empty catalog repository
func NewCatalogRepository(logger *zap.Logger) *CatalogRepository {
	return &CatalogRepository{
		nextID: 1,
		log:    logger,
	}
}

// Replace installs a catalog read from disk
func (r *CatalogRepository) Replace(snapshot db.CatalogSnapshot) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.products = append([]db.Product(nil), snapshot.Products...)
	r.nextID = snapshot.NextID
	if r.nextID < 1 {
		r.nextID = 1
	}
}

// RegisterProduct adds a new product and assigns it the next id
func (r *CatalogRepository) RegisterProduct(title, author, category string, price float64, quantity int) (db.Product, error) {
	var err error
	if title, err = validate.Text(title, false); err != nil {
		return db.Product{}, &FieldError{Field: "title", Err: err}
	}
	if author, err = validate.Text(author, false); err != nil {
		return db.Product{}, &FieldError{Field: "author", Err: err}
	}
	if category, err = validate.Text(category, false); err != nil {
		return db.Product{}, &FieldError{Field: "category", Err: err}
	}
	if !validPrice(price) {
		return db.Product{}, &FieldError{Field: "price", Err: ErrInvalidPrice}
	}
	if quantity < 0 {
		return db.Product{}, &FieldError{Field: "quantity", Err: ErrInvalidQuantity}
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	product := db.Product{
		ID:       r.nextID,
		Title:    title,
		Author:   author,
		Category: category,
		Price:    price,
		Quantity: quantity,
	}
	r.products = append(r.products, product)
	r.nextID++

	r.log.Info("Product registered", zap.Int("id", product.ID), zap.String("title", product.Title))
	return product, nil
}

// GetProduct retrieves a product by id
func (r *CatalogRepository) GetProduct(id int) (db.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	i := r.indexOf(id)
	if i < 0 {
		return db.Product{}, ErrProductNotFound
	}
	return r.products[i], nil
}

// SearchProducts returns products whose title contains term, ignoring case.
// An empty term matches every product.
func (r *CatalogRepository) SearchProducts(term string) []db.Product {
	r.mu.RLock()
	defer r.mu.RUnlock()

	term = strings.ToLower(strings.TrimSpace(term))
	var found []db.Product
	for _, p := range r.products {
		if strings.Contains(strings.ToLower(p.Title), term) {
			found = append(found, p)
		}
	}
	return found
}

// UpdateProduct applies the non-nil fields of upd. Invalid values are
// rejected one by one while the valid ones are still applied; the
// rejections are returned together as a single error.
func (r *CatalogRepository) UpdateProduct(id int, upd ProductUpdate) ([]string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	i := r.indexOf(id)
	if i < 0 {
		return nil, ErrProductNotFound
	}
	product := &r.products[i]

	var changed []string
	var errs error

	setText := func(field string, value *string, target *string) {
		if value == nil {
			return
		}
		v := strings.TrimSpace(*value)
		if v == "" {
			return
		}
		if v != *target {
			*target = v
			changed = append(changed, field)
		}
	}
	setText("title", upd.Title, &product.Title)
	setText("author", upd.Author, &product.Author)
	setText("category", upd.Category, &product.Category)

	if upd.Price != nil {
		switch {
		case !validPrice(*upd.Price):
			errs = multierr.Append(errs, &FieldError{Field: "price", Err: ErrInvalidPrice})
		case *upd.Price != product.Price:
			product.Price = *upd.Price
			changed = append(changed, "price")
		}
	}

	if upd.Quantity != nil {
		switch {
		case *upd.Quantity < 0:
			errs = multierr.Append(errs, &FieldError{Field: "quantity", Err: ErrInvalidQuantity})
		case *upd.Quantity != product.Quantity:
			product.Quantity = *upd.Quantity
			changed = append(changed, "quantity")
		}
	}

	if len(changed) == 0 {
		r.log.Info("No fields changed", zap.Int("id", id))
	} else {
		r.log.Info("Product updated", zap.Int("id", id), zap.Strings("fields_changed", changed))
	}
	if errs != nil {
		r.log.Warn("Product update partially rejected", zap.Int("id", id), zap.Error(errs))
	}
	return changed, errs
}

// DeleteProduct removes a product. The caller must pass confirmed=true.
func (r *CatalogRepository) DeleteProduct(id int, confirmed bool) (db.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	i := r.indexOf(id)
	if i < 0 {
		return db.Product{}, ErrProductNotFound
	}
	if !confirmed {
		return db.Product{}, ErrDeleteNotConfirmed
	}

	product := r.products[i]
	r.products = append(r.products[:i], r.products[i+1:]...)

	r.log.Info("Product deleted", zap.Int("id", id), zap.String("title", product.Title))
	return product, nil
}

// ReserveStock decrements the stock of a product by quantity and returns
// the product as it was before the decrement.
func (r *CatalogRepository) ReserveStock(id, quantity int) (db.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	i := r.indexOf(id)
	if i < 0 {
		return db.Product{}, ErrProductNotFound
	}
	product := r.products[i]
	if quantity < 1 || quantity > product.Quantity {
		return db.Product{}, fmt.Errorf("insufficient stock for product %d: available=%d, requested=%d",
			id, product.Quantity, quantity)
	}
	r.products[i].Quantity -= quantity
	return product, nil
}

// List returns a copy of every product in catalog order
func (r *CatalogRepository) List() []db.Product {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return append([]db.Product(nil), r.products...)
}

// Len returns the number of products
func (r *CatalogRepository) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.products)
}

// NextID returns the id the next registered product will receive
func (r *CatalogRepository) NextID() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.nextID
}

func (r *CatalogRepository) indexOf(id int) int {
	for i := range r.products {
		if r.products[i].ID == id {
			return i
		}
	}
	return -1
}

func validPrice(price float64) bool {
	return price >= 0 && !math.IsInf(price, 0) && !math.IsNaN(price)
}
