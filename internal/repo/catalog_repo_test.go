package repo

import (
	"testing"
	"time"

	"github.com/bookstore/ledger/internal/db"
	"github.com/bookstore/ledger/internal/validate"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/multierr"
	"go.uber.org/zap"
)

func setupCatalog(t *testing.T) *CatalogRepository {
	t.Helper()
	return NewCatalogRepository(zap.NewNop())
}

func ptr[T any](v T) *T {
	return &v
}

func TestRegisterProduct(t *testing.T) {
	repo := setupCatalog(t)

	product, err := repo.RegisterProduct("Atlas", "Smith", "Ref", 10, 5)
	require.NoError(t, err)
	assert.Equal(t, 1, product.ID)

	retrieved, err := repo.GetProduct(1)
	assert.NoError(t, err)
	assert.Equal(t, "Atlas", retrieved.Title)
	assert.Equal(t, "Smith", retrieved.Author)
	assert.Equal(t, 10.0, retrieved.Price)
	assert.Equal(t, 5, retrieved.Quantity)
}

func TestRegisterProductValidation(t *testing.T) {
	repo := setupCatalog(t)

	_, err := repo.RegisterProduct("", "Smith", "Ref", 10, 5)
	assert.ErrorIs(t, err, validate.ErrEmpty)

	_, err = repo.RegisterProduct("Atlas", "123", "Ref", 10, 5)
	assert.ErrorIs(t, err, validate.ErrNumericOnly)

	_, err = repo.RegisterProduct("Atlas", "Smith", "Ref", -1, 5)
	assert.ErrorIs(t, err, ErrInvalidPrice)

	_, err = repo.RegisterProduct("Atlas", "Smith", "Ref", 1, -5)
	assert.ErrorIs(t, err, ErrInvalidQuantity)

	assert.Zero(t, repo.Len())
	assert.Equal(t, 1, repo.NextID())
}

func TestIDsAreNeverReused(t *testing.T) {
	repo := setupCatalog(t)

	first, err := repo.RegisterProduct("Atlas", "Smith", "Ref", 10, 5)
	require.NoError(t, err)
	second, err := repo.RegisterProduct("Dune", "Herbert", "SciFi", 8, 1)
	require.NoError(t, err)
	assert.Greater(t, second.ID, first.ID)

	_, err = repo.DeleteProduct(second.ID, true)
	require.NoError(t, err)

	third, err := repo.RegisterProduct("Emma", "Austen", "Classic", 5, 2)
	require.NoError(t, err)
	assert.Greater(t, third.ID, second.ID)
}

func TestReplaceSetsNextID(t *testing.T) {
	repo := setupCatalog(t)

	repo.Replace(db.CatalogSnapshot{
		Products: []db.Product{{ID: 4, Title: "Atlas", Author: "Smith", Category: "Ref", Price: 1, Quantity: 1}},
		NextID:   5,
	})

	product, err := repo.RegisterProduct("Dune", "Herbert", "SciFi", 8, 1)
	require.NoError(t, err)
	assert.Equal(t, 5, product.ID)
	assert.Equal(t, 2, repo.Len())
}

func TestGetProductNotFound(t *testing.T) {
	repo := setupCatalog(t)

	_, err := repo.GetProduct(42)
	assert.Equal(t, ErrProductNotFound, err)
}

func TestSearchProducts(t *testing.T) {
	repo := setupCatalog(t)

	for _, title := range []string{"Go Programming", "Python Basics", "Learning GO"} {
		_, err := repo.RegisterProduct(title, "Author", "tech", 10, 1)
		require.NoError(t, err)
	}

	found := repo.SearchProducts("go")
	require.Len(t, found, 2)
	assert.Equal(t, "Go Programming", found[0].Title)
	assert.Equal(t, "Learning GO", found[1].Title)

	assert.Len(t, repo.SearchProducts(""), 3)
	assert.Empty(t, repo.SearchProducts("rust"))
}

func TestUpdateProduct(t *testing.T) {
	repo := setupCatalog(t)

	_, err := repo.RegisterProduct("Original Title", "Original Author", "Ref", 19.99, 3)
	require.NoError(t, err)

	fieldsChanged, err := repo.UpdateProduct(1, ProductUpdate{
		Title: ptr("Updated Title"),
		Price: ptr(29.99),
	})
	assert.NoError(t, err)
	assert.ElementsMatch(t, []string{"title", "price"}, fieldsChanged)

	updated, err := repo.GetProduct(1)
	require.NoError(t, err)
	assert.Equal(t, "Updated Title", updated.Title)
	assert.Equal(t, 29.99, updated.Price)
	assert.Equal(t, "Original Author", updated.Author)
}

func TestUpdateProductPartialSuccess(t *testing.T) {
	repo := setupCatalog(t)

	_, err := repo.RegisterProduct("Atlas", "Smith", "Ref", 10, 5)
	require.NoError(t, err)

	fieldsChanged, err := repo.UpdateProduct(1, ProductUpdate{
		Title:    ptr("Atlas 2nd Edition"),
		Author:   ptr("   "),
		Price:    ptr(-4.0),
		Quantity: ptr(-1),
	})
	assert.Equal(t, []string{"title"}, fieldsChanged)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidPrice)
	assert.ErrorIs(t, err, ErrInvalidQuantity)
	assert.Len(t, multierr.Errors(err), 2)

	updated, err := repo.GetProduct(1)
	require.NoError(t, err)
	assert.Equal(t, "Atlas 2nd Edition", updated.Title)
	assert.Equal(t, "Smith", updated.Author)
	assert.Equal(t, 10.0, updated.Price)
	assert.Equal(t, 5, updated.Quantity)
}

func TestUpdateProductNotFound(t *testing.T) {
	repo := setupCatalog(t)

	_, err := repo.UpdateProduct(9, ProductUpdate{Title: ptr("x")})
	assert.Equal(t, ErrProductNotFound, err)
}

func TestDeleteProduct(t *testing.T) {
	repo := setupCatalog(t)

	_, err := repo.RegisterProduct("To Delete", "Author", "Ref", 1, 1)
	require.NoError(t, err)

	_, err = repo.DeleteProduct(1, false)
	assert.Equal(t, ErrDeleteNotConfirmed, err)
	assert.Equal(t, 1, repo.Len())

	deleted, err := repo.DeleteProduct(1, true)
	require.NoError(t, err)
	assert.Equal(t, "To Delete", deleted.Title)
	assert.Zero(t, repo.Len())

	_, err = repo.DeleteProduct(1, true)
	assert.Equal(t, ErrProductNotFound, err)
}

func TestReserveStock(t *testing.T) {
	repo := setupCatalog(t)

	_, err := repo.RegisterProduct("Atlas", "Smith", "Ref", 10, 5)
	require.NoError(t, err)

	before, err := repo.ReserveStock(1, 2)
	require.NoError(t, err)
	assert.Equal(t, 5, before.Quantity)

	_, err = repo.ReserveStock(1, 4)
	assert.Error(t, err)

	after, err := repo.GetProduct(1)
	require.NoError(t, err)
	assert.Equal(t, 3, after.Quantity)
}

func TestListReturnsCopy(t *testing.T) {
	repo := setupCatalog(t)

	_, err := repo.RegisterProduct("Atlas", "Smith", "Ref", 10, 5)
	require.NoError(t, err)

	list := repo.List()
	list[0].Quantity = 0

	product, err := repo.GetProduct(1)
	require.NoError(t, err)
	assert.Equal(t, 5, product.Quantity)
}

func TestSalesRepositoryAppendOnly(t *testing.T) {
	sales := NewSalesRepository(zap.NewNop())

	sale := db.Sale{Customer: "Jo", Product: "Atlas", Author: "Smith", QuantitySold: 2, UnitPrice: 10, Total: 20, Date: time.Now()}
	sales.Append(sale)

	list := sales.List()
	require.Len(t, list, 1)
	list[0].Total = 0

	assert.Equal(t, 20.0, sales.List()[0].Total)
	assert.Equal(t, 1, sales.Len())
}
