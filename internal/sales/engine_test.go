package sales

import (
	"math"
	"testing"
	"time"

	"github.com/bookstore/ledger/internal/db"
	"github.com/bookstore/ledger/internal/repo"
	"github.com/bookstore/ledger/internal/validate"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

var fixedNow = time.Date(2024, 3, 5, 14, 7, 9, 500_000_000, time.Local)

func setupEngine(t *testing.T) (*Engine, *repo.CatalogRepository, *repo.SalesRepository) {
	t.Helper()
	log := zap.NewNop()
	catalog := repo.NewCatalogRepository(log)
	ledger := repo.NewSalesRepository(log)
	engine := NewEngine(catalog, ledger, log)
	engine.now = func() time.Time { return fixedNow }
	return engine, catalog, ledger
}

func TestRecordSaleScenario(t *testing.T) {
	engine, catalog, ledger := setupEngine(t)

	product, err := catalog.RegisterProduct("Atlas", "Smith", "Ref", 10.00, 5)
	require.NoError(t, err)
	require.Equal(t, 1, product.ID)

	receipt, err := engine.RecordSale(SaleRequest{Customer: "Jo", ProductID: 1, Quantity: 2, Discount: "10"})
	require.NoError(t, err)
	assert.NoError(t, receipt.DiscountWarning)
	assert.Equal(t, 18.00, receipt.Total)
	assert.InDelta(t, 2.00, receipt.DiscountAmount, 1e-9)
	assert.Equal(t, 20.00, receipt.Subtotal)

	after, err := catalog.GetProduct(1)
	require.NoError(t, err)
	assert.Equal(t, 3, after.Quantity)

	logged := ledger.List()
	require.Len(t, logged, 1)
	assert.Equal(t, db.Sale{
		Customer:     "Jo",
		Product:      "Atlas",
		Author:       "Smith",
		QuantitySold: 2,
		UnitPrice:    10,
		Discount:     10,
		Total:        18,
		Date:         fixedNow.Truncate(time.Second),
	}, logged[0])
}

func TestRecordSaleExceedingStockIsCanceled(t *testing.T) {
	engine, catalog, ledger := setupEngine(t)

	_, err := catalog.RegisterProduct("Atlas", "Smith", "Ref", 10.00, 3)
	require.NoError(t, err)

	_, err = engine.RecordSale(SaleRequest{Customer: "Jo", ProductID: 1, Quantity: 10})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInsufficientStock)

	var stockErr *InsufficientStockError
	require.ErrorAs(t, err, &stockErr)
	assert.Equal(t, 3, stockErr.Available)

	after, err := catalog.GetProduct(1)
	require.NoError(t, err)
	assert.Equal(t, 3, after.Quantity)
	assert.Zero(t, ledger.Len())
}

func TestRecordSaleRejections(t *testing.T) {
	engine, catalog, ledger := setupEngine(t)

	_, err := engine.RecordSale(SaleRequest{Customer: "Jo", ProductID: 1, Quantity: 1})
	assert.ErrorIs(t, err, ErrCatalogEmpty)

	_, err = catalog.RegisterProduct("Atlas", "Smith", "Ref", 10, 2)
	require.NoError(t, err)
	_, err = catalog.RegisterProduct("Sold Out", "Smith", "Ref", 10, 0)
	require.NoError(t, err)

	_, err = engine.RecordSale(SaleRequest{Customer: "Jo", ProductID: 99, Quantity: 1})
	assert.ErrorIs(t, err, repo.ErrProductNotFound)

	_, err = engine.RecordSale(SaleRequest{Customer: "Jo", ProductID: 2, Quantity: 1})
	assert.ErrorIs(t, err, ErrOutOfStock)

	_, err = engine.RecordSale(SaleRequest{Customer: "Jo", ProductID: 1, Quantity: 0})
	assert.ErrorIs(t, err, ErrInvalidQuantity)

	_, err = engine.RecordSale(SaleRequest{Customer: "  ", ProductID: 1, Quantity: 1})
	assert.ErrorIs(t, err, ErrCustomerRequired)

	product, err := catalog.GetProduct(1)
	require.NoError(t, err)
	assert.Equal(t, 2, product.Quantity)
	assert.Zero(t, ledger.Len())
}

func TestRecordSaleInvalidDiscountDegradesToZero(t *testing.T) {
	for _, discount := range []string{"150", "-1", "ten"} {
		t.Run(discount, func(t *testing.T) {
			engine, catalog, ledger := setupEngine(t)
			_, err := catalog.RegisterProduct("Atlas", "Smith", "Ref", 10, 5)
			require.NoError(t, err)

			receipt, err := engine.RecordSale(SaleRequest{Customer: "Jo", ProductID: 1, Quantity: 1, Discount: discount})
			require.NoError(t, err)
			assert.Error(t, receipt.DiscountWarning)
			assert.Equal(t, 10.0, receipt.Total)
			assert.Zero(t, receipt.DiscountAmount)
			assert.Zero(t, ledger.List()[0].Discount)
		})
	}
}

func TestRecordSaleDiscountWarningKinds(t *testing.T) {
	engine, catalog, _ := setupEngine(t)
	_, err := catalog.RegisterProduct("Atlas", "Smith", "Ref", 10, 5)
	require.NoError(t, err)

	receipt, err := engine.RecordSale(SaleRequest{Customer: "Jo", ProductID: 1, Quantity: 1, Discount: "101"})
	require.NoError(t, err)
	assert.ErrorIs(t, receipt.DiscountWarning, validate.ErrDiscountRange)

	receipt, err = engine.RecordSale(SaleRequest{Customer: "Jo", ProductID: 1, Quantity: 1, Discount: "x"})
	require.NoError(t, err)
	assert.ErrorIs(t, receipt.DiscountWarning, validate.ErrNotANumber)
}

func TestRecordSaleStockAndTotalInvariants(t *testing.T) {
	engine, catalog, ledger := setupEngine(t)

	_, err := catalog.RegisterProduct("Atlas", "Smith", "Ref", 12.99, 100)
	require.NoError(t, err)

	requests := []struct {
		qty      int
		discount string
	}{
		{1, "0"}, {3, "15"}, {7, "33.3"}, {2, "100"}, {11, "2.5"}, {5, ""},
	}

	stock := 100
	for _, r := range requests {
		_, err := engine.RecordSale(SaleRequest{Customer: "Jo", ProductID: 1, Quantity: r.qty, Discount: r.discount})
		require.NoError(t, err)
		stock -= r.qty

		product, err := catalog.GetProduct(1)
		require.NoError(t, err)
		assert.Equal(t, stock, product.Quantity)
	}

	for _, sale := range ledger.List() {
		want := math.Round(float64(sale.QuantitySold)*sale.UnitPrice*(1-sale.Discount/100)*100) / 100
		assert.InDelta(t, want, sale.Total, 1e-9)
	}
}

func TestDeletedProductKeepsSaleSnapshot(t *testing.T) {
	engine, catalog, ledger := setupEngine(t)

	_, err := catalog.RegisterProduct("Atlas", "Smith", "Ref", 10, 5)
	require.NoError(t, err)
	_, err = engine.RecordSale(SaleRequest{Customer: "Jo", ProductID: 1, Quantity: 1})
	require.NoError(t, err)
	before := ledger.List()

	_, err = catalog.UpdateProduct(1, repo.ProductUpdate{Title: ptr("Renamed")})
	require.NoError(t, err)
	_, err = catalog.DeleteProduct(1, true)
	require.NoError(t, err)

	assert.Equal(t, before, ledger.List())
	assert.Equal(t, "Atlas", ledger.List()[0].Product)
}

func ptr[T any](v T) *T {
	return &v
}
