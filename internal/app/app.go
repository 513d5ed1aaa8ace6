// Package app owns the ledger state for one session: the catalog, the
// transaction log and the services working on them.
package app

import (
	"errors"

	"github.com/bookstore/ledger/internal/config"
	"github.com/bookstore/ledger/internal/db"
	"github.com/bookstore/ledger/internal/events"
	"github.com/bookstore/ledger/internal/metrics"
	"github.com/bookstore/ledger/internal/reports"
	"github.com/bookstore/ledger/internal/repo"
	"github.com/bookstore/ledger/internal/sales"
	"go.uber.org/multierr"
	"go.uber.org/zap"
)

// LoadReport describes what was read at startup
type LoadReport struct {
	Catalog      db.CatalogSnapshot
	CatalogError error
	Sales        db.SalesSnapshot
	SalesError   error
}

// Application is the owning context created at process start
type Application struct {
	cfg       *config.Config
	log       *zap.Logger
	files     *db.Files
	catalog   *repo.CatalogRepository
	ledger    *repo.SalesRepository
	engine    *sales.Engine
	publisher *events.Publisher
	metrics   *metrics.Recorder
}

// New wires the repositories, engine, event subscribers and metrics
func New(cfg *config.Config, log *zap.Logger) (*Application, error) {
	catalog := repo.NewCatalogRepository(log)
	ledger := repo.NewSalesRepository(log)

	a := &Application{
		cfg:       cfg,
		log:       log,
		files:     db.NewFiles(cfg.CatalogFile, cfg.SalesFile, log),
		catalog:   catalog,
		ledger:    ledger,
		engine:    sales.NewEngine(catalog, ledger, log),
		publisher: events.NewPublisher(log),
		metrics:   metrics.NewRecorder(),
	}

	if err := a.publisher.SubscribeAll(events.AuditHandler(log)); err != nil {
		return nil, err
	}
	if err := a.publisher.SubscribeAll(a.metrics.Observe); err != nil {
		return nil, err
	}
	return a, nil
}

// Load reads both data files into memory. Read failures are reported in
// the result and leave the corresponding collection empty.
func (a *Application) Load() LoadReport {
	var report LoadReport

	report.Catalog, report.CatalogError = a.files.LoadCatalog()
	if report.CatalogError == nil {
		a.catalog.Replace(report.Catalog)
	}
	a.metrics.SetCatalogSize(a.catalog.Len())

	report.Sales, report.SalesError = a.files.LoadSales()
	if report.SalesError == nil {
		a.ledger.Replace(report.Sales.Sales)
	}

	return report
}

// Products returns every product in catalog order
func (a *Application) Products() []db.Product {
	return a.catalog.List()
}

// Sales returns the transaction log in insertion order
func (a *Application) Sales() []db.Sale {
	return a.ledger.List()
}

// GetProduct retrieves a product by id
func (a *Application) GetProduct(id int) (db.Product, error) {
	return a.catalog.GetProduct(id)
}

// SearchProducts matches titles case-insensitively
func (a *Application) SearchProducts(term string) []db.Product {
	return a.catalog.SearchProducts(term)
}

// RegisterProduct adds a product to the catalog
func (a *Application) RegisterProduct(title, author, category string, price float64, quantity int) (db.Product, error) {
	product, err := a.catalog.RegisterProduct(title, author, category, price, quantity)
	if err != nil {
		return db.Product{}, err
	}
	a.publisher.PublishProductCreated(product)
	return product, nil
}

// UpdateProduct applies a partial update; see repo.CatalogRepository.UpdateProduct
func (a *Application) UpdateProduct(id int, upd repo.ProductUpdate) ([]string, error) {
	fieldsChanged, err := a.catalog.UpdateProduct(id, upd)
	if len(fieldsChanged) > 0 {
		if product, getErr := a.catalog.GetProduct(id); getErr == nil {
			a.publisher.PublishProductUpdated(product, fieldsChanged)
		}
	}
	return fieldsChanged, err
}

// DeleteProduct removes a product once the operator confirmed it
func (a *Application) DeleteProduct(id int, confirmed bool) (db.Product, error) {
	product, err := a.catalog.DeleteProduct(id, confirmed)
	if err != nil {
		return db.Product{}, err
	}
	a.publisher.PublishProductDeleted(product)
	return product, nil
}

// CheckAvailable reports whether a product can be sold
func (a *Application) CheckAvailable(id int) (db.Product, error) {
	return a.engine.CheckAvailable(id)
}

// RecordSale records a sale through the sale engine
func (a *Application) RecordSale(req sales.SaleRequest) (sales.Receipt, error) {
	receipt, err := a.engine.RecordSale(req)
	if err != nil {
		return sales.Receipt{}, err
	}
	a.publisher.PublishSaleRecorded(receipt.Sale, receipt.DiscountAmount)
	return receipt, nil
}

// TopSellers returns the configured number of best-selling titles
func (a *Application) TopSellers() ([]reports.UnitTotal, error) {
	return reports.TopSellers(a.ledger.List(), a.cfg.TopSellers)
}

// TopSellersLimit is the number of titles TopSellers reports
func (a *Application) TopSellersLimit() int {
	return a.cfg.TopSellers
}

// RevenueByAuthor returns net revenue per author
func (a *Application) RevenueByAuthor() ([]reports.RevenueTotal, error) {
	return reports.RevenueByAuthor(a.ledger.List())
}

// IncomeSummary returns gross, net and discount totals
func (a *Application) IncomeSummary() (reports.Income, error) {
	return reports.IncomeSummary(a.ledger.List())
}

// SaveCatalog writes the catalog file and returns the number of products written
func (a *Application) SaveCatalog() (int, error) {
	products := a.catalog.List()
	err := a.files.SaveCatalog(products)
	if !errors.Is(err, db.ErrNothingToSave) {
		a.publisher.PublishSaved("catalog", len(products), err)
	}
	return len(products), err
}

// SaveSales writes the transaction file and returns the number of records written
func (a *Application) SaveSales() (int, error) {
	records := a.ledger.List()
	err := a.files.SaveSales(records)
	if !errors.Is(err, db.ErrNothingToSave) {
		a.publisher.PublishSaved("sales", len(records), err)
	}
	return len(records), err
}

// Release flushes metrics and logs at the end of the session
func (a *Application) Release() error {
	var errs error
	if a.cfg.MetricsFile != "" {
		if err := a.metrics.WriteTextfile(a.cfg.MetricsFile); err != nil {
			a.log.Error("Failed to write metrics", zap.String("file", a.cfg.MetricsFile), zap.Error(err))
			errs = multierr.Append(errs, err)
		}
	}
	a.log.Info("Session closed",
		zap.Int("products", a.catalog.Len()),
		zap.Int("sales", a.ledger.Len()),
	)
	return errs
}
