package shell

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/bookstore/ledger/internal/reports"
	"github.com/bookstore/ledger/internal/repo"
	"github.com/bookstore/ledger/internal/sales"
	"github.com/bookstore/ledger/internal/validate"
)

func (s *Shell) registerSale(ctx context.Context) error {
	products := s.app.Products()
	if len(products) == 0 {
		s.println("No products available.")
		return nil
	}

	s.println("\n New Sale ")
	customer, err := s.readText(ctx, "Customer name: ", true)
	if err != nil {
		return err
	}

	s.println("\nAvailable products (with stock > 0):")
	rule := strings.Repeat("─", 60)
	s.println(rule)
	s.printf("%4s %-30s %6s %8s\n", "ID", "Title", "Stock", "Price")
	s.println(rule)
	for _, p := range products {
		if p.Quantity > 0 {
			s.printf("%4d %-30s %6d $%7.2f\n", p.ID, p.Title, p.Quantity, p.Price)
		}
	}
	s.println(rule)

	id, ok, err := s.readID(ctx, "Product ID: ")
	if err != nil || !ok {
		return err
	}
	product, err := s.app.CheckAvailable(id)
	if err != nil {
		s.println(saleFailure(err))
		return nil
	}

	quantity, err := s.readNonNegativeInt(ctx, fmt.Sprintf("Quantity (1-%d): ", product.Quantity))
	if err != nil {
		return err
	}
	if err := sales.CheckQuantity(product, quantity); err != nil {
		s.println(saleFailure(err))
		return nil
	}
	discount, err := s.readLine(ctx, "Discount % (0-100) [0]: ")
	if err != nil {
		return err
	}

	receipt, err := s.app.RecordSale(sales.SaleRequest{
		Customer:  customer,
		ProductID: id,
		Quantity:  quantity,
		Discount:  discount,
	})
	if err != nil {
		s.println(saleFailure(err))
		return nil
	}

	if receipt.DiscountWarning != nil {
		if errors.Is(receipt.DiscountWarning, validate.ErrDiscountRange) {
			s.println("Invalid discount range, using 0%")
		} else {
			s.println("Invalid discount, using 0%")
		}
	}
	s.printf("Sale registered, Total: $%.2f (Discount: $%.2f)\n", receipt.Total, receipt.DiscountAmount)
	return nil
}

func saleFailure(err error) string {
	var insufficient *sales.InsufficientStockError
	switch {
	case errors.As(err, &insufficient):
		return fmt.Sprintf("Only %d available, sale canceled.", insufficient.Available)
	case errors.Is(err, sales.ErrCatalogEmpty):
		return "No products available."
	case errors.Is(err, repo.ErrProductNotFound):
		return "Product not found."
	case errors.Is(err, sales.ErrOutOfStock):
		return "Out of stock."
	case errors.Is(err, sales.ErrInvalidQuantity):
		return "Quantity must be at least 1, sale canceled."
	default:
		return fmt.Sprintf("Sale failed: %v", err)
	}
}

func (s *Shell) showSales(context.Context) error {
	history := s.app.Sales()
	if len(history) == 0 {
		s.println("No sales recorded yet.")
		return nil
	}

	s.println("\n Sales History ")
	rule := strings.Repeat("─", 85)
	s.println(rule)
	s.printf("%3s  %-19s  %-18s  %-25s  %4s  %10s\n", "#", "Date", "Customer", "Product", "Qty", "Total")
	s.println(rule)
	for i, sale := range history {
		s.printf("%3d  %-19s  %-18s  %-25s  %4d  $%9.2f\n",
			i+1, sale.DateString(), sale.Customer, sale.Product, sale.QuantitySold, sale.Total)
	}
	s.println(rule)
	return nil
}

func (s *Shell) topSellers(context.Context) error {
	top, err := s.app.TopSellers()
	if errors.Is(err, reports.ErrNoData) {
		s.println("No sales data.")
		return nil
	}

	s.printf("\n Top %d Best Sellers (by units)\n", s.app.TopSellersLimit())
	for _, t := range top {
		s.printf(" • %-30s : %4d units\n", t.Product, t.Units)
	}
	return nil
}

func (s *Shell) revenueByAuthor(context.Context) error {
	totals, err := s.app.RevenueByAuthor()
	if errors.Is(err, reports.ErrNoData) {
		s.println("No sales data.")
		return nil
	}

	s.println("\n Revenue by Author ")
	for _, t := range totals {
		s.printf(" %-25s : $%9.2f\n", t.Author, t.Revenue)
	}
	return nil
}

func (s *Shell) incomeSummary(context.Context) error {
	income, err := s.app.IncomeSummary()
	if errors.Is(err, reports.ErrNoData) {
		s.println("No sales data.")
		return nil
	}

	s.println("\n Income Summary ")
	s.printf(" Gross revenue   : $%10.2f\n", income.Gross)
	s.printf(" Net revenue     : $%10.2f\n", income.Net)
	s.printf(" Total discounts : $%10.2f\n", income.Discount)
	return nil
}
