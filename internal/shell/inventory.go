package shell

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/bookstore/ledger/internal/db"
	"github.com/bookstore/ledger/internal/repo"
	"github.com/bookstore/ledger/internal/validate"
	"go.uber.org/multierr"
	"go.uber.org/zap"
)

func (s *Shell) registerProduct(ctx context.Context) error {
	s.println("\n New Product ")

	title, err := s.readText(ctx, "Title: ", false)
	if err != nil {
		return err
	}
	author, err := s.readText(ctx, "Author: ", false)
	if err != nil {
		return err
	}
	category, err := s.readText(ctx, "Category: ", false)
	if err != nil {
		return err
	}
	price, err := s.readNonNegativeFloat(ctx, "Price: ")
	if err != nil {
		return err
	}
	quantity, err := s.readNonNegativeInt(ctx, "Initial stock: ")
	if err != nil {
		return err
	}

	product, err := s.app.RegisterProduct(title, author, category, price, quantity)
	if err != nil {
		s.printf("Product not registered: %v\n", err)
		return nil
	}
	s.printf("Added: %s (ID %d) ─ $%.2f\n", product.Title, product.ID, product.Price)
	return nil
}

func (s *Shell) searchProducts(ctx context.Context) error {
	if len(s.app.Products()) == 0 {
		s.println("Inventory is empty.")
		return nil
	}

	term, err := s.readLine(ctx, "Search title (partial): ")
	if err != nil {
		return err
	}
	if strings.TrimSpace(term) == "" {
		s.println("Showing all products:")
	}

	found := s.app.SearchProducts(term)
	if len(found) == 0 {
		s.println("No matches found.")
		return nil
	}

	s.printf("\nFound %d product(s):\n", len(found))
	s.productTable(found)
	return nil
}

func (s *Shell) productTable(products []db.Product) {
	rule := strings.Repeat("─", 90)
	s.println(rule)
	s.printf("%4s  %-30s  %-20s  %-12s  %8s  %6s\n", "ID", "Title", "Author", "Cat", "Price", "Stock")
	s.println(rule)
	for _, p := range products {
		s.printf("%4d  %-30s  %-20s  %-12s  $%7.2f  %6d\n", p.ID, p.Title, p.Author, p.Category, p.Price, p.Quantity)
	}
	s.println(rule)
}

func (s *Shell) updateProduct(ctx context.Context) error {
	if len(s.app.Products()) == 0 {
		s.println("Inventory is empty.")
		return nil
	}

	id, ok, err := s.readID(ctx, "Product ID to update: ")
	if err != nil || !ok {
		return err
	}
	product, err := s.app.GetProduct(id)
	if err != nil {
		s.println("Product not found.")
		return nil
	}

	s.printf("\nCurrent: %s | %s | %s | $%.2f | Stock: %d\n",
		product.Title, product.Author, product.Category, product.Price, product.Quantity)

	var upd repo.ProductUpdate
	if upd.Title, err = s.readOptional(ctx, fmt.Sprintf("Title [%s]: ", product.Title)); err != nil {
		return err
	}
	if upd.Author, err = s.readOptional(ctx, fmt.Sprintf("Author [%s]: ", product.Author)); err != nil {
		return err
	}
	if upd.Category, err = s.readOptional(ctx, fmt.Sprintf("Category [%s]: ", product.Category)); err != nil {
		return err
	}

	priceInput, err := s.readOptional(ctx, fmt.Sprintf("Price [%.2f]: ", product.Price))
	if err != nil {
		return err
	}
	if priceInput != nil {
		if price, convErr := validate.Float(*priceInput); convErr != nil {
			s.println("Invalid price, not updated")
		} else {
			upd.Price = &price
		}
	}

	quantityInput, err := s.readOptional(ctx, fmt.Sprintf("Stock [%d]: ", product.Quantity))
	if err != nil {
		return err
	}
	if quantityInput != nil {
		if quantity, convErr := validate.Int(*quantityInput); convErr != nil {
			s.println("Invalid quantity, not updated")
		} else {
			upd.Quantity = &quantity
		}
	}

	_, err = s.app.UpdateProduct(id, upd)
	if errors.Is(err, repo.ErrProductNotFound) {
		s.println("Product not found.")
		return nil
	}
	for _, rejected := range multierr.Errors(err) {
		switch {
		case errors.Is(rejected, repo.ErrInvalidPrice):
			s.println("Price not updated (negative value discarded)")
		case errors.Is(rejected, repo.ErrInvalidQuantity):
			s.println("Stock not updated (negative value discarded)")
		default:
			s.printf("Not updated: %v\n", rejected)
		}
	}
	s.println("Product updated.")
	return nil
}

// readOptional returns nil for blank input
func (s *Shell) readOptional(ctx context.Context, prompt string) (*string, error) {
	line, err := s.readLine(ctx, prompt)
	if err != nil {
		return nil, err
	}
	line = strings.TrimSpace(line)
	if line == "" {
		return nil, nil
	}
	return &line, nil
}

func (s *Shell) deleteProduct(ctx context.Context) error {
	if len(s.app.Products()) == 0 {
		s.println("Inventory is empty.")
		return nil
	}

	id, ok, err := s.readID(ctx, "Product ID to delete: ")
	if err != nil || !ok {
		return err
	}
	product, err := s.app.GetProduct(id)
	if err != nil {
		s.println("Product not found.")
		return nil
	}

	answer, err := s.readLine(ctx, fmt.Sprintf("Delete '%s' (ID %d)? [y/n]: ", product.Title, product.ID))
	if err != nil {
		return err
	}
	answer = strings.ToLower(strings.TrimSpace(answer))
	confirmed := answer == "y" || answer == "yes"

	if _, err := s.app.DeleteProduct(id, confirmed); err != nil {
		if errors.Is(err, repo.ErrDeleteNotConfirmed) {
			s.println("Canceled.")
		} else {
			s.println("Product not found.")
		}
		return nil
	}
	s.println("Product deleted.")
	return nil
}

func (s *Shell) saveInventory() {
	n, err := s.app.SaveCatalog()
	switch {
	case errors.Is(err, db.ErrNothingToSave):
		s.println("Inventory is empty, nothing to save.")
	case err != nil:
		s.log.Error("Failed to save inventory", zap.Error(err))
		s.printf("Error saving inventory: %v\n", err)
	default:
		s.printf("Inventory saved (%d products)\n", n)
	}
}

func (s *Shell) saveSales() {
	n, err := s.app.SaveSales()
	switch {
	case errors.Is(err, db.ErrNothingToSave):
	case err != nil:
		s.log.Error("Failed to save sales", zap.Error(err))
		s.printf("Error saving sales: %v\n", err)
	default:
		s.printf("Sales saved (%d records)\n", n)
	}
}
