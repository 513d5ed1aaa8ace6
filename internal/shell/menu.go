package shell

import (
	"context"
	"strings"

	"go.uber.org/zap"
)

type menuItem struct {
	key    string
	label  string
	action func(ctx context.Context) error
}

type menu struct {
	title string
	items []menuItem
	// exitLabel is shown for option 0
	exitLabel string
}

// serve shows m until the operator picks 0
func (s *Shell) serve(ctx context.Context, m menu) error {
	for {
		s.println(m.title)
		for _, item := range m.items {
			s.printf(" %s. %s\n", item.key, item.label)
		}
		s.printf(" 0. %s\n", m.exitLabel)

		opt, err := s.readLine(ctx, "\n Option: ")
		if err != nil {
			return err
		}
		opt = strings.TrimSpace(opt)
		if opt == "0" {
			return nil
		}

		action := m.lookup(opt)
		if action == nil {
			s.log.Debug("Invalid menu option", zap.String("menu", m.title), zap.String("option", opt))
			s.println(" Invalid option")
			continue
		}
		if err := action(ctx); err != nil {
			return err
		}
	}
}

func (m menu) lookup(key string) func(ctx context.Context) error {
	for _, item := range m.items {
		if item.key == key {
			return item.action
		}
	}
	return nil
}

func (s *Shell) mainMenu(ctx context.Context) error {
	return s.serve(ctx, menu{
		title: "MAIN MENU",
		items: []menuItem{
			{key: "1", label: "Inventory Management", action: s.inventoryMenu},
			{key: "2", label: "Register New Sale", action: s.registerSale},
			{key: "3", label: "View Sales History", action: s.showSales},
			{key: "4", label: "Reports & Statistics", action: s.reportsMenu},
		},
		exitLabel: "Exit & Save",
	})
}

func (s *Shell) inventoryMenu(ctx context.Context) error {
	return s.serve(ctx, menu{
		title: " INVENTORY MENU",
		items: []menuItem{
			{key: "1", label: "Register product", action: s.registerProduct},
			{key: "2", label: "Search product", action: s.searchProducts},
			{key: "3", label: "Update product", action: s.updateProduct},
			{key: "4", label: "Delete product", action: s.deleteProduct},
			{key: "5", label: "Save inventory now", action: func(context.Context) error {
				s.saveInventory()
				return nil
			}},
		},
		exitLabel: "Back",
	})
}

func (s *Shell) reportsMenu(ctx context.Context) error {
	return s.serve(ctx, menu{
		title: " REPORTS ",
		items: []menuItem{
			{key: "1", label: "Top best-selling products", action: s.topSellers},
			{key: "2", label: "Sales by author", action: s.revenueByAuthor},
			{key: "3", label: "Income report (gross/net)", action: s.incomeSummary},
		},
		exitLabel: "Back",
	})
}
