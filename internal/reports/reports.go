// Package reports computes read-only aggregations over the transaction log.
package reports

import (
	"errors"
	"sort"

	"github.com/bookstore/ledger/internal/db"
	"github.com/montanaflynn/stats"
)

// DefaultTopSellers is the number of products listed by TopSellers
const DefaultTopSellers = 3

// ErrNoData is returned by every report when there are no sales
var ErrNoData = errors.New("no sales data")

// UnitTotal is the number of units sold for one product title
type UnitTotal struct {
	Product string
	Units   int
}

// RevenueTotal is the net revenue for one author
type RevenueTotal struct {
	Author  string
	Revenue float64
}

// Income summarizes revenue over the whole log. Values are unrounded.
type Income struct {
	Gross    float64
	Net      float64
	Discount float64
}

// TopSellers groups sales by product title and returns the n titles with
// the most units sold. Equal totals keep first-seen order. n <= 0 returns
// every title.
func TopSellers(sales []db.Sale, n int) ([]UnitTotal, error) {
	if len(sales) == 0 {
		return nil, ErrNoData
	}

	index := make(map[string]int)
	var totals []UnitTotal
	for _, s := range sales {
		i, ok := index[s.Product]
		if !ok {
			i = len(totals)
			index[s.Product] = i
			totals = append(totals, UnitTotal{Product: s.Product})
		}
		totals[i].Units += s.QuantitySold
	}

	sort.SliceStable(totals, func(a, b int) bool {
		return totals[a].Units > totals[b].Units
	})

	if n > 0 && n < len(totals) {
		totals = totals[:n]
	}
	return totals, nil
}

// RevenueByAuthor sums sale totals per author, highest first
func RevenueByAuthor(sales []db.Sale) ([]RevenueTotal, error) {
	if len(sales) == 0 {
		return nil, ErrNoData
	}

	index := make(map[string]int)
	var totals []RevenueTotal
	for _, s := range sales {
		i, ok := index[s.Author]
		if !ok {
			i = len(totals)
			index[s.Author] = i
			totals = append(totals, RevenueTotal{Author: s.Author})
		}
		totals[i].Revenue += s.Total
	}

	sort.SliceStable(totals, func(a, b int) bool {
		return totals[a].Revenue > totals[b].Revenue
	})
	return totals, nil
}

// IncomeSummary returns gross revenue (before discounts), net revenue
// (sum of totals) and their difference.
func IncomeSummary(sales []db.Sale) (Income, error) {
	if len(sales) == 0 {
		return Income{}, ErrNoData
	}

	gross := make(stats.Float64Data, len(sales))
	net := make(stats.Float64Data, len(sales))
	for i, s := range sales {
		gross[i] = s.Gross()
		net[i] = s.Total
	}

	grossSum, err := gross.Sum()
	if err != nil {
		return Income{}, err
	}
	netSum, err := net.Sum()
	if err != nil {
		return Income{}, err
	}

	return Income{
		Gross:    grossSum,
		Net:      netSum,
		Discount: grossSum - netSum,
	}, nil
}
