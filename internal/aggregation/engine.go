// Package aggregation derives revenue and drink statistics from a snapshot of
// customers, their orders and the menu catalog. Everything here is pure.
package aggregation

import (
	"sort"

	"ms-barpos/internal/models"
)

const (
	// EntryFee is charged per guest, in yen.
	EntryFee int64 = 1000
	// FallbackPrice prices order items whose menu entry no longer exists.
	FallbackPrice int64 = 500
)

type Input struct {
	Customers        []models.Customer
	OrdersByCustomer map[string][]models.Order
	Catalog          models.Catalog
}

type Options struct {
	// ExcludePaid drops settled customers, as the open-tabs view does.
	ExcludePaid bool
}

type Report struct {
	Stats models.EventStats
	// MissingItemIDs lists item ids priced with FallbackPrice, sorted.
	MissingItemIDs []string
	CatalogEmpty   bool
}

// GroupByCustomer buckets a flat order list by customer id.
func GroupByCustomer(orders []models.Order) map[string][]models.Order {
	out := make(map[string][]models.Order)
	for _, o := range orders {
		out[o.CustomerID] = append(out[o.CustomerID], o)
	}
	return out
}

// Compute folds the snapshot into event statistics. Orders of customers that
// are not part of the input are ignored.
func Compute(in Input, opts Options) Report {
	stats := models.EventStats{DrinkBreakdown: models.DrinkBreakdown{}}
	missing := map[string]struct{}{}
	lastSeenName := map[string]string{}

	customers := sortedCustomers(in.Customers)
	for _, c := range customers {
		if opts.ExcludePaid && c.Paid {
			continue
		}
		stats.TotalCustomers += c.Guests()

		for _, o := range sortedOrders(in.OrdersByCustomer[c.ID]) {
			if o.Status == models.StatusCancelled {
				continue
			}
			for _, it := range o.Items {
				price, alcoholic, ok := lookup(in.Catalog, it.ItemID)
				if !ok {
					missing[it.ItemID] = struct{}{}
				}
				if it.Name != "" {
					lastSeenName[it.ItemID] = it.Name
				}

				revenue := it.Quantity * price
				stats.TotalDrinks += it.Quantity
				if alcoholic {
					stats.AlcoholicDrinks += it.Quantity
				} else {
					stats.NonAlcoholicDrinks += it.Quantity
				}
				stats.DrinkRevenue += revenue

				entry := stats.DrinkBreakdown[it.ItemID]
				entry.Quantity += it.Quantity
				entry.TotalRevenue += revenue
				stats.DrinkBreakdown[it.ItemID] = entry
			}
		}
	}

	for id, entry := range stats.DrinkBreakdown {
		if item, ok := in.Catalog[id]; ok {
			entry.ItemName = item.Name
		} else {
			entry.ItemName = lastSeenName[id]
		}
		stats.DrinkBreakdown[id] = entry
	}

	stats.ParticipantRevenue = stats.TotalCustomers * EntryFee
	stats.TotalRevenue = stats.ParticipantRevenue + stats.DrinkRevenue

	report := Report{Stats: stats, CatalogEmpty: len(in.Catalog) == 0}
	for id := range missing {
		report.MissingItemIDs = append(report.MissingItemIDs, id)
	}
	sort.Strings(report.MissingItemIDs)
	return report
}

// CustomerTotal is the amount owed on one tab: entry fees plus every
// non-cancelled drink.
func CustomerTotal(c models.Customer, orders []models.Order, catalog models.Catalog) int64 {
	total := c.Guests() * EntryFee
	for _, o := range orders {
		if o.Status == models.StatusCancelled {
			continue
		}
		for _, it := range o.Items {
			price, _, _ := lookup(catalog, it.ItemID)
			total += it.Quantity * price
		}
	}
	return total
}

// lookup resolves price and type; unknown items cost FallbackPrice and count
// as non-alcoholic.
func lookup(catalog models.Catalog, itemID string) (int64, bool, bool) {
	item, ok := catalog[itemID]
	if !ok {
		return FallbackPrice, false, false
	}
	return item.Price, item.Type == models.DrinkAlcoholic, true
}

func sortedCustomers(in []models.Customer) []models.Customer {
	out := append([]models.Customer(nil), in...)
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].CreatedAt != out[j].CreatedAt {
			return out[i].CreatedAt < out[j].CreatedAt
		}
		return out[i].ID < out[j].ID
	})
	return out
}

func sortedOrders(in []models.Order) []models.Order {
	out := append([]models.Order(nil), in...)
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].CreatedAt != out[j].CreatedAt {
			return out[i].CreatedAt < out[j].CreatedAt
		}
		return out[i].ID < out[j].ID
	})
	return out
}
