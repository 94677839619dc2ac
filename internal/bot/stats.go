package bot

import (
	"context"

	"github.com/MMahdiAsghari/Woocommerce-Telegram-Bot/internal/domain"
	"github.com/shopspring/decimal"
)

const statsOrderWindow = 50

// storeStats aggregates the most recent orders into headline numbers.
type storeStats struct {
	TotalOrders  int
	TotalRevenue decimal.Decimal
	TopProduct   string
	TopRevenue   decimal.Decimal
}

// computeStats sums revenue over the latest orders and picks the product
// with the highest line revenue. Product names come from the line items
// themselves, so no extra product fetch is needed.
func computeStats(ctx context.Context, store domain.StoreClient) (storeStats, error) {
	orders, err := store.Orders(ctx, domain.ListParams{Limit: statsOrderWindow})
	if err != nil {
		return storeStats{}, err
	}

	stats := storeStats{
		TotalOrders:  len(orders),
		TotalRevenue: decimal.Zero,
		TopProduct:   "N/A",
		TopRevenue:   decimal.Zero,
	}

	sales := make(map[int64]decimal.Decimal)
	names := make(map[int64]string)
	for _, o := range orders {
		stats.TotalRevenue = stats.TotalRevenue.Add(o.Total)
		for _, item := range o.Items {
			sales[item.ProductID] = sales[item.ProductID].Add(item.Total)
			if item.Name != "" {
				names[item.ProductID] = item.Name
			}
		}
	}

	var topID int64 = -1
	for id, revenue := range sales {
		if topID == -1 || revenue.GreaterThan(stats.TopRevenue) ||
			(revenue.Equal(stats.TopRevenue) && id < topID) {
			topID = id
			stats.TopRevenue = revenue
		}
	}
	if topID != -1 {
		if name, ok := names[topID]; ok {
			stats.TopProduct = name
		} else {
			stats.TopProduct = "Unknown"
		}
	}
	return stats, nil
}
