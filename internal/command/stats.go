package command

import (
	"context"
	"sort"

	"washpos/internal/dto"

	"github.com/shopspring/decimal"
)

// TodayStats folds today's local sales into the numbers the dashboard shows
// while the remote stats endpoint is unreachable.
func (s *service) TodayStats(ctx context.Context) (*dto.TodayStats, error) {
	today := s.now().Format("2006-01-02")
	sales, err := s.store.SalesOn(ctx, today)
	if err != nil {
		return nil, err
	}

	revenue := decimal.Zero
	counts := map[string]int{}
	for _, sale := range sales {
		revenue = revenue.Add(sale.Total)
		for _, item := range sale.Items {
			counts[item.Name] += item.Quantity
		}
	}

	popular := make([]dto.ServiceCount, 0, len(counts))
	for name, count := range counts {
		popular = append(popular, dto.ServiceCount{Name: name, Count: count})
	}
	sort.Slice(popular, func(i, j int) bool {
		if popular[i].Count != popular[j].Count {
			return popular[i].Count > popular[j].Count
		}
		return popular[i].Name < popular[j].Name
	})
	if len(popular) > 5 {
		popular = popular[:5]
	}

	return &dto.TodayStats{
		Transactions:    len(sales),
		Revenue:         revenue,
		PopularServices: popular,
	}, nil
}
