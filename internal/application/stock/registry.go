package stock

import (
	"github.com/labstock/backend/internal/domain/shared"
	"github.com/labstock/backend/internal/domain/stock"
)

// Registry holds one StockService per category.
type Registry struct {
	services map[stock.Category]*StockService
}

// NewRegistry builds a service for every known category over the same repositories.
func NewRegistry(repos Repositories, txScope TransactionScope, configure ...func(*StockService)) *Registry {
	r := &Registry{services: make(map[stock.Category]*StockService)}
	for _, c := range stock.AllCategories() {
		svc := NewStockService(stock.MustDescriptor(c), repos, txScope)
		for _, fn := range configure {
			fn(svc)
		}
		r.services[c] = svc
	}
	return r
}

// For returns the service of a category.
func (r *Registry) For(category stock.Category) (*StockService, error) {
	svc, ok := r.services[category]
	if !ok {
		return nil, shared.NewDomainError("INVALID_CATEGORY", "Unknown stock category: "+string(category))
	}
	return svc, nil
}

// Services returns the services in category display order.
func (r *Registry) Services() []*StockService {
	out := make([]*StockService, 0, len(r.services))
	for _, c := range stock.AllCategories() {
		out = append(out, r.services[c])
	}
	return out
}
