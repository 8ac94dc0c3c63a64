package services

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/jackc/pgx/v5/pgxpool"

	"loyalty-backend/internal/allocation"
	"loyalty-backend/internal/cache"
	"loyalty-backend/internal/models"
	"loyalty-backend/internal/repositories"
)

// BannerWithProduct is a banner joined with its eligible product view
type BannerWithProduct struct {
	models.Banner
	Product models.CatalogProduct `json:"product"`
}

// CatalogService builds the agency-facing storefront views. Product and
// lot rows may come from the Redis cache, but eligibility is recomputed
// per agency per request: it depends on purchase history and may change
// with every confirmed order.
type CatalogService struct {
	pool     *pgxpool.Pool
	products *repositories.ProductRepository
	banners  *repositories.BannerRepository
	orders   *repositories.OrderRepository
}

func NewCatalogService(
	pool *pgxpool.Pool,
	products *repositories.ProductRepository,
	banners *repositories.BannerRepository,
	orders *repositories.OrderRepository,
) *CatalogService {
	return &CatalogService{
		pool:     pool,
		products: products,
		banners:  banners,
		orders:   orders,
	}
}

// historyFor reads fresh purchase history; agencyID 0 (anonymous) gets
// the optimistic empty history.
func (s *CatalogService) historyFor(ctx context.Context, agencyID, productID int64) (allocation.History, error) {
	if agencyID == 0 {
		return allocation.History{}, nil
	}
	return s.orders.GetPurchaseHistory(ctx, s.pool, agencyID, productID)
}

func (s *CatalogService) listActive(ctx context.Context, categoryID int64) ([]models.ProductWithLots, error) {
	if data, ok := cache.GetCachedCatalog(ctx, categoryID); ok {
		var products []models.ProductWithLots
		if err := json.Unmarshal(data, &products); err == nil {
			return products, nil
		}
	}

	products, err := s.products.ListActive(ctx, categoryID)
	if err != nil {
		return nil, err
	}

	if data, err := json.Marshal(products); err == nil {
		cache.CacheCatalog(ctx, categoryID, data)
	}
	return products, nil
}

// ListEligibleProducts returns the products the agency can buy at least
// one unit of right now, with the points price of that next unit.
func (s *CatalogService) ListEligibleProducts(ctx context.Context, agencyID, categoryID int64) ([]models.CatalogProduct, error) {
	products, err := s.listActive(ctx, categoryID)
	if err != nil {
		return nil, err
	}

	eligible := make([]models.CatalogProduct, 0, len(products))
	for _, p := range products {
		cp, ok, err := s.eligibleView(ctx, agencyID, &p)
		if err != nil {
			return nil, err
		}
		if ok {
			eligible = append(eligible, *cp)
		}
	}
	return eligible, nil
}

// eligibleView runs the allocation engine for quantity 1. A product
// with no lots, or whose remaining capacity is exhausted for this
// agency, is excluded from display.
func (s *CatalogService) eligibleView(ctx context.Context, agencyID int64, p *models.ProductWithLots) (*models.CatalogProduct, bool, error) {
	if len(p.Lots) == 0 {
		return nil, false, nil
	}

	hist, err := s.historyFor(ctx, agencyID, p.ID)
	if err != nil {
		return nil, false, err
	}

	result, err := allocation.Distribute(1, lotsForAllocation(p.Lots), hist)
	if err != nil {
		return nil, false, err
	}
	if !result.CanAdd {
		return nil, false, nil
	}

	return &models.CatalogProduct{
		Product:    p.Product,
		UnitPoints: result.TotalPoints,
	}, true, nil
}

// GetProduct returns one product's storefront view, or
// ErrProductUnavailable when this agency cannot buy a unit of it.
func (s *CatalogService) GetProduct(ctx context.Context, agencyID, productID int64) (*models.CatalogProduct, error) {
	product, err := s.products.GetWithLots(ctx, s.pool, productID)
	if err != nil {
		return nil, err
	}
	if !product.Active {
		return nil, ErrProductUnavailable
	}

	cp, ok, err := s.eligibleView(ctx, agencyID, product)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrProductUnavailable
	}
	return cp, nil
}

// ListEligibleBanners filters active hero banners with the same engine
// call as the catalog: a banner only shows when its product is buyable
// by this agency right now.
func (s *CatalogService) ListEligibleBanners(ctx context.Context, agencyID int64) ([]BannerWithProduct, error) {
	var banners []models.Banner
	if data, ok := cache.GetCachedBanners(ctx); ok {
		json.Unmarshal(data, &banners)
	}
	if banners == nil {
		var err error
		banners, err = s.banners.ListActive(ctx)
		if err != nil {
			return nil, err
		}
		if data, err := json.Marshal(banners); err == nil {
			cache.CacheBanners(ctx, data)
		}
	}

	eligible := make([]BannerWithProduct, 0, len(banners))
	for _, b := range banners {
		product, err := s.products.GetWithLots(ctx, s.pool, b.ProductID)
		if err != nil {
			if errors.Is(err, repositories.ErrProductNotFound) {
				continue
			}
			return nil, err
		}
		if !product.Active || product.Quantity <= 0 {
			continue
		}

		cp, ok, err := s.eligibleView(ctx, agencyID, product)
		if err != nil {
			return nil, err
		}
		if !ok {
			continue
		}
		eligible = append(eligible, BannerWithProduct{Banner: b, Product: *cp})
	}
	return eligible, nil
}

// Preview runs a non-binding allocation for a cart quantity change.
// The same engine runs again, authoritatively, inside the checkout
// transaction; this call only answers "would it fit right now".
func (s *CatalogService) Preview(ctx context.Context, agencyID int64, req *models.CartPreviewRequest) (*allocation.Result, error) {
	if req.Quantity <= 0 {
		return nil, ErrInvalidQuantity
	}

	product, err := s.products.GetWithLots(ctx, s.pool, req.ProductID)
	if err != nil {
		return nil, err
	}
	if !product.Active || len(product.Lots) == 0 {
		return nil, ErrProductUnavailable
	}

	hist, err := s.historyFor(ctx, agencyID, req.ProductID)
	if err != nil {
		return nil, err
	}

	result, err := allocation.Distribute(req.Quantity, lotsForAllocation(product.Lots), hist)
	if err != nil {
		return nil, err
	}
	return &result, nil
}
