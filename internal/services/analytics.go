package services

import (
	"context"
	"fmt"
	"net/url"

	"github.com/terra-clan/backoffice/internal/models"
	"github.com/terra-clan/backoffice/internal/querycache"
	"github.com/terra-clan/backoffice/pkg/client"
)

// Analytics reads the dashboard endpoints
type Analytics struct {
	api   *client.Client
	cache *querycache.Cache
}

// KPIs returns the headline counters
func (a *Analytics) KPIs(ctx context.Context) (*models.KPIData, error) {
	res, err := a.cache.Query(ctx, querycache.NewKey("analytics", "kpis"), func(ctx context.Context) (any, error) {
		env, err := a.api.Get(ctx, "/admin/analytics/kpis", nil)
		if err != nil {
			return nil, err
		}
		var out models.KPIData
		if err := env.DecodeData(&out); err != nil {
			return nil, err
		}
		return &out, nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get kpis: %w", err)
	}
	return querycache.As[*models.KPIData](res.Data)
}

// Visitors returns the visitors chart for a time range
func (a *Analytics) Visitors(ctx context.Context, r models.TimeRange) ([]models.VisitorDataPoint, error) {
	if !r.Valid() {
		r = models.Range90d
	}
	res, err := a.cache.Query(ctx, querycache.NewKey("analytics", "visitors", string(r)), func(ctx context.Context) (any, error) {
		env, err := a.api.Get(ctx, "/admin/analytics/visitors", url.Values{"timeRange": {string(r)}})
		if err != nil {
			return nil, err
		}
		var out []models.VisitorDataPoint
		if err := env.DecodeData(&out); err != nil {
			return nil, err
		}
		return out, nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get visitors: %w", err)
	}
	return querycache.As[[]models.VisitorDataPoint](res.Data)
}
