package competitor

import (
	"context"
	"fmt"
	"time"

	"github.com/Uddhav-Saikia/ElasticRev/internal/models"
	"github.com/Uddhav-Saikia/ElasticRev/internal/store"
	"go.uber.org/zap"
)

// Feed pulls competitor quotes for catalog products and records them so the
// feature builder can pick up the log_competitor_price column.
type Feed struct {
	client ClientInterface
	store  *store.Store
	logger *zap.Logger
}

// NewFeed creates a competitor price feed.
func NewFeed(client ClientInterface, st *store.Store, logger *zap.Logger) *Feed {
	return &Feed{client: client, store: st, logger: logger}
}

// SyncProduct fetches and records quotes for one product. Returns the number
// of quotes stored; malformed quotes are skipped, not fatal.
func (f *Feed) SyncProduct(ctx context.Context, product *models.Product) (int, error) {
	quotes, err := f.client.Quotes(ctx, product.SKU)
	if err != nil {
		return 0, fmt.Errorf("could not fetch quotes for %s: %w", product.SKU, err)
	}

	stored := 0
	for _, q := range quotes {
		if q.Price <= 0 {
			f.logger.Warn("Skipping quote with non-positive price",
				zap.String("sku", q.SKU), zap.String("competitor", q.Competitor))
			continue
		}
		date, err := time.Parse("2006-01-02", q.Date)
		if err != nil {
			f.logger.Warn("Skipping quote with unparseable date",
				zap.String("sku", q.SKU), zap.String("date", q.Date), zap.Error(err))
			continue
		}

		record := &models.CompetitorPrice{
			ProductID:      product.ID,
			CompetitorName: q.Competitor,
			Price:          q.Price,
			Date:           date,
		}
		if err := f.store.RecordCompetitorPrice(record); err != nil {
			return stored, err
		}
		stored++
	}

	f.logger.Info("Competitor quotes synced",
		zap.String("sku", product.SKU),
		zap.Int("stored", stored),
		zap.Int("received", len(quotes)))
	return stored, nil
}
