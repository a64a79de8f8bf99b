package relay

import (
	"context"
	"errors"
	"log/slog"

	"github.com/IGDevX/marche-conclu-shop-service/internal/indexer"
	"github.com/IGDevX/marche-conclu-shop-service/pkg/logger"
)

// AsyncIndexer schedules index work.
type AsyncIndexer interface {
	IndexByIDAsync(ctx context.Context, id int64) error
	DeleteAsync(ctx context.Context, id int64) error
}

// IndexHandler forwards committed events to the index writer: updates reload
// and reindex the product, hard deletes remove its document.
func IndexHandler(ix AsyncIndexer, log *slog.Logger) Handler {
	return HandlerFunc(func(ctx context.Context, event Event) error {
		var err error
		switch event.Kind {
		case KindUpdated:
			err = ix.IndexByIDAsync(ctx, event.ProductID)
		case KindDeleted:
			err = ix.DeleteAsync(ctx, event.ProductID)
		default:
			return nil
		}
		if errors.Is(err, indexer.ErrQueueFull) {
			// The row stays authoritative; a reindex repairs the document.
			logger.WithContext(ctx, log).Warn("index queue full, event dropped",
				slog.String("kind", string(event.Kind)),
				slog.Int64("product_id", event.ProductID),
			)
			return nil
		}
		return err
	})
}
