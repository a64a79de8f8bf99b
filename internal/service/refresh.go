package service

import (
	"context"
	"log/slog"

	"github.com/IGDevX/marche-conclu-shop-service/internal/relay"
	"github.com/IGDevX/marche-conclu-shop-service/internal/repository"
)

// ReferencingProducts finds the products that point at a reference row.
type ReferencingProducts interface {
	IDsReferencing(ctx context.Context, ref repository.Reference, id int64) ([]int64, error)
}

// ProductRefresher keeps product documents in step with the reference rows
// they embed: a change to a currency code, unit label, shelf label, category
// name or certification records an update for every product carrying it.
type ProductRefresher struct {
	tx       Transactor
	products ReferencingProducts
	logger   *slog.Logger
}

// NewProductRefresher creates a refresher recording events through tx.
func NewProductRefresher(tx Transactor, products ReferencingProducts, logger *slog.Logger) *ProductRefresher {
	return &ProductRefresher{tx: tx, products: products, logger: logger}
}

// Do runs fn in a transaction and records a product update for each product
// referencing the ref row id. The ids are read before fn so that cascading
// deletes are still seen. A nil refresher just runs fn.
func (r *ProductRefresher) Do(ctx context.Context, ref repository.Reference, id int64, fn func(ctx context.Context) error) error {
	if r == nil {
		return fn(ctx)
	}

	var affected int
	err := r.tx.InTx(ctx, func(ctx context.Context) error {
		ids, err := r.products.IDsReferencing(ctx, ref, id)
		if err != nil {
			return err
		}
		if err := fn(ctx); err != nil {
			return err
		}
		for _, pid := range ids {
			if err := relay.Record(ctx, relay.Updated(pid)); err != nil {
				return err
			}
		}
		affected = len(ids)
		return nil
	})
	if err != nil {
		return err
	}
	if affected > 0 {
		r.logger.InfoContext(ctx, "reindexing products after reference change",
			slog.String("reference", string(ref)),
			slog.Int64("reference_id", id),
			slog.Int("products", affected),
		)
	}
	return nil
}

// when returns r if changed, nil otherwise.
func (r *ProductRefresher) when(changed bool) *ProductRefresher {
	if changed {
		return r
	}
	return nil
}

// ReferenceOption customizes a reference data service.
type ReferenceOption func(*referenceOptions)

type referenceOptions struct {
	refresh *ProductRefresher
}

// WithProductRefresh reindexes the products embedding a row when it changes.
func WithProductRefresh(r *ProductRefresher) ReferenceOption {
	return func(o *referenceOptions) { o.refresh = r }
}

func applyReferenceOptions(opts []ReferenceOption) referenceOptions {
	var o referenceOptions
	for _, opt := range opts {
		opt(&o)
	}
	return o
}
