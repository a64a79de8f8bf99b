// Package service implements the catalog business rules on top of the
// repositories, the event relay and the search engine.
package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/IGDevX/marche-conclu-shop-service/internal/repository"
	apperrors "github.com/IGDevX/marche-conclu-shop-service/pkg/errors"
)

// Transactor runs fn in a database transaction. *relay.Relay implements it.
type Transactor interface {
	InTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// lifecycleStore is the part of a repository the shared lifecycle
// operations need.
type lifecycleStore[T any] interface {
	repository.Lifecycle
	GetByID(ctx context.Context, id int64, includeDeleted bool) (*T, error)
}

// softDelete flags a live row as deleted. NotFound if the row is absent or
// already deleted.
func softDelete[T any](ctx context.Context, repo lifecycleStore[T], id int64) error {
	if _, err := repo.GetByID(ctx, id, false); err != nil {
		return err
	}
	return repo.SetDeleted(ctx, id, true)
}

// restore clears the deleted flag. InvalidState if the row is live.
func restore[T any](ctx context.Context, repo lifecycleStore[T], resource string, id int64, isDeleted func(*T) bool) error {
	row, err := repo.GetByID(ctx, id, true)
	if err != nil {
		return err
	}
	if !isDeleted(row) {
		return apperrors.InvalidState(fmt.Sprintf("%s with id %d is not deleted", resource, id))
	}
	return repo.SetDeleted(ctx, id, false)
}

// hardDelete removes a row, live or soft-deleted.
func hardDelete[T any](ctx context.Context, repo lifecycleStore[T], id int64) error {
	if _, err := repo.GetByID(ctx, id, true); err != nil {
		return err
	}
	return repo.HardDelete(ctx, id)
}

// unique turns the result of a natural-key lookup into a uniqueness check:
// a hit is AlreadyExists, NotFound is fine, anything else is returned.
func unique(lookupErr error, resource, field string, value any) error {
	switch {
	case lookupErr == nil:
		return apperrors.AlreadyExists(resource, field, value)
	case errors.Is(lookupErr, apperrors.ErrNotFound):
		return nil
	default:
		return lookupErr
	}
}
