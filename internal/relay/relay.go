// Package relay runs catalog writes inside a transaction and, once the
// transaction commits, hands the recorded product events to their handlers.
// Nothing is dispatched for a rolled-back transaction.
package relay

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"

	"github.com/jackc/pgx/v5"

	"github.com/IGDevX/marche-conclu-shop-service/pkg/database"
	"github.com/IGDevX/marche-conclu-shop-service/pkg/logger"
)

// ErrNoTransaction is returned by Record outside of InTx.
var ErrNoTransaction = errors.New("relay: no transaction in context")

// Kind is the kind of product change.
type Kind string

// Event kinds.
const (
	// KindUpdated covers create, update, soft delete and restore.
	KindUpdated Kind = "updated"
	// KindDeleted is a hard delete.
	KindDeleted Kind = "deleted"
)

// Event is a product change captured inside a transaction.
type Event struct {
	Kind      Kind
	ProductID int64
}

// Updated returns an update event for id.
func Updated(id int64) Event { return Event{Kind: KindUpdated, ProductID: id} }

// Deleted returns a hard-delete event for id.
func Deleted(id int64) Event { return Event{Kind: KindDeleted, ProductID: id} }

// Handler reacts to a committed product event.
type Handler interface {
	HandleProductEvent(ctx context.Context, event Event) error
}

// HandlerFunc adapts a function to Handler.
type HandlerFunc func(ctx context.Context, event Event) error

// HandleProductEvent calls f.
func (f HandlerFunc) HandleProductEvent(ctx context.Context, event Event) error {
	return f(ctx, event)
}

type recorderKey struct{}

type recorder struct {
	events []Event
}

func (r *recorder) add(e Event) {
	if !slices.Contains(r.events, e) {
		r.events = append(r.events, e)
	}
}

// Record captures event in the transaction carried by ctx.
func Record(ctx context.Context, event Event) error {
	rec, ok := ctx.Value(recorderKey{}).(*recorder)
	if !ok {
		return ErrNoTransaction
	}
	rec.add(event)
	return nil
}

// Relay is the transaction boundary for catalog writes.
type Relay struct {
	db       database.TxStarter
	handlers []Handler
	logger   *slog.Logger
}

// New creates a Relay that dispatches committed events to handlers in order.
func New(db database.TxStarter, log *slog.Logger, handlers ...Handler) *Relay {
	return &Relay{db: db, handlers: handlers, logger: log}
}

// InTx runs fn in a transaction. Repositories called with the context passed
// to fn share the transaction, and Record captures events in it. A nested
// call joins the outer transaction. Events are dispatched after commit with a
// context that outlives the request.
func (r *Relay) InTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if _, ok := ctx.Value(recorderKey{}).(*recorder); ok {
		return fn(ctx)
	}

	tx, err := r.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}

	rec := &recorder{}
	txCtx := database.WithTx(context.WithValue(ctx, recorderKey{}, rec), tx)

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback(context.WithoutCancel(ctx))
			panic(p)
		}
	}()

	if err := fn(txCtx); err != nil {
		if rbErr := tx.Rollback(context.WithoutCancel(ctx)); rbErr != nil {
			r.logger.ErrorContext(ctx, "failed to roll back transaction", slog.String("error", rbErr.Error()))
		}
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}

	r.dispatch(context.WithoutCancel(ctx), rec.events)
	return nil
}

func (r *Relay) dispatch(ctx context.Context, events []Event) {
	log := logger.WithContext(ctx, r.logger)
	for _, event := range events {
		for _, h := range r.handlers {
			if err := safeHandle(ctx, h, event); err != nil {
				log.Error("product event handler failed",
					slog.String("kind", string(event.Kind)),
					slog.Int64("product_id", event.ProductID),
					slog.String("error", err.Error()),
				)
			}
		}
	}
}

func safeHandle(ctx context.Context, h Handler, event Event) (err error) {
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("handler panicked: %v", p)
		}
	}()
	return h.HandleProductEvent(ctx, event)
}
