package kafka

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/IGDevX/marche-conclu-shop-service/pkg/logger"
)

func TestNewEvent(t *testing.T) {
	type payload struct {
		ProductID int64 `json:"product_id"`
	}
	event, err := NewEvent("product.updated", "42", "product", "shop-service", payload{ProductID: 42})
	require.NoError(t, err)

	assert.NotEmpty(t, event.EventID)
	assert.Equal(t, "product.updated", event.EventType)
	assert.Equal(t, "42", event.AggregateID)
	assert.Equal(t, 1, event.Version)
	assert.WithinDuration(t, time.Now().UTC(), event.Timestamp, 2*time.Second)

	var got payload
	require.NoError(t, event.UnmarshalData(&got))
	assert.Equal(t, int64(42), got.ProductID)
}

func TestNewEvent_UnencodablePayload(t *testing.T) {
	_, err := NewEvent("product.updated", "1", "product", "shop-service", make(chan int))
	assert.Error(t, err)
}

func TestNewEventFromContext_CarriesCorrelationID(t *testing.T) {
	ctx := logger.WithCorrelationID(context.Background(), "corr-7")
	event, err := NewEventFromContext(ctx, "product.deleted", "7", "product", "shop-service", nil)
	require.NoError(t, err)
	assert.Equal(t, "corr-7", event.CorrelationID)
}

func TestUnmarshalEvent_Invalid(t *testing.T) {
	_, err := UnmarshalEvent([]byte("{"))
	assert.Error(t, err)
}
