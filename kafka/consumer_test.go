package kafka

import (
	"context"
	"sync"
	"testing"

	"github.com/IBM/sarama"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingInvalidator struct {
	mu  sync.Mutex
	ids []string
}

func (r *recordingInvalidator) InvalidateProduct(_ context.Context, productID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.ids = append(r.ids, productID)
}

func newTestHandler(inv ProductCacheInvalidator) *consumerGroupHandler {
	c := NewConsumerWithGroup(nil, "wishlist-test", []string{TopicCatalogEvents})
	c.RegisterCatalogHandlers(inv)
	return &consumerGroupHandler{consumer: c}
}

func catalogMessage(value string, headers ...string) *sarama.ConsumerMessage {
	msg := &sarama.ConsumerMessage{Topic: TopicCatalogEvents, Value: []byte(value)}
	for i := 0; i+1 < len(headers); i += 2 {
		msg.Headers = append(msg.Headers, &sarama.RecordHeader{
			Key:   []byte(headers[i]),
			Value: []byte(headers[i+1]),
		})
	}
	return msg
}

func TestConsumer_InvalidatesOnCatalogEvents(t *testing.T) {
	inv := &recordingInvalidator{}
	h := newTestHandler(inv)
	ctx := context.Background()

	require.NoError(t, h.handleMessage(ctx, catalogMessage(`{"product_id":"p1"}`, "event_type", EventTypeProductUpdated)))
	require.NoError(t, h.handleMessage(ctx, catalogMessage(`{"product_id":"p2","event_type":"product.deleted"}`)))

	assert.Equal(t, []string{"p1", "p2"}, inv.ids)
}

func TestConsumer_IgnoresUnknownEventTypes(t *testing.T) {
	inv := &recordingInvalidator{}
	h := newTestHandler(inv)

	err := h.handleMessage(context.Background(), catalogMessage(`{"product_id":"p1"}`, "event_type", "product.created"))
	assert.NoError(t, err)
	assert.Empty(t, inv.ids)
}

func TestConsumer_RejectsBadMessages(t *testing.T) {
	inv := &recordingInvalidator{}
	h := newTestHandler(inv)
	ctx := context.Background()

	assert.Error(t, h.handleMessage(ctx, catalogMessage(`not json`, "event_type", EventTypeProductUpdated)))
	assert.Error(t, h.handleMessage(ctx, catalogMessage(`{"product_id":"p1"}`)))
	assert.Error(t, h.handleMessage(ctx, catalogMessage(`{}`, "event_type", EventTypeProductDeleted)))
	assert.Empty(t, inv.ids)
}
