package consumers

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"

	"github.com/ghuser/catalog/pkg/config"
	"github.com/ghuser/catalog/pkg/logger"
	domainevents "github.com/ghuser/catalog/services/catalog/domain/events"
	"github.com/ghuser/catalog/services/catalog/domain/models"
)

func newConsumer(t *testing.T) (*ItemEvents, *sdkmetric.ManualReader, *bytes.Buffer) {
	t.Helper()
	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	t.Cleanup(func() { _ = mp.Shutdown(context.Background()) })

	var buf bytes.Buffer
	log := logger.NewWithWriter(&buf, &config.Config{LogLevel: "info"})

	c, err := NewItemEvents(log, mp)
	require.NoError(t, err)
	return c, reader, &buf
}

func payload(t *testing.T, v any) *message.Message {
	t.Helper()
	data, err := json.Marshal(v)
	require.NoError(t, err)
	return message.NewMessage("msg-1", data)
}

func countsByEvent(t *testing.T, reader *sdkmetric.ManualReader) map[string]int64 {
	t.Helper()
	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))

	counts := map[string]int64{}
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			if m.Name != "catalog.item.changes" {
				continue
			}
			sum, ok := m.Data.(metricdata.Sum[int64])
			require.True(t, ok)
			for _, dp := range sum.DataPoints {
				v, _ := dp.Attributes.Value(attribute.Key("event"))
				counts[v.AsString()] += dp.Value
			}
		}
	}
	return counts
}

func TestItemEvents_CountsEachTopic(t *testing.T) {
	c, reader, buf := newConsumer(t)
	ctx := context.Background()
	handlers := c.Handlers()

	item := models.NewItem("Soccer Ball", "Ball", decimal.RequireFromString("10.5"), 25)
	item.ID = 1

	require.NoError(t, handlers[domainevents.TopicItemCreated](ctx, payload(t, domainevents.NewItemCreated(item))))
	require.NoError(t, handlers[domainevents.TopicItemUpdated](ctx, payload(t, domainevents.NewItemUpdated(item))))
	require.NoError(t, handlers[domainevents.TopicItemUpdated](ctx, payload(t, domainevents.NewItemUpdated(item))))
	require.NoError(t, handlers[domainevents.TopicItemDeleted](ctx, payload(t, domainevents.NewItemDeleted(item.ID))))

	assert.Equal(t, map[string]int64{
		domainevents.TopicItemCreated: 1,
		domainevents.TopicItemUpdated: 2,
		domainevents.TopicItemDeleted: 1,
	}, countsByEvent(t, reader))

	out := buf.String()
	assert.Contains(t, out, `"msg":"item created"`)
	assert.Contains(t, out, `"msg":"item deleted"`)
	assert.Contains(t, out, `"price":"10.5"`)
}

func TestItemEvents_RejectsMalformedPayload(t *testing.T) {
	c, reader, _ := newConsumer(t)

	for topic, handle := range c.Handlers() {
		t.Run(topic, func(t *testing.T) {
			err := handle(context.Background(), message.NewMessage("bad", []byte("{not json")))
			assert.Error(t, err)
		})
	}
	assert.Empty(t, countsByEvent(t, reader))
}

func TestItemEvents_HandlersCoverAllTopics(t *testing.T) {
	c, _, _ := newConsumer(t)

	handlers := c.Handlers()
	assert.Len(t, handlers, 3)
	for _, topic := range []string{domainevents.TopicItemCreated, domainevents.TopicItemUpdated, domainevents.TopicItemDeleted} {
		assert.Contains(t, handlers, topic)
	}
}
