package sqlstore

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainevents "github.com/ghuser/catalog/services/catalog/domain/events"
)

func TestPublish_UnknownEventType(t *testing.T) {
	r := &ItemRepository{}

	err := r.publish(context.Background(), nil, domainevents.TopicItemCreated, struct{ ID int64 }{ID: 1})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown event type")
}
