package sqlstore_test

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"testing"
	"time"

	watermillsql "github.com/ThreeDotsLabs/watermill-sql/v3/pkg/sql"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ghuser/catalog/migrations"
	"github.com/ghuser/catalog/pkg/config"
	"github.com/ghuser/catalog/pkg/database"
	"github.com/ghuser/catalog/pkg/events"
	"github.com/ghuser/catalog/pkg/logger"
	"github.com/ghuser/catalog/pkg/migrator"
	catalogdomain "github.com/ghuser/catalog/services/catalog/domain"
	domainevents "github.com/ghuser/catalog/services/catalog/domain/events"
	"github.com/ghuser/catalog/services/catalog/infrastructure/persistence/sqlstore"
)

// Integration test, skipped unless DATABASE_URL is set. STORE_DRIVER selects
// postgres (default) or mysql.
func TestItemRepositoryIntegration_PublishesThroughOutbox(t *testing.T) {
	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		t.Skip("DATABASE_URL not set; skipping integration tests")
	}
	driver := os.Getenv("STORE_DRIVER")
	if driver == "" {
		driver = config.DriverPostgres
	}
	var outboxTable string
	switch driver {
	case config.DriverPostgres:
		outboxTable = watermillsql.DefaultPostgreSQLSchema{}.MessagesTable(events.OutboxTopic)
	case config.DriverMySQL:
		outboxTable = watermillsql.DefaultMySQLSchema{}.MessagesTable(events.OutboxTopic)
	default:
		t.Skipf("STORE_DRIVER %q has no outbox", driver)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	db, err := database.Open(ctx, driver, dbURL, logger.Discard())
	require.NoError(t, err)
	defer db.Close() //nolint:errcheck
	require.NoError(t, migrator.RunMigrations(ctx, db.SQL(), driver, migrations.FS))

	cfg := &config.Config{
		StoreDriver: driver,
		DatabaseURL: dbURL,
		ServiceName: fmt.Sprintf("catalog-sqlstore-it-%d", time.Now().UnixNano()),
	}
	bus, err := events.NewEventBusWithForwarder(cfg, logger.Discard())
	require.NoError(t, err)
	defer bus.Close() //nolint:errcheck
	require.NoError(t, bus.StartForwarder(ctx))

	countOutbox := func() int {
		var n int
		require.NoError(t, db.DB().GetContext(ctx, &n, "SELECT COUNT(*) FROM "+outboxTable))
		return n
	}
	before := countOutbox()

	repo := sqlstore.NewItemRepository(db, bus)
	item := newItem("Soccer Ball", "10.123456789012345678901234567890", 25)
	require.NoError(t, repo.Save(ctx, item))
	require.True(t, item.IsPersisted())

	got, err := repo.GetByID(ctx, item.ID)
	require.NoError(t, err)
	assert.True(t, item.Price.Equal(got.Price), "price %s came back as %s", item.Price, got.Price)

	// Same values again: matched-but-unchanged rows must still count as found.
	require.NoError(t, repo.Update(ctx, item))
	require.NoError(t, repo.Delete(ctx, item.ID))
	require.NoError(t, repo.Delete(ctx, item.ID))
	assert.ErrorIs(t, repo.Update(ctx, item), catalogdomain.ErrItemNotFound)

	assert.Equal(t, 3, countOutbox()-before, "one outbox row per effective mutation")

	delivered := make(chan string, 16)
	for _, topic := range []string{
		domainevents.TopicItemCreated,
		domainevents.TopicItemUpdated,
		domainevents.TopicItemDeleted,
	} {
		errCh, err := bus.Subscribe(ctx, topic, func(_ context.Context, msg *message.Message) error {
			var payload struct {
				ItemID int64 `json:"item_id"`
			}
			if err := json.Unmarshal(msg.Payload, &payload); err != nil {
				return err
			}
			if payload.ItemID == item.ID {
				select {
				case delivered <- topic:
				default:
				}
			}
			return nil
		})
		require.NoError(t, err)
		go func() {
			for range errCh {
			}
		}()
	}

	seen := map[string]bool{}
	for len(seen) < 3 {
		select {
		case topic := <-delivered:
			seen[topic] = true
		case <-ctx.Done():
			t.Fatalf("timed out waiting for events, got %v", seen)
		}
	}
}
