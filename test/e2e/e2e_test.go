// test/e2e/e2e_test.go
package e2e

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/elastic/go-elasticsearch/v8/esapi"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vc-assistant/internal/common/config"
	"vc-assistant/internal/common/database"
	"vc-assistant/internal/common/logger"
	"vc-assistant/internal/models"
	"vc-assistant/internal/repository"

	preparecall "vc-assistant/internal/workers/calendar/prepare-call"
	reconciledeal "vc-assistant/internal/workers/deals/reconcile-deal"
	searchdeals "vc-assistant/internal/workers/deals/search-deals"
)

// These tests run against the services from docker-compose and are skipped
// unless E2E_TESTS is set.
var (
	cfg      *config.Config
	pg       *database.PostgresClient
	rdb      *database.RedisClient
	esClient *database.ElasticsearchClient
)

func TestMain(m *testing.M) {
	if os.Getenv("E2E_TESTS") == "" {
		fmt.Println("E2E_TESTS not set, skipping end-to-end tests")
		os.Exit(0)
	}

	var err error
	if cfg, err = config.Load(); err != nil {
		panic(fmt.Sprintf("config load failed: %v", err))
	}
	if pg, err = database.NewPostgres(cfg.Database.Postgres); err != nil {
		panic(fmt.Sprintf("postgres open failed: %v", err))
	}
	if rdb, err = database.NewRedis(cfg.Database.Redis); err != nil {
		panic(fmt.Sprintf("redis open failed: %v", err))
	}
	if esClient, err = database.NewElasticsearch(cfg.Database.Elasticsearch, nil); err != nil {
		panic(fmt.Sprintf("elasticsearch open failed: %v", err))
	}

	code := m.Run()

	pg.Close()
	rdb.Close()
	os.Exit(code)
}

func TestServicesReachable(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	require.NoError(t, pg.Ping(ctx), "postgres")
	require.NoError(t, rdb.Ping(ctx), "redis")
	require.NoError(t, esClient.Ping(ctx), "elasticsearch")
}

// TestDealLifecycle reconciles a new company, finds it through search and
// prepares a call linked to it.
func TestDealLifecycle(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()
	log := logger.NewTestLogger(t)

	require.NoError(t, pg.ApplySchema(ctx, repository.Schema))
	store := repository.New(pg.DB)
	index := repository.NewDealIndex(esClient.Client, cfg.Database.Elasticsearch.DealIndex)

	company := fmt.Sprintf("E2E Robotics %d", time.Now().UnixNano())
	sector := "Robotics"
	ask := "$2M"

	reconciler := reconciledeal.NewHandler(reconciledeal.LoadConfig(), store.Deals, store.Contacts, store.Emails, index, log)
	first, err := reconciler.Execute(ctx, &reconciledeal.Input{
		CompanyName:   company,
		ExtractedData: models.ExtractedData{Sector: &sector, AskAmount: &ask},
		SenderEmail:   "Jane Founder <jane@e2e-robotics.io>",
	})
	require.NoError(t, err)
	assert.True(t, first.Created)
	assert.Equal(t, models.StageInbox, first.Deal.Stage)
	require.NotNil(t, first.Deal.CheckSize)
	assert.Equal(t, 2000000.0, *first.Deal.CheckSize)

	second, err := reconciler.Execute(ctx, &reconciledeal.Input{CompanyName: company})
	require.NoError(t, err)
	assert.False(t, second.Created, "second reconcile reuses the active deal")
	assert.Equal(t, first.Deal.ID, second.Deal.ID)

	contact, err := store.Contacts.FindByEmail(ctx, "jane@e2e-robotics.io")
	require.NoError(t, err)
	assert.Equal(t, "Jane Founder", contact.Name)

	refresh := esapi.IndicesRefreshRequest{Index: []string{cfg.Database.Elasticsearch.DealIndex}}
	res, err := refresh.Do(ctx, esClient.Client)
	require.NoError(t, err)
	res.Body.Close()

	search := searchdeals.NewHandler(searchdeals.LoadConfig(), index, log)
	found, err := search.Execute(ctx, &searchdeals.Input{Query: company, Sector: sector})
	require.NoError(t, err)
	require.NotEmpty(t, found.Deals)
	assert.Equal(t, first.Deal.ID, found.Deals[0].ID)

	start := time.Now().Add(24 * time.Hour).UTC().Truncate(time.Second)
	meeting := &models.Meeting{
		GoogleEventID: "e2e-" + first.Deal.ID,
		DealID:        &first.Deal.ID,
		Title:         company + " intro",
		StartTime:     start,
		EndTime:       start.Add(30 * time.Minute),
		Attendees:     []string{"jane@e2e-robotics.io"},
	}
	require.NoError(t, store.Meetings.Create(ctx, meeting))
	assert.ErrorIs(t, store.Meetings.Create(ctx, &models.Meeting{
		GoogleEventID: meeting.GoogleEventID, Title: "dup", StartTime: start, EndTime: start,
	}), repository.ErrDuplicate)

	prep := preparecall.NewHandler(preparecall.LoadConfig(), store.Meetings, store.Deals, log)
	brief, err := prep.Execute(ctx, &preparecall.Input{MeetingID: meeting.ID})
	require.NoError(t, err)
	assert.Equal(t, meeting.Title, brief.Meeting.Title)
	require.NotNil(t, brief.Company)
	assert.Equal(t, company, brief.Company.Name)
	assert.Equal(t, sector, brief.Company.Sector)
}
