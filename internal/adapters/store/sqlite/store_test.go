package sqlite

import (
	"context"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/bnema/onboarding-coordinator/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixedClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fixedClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(time.Second)
	return c.now
}

func openTestStore(t *testing.T) *Store {
	t.Helper()

	clock := &fixedClock{now: time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)}
	store, err := Open(filepath.Join(t.TempDir(), "nested", "onboard.db"), clock)
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestStoreListByOwnerReturnsLinkOrder(t *testing.T) {
	t.Parallel()

	store := openTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.AddAccount(ctx, domain.LinkedAccount{ID: "b", OwnerID: "auth0|m1", InstitutionID: "ins_1"}))
	require.NoError(t, store.AddAccount(ctx, domain.LinkedAccount{ID: "a", OwnerID: "auth0|m1", LinkError: "ITEM_LOGIN_REQUIRED"}))
	require.NoError(t, store.AddAccount(ctx, domain.LinkedAccount{ID: "c", OwnerID: "auth0|other"}))

	accounts, err := store.ListByOwner(ctx, "auth0|m1")
	require.NoError(t, err)
	require.Len(t, accounts, 2)
	assert.Equal(t, domain.AccountID("b"), accounts[0].ID)
	assert.Equal(t, "ins_1", accounts[0].InstitutionID)
	assert.True(t, accounts[0].Healthy())
	assert.Equal(t, domain.AccountID("a"), accounts[1].ID)
	assert.False(t, accounts[1].Healthy())

	none, err := store.ListByOwner(ctx, "auth0|nobody")
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestStoreAddAccountValidates(t *testing.T) {
	t.Parallel()

	store := openTestStore(t)
	assert.Error(t, store.AddAccount(context.Background(), domain.LinkedAccount{ID: " ", OwnerID: "auth0|m"}))
	assert.ErrorIs(t, store.AddAccount(context.Background(), domain.LinkedAccount{ID: "a"}), domain.ErrInvalidMemberID)
}

func TestStoreFindReadyConsumesHistoricalUpdates(t *testing.T) {
	t.Parallel()

	store := openTestStore(t)
	ctx := context.Background()

	missing, err := store.FindReady(ctx, "acct1")
	require.NoError(t, err)
	assert.Nil(t, missing)

	_, err = store.SaveWebhook(ctx, domain.Webhook{AccountID: "acct1", Type: domain.WebhookTypeTransactions, Code: "INITIAL_UPDATE"})
	require.NoError(t, err)
	_, err = store.SaveWebhook(ctx, domain.Webhook{AccountID: "acct1", Type: "ITEM", Code: domain.WebhookCodeHistoricalUpdate})
	require.NoError(t, err)

	notYet, err := store.FindReady(ctx, "acct1")
	require.NoError(t, err)
	assert.Nil(t, notYet)

	first, err := store.SaveWebhook(ctx, domain.Webhook{ID: "wh-1", AccountID: "acct1", Type: domain.WebhookTypeTransactions, Code: domain.WebhookCodeHistoricalUpdate})
	require.NoError(t, err)
	_, err = store.SaveWebhook(ctx, domain.Webhook{ID: "wh-2", AccountID: "acct1", Type: domain.WebhookTypeInvestmentsTransactions, Code: domain.WebhookCodeHistoricalUpdate})
	require.NoError(t, err)

	found, err := store.FindReady(ctx, "acct1")
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, "wh-1", found.ID)
	assert.True(t, found.HistoricalUpdate())
	assert.True(t, first.ReceivedAt.Equal(found.ReceivedAt))
	assert.False(t, found.ResolvedAt.IsZero())

	second, err := store.FindReady(ctx, "acct1")
	require.NoError(t, err)
	require.NotNil(t, second)
	assert.Equal(t, "wh-2", second.ID)

	drained, err := store.FindReady(ctx, "acct1")
	require.NoError(t, err)
	assert.Nil(t, drained)
}

func TestStoreFindReadyHandsOutEachWebhookOnce(t *testing.T) {
	t.Parallel()

	store := openTestStore(t)
	ctx := context.Background()
	_, err := store.SaveWebhook(ctx, domain.Webhook{AccountID: "acct1", Type: domain.WebhookTypeTransactions, Code: domain.WebhookCodeHistoricalUpdate})
	require.NoError(t, err)

	var (
		wg    sync.WaitGroup
		mu    sync.Mutex
		found int
	)
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			webhook, err := store.FindReady(ctx, "acct1")
			assert.NoError(t, err)
			if webhook != nil {
				mu.Lock()
				found++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, 1, found)
}

func TestStoreImportRecordsLedger(t *testing.T) {
	t.Parallel()

	store := openTestStore(t)
	ctx := context.Background()
	importCtx := domain.ImportContext{SessionID: "c:m", ClientID: "c", MemberID: "auth0|m", WebhookID: "wh-1", Attempt: 1}

	err := store.Import(ctx, "ghost", importCtx)
	assert.ErrorIs(t, err, domain.ErrAccountNotFound)

	require.NoError(t, store.AddAccount(ctx, domain.LinkedAccount{ID: "acct1", OwnerID: "auth0|m"}))
	require.NoError(t, store.Import(ctx, "acct1", importCtx))
	importCtx.Attempt = 2
	require.NoError(t, store.Import(ctx, "acct1", importCtx))

	n, err := store.ImportCount(ctx, "acct1")
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}

func TestStoreScoreQueuesRequest(t *testing.T) {
	t.Parallel()

	store := openTestStore(t)
	ctx := context.Background()
	identity := domain.SessionIdentity{
		SessionID: "c:auth0|m",
		Client:    domain.ClientConfig{ClientID: "c"},
		Profile:   domain.Profile{UserID: "auth0|m"},
	}

	assert.Error(t, store.Score(ctx, identity, nil))
	require.NoError(t, store.Score(ctx, identity, []domain.AccountID{"a", "b"}))

	requests, err := store.ScoringRequests(ctx, identity.SessionID)
	require.NoError(t, err)
	assert.Equal(t, [][]domain.AccountID{{"a", "b"}}, requests)
}

func TestOpenRejectsEmptyPath(t *testing.T) {
	t.Parallel()

	_, err := Open("", nil)
	assert.Error(t, err)
}
