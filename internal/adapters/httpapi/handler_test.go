package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/bnema/onboarding-coordinator/internal/domain"
	"github.com/bnema/onboarding-coordinator/internal/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSession struct {
	mu        sync.Mutex
	delivered []domain.Event
	err       error
	snapshot  domain.Snapshot
}

func (s *fakeSession) Deliver(_ context.Context, ev domain.Event) error {
	if err := ev.Validate(); err != nil {
		return err
	}
	if !ev.Type.External() {
		return domain.ErrInternalEvent
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	s.delivered = append(s.delivered, ev)
	return nil
}

func (s *fakeSession) Snapshot() domain.Snapshot {
	return s.snapshot
}

type fakeQueue struct {
	saved []domain.Webhook
	err   error
}

func (q *fakeQueue) SaveWebhook(_ context.Context, webhook domain.Webhook) (domain.Webhook, error) {
	if q.err != nil {
		return domain.Webhook{}, q.err
	}
	webhook.ID = "wh-1"
	q.saved = append(q.saved, webhook)
	return webhook, nil
}

func newTestRouter(session *fakeSession, queue *fakeQueue) http.Handler {
	var webhooks WebhookQueue
	if queue != nil {
		webhooks = queue
	}
	return NewHandler(session, webhooks, logging.NopLogger()).Router()
}

func do(t *testing.T, handler http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func TestPostEventAccepted(t *testing.T) {
	t.Parallel()

	session := &fakeSession{}
	rec := do(t, newTestRouter(session, nil), http.MethodPost, "/events", `{"type":"account_linked","account_id":"acct-1"}`)

	assert.Equal(t, http.StatusAccepted, rec.Code)
	require.Len(t, session.delivered, 1)
	assert.Equal(t, domain.AccountLinked("acct-1"), session.delivered[0])
}

func TestPostEventImportFailureCarriesAttempt(t *testing.T) {
	t.Parallel()

	session := &fakeSession{}
	rec := do(t, newTestRouter(session, nil), http.MethodPost, "/events",
		`{"type":"IMPORT_FAILED","account_id":"acct-1","attempt":2,"reason":"aggregator timeout"}`)

	assert.Equal(t, http.StatusAccepted, rec.Code)
	require.Len(t, session.delivered, 1)
	assert.Equal(t, domain.ImportFailed("acct-1", 2, "aggregator timeout"), session.delivered[0])
}

func TestPostEventRejections(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name       string
		body       string
		sessionErr error
		wantStatus int
		wantError  string
	}{
		{name: "malformed json", body: `{"type":`, wantStatus: http.StatusBadRequest, wantError: "invalid json"},
		{name: "unknown field", body: `{"type":"USER_FINISHED","extra":1}`, wantStatus: http.StatusBadRequest, wantError: "invalid json"},
		{name: "unknown type", body: `{"type":"NOPE"}`, wantStatus: http.StatusBadRequest, wantError: "unknown event"},
		{name: "missing account", body: `{"type":"ACCOUNT_LINKED"}`, wantStatus: http.StatusBadRequest, wantError: "requires an account id"},
		{name: "internal type", body: `{"type":"IMPORT_DONE","account_id":"a","attempt":1}`, wantStatus: http.StatusBadRequest, wantError: "internal"},
		{name: "missing attempt", body: `{"type":"IMPORT_FAILED","account_id":"a"}`, wantStatus: http.StatusBadRequest, wantError: "requires an attempt number"},
		{name: "closed session", body: `{"type":"USER_FINISHED"}`, sessionErr: domain.ErrSessionClosed, wantStatus: http.StatusConflict, wantError: "session closed"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			session := &fakeSession{err: tc.sessionErr}
			rec := do(t, newTestRouter(session, nil), http.MethodPost, "/events", tc.body)

			assert.Equal(t, tc.wantStatus, rec.Code)
			var payload map[string]string
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &payload))
			assert.Contains(t, payload["error"], tc.wantError)
		})
	}
}

func TestGetSnapshot(t *testing.T) {
	t.Parallel()

	session := &fakeSession{snapshot: domain.Snapshot{
		SessionID: "client:auth0|abc",
		States:    domain.RegionStates{Connection: "Connecting", Discovery: "Idle", Import: "Idle", Scoring: "Idle"},
		Linked:    2,
	}}
	rec := do(t, newTestRouter(session, nil), http.MethodGet, "/snapshot", "")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var got domain.Snapshot
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, session.snapshot.SessionID, got.SessionID)
	assert.Equal(t, 2, got.Linked)
	assert.Equal(t, "Connecting", got.States.Connection)
}

func TestHealthHeartbeat(t *testing.T) {
	t.Parallel()

	rec := do(t, newTestRouter(&fakeSession{}, nil), http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestPostWebhookStoresPayload(t *testing.T) {
	t.Parallel()

	queue := &fakeQueue{}
	body := `{"item_id":"acct-1","webhook_type":"transactions","webhook_code":"HISTORICAL_UPDATE","new_transactions":42}`
	rec := do(t, newTestRouter(&fakeSession{}, queue), http.MethodPost, "/webhooks", body)

	require.Equal(t, http.StatusAccepted, rec.Code)
	require.Len(t, queue.saved, 1)
	saved := queue.saved[0]
	assert.Equal(t, domain.AccountID("acct-1"), saved.AccountID)
	assert.Equal(t, domain.WebhookTypeTransactions, saved.Type)
	assert.Equal(t, domain.WebhookCodeHistoricalUpdate, saved.Code)
	assert.Equal(t, body, saved.Payload)

	var payload map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &payload))
	assert.Equal(t, true, payload["historical_update"])
}

func TestPostWebhookValidation(t *testing.T) {
	t.Parallel()

	rec := do(t, newTestRouter(&fakeSession{}, &fakeQueue{}), http.MethodPost, "/webhooks", `{"webhook_type":"TRANSACTIONS"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, newTestRouter(&fakeSession{}, &fakeQueue{err: errors.New("disk full")}), http.MethodPost, "/webhooks", `{"account_id":"a"}`)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestWebhookRouteAbsentWithoutQueue(t *testing.T) {
	t.Parallel()

	rec := do(t, newTestRouter(&fakeSession{}, nil), http.MethodPost, "/webhooks", `{"account_id":"a"}`)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestServeListenerShutsDownOnCancel(t *testing.T) {
	t.Parallel()

	listener, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() { errCh <- ServeListener(ctx, listener, newTestRouter(&fakeSession{}, nil)) }()

	resp, err := http.Get("http://" + listener.Addr().String() + "/health")
	require.NoError(t, err)
	_ = resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	cancel()
	select {
	case err := <-errCh:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not shut down")
	}
}
