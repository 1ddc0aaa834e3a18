// Package sqlite keeps the linked-account registry, the aggregator webhook
// queue and the import and scoring ledgers in one SQLite database.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/bnema/onboarding-coordinator/internal/domain"
	"github.com/bnema/onboarding-coordinator/internal/ports"
	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

const dsnOptions = "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)&_pragma=synchronous(NORMAL)"

type Store struct {
	db    *sql.DB
	clock ports.Clock
	// consumeMu serializes webhook consumption so one webhook is handed out once.
	consumeMu sync.Mutex
}

var (
	_ ports.WebhookLookup = (*Store)(nil)
	_ ports.AccountSource = (*Store)(nil)
	_ ports.Importer      = (*Store)(nil)
	_ ports.Scorer        = (*Store)(nil)
)

// Open creates the database file and schema if needed.
func Open(path string, clock ports.Clock) (*Store, error) {
	if clock == nil {
		clock = ports.SystemClock{}
	}
	if path == "" {
		return nil, errors.New("database path is empty")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, fmt.Errorf("create database directory: %w", err)
	}

	db, err := sql.Open("sqlite", path+dsnOptions)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	db.SetMaxOpenConns(4)
	db.SetMaxIdleConns(2)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	store := &Store{db: db, clock: clock}
	if err := store.initSchema(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("initialize schema: %w", err)
	}
	return store, nil
}

func (s *Store) initSchema() error {
	query := `
	CREATE TABLE IF NOT EXISTS linked_accounts (
		account_id TEXT PRIMARY KEY,
		owner_id TEXT NOT NULL,
		institution_id TEXT NOT NULL DEFAULT '',
		link_error TEXT NOT NULL DEFAULT '',
		created_at INTEGER NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_linked_accounts_owner ON linked_accounts(owner_id, created_at);

	CREATE TABLE IF NOT EXISTS webhooks (
		id TEXT PRIMARY KEY,
		account_id TEXT NOT NULL,
		type TEXT NOT NULL,
		code TEXT NOT NULL,
		payload TEXT NOT NULL DEFAULT '',
		received_at INTEGER NOT NULL,
		resolved_at INTEGER
	);
	CREATE INDEX IF NOT EXISTS idx_webhooks_unresolved ON webhooks(account_id, received_at) WHERE resolved_at IS NULL;

	CREATE TABLE IF NOT EXISTS imports (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		account_id TEXT NOT NULL,
		session_id TEXT NOT NULL,
		client_id TEXT NOT NULL,
		member_id TEXT NOT NULL,
		webhook_id TEXT NOT NULL DEFAULT '',
		attempt INTEGER NOT NULL,
		imported_at INTEGER NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_imports_account ON imports(account_id);

	CREATE TABLE IF NOT EXISTS scoring_requests (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		session_id TEXT NOT NULL,
		client_id TEXT NOT NULL,
		member_id TEXT NOT NULL,
		accounts_json TEXT NOT NULL,
		requested_at INTEGER NOT NULL
	);
	`
	if _, err := s.db.Exec(query); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	return nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// AddAccount registers or updates a linked account.
func (s *Store) AddAccount(ctx context.Context, account domain.LinkedAccount) error {
	if !account.ID.Valid() {
		return fmt.Errorf("add account: invalid account id %q", account.ID)
	}
	if account.OwnerID == "" {
		return fmt.Errorf("add account: %w: owner is empty", domain.ErrInvalidMemberID)
	}
	if account.CreatedAt.IsZero() {
		account.CreatedAt = s.clock.Now()
	}

	query := `
	INSERT INTO linked_accounts (account_id, owner_id, institution_id, link_error, created_at)
	VALUES (?, ?, ?, ?, ?)
	ON CONFLICT(account_id) DO UPDATE SET
		owner_id = excluded.owner_id,
		institution_id = excluded.institution_id,
		link_error = excluded.link_error`

	_, err := s.db.ExecContext(ctx, query,
		string(account.ID), string(account.OwnerID), account.InstitutionID, account.LinkError,
		account.CreatedAt.UnixMilli(),
	)
	if err != nil {
		return fmt.Errorf("upsert linked account: %w", err)
	}
	return nil
}

// ListByOwner returns the member's accounts in link order.
func (s *Store) ListByOwner(ctx context.Context, owner domain.MemberID) ([]domain.LinkedAccount, error) {
	query := `
		SELECT account_id, owner_id, institution_id, link_error, created_at
		FROM linked_accounts WHERE owner_id = ?
		ORDER BY created_at, rowid`

	rows, err := s.db.QueryContext(ctx, query, string(owner))
	if err != nil {
		return nil, fmt.Errorf("query linked accounts: %w", err)
	}
	defer rows.Close()

	var accounts []domain.LinkedAccount
	for rows.Next() {
		var (
			acct      domain.LinkedAccount
			id, ownID string
			createdAt int64
		)
		if err := rows.Scan(&id, &ownID, &acct.InstitutionID, &acct.LinkError, &createdAt); err != nil {
			return nil, fmt.Errorf("scan linked account: %w", err)
		}
		acct.ID = domain.AccountID(id)
		acct.OwnerID = domain.MemberID(ownID)
		acct.CreatedAt = time.UnixMilli(createdAt).UTC()
		accounts = append(accounts, acct)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate linked accounts: %w", err)
	}
	return accounts, nil
}

// SaveWebhook queues an aggregator webhook and returns it with its id and
// receive time filled in.
func (s *Store) SaveWebhook(ctx context.Context, webhook domain.Webhook) (domain.Webhook, error) {
	if !webhook.AccountID.Valid() {
		return domain.Webhook{}, fmt.Errorf("save webhook: invalid account id %q", webhook.AccountID)
	}
	if webhook.ID == "" {
		webhook.ID = uuid.NewString()
	}
	if webhook.ReceivedAt.IsZero() {
		webhook.ReceivedAt = s.clock.Now()
	}

	query := `
	INSERT INTO webhooks (id, account_id, type, code, payload, received_at)
	VALUES (?, ?, ?, ?, ?, ?)`
	_, err := s.db.ExecContext(ctx, query,
		webhook.ID, string(webhook.AccountID), webhook.Type, webhook.Code, webhook.Payload,
		webhook.ReceivedAt.UnixMilli(),
	)
	if err != nil {
		return domain.Webhook{}, fmt.Errorf("insert webhook: %w", err)
	}
	return webhook, nil
}

// FindReady returns the oldest unconsumed historical-update webhook for the
// account and marks it consumed. It returns nil when none has arrived yet.
func (s *Store) FindReady(ctx context.Context, id domain.AccountID) (*domain.Webhook, error) {
	s.consumeMu.Lock()
	defer s.consumeMu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin webhook lookup: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	query := `
		SELECT id, account_id, type, code, payload, received_at
		FROM webhooks
		WHERE account_id = ? AND resolved_at IS NULL AND code = ? AND type IN (?, ?)
		ORDER BY received_at, rowid
		LIMIT 1`

	var (
		webhook    domain.Webhook
		accountID  string
		receivedAt int64
	)
	err = tx.QueryRowContext(ctx, query,
		string(id), domain.WebhookCodeHistoricalUpdate,
		domain.WebhookTypeTransactions, domain.WebhookTypeInvestmentsTransactions,
	).Scan(&webhook.ID, &accountID, &webhook.Type, &webhook.Code, &webhook.Payload, &receivedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query ready webhook: %w", err)
	}

	resolvedAt := s.clock.Now()
	if _, err := tx.ExecContext(ctx, `UPDATE webhooks SET resolved_at = ? WHERE id = ?`, resolvedAt.UnixMilli(), webhook.ID); err != nil {
		return nil, fmt.Errorf("consume webhook: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit webhook lookup: %w", err)
	}

	webhook.AccountID = domain.AccountID(accountID)
	webhook.ReceivedAt = time.UnixMilli(receivedAt).UTC()
	webhook.ResolvedAt = resolvedAt
	return &webhook, nil
}

// Import records the account's import in the ledger. Unknown accounts fail.
func (s *Store) Import(ctx context.Context, id domain.AccountID, importCtx domain.ImportContext) error {
	var exists int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(1) FROM linked_accounts WHERE account_id = ?`, string(id)).Scan(&exists)
	if err != nil {
		return fmt.Errorf("check linked account: %w", err)
	}
	if exists == 0 {
		return fmt.Errorf("import account %s: %w", id, domain.ErrAccountNotFound)
	}

	query := `
	INSERT INTO imports (account_id, session_id, client_id, member_id, webhook_id, attempt, imported_at)
	VALUES (?, ?, ?, ?, ?, ?, ?)`
	_, err = s.db.ExecContext(ctx, query,
		string(id), string(importCtx.SessionID), string(importCtx.ClientID), string(importCtx.MemberID),
		importCtx.WebhookID, importCtx.Attempt, s.clock.Now().UnixMilli(),
	)
	if err != nil {
		return fmt.Errorf("insert import: %w", err)
	}
	return nil
}

// ImportCount reports how many imports were recorded for the account.
func (s *Store) ImportCount(ctx context.Context, id domain.AccountID) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(1) FROM imports WHERE account_id = ?`, string(id)).Scan(&n); err != nil {
		return 0, fmt.Errorf("count imports: %w", err)
	}
	return n, nil
}

// Score queues a scoring request for the imported accounts.
func (s *Store) Score(ctx context.Context, identity domain.SessionIdentity, imported []domain.AccountID) error {
	if len(imported) == 0 {
		return errors.New("score session: no imported accounts")
	}
	accounts, err := json.Marshal(imported)
	if err != nil {
		return fmt.Errorf("encode scored accounts: %w", err)
	}

	query := `
	INSERT INTO scoring_requests (session_id, client_id, member_id, accounts_json, requested_at)
	VALUES (?, ?, ?, ?, ?)`
	_, err = s.db.ExecContext(ctx, query,
		string(identity.SessionID), string(identity.Client.ClientID), string(identity.MemberID()),
		string(accounts), s.clock.Now().UnixMilli(),
	)
	if err != nil {
		return fmt.Errorf("insert scoring request: %w", err)
	}
	return nil
}

// ScoringRequests returns the account lists queued for scoring in a session.
func (s *Store) ScoringRequests(ctx context.Context, session domain.SessionID) ([][]domain.AccountID, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT accounts_json FROM scoring_requests WHERE session_id = ? ORDER BY id`, string(session))
	if err != nil {
		return nil, fmt.Errorf("query scoring requests: %w", err)
	}
	defer rows.Close()

	var out [][]domain.AccountID
	for rows.Next() {
		var raw string
		if err := rows.Scan(&raw); err != nil {
			return nil, fmt.Errorf("scan scoring request: %w", err)
		}
		var ids []domain.AccountID
		if err := json.Unmarshal([]byte(raw), &ids); err != nil {
			return nil, fmt.Errorf("decode scoring request: %w", err)
		}
		out = append(out, ids)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate scoring requests: %w", err)
	}
	return out, nil
}
