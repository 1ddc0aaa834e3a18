package identity

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/bnema/onboarding-coordinator/internal/domain"
	"github.com/bnema/onboarding-coordinator/internal/ports"
)

const (
	clientCredentialsGrant = "client_credentials"
	tokenPath              = "/oauth/token"
	usersPath              = "/api/v2/users/"
	tokenExpirySkew        = 30 * time.Second
)

// Provider looks member profiles up in the tenant's identity management API.
type Provider struct {
	// BaseURL overrides https://<tenant_domain> for every client.
	BaseURL        string
	HTTPClient     *http.Client
	RequestTimeout time.Duration
	Secrets        ports.SecretStore

	now    func() time.Time
	mu     sync.Mutex
	tokens map[domain.ClientID]cachedToken
}

var _ ports.IdentityProvider = (*Provider)(nil)

type cachedToken struct {
	value     string
	expiresAt time.Time
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int64  `json:"expires_in"`
}

type userResponse struct {
	UserID      string `json:"user_id"`
	Email       string `json:"email"`
	Name        string `json:"name"`
	CreatedAt   string `json:"created_at"`
	AppMetadata struct {
		Onboarding struct {
			IsOnboarded bool `json:"is_onboarded"`
		} `json:"onboarding"`
	} `json:"app_metadata"`
}

func NewProvider(baseURL string, secrets ports.SecretStore, timeout time.Duration) *Provider {
	return &Provider{
		BaseURL:        strings.TrimRight(baseURL, "/"),
		RequestTimeout: timeout,
		Secrets:        secrets,
	}
}

func (p *Provider) Lookup(ctx context.Context, client domain.ClientConfig, id domain.MemberID) (domain.Profile, error) {
	baseURL, err := p.baseURL(client)
	if err != nil {
		return domain.Profile{}, err
	}

	token, err := p.token(ctx, client, baseURL)
	if err != nil {
		return domain.Profile{}, err
	}

	endpoint, err := buildAPIURL(baseURL, usersPath+url.PathEscape(string(id)))
	if err != nil {
		return domain.Profile{}, err
	}

	requestCtx, cancel := requestContext(ctx, p.RequestTimeout)
	defer cancel()
	req, err := http.NewRequestWithContext(requestCtx, http.MethodGet, endpoint, nil)
	if err != nil {
		return domain.Profile{}, fmt.Errorf("create profile request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Accept", "application/json")

	resp, err := p.httpClient().Do(req)
	if err != nil {
		return domain.Profile{}, fmt.Errorf("request profile: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return domain.Profile{}, fmt.Errorf("%w: %s", domain.ErrProfileNotFound, id)
	case resp.StatusCode == http.StatusUnauthorized:
		p.forget(client.ClientID)
		return domain.Profile{}, fmt.Errorf("request profile: %s", decodeAPIError(resp))
	case !successful(resp):
		return domain.Profile{}, fmt.Errorf("request profile: %s", decodeAPIError(resp))
	}

	var payload userResponse
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxResponseBytes)).Decode(&payload); err != nil {
		return domain.Profile{}, fmt.Errorf("decode profile response: %w", err)
	}

	profile := domain.Profile{
		UserID:    id,
		Email:     payload.Email,
		Name:      payload.Name,
		Onboarded: payload.AppMetadata.Onboarding.IsOnboarded,
	}
	if payload.UserID != "" {
		profile.UserID = domain.MemberID(payload.UserID)
	}
	if created, err := time.Parse(time.RFC3339Nano, payload.CreatedAt); err == nil {
		profile.CreatedAt = created
	}
	return profile, nil
}

func (p *Provider) token(ctx context.Context, client domain.ClientConfig, baseURL string) (string, error) {
	now := p.clock()

	p.mu.Lock()
	cached, ok := p.tokens[client.ClientID]
	p.mu.Unlock()
	if ok && now.Before(cached.expiresAt) {
		return cached.value, nil
	}

	if client.IdentityClientID == "" {
		return "", errors.New("identity client id is required")
	}
	if p.Secrets == nil {
		return "", errors.New("secret store is required")
	}
	secret, err := p.Secrets.Get(ctx, client.IdentitySecret())
	if err != nil {
		return "", fmt.Errorf("resolve identity client secret: %w", err)
	}

	endpoint, err := buildAPIURL(baseURL, tokenPath)
	if err != nil {
		return "", err
	}

	audience := client.TokenAudience
	if audience == "" {
		audience = baseURL + "/api/v2/"
	}
	values := url.Values{}
	values.Set("grant_type", clientCredentialsGrant)
	values.Set("client_id", client.IdentityClientID)
	values.Set("client_secret", secret)
	values.Set("audience", audience)

	requestCtx, cancel := requestContext(ctx, p.RequestTimeout)
	defer cancel()
	req, err := http.NewRequestWithContext(requestCtx, http.MethodPost, endpoint, strings.NewReader(values.Encode()))
	if err != nil {
		return "", fmt.Errorf("create token request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := p.httpClient().Do(req)
	if err != nil {
		return "", fmt.Errorf("request token: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if !successful(resp) {
		return "", fmt.Errorf("request token: %s", decodeAPIError(resp))
	}

	var payload tokenResponse
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxResponseBytes)).Decode(&payload); err != nil {
		return "", fmt.Errorf("decode token response: %w", err)
	}
	if payload.AccessToken == "" {
		return "", errors.New("token response missing access token")
	}

	if payload.ExpiresIn > 0 {
		expiresAt := now.Add(time.Duration(payload.ExpiresIn)*time.Second - tokenExpirySkew)
		p.mu.Lock()
		if p.tokens == nil {
			p.tokens = make(map[domain.ClientID]cachedToken)
		}
		p.tokens[client.ClientID] = cachedToken{value: payload.AccessToken, expiresAt: expiresAt}
		p.mu.Unlock()
	}
	return payload.AccessToken, nil
}

func (p *Provider) forget(id domain.ClientID) {
	p.mu.Lock()
	delete(p.tokens, id)
	p.mu.Unlock()
}

func (p *Provider) baseURL(client domain.ClientConfig) (string, error) {
	if p.BaseURL != "" {
		return p.BaseURL, nil
	}
	tenant := strings.TrimSpace(client.TenantDomain)
	if tenant == "" {
		return "", fmt.Errorf("client %s has no tenant domain", client.ClientID)
	}
	if strings.Contains(tenant, "://") {
		return strings.TrimRight(tenant, "/"), nil
	}
	return "https://" + tenant, nil
}

func (p *Provider) httpClient() *http.Client {
	if p.HTTPClient != nil {
		return p.HTTPClient
	}
	return http.DefaultClient
}

func (p *Provider) clock() time.Time {
	if p.now != nil {
		return p.now()
	}
	return time.Now()
}
