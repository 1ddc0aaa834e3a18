package application

import (
	"context"
	"fmt"
	"time"

	"github.com/bnema/onboarding-coordinator/internal/domain"
	"github.com/bnema/onboarding-coordinator/internal/logging"
	"github.com/bnema/onboarding-coordinator/internal/ports"
)

// BootstrapService resolves the identity a session runs under. Every
// failure here is session-fatal.
type BootstrapService struct {
	clients  ports.ClientRegistry
	profiles ports.IdentityProvider
	reporter *Reporter
	clock    ports.Clock
	logger   *logging.Logger
}

func NewBootstrapService(clients ports.ClientRegistry, profiles ports.IdentityProvider, reporter *Reporter, clock ports.Clock, logger *logging.Logger) *BootstrapService {
	if clock == nil {
		clock = ports.SystemClock{}
	}
	if logger == nil {
		logger = logging.NopLogger()
	}

	return &BootstrapService{
		clients:  clients,
		profiles: profiles,
		reporter: reporter,
		clock:    clock,
		logger:   logger.WithComponent("bootstrap"),
	}
}

// Start validates the raw identifiers, loads the client configuration and
// the member profile. On failure it publishes a failure report and returns
// a *domain.FatalError.
func (s *BootstrapService) Start(ctx context.Context, rawClientID, rawMemberID string) (domain.SessionIdentity, error) {
	startedAt := s.clock.Now()

	identity, err := s.resolve(ctx, rawClientID, rawMemberID, startedAt)
	if err != nil {
		s.logger.Error("session bootstrap failed", "client_id", rawClientID, "member_id", rawMemberID, "error", err.Error())
		s.reportFailure(ctx, rawClientID, rawMemberID, err, startedAt)
		return domain.SessionIdentity{}, domain.Fatal("bootstrap", err)
	}

	s.logger.Info("session identity resolved",
		"session_id", string(identity.SessionID),
		"partner", identity.Client.PartnerName,
		"profile_fetch_ms", identity.ProfileFetchTime.Milliseconds(),
	)
	return identity, nil
}

func (s *BootstrapService) resolve(ctx context.Context, rawClientID, rawMemberID string, startedAt time.Time) (domain.SessionIdentity, error) {
	clientID, err := domain.ParseClientID(rawClientID)
	if err != nil {
		return domain.SessionIdentity{}, err
	}
	memberID, err := domain.ParseMemberID(rawMemberID)
	if err != nil {
		return domain.SessionIdentity{}, err
	}

	client, err := s.clients.Lookup(ctx, clientID)
	if err != nil {
		return domain.SessionIdentity{}, fmt.Errorf("lookup client config: %w", err)
	}
	if !client.Active() {
		return domain.SessionIdentity{}, fmt.Errorf("lookup client config: %w: client %s is %q", domain.ErrClientNotFound, clientID, client.Status)
	}

	fetchStart := s.clock.Now()
	profile, err := s.profiles.Lookup(ctx, client, memberID)
	if err != nil {
		return domain.SessionIdentity{}, fmt.Errorf("lookup member profile: %w", err)
	}
	if profile.UserID == "" {
		profile.UserID = memberID
	}

	return domain.SessionIdentity{
		SessionID:        domain.NewSessionID(clientID, memberID),
		Client:           client,
		Profile:          profile,
		ProfileFetchTime: s.clock.Now().Sub(fetchStart),
		StartedAt:        startedAt,
	}, nil
}

func (s *BootstrapService) reportFailure(ctx context.Context, rawClientID, rawMemberID string, cause error, startedAt time.Time) {
	if s.reporter == nil {
		return
	}

	report := s.reporter.BootstrapFailure(domain.ClientID(rawClientID), domain.MemberID(rawMemberID), domain.Fatal("bootstrap", cause), startedAt, s.clock.Now())
	sendCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), reportTimeout)
	defer cancel()
	if err := s.reporter.Publish(sendCtx, report); err != nil {
		s.logger.Warn("bootstrap failure report not delivered", "error", err.Error())
	}
}
