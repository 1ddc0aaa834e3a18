package toml

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/bnema/onboarding-coordinator/internal/domain"
	"github.com/bnema/onboarding-coordinator/internal/ports"
	"github.com/spf13/viper"
)

const (
	registryPathKey    = "registry.path"
	registryConfigFile = "clients.toml"
)

// ClientRepository keeps tenant client configurations in clients.toml.
type ClientRepository struct {
	path string
	mu   *sync.RWMutex
}

var _ ports.ClientRegistry = (*ClientRepository)(nil)

func NewClientRepository(cfg *viper.Viper) (*ClientRepository, error) {
	path, err := resolvePath(cfg, registryPathKey, registryConfigFile)
	if err != nil {
		return nil, err
	}
	return &ClientRepository{path: path, mu: lockForPath(path)}, nil
}

func (r *ClientRepository) Path() string {
	return r.path
}

func (r *ClientRepository) Lookup(ctx context.Context, id domain.ClientID) (domain.ClientConfig, error) {
	if err := ctx.Err(); err != nil {
		return domain.ClientConfig{}, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	file, err := r.read()
	if err != nil {
		return domain.ClientConfig{}, err
	}
	for _, entry := range file.Clients {
		if strings.EqualFold(entry.ClientID, string(id)) {
			return fromClientSchema(entry), nil
		}
	}
	return domain.ClientConfig{}, fmt.Errorf("%w: %s", domain.ErrClientNotFound, id)
}

// Save inserts or replaces the client with the same id.
func (r *ClientRepository) Save(ctx context.Context, client domain.ClientConfig) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if _, err := domain.ParseClientID(string(client.ClientID)); err != nil {
		return err
	}
	if ref := client.IdentitySecretRef; ref != "" {
		if err := ref.Validate(); err != nil {
			return err
		}
		if ref.Kind() != domain.SecretKindIdentity {
			return fmt.Errorf("%w: client %s needs an identity secret, got %s", domain.ErrInvalidSecretRef, client.ClientID, ref)
		}
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	file, err := r.read()
	if err != nil {
		return err
	}

	encoded := toClientSchema(client)
	updated := false
	for i := range file.Clients {
		if strings.EqualFold(file.Clients[i].ClientID, encoded.ClientID) {
			file.Clients[i] = encoded
			updated = true
			break
		}
	}
	if !updated {
		file.Clients = append(file.Clients, encoded)
	}

	if err := ctx.Err(); err != nil {
		return err
	}
	file.applyDefaults()
	return writeTOML(r.path, "clients", file)
}

func (r *ClientRepository) List(ctx context.Context) ([]domain.ClientConfig, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	file, err := r.read()
	if err != nil {
		return nil, err
	}
	clients := make([]domain.ClientConfig, 0, len(file.Clients))
	for _, entry := range file.Clients {
		clients = append(clients, fromClientSchema(entry))
	}
	return clients, nil
}

func (r *ClientRepository) read() (clientsFile, error) {
	var file clientsFile
	if err := readTOML(r.path, "clients", &file); err != nil {
		return clientsFile{}, err
	}
	if err := file.validateVersion(); err != nil {
		return clientsFile{}, err
	}
	file.applyDefaults()
	return file, nil
}

func toClientSchema(client domain.ClientConfig) clientSchema {
	status := client.Status
	if status == "" {
		status = domain.ClientStatusActive
	}
	return clientSchema{
		ClientID:          strings.ToLower(string(client.ClientID)),
		PartnerName:       client.PartnerName,
		PartnerBrand:      client.PartnerBrand,
		TenantDomain:      client.TenantDomain,
		TokenAudience:     client.TokenAudience,
		Status:            status,
		IdentityClientID:  client.IdentityClientID,
		IdentitySecretRef: string(client.IdentitySecretRef),
	}
}

func fromClientSchema(entry clientSchema) domain.ClientConfig {
	return domain.ClientConfig{
		ClientID:          domain.ClientID(entry.ClientID),
		PartnerName:       entry.PartnerName,
		PartnerBrand:      entry.PartnerBrand,
		TenantDomain:      entry.TenantDomain,
		TokenAudience:     entry.TokenAudience,
		Status:            entry.Status,
		IdentityClientID:  entry.IdentityClientID,
		IdentitySecretRef: domain.SecretRef(entry.IdentitySecretRef),
	}
}
