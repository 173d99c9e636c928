package crm

import (
	"context"

	"github.com/crm/backend/internal/domain/crm"
	"github.com/crm/backend/internal/domain/shared"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ClientService handles client lifecycle operations
type ClientService struct {
	clientRepo crm.ClientRepository
	logger     *zap.Logger
}

// NewClientService creates a new ClientService
func NewClientService(clientRepo crm.ClientRepository, logger *zap.Logger) *ClientService {
	return &ClientService{
		clientRepo: clientRepo,
		logger:     logger,
	}
}

// CreateClient registers a new client as a lead
func (s *ClientService) CreateClient(ctx context.Context, tenantID uuid.UUID, name, email, phone, taxID string) (*crm.Client, error) {
	client, err := crm.NewClient(tenantID, name, email, phone, taxID)
	if err != nil {
		return nil, err
	}

	if err := s.clientRepo.Save(ctx, client); err != nil {
		return nil, err
	}

	s.logger.Info("client created",
		zap.String("client_id", client.ID.String()),
		zap.String("tenant_id", tenantID.String()),
	)

	return client, nil
}

// GetClient returns one client by ID
func (s *ClientService) GetClient(ctx context.Context, tenantID, id uuid.UUID) (*crm.Client, error) {
	return s.clientRepo.FindByID(ctx, tenantID, id)
}

// ListClients returns a page of clients for the tenant
func (s *ClientService) ListClients(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) (shared.Paginated[crm.Client], error) {
	clients, err := s.clientRepo.FindAll(ctx, tenantID, filter)
	if err != nil {
		return shared.Paginated[crm.Client]{}, err
	}

	total, err := s.clientRepo.Count(ctx, tenantID, filter)
	if err != nil {
		return shared.Paginated[crm.Client]{}, err
	}

	return shared.NewPaginated(clients, total, filter.Page, filter.PageSize), nil
}

// UpdateClient updates a client's contact information
func (s *ClientService) UpdateClient(ctx context.Context, tenantID, id uuid.UUID, name, email, phone, taxID string) (*crm.Client, error) {
	client, err := s.clientRepo.FindByID(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}

	if err := client.Update(name, email, phone, taxID); err != nil {
		return nil, err
	}

	if err := s.clientRepo.Save(ctx, client); err != nil {
		return nil, err
	}

	return client, nil
}

// ChangeClientStatus moves a client through its lifecycle
func (s *ClientService) ChangeClientStatus(ctx context.Context, tenantID, id uuid.UUID, status crm.ClientStatus) (*crm.Client, error) {
	client, err := s.clientRepo.FindByID(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}

	if err := client.ChangeStatus(status); err != nil {
		return nil, err
	}

	if err := s.clientRepo.Save(ctx, client); err != nil {
		return nil, err
	}

	return client, nil
}

// SetClientRiskLevel stores a freshly computed risk classification on the
// client record
func (s *ClientService) SetClientRiskLevel(ctx context.Context, tenantID, id uuid.UUID, level crm.RiskLevel) error {
	client, err := s.clientRepo.FindByID(ctx, tenantID, id)
	if err != nil {
		return err
	}

	if err := client.SetRiskLevel(level); err != nil {
		return err
	}

	return s.clientRepo.Save(ctx, client)
}

// DeleteClient removes a client
func (s *ClientService) DeleteClient(ctx context.Context, tenantID, id uuid.UUID) error {
	if _, err := s.clientRepo.FindByID(ctx, tenantID, id); err != nil {
		return err
	}
	return s.clientRepo.Delete(ctx, tenantID, id)
}
