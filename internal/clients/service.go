package clients

import (
	"context"
	"strings"

	"assistec_backend/platform/logger"
	"assistec_backend/platform/phone"

	"github.com/google/uuid"
)

// Contact carries the contact fields extracted from an appointment.
type Contact struct {
	Name    string
	Phone   string
	Email   string
	Address string
}

// Service provides the client upsert collaborator used by the order
// lifecycle converter. Idempotent by normalized phone.
type Service struct {
	repo *Repository
	log  *logger.Logger
}

// NewService creates a new clients service.
func NewService(repo *Repository, log *logger.Logger) *Service {
	return &Service{repo: repo, log: log}
}

// CreateOrUpdate upserts a client from contact fields and returns its id.
// A nil id with a nil error is returned when the contact has no usable
// phone; the caller leaves the order's client reference empty.
func (s *Service) CreateOrUpdate(ctx context.Context, contact Contact) (*uuid.UUID, error) {
	normalized := phone.NormalizeE164(contact.Phone)
	if normalized == "" {
		return nil, nil
	}

	client := Client{
		ID:    uuid.New(),
		Name:  strings.TrimSpace(contact.Name),
		Phone: normalized,
	}
	if email := strings.TrimSpace(contact.Email); email != "" {
		client.Email = &email
	}
	if address := strings.TrimSpace(contact.Address); address != "" {
		client.Address = &address
	}

	id, err := s.repo.Upsert(ctx, client)
	if err != nil {
		return nil, err
	}
	return &id, nil
}
