package service

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/carddemo/terminal/internal/core/domain"
	"github.com/carddemo/terminal/internal/core/ports"
)

type auditService struct {
	repo ports.AuditRepository
	log  zerolog.Logger
}

// NewAuditService returns an AuditService writing to repo.
func NewAuditService(repo ports.AuditRepository, log zerolog.Logger) ports.AuditService {
	return &auditService{repo: repo, log: log}
}

// Process persists one audit event.
func (s *auditService) Process(ctx context.Context, event domain.AuditEvent) error {
	if event.UserID == "" || event.Action == "" {
		return fmt.Errorf("process audit event: %w: user and action are required", domain.ErrInvalidInput)
	}

	if err := s.repo.Insert(ctx, &event); err != nil {
		return fmt.Errorf("process audit event: %w", err)
	}

	s.log.Debug().
		Str("user_id", event.UserID).
		Str("action", string(event.Action)).
		Str("reference", event.Reference).
		Msg("audit event stored")
	return nil
}
