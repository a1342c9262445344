package services

import (
	"context"

	"github.com/sahilchouksey/mentor-hub-api/database"
	"github.com/sahilchouksey/mentor-hub-api/model"
)

// AuditService records admin mutations.
type AuditService struct {
	*CRUDService[model.AdminAuditLog, *model.AdminAuditLog]
}

// NewAuditService creates a new audit service
func NewAuditService(repo database.Repository[model.AdminAuditLog]) *AuditService {
	return &AuditService{
		CRUDService: NewCRUDService[model.AdminAuditLog, *model.AdminAuditLog](repo, Resource[model.AdminAuditLog]{
			Name: "Audit log",
			Extras: func(records []model.AdminAuditLog) Stats {
				return Stats{"by_action": CountBy(records, func(a *model.AdminAuditLog) string { return a.Action })}
			},
		}),
	}
}

// Record stores one audit entry.
func (s *AuditService) Record(ctx context.Context, entry *model.AdminAuditLog) error {
	entry.ApplyDefaults()
	_, err := s.Insert(ctx, entry)
	return err
}
