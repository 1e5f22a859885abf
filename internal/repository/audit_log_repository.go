package repository

import (
	"context"

	"github.com/andikadwp/buyit/internal/domain/model"
)

type AuditLogFilter struct {
	Page         int
	Limit        int
	Action       string
	ResourceType string
}

type AuditLogRepository interface {
	Create(ctx context.Context, log model.AuditLog) error
	List(ctx context.Context, f AuditLogFilter) ([]model.AuditLog, int64, error)
}
