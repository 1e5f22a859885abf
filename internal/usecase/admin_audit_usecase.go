package usecase

import (
	"context"
	"net/http"

	"github.com/andikadwp/buyit/internal/domain/model"
	repo "github.com/andikadwp/buyit/internal/repository"
)

// 管理画面の監査ログ閲覧
type AdminAuditUsecase struct {
	auditRepo repo.AuditLogRepository
}

func NewAdminAuditUsecase(auditRepo repo.AuditLogRepository) *AdminAuditUsecase {
	return &AdminAuditUsecase{auditRepo: auditRepo}
}

type AuditLogListOutput struct {
	Items []model.AuditLog `json:"items"`
	Total int64            `json:"total"`
	Page  int              `json:"page"`
	Limit int              `json:"limit"`
}

func (u *AdminAuditUsecase) List(ctx context.Context, f repo.AuditLogFilter) (AuditLogListOutput, error) {
	if f.Page < 1 {
		return AuditLogListOutput{}, NewHTTPError(http.StatusBadRequest, "invalid page")
	}
	if f.Limit < 1 || f.Limit > 100 {
		return AuditLogListOutput{}, NewHTTPError(http.StatusBadRequest, "invalid limit")
	}

	items, total, err := u.auditRepo.List(ctx, f)
	if err != nil {
		return AuditLogListOutput{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	return AuditLogListOutput{
		Items: items,
		Total: total,
		Page:  f.Page,
		Limit: f.Limit,
	}, nil
}
