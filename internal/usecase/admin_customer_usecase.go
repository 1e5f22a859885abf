package usecase

import (
	"context"
	"net/http"

	"github.com/andikadwp/buyit/internal/domain/model"
	repo "github.com/andikadwp/buyit/internal/repository"
)

// 管理画面の顧客一覧
type AdminCustomerUsecase struct {
	customers repo.CustomerRepository
}

func NewAdminCustomerUsecase(customers repo.CustomerRepository) *AdminCustomerUsecase {
	return &AdminCustomerUsecase{customers: customers}
}

type CustomerListOutput struct {
	Items []model.Customer `json:"items"`
	Total int64            `json:"total"`
	Page  int              `json:"page"`
	Limit int              `json:"limit"`
}

func (u *AdminCustomerUsecase) List(ctx context.Context, page, limit int) (CustomerListOutput, error) {
	if page < 1 {
		return CustomerListOutput{}, NewHTTPError(http.StatusBadRequest, "invalid page")
	}
	if limit < 1 || limit > 100 {
		return CustomerListOutput{}, NewHTTPError(http.StatusBadRequest, "invalid limit")
	}

	items, total, err := u.customers.List(ctx, page, limit)
	if err != nil {
		return CustomerListOutput{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	return CustomerListOutput{
		Items: items,
		Total: total,
		Page:  page,
		Limit: limit,
	}, nil
}
