package repository

import (
	"context"
	"time"

	"github.com/andikadwp/buyit/internal/domain/model"
)

type AdminOrderListFilter struct {
	Page       int
	Limit      int
	Status     string
	CustomerID string
	From       *time.Time
	To         *time.Time
}

type OrderRepository interface {
	FindByID(ctx context.Context, orderID int64) (model.Order, error)
	ListByCustomerID(ctx context.Context, customerID string, page int, limit int) ([]model.Order, int64, error)
	Create(ctx context.Context, order model.Order) (int64, error)
	UpdateStatus(ctx context.Context, orderID int64, status model.OrderStatus) error

	//管理者用の注文一覧
	ListAdmin(ctx context.Context, f AdminOrderListFilter) ([]model.Order, int64, error)

	//放置されたPENDING注文の掃除用
	ListStalePending(ctx context.Context, olderThan time.Time, limit int) ([]model.Order, error)
}
