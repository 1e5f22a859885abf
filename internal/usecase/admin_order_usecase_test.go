package usecase_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/andikadwp/buyit/internal/domain/model"
	repo "github.com/andikadwp/buyit/internal/repository"
	"github.com/andikadwp/buyit/internal/usecase"
)

type AuditRepoMock struct{ mock.Mock }

func (m *AuditRepoMock) Create(ctx context.Context, log model.AuditLog) error {
	args := m.Called(ctx, log)
	return args.Error(0)
}

func (m *AuditRepoMock) List(ctx context.Context, f repo.AuditLogFilter) ([]model.AuditLog, int64, error) {
	args := m.Called(ctx, f)
	logs, _ := args.Get(0).([]model.AuditLog)
	return logs, args.Get(1).(int64), args.Error(2)
}

const adminID = "6ba7b810-9dad-11d1-80b4-00c04fd430c8"

// =====================
// List tests
// =====================

func TestAdminOrderUsecase_List_InvalidPage(t *testing.T) {
	tx := new(TxManagerMock)
	audit := new(AuditRepoMock)

	uc := usecase.NewAdminOrderUsecase(tx, audit)

	outs, err := uc.List(context.Background(), repo.AdminOrderListFilter{Page: 0, Limit: 20})
	assert.Equal(t, 0, len(outs))
	assertErrContains(t, err, "invalid page")
}

func TestAdminOrderUsecase_List_InvalidLimit(t *testing.T) {
	tx := new(TxManagerMock)
	audit := new(AuditRepoMock)

	uc := usecase.NewAdminOrderUsecase(tx, audit)

	outs, err := uc.List(context.Background(), repo.AdminOrderListFilter{Page: 1, Limit: 0})
	assert.Equal(t, 0, len(outs))
	assertErrContains(t, err, "invalid limit")
}

func TestAdminOrderUsecase_List_Success_CallsItemsPerOrder(t *testing.T) {
	ctx := context.Background()

	tx := new(TxManagerMock)
	audit := new(AuditRepoMock)

	ordersRepo := new(OrderRepoMock)
	itemsRepo := new(OrderItemRepoMock)

	tx.Repos = &TxReposMock{orders: ordersRepo, orderItems: itemsRepo}
	tx.On("WithinTx", mock.Anything).Return(nil)

	f := repo.AdminOrderListFilter{Page: 1, Limit: 20}

	orders := []model.Order{
		{ID: 10, Status: model.OrderStatusPending},
		{ID: 11, Status: model.OrderStatusPaid},
	}

	ordersRepo.On("ListAdmin", mock.Anything, f).Return(orders, int64(2), nil)
	itemsRepo.On("ListByOrderID", mock.Anything, int64(10)).Return([]model.OrderItem{}, nil)
	itemsRepo.On("ListByOrderID", mock.Anything, int64(11)).Return([]model.OrderItem{}, nil)

	uc := usecase.NewAdminOrderUsecase(tx, audit)

	outs, err := uc.List(ctx, f)
	assert.NoError(t, err)
	assert.Equal(t, 2, len(outs))

	tx.AssertExpectations(t)
	ordersRepo.AssertExpectations(t)
	itemsRepo.AssertExpectations(t)
}

// =====================
// UpdateStatus tests
// =====================

func TestAdminOrderUsecase_UpdateStatus_UnauthorizedActor(t *testing.T) {
	tx := new(TxManagerMock)
	audit := new(AuditRepoMock)
	uc := usecase.NewAdminOrderUsecase(tx, audit)

	err := uc.UpdateStatus(context.Background(), "", 1, usecase.AdminUpdateOrderStatusInput{Status: "PAID"})
	assertErrContains(t, err, "unauthorized")
}

func TestAdminOrderUsecase_UpdateStatus_InvalidOrderID(t *testing.T) {
	tx := new(TxManagerMock)
	audit := new(AuditRepoMock)
	uc := usecase.NewAdminOrderUsecase(tx, audit)

	err := uc.UpdateStatus(context.Background(), adminID, 0, usecase.AdminUpdateOrderStatusInput{Status: "PAID"})
	assertErrContains(t, err, "invalid id")
}

func TestAdminOrderUsecase_UpdateStatus_InvalidStatus(t *testing.T) {
	tx := new(TxManagerMock)
	audit := new(AuditRepoMock)
	uc := usecase.NewAdminOrderUsecase(tx, audit)

	err := uc.UpdateStatus(context.Background(), adminID, 1, usecase.AdminUpdateOrderStatusInput{Status: "XXX"})
	assertErrContains(t, err, "invalid status")
}

func TestAdminOrderUsecase_UpdateStatus_NotFound(t *testing.T) {
	ctx := context.Background()

	tx := new(TxManagerMock)
	audit := new(AuditRepoMock)

	ordersRepo := new(OrderRepoMock)

	tx.Repos = &TxReposMock{orders: ordersRepo}
	tx.On("WithinTx", mock.Anything).Return(nil)

	orderID := int64(99)

	ordersRepo.On("FindByID", mock.Anything, orderID).Return(model.Order{}, repo.ErrNotFound)

	uc := usecase.NewAdminOrderUsecase(tx, audit)

	err := uc.UpdateStatus(ctx, adminID, orderID, usecase.AdminUpdateOrderStatusInput{Status: "PAID"})
	assertErrContains(t, err, "not found")

	ordersRepo.AssertExpectations(t)
}

func TestAdminOrderUsecase_UpdateStatus_SameStatus_NoOp(t *testing.T) {
	ctx := context.Background()

	tx := new(TxManagerMock)
	audit := new(AuditRepoMock)

	ordersRepo := new(OrderRepoMock)

	tx.Repos = &TxReposMock{orders: ordersRepo}
	tx.On("WithinTx", mock.Anything).Return(nil)

	orderID := int64(1)

	ordersRepo.On("FindByID", mock.Anything, orderID).Return(model.Order{
		ID:     orderID,
		Status: model.OrderStatusPaid,
	}, nil)

	uc := usecase.NewAdminOrderUsecase(tx, audit)

	err := uc.UpdateStatus(ctx, adminID, orderID, usecase.AdminUpdateOrderStatusInput{Status: "PAID"})
	assert.NoError(t, err)

	ordersRepo.AssertNotCalled(t, "UpdateStatus", mock.Anything, mock.Anything, mock.Anything)
	audit.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

// 終端ステータスの注文は動かせない
func TestAdminOrderUsecase_UpdateStatus_TerminalGuard(t *testing.T) {
	for _, terminal := range []model.OrderStatus{model.OrderStatusCanceled, model.OrderStatusDelivered} {
		tx := new(TxManagerMock)
		audit := new(AuditRepoMock)
		ordersRepo := new(OrderRepoMock)

		tx.Repos = &TxReposMock{orders: ordersRepo}
		tx.On("WithinTx", mock.Anything).Return(nil)

		ordersRepo.On("FindByID", mock.Anything, int64(1)).Return(model.Order{
			ID:     1,
			Status: terminal,
		}, nil)

		uc := usecase.NewAdminOrderUsecase(tx, audit)

		err := uc.UpdateStatus(context.Background(), adminID, 1, usecase.AdminUpdateOrderStatusInput{Status: "PAID"})
		assertErrContains(t, err, "terminal")
	}
}

// 遷移表に無い遷移は拒否（PENDINGからSHIPPEDへ飛べない）
func TestAdminOrderUsecase_UpdateStatus_IllegalTransition(t *testing.T) {
	ctx := context.Background()

	tx := new(TxManagerMock)
	audit := new(AuditRepoMock)
	ordersRepo := new(OrderRepoMock)

	tx.Repos = &TxReposMock{orders: ordersRepo}
	tx.On("WithinTx", mock.Anything).Return(nil)

	ordersRepo.On("FindByID", mock.Anything, int64(1)).Return(model.Order{
		ID:     1,
		Status: model.OrderStatusPending,
	}, nil)

	uc := usecase.NewAdminOrderUsecase(tx, audit)

	err := uc.UpdateStatus(ctx, adminID, 1, usecase.AdminUpdateOrderStatusInput{Status: "SHIPPED"})
	assertErrContains(t, err, "invalid status transition")
	ordersRepo.AssertNotCalled(t, "UpdateStatus", mock.Anything, mock.Anything, mock.Anything)
}

func TestAdminOrderUsecase_UpdateStatus_PaidToProcessing_Audits(t *testing.T) {
	ctx := context.Background()

	tx := new(TxManagerMock)
	audit := new(AuditRepoMock)
	ordersRepo := new(OrderRepoMock)

	tx.Repos = &TxReposMock{orders: ordersRepo}
	tx.On("WithinTx", mock.Anything).Return(nil)

	ordersRepo.On("FindByID", mock.Anything, int64(1)).Return(model.Order{
		ID:     1,
		Status: model.OrderStatusPaid,
	}, nil)
	ordersRepo.On("UpdateStatus", mock.Anything, int64(1), model.OrderStatusProcessing).Return(nil)

	audit.On("Create", mock.Anything, mock.MatchedBy(func(l model.AuditLog) bool {
		return l.ActorID == adminID &&
			l.Action == model.AuditActionUpdateOrderStatus &&
			l.ResourceID == 1
	})).Return(nil)

	uc := usecase.NewAdminOrderUsecase(tx, audit)

	err := uc.UpdateStatus(ctx, adminID, 1, usecase.AdminUpdateOrderStatusInput{Status: "PROCESSING"})
	assert.NoError(t, err)

	ordersRepo.AssertExpectations(t)
	audit.AssertExpectations(t)
}

// PAID -> CANCELED は在庫を戻す
func TestAdminOrderUsecase_UpdateStatus_CancelPaid_RestoresStock(t *testing.T) {
	ctx := context.Background()

	tx := new(TxManagerMock)
	audit := new(AuditRepoMock)
	ordersRepo := new(OrderRepoMock)
	itemsRepo := new(OrderItemRepoMock)
	invRepo := new(InventoryRepoMock)

	tx.Repos = &TxReposMock{orders: ordersRepo, orderItems: itemsRepo, inventory: invRepo}
	tx.On("WithinTx", mock.Anything).Return(nil)

	ordersRepo.On("FindByID", mock.Anything, int64(1)).Return(model.Order{
		ID:     1,
		Status: model.OrderStatusPaid,
	}, nil)
	itemsRepo.On("ListByOrderID", mock.Anything, int64(1)).Return([]model.OrderItem{
		{ProductID: 5, Quantity: 2},
		{ProductID: 6, Quantity: 1},
	}, nil)
	invRepo.On("IncreaseStock", mock.Anything, int64(5), int64(2)).Return(nil)
	invRepo.On("IncreaseStock", mock.Anything, int64(6), int64(1)).Return(nil)
	ordersRepo.On("UpdateStatus", mock.Anything, int64(1), model.OrderStatusCanceled).Return(nil)
	audit.On("Create", mock.Anything, mock.Anything).Return(nil)

	uc := usecase.NewAdminOrderUsecase(tx, audit)

	err := uc.UpdateStatus(ctx, adminID, 1, usecase.AdminUpdateOrderStatusInput{Status: "CANCELED"})
	assert.NoError(t, err)

	invRepo.AssertExpectations(t)
	ordersRepo.AssertExpectations(t)
}

// PENDING -> CANCELED は在庫を引いていないので戻さない
func TestAdminOrderUsecase_UpdateStatus_CancelPending_NoStockRestore(t *testing.T) {
	ctx := context.Background()

	tx := new(TxManagerMock)
	audit := new(AuditRepoMock)
	ordersRepo := new(OrderRepoMock)
	invRepo := new(InventoryRepoMock)

	tx.Repos = &TxReposMock{orders: ordersRepo, inventory: invRepo}
	tx.On("WithinTx", mock.Anything).Return(nil)

	ordersRepo.On("FindByID", mock.Anything, int64(1)).Return(model.Order{
		ID:     1,
		Status: model.OrderStatusPending,
	}, nil)
	ordersRepo.On("UpdateStatus", mock.Anything, int64(1), model.OrderStatusCanceled).Return(nil)
	audit.On("Create", mock.Anything, mock.Anything).Return(nil)

	uc := usecase.NewAdminOrderUsecase(tx, audit)

	err := uc.UpdateStatus(ctx, adminID, 1, usecase.AdminUpdateOrderStatusInput{Status: "CANCELED"})
	assert.NoError(t, err)

	invRepo.AssertNotCalled(t, "IncreaseStock", mock.Anything, mock.Anything, mock.Anything)
}
