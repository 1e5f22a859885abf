package repository

import (
	"context"

	"github.com/andikadwp/buyit/internal/domain/model"
)

type InventoryRepository interface {
	// 在庫の現在値を設定
	SetStock(ctx context.Context, productID int64, newStock int64) error

	// 現在値を読む（read-then-write減算用）
	GetStock(ctx context.Context, productID int64) (int64, error)

	// 無条件減算。マイナス在庫になり得る。
	DecreaseStock(ctx context.Context, productID int64, qty int64) error

	// 在庫が足りるときだけ減算
	DecreaseStockIfEnough(ctx context.Context, productID int64, qty int64) (bool, error)

	// 在庫戻し（キャンセルなど）
	IncreaseStock(ctx context.Context, productID int64, qty int64) error

	// 調整履歴作成
	CreateAdjustment(ctx context.Context, adjustment model.InventoryAdjustment) error
}
