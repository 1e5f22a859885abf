package repository

import (
	"context"

	"github.com/andikadwp/buyit/internal/domain/model"
)

type CustomerRepository interface {
	FindByID(ctx context.Context, customerID string) (model.Customer, error)

	// 無ければ作成、あれば配送先フィールド（phone/address）だけ更新。
	Upsert(ctx context.Context, c model.Customer) error

	//管理画面の顧客一覧
	List(ctx context.Context, page int, limit int) ([]model.Customer, int64, error)
}
