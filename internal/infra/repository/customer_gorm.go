package repository

import (
	"context"
	"errors"

	"github.com/andikadwp/buyit/internal/domain/model"
	repo "github.com/andikadwp/buyit/internal/repository"

	"gorm.io/gorm"
)

type CustomerGormRepository struct {
	db *gorm.DB
}

// DI
func NewCustomerGormRepository(db *gorm.DB) *CustomerGormRepository {
	return &CustomerGormRepository{db: db}
}

func (r *CustomerGormRepository) FindByID(ctx context.Context, customerID string) (model.Customer, error) {
	var c model.Customer
	err := r.db.WithContext(ctx).Where("id = ?", customerID).First(&c).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return model.Customer{}, repo.ErrNotFound
	}
	if err != nil {
		return model.Customer{}, err
	}
	return c, nil
}

// 無ければ作成、あれば phone/address のみ更新。
func (r *CustomerGormRepository) Upsert(ctx context.Context, c model.Customer) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing model.Customer
		err := tx.Where("id = ?", c.ID).First(&existing).Error

		if errors.Is(err, gorm.ErrRecordNotFound) {
			return tx.Create(&c).Error
		}
		if err != nil {
			return err
		}

		res := tx.Model(&model.Customer{}).
			Where("id = ?", c.ID).
			Updates(map[string]interface{}{
				"phone":   c.Phone,
				"address": c.Address,
			})
		return res.Error
	})
}

func (r *CustomerGormRepository) List(ctx context.Context, page int, limit int) ([]model.Customer, int64, error) {
	var total int64
	if err := r.db.WithContext(ctx).Model(&model.Customer{}).Count(&total).Error; err != nil {
		return []model.Customer{}, 0, err
	}

	var items []model.Customer
	offset := (page - 1) * limit
	err := r.db.WithContext(ctx).
		Order("created_at desc").
		Limit(limit).
		Offset(offset).
		Find(&items).Error
	if err != nil {
		return []model.Customer{}, 0, err
	}

	return items, total, nil
}
