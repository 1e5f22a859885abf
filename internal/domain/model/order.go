package model

import "time"

type OrderStatus string

const (
	OrderStatusPending    OrderStatus = "PENDING"
	OrderStatusPaid       OrderStatus = "PAID"
	OrderStatusProcessing OrderStatus = "PROCESSING"
	OrderStatusShipped    OrderStatus = "SHIPPED"
	OrderStatusDelivered  OrderStatus = "DELIVERED"
	OrderStatusCanceled   OrderStatus = "CANCELED"
)

// 注文ステータスの遷移表。
// PENDING->PAID は決済完了のみ。PAID以降は管理者が進める。
// キャンセルは終端以外ならどこからでも可。
var orderTransitions = map[OrderStatus][]OrderStatus{
	OrderStatusPending:    {OrderStatusPaid, OrderStatusCanceled},
	OrderStatusPaid:       {OrderStatusProcessing, OrderStatusCanceled},
	OrderStatusProcessing: {OrderStatusShipped, OrderStatusCanceled},
	OrderStatusShipped:    {OrderStatusDelivered, OrderStatusCanceled},
}

func (s OrderStatus) CanTransitionTo(next OrderStatus) bool {
	for _, allowed := range orderTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// DELIVERED / CANCELED からは動かせない
func (s OrderStatus) IsTerminal() bool {
	return s == OrderStatusDelivered || s == OrderStatusCanceled
}

type Order struct {
	ID              int64       `gorm:"primaryKey;autoIncrement" json:"id"`
	CustomerID      string      `gorm:"type:uuid;not null;index" json:"customer_id"`
	Status          OrderStatus `gorm:"type:varchar(20);not null;index" json:"status"`
	TotalAmount     int64       `gorm:"not null" json:"total_amount"`
	ShippingAddress string      `gorm:"type:text;not null" json:"shipping_address"`
	CreatedAt       time.Time   `gorm:"not null;autoCreateTime" json:"created_at"`
	UpdatedAt       time.Time   `gorm:"not null;autoUpdateTime" json:"updated_at"`
}
