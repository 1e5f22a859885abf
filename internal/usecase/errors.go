package usecase

import (
	"errors"
	"fmt"
)

type HTTPError struct {
	Status  int
	Message string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("%d: %s", e.Status, e.Message)
}

func NewHTTPError(status int, message string) error {
	return &HTTPError{
		Status:  status,
		Message: message,
	}
}

func AsHTTPError(err error) (*HTTPError, bool) {
	var he *HTTPError
	ok := errors.As(err, &he)
	return he, ok
}

// チェックアウトの失敗分類。どの段で落ちたかを呼び出し側が区別できるようにする。

// 注文レコードの作成に失敗（決済前。副作用なし）。
type OrderCreationError struct {
	Err error
}

func (e *OrderCreationError) Error() string {
	return fmt.Sprintf("order creation failed: %v", e.Err)
}

func (e *OrderCreationError) Unwrap() error { return e.Err }

// 決済セッションの開始に失敗（注文はPENDINGのまま残る）。
type PaymentSessionError struct {
	OrderID int64
	Err     error
}

func (e *PaymentSessionError) Error() string {
	return fmt.Sprintf("payment session failed for order %d: %v", e.OrderID, e.Err)
}

func (e *PaymentSessionError) Unwrap() error { return e.Err }

// 支払い完了後の仕上げ（ステータス更新・在庫減算）に失敗。
// 決済は済んでいるので呼び出し側は要注意。
type OrderFinalizationError struct {
	OrderID int64
	Err     error
}

func (e *OrderFinalizationError) Error() string {
	return fmt.Sprintf("order finalization failed for order %d: %v", e.OrderID, e.Err)
}

func (e *OrderFinalizationError) Unwrap() error { return e.Err }
