package payment

import "context"

// 決済セッション作成に渡す明細。金額はマイナー単位（円ならそのまま）。
type SessionItem struct {
	Name      string
	UnitPrice int64
	Quantity  int64
}

// 作成直後のセッション。ClientSecretはフロントの埋め込みUIに渡す。
type Session struct {
	ID           string
	ClientSecret string
}

// 照会結果。
type Status struct {
	ID            string
	Status        string // open / complete / expired
	PaymentStatus string // paid / unpaid
}

const (
	StatusComplete    = "complete"
	PaymentStatusPaid = "paid"
)

// 決済プロバイダの抽象。実装はStripeとモックの2つ。
type Gateway interface {
	CreateSession(ctx context.Context, items []SessionItem) (Session, error)
	SessionStatus(ctx context.Context, sessionID string) (Status, error)
}
