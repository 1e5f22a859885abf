package payment

import (
	"context"
	"fmt"
	"sync/atomic"
)

// 外部Stripeに出ないモックゲートウェイ。
// 作ったセッションは即complete/paid扱いで返す。開発とテスト用。
type MockGateway struct {
	seq atomic.Int64
}

func NewMockGateway() *MockGateway {
	return &MockGateway{}
}

func (m *MockGateway) CreateSession(ctx context.Context, items []SessionItem) (Session, error) {
	id := fmt.Sprintf("cs_mock_%d", m.seq.Add(1))
	return Session{
		ID:           id,
		ClientSecret: "mock_client_secret_123",
	}, nil
}

func (m *MockGateway) SessionStatus(ctx context.Context, sessionID string) (Status, error) {
	return Status{
		ID:            sessionID,
		Status:        StatusComplete,
		PaymentStatus: PaymentStatusPaid,
	}, nil
}
