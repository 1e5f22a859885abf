package payment

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMockGateway_CreateSession(t *testing.T) {
	g := NewMockGateway()

	s1, err := g.CreateSession(context.Background(), []SessionItem{{Name: "p1", UnitPrice: 1000, Quantity: 1}})
	assert.NoError(t, err)
	assert.Equal(t, "mock_client_secret_123", s1.ClientSecret)
	assert.NotEmpty(t, s1.ID)

	//IDは毎回変わる
	s2, err := g.CreateSession(context.Background(), nil)
	assert.NoError(t, err)
	assert.NotEqual(t, s1.ID, s2.ID)
}

// モックのセッションは常にcomplete/paid
func TestMockGateway_SessionStatus(t *testing.T) {
	g := NewMockGateway()

	st, err := g.SessionStatus(context.Background(), "cs_mock_1")
	assert.NoError(t, err)
	assert.Equal(t, StatusComplete, st.Status)
	assert.Equal(t, PaymentStatusPaid, st.PaymentStatus)
	assert.Equal(t, "cs_mock_1", st.ID)
}
