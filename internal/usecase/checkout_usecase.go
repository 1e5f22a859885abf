package usecase

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/andikadwp/buyit/internal/cart"
	"github.com/andikadwp/buyit/internal/domain/model"
	"github.com/andikadwp/buyit/internal/payment"
	repo "github.com/andikadwp/buyit/internal/repository"
)

// チェックアウト完了時にカートを空にするための口。
type CartClearer interface {
	Clear(ctx context.Context) error
}

// カートのスナップショットを注文に変換し、決済セッションを回し、
// 支払い済みの副作用を適用するオーケストレータ。
// 1回の試行は CreatePendingOrder → BeginPaymentSession → OnPaymentComplete の順で、
// 同じ試行の操作が並行に走ることはない。
type CheckoutUsecase struct {
	tx              repo.TransactionManager
	customers       repo.CustomerRepository
	gateway         payment.Gateway
	strictDecrement bool
	log             *logrus.Logger
}

func NewCheckoutUsecase(
	tx repo.TransactionManager,
	customers repo.CustomerRepository,
	gateway payment.Gateway,
	strictDecrement bool,
	log *logrus.Logger,
) *CheckoutUsecase {
	return &CheckoutUsecase{
		tx:              tx,
		customers:       customers,
		gateway:         gateway,
		strictDecrement: strictDecrement,
		log:             log,
	}
}

// 状態遷移。表にない遷移はバグなのでここで落とす。
func advance(from, to model.CheckoutState) (model.CheckoutState, error) {
	if !from.CanTransitionTo(to) {
		return from, fmt.Errorf("illegal checkout transition %s -> %s", from, to)
	}
	return to, nil
}

type CreatePendingOrderInput struct {
	FullName        string
	Phone           string
	ShippingAddress string
	Snapshot        cart.Cart
}

type CreatePendingOrderOutput struct {
	OrderID     int64               `json:"order_id"`
	TotalAmount int64               `json:"total_amount"`
	State       model.CheckoutState `json:"state"`
}

// 顧客をupsertし、PENDINGの注文と明細を作る。
// 顧客upsertは注文トランザクションの外。注文側が失敗しても巻き戻さない
// （部分書き込みが残る。これは意図した挙動）。
func (u *CheckoutUsecase) CreatePendingOrder(ctx context.Context, customerID string, in CreatePendingOrderInput) (CreatePendingOrderOutput, error) {
	state := model.CheckoutStateIdle

	if customerID == "" {
		return CreatePendingOrderOutput{State: state}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if strings.TrimSpace(in.ShippingAddress) == "" {
		return CreatePendingOrderOutput{State: state}, NewHTTPError(http.StatusBadRequest, "shipping_address required")
	}
	if in.Snapshot.IsEmpty() {
		return CreatePendingOrderOutput{State: state}, NewHTTPError(http.StatusBadRequest, "cart empty")
	}

	state, err := advance(state, model.CheckoutStateCreatingOrder)
	if err != nil {
		return CreatePendingOrderOutput{State: state}, NewHTTPError(http.StatusInternalServerError, "checkout state error")
	}

	now := time.Now()
	if err := u.customers.Upsert(ctx, model.Customer{
		ID:        customerID,
		FullName:  strings.TrimSpace(in.FullName),
		Phone:     strings.TrimSpace(in.Phone),
		Address:   strings.TrimSpace(in.ShippingAddress),
		CreatedAt: now,
		UpdatedAt: now,
	}); err != nil {
		state, _ = advance(state, model.CheckoutStateFailed)
		u.log.WithError(err).WithField("customer_id", customerID).Error("customer upsert failed")
		return CreatePendingOrderOutput{State: state}, &OrderCreationError{Err: err}
	}

	// 合計は明細から導出し直す（キャッシュ値は信用しない）
	var total int64
	for _, it := range in.Snapshot.Items {
		total += it.UnitPrice * it.Quantity
	}

	var orderID int64
	err = u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		id, err := r.Orders().Create(ctx, model.Order{
			CustomerID:      customerID,
			Status:          model.OrderStatusPending,
			TotalAmount:     total,
			ShippingAddress: strings.TrimSpace(in.ShippingAddress),
			CreatedAt:       now,
			UpdatedAt:       now,
		})
		if err != nil {
			return err
		}

		items := make([]model.OrderItem, 0, len(in.Snapshot.Items))
		for _, it := range in.Snapshot.Items {
			items = append(items, model.OrderItem{
				ProductID:           it.ProductID,
				ProductNameSnapshot: it.Name,
				UnitPriceSnapshot:   it.UnitPrice,
				Quantity:            it.Quantity,
				CreatedAt:           now,
			})
		}
		if err := r.OrderItems().CreateBulk(ctx, id, items); err != nil {
			return err
		}

		orderID = id
		return nil
	})
	if err != nil {
		state, _ = advance(state, model.CheckoutStateFailed)
		u.log.WithError(err).WithField("customer_id", customerID).Error("pending order creation failed")
		return CreatePendingOrderOutput{State: state}, &OrderCreationError{Err: err}
	}

	u.log.WithFields(logrus.Fields{
		"order_id":     orderID,
		"customer_id":  customerID,
		"total_amount": total,
	}).Info("pending order created")

	return CreatePendingOrderOutput{
		OrderID:     orderID,
		TotalAmount: total,
		State:       state,
	}, nil
}

type BeginPaymentSessionInput struct {
	OrderID  int64
	Snapshot cart.Cart
}

type BeginPaymentSessionOutput struct {
	SessionID    string              `json:"session_id"`
	ClientSecret string              `json:"client_secret"`
	State        model.CheckoutState `json:"state"`
}

// 決済セッションを開く。セッションに渡す価格はカートの値ではなく
// 現在のカタログ価格を引き直す。カタログに無い商品が混ざっていれば失敗。
// 注文ステータスは一切触らない。
func (u *CheckoutUsecase) BeginPaymentSession(ctx context.Context, in BeginPaymentSessionInput) (BeginPaymentSessionOutput, error) {
	state := model.CheckoutStateCreatingOrder

	if in.OrderID <= 0 {
		return BeginPaymentSessionOutput{State: state}, NewHTTPError(http.StatusBadRequest, "invalid order id")
	}
	if in.Snapshot.IsEmpty() {
		return BeginPaymentSessionOutput{State: state}, NewHTTPError(http.StatusBadRequest, "cart empty")
	}

	items := make([]payment.SessionItem, 0, len(in.Snapshot.Items))
	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		for _, it := range in.Snapshot.Items {
			p, err := r.Products().FindByID(ctx, it.ProductID)
			if err == repo.ErrNotFound || (err == nil && !p.IsActive) {
				return fmt.Errorf("product %d not in catalog", it.ProductID)
			}
			if err != nil {
				return err
			}
			items = append(items, payment.SessionItem{
				Name:      p.Name,
				UnitPrice: p.Price, // カタログの現在価格
				Quantity:  it.Quantity,
			})
		}
		return nil
	})
	if err != nil {
		state, _ = advance(state, model.CheckoutStateFailed)
		u.log.WithError(err).WithField("order_id", in.OrderID).Error("catalog lookup failed")
		return BeginPaymentSessionOutput{State: state}, &PaymentSessionError{OrderID: in.OrderID, Err: err}
	}

	sess, err := u.gateway.CreateSession(ctx, items)
	if err != nil {
		state, _ = advance(state, model.CheckoutStateFailed)
		u.log.WithError(err).WithField("order_id", in.OrderID).Error("payment session creation failed")
		return BeginPaymentSessionOutput{State: state}, &PaymentSessionError{OrderID: in.OrderID, Err: err}
	}

	state, _ = advance(state, model.CheckoutStateAwaitingPayment)

	u.log.WithFields(logrus.Fields{
		"order_id":   in.OrderID,
		"session_id": sess.ID,
	}).Info("payment session opened")

	return BeginPaymentSessionOutput{
		SessionID:    sess.ID,
		ClientSecret: sess.ClientSecret,
		State:        state,
	}, nil
}

type SessionStatusOutput struct {
	SessionID     string `json:"session_id"`
	Status        string `json:"status"`
	PaymentStatus string `json:"payment_status"`
}

func (u *CheckoutUsecase) SessionStatus(ctx context.Context, sessionID string) (SessionStatusOutput, error) {
	if strings.TrimSpace(sessionID) == "" {
		return SessionStatusOutput{}, NewHTTPError(http.StatusBadRequest, "invalid session id")
	}

	st, err := u.gateway.SessionStatus(ctx, sessionID)
	if err != nil {
		return SessionStatusOutput{}, NewHTTPError(http.StatusBadGateway, "payment provider error")
	}
	return SessionStatusOutput{
		SessionID:     st.ID,
		Status:        st.Status,
		PaymentStatus: st.PaymentStatus,
	}, nil
}

type OnPaymentCompleteInput struct {
	OrderID   int64
	SessionID string
	Snapshot  cart.Cart
}

type OnPaymentCompleteOutput struct {
	OrderID int64               `json:"order_id"`
	Status  string              `json:"status"`
	State   model.CheckoutState `json:"state"`
}

// 支払い完了後の仕上げ。順序は固定：
//  1. セッションが complete/paid であることを確認
//  2. 注文を PAID に更新
//  3. 明細ごとに在庫を減算
//  4. カートを空にする
//
// 在庫減算が途中で失敗しても注文は PAID のまま（補償トランザクションなし）。
// その場合カートも消さない。突き合わせは管理側の運用で行う。
func (u *CheckoutUsecase) OnPaymentComplete(ctx context.Context, in OnPaymentCompleteInput, clearer CartClearer) (OnPaymentCompleteOutput, error) {
	state := model.CheckoutStateAwaitingPayment

	if in.OrderID <= 0 {
		return OnPaymentCompleteOutput{State: state}, NewHTTPError(http.StatusBadRequest, "invalid order id")
	}

	st, err := u.gateway.SessionStatus(ctx, in.SessionID)
	if err != nil {
		state, _ = advance(state, model.CheckoutStateFailed)
		return OnPaymentCompleteOutput{State: state}, &OrderFinalizationError{OrderID: in.OrderID, Err: err}
	}
	if st.Status != payment.StatusComplete || st.PaymentStatus != payment.PaymentStatusPaid {
		return OnPaymentCompleteOutput{State: state}, NewHTTPError(http.StatusConflict, "payment not completed")
	}

	state, _ = advance(state, model.CheckoutStateApplyingPaidEffects)

	// ステータス更新は単独トランザクション。
	// ここが通った時点で注文はPAID確定（以降の失敗で戻さない）
	err = u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		o, err := r.Orders().FindByID(ctx, in.OrderID)
		if err != nil {
			return err
		}
		if !o.Status.CanTransitionTo(model.OrderStatusPaid) {
			return fmt.Errorf("order %d in status %s cannot become paid", in.OrderID, o.Status)
		}
		return r.Orders().UpdateStatus(ctx, in.OrderID, model.OrderStatusPaid)
	})
	if err != nil {
		state, _ = advance(state, model.CheckoutStateFailed)
		u.log.WithError(err).WithField("order_id", in.OrderID).Error("paid transition failed")
		return OnPaymentCompleteOutput{State: state}, &OrderFinalizationError{OrderID: in.OrderID, Err: err}
	}

	if err := u.decrementStock(ctx, in.Snapshot); err != nil {
		state, _ = advance(state, model.CheckoutStateFailed)
		u.log.WithError(err).WithField("order_id", in.OrderID).Error("stock decrement failed after payment")
		return OnPaymentCompleteOutput{
			OrderID: in.OrderID,
			Status:  string(model.OrderStatusPaid),
			State:   state,
		}, &OrderFinalizationError{OrderID: in.OrderID, Err: err}
	}

	if err := clearer.Clear(ctx); err != nil {
		state, _ = advance(state, model.CheckoutStateFailed)
		u.log.WithError(err).WithField("order_id", in.OrderID).Error("cart clear failed after payment")
		return OnPaymentCompleteOutput{
			OrderID: in.OrderID,
			Status:  string(model.OrderStatusPaid),
			State:   state,
		}, &OrderFinalizationError{OrderID: in.OrderID, Err: err}
	}

	state, _ = advance(state, model.CheckoutStateDone)

	u.log.WithFields(logrus.Fields{
		"order_id":   in.OrderID,
		"session_id": in.SessionID,
	}).Info("checkout completed")

	return OnPaymentCompleteOutput{
		OrderID: in.OrderID,
		Status:  string(model.OrderStatusPaid),
		State:   state,
	}, nil
}

// 在庫減算。既定は「読んでから引く」方式で、同一商品への同時チェックアウトが
// 両方とも減算前の値を読むと売り越す。strictDecrement を立てると
// 条件付きUPDATEで不足時に失敗する。
func (u *CheckoutUsecase) decrementStock(ctx context.Context, snapshot cart.Cart) error {
	return u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		for _, it := range snapshot.Items {
			if u.strictDecrement {
				ok, err := r.Inventory().DecreaseStockIfEnough(ctx, it.ProductID, it.Quantity)
				if err != nil {
					return err
				}
				if !ok {
					return fmt.Errorf("insufficient stock for product %d", it.ProductID)
				}
				continue
			}

			current, err := r.Inventory().GetStock(ctx, it.ProductID)
			if err != nil {
				return err
			}
			if err := r.Inventory().SetStock(ctx, it.ProductID, current-it.Quantity); err != nil {
				return err
			}
		}
		return nil
	})
}
