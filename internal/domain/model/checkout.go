package model

// 1回のチェックアウト試行の状態。
// Failedからの再試行は新しい試行として Idle から始める（注文行は再利用しない）。
type CheckoutState string

const (
	CheckoutStateIdle                CheckoutState = "IDLE"
	CheckoutStateCreatingOrder       CheckoutState = "CREATING_ORDER"
	CheckoutStateAwaitingPayment     CheckoutState = "AWAITING_PAYMENT"
	CheckoutStateApplyingPaidEffects CheckoutState = "APPLYING_PAID_EFFECTS"
	CheckoutStateDone                CheckoutState = "DONE"
	CheckoutStateFailed              CheckoutState = "FAILED"
)

var checkoutTransitions = map[CheckoutState][]CheckoutState{
	CheckoutStateIdle:                {CheckoutStateCreatingOrder},
	CheckoutStateCreatingOrder:       {CheckoutStateAwaitingPayment, CheckoutStateFailed},
	CheckoutStateAwaitingPayment:     {CheckoutStateApplyingPaidEffects, CheckoutStateFailed},
	CheckoutStateApplyingPaidEffects: {CheckoutStateDone, CheckoutStateFailed},
}

func (s CheckoutState) CanTransitionTo(next CheckoutState) bool {
	for _, allowed := range checkoutTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

func (s CheckoutState) IsTerminal() bool {
	return s == CheckoutStateDone || s == CheckoutStateFailed
}

func (s CheckoutState) String() string {
	return string(s)
}
