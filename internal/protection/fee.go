// Package protection prices the optional order-protection add-on offered
// at checkout.
package protection

// FeeSchedule expresses the fee as basis points of the order subtotal,
// clamped to a floor and a ceiling.
type FeeSchedule struct {
	RateBasisPoints int64
	MinFeeYen       int64
	MaxFeeYen       int64
}

// DefaultSchedule is 2% of the subtotal, at least 100 yen, at most 2500 yen.
func DefaultSchedule() FeeSchedule {
	return FeeSchedule{RateBasisPoints: 200, MinFeeYen: 100, MaxFeeYen: 2500}
}

// Fee returns the protection fee for a subtotal. A non-positive subtotal
// prices at zero; the minimum clamp applies only to real orders.
func (s FeeSchedule) Fee(subtotalYen int64) int64 {
	if subtotalYen <= 0 {
		return 0
	}
	fee := subtotalYen * s.RateBasisPoints / 10000
	if fee < s.MinFeeYen {
		fee = s.MinFeeYen
	}
	if fee > s.MaxFeeYen {
		fee = s.MaxFeeYen
	}
	return fee
}
