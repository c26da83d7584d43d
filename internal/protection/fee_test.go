package protection

import "testing"

func TestFee(t *testing.T) {
	s := DefaultSchedule()
	tests := []struct {
		name     string
		subtotal int64
		want     int64
	}{
		{"zero subtotal", 0, 0},
		{"negative subtotal", -500, 0},
		{"below minimum clamp", 1000, 100}, // 2% = 20, clamped up
		{"exactly minimum", 5000, 100},     // 2% = 100
		{"mid range", 50000, 1000},
		{"exactly maximum", 125000, 2500}, // 2% = 2500
		{"above maximum clamp", 1000000, 2500},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := s.Fee(tt.subtotal); got != tt.want {
				t.Fatalf("got=%d want=%d", got, tt.want)
			}
		})
	}
}

func TestFeeCustomSchedule(t *testing.T) {
	s := FeeSchedule{RateBasisPoints: 500, MinFeeYen: 50, MaxFeeYen: 300}
	if got := s.Fee(2000); got != 100 { // 5%
		t.Fatalf("got=%d want=100", got)
	}
	if got := s.Fee(100000); got != 300 {
		t.Fatalf("got=%d want=300", got)
	}
}
