package invoice

import "testing"

func TestAmountInWords(t *testing.T) {
	tests := []struct {
		name   string
		amount float64
		want   string
	}{
		{name: "zero", amount: 0, want: "Zero Only"},
		{name: "single digit", amount: 7, want: "Seven Only"},
		{name: "teens", amount: 14, want: "Fourteen Only"},
		{name: "round tens", amount: 40, want: "Forty Only"},
		{name: "hundreds", amount: 256, want: "Two Hundred Fifty Six Only"},
		{name: "thousands", amount: 12500, want: "Twelve Thousand Five Hundred Only"},
		{name: "lakh", amount: 150000, want: "One Lakh Fifty Thousand Only"},
		{
			name:   "crore",
			amount: 12345678,
			want:   "One Crore Twenty Three Lakh Forty Five Thousand Six Hundred Seventy Eight Only",
		},
		{name: "multiple crore", amount: 250000000, want: "Twenty Five Crore Only"},
		{name: "with paise", amount: 99.50, want: "Ninety Nine and Fifty Paise Only"},
		{name: "paise rounding", amount: 10.999, want: "Eleven Only"},
		{name: "negative", amount: -120, want: "Minus One Hundred Twenty Only"},
	}

	for _, testCase := range tests {
		t.Run(testCase.name, func(t *testing.T) {
			if got := AmountInWords(testCase.amount); got != testCase.want {
				t.Fatalf("AmountInWords(%v) = %q, want %q", testCase.amount, got, testCase.want)
			}
		})
	}
}
