package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFormatCurrencyVND(t *testing.T) {
	tests := []struct {
		name   string
		amount float64
		want   string
	}{
		{name: "zero", amount: 0, want: "0 VND"},
		{name: "below thousand", amount: 950, want: "950 VND"},
		{name: "thousands", amount: 135000, want: "135.000 VND"},
		{name: "millions", amount: 1250000, want: "1.250.000 VND"},
		{name: "rounds fraction", amount: 49999.6, want: "50.000 VND"},
		{name: "negative", amount: -20000, want: "-20.000 VND"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FormatCurrencyVND(tt.amount))
		})
	}
}
