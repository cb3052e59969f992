package money

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	tests := []struct {
		input    string
		expected int64
		wantErr  bool
	}{
		{"315.00", 31500, false},
		{"315", 31500, false},
		{"0.01", 1, false},
		{"-0.5", -50, false},
		{"1000000", 100000000, false},
		{"0", 0, false},
		{"1.555", 0, true},  // three decimal places
		{"0.001", 0, true},  // sub-minor-unit
		{"abc", 0, true},
		{"", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := Parse(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestFormat(t *testing.T) {
	assert.Equal(t, "315.00", Format(31500))
	assert.Equal(t, "0.01", Format(1))
	assert.Equal(t, "-12.34", Format(-1234))
	assert.Equal(t, "0.00", Format(0))
}

func TestConvert(t *testing.T) {
	rate := decimal.RequireFromString("31.5")

	// 10.00 USD * 31.5 = 315.00 TWD
	assert.Equal(t, int64(31500), Convert(1000, rate))

	// Rounding: half away from zero.
	// 0.01 * 31.5 = 0.315 -> 0.32
	assert.Equal(t, int64(32), Convert(1, rate))
	// 0.01 * 0.5 = 0.005 -> 0.01 (the half-up boundary)
	assert.Equal(t, int64(1), Convert(1, decimal.RequireFromString("0.5")))
	// -0.01 * 0.5 = -0.005 -> -0.01 (away from zero)
	assert.Equal(t, int64(-1), Convert(-1, decimal.RequireFromString("0.5")))
	// 0.01 * 0.4 = 0.004 -> 0.00
	assert.Equal(t, int64(0), Convert(1, decimal.RequireFromString("0.4")))
}

func TestConvert_Identity(t *testing.T) {
	one := decimal.NewFromInt(1)
	for _, v := range []int64{0, 1, -1, 31500, -99999} {
		assert.Equal(t, v, Convert(v, one))
	}
}

func TestRoundTrip(t *testing.T) {
	for _, s := range []string{"0.00", "315.00", "-12.34", "99999999.99"} {
		minor, err := Parse(s)
		require.NoError(t, err)
		assert.Equal(t, s, Format(minor))
	}
}

func TestAbs(t *testing.T) {
	assert.Equal(t, int64(5), Abs(-5))
	assert.Equal(t, int64(5), Abs(5))
	assert.Equal(t, int64(0), Abs(0))
}
