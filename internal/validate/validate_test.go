package validate

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestText(t *testing.T) {
	tests := []struct {
		name        string
		input       string
		allowDigits bool
		want        string
		wantErr     error
	}{
		{name: "trimmed", input: "  Atlas ", want: "Atlas"},
		{name: "blank", input: "   ", wantErr: ErrEmpty},
		{name: "digits rejected", input: "1234", wantErr: ErrNumericOnly},
		{name: "digits allowed", input: "1234", allowDigits: true, want: "1234"},
		{name: "mixed", input: "Room 101", want: "Room 101"},
		{name: "decimal is not digits", input: "12.5", want: "12.5"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Text(tt.input, tt.allowDigits)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestNonNegativeFloat(t *testing.T) {
	v, err := NonNegativeFloat(" 10.5 ")
	require.NoError(t, err)
	assert.Equal(t, 10.5, v)

	v, err = NonNegativeFloat("0")
	require.NoError(t, err)
	assert.Zero(t, v)

	_, err = NonNegativeFloat("-1")
	assert.ErrorIs(t, err, ErrNegative)

	_, err = NonNegativeFloat("ten")
	assert.ErrorIs(t, err, ErrNotANumber)

	_, err = NonNegativeFloat("NaN")
	assert.ErrorIs(t, err, ErrNotANumber)

	_, err = NonNegativeFloat("+Inf")
	assert.ErrorIs(t, err, ErrNotANumber)
}

func TestNonNegativeInt(t *testing.T) {
	v, err := NonNegativeInt("007")
	require.NoError(t, err)
	assert.Equal(t, 7, v)

	_, err = NonNegativeInt("-3")
	assert.ErrorIs(t, err, ErrNegative)

	_, err = NonNegativeInt("2.5")
	assert.ErrorIs(t, err, ErrNotAnInteger)

	_, err = NonNegativeInt("")
	assert.ErrorIs(t, err, ErrNotAnInteger)
}

func TestDiscount(t *testing.T) {
	tests := []struct {
		input   string
		want    float64
		wantErr error
	}{
		{input: "", want: 0},
		{input: "10", want: 10},
		{input: "0", want: 0},
		{input: "100", want: 100},
		{input: "12.5", want: 12.5},
		{input: "101", want: 0, wantErr: ErrDiscountRange},
		{input: "-5", want: 0, wantErr: ErrDiscountRange},
		{input: "half", want: 0, wantErr: ErrNotANumber},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := Discount(tt.input)
			assert.Equal(t, tt.want, got)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
