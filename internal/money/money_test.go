package money

import (
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_RoundsHalfUp(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"0", "0.00"},
		{"1.005", "1.01"},
		{"1.004", "1.00"},
		{"2.5", "2.50"},
		{"-1.005", "-1.01"},
		{"125000", "125000.00"},
		{"0.125", "0.13"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, New(decimal.RequireFromString(tt.in)).String())
		})
	}
}

func TestFromPtr_NilIsZero(t *testing.T) {
	assert.Equal(t, "0.00", FromPtr(nil).String())
	assert.Nil(t, OptFromPtr(nil))

	d := decimal.RequireFromString("30.5")
	assert.Equal(t, "30.50", FromPtr(&d).String())
	assert.Equal(t, "30.50", OptFromPtr(&d).String())
}

func TestArithmetic(t *testing.T) {
	total := MustParse("120.00").Add(MustParse("30.50"))
	assert.Equal(t, "150.50", total.String())

	equity := MustParse("200000.00").Sub(MustParse("75000.00"))
	assert.Equal(t, "125000.00", equity.String())

	assert.True(t, MustParse("1").Equal(MustParse("1.000")))
	assert.True(t, Zero.IsZero())
	assert.Equal(t, "7.00", Max(MustParse("7"), MustParse("6.99")).String())
}

func TestJSON(t *testing.T) {
	type wrapper struct {
		A Amount  `json:"a"`
		B *Amount `json:"b,omitempty"`
	}

	out, err := json.Marshal(wrapper{A: MustParse("150.5")})
	require.NoError(t, err)
	assert.JSONEq(t, `{"a":150.50}`, string(out))

	var w wrapper
	require.NoError(t, json.Unmarshal([]byte(`{"a":"12.345","b":7}`), &w))
	assert.Equal(t, "12.35", w.A.String())
	require.NotNil(t, w.B)
	assert.Equal(t, "7.00", w.B.String())

	require.NoError(t, json.Unmarshal([]byte(`{"a":null}`), &w))
	assert.True(t, w.A.IsZero())

	assert.Error(t, json.Unmarshal([]byte(`{"a":"abc"}`), &w))
}
