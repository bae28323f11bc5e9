package dto_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/brainrot-market/market-service/internal/api/dto"
)

func TestAmountUnmarshal(t *testing.T) {
	decode := func(t *testing.T, body string) dto.StripeCheckoutRequest {
		t.Helper()
		var req dto.StripeCheckoutRequest
		require.NoError(t, json.Unmarshal([]byte(body), &req))
		return req
	}

	t.Run("json number", func(t *testing.T) {
		req := decode(t, `{"amount": 9.99}`)
		assert.True(t, req.Amount.Present)
		assert.True(t, req.Amount.Valid)
		assert.Equal(t, 9.99, req.Amount.Value)
		assert.Equal(t, "9.99", req.Amount.Raw)
	})

	t.Run("numeric string", func(t *testing.T) {
		req := decode(t, `{"amount": " 19.50 "}`)
		assert.True(t, req.Amount.Valid)
		assert.Equal(t, 19.5, req.Amount.Value)
		assert.Equal(t, " 19.50 ", req.Amount.Raw)
	})

	t.Run("absent field", func(t *testing.T) {
		req := decode(t, `{"currency": "EUR"}`)
		assert.False(t, req.Amount.Present)
		assert.False(t, req.Amount.Valid)
	})

	t.Run("null is present but invalid", func(t *testing.T) {
		req := decode(t, `{"amount": null}`)
		assert.True(t, req.Amount.Present)
		assert.False(t, req.Amount.Valid)
	})

	t.Run("garbage string never fails decoding", func(t *testing.T) {
		req := decode(t, `{"amount": "free coins"}`)
		assert.True(t, req.Amount.Present)
		assert.False(t, req.Amount.Valid)
		assert.Equal(t, "free coins", req.Amount.Raw)
	})

	t.Run("zero is a valid value", func(t *testing.T) {
		req := decode(t, `{"amount": 0}`)
		assert.True(t, req.Amount.Present)
		assert.True(t, req.Amount.Valid)
		assert.Zero(t, req.Amount.Value)
	})
}
