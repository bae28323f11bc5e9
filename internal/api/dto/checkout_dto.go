package dto

import (
	"encoding/json"
	"strconv"
	"strings"
)

// Amount accepts either a JSON number or a numeric string, which is how
// storefront clients send monetary values. Present distinguishes an
// absent field from a zero; Raw preserves the client's textual form.
type Amount struct {
	Present bool
	Valid   bool
	Value   float64
	Raw     string
}

// UnmarshalJSON never fails; malformed values leave Valid false so the
// service layer can answer with its own error code.
func (a *Amount) UnmarshalJSON(data []byte) error {
	a.Present = true
	trimmed := strings.TrimSpace(string(data))
	if trimmed == "null" {
		return nil
	}
	if strings.HasPrefix(trimmed, `"`) {
		var str string
		if err := json.Unmarshal(data, &str); err != nil {
			return nil
		}
		a.Raw = str
		value, err := strconv.ParseFloat(strings.TrimSpace(str), 64)
		if err != nil {
			return nil
		}
		a.Value = value
		a.Valid = true
		return nil
	}
	var value float64
	if err := json.Unmarshal(data, &value); err != nil {
		return nil
	}
	a.Raw = trimmed
	a.Value = value
	a.Valid = true
	return nil
}

// StripeCheckoutRequest payload for session creation.
type StripeCheckoutRequest struct {
	Amount      Amount `json:"amount"`
	Currency    string `json:"currency"`
	PackID      string `json:"packId"`
	Description string `json:"description"`
	UID         string `json:"uid"`
	Email       string `json:"email"`
	SuccessURL  string `json:"success_url"`
	CancelURL   string `json:"cancel_url"`
}

// StripeCheckoutResponse returns the hosted session id.
type StripeCheckoutResponse struct {
	ID string `json:"id"`
}

// StripeVerifyResponse mirrors the session state.
type StripeVerifyResponse struct {
	OK            bool              `json:"ok"`
	Paid          bool              `json:"paid"`
	Status        string            `json:"status"`
	PaymentStatus string            `json:"payment_status"`
	AmountTotal   int64             `json:"amount_total"`
	Currency      string            `json:"currency"`
	Metadata      map[string]string `json:"metadata,omitempty"`
}

// PayPalItem is one client-declared line item.
type PayPalItem struct {
	Name      string `json:"name"`
	UnitPrice Amount `json:"unit_price"`
	Quantity  int    `json:"quantity"`
}

// PayPalCheckoutRequest payload for order creation.
type PayPalCheckoutRequest struct {
	Amount    Amount       `json:"amount"`
	Currency  string       `json:"currency"`
	ReturnURL string       `json:"return_url"`
	CancelURL string       `json:"cancel_url"`
	CustomID  string       `json:"custom_id"`
	Items     []PayPalItem `json:"items"`
}

// PayPalOrderLink is one HATEOAS link on a provider order.
type PayPalOrderLink struct {
	Href string `json:"href"`
	Rel  string `json:"rel"`
}

// PayPalOrder is the provider order as surfaced to clients.
type PayPalOrder struct {
	ID     string            `json:"id"`
	Status string            `json:"status"`
	Links  []PayPalOrderLink `json:"links,omitempty"`
}

// PayPalOrderResponse wraps the created order together with the
// extracted buyer approval link.
type PayPalOrderResponse struct {
	Order      PayPalOrder `json:"order"`
	ApproveURL string      `json:"approveUrl,omitempty"`
}
