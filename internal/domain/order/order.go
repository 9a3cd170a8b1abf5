// Package order holds the order model as returned by the Shopify admin API.
package order

import (
	"encoding/json"

	"github.com/shopspring/decimal"
)

// Order is one purchase transaction with items, customer, and money fields.
// It is fetched fresh per invocation and never mutated afterwards.
type Order struct {
	ID              int64           `json:"id"`
	Number          Number          `json:"order_number"`
	CreatedAt       string          `json:"created_at"`
	Customer        *Customer       `json:"customer"`
	ShippingAddress *Address        `json:"shipping_address"`
	LineItems       []LineItem      `json:"line_items"`
	SubtotalPrice   decimal.Decimal `json:"subtotal_price"`
	TotalTax        decimal.Decimal `json:"total_tax"`
	ShippingSet     *PriceSet       `json:"total_shipping_price_set"`
	TotalPrice      decimal.Decimal `json:"total_price"`
}

// ShippingAmount resolves the nested shop-money path of the shipping price
// set. Orders without the price set (older API shapes) ship for zero; a
// missing object is never an error.
func (o *Order) ShippingAmount() decimal.Decimal {
	if o.ShippingSet == nil || o.ShippingSet.ShopMoney == nil {
		return decimal.Zero
	}
	return o.ShippingSet.ShopMoney.Amount
}

// Number is the human-readable order number. Shopify sends it as a JSON
// number, but webhook payloads from other channels quote it, so both forms
// decode.
type Number string

func (n *Number) UnmarshalJSON(data []byte) error {
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*n = Number(s)
		return nil
	}
	if string(data) == "null" {
		*n = ""
		return nil
	}
	*n = Number(data)
	return nil
}

// Customer identifies who placed the order. Phone is optional.
type Customer struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email"`
	Phone     string `json:"phone"`
}

// Address is a shipping destination. Address2 is optional.
type Address struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Address1  string `json:"address1"`
	Address2  string `json:"address2"`
	City      string `json:"city"`
	Province  string `json:"province"`
	Zip       string `json:"zip"`
	Country   string `json:"country"`
}

// LineItem is one product line within an order.
type LineItem struct {
	Title        string          `json:"title"`
	VariantTitle string          `json:"variant_title"`
	SKU          string          `json:"sku"`
	Quantity     int             `json:"quantity"`
	Price        decimal.Decimal `json:"price"`
}

// Total returns unit price times quantity. Line totals are computed, never
// stored.
func (li LineItem) Total() decimal.Decimal {
	return li.Price.Mul(decimal.NewFromInt(int64(li.Quantity)))
}

// PriceSet mirrors Shopify's money-set wrapper around an amount.
type PriceSet struct {
	ShopMoney *Money `json:"shop_money"`
}

// Money is a single currency amount inside a price set.
type Money struct {
	Amount decimal.Decimal `json:"amount"`
}
