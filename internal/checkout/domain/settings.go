package domain

import "github.com/shopspring/decimal"

const DefaultWhatsAppNumber = "5521979917408"

// Settings are the store-wide values checkout reads but never writes.
type Settings struct {
	DeliveryFee    decimal.Decimal `json:"delivery_fee"`
	WhatsAppNumber string          `json:"whatsapp_number"`
}

func DefaultSettings() Settings {
	return Settings{DeliveryFee: decimal.Zero, WhatsAppNumber: DefaultWhatsAppNumber}
}

// Quote is the money summary shown next to the form.
type Quote struct {
	ServiceType ServiceType     `json:"service_type"`
	Subtotal    decimal.Decimal `json:"subtotal"`
	DeliveryFee decimal.Decimal `json:"delivery_fee"`
	Total       decimal.Decimal `json:"total"`
}

// NewQuote charges the delivery fee unless the order is picked up.
func NewQuote(subtotal decimal.Decimal, s Settings, st ServiceType) Quote {
	fee := s.DeliveryFee
	if fee.IsNegative() || st == Pickup {
		fee = decimal.Zero
	}
	return Quote{
		ServiceType: st,
		Subtotal:    subtotal,
		DeliveryFee: fee,
		Total:       subtotal.Add(fee),
	}
}
