package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type OrderSubmitted struct {
	SessionID     string          `json:"session_id"`
	Customer      string          `json:"customer"`
	Phone         string          `json:"phone"`
	ServiceType   ServiceType     `json:"service_type"`
	PaymentMethod PaymentMethod   `json:"payment_method"`
	ItemCount     int             `json:"item_count"`
	Subtotal      decimal.Decimal `json:"subtotal"`
	DeliveryFee   decimal.Decimal `json:"delivery_fee"`
	Total         decimal.Decimal `json:"total"`
	Message       string          `json:"message"`
	WhatsAppURL   string          `json:"whatsapp_url"`
	SubmittedAt   time.Time       `json:"submitted_at"`
}
