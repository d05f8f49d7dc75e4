package http

import (
	"bytes"
	"math"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/dmehra2102/storefront/internal/cart/domain"
)

// flexDecimal accepts a JSON number or a numeric string. Anything else,
// including out-of-range values, decodes as zero.
type flexDecimal decimal.Decimal

func (f *flexDecimal) UnmarshalJSON(b []byte) error {
	s := strings.TrimSpace(string(bytes.Trim(b, `"`)))
	s = strings.Replace(s, ",", ".", 1)
	d, err := decimal.NewFromString(s)
	if err != nil {
		d = decimal.Zero
	}
	*f = flexDecimal(domain.NormalizePrice(d))
	return nil
}

// flexInt accepts a JSON number or a numeric string, truncating fractions
// and clamping to ±domain.MaxQuantity. Anything else decodes as zero.
type flexInt int

func (f *flexInt) UnmarshalJSON(b []byte) error {
	s := strings.TrimSpace(string(bytes.Trim(b, `"`)))
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) {
		v = 0
	}
	v = math.Max(-domain.MaxQuantity, math.Min(v, domain.MaxQuantity))
	*f = flexInt(int(v))
	return nil
}

type addonReq struct {
	ID    string      `json:"id"`
	Name  string      `json:"name"`
	Price flexDecimal `json:"price"`
}

type addItemReq struct {
	ProductID string      `json:"product_id"`
	Name      string      `json:"name"`
	Price     flexDecimal `json:"price"`
	Quantity  flexInt     `json:"quantity"`
	Addons    []addonReq  `json:"addons"`
	ImageURL  string      `json:"image_url"`
}

func (r addItemReq) toDomain() domain.NewItem {
	in := domain.NewItem{
		ProductID: r.ProductID,
		Name:      r.Name,
		Price:     decimal.Decimal(r.Price),
		Quantity:  int(r.Quantity),
		Addons:    make([]domain.Addon, 0, len(r.Addons)),
		ImageURL:  r.ImageURL,
	}
	for _, a := range r.Addons {
		in.Addons = append(in.Addons, domain.Addon{ID: a.ID, Name: a.Name, Price: decimal.Decimal(a.Price)})
	}
	return in
}

type updateQuantityReq struct {
	Quantity flexInt `json:"quantity"`
}

type cartResp struct {
	Items      []domain.Item   `json:"items"`
	TotalItems int             `json:"total_items"`
	Subtotal   decimal.Decimal `json:"subtotal"`
}

func toCartResp(c domain.Cart) cartResp {
	return cartResp{
		Items:      c.Items(),
		TotalItems: c.TotalItems(),
		Subtotal:   c.Subtotal(),
	}
}
