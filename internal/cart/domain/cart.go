package domain

import (
	"encoding/json"
	"slices"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var newID = uuid.NewString

const (
	// MaxQuantity caps the quantity of a single line.
	MaxQuantity = 999
	// maxPriceExponent bounds the decimal exponent a price may carry.
	maxPriceExponent = 12
)

// MaxPrice is the largest unit price accepted; anything above is treated as
// invalid.
var MaxPrice = decimal.NewFromInt(1_000_000)

type Addon struct {
	ID    string          `json:"id"`
	Name  string          `json:"name"`
	Price decimal.Decimal `json:"price"`
}

type Item struct {
	ID        string          `json:"id"`
	ProductID string          `json:"product_id"`
	Name      string          `json:"name"`
	Price     decimal.Decimal `json:"price"`
	Quantity  int             `json:"quantity"`
	Addons    []Addon         `json:"addons"`
	ImageURL  string          `json:"image_url,omitempty"`
}

// NewItem is an item as requested by the client, before it gets an id.
type NewItem struct {
	ProductID string
	Name      string
	Price     decimal.Decimal
	Quantity  int
	Addons    []Addon
	ImageURL  string
}

// AddonTotal is the sum of the add-on prices of a single unit.
func (i Item) AddonTotal() decimal.Decimal {
	total := decimal.Zero
	for _, a := range i.Addons {
		total = total.Add(a.Price)
	}
	return total
}

func (i Item) UnitTotal() decimal.Decimal {
	return i.Price.Add(i.AddonTotal())
}

func (i Item) LineTotal() decimal.Decimal {
	return i.UnitTotal().Mul(decimal.NewFromInt(int64(i.Quantity)))
}

func (i Item) clone() Item {
	i.Addons = slices.Clone(i.Addons)
	return i
}

// Cart is an immutable list of items. Every mutation returns a new Cart.
type Cart struct {
	items []Item
}

func New(items ...Item) Cart {
	c := Cart{items: make([]Item, 0, len(items))}
	for _, it := range items {
		c.items = append(c.items, it.clone())
	}
	return c
}

func (c Cart) Items() []Item {
	out := make([]Item, 0, len(c.items))
	for _, it := range c.items {
		out = append(out, it.clone())
	}
	return out
}

func (c Cart) Len() int      { return len(c.items) }
func (c Cart) IsEmpty() bool { return len(c.items) == 0 }

func (c Cart) Find(id string) (Item, bool) {
	for _, it := range c.items {
		if it.ID == id {
			return it.clone(), true
		}
	}
	return Item{}, false
}

// Add appends a normalised copy of in under a fresh id.
func (c Cart) Add(in NewItem) (Cart, Item) {
	item := Item{
		ID:        newID(),
		ProductID: in.ProductID,
		Name:      in.Name,
		Price:     NormalizePrice(in.Price),
		Quantity:  normalizeQuantity(in.Quantity),
		Addons:    make([]Addon, 0, len(in.Addons)),
		ImageURL:  in.ImageURL,
	}
	for _, a := range in.Addons {
		a.Price = NormalizePrice(a.Price)
		item.Addons = append(item.Addons, a)
	}

	next := c.Items()
	next = append(next, item)
	return Cart{items: next}, item.clone()
}

func (c Cart) Remove(id string) Cart {
	next := make([]Item, 0, len(c.items))
	for _, it := range c.items {
		if it.ID != id {
			next = append(next, it.clone())
		}
	}
	return Cart{items: next}
}

// SetQuantity replaces the quantity of item id. A quantity of zero or less
// removes the item.
func (c Cart) SetQuantity(id string, quantity int) Cart {
	if quantity <= 0 {
		return c.Remove(id)
	}
	quantity = min(quantity, MaxQuantity)
	next := c.Items()
	for i := range next {
		if next[i].ID == id {
			next[i].Quantity = quantity
		}
	}
	return Cart{items: next}
}

func (c Cart) Clear() Cart {
	return Cart{items: []Item{}}
}

func (c Cart) TotalItems() int {
	total := 0
	for _, it := range c.items {
		total += it.Quantity
	}
	return total
}

func (c Cart) Subtotal() decimal.Decimal {
	total := decimal.Zero
	for _, it := range c.items {
		total = total.Add(it.LineTotal())
	}
	return total
}

type cartJSON struct {
	Items []Item `json:"items"`
}

func (c Cart) MarshalJSON() ([]byte, error) {
	return json.Marshal(cartJSON{Items: c.Items()})
}

func (c *Cart) UnmarshalJSON(b []byte) error {
	var raw cartJSON
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	*c = New(raw.Items...)
	return nil
}

// NormalizePrice maps negative, out-of-range or oddly scaled prices to zero
// and rounds the rest to cents.
func NormalizePrice(p decimal.Decimal) decimal.Decimal {
	if exp := p.Exponent(); exp > maxPriceExponent || exp < -maxPriceExponent {
		return decimal.Zero
	}
	if p.IsNegative() || p.GreaterThan(MaxPrice) {
		return decimal.Zero
	}
	return p.Round(2)
}

func normalizeQuantity(q int) int {
	if q < 1 {
		return 1
	}
	return min(q, MaxQuantity)
}
