package domain

// CartMode selects how the cart coordinator reconciles state. It is fixed at
// construction time.
type CartMode string

const (
	CartModeLocal  CartMode = "local"
	CartModeServer CartMode = "server"
)

// ProductRef points at the product behind a cart line: an embedded snapshot in
// local mode, or a backend id (optionally with the populated product) in
// server mode.
type ProductRef struct {
	ID       string   `json:"id"`
	Snapshot *Product `json:"snapshot,omitempty"`
}

// MaxLineQuantity caps a single cart line.
const MaxLineQuantity = 999

// CartLine is one product in the cart. Quantity is always in
// [1, MaxLineQuantity].
type CartLine struct {
	ItemID    string     `json:"itemId"`
	Product   ProductRef `json:"product"`
	UnitPrice float64    `json:"unitPrice"`
	Quantity  int        `json:"quantity"`
}

// Subtotal is UnitPrice x Quantity.
func (l CartLine) Subtotal() float64 {
	return l.UnitPrice * float64(l.Quantity)
}

// Cart is an ordered sequence of lines in insertion order. Totals are always
// derived from the lines.
type Cart struct {
	Lines []CartLine `json:"lines"`
}

// Total is the sum of line subtotals.
func (c Cart) Total() float64 {
	var total float64
	for _, l := range c.Lines {
		total += l.Subtotal()
	}
	return total
}

// TotalItems is the sum of line quantities.
func (c Cart) TotalItems() int {
	n := 0
	for _, l := range c.Lines {
		n += l.Quantity
	}
	return n
}

// IsEmpty reports whether the cart has no lines.
func (c Cart) IsEmpty() bool {
	return len(c.Lines) == 0
}

// Index returns the position of the line with the given item id.
func (c Cart) Index(itemID string) (int, bool) {
	for i, l := range c.Lines {
		if l.ItemID == itemID {
			return i, true
		}
	}
	return -1, false
}

// Clone returns a deep copy so callers never alias coordinator state.
func (c Cart) Clone() Cart {
	out := Cart{Lines: make([]CartLine, len(c.Lines))}
	for i, l := range c.Lines {
		if l.Product.Snapshot != nil {
			snap := l.Product.Snapshot.Clone()
			l.Product.Snapshot = &snap
		}
		out.Lines[i] = l
	}
	return out
}
