package orderline

// OrderLine is an immutable snapshot of a menu item at order time.
// Lines belong to exactly one order and never outlive it.
type OrderLine struct {
	ID          int64  `json:"id"`
	OrderID     int64  `json:"orderId"`
	Name        string `json:"name"`
	PriceCents  int64  `json:"price"`
	Quantity    int    `json:"quantity"`
	Category    string `json:"category"`
	Image       string `json:"image,omitempty"`
	PrepMinutes int    `json:"prepTime"`
}

// defaultPrepMinutes is assumed for lines that carry no prep time.
const defaultPrepMinutes = 15

// EffectivePrepMinutes returns the prep time used for estimates,
// falling back to the default for unset values.
func (l OrderLine) EffectivePrepMinutes() int {
	if l.PrepMinutes <= 0 {
		return defaultPrepMinutes
	}

	return l.PrepMinutes
}
