package pricing

// DeliveryMethod is a selectable shipping option.
type DeliveryMethod struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	ETA  string `json:"eta"`
	Fee  Money  `json:"fee"`
}

// DefaultDeliveryMethods lists the storefront's shipping options.
var DefaultDeliveryMethods = []DeliveryMethod{
	{ID: "instant", Name: "Instant delivery", ETA: "1-2 hours", Fee: 20000},
	{ID: "fast", Name: "Fast delivery", ETA: "1-3 days", Fee: 12000},
	{ID: "regular", Name: "Regular delivery", ETA: "3-5 days", Fee: 5000},
}

// FindDelivery returns the method with id.
func FindDelivery(methods []DeliveryMethod, id string) (DeliveryMethod, bool) {
	for _, m := range methods {
		if m.ID == id {
			return m, true
		}
	}
	return DeliveryMethod{}, false
}
