package domain

// Domain events carry routing/contact data only; downstream notification
// logic re-derives content from the event type.

type OrderPlacedEvent struct {
	OrderID             string `json:"orderId"`
	CustomerEmail       string `json:"customerEmail"`
	CustomerDeviceToken string `json:"customerDeviceToken"`
	CustomerPhoneNumber string `json:"customerPhoneNumber"`
}

type OrderCancelledEvent struct {
	OrderID             string `json:"orderId"`
	CustomerEmail       string `json:"customerEmail"`
	CustomerDeviceToken string `json:"customerDeviceToken"`
	CustomerPhoneNumber string `json:"customerPhoneNumber"`
}
