package channels

// Wire types for the eBay Sell APIs (Fulfillment for orders, Inventory for
// stock). Only the fields the engine consumes are mapped.

// EbayOrderSearchResponse is the response from GET /sell/fulfillment/v1/order
type EbayOrderSearchResponse struct {
	Orders []EbayOrder `json:"orders"`
	Total  int         `json:"total"`
	Limit  int         `json:"limit"`
	Offset int         `json:"offset"`
	Next   string      `json:"next"`
}

// EbayOrder is one order in a search response
type EbayOrder struct {
	OrderID                string           `json:"orderId"`
	CreationDate           string           `json:"creationDate"`
	OrderFulfillmentStatus string           `json:"orderFulfillmentStatus"`
	OrderPaymentStatus     string           `json:"orderPaymentStatus"`
	Buyer                  EbayBuyer        `json:"buyer"`
	PricingSummary         EbayPricing      `json:"pricingSummary"`
	LineItems              []EbayLineItem   `json:"lineItems"`
	CancelStatus           EbayCancelStatus `json:"cancelStatus"`
}

// EbayBuyer identifies the purchasing account
type EbayBuyer struct {
	Username string `json:"username"`
}

// EbayPricing carries the order totals
type EbayPricing struct {
	Total EbayAmount `json:"total"`
}

// EbayAmount is a money value with currency
type EbayAmount struct {
	Value    string `json:"value"`
	Currency string `json:"currency"`
}

// EbayLineItem is one line of an order
type EbayLineItem struct {
	LineItemID string     `json:"lineItemId"`
	SKU        string     `json:"sku"`
	Title      string     `json:"title"`
	Quantity   int64      `json:"quantity"`
	LineItemCost EbayAmount `json:"lineItemCost"`
}

// EbayCancelStatus reports buyer-initiated cancellation state
type EbayCancelStatus struct {
	CancelState string `json:"cancelState"`
}

// EbayInventoryUpdateRequest is the body for
// PUT /sell/inventory/v1/inventory_item/{sku} quantity updates
type EbayInventoryUpdateRequest struct {
	Availability EbayAvailability `json:"availability"`
}

// EbayAvailability nests the ship-to-location quantity
type EbayAvailability struct {
	ShipToLocationAvailability EbayShipToLocation `json:"shipToLocationAvailability"`
}

// EbayShipToLocation carries the absolute available quantity
type EbayShipToLocation struct {
	Quantity int64 `json:"quantity"`
}

// EbayErrorResponse is the error envelope eBay returns on failures
type EbayErrorResponse struct {
	Errors []EbayError `json:"errors"`
}

// EbayError is one error in the envelope
type EbayError struct {
	ErrorID  int    `json:"errorId"`
	Domain   string `json:"domain"`
	Message  string `json:"message"`
	LongMessage string `json:"longMessage"`
}
