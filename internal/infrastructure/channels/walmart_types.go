package channels

// Wire types for the Walmart Marketplace APIs. Only the fields the engine
// consumes are mapped.

// WalmartOrderListResponse is the response from GET /v3/orders
type WalmartOrderListResponse struct {
	List WalmartOrderList `json:"list"`
}

// WalmartOrderList wraps the order elements and paging metadata
type WalmartOrderList struct {
	Meta     WalmartListMeta       `json:"meta"`
	Elements WalmartOrderElements  `json:"elements"`
}

// WalmartListMeta carries paging info
type WalmartListMeta struct {
	TotalCount int    `json:"totalCount"`
	NextCursor string `json:"nextCursor"`
}

// WalmartOrderElements wraps the order array
type WalmartOrderElements struct {
	Order []WalmartOrder `json:"order"`
}

// WalmartOrder is one purchase order
type WalmartOrder struct {
	PurchaseOrderID string             `json:"purchaseOrderId"`
	OrderDate       int64              `json:"orderDate"` // epoch millis
	CustomerName    string             `json:"customerName"`
	OrderLines      WalmartOrderLines  `json:"orderLines"`
}

// WalmartOrderLines wraps the line array
type WalmartOrderLines struct {
	OrderLine []WalmartOrderLine `json:"orderLine"`
}

// WalmartOrderLine is one line of a purchase order
type WalmartOrderLine struct {
	LineNumber string              `json:"lineNumber"`
	Item       WalmartItem         `json:"item"`
	Qty        WalmartQuantity     `json:"orderLineQuantity"`
	Charges    WalmartCharges      `json:"charges"`
	Statuses   WalmartLineStatuses `json:"orderLineStatuses"`
}

// WalmartItem identifies the listed product
type WalmartItem struct {
	SKU         string `json:"sku"`
	ProductName string `json:"productName"`
}

// WalmartQuantity is a unit/amount pair; amount is a numeric string
type WalmartQuantity struct {
	UnitOfMeasurement string `json:"unitOfMeasurement"`
	Amount            string `json:"amount"`
}

// WalmartCharges wraps the line charges
type WalmartCharges struct {
	Charge []WalmartCharge `json:"charge"`
}

// WalmartCharge is one charge on a line
type WalmartCharge struct {
	ChargeType   string              `json:"chargeType"`
	ChargeAmount WalmartChargeAmount `json:"chargeAmount"`
}

// WalmartChargeAmount is a money value with currency
type WalmartChargeAmount struct {
	Currency string  `json:"currency"`
	Amount   float64 `json:"amount"`
}

// WalmartLineStatuses wraps the per-line status array
type WalmartLineStatuses struct {
	OrderLineStatus []WalmartLineStatus `json:"orderLineStatus"`
}

// WalmartLineStatus is one status entry for a line
type WalmartLineStatus struct {
	Status string `json:"status"`
}

// WalmartInventoryUpdateRequest is the body for PUT /v3/inventory
type WalmartInventoryUpdateRequest struct {
	SKU      string          `json:"sku"`
	Quantity WalmartQuantity `json:"quantity"`
}

// WalmartErrorResponse is the error envelope Walmart returns on failures
type WalmartErrorResponse struct {
	Errors WalmartErrors `json:"errors"`
}

// WalmartErrors wraps the error array
type WalmartErrors struct {
	Error []WalmartError `json:"error"`
}

// WalmartError is one error in the envelope
type WalmartError struct {
	Code        string `json:"code"`
	Description string `json:"description"`
}
