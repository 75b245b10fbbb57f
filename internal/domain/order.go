package domain

import "time"

// OrderItem is one line of a customer order
type OrderItem struct {
	ProductName string `json:"product_name"`
	Quantity    int    `json:"quantity"`
}

// Order is the planning engine's view of a customer order: line items
// and a delivery date. Intake and presentation live outside this service.
type Order struct {
	ID           string      `json:"id"`
	Items        []OrderItem `json:"items"`
	DeliveryDate time.Time   `json:"delivery_date"`
}

// BlendComponent is one variety's share of a blended product
type BlendComponent struct {
	Variety string  `json:"variety"`
	Percent float64 `json:"percent"`
}

// Product is a sellable catalog item. Blend components are empty for
// single-variety products, in which case the product name is resolved
// against the variety catalog directly.
type Product struct {
	Name            string           `json:"name"`
	FillWeightGrams float64          `json:"fill_weight_grams"`
	Blend           []BlendComponent `json:"blend,omitempty"`
}

// Variety is a catalog entry a product resolves to
type Variety struct {
	Name     string `json:"name"`
	Cultivar string `json:"cultivar,omitempty"`
}

// PlanIssue is one non-fatal problem found while planning an order
type PlanIssue struct {
	OrderID string `json:"order_id"`
	Item    string `json:"item,omitempty"`
	Message string `json:"message"`
}

// PlanReport is the structured outcome of planning one or more orders.
// Partial success is allowed and explicit: some items may produce
// requirements while others are reported in Issues.
type PlanReport struct {
	Feasible     bool                 `json:"feasible"`
	Requirements []*RequirementRecord `json:"requirements"`
	Issues       []PlanIssue          `json:"issues,omitempty"`
}
