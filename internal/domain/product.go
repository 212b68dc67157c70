package domain

// Product is the catalog record the pricing engine validates line items
// against. Add-ons are products themselves, referenced by ID.
type Product struct {
	ID                          string   `json:"id"`
	Title                       string   `json:"title"`
	Price                       int64    `json:"price"`
	RequiredAddOns              []string `json:"required_add_ons"`
	AllowsComponents            bool     `json:"allows_components"`
	AllowsCustomPersonalization bool     `json:"allows_custom_personalization"`
}
