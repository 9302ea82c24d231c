package catalog

// Service is a bookable salon service.
type Service struct {
	ID              int     `json:"id"`
	Name            string  `json:"name"`
	Price           float64 `json:"price,omitempty"`
	DurationMinutes int     `json:"duration_minutes,omitempty"`
}

// Stylist is a staff member a booking can be pinned to.
type Stylist struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// Product is an orderable retail product.
type Product struct {
	ID      int     `json:"id"`
	Name    string  `json:"name"`
	Price   float64 `json:"price,omitempty"`
	InStock bool    `json:"in_stock,omitempty"`
}

// Class is an admission target in the education vertical.
type Class struct {
	ID       int    `json:"id"`
	Name     string `json:"name"`
	Capacity int    `json:"capacity,omitempty"`
}
