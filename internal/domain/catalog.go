package domain

type Restaurant struct {
	ID           string  `json:"id"`
	Name         string  `json:"name"`
	Image        string  `json:"image,omitempty"`
	Cuisine      string  `json:"cuisine,omitempty"`
	Rating       float64 `json:"rating,omitempty"`
	DeliveryTime string  `json:"deliveryTime,omitempty"`
	DeliveryFee  float64 `json:"deliveryFee"`
}

type Category struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Icon string `json:"icon,omitempty"`
}

type MenuItem struct {
	ID           string   `json:"id"`
	RestaurantID string   `json:"restaurantId,omitempty"`
	Name         string   `json:"name"`
	Description  string   `json:"description,omitempty"`
	Price        float64  `json:"price"`
	Image        string   `json:"image,omitempty"`
	Category     string   `json:"category,omitempty"`
	Options      []string `json:"options,omitempty"`
	Popular      bool     `json:"popular,omitempty"`
}

type User struct {
	ID    int    `json:"id"`
	Name  string `json:"name"`
	Login string `json:"login"`
	Email string `json:"email,omitempty"`
}
