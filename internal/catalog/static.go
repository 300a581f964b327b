package catalog

import "github.com/thiop/delivery/internal/domain"

// Seed catalog served when the backend is unreachable. Mirrors the data
// the mobile app ships for offline demos.

var staticRestaurants = []domain.Restaurant{
	{ID: "r-1", Name: "Bella Napoli", Image: "https://images.thiop.app/restaurants/bella-napoli.jpg", Cuisine: "Italian", Rating: 4.7, DeliveryTime: "25-35 min", DeliveryFee: 2.99},
	{ID: "r-2", Name: "Chez Fatou", Image: "https://images.thiop.app/restaurants/chez-fatou.jpg", Cuisine: "Senegalese", Rating: 4.9, DeliveryTime: "30-40 min", DeliveryFee: 1.99},
	{ID: "r-3", Name: "Burger Spot", Image: "https://images.thiop.app/restaurants/burger-spot.jpg", Cuisine: "American", Rating: 4.3, DeliveryTime: "15-25 min", DeliveryFee: 0},
	{ID: "r-4", Name: "Sakura Sushi", Image: "https://images.thiop.app/restaurants/sakura.jpg", Cuisine: "Japanese", Rating: 4.6, DeliveryTime: "35-45 min", DeliveryFee: 3.49},
}

var staticCategories = []domain.Category{
	{ID: "c-1", Name: "Pizza", Icon: "pizza"},
	{ID: "c-2", Name: "Local", Icon: "bowl"},
	{ID: "c-3", Name: "Burgers", Icon: "burger"},
	{ID: "c-4", Name: "Sushi", Icon: "fish"},
	{ID: "c-5", Name: "Drinks", Icon: "cup"},
}

var staticMenu = []domain.MenuItem{
	{ID: "p-1", RestaurantID: "r-1", Name: "Pizza Margherita", Description: "Tomato, mozzarella, fresh basil", Price: 12.99, Category: "Pizza", Options: []string{"Small", "Large", "Extra cheese"}, Popular: true},
	{ID: "p-2", RestaurantID: "r-1", Name: "Pizza Quattro Formaggi", Description: "Four cheese blend", Price: 14.99, Category: "Pizza"},
	{ID: "p-3", RestaurantID: "r-2", Name: "Thieboudienne", Description: "Rice, fish and vegetables", Price: 10.00, Category: "Local", Popular: true},
	{ID: "p-4", RestaurantID: "r-2", Name: "Yassa Poulet", Description: "Chicken in onion-lemon sauce", Price: 10.00, Category: "Local", Popular: true},
	{ID: "p-5", RestaurantID: "r-3", Name: "Classic Cheeseburger", Description: "Beef patty, cheddar, pickles", Price: 8.49, Category: "Burgers", Options: []string{"Spicy", "Double patty"}},
	{ID: "p-6", RestaurantID: "r-3", Name: "Fries", Price: 3.49, Category: "Burgers"},
	{ID: "p-7", RestaurantID: "r-4", Name: "Salmon Nigiri Set", Description: "8 pieces", Price: 15.99, Category: "Sushi"},
	{ID: "p-8", RestaurantID: "r-4", Name: "Miso Soup", Price: 2.99, Category: "Sushi"},
}

func staticFeatured() []domain.MenuItem {
	featured := make([]domain.MenuItem, 0, len(staticMenu))
	for _, item := range staticMenu {
		if item.Popular {
			featured = append(featured, item)
		}
	}
	return featured
}

func staticMenuFor(restaurantID string) []domain.MenuItem {
	items := make([]domain.MenuItem, 0, len(staticMenu))
	for _, item := range staticMenu {
		if item.RestaurantID == restaurantID {
			items = append(items, item)
		}
	}
	return items
}
