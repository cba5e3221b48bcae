package store

import "github.com/tair/pos-core/internal/domain"

// DemoProducts is the sample catalog used when demo seeding is enabled
func DemoProducts() []domain.Product {
	return []domain.Product{
		{ID: 10, Name: "Fuji Apple", SKU: "FRESH-001", Price: 8.50, Cost: 4.00, Stock: 50, AlertThreshold: 10, Category: domain.CategoryFresh, Tags: []string{"fruit", "weighed"}, Image: "https://placehold.co/200x200/ff9999/ffffff?text=Apple"},
		{ID: 12, Name: "Homemade Pork Bun", SKU: "HOME-001", Price: 2.50, Cost: 0.80, Stock: 20, AlertThreshold: 5, Category: domain.CategoryHomemade, Tags: []string{"breakfast", "hot"}, Image: "https://placehold.co/200x200/e6ccb3/000000?text=Bun"},
		{ID: 101, Name: "Coca-Cola 330ml", SKU: "690123456789", Price: 3.00, Cost: 1.80, Stock: 142, AlertThreshold: 24, Category: domain.CategoryDrinks, Tags: []string{"beverage", "soda"}, Image: "https://picsum.photos/id/400/100/100"},
		{ID: 102, Name: "Spring Water 550ml", SKU: "690123456790", Price: 2.00, Cost: 0.80, Stock: 8, AlertThreshold: 24, Category: domain.CategoryDrinks, Tags: []string{"beverage", "water"}, Image: "https://picsum.photos/id/402/100/100"},
		{ID: 201, Name: "Potato Chips Original", SKU: "692123456788", Price: 7.50, Cost: 4.50, Stock: 12, AlertThreshold: 15, Category: domain.CategorySnacks, Tags: []string{"snack"}, Image: "https://picsum.photos/id/401/100/100"},
		{ID: 301, Name: "Cigarettes (hard pack)", SKU: "690102800001", Price: 45.00, Cost: 38.00, Stock: 5, AlertThreshold: 5, Category: domain.CategoryTobacco, Tags: []string{"tobacco"}, Image: "https://picsum.photos/id/407/100/100"},
		{ID: 401, Name: "Lighter", SKU: "200102800001", Price: 1.00, Cost: 0.20, Stock: 200, AlertThreshold: 10, Category: domain.CategoryDaily, Tags: []string{"daily goods"}, Image: "https://picsum.photos/id/409/100/100"},
	}
}

// DemoExpenses are the sample expenses used when demo seeding is enabled
func DemoExpenses() []domain.Expense {
	return []domain.Expense{
		{ID: 1, Name: "October electricity", Amount: 320.50, Date: "2023-10-01", Category: domain.ExpenseUtilities},
		{ID: 2, Name: "Bottled water delivery", Amount: 45.00, Date: "2023-10-15", Category: domain.ExpenseOther},
	}
}
