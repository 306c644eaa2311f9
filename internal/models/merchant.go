package models

import "time"

var MerchantCategories = []string{
	"Supermarket",
	"Restaurant",
	"Pharmacy",
	"Gas Station",
	"Clothing Store",
	"Electronics",
	"Bakery",
	"Bookstore",
	"Gym",
	"Pet Shop",
	"Cosmetics",
	"Building Materials",
}

type Merchant struct {
	ID        int64
	Name      string
	Category  string
	Document  string
	CreatedAt time.Time
}
