package food

import "time"

// Meal types accepted on a food log.
var mealTypes = map[string]bool{
	"breakfast": true,
	"lunch":     true,
	"dinner":    true,
	"snack":     true,
	"unknown":   true,
}

// FoodLog maps to the food_logs table.
type FoodLog struct {
	ID              int64     `json:"id"`
	UserID          int64     `json:"user_id"`
	MealType        string    `json:"meal_type"`
	FoodDescription *string   `json:"food_description"`
	SodiumContent   *float64  `json:"sodium_content"`
	Calories        *float64  `json:"calories"`
	ImageURL        *string   `json:"image_url"`
	LoggedAt        time.Time `json:"logged_at"`
}

// AnalyzeRequest is the body of POST /api/food-analysis.
type AnalyzeRequest struct {
	ImageBase64 string `json:"image_base64"`
	UserID      *int64 `json:"user_id"`
	MealType    string `json:"meal_type"`
	Description string `json:"description"`
}
