package entities

// Category is one of the fixed trivia categories offered during game setup.
type Category struct {
	Key   string // short identifier used in callback data and prompts
	Title string // display name shown on keyboards and in messages
}

// Categories lists the trivia categories in keyboard order.
var Categories = []Category{
	{Key: "general", Title: "General Knowledge"},
	{Key: "science", Title: "Science & Technology"},
	{Key: "history", Title: "History"},
	{Key: "geography", Title: "Geography"},
	{Key: "sports", Title: "Sports"},
	{Key: "entertainment", Title: "Movies & TV"},
	{Key: "music", Title: "Music"},
	{Key: "literature", Title: "Literature"},
}

// CategoryTitle resolves a category key to its display name. Unknown keys
// fall back to the key itself so a stale callback still renders something.
func CategoryTitle(key string) string {
	for _, c := range Categories {
		if c.Key == key {
			return c.Title
		}
	}
	return key
}

// ValidCategory reports whether key is one of the configured categories.
func ValidCategory(key string) bool {
	for _, c := range Categories {
		if c.Key == key {
			return true
		}
	}
	return false
}
