package domain

import "time"

// Memory is a journal entry about a day spent together
type Memory struct {
	ID          int64
	Date        string // YYYY-MM-DD
	Title       string
	Description string
	PhotoURI    string // opaque reference, the file itself lives elsewhere
	CreatedAt   time.Time
}

// FavoriteCategory groups likes and dislikes
type FavoriteCategory string

const (
	FavoriteFood    FavoriteCategory = "food"
	FavoriteDrinks  FavoriteCategory = "drinks"
	FavoriteMusic   FavoriteCategory = "music"
	FavoriteMovies  FavoriteCategory = "movies"
	FavoriteTravel  FavoriteCategory = "travel"
	FavoriteGifts   FavoriteCategory = "gifts"
	FavoriteHobbies FavoriteCategory = "hobbies"
	FavoriteWords   FavoriteCategory = "words"
)

// FavoriteCategories lists every category in display order
var FavoriteCategories = []FavoriteCategory{
	FavoriteFood, FavoriteDrinks, FavoriteMusic, FavoriteMovies,
	FavoriteTravel, FavoriteGifts, FavoriteHobbies, FavoriteWords,
}

var favoriteLabels = map[FavoriteCategory]string{
	FavoriteFood:    "음식",
	FavoriteDrinks:  "음료",
	FavoriteMusic:   "음악",
	FavoriteMovies:  "영화",
	FavoriteTravel:  "여행",
	FavoriteGifts:   "선물",
	FavoriteHobbies: "취미",
	FavoriteWords:   "말 / 표현",
}

// FavoriteCategoryFromID maps a stored id to a category, unknown ids become food
func FavoriteCategoryFromID(id string) FavoriteCategory {
	if _, ok := favoriteLabels[FavoriteCategory(id)]; ok {
		return FavoriteCategory(id)
	}
	for c, label := range favoriteLabels {
		if label == id {
			return c
		}
	}
	return FavoriteFood
}

// Label returns the Korean display label
func (c FavoriteCategory) Label() string {
	return favoriteLabels[FavoriteCategoryFromID(string(c))]
}

// Favorite is something the partner likes or dislikes
type Favorite struct {
	ID          int64
	Category    FavoriteCategory
	Title       string
	Description string
	PhotoURI    string
	IsDislike   bool
	CreatedAt   time.Time
}

// Emoji returns 👍 for likes and 👎 for dislikes
func (f *Favorite) Emoji() string {
	if f.IsDislike {
		return "👎"
	}
	return "👍"
}
