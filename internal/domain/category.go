package domain

// Category classifies a user event
type Category int

const (
	CategoryAnniversary Category = 1 // 기념일
	CategoryBirthday    Category = 2 // 생일
	CategoryDate        Category = 3 // 데이트
	CategoryImportant   Category = 4 // 중요한 날
)

// Categories lists every category in display order
var Categories = []Category{CategoryAnniversary, CategoryBirthday, CategoryDate, CategoryImportant}

// CategoryFromID maps a stored id to a category, unknown ids become Anniversary
func CategoryFromID(id int) Category {
	switch c := Category(id); c {
	case CategoryAnniversary, CategoryBirthday, CategoryDate, CategoryImportant:
		return c
	default:
		return CategoryAnniversary
	}
}

// ID returns the stored integer id
func (c Category) ID() int {
	return int(CategoryFromID(int(c)))
}

// Label returns the Korean display label
func (c Category) Label() string {
	switch CategoryFromID(int(c)) {
	case CategoryBirthday:
		return "생일"
	case CategoryDate:
		return "데이트"
	case CategoryImportant:
		return "중요한 날"
	default:
		return "기념일"
	}
}

// Emoji returns emoji for the category
func (c Category) Emoji() string {
	switch CategoryFromID(int(c)) {
	case CategoryBirthday:
		return "🎂"
	case CategoryDate:
		return "💑"
	case CategoryImportant:
		return "⭐"
	default:
		return "💝"
	}
}

// ParseCategory accepts an id, an English name or a Korean label
func ParseCategory(s string) (Category, bool) {
	switch s {
	case "1", "anniversary", "기념일":
		return CategoryAnniversary, true
	case "2", "birthday", "생일":
		return CategoryBirthday, true
	case "3", "date", "데이트":
		return CategoryDate, true
	case "4", "important", "중요", "중요한날", "중요한 날":
		return CategoryImportant, true
	}
	return CategoryAnniversary, false
}

// Icon is the decorative icon id shown next to an anniversary
type Icon string

const (
	IconCake    Icon = "cake"
	IconBalloon Icon = "balloon"
	IconHeart   Icon = "heart"
	IconStar    Icon = "star"
	IconFood    Icon = "food"
	IconDrink   Icon = "drink"
	IconMovie   Icon = "movie"
	IconMusic   Icon = "music"
	IconHobby   Icon = "hobby"
	IconChat    Icon = "chat"
	IconBurger  Icon = "burger"
)

// Icons lists every icon in picker order
var Icons = []Icon{IconCake, IconBalloon, IconHeart, IconStar, IconFood, IconDrink, IconMovie, IconMusic, IconHobby, IconChat, IconBurger}

var iconLabels = map[Icon]string{
	IconCake:    "케이크",
	IconBalloon: "풍선",
	IconHeart:   "하트",
	IconStar:    "별",
	IconFood:    "맛있는 날",
	IconDrink:   "카페/술",
	IconMovie:   "영화/공연",
	IconMusic:   "음악",
	IconHobby:   "취미",
	IconChat:    "대화",
	IconBurger:  "간편식",
}

var iconEmoji = map[Icon]string{
	IconCake:    "🎂",
	IconBalloon: "🎈",
	IconHeart:   "❤️",
	IconStar:    "⭐",
	IconFood:    "🍽",
	IconDrink:   "☕",
	IconMovie:   "🎬",
	IconMusic:   "🎵",
	IconHobby:   "🎨",
	IconChat:    "💬",
	IconBurger:  "🍔",
}

// IconFromID maps a stored id to an icon, unknown ids become cake
func IconFromID(id string) Icon {
	if _, ok := iconLabels[Icon(id)]; ok {
		return Icon(id)
	}
	return IconCake
}

// Label returns the Korean display label
func (i Icon) Label() string {
	return iconLabels[IconFromID(string(i))]
}

// Emoji returns emoji for the icon
func (i Icon) Emoji() string {
	return iconEmoji[IconFromID(string(i))]
}
