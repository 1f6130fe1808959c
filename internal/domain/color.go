package domain

import (
	"strings"

	"github.com/lucasb-eyer/go-colorful"
)

const (
	// ColorAuto marks automatically generated anniversaries
	ColorAuto = "#F5E6F0"
	// ColorBirthdayFallback is used for birthdays without a usable colour
	ColorBirthdayFallback = "#F0E6F5"
	// ColorDefaultFallback is used for everything else, and for empty days
	ColorDefaultFallback = "#F5F0E6"
)

// Palette is the set of pastel colours offered when creating an anniversary
var Palette = []string{
	"#F5E6F0",
	"#F0E6F5",
	"#F5F0E6",
	"#E6F5F0",
	"#E6F0F5",
	"#F5E6E6",
	"#F5F5E6",
	"#E6E6F5",
}

// ParseColor validates a hex colour and returns it as upper-case #RRGGBB.
// #RGB and #AARRGGBB are accepted; alpha is dropped.
func ParseColor(s string) (string, bool) {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "#") {
		return "", false
	}
	hex := s[1:]
	switch len(hex) {
	case 3, 6:
	case 8:
		hex = hex[2:]
	default:
		return "", false
	}
	if strings.Trim(strings.ToLower(hex), "0123456789abcdef") != "" {
		return "", false
	}
	c, err := colorful.Hex("#" + hex)
	if err != nil {
		return "", false
	}
	return strings.ToUpper(c.Hex()), true
}

// FallbackColor returns the colour used when an item has none
func FallbackColor(c Category) string {
	if CategoryFromID(int(c)) == CategoryBirthday {
		return ColorBirthdayFallback
	}
	return ColorDefaultFallback
}

// ResolveColor returns the normalised colour or the category fallback
func ResolveColor(color string, c Category) string {
	if hex, ok := ParseColor(color); ok {
		return hex
	}
	return FallbackColor(c)
}

type namedColor struct {
	name string
	hex  string
}

// cssColors are the CSS3 named colours calendar clients are expected to
// know, weighted towards the light tints the palette uses
var cssColors = []namedColor{
	{"white", "#FFFFFF"}, {"snow", "#FFFAFA"}, {"ivory", "#FFFFF0"},
	{"floralwhite", "#FFFAF0"}, {"whitesmoke", "#F5F5F5"}, {"ghostwhite", "#F8F8FF"},
	{"seashell", "#FFF5EE"}, {"linen", "#FAF0E6"}, {"oldlace", "#FDF5E6"},
	{"antiquewhite", "#FAEBD7"}, {"beige", "#F5F5DC"}, {"cornsilk", "#FFF8DC"},
	{"lavenderblush", "#FFF0F5"}, {"mistyrose", "#FFE4E1"}, {"lavender", "#E6E6FA"},
	{"thistle", "#D8BFD8"}, {"plum", "#DDA0DD"}, {"violet", "#EE82EE"},
	{"orchid", "#DA70D6"}, {"pink", "#FFC0CB"}, {"lightpink", "#FFB6C1"},
	{"hotpink", "#FF69B4"}, {"honeydew", "#F0FFF0"}, {"mintcream", "#F5FFFA"},
	{"azure", "#F0FFFF"}, {"aliceblue", "#F0F8FF"}, {"lightcyan", "#E0FFFF"},
	{"paleturquoise", "#AFEEEE"}, {"powderblue", "#B0E0E6"}, {"lightblue", "#ADD8E6"},
	{"skyblue", "#87CEEB"}, {"lightyellow", "#FFFFE0"}, {"lemonchiffon", "#FFFACD"},
	{"lightgoldenrodyellow", "#FAFAD2"}, {"papayawhip", "#FFEFD5"}, {"blanchedalmond", "#FFEBCD"},
	{"bisque", "#FFE4C4"}, {"moccasin", "#FFE4B5"}, {"peachpuff", "#FFDAB9"},
	{"wheat", "#F5DEB3"}, {"palegreen", "#98FB98"}, {"lightgreen", "#90EE90"},
	{"aquamarine", "#7FFFD4"}, {"lightsalmon", "#FFA07A"}, {"salmon", "#FA8072"},
	{"lightcoral", "#F08080"}, {"coral", "#FF7F50"}, {"tomato", "#FF6347"},
	{"red", "#FF0000"}, {"orange", "#FFA500"}, {"gold", "#FFD700"},
	{"yellow", "#FFFF00"}, {"green", "#008000"}, {"blue", "#0000FF"},
	{"navy", "#000080"}, {"purple", "#800080"}, {"silver", "#C0C0C0"},
	{"gray", "#808080"}, {"black", "#000000"},
}

// CSSColorName returns the CSS3 colour name perceptually closest to a hex
// colour, the form the iCalendar COLOR property takes. Blank when the
// colour does not parse.
func CSSColorName(color string) string {
	hex, ok := ParseColor(color)
	if !ok {
		return ""
	}
	c, _ := colorful.Hex(hex)

	best, bestDist := "", 0.0
	for _, nc := range cssColors {
		named, err := colorful.Hex(nc.hex)
		if err != nil {
			continue
		}
		if d := c.DistanceLab(named); best == "" || d < bestDist {
			best, bestDist = nc.name, d
		}
	}
	return best
}
