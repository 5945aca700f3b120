package destination

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

type landmarkPattern struct {
	pattern string // lowercase substring
	name    string
}

// landmarkPatterns is evaluated in order; the first match wins.
// Named landmarks come before places, places before generic nouns,
// so "red fort" is chosen over a bare "fort".
var landmarkPatterns = []landmarkPattern{
	// International landmarks.
	{"taj mahal", "Taj Mahal"},
	{"eiffel tower", "Eiffel Tower"},
	{"big ben", "Big Ben"},
	{"colosseum", "Colosseum"},
	{"sydney opera house", "Sydney Opera House"},
	{"statue of liberty", "Statue of Liberty"},
	{"golden gate bridge", "Golden Gate Bridge"},
	{"machu picchu", "Machu Picchu"},
	{"christ the redeemer", "Christ the Redeemer"},
	{"petra", "Petra"},
	{"angkor wat", "Angkor Wat"},
	{"mount fuji", "Mount Fuji"},

	// Indian landmarks.
	{"red fort", "Red Fort"},
	{"qutub minar", "Qutub Minar"},
	{"lotus temple", "Lotus Temple"},
	{"india gate", "India Gate"},
	{"gateway of india", "Gateway of India"},
	{"marine drive", "Marine Drive"},
	{"amber fort", "Amber Fort"},
	{"hawa mahal", "Hawa Mahal"},
	{"city palace", "City Palace"},
	{"jantar mantar", "Jantar Mantar"},
	{"mysore palace", "Mysore Palace"},
	{"ellora caves", "Ellora Caves"},
	{"ajanta caves", "Ajanta Caves"},
	{"juhu beach", "Juhu Beach"},
	{"hampi", "Hampi"},

	// Cities and regions.
	{"santorini", "Santorini"},
	{"bali", "Bali"},
	{"dubai", "Dubai"},
	{"venice", "Venice"},
	{"prague", "Prague"},
	{"barcelona", "Barcelona"},
	{"amsterdam", "Amsterdam"},
	{"istanbul", "Istanbul"},
	{"cairo", "Cairo"},
	{"moscow", "Moscow"},
	{"tokyo", "Tokyo"},
	{"kyoto", "Kyoto"},
	{"osaka", "Osaka"},
	{"seoul", "Seoul"},
	{"bangkok", "Bangkok"},
	{"singapore", "Singapore"},
	{"hong kong", "Hong Kong"},
	{"shanghai", "Shanghai"},
	{"beijing", "Beijing"},
	{"bandra", "Bandra"},
	{"andheri", "Andheri"},
	{"powai", "Powai"},
	{"malad", "Malad"},
	{"borivali", "Borivali"},
	{"thane", "Thane"},
	{"navi mumbai", "Navi Mumbai"},
	{"pune", "Pune"},
	{"nashik", "Nashik"},
	{"aurangabad", "Aurangabad"},
	{"ellora", "Ellora"},
	{"ajanta", "Ajanta"},
	{"mysore", "Mysore"},
	{"bangalore", "Bangalore"},
	{"chennai", "Chennai"},
	{"hyderabad", "Hyderabad"},
	{"kolkata", "Kolkata"},
	{"ahmedabad", "Ahmedabad"},
	{"jaipur", "Jaipur"},
	{"goa", "Goa"},
	{"kerala", "Kerala"},
	{"rajasthan", "Rajasthan"},
	{"kashmir", "Kashmir"},
	{"ladakh", "Ladakh"},
	{"himachal", "Himachal Pradesh"},
	{"manali", "Manali"},
	{"shimla", "Shimla"},
	{"darjeeling", "Darjeeling"},
	{"ooty", "Ooty"},
	{"munnar", "Munnar"},
	{"coorg", "Coorg"},
	{"mumbai", "Mumbai"},
	{"delhi", "Delhi"},

	// Generic nouns.
	{"palace", "Palace"},
	{"temple", "Temple"},
	{"fort", "Fort"},
	{"tower", "Tower"},
	{"bridge", "Bridge"},
	{"church", "Church"},
	{"mosque", "Mosque"},
	{"cathedral", "Cathedral"},
	{"museum", "Museum"},
	{"garden", "Garden"},
	{"park", "Park"},
	{"beach", "Beach"},
	{"mountain", "Mountain"},
	{"lake", "Lake"},
	{"river", "River"},
	{"valley", "Valley"},
	{"island", "Island"},
	{"monument", "Monument"},
	{"landmark", "Landmark"},
}

var stopWords = toSet(
	"The", "And", "Or", "But", "For", "Nor", "Yet", "So",
	"With", "From", "Into", "During", "Including", "Until", "Against",
	"Among", "Throughout", "Despite", "Towards", "Upon", "Concerning",
	"To", "Of", "At", "By", "In", "On", "Without", "Under", "Over",
	"Above", "Below", "Between", "Through", "Before", "After", "Since",
	"While", "Because", "Although", "If", "Unless", "When", "Where",
	"Why", "How", "What", "Which", "Who", "Whom", "Whose",
	"This", "That", "These", "Those",
)

var locationKeywords = []string{
	"landmark", "monument", "palace", "temple", "fort", "tower", "bridge",
	"church", "mosque", "cathedral", "museum", "garden", "park", "beach",
	"mountain", "lake", "river", "valley", "island", "city", "town", "village",
}

// Label guesses a human-readable location for a photo. It never returns
// an empty string unless fallback is empty.
func Label(photo PhotoRecord, fallback string) string {
	if photo.AltText != nil && *photo.AltText != "" {
		alt := *photo.AltText
		if name, ok := matchLandmark(alt); ok {
			return name
		}
		if word, ok := firstProperNoun(alt); ok {
			return word
		}
	}

	if title, ok := firstLocationTag(photo.Tags); ok {
		return title
	}

	return fallback
}

func matchLandmark(text string) (string, bool) {
	lower := strings.ToLower(text)
	for _, p := range landmarkPatterns {
		if strings.Contains(lower, p.pattern) {
			return p.name, true
		}
	}
	return "", false
}

func firstProperNoun(text string) (string, bool) {
	for _, word := range strings.Fields(text) {
		if utf8.RuneCountInString(word) <= 2 {
			continue
		}
		first, _ := utf8.DecodeRuneInString(word)
		if !unicode.IsUpper(first) {
			continue
		}
		if _, stop := stopWords[word]; stop {
			continue
		}
		return word, true
	}
	return "", false
}

func firstLocationTag(tags []Tag) (string, bool) {
	for _, tag := range tags {
		if tag.Title == "" {
			continue
		}
		if tag.Type == "landing_page" || tag.Type == "search" {
			return tag.Title, true
		}
		title := strings.ToLower(tag.Title)
		for _, kw := range locationKeywords {
			if strings.Contains(title, kw) {
				return tag.Title, true
			}
		}
	}
	return "", false
}

func toSet(words ...string) map[string]struct{} {
	set := make(map[string]struct{}, len(words))
	for _, w := range words {
		set[w] = struct{}{}
	}
	return set
}
