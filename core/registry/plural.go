package registry

import "strings"

// Pluralize returns the plural form of a model identity, used to derive
// its collection name. Simple English rules.
func Pluralize(word string) string {
	if word == "" {
		return ""
	}

	if plural, ok := irregularPlurals[strings.ToLower(word)]; ok {
		// Preserve case of first letter
		if word[0] >= 'A' && word[0] <= 'Z' {
			return strings.ToUpper(plural[:1]) + plural[1:]
		}
		return plural
	}

	lower := strings.ToLower(word)

	// Words ending in 's', 'x', 'z', 'ch', 'sh' → add 'es'
	if strings.HasSuffix(lower, "s") ||
		strings.HasSuffix(lower, "x") ||
		strings.HasSuffix(lower, "z") ||
		strings.HasSuffix(lower, "ch") ||
		strings.HasSuffix(lower, "sh") {
		return word + "es"
	}

	// Words ending in consonant + 'y' → change 'y' to 'ies'
	if strings.HasSuffix(lower, "y") && len(word) > 1 {
		secondLast := lower[len(lower)-2]
		if !isVowel(rune(secondLast)) {
			return word[:len(word)-1] + "ies"
		}
	}

	// Words ending in 'f' or 'fe' → change to 'ves'
	if strings.HasSuffix(lower, "fe") {
		return word[:len(word)-2] + "ves"
	}
	if strings.HasSuffix(lower, "f") {
		return word[:len(word)-1] + "ves"
	}

	return word + "s"
}

func isVowel(r rune) bool {
	switch r {
	case 'a', 'e', 'i', 'o', 'u', 'A', 'E', 'I', 'O', 'U':
		return true
	default:
		return false
	}
}

// Common irregular plurals.
var irregularPlurals = map[string]string{
	"person": "people",
	"man":    "men",
	"woman":  "women",
	"child":  "children",
	"index":  "indices",
	"status": "statuses",
	"datum":  "data",
	"medium": "media",
	"schema": "schemas",
}
