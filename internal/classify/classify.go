// Package classify turns a raw query string into the structured tags that
// select which extractor services run for it.
package classify

import (
	"fmt"
	"regexp"
	"strings"
)

// Category is the coarse grouping of a lookup.
type Category string

const (
	CategorySocial  Category = "social"
	CategoryBulk    Category = "bulk"
	CategoryImage   Category = "image"
	CategoryUtility Category = "utility"
)

// Tag selects extractors for one kind of lookup. Platform narrows a
// category to a single service ("gab", "linkedin", ...); empty means every
// service registered for the category.
type Tag struct {
	Category Category `json:"category"`
	Platform string   `json:"platform,omitempty"`
	Subtype  string   `json:"subtype"`
}

// Well-known subtypes.
const (
	SubtypeUsername     = "username"
	SubtypeHashtag      = "hashtag"
	SubtypeReverseImage = "reverse_image"
	SubtypeURLExpansion = "url_expansion"
	SubtypeEmailLookup  = "email_lookup"
	SubtypeTrainerCode  = "trainer_code"
)

// String renders the wire form "category:platform:subtype" used by the CLI
// and the web API.
func (t Tag) String() string {
	return fmt.Sprintf("%s:%s:%s", t.Category, t.Platform, t.Subtype)
}

// ParseTag parses the wire form produced by Tag.String. The platform
// segment may be empty.
func ParseTag(s string) (Tag, error) {
	parts := strings.Split(s, ":")
	if len(parts) != 3 || parts[0] == "" || parts[2] == "" {
		return Tag{}, fmt.Errorf("malformed tag %q: want category:platform:subtype", s)
	}
	return Tag{Category: Category(parts[0]), Platform: parts[1], Subtype: parts[2]}, nil
}

var (
	shortenedHosts  = []string{"bit.ly", "tinyurl.com", "t.co", "goo.gl", "ow.ly"}
	imageExtensions = []string{".jpg", ".jpeg", ".png", ".gif", ".webp", ".bmp"}
	usernameShape   = regexp.MustCompile(`^[a-zA-Z0-9_.-]+$`)
	twelveDigits    = regexp.MustCompile(`^\d{12}$`)
)

// Classify inspects the query and returns the tags to dispatch, evaluated
// in a fixed precedence order. The first matching rule wins; no rule falls
// through to the next. The function is pure: the same input always yields
// the same tag sequence.
func Classify(query string) []Tag {
	switch {
	case isShortenedURL(query):
		return []Tag{{Category: CategoryUtility, Subtype: SubtypeURLExpansion}}
	case IsURL(query) && isImageURL(query):
		return []Tag{{Category: CategoryImage, Subtype: SubtypeReverseImage}}
	case looksLikeUsername(query):
		return usernameTags()
	case strings.Contains(query, "@") && strings.Contains(query, "."):
		return []Tag{{Category: CategorySocial, Platform: "linkedin", Subtype: SubtypeEmailLookup}}
	case twelveDigits.MatchString(query):
		return []Tag{{Category: CategoryUtility, Subtype: SubtypeTrainerCode}}
	default:
		return usernameTags()
	}
}

func usernameTags() []Tag {
	return []Tag{
		{Category: CategorySocial, Subtype: SubtypeUsername},
		{Category: CategoryBulk, Subtype: SubtypeUsername},
	}
}

// IsURL reports whether the query has a scheme or a common TLD substring.
func IsURL(query string) bool {
	if strings.HasPrefix(query, "http://") || strings.HasPrefix(query, "https://") {
		return true
	}
	for _, tld := range []string{".com", ".org", ".net"} {
		if strings.Contains(query, tld) {
			return true
		}
	}
	return false
}

func isShortenedURL(query string) bool {
	for _, host := range shortenedHosts {
		if strings.Contains(query, host) {
			return true
		}
	}
	return false
}

func isImageURL(query string) bool {
	lower := strings.ToLower(query)
	for _, ext := range imageExtensions {
		if strings.HasSuffix(lower, ext) {
			return true
		}
	}
	return false
}

func looksLikeUsername(query string) bool {
	return len(query) >= 2 && len(query) <= 30 &&
		usernameShape.MatchString(query) && !IsURL(query)
}
