package classify

import (
	"reflect"
	"testing"
)

func TestClassifyUsername(t *testing.T) {
	tags := Classify("testuser")
	want := []Tag{
		{Category: CategorySocial, Subtype: SubtypeUsername},
		{Category: CategoryBulk, Subtype: SubtypeUsername},
	}
	if !reflect.DeepEqual(tags, want) {
		t.Fatalf("expected %v, got %v", want, tags)
	}
}

func TestClassifyShortenedURL(t *testing.T) {
	for _, q := range []string{
		"https://bit.ly/example",
		"http://tinyurl.com/abc123",
		"https://t.co/xyz",
	} {
		tags := Classify(q)
		if len(tags) != 1 {
			t.Fatalf("%q: expected one tag, got %v", q, tags)
		}
		if tags[0].Category != CategoryUtility || tags[0].Subtype != SubtypeURLExpansion {
			t.Fatalf("%q: expected url_expansion, got %v", q, tags[0])
		}
	}
}

func TestClassifyImageURL(t *testing.T) {
	tags := Classify("https://example.com/image.jpg")
	if len(tags) != 1 {
		t.Fatalf("expected one tag, got %v", tags)
	}
	if tags[0].Category != CategoryImage || tags[0].Subtype != SubtypeReverseImage {
		t.Fatalf("expected reverse_image, got %v", tags[0])
	}
}

func TestClassifyEmail(t *testing.T) {
	tags := Classify("john.doe@example.com")
	if len(tags) != 1 {
		t.Fatalf("expected one tag, got %v", tags)
	}
	want := Tag{Category: CategorySocial, Platform: "linkedin", Subtype: SubtypeEmailLookup}
	if tags[0] != want {
		t.Fatalf("expected %v, got %v", want, tags[0])
	}
}

// A 12-digit string also matches the username shape, and the username rule
// runs first. This pins the precedence on purpose: trainer code dispatch
// needs an explicit --type pokemon.
func TestClassifyTwelveDigitsIsUsername(t *testing.T) {
	tags := Classify("123456789012")
	want := []Tag{
		{Category: CategorySocial, Subtype: SubtypeUsername},
		{Category: CategoryBulk, Subtype: SubtypeUsername},
	}
	if !reflect.DeepEqual(tags, want) {
		t.Fatalf("expected username tags, got %v", tags)
	}
}

func TestClassifyFallback(t *testing.T) {
	// Whitespace breaks the username shape; the default branch still
	// returns the username pair.
	tags := Classify("some free text")
	want := []Tag{
		{Category: CategorySocial, Subtype: SubtypeUsername},
		{Category: CategoryBulk, Subtype: SubtypeUsername},
	}
	if !reflect.DeepEqual(tags, want) {
		t.Fatalf("expected fallback username tags, got %v", tags)
	}
}

func TestClassifyDeterministic(t *testing.T) {
	for _, q := range []string{"testuser", "https://bit.ly/x", "a@b.com", "https://example.com/p.png"} {
		first := Classify(q)
		for i := 0; i < 5; i++ {
			if !reflect.DeepEqual(Classify(q), first) {
				t.Fatalf("%q: classification not deterministic", q)
			}
		}
	}
}

func TestTagRoundTrip(t *testing.T) {
	tags := []Tag{
		{Category: CategorySocial, Subtype: SubtypeUsername},
		{Category: CategorySocial, Platform: "linkedin", Subtype: SubtypeEmailLookup},
		{Category: CategoryUtility, Subtype: SubtypeTrainerCode},
	}
	for _, tag := range tags {
		parsed, err := ParseTag(tag.String())
		if err != nil {
			t.Fatalf("%v: %v", tag, err)
		}
		if parsed != tag {
			t.Fatalf("round trip changed tag: %v -> %v", tag, parsed)
		}
	}
}

func TestParseTagRejectsMalformed(t *testing.T) {
	for _, s := range []string{"", "social", "social:username", ":x:", "social:gab:"} {
		if _, err := ParseTag(s); err == nil {
			t.Fatalf("expected error for %q", s)
		}
	}
}

func TestIsURL(t *testing.T) {
	cases := map[string]bool{
		"https://example.com/a": true,
		"http://foo.bar":        true,
		"example.com/path":      true,
		"plainuser":             false,
	}
	for q, want := range cases {
		if got := IsURL(q); got != want {
			t.Fatalf("IsURL(%q) = %v, want %v", q, got, want)
		}
	}
}
