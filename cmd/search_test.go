package cmd

import (
	"testing"

	"github.com/kayz/osprey/internal/classify"
)

func TestTagsForTypeUsername(t *testing.T) {
	tags, err := tagsForType("username", "someone", nil)
	if err != nil {
		t.Fatal(err)
	}
	if len(tags) != 2 {
		t.Fatalf("expected social plus bulk, got %v", tags)
	}
	if tags[0].Category != classify.CategorySocial || tags[1].Category != classify.CategoryBulk {
		t.Fatalf("unexpected categories: %v", tags)
	}
}

func TestTagsForTypeSocialWithPlatforms(t *testing.T) {
	tags, err := tagsForType("social", "someone", []string{"Gab", "tiktok"})
	if err != nil {
		t.Fatal(err)
	}
	if len(tags) != 2 {
		t.Fatalf("expected one tag per platform, got %v", tags)
	}
	if tags[0].Platform != "gab" || tags[1].Platform != "tiktok" {
		t.Fatalf("platforms should be lowercased: %v", tags)
	}
}

func TestTagsForTypeAutoDelegatesToClassifier(t *testing.T) {
	tags, err := tagsForType("auto", "https://bit.ly/x", nil)
	if err != nil {
		t.Fatal(err)
	}
	if len(tags) != 1 || tags[0].Subtype != classify.SubtypeURLExpansion {
		t.Fatalf("expected url_expansion from classifier, got %v", tags)
	}
}

func TestTagsForTypeUnknown(t *testing.T) {
	if _, err := tagsForType("bogus", "q", nil); err == nil {
		t.Fatal("expected error for unknown type")
	}
}

func TestNormalizeCron(t *testing.T) {
	if got := normalizeCron("*/5 * * * *"); got != "0 */5 * * * *" {
		t.Fatalf("5-field expression should gain a seconds field: %q", got)
	}
	if got := normalizeCron("30 */5 * * * *"); got != "30 */5 * * * *" {
		t.Fatalf("6-field expression should pass through: %q", got)
	}
}
