package services

import (
	"context"
	"strings"
	"testing"

	"github.com/kayz/osprey/internal/classify"
)

func TestTrainerCodeSearchURLs(t *testing.T) {
	svc := NewTrainerCodeService()
	tag := classify.Tag{Category: classify.CategoryUtility, Subtype: classify.SubtypeTrainerCode}

	res := svc.Search(context.Background(), "123456789012", tag)
	if !res.Success {
		t.Fatalf("expected success: %+v", res)
	}

	urls, ok := res.Data["search_urls"].(map[string]any)
	if !ok {
		t.Fatalf("expected search_urls map, got %T", res.Data["search_urls"])
	}
	for _, key := range []string{"google", "reddit", "twitter"} {
		u, _ := urls[key].(string)
		if !strings.Contains(u, "123456789012") {
			t.Fatalf("%s URL should embed the code: %q", key, u)
		}
	}
}

func TestTrainerUsernameURLs(t *testing.T) {
	svc := NewTrainerCodeService()
	tag := classify.Tag{Category: classify.CategoryUtility, Subtype: "trainer_username"}

	res := svc.Search(context.Background(), "ashk", tag)
	if !res.Success {
		t.Fatalf("expected success: %+v", res)
	}

	urls, _ := res.Data["search_urls"].(map[string]any)
	for _, key := range []string{"friendhuntr", "silph", "pokebattler", "trainerdex"} {
		if _, ok := urls[key]; !ok {
			t.Fatalf("missing %s URL", key)
		}
	}
	if _, ok := res.Data["resources"]; !ok {
		t.Fatal("expected static resources map")
	}
}
