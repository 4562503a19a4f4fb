package services

import (
	"context"
	"fmt"
	"net/url"

	"github.com/kayz/osprey/internal/classify"
)

// TrainerCodeService generates search URLs for a 12-digit Pokemon Go
// trainer code or a trainer username. It is offline: the output is a set
// of links, not scraped results.
type TrainerCodeService struct{}

func NewTrainerCodeService() *TrainerCodeService { return &TrainerCodeService{} }

func (s *TrainerCodeService) Name() string { return "TrainerCode" }

func (s *TrainerCodeService) Accepts(tag classify.Tag) bool {
	if tag.Category != classify.CategoryUtility {
		return false
	}
	return tag.Subtype == classify.SubtypeTrainerCode || tag.Subtype == "trainer_username"
}

func (s *TrainerCodeService) Search(_ context.Context, query string, tag classify.Tag) Result {
	if !s.Accepts(tag) {
		return unsupported(s.Name(), query, tag)
	}

	res := newResult(s.Name(), query, tag)
	escaped := url.QueryEscape(query)
	searchURLs := map[string]any{}

	switch tag.Subtype {
	case classify.SubtypeTrainerCode:
		searchURLs["google"] = fmt.Sprintf(`https://www.google.com/search?q=%%22%s%%22`, escaped)
		searchURLs["reddit"] = fmt.Sprintf("https://www.reddit.com/r/PokemonGoFriends/search/?q=%s&restrict_sr=1", escaped)
		searchURLs["twitter"] = fmt.Sprintf("https://twitter.com/search?q=%s", escaped)
	case "trainer_username":
		searchURLs["friendhuntr"] = fmt.Sprintf("https://api.friendhuntr.com/distribute/payload-search?username=%s", escaped)
		searchURLs["silph"] = fmt.Sprintf("https://sil.ph/%s", url.PathEscape(query))
		searchURLs["pokebattler"] = fmt.Sprintf("https://www.pokebattler.com/profiles?search=%s&page=0#searchResult", escaped)
		searchURLs["trainerdex"] = fmt.Sprintf("https://www.trainerdex.co.uk/u/%s", url.PathEscape(query))
	}

	res.Success = true
	res.Data["search_urls"] = searchURLs
	res.Data["resources"] = map[string]any{
		"pogotrainer":   "https://pogotrainer.club/",
		"gamepress":     "https://gamepress.gg/pokemongo/trainer-codes-list",
		"pokelytics":    "https://pokelytics.com/",
		"openstreetmap": "https://www.openstreetmap.org/",
	}
	return res
}
