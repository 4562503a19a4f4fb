package services

import (
	"context"
	"fmt"
	"net/url"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/kayz/osprey/internal/classify"
	"github.com/kayz/osprey/internal/fetch"
)

var urlExpanders = []struct {
	id          string
	urlTemplate string
}{
	{"getlinkinfo", "http://www.getlinkinfo.com/info?link=%s"},
	{"checkshorturl", "https://checkshorturl.com/expand.php?u=%s"},
	{"expandurl", "https://www.expandurl.net/expand?url=%s"},
}

var urlPattern = regexp.MustCompile(`https?://[^\s<>"]+|www\.[^\s<>"]+`)

// URLExpandService resolves shortened links through third-party expander
// sites, scraping the expanded URL out of each site's result page.
type URLExpandService struct {
	fetcher *fetch.Client
}

func NewURLExpandService(fetcher *fetch.Client) *URLExpandService {
	return &URLExpandService{fetcher: fetcher}
}

func (s *URLExpandService) Name() string { return "URLExpander" }

func (s *URLExpandService) Accepts(tag classify.Tag) bool {
	return tag.Category == classify.CategoryUtility && tag.Subtype == classify.SubtypeURLExpansion
}

func (s *URLExpandService) Search(ctx context.Context, query string, tag classify.Tag) Result {
	if !s.Accepts(tag) {
		return unsupported(s.Name(), query, tag)
	}

	res := newResult(s.Name(), query, tag)
	expansions := map[string]any{}
	succeeded := 0

	for _, expander := range urlExpanders {
		serviceURL := fmt.Sprintf(expander.urlTemplate, url.QueryEscape(query))
		resp, err := s.fetcher.Get(ctx, serviceURL, s.Name())
		if err != nil {
			expansions[expander.id] = map[string]any{"status": "error", "error": err.Error()}
			if ctx.Err() != nil {
				break
			}
			continue
		}
		res.ResponseTime += resp.Elapsed.Seconds()

		if !resp.OK() {
			expansions[expander.id] = map[string]any{
				"status":      "failed",
				"status_code": resp.StatusCode,
				"service_url": serviceURL,
			}
			continue
		}

		entry := map[string]any{"status": "success", "service_url": serviceURL}
		if expanded := parseExpansion(expander.id, resp, query); expanded != "" {
			entry["expanded_url"] = expanded
		}
		expansions[expander.id] = entry
		succeeded++
	}

	res.Success = succeeded > 0
	if !res.Success {
		res.Error = "no expander service returned a usable response"
	}
	res.Data["expansion_results"] = expansions
	return res
}

// parseExpansion digs the expanded URL out of one expander's result page.
// Each site formats its answer differently.
func parseExpansion(service string, resp *fetch.Response, original string) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(resp.Body))
	if err != nil {
		return ""
	}

	switch service {
	case "getlinkinfo":
		var found string
		doc.Find("a").EachWithBreak(func(_ int, sel *goquery.Selection) bool {
			href, _ := sel.Attr("href")
			if strings.HasPrefix(href, "http") && href != original && href != resp.FinalURL {
				found = href
				return false
			}
			return true
		})
		return found

	case "checkshorturl":
		for _, u := range urlPattern.FindAllString(doc.Text(), -1) {
			if u != original {
				return u
			}
		}
		return ""

	case "expandurl":
		href, _ := doc.Find("div.result a").First().Attr("href")
		return href
	}
	return ""
}
