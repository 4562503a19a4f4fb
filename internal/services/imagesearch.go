package services

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/kayz/osprey/internal/classify"
	"github.com/kayz/osprey/internal/fetch"
)

// reverse image engines, probed in this order.
var imageEngines = []struct {
	id          string
	displayName string
	urlTemplate string
}{
	{"google", "Google Images", "https://www.google.com/searchbyimage?&image_url=%s"},
	{"yandex", "Yandex Images", "https://yandex.com/images/search?source=collections&rpt=imageview&url=%s"},
	{"tineye", "TinEye", "https://www.tineye.com/search/?url=%s"},
	{"bing", "Bing Images", "https://www.bing.com/images/search?view=detailv2&iss=sbi&form=SBIIRP&sbisrc=UrlPaste&q=imgurl:%s"},
	{"baidu", "Baidu Images", "https://graph.baidu.com/details?isfromtusoupc=1tn=pc&carousel=0&image=%s"},
}

const exifTemplate = "http://exif.regex.info/exif.cgi?&url=%s"

// ImageSearchService submits an image URL to the reverse-image engines and
// records which of them are reachable and appear to have matches.
type ImageSearchService struct {
	fetcher *fetch.Client
}

func NewImageSearchService(fetcher *fetch.Client) *ImageSearchService {
	return &ImageSearchService{fetcher: fetcher}
}

func (s *ImageSearchService) Name() string { return "ImageSearch" }

func (s *ImageSearchService) Accepts(tag classify.Tag) bool {
	return tag.Category == classify.CategoryImage && tag.Subtype == classify.SubtypeReverseImage
}

func (s *ImageSearchService) Search(ctx context.Context, query string, tag classify.Tag) Result {
	if !s.Accepts(tag) {
		return unsupported(s.Name(), query, tag)
	}

	res := newResult(s.Name(), query, tag)
	engineResults := map[string]any{}
	accessible := 0

	for _, engine := range imageEngines {
		searchURL := fmt.Sprintf(engine.urlTemplate, url.QueryEscape(query))
		resp, err := s.fetcher.Get(ctx, searchURL, s.Name())
		if err != nil {
			engineResults[engine.id] = map[string]any{
				"service_name": engine.displayName,
				"error":        err.Error(),
			}
			if ctx.Err() != nil {
				break
			}
			continue
		}

		info := map[string]any{
			"service_name":  engine.displayName,
			"search_url":    searchURL,
			"status_code":   resp.StatusCode,
			"accessible":    resp.OK(),
			"response_size": len(resp.Body),
		}
		if resp.OK() {
			accessible++
			info["has_results"] = hasImageResults(engine.id, resp.Body)
		}
		engineResults[engine.id] = info
		res.ResponseTime += resp.Elapsed.Seconds()
	}

	if exif := s.probeEXIF(ctx, query); exif != nil {
		engineResults["exif"] = exif
	}

	res.Success = accessible > 0
	if !res.Success {
		res.Error = "no reverse image engine was reachable"
	}
	res.Data["reverse_search_results"] = engineResults
	res.Data["total_accessible_services"] = accessible
	return res
}

// hasImageResults applies the per-engine heuristic for "found something".
// None of these are contractual; at best they hint that opening the search
// URL is worthwhile.
func hasImageResults(engine, body string) bool {
	lower := strings.ToLower(body)
	switch engine {
	case "google":
		return !strings.Contains(lower, "no results found") && len(body) > 10000
	case "yandex":
		return strings.Contains(body, "serp-item") || strings.Contains(lower, "similar")
	case "tineye":
		return strings.Contains(lower, "match") && !strings.Contains(lower, "no matches")
	case "bing":
		return strings.Contains(body, "imgres") && len(body) > 5000
	case "baidu":
		return strings.Contains(lower, "similar") || len(body) > 10000
	}
	return false
}

func (s *ImageSearchService) probeEXIF(ctx context.Context, imageURL string) map[string]any {
	exifURL := fmt.Sprintf(exifTemplate, url.QueryEscape(imageURL))
	resp, err := s.fetcher.Get(ctx, exifURL, s.Name())
	if err != nil {
		return map[string]any{"exif_url": exifURL, "accessible": false, "error": err.Error()}
	}
	if !resp.OK() {
		return nil
	}
	return map[string]any{
		"exif_url":   exifURL,
		"accessible": true,
		"data_size":  len(resp.Body),
	}
}
