package services

import (
	"testing"

	"github.com/kayz/osprey/internal/fetch"
)

func TestParseExpansionGetLinkInfo(t *testing.T) {
	body := `<html><body>
		<a href="/about">About</a>
		<a href="https://bit.ly/short">original</a>
		<a href="https://example.com/long-form-target">expanded</a>
	</body></html>`
	resp := &fetch.Response{Body: body, FinalURL: "https://getlinkinfo.com/info?link=x"}

	got := parseExpansion("getlinkinfo", resp, "https://bit.ly/short")
	if got != "https://example.com/long-form-target" {
		t.Fatalf("expected expanded URL, got %q", got)
	}
}

func TestParseExpansionCheckShortURL(t *testing.T) {
	body := `<html><body><td>Long URL: https://example.com/the/real/page</td></body></html>`
	resp := &fetch.Response{Body: body}

	got := parseExpansion("checkshorturl", resp, "https://bit.ly/short")
	if got != "https://example.com/the/real/page" {
		t.Fatalf("expected expanded URL, got %q", got)
	}
}

func TestParseExpansionExpandURL(t *testing.T) {
	body := `<html><body><div class="result"><a href="https://example.com/landing">link</a></div></body></html>`
	resp := &fetch.Response{Body: body}

	got := parseExpansion("expandurl", resp, "https://t.co/x")
	if got != "https://example.com/landing" {
		t.Fatalf("expected expanded URL, got %q", got)
	}
}

func TestParseExpansionNoMatch(t *testing.T) {
	resp := &fetch.Response{Body: "<html><body>nothing useful</body></html>"}
	if got := parseExpansion("getlinkinfo", resp, "https://bit.ly/x"); got != "" {
		t.Fatalf("expected empty result, got %q", got)
	}
}
