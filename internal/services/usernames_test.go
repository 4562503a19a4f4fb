package services

import (
	"net/http"
	"testing"

	"github.com/kayz/osprey/internal/fetch"
)

func platformByName(t *testing.T, name string) Descriptor {
	t.Helper()
	for _, p := range defaultPlatforms {
		if p.Name == name {
			return p
		}
	}
	t.Fatalf("unknown platform %s", name)
	return Descriptor{}
}

func TestProfileExistsStatusCodes(t *testing.T) {
	github := platformByName(t, "GitHub")

	if profileExists(&fetch.Response{StatusCode: http.StatusNotFound}, github) {
		t.Fatal("404 should mean no profile")
	}
	if !profileExists(&fetch.Response{StatusCode: http.StatusForbidden}, github) {
		t.Fatal("403 should be treated as an existing private profile")
	}
	if profileExists(&fetch.Response{StatusCode: http.StatusBadGateway}, github) {
		t.Fatal("5xx should mean undetermined, reported as absent")
	}
}

func TestProfileExistsMarkers(t *testing.T) {
	github := platformByName(t, "GitHub")

	resp := &fetch.Response{StatusCode: 200, Body: "weekly contributions chart"}
	if !profileExists(resp, github) {
		t.Fatal("success marker should confirm the profile")
	}

	resp = &fetch.Response{StatusCode: 200, Body: "This is not the page you are looking for. Not Found"}
	if profileExists(resp, github) {
		t.Fatal("error marker should reject the profile")
	}
}

func TestProfileExistsAmbiguousPlatform(t *testing.T) {
	twitter := platformByName(t, "Twitter")

	resp := &fetch.Response{StatusCode: 200, Body: "this account does not exist"}
	if profileExists(resp, twitter) {
		t.Fatal("ambiguous platform with absence phrase should reject")
	}

	resp = &fetch.Response{StatusCode: 200, Body: "<html>profile timeline</html>"}
	if !profileExists(resp, twitter) {
		t.Fatal("ambiguous platform without absence phrase should accept")
	}
}
