package classify

import (
	"fmt"
	"testing"
	"time"
)

func TestIsAggregator(t *testing.T) {
	tests := []struct {
		url      string
		expected bool
	}{
		{"https://example.com/blog/top-conferences", true},
		{"https://example.com/events-calendar/2026", true},
		{"https://example.com/roundup-of-summits", true},
		{"https://confs.tech/javascript", true},
		{"https://www.meetup.com/golang-sf", true},
		{"https://example.com/conference/ml-summit", false},
		{"https://devworld-conference.com/register", false},
		{"not a url", false},
	}

	for _, tt := range tests {
		t.Run(tt.url, func(t *testing.T) {
			if got := IsAggregator(tt.url); got != tt.expected {
				t.Errorf("IsAggregator(%q) = %v, expected %v", tt.url, got, tt.expected)
			}
		})
	}
}

func TestLooksLikeEventLink(t *testing.T) {
	tests := []struct {
		name     string
		url      string
		base     string
		expected bool
	}{
		{"conference path", "https://example.com/conf/ml-summit", "", true},
		{"registration path", "https://example.com/register/devcon", "", true},
		{"hackathon path", "https://example.com/hackathon/global", "", true},
		{"current year", fmt.Sprintf("https://example.com/devfoo/%d", time.Now().Year()), "", true},
		{"no event keyword", "https://example.com/random-page", "", false},
		{"social media", "https://twitter.com/devconf", "", false},
		{"static asset", "https://example.com/conference/logo.png", "", false},
		{"auth path", "https://example.com/login?next=conference", "", false},
		{"legal path", "https://example.com/privacy", "", false},
		{"tracking params", "https://example.com/conference?utm_source=spam", "", false},
		{"missing scheme", "example.com/conference", "", false},
		{"too short", "http://a", "", false},
		{"empty", "", "", false},
		{"base homepage nav", "https://example.com/", "example.com", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := LooksLikeEventLink(tt.url, tt.base); got != tt.expected {
				t.Errorf("LooksLikeEventLink(%q, %q) = %v, expected %v", tt.url, tt.base, got, tt.expected)
			}
		})
	}
}

func TestHasStructuralBonus(t *testing.T) {
	tests := []struct {
		url      string
		expected bool
	}{
		{"https://example.com/events/summit", true},
		{"https://example.com/a/b/c/d", true},
		{"https://example.com/a/b/c/d/e/f/g", false},
		{"https://example.com/a/b/c/d/e/conferences/x", true},
	}

	for _, tt := range tests {
		if got := HasStructuralBonus(tt.url); got != tt.expected {
			t.Errorf("HasStructuralBonus(%q) = %v, expected %v", tt.url, got, tt.expected)
		}
	}
}

func TestCurrentYears(t *testing.T) {
	years := CurrentYears()
	if len(years) != 3 {
		t.Fatalf("expected 3 years, got %d", len(years))
	}
	if years[0] != fmt.Sprintf("%d", time.Now().Year()) {
		t.Errorf("first year should be the current year, got %s", years[0])
	}
}

func TestContainsEventKeyword(t *testing.T) {
	if !ContainsEventKeyword("Join us at the AI Summit") {
		t.Error("expected summit text to match")
	}
	if ContainsEventKeyword("nothing relevant here") {
		t.Error("expected irrelevant text not to match")
	}
}
