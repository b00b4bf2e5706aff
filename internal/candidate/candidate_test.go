package candidate

import (
	"strings"
	"testing"
)

func TestNewFallbackName(t *testing.T) {
	tests := []struct {
		name     string
		url      string
		given    string
		expected string
	}{
		{"uses given name", "https://example.com/conf", "ML Summit", "ML Summit"},
		{"derives from path", "https://example.com/ml-conference-2026/", "", "ml conference 2026"},
		{"strips html suffix", "https://example.com/events/devcon.html", "", "devcon"},
		{"underscores to spaces", "https://example.com/ai_summit_registration", "", "ai summit registration"},
		{"falls back to host", "https://conference.example.com/", "", "conference.example.com"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := New(tt.url, tt.given, "test", MethodSiteScraping)
			if c.Name != tt.expected {
				t.Errorf("New(%q, %q).Name = %q, expected %q", tt.url, tt.given, c.Name, tt.expected)
			}
		})
	}
}

func TestNewNeverEmptyName(t *testing.T) {
	c := New("https://example.com/", "   ", "test", MethodSearch)
	if c.Name == "" {
		t.Error("candidate name should never be empty")
	}
}

func TestNameTruncation(t *testing.T) {
	long := strings.Repeat("conference ", 20)
	c := New("https://example.com/conf", long, "test", MethodSiteScraping)
	if len(c.Name) > MaxNameLength {
		t.Errorf("name length %d exceeds bound %d", len(c.Name), MaxNameLength)
	}
}

func TestSetDescriptionBounds(t *testing.T) {
	c := New("https://example.com/conf", "Conf", "test", MethodSiteScraping)
	c.SetDescription(strings.Repeat("details ", 60))
	if len(c.Description) > MaxDescriptionLength {
		t.Errorf("description length %d exceeds bound %d", len(c.Description), MaxDescriptionLength)
	}
}

func TestSetScoreClamps(t *testing.T) {
	tests := []struct {
		in       float64
		expected float64
	}{
		{-0.5, 0.0},
		{0.0, 0.0},
		{0.73, 0.73},
		{1.0, 1.0},
		{1.8, 1.0},
	}

	for _, tt := range tests {
		c := New("https://example.com/conf", "Conf", "test", MethodSiteScraping)
		c.SetScore(tt.in)
		if c.QualityScore != tt.expected {
			t.Errorf("SetScore(%v) = %v, expected %v", tt.in, c.QualityScore, tt.expected)
		}
	}
}

func TestNormalizeURL(t *testing.T) {
	tests := []struct {
		in       string
		expected string
	}{
		{"https://Example.com/Event/", "https://example.com/event"},
		{"https://example.com/event", "https://example.com/event"},
		{"  HTTPS://EXAMPLE.COM/  ", "https://example.com"},
		{"", ""},
	}

	for _, tt := range tests {
		if got := NormalizeURL(tt.in); got != tt.expected {
			t.Errorf("NormalizeURL(%q) = %q, expected %q", tt.in, got, tt.expected)
		}
	}
}
