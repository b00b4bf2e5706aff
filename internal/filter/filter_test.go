package filter

import (
	"strings"
	"testing"

	"github.com/pfrederiksen/event-scout/internal/candidate"
)

func mk(url, name, source string, score float64) *candidate.Candidate {
	c := candidate.New(url, name, source, candidate.MethodSiteScraping)
	c.SetScore(score)
	return c
}

func TestEmptyFilterMatchesAll(t *testing.T) {
	f := New()
	if !f.IsEmpty() {
		t.Fatal("new filter should be empty")
	}

	list := []*candidate.Candidate{
		mk("https://a.com/conf", "A Conf", "directory", 0.1),
		mk("https://b.com/summit", "B Summit", "tavily", 0.9),
	}
	if got := f.Apply(list); len(got) != 2 {
		t.Errorf("empty filter should pass everything, got %d", len(got))
	}
}

func TestMinScore(t *testing.T) {
	f := &Filter{MinScore: 0.5}

	if f.Matches(mk("https://a.com/conf", "Low", "directory", 0.4)) {
		t.Error("score below minimum should not match")
	}
	if !f.Matches(mk("https://a.com/conf", "High", "directory", 0.5)) {
		t.Error("score at minimum should match")
	}
}

func TestSourceFilter(t *testing.T) {
	f := &Filter{Sources: []string{"Tavily"}}

	if !f.Matches(mk("https://a.com/conf", "A", "tavily", 0.5)) {
		t.Error("source match should be case-insensitive")
	}
	if f.Matches(mk("https://a.com/conf", "A", "directory", 0.5)) {
		t.Error("non-listed source should not match")
	}
}

func TestKeywordFilter(t *testing.T) {
	f := &Filter{Keywords: []string{"hackathon"}}

	c := mk("https://a.com/event", "Global AI Hackathon", "directory", 0.5)
	if !f.Matches(c) {
		t.Error("keyword in name should match")
	}

	c = mk("https://a.com/hackathon-2026", "Untitled", "directory", 0.5)
	if !f.Matches(c) {
		t.Error("keyword in URL should match")
	}

	c = mk("https://a.com/conf", "ML Summit", "directory", 0.5)
	if f.Matches(c) {
		t.Error("absent keyword should not match")
	}
}

func TestApplyPreservesOrder(t *testing.T) {
	f := &Filter{MinScore: 0.3}
	list := []*candidate.Candidate{
		mk("https://a.com/conf", "A", "directory", 0.9),
		mk("https://b.com/conf", "B", "directory", 0.1),
		mk("https://c.com/conf", "C", "directory", 0.5),
	}

	got := f.Apply(list)
	if len(got) != 2 {
		t.Fatalf("expected 2 survivors, got %d", len(got))
	}
	if got[0].URL != "https://a.com/conf" || got[1].URL != "https://c.com/conf" {
		t.Error("filtering should preserve ranking order")
	}
}

func TestString(t *testing.T) {
	if got := New().String(); got != "No active filters" {
		t.Errorf("empty filter description: %q", got)
	}

	f := &Filter{MinScore: 0.5, Sources: []string{"tavily"}, Keywords: []string{"ai"}}
	got := f.String()
	for _, want := range []string{"0.50", "tavily", "ai"} {
		if !strings.Contains(got, want) {
			t.Errorf("description %q missing %q", got, want)
		}
	}
}
