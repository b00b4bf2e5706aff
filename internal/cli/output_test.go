package cli

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/pfrederiksen/event-scout/internal/candidate"
	"github.com/pfrederiksen/event-scout/internal/discovery"
)

func mk(url, name string, score float64) *candidate.Candidate {
	c := candidate.New(url, name, "directory", candidate.MethodSiteScraping)
	c.SetScore(score)
	return c
}

func sampleResult() *OutputResult {
	return &OutputResult{
		DiscoveredAt: time.Now().UTC(),
		EventType:    "conference",
		Candidates: []*candidate.Candidate{
			mk("https://a.com/conf", "ML Summit 2026", 0.92),
			mk("https://b.com/summit", "DevWorld", 0.75),
		},
		Count: 2,
		Stats: discovery.Stats{
			TotalFound: 5,
			Unique:     3,
			Final:      2,
			PerSource:  map[string]int{"directory": 5},
		},
	}
}

func TestWriteTextOutput(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteOutput(&buf, sampleResult(), FormatText, false); err != nil {
		t.Fatalf("WriteOutput failed: %v", err)
	}

	out := buf.String()
	for _, want := range []string{
		"Top conference candidates:",
		"  1. [0.92] ML Summit 2026",
		"https://a.com/conf",
		"Found 5 raw, 3 unique, 2 final",
		"directory: 5",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("text output missing %q:\n%s", want, out)
		}
	}

	if strings.Contains(out, "source: directory") {
		t.Error("non-verbose output should omit source details")
	}
}

func TestWriteTextVerbose(t *testing.T) {
	result := sampleResult()
	result.Candidates[0].SetDescription("Two day applied machine learning conference")
	result.Candidates[0].Location = "Berlin"

	var buf bytes.Buffer
	if err := WriteOutput(&buf, result, FormatText, true); err != nil {
		t.Fatalf("WriteOutput failed: %v", err)
	}

	out := buf.String()
	for _, want := range []string{
		"source: directory (site_scraping)",
		"Two day applied machine learning conference",
		"location: Berlin",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("verbose output missing %q:\n%s", want, out)
		}
	}
}

func TestWriteTextEmpty(t *testing.T) {
	result := sampleResult()
	result.Candidates = nil
	result.Count = 0

	var buf bytes.Buffer
	if err := WriteOutput(&buf, result, FormatText, false); err != nil {
		t.Fatalf("WriteOutput failed: %v", err)
	}
	if !strings.Contains(buf.String(), "No candidates found.") {
		t.Errorf("empty output message missing:\n%s", buf.String())
	}
}

func TestWriteJSONOutput(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteOutput(&buf, sampleResult(), FormatJSON, false); err != nil {
		t.Fatalf("WriteOutput failed: %v", err)
	}

	var decoded OutputResult
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("output is not valid JSON: %v", err)
	}
	if decoded.EventType != "conference" || decoded.Count != 2 {
		t.Errorf("round-tripped result mismatch: %+v", decoded)
	}
	if len(decoded.Candidates) != 2 {
		t.Errorf("expected 2 candidates in JSON, got %d", len(decoded.Candidates))
	}
}

func TestWriteOutputUnknownFormat(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteOutput(&buf, sampleResult(), OutputFormat("xml"), false); err == nil {
		t.Fatal("expected error for unknown format")
	}
}
