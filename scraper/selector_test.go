package scraper

import (
	"strings"
	"testing"
)

func TestApplySelector_MatchesSingleElement(t *testing.T) {
	html := `<html><body><div id="a">keep</div><div id="b">drop</div></body></html>`
	got, err := ApplySelector(html, "#a")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(got, "keep") {
		t.Errorf("expected matched output to contain %q, got %q", "keep", got)
	}
	if strings.Contains(got, "drop") {
		t.Errorf("expected non-matching content to be excluded, got %q", got)
	}
}

func TestApplySelector_NoMatchReturnsEmpty(t *testing.T) {
	html := `<html><body><p>hello</p></body></html>`
	got, err := ApplySelector(html, "#nonexistent")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "" {
		t.Errorf("expected empty string for no match, got %q", got)
	}
}

func TestApplySelector_InvalidSelectorErrors(t *testing.T) {
	_, err := ApplySelector("<p>hi</p>", ":::not-a-selector")
	if err == nil {
		t.Error("expected an error for an invalid CSS selector")
	}
}

func TestApplySelector_MultipleMatchesConcatenate(t *testing.T) {
	html := `<html><body><p class="x">one</p><p class="x">two</p></body></html>`
	got, err := ApplySelector(html, "p.x")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(got, "one") || !strings.Contains(got, "two") {
		t.Errorf("expected both matches concatenated, got %q", got)
	}
}

func TestRemoveSelector_RemovesEachNonAdjacentMatch(t *testing.T) {
	html := `<html><body><div class="ad">ad one</div><p>keep me</p><div class="ad">ad two</div><p>and me</p></body></html>`
	got, err := removeSelector(html, ".ad")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if strings.Contains(got, "ad one") || strings.Contains(got, "ad two") {
		t.Errorf("expected both non-adjacent matches removed, got %q", got)
	}
	if !strings.Contains(got, "keep me") || !strings.Contains(got, "and me") {
		t.Errorf("expected non-matching content preserved, got %q", got)
	}
}

func TestRemoveSelector_NoMatchLeavesContentUnchanged(t *testing.T) {
	html := `<div><p>hello</p></div>`
	got, err := removeSelector(html, ".nonexistent")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(got, "hello") {
		t.Errorf("expected content preserved, got %q", got)
	}
}

func TestRemoveSelector_InvalidSelectorErrors(t *testing.T) {
	_, err := removeSelector("<p>hi</p>", ":::not-a-selector")
	if err == nil {
		t.Error("expected an error for an invalid CSS selector")
	}
}
