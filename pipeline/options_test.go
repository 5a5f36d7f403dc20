package pipeline

import (
	"net/http"
	"testing"

	"github.com/use-agent/webloader/models"
)

func TestParseOptions_HeaderOverridesBody(t *testing.T) {
	h := http.Header{}
	h.Set("x-respond-with", "html")
	h.Set("x-wait-for-selector", "#from-header")

	body := &models.LoadRequestOptions{
		RespondWith: "markdown",
		WaitFor:     "#from-body",
	}
	opts := ParseOptions(h, "https://example.com", body)

	if opts.RespondWith != models.FormatHTML {
		t.Errorf("RespondWith = %v, want html (header should win)", opts.RespondWith)
	}
	if opts.WaitFor != "#from-header" {
		t.Errorf("WaitFor = %q, want header value", opts.WaitFor)
	}
}

func TestParseOptions_FallsBackToBodyWhenNoHeader(t *testing.T) {
	body := &models.LoadRequestOptions{WaitFor: "#from-body"}
	opts := ParseOptions(http.Header{}, "https://example.com", body)
	if opts.WaitFor != "#from-body" {
		t.Errorf("WaitFor = %q, want #from-body", opts.WaitFor)
	}
}

func TestParseOptions_NilBodyUsesDefaults(t *testing.T) {
	opts := ParseOptions(http.Header{}, "https://example.com", nil)
	if opts.RespondWith != models.FormatDefault {
		t.Errorf("RespondWith = %v, want default", opts.RespondWith)
	}
}

func TestParseOptions_BooleanHeadersOnlyTrueOrOne(t *testing.T) {
	h := http.Header{}
	h.Set("x-no-cache", "true")
	h.Set("x-with-images-summary", "1")
	h.Set("x-with-links-summary", "yes")

	opts := ParseOptions(h, "https://example.com", nil)
	if !opts.NoCache {
		t.Error("expected NoCache = true for header value \"true\"")
	}
	if !opts.WithImagesSummary {
		t.Error("expected WithImagesSummary = true for header value \"1\"")
	}
	if opts.WithLinksSummary {
		t.Error("expected WithLinksSummary = false for header value \"yes\" (not true/1)")
	}
}

func TestParseOptions_IncludeExcludeTagsSplitOnComma(t *testing.T) {
	h := http.Header{}
	h.Set("x-include-tags", "article, main")
	h.Set("x-exclude-tags", "nav,footer")

	opts := ParseOptions(h, "https://example.com", nil)
	if len(opts.IncludeTags) != 2 || opts.IncludeTags[0] != "article" || opts.IncludeTags[1] != "main" {
		t.Errorf("IncludeTags = %v", opts.IncludeTags)
	}
	if len(opts.ExcludeTags) != 2 || opts.ExcludeTags[0] != "nav" || opts.ExcludeTags[1] != "footer" {
		t.Errorf("ExcludeTags = %v", opts.ExcludeTags)
	}
}

func TestBoolHeader(t *testing.T) {
	tests := []struct {
		value string
		want  bool
	}{
		{"true", true},
		{"1", true},
		{"false", false},
		{"0", false},
		{"", false},
		{"TRUE", false},
	}
	for _, tt := range tests {
		h := http.Header{}
		if tt.value != "" {
			h.Set("x-flag", tt.value)
		}
		if got := boolHeader(h, "x-flag"); got != tt.want {
			t.Errorf("boolHeader(%q) = %v, want %v", tt.value, got, tt.want)
		}
	}
}

func TestSplitCSV(t *testing.T) {
	got := splitCSV(" a , b ,,c")
	want := []string{"a", "b", "c"}
	if len(got) != len(want) {
		t.Fatalf("len = %d, want %d: %v", len(got), len(want), got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("got[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestSplitCSV_Empty(t *testing.T) {
	if got := splitCSV(""); got != nil {
		t.Errorf("splitCSV(\"\") = %v, want nil", got)
	}
}
