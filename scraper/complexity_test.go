package scraper

import (
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"

	"github.com/use-agent/webloader/models"
)

func parseDoc(t *testing.T, html string) *goquery.Document {
	t.Helper()
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		t.Fatalf("failed to parse test HTML: %v", err)
	}
	return doc
}

func TestScoreComplexity_BaselineScore(t *testing.T) {
	html := `<html><body><p>plain text</p></body></html>`
	doc := parseDoc(t, html)
	m := scoreComplexity(doc, html)
	if m.Score < 50 || m.Score > 55 {
		t.Errorf("Score = %d, want near the 50 baseline", m.Score)
	}
	if m.Tables != 0 || m.HasMath || m.NonEnglish {
		t.Errorf("unexpected metrics on plain page: %+v", m)
	}
}

func TestScoreComplexity_TablesIncreaseScore(t *testing.T) {
	html := `<html><body><table><tr><td>a</td></tr></table></body></html>`
	doc := parseDoc(t, html)
	m := scoreComplexity(doc, html)
	if m.Tables != 1 {
		t.Errorf("Tables = %d, want 1", m.Tables)
	}
}

func TestScoreComplexity_ManyTablesAddExtraBand(t *testing.T) {
	html := `<html><body>` + strings.Repeat(`<table><tr><td>x</td></tr></table>`, 4) + `</body></html>`
	doc := parseDoc(t, html)
	m := scoreComplexity(doc, html)
	if m.Tables != 4 {
		t.Errorf("Tables = %d, want 4", m.Tables)
	}
	// 50 base + 10 (tables>0) + 5 (tables>3) + totalElements bonus.
	if m.Score < 65 {
		t.Errorf("Score = %d, expected at least 65 with >3 tables", m.Score)
	}
}

func TestMaxListDepth_NestedLists(t *testing.T) {
	html := `<html><body><ul><li>a<ul><li>b<ul><li>c</li></ul></li></ul></li></ul></body></html>`
	doc := parseDoc(t, html)
	depth := maxListDepth(doc)
	if depth != 3 {
		t.Errorf("maxListDepth = %d, want 3", depth)
	}
}

func TestDetectMath_MathTag(t *testing.T) {
	html := `<html><body><math><mi>x</mi></math></body></html>`
	doc := parseDoc(t, html)
	if !detectMath(doc, html) {
		t.Error("expected <math> tag to be detected")
	}
}

func TestDetectMath_KatexClass(t *testing.T) {
	html := `<html><body><span class="katex-html">x^2</span></body></html>`
	doc := parseDoc(t, html)
	if !detectMath(doc, html) {
		t.Error("expected katex class to be detected")
	}
}

func TestDetectMath_DollarDelimiters(t *testing.T) {
	html := `<html><body><p>Euler's identity: $$e^{i\pi}+1=0$$</p></body></html>`
	doc := parseDoc(t, html)
	if !detectMath(doc, html) {
		t.Error("expected $$ math delimiters to be detected")
	}
}

func TestDetectMath_NoMath(t *testing.T) {
	html := `<html><body><p>just regular text, no formulas here</p></body></html>`
	doc := parseDoc(t, html)
	if detectMath(doc, html) {
		t.Error("expected no math to be detected")
	}
}

func TestDetectNonEnglish_LangAttribute(t *testing.T) {
	html := `<html lang="ja"><body><p>text</p></body></html>`
	doc := parseDoc(t, html)
	if !detectNonEnglish(doc, html) {
		t.Error("expected lang=ja to be detected as non-English")
	}
}

func TestDetectNonEnglish_EnglishLangAttribute(t *testing.T) {
	html := `<html lang="en-US"><body><p>text</p></body></html>`
	doc := parseDoc(t, html)
	if detectNonEnglish(doc, html) {
		t.Error("expected lang=en-US to be treated as English")
	}
}

func TestDetectNonEnglish_CJKRatio(t *testing.T) {
	html := `<html><body><p>` + strings.Repeat("中文", 20) + `</p></body></html>`
	doc := parseDoc(t, html)
	if !detectNonEnglish(doc, html) {
		t.Error("expected high CJK ratio to be detected as non-English")
	}
}

func TestBandedScore_ClampsAtHundred(t *testing.T) {
	m := models.ComplexityMetrics{
		Tables:        10,
		ListDepth:     5,
		CodeBlocks:    10,
		HasMath:       true,
		NonEnglish:    true,
		TotalElements: 5000,
	}
	if got := bandedScore(m); got != 100 {
		t.Errorf("bandedScore = %d, want clamped to 100", got)
	}
}

func TestBandedScore_BaselineIsFifty(t *testing.T) {
	if got := bandedScore(models.ComplexityMetrics{}); got != 50 {
		t.Errorf("bandedScore(zero metrics) = %d, want 50", got)
	}
}
