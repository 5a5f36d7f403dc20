package readability

import (
	"strings"
	"testing"
)

func TestCleanHTML_StripsScriptAndStyle(t *testing.T) {
	html := `<html><body><script>alert(1)</script><style>.x{color:red}</style><p>content</p></body></html>`
	got := CleanHTML(html)
	if strings.Contains(got, "alert") || strings.Contains(got, "color:red") {
		t.Errorf("expected script/style stripped, got %q", got)
	}
	if !strings.Contains(got, "content") {
		t.Errorf("expected content preserved, got %q", got)
	}
}

func TestCleanHTML_StripsComments(t *testing.T) {
	html := `<html><body><!-- a comment --><p>text</p></body></html>`
	got := CleanHTML(html)
	if strings.Contains(got, "a comment") {
		t.Errorf("expected comment stripped, got %q", got)
	}
}

func TestCleanHTML_RemovesNavAndFooterNoise(t *testing.T) {
	html := `<html><body><nav>site nav</nav><p>article body</p><footer>copyright</footer></body></html>`
	got := CleanHTML(html)
	if strings.Contains(got, "site nav") || strings.Contains(got, "copyright") {
		t.Errorf("expected nav/footer removed, got %q", got)
	}
	if !strings.Contains(got, "article body") {
		t.Errorf("expected article body preserved, got %q", got)
	}
}

func TestCleanHTML_RemovesDataAndOnAttributes(t *testing.T) {
	html := `<html><body><div data-tracking="xyz" onclick="doThing()">hi</div></body></html>`
	got := CleanHTML(html)
	if strings.Contains(got, "data-tracking") || strings.Contains(got, "onclick") {
		t.Errorf("expected data-/on* attributes stripped, got %q", got)
	}
}

func TestCleanHTML_KeepsHeaderInsideArticle(t *testing.T) {
	html := `<html><body><article><header><h1>Headline</h1></header><p>body</p></article></body></html>`
	got := CleanHTML(html)
	if !strings.Contains(got, "Headline") {
		t.Errorf("expected article-nested header to be kept, got %q", got)
	}
}

func TestCleanHTML_RemovesHeaderOutsideArticle(t *testing.T) {
	html := `<html><body><header>site header nav</header><article><p>body</p></article></body></html>`
	got := CleanHTML(html)
	if strings.Contains(got, "site header nav") {
		t.Errorf("expected non-article header to be removed, got %q", got)
	}
}

func TestCleanHTML_CollapsesWhitespace(t *testing.T) {
	html := `<html><body><p>a     b\n\n\tc</p></body></html>`
	got := CleanHTML(html)
	if strings.Contains(got, "  ") {
		t.Errorf("expected whitespace collapsed, got %q", got)
	}
}

func TestCleanHTML_IdempotentOnAlreadyCleanInput(t *testing.T) {
	html := `<html><body><p>already clean text</p></body></html>`
	once := CleanHTML(html)
	twice := CleanHTML(once)
	if once != twice {
		t.Errorf("CleanHTML not idempotent: %q vs %q", once, twice)
	}
}
