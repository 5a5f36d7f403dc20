package scraper

import (
	"regexp"
	"strings"
	"unicode"

	"github.com/PuerkitoBio/goquery"

	"github.com/use-agent/webloader/models"
)

var mathClassPattern = regexp.MustCompile(`(?i)mathjax|katex`)
var mathDelimiterPattern = regexp.MustCompile(`\\\(|\\\[|\$\$`)

// scoreComplexity computes the §4.4 ComplexityMetrics and its banded score,
// grounded on original_source/src/models/snapshot.rs's scoring table.
func scoreComplexity(doc *goquery.Document, rawHTML string) models.ComplexityMetrics {
	m := models.ComplexityMetrics{}

	m.Tables = doc.Find("table").Length()
	m.ListDepth = maxListDepth(doc)
	m.CodeBlocks = doc.Find("pre, code").Length()
	m.TotalElements = doc.Find("*").Length()
	m.HasMath = detectMath(doc, rawHTML)
	m.NonEnglish = detectNonEnglish(doc, rawHTML)

	m.Score = bandedScore(m)
	return m
}

func maxListDepth(doc *goquery.Document) int {
	depth := 0
	doc.Find("ul, ol").Each(func(_ int, s *goquery.Selection) {
		d := listDepthOf(s)
		if d > depth {
			depth = d
		}
	})
	return depth
}

func listDepthOf(s *goquery.Selection) int {
	depth := 1
	s.Find("ul, ol").Each(func(_ int, nested *goquery.Selection) {
		d := 1 + listDepthOf(nested)
		if d > depth {
			depth = d
		}
	})
	return depth
}

func detectMath(doc *goquery.Document, rawHTML string) bool {
	if doc.Find("math").Length() > 0 {
		return true
	}
	found := false
	doc.Find("[class]").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		class, _ := s.Attr("class")
		if mathClassPattern.MatchString(class) {
			found = true
			return false
		}
		return true
	})
	if found {
		return true
	}
	return mathDelimiterPattern.MatchString(rawHTML)
}

func detectNonEnglish(doc *goquery.Document, rawHTML string) bool {
	if lang, ok := doc.Find("html").Attr("lang"); ok {
		lang = strings.ToLower(strings.TrimSpace(lang))
		if lang != "" && !strings.HasPrefix(lang, "en") {
			return true
		}
	}

	var cjk, total int
	for _, r := range rawHTML {
		if unicode.IsSpace(r) || unicode.IsPunct(r) || unicode.IsControl(r) {
			continue
		}
		total++
		if isCJK(r) {
			cjk++
		}
	}
	if total == 0 {
		return false
	}
	return float64(cjk)/float64(total) > 0.10
}

func isCJK(r rune) bool {
	return unicode.Is(unicode.Han, r) ||
		unicode.Is(unicode.Hiragana, r) ||
		unicode.Is(unicode.Katakana, r) ||
		unicode.Is(unicode.Hangul, r)
}

func bandedScore(m models.ComplexityMetrics) int {
	score := 50

	if m.Tables > 0 {
		score += 10
		if m.Tables > 3 {
			score += 5
		}
	}
	if m.ListDepth >= 2 {
		score += 10
		if m.ListDepth >= 4 {
			score += 5
		}
	}
	if m.CodeBlocks > 0 {
		score += 15
		if m.CodeBlocks > 5 {
			score += 10
		}
	}
	if m.HasMath {
		score += 20
	}
	if m.NonEnglish {
		score += 10
	}

	bonus := m.TotalElements / 100
	if bonus > 15 {
		bonus = 15
	}
	score += bonus

	if score < 0 {
		score = 0
	}
	if score > 100 {
		score = 100
	}
	return score
}
