package models

// PageSnapshot is the output of the Scraper (C4): a parsed view of a
// rendered page plus the media/metadata lifted out of it.
type PageSnapshot struct {
	URL           string
	HTML          string
	Title         string
	PublishedTime string
	Images        []ImageData
	Links         []LinkData
	HasPDF        bool
	Complexity    ComplexityMetrics
}

// ImageData is an <img> reference discovered during scraping.
type ImageData struct {
	Src     string
	Alt     string
	Width   *int
	Height  *int
	DataURL string
}

// LinkData is an <a> reference discovered during scraping.
type LinkData struct {
	Href       string
	Text       string
	IsInternal bool
}

// ComplexityMetrics summarizes structural signals of a page, used
// internally for diagnostics/logging (not part of the wire response).
type ComplexityMetrics struct {
	Tables        int
	ListDepth     int
	CodeBlocks    int
	HasMath       bool
	NonEnglish    bool
	TotalElements int
	Score         int
}

// ExtractedContent is the output of Readability (C5): a readable HTML
// fragment plus its flattened text, carrying forward the snapshot's
// metadata fields.
type ExtractedContent struct {
	URL           string
	Title         string
	PublishedTime string
	Content       string
	TextContent   string
}
