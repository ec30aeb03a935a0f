package processors

import (
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// HTMLCleaner strips markup from pasted job postings so prompts carry plain
// text instead of HTML clutter. Callers frequently paste a whole page source
// into the job_description field; sending that verbatim wastes tokens and
// degrades extraction quality.
type HTMLCleaner struct {
	// Tags whose content never describes the position
	removeTags []string
}

// NewHTMLCleaner creates a new HTML cleaner instance
func NewHTMLCleaner() *HTMLCleaner {
	return &HTMLCleaner{
		removeTags: []string{
			"script", "style", "noscript", "iframe", "object", "embed",
			"form", "input", "button", "select", "textarea",
			"nav", "header", "footer", "aside", "menu",
			"svg", "path", "g", "defs", "use", "symbol",
			"meta", "link", "title", "base",
		},
	}
}

var htmlTagRegex = regexp.MustCompile(`<[a-zA-Z!/][^>]*>`)

// LooksLikeHTML reports whether the text appears to contain markup worth
// stripping. Plain-text descriptions pass through untouched.
func (hc *HTMLCleaner) LooksLikeHTML(text string) bool {
	return htmlTagRegex.MatchString(text)
}

// ExtractPostingText reduces an HTML job posting to readable plain text.
// Content areas are preferred over chrome; when no recognizable content
// container exists the whole body text is used.
func (hc *HTMLCleaner) ExtractPostingText(html string) (string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return "", err
	}

	for _, tag := range hc.removeTags {
		doc.Find(tag).Remove()
	}

	contentSelectors := []string{
		"main", "[role='main']", "#main",
		"article",
		".job", ".job-posting", ".job-detail", ".job-description",
		".posting", ".position", ".vacancy",
		".content", ".description", ".details",
		"[data-testid*='job']", "[data-test*='job']",
	}

	var contentParts []string
	for _, selector := range contentSelectors {
		doc.Find(selector).Each(func(i int, s *goquery.Selection) {
			if text := strings.TrimSpace(s.Text()); len(text) > 50 {
				contentParts = append(contentParts, text)
			}
		})
	}

	if len(contentParts) == 0 {
		if bodyText := strings.TrimSpace(doc.Find("body").Text()); bodyText != "" {
			contentParts = append(contentParts, bodyText)
		}
	}

	return hc.normalizeText(strings.Join(contentParts, "\n\n")), nil
}

var (
	runSpaceRegex  = regexp.MustCompile(`[ \t]+`)
	runLineRegex   = regexp.MustCompile(`\n{3,}`)
	noScriptNotice = regexp.MustCompile(`(?i)\bplease enable javascript\b[^.\n]*\.?`)
)

// normalizeText collapses whitespace runs and drops boilerplate notices
func (hc *HTMLCleaner) normalizeText(text string) string {
	text = noScriptNotice.ReplaceAllString(text, "")
	text = runSpaceRegex.ReplaceAllString(text, " ")
	text = runLineRegex.ReplaceAllString(text, "\n\n")
	return strings.TrimSpace(text)
}

// EstimateTokens returns a rough token count for prompt budgeting
func (hc *HTMLCleaner) EstimateTokens(text string) int {
	// ~4 characters per token for English prose
	return len(text) / 4
}
