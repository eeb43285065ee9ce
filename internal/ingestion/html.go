package ingestion

import (
	"fmt"
	"regexp"
	"strings"

	md "github.com/JohannesKaufmann/html-to-markdown"
	"github.com/PuerkitoBio/goquery"
)

// htmlTag matches an opening or closing tag of a common block or inline element
var htmlTag = regexp.MustCompile(`(?i)<(html|body|div|p|span|article|section|h[1-6]|ul|ol|li|br|table|a|strong|em|b|i)[\s/>]`)

// strippedElements never carry article text
const strippedElements = "script, style, nav, noscript, iframe"

// LooksLikeHTML reports whether pasted text is HTML markup rather than plain text
func LooksLikeHTML(text string) bool {
	return htmlTag.MatchString(text)
}

// HTMLToMarkdown removes scripts, styles and navigation and converts the rest to markdown
func HTMLToMarkdown(html string) (string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return "", fmt.Errorf("failed to parse HTML: %w", err)
	}
	doc.Find(strippedElements).Remove()

	body := doc.Find("body")
	if body.Length() == 0 {
		body = doc.Selection
	}
	cleaned, err := body.Html()
	if err != nil {
		return "", fmt.Errorf("failed to render HTML: %w", err)
	}

	converter := md.NewConverter("", true, nil)
	markdown, err := converter.ConvertString(cleaned)
	if err != nil {
		return "", fmt.Errorf("failed to convert HTML to markdown: %w", err)
	}
	return markdown, nil
}

// PrepareRawText turns pasted input into the text that is analyzed and stored as rawContent.
// HTML is converted to markdown first; if conversion fails the visible text is used instead.
func PrepareRawText(text string) string {
	if !LooksLikeHTML(text) {
		return CleanText(text)
	}

	markdown, err := HTMLToMarkdown(text)
	if err != nil {
		return CleanText(visibleText(text))
	}
	return CleanText(markdown)
}

func visibleText(html string) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return html
	}
	doc.Find(strippedElements).Remove()
	return doc.Text()
}
