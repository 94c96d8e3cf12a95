package services

import (
	"html"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// NonTextMarker replaces bodies whose content type is neither HTML nor text.
const NonTextMarker = "[Non-HTML content detected at URL]"

// RawDocument is a fetched body together with the content type the source declared.
type RawDocument struct {
	Body        string
	ContentType string
}

var (
	scriptBlockRe = regexp.MustCompile(`(?is)<script[^>]*>.*?</script>`)
	styleBlockRe  = regexp.MustCompile(`(?is)<style[^>]*>.*?</style>`)
	tagRe         = regexp.MustCompile(`<[^>]+>`)
	whitespaceRe  = regexp.MustCompile(`[\s\p{Zs}]+`)
)

// noiseSelectors are removed before the container is narrowed.
var noiseSelectors = []string{"script", "style", "noscript", "svg", "header", "footer", "nav", "aside"}

// postingSelectors are tried in document order; the first match becomes the extraction root.
var postingSelectors = []string{
	"main", "article", "[role='main']",
	".job", ".job-details", ".jobdescription", ".job-description",
	".posting", ".description",
}

type Normalizer struct {
	extractionCap int
	// minContainerChars is the shortest narrowed text accepted before falling back to <body>.
	minContainerChars int
}

func NewNormalizer(extractionCap int) *Normalizer {
	return &Normalizer{
		extractionCap:     extractionCap,
		minContainerChars: MinJobTextChars,
	}
}

// Normalize turns a fetched document into capped plain text.
func (n *Normalizer) Normalize(doc RawDocument) string {
	switch {
	case IsHTMLContentType(doc.ContentType):
		return n.NormalizeHTML(doc.Body)
	case IsTextContentType(doc.ContentType):
		return n.NormalizePlain(doc.Body)
	default:
		return NonTextMarker
	}
}

// NormalizeHTML drops noise regions, narrows to the most specific posting container
// and strips the remaining markup.
func (n *Normalizer) NormalizeHTML(body string) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(body))
	if err != nil {
		return n.Clip(StripHTMLFast(body))
	}

	doc.Find(strings.Join(noiseSelectors, ", ")).Remove()

	if container := doc.Find(strings.Join(postingSelectors, ", ")).First(); container.Length() > 0 {
		if fragment, err := goquery.OuterHtml(container); err == nil {
			text := StripHTMLFast(fragment)
			if RuneLen(text) >= n.minContainerChars {
				return n.Clip(text)
			}
		}
	}

	fragment, err := doc.Find("body").First().Html()
	if err != nil || strings.TrimSpace(fragment) == "" {
		return n.Clip(StripHTMLFast(body))
	}
	return n.Clip(StripHTMLFast(fragment))
}

// NormalizePlain trims and caps text that is already plain.
func (n *Normalizer) NormalizePlain(text string) string {
	return n.Clip(strings.TrimSpace(text))
}

// Clip enforces the extraction cap by keeping the prefix.
func (n *Normalizer) Clip(text string) string {
	if n.extractionCap <= 0 {
		return text
	}
	return TruncateRunes(text, n.extractionCap)
}

// StripHTMLFast removes script and style blocks with their content, replaces every other
// tag with a space, decodes entities and collapses whitespace.
func StripHTMLFast(body string) string {
	body = scriptBlockRe.ReplaceAllString(body, " ")
	body = styleBlockRe.ReplaceAllString(body, " ")
	body = tagRe.ReplaceAllString(body, " ")
	body = html.UnescapeString(body)
	body = whitespaceRe.ReplaceAllString(body, " ")
	return strings.TrimSpace(body)
}

func IsHTMLContentType(contentType string) bool {
	return strings.Contains(strings.ToLower(contentType), "html")
}

func IsTextContentType(contentType string) bool {
	return strings.Contains(strings.ToLower(contentType), "text")
}
