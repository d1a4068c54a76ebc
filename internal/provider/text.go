package provider

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
)

func sanitizeText(in string, maxLen int) string {
	in = strings.TrimSpace(in)
	if in == "" {
		return ""
	}
	in = strings.Join(strings.Fields(in), " ")
	if maxLen > 0 && len(in) > maxLen {
		in = strings.ToValidUTF8(in[:maxLen], "")
	}
	return in
}

// htmlStrip returns the visible text of an HTML fragment. Input that fails
// to parse is returned unchanged.
func htmlStrip(in string) string {
	if strings.TrimSpace(in) == "" {
		return ""
	}
	if !strings.ContainsAny(in, "<&") {
		return in
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(in))
	if err != nil {
		return in
	}
	doc.Find("script, style").Remove()
	return doc.Text()
}
