// Package extractor is the document-to-text boundary. The pipeline itself
// only ever sees a single page-joined text blob; this package produces that
// blob from a PDF statement export.
package extractor

import (
	"fmt"
	"io"
	"strings"
	"unicode"

	"github.com/ledongthuc/pdf"

	"loyalty-statement-import/pkg/errors"
)

// statementWords are words virtually every loyalty statement contains in
// some supported language. Extracted text with none of them is treated as
// garbage from an unreadable encoding.
var statementWords = []string{
	"miles", "xp", "statement", "balance", "status",
	"flight", "vlucht", "vol", "flug", "vuelo", "voo", "volo",
	"saldo", "solde", "overzicht",
}

// ExtractText reads a PDF file and returns the text of each page. Row-based
// extraction is tried first for layout fidelity, then the plain-text paths.
// Unreadable output is never returned.
func ExtractText(path string) ([]string, error) {
	pages, err := extractPages(path)
	if err != nil {
		return nil, errors.Wrap(err, errors.CategoryInput, errors.CodeUnreadableText,
			fmt.Sprintf("failed to extract text from %s", path)).
			WithSuggestion("the document may be image-based or use font encodings that cannot be decoded")
	}

	if !readable(pages) {
		return nil, errors.InputError(errors.CodeUnreadableText, path).
			WithSuggestion("no recognizable statement text found; the document may be scanned")
	}

	return pages, nil
}

// ExtractCombined returns the whole document as one page-joined blob, the
// input shape the parse pipeline consumes.
func ExtractCombined(path string) (string, int, error) {
	pages, err := ExtractText(path)
	if err != nil {
		return "", 0, err
	}
	return strings.Join(pages, "\n\n"), len(pages), nil
}

func extractPages(path string) (pages []string, err error) {
	// The pdf library panics on some malformed documents.
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("pdf reader crashed: %v", r)
		}
	}()

	f, r, err := pdf.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	if r.NumPage() == 0 {
		return nil, fmt.Errorf("document has no pages")
	}

	pages = pagesByRow(r)
	if readable(pages) {
		return pages, nil
	}

	pages = pagesByPlainText(r)
	if readable(pages) {
		return pages, nil
	}

	if text := documentPlainText(r); text != "" {
		return []string{text}, nil
	}
	return pages, nil
}

func pagesByRow(r *pdf.Reader) []string {
	var pages []string

	for i := 1; i <= r.NumPage(); i++ {
		page := r.Page(i)
		if page.V.IsNull() {
			continue
		}

		rows, err := page.GetTextByRow()
		if err != nil {
			continue
		}

		var lines []string
		for _, row := range rows {
			var parts []string
			for _, word := range row.Content {
				parts = append(parts, word.S)
			}
			if line := strings.TrimSpace(strings.Join(parts, " ")); line != "" {
				lines = append(lines, line)
			}
		}
		pages = append(pages, strings.Join(lines, "\n"))
	}

	return pages
}

func pagesByPlainText(r *pdf.Reader) []string {
	var pages []string

	for i := 1; i <= r.NumPage(); i++ {
		page := r.Page(i)
		if page.V.IsNull() {
			continue
		}

		fonts := make(map[string]*pdf.Font)
		for _, name := range page.Fonts() {
			f := page.Font(name)
			fonts[name] = &f
		}

		text, err := page.GetPlainText(fonts)
		if err != nil {
			continue
		}
		if text = strings.TrimSpace(text); text != "" {
			pages = append(pages, text)
		}
	}

	return pages
}

func documentPlainText(r *pdf.Reader) string {
	reader, err := r.GetPlainText()
	if err != nil {
		return ""
	}
	data, err := io.ReadAll(reader)
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(data))
}

// readable requires a minimum amount of text, a majority of plain readable
// characters, and at least one recognizable statement word.
func readable(pages []string) bool {
	combined := strings.TrimSpace(strings.Join(pages, " "))
	if len(combined) <= 50 {
		return false
	}

	total, ok := 0, 0
	for _, r := range combined {
		total++
		if r < 128 && (unicode.IsLetter(r) || unicode.IsDigit(r) || unicode.IsSpace(r) ||
			strings.ContainsRune(".,-/:;()'\"%&+=€£$", r)) {
			ok++
		}
	}
	if total == 0 || float64(ok)/float64(total) <= 0.6 {
		return false
	}

	lower := strings.ToLower(combined)
	for _, w := range statementWords {
		if strings.Contains(lower, w) {
			return true
		}
	}
	return false
}
