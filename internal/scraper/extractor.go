package scraper

import (
	"fmt"
	"io"

	"github.com/PuerkitoBio/goquery"

	"grantwatch/internal/config"
	"grantwatch/internal/keywords"
	"grantwatch/internal/normalize"
)

type Extractor struct {
	matcher *keywords.Matcher
}

func NewExtractor(matcher *keywords.Matcher) *Extractor {
	return &Extractor{
		matcher: matcher,
	}
}

// ExtractHTML парсит страницу и извлекает из неё кандидатов
func (e *Extractor) ExtractHTML(r io.Reader, src config.SourceConfig) ([]Candidate, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to parse HTML: %w", err)
	}
	return e.Extract(doc, src), nil
}

// Extract проходит по элементам item_selector в порядке документа.
// Битые элементы молча пропускаются, ошибка по одному элементу не прерывает разбор.
func (e *Extractor) Extract(doc *goquery.Document, src config.SourceConfig) []Candidate {
	hrefAttr := src.HrefAttr
	if hrefAttr == "" {
		hrefAttr = "href"
	}

	var items []Candidate

	doc.Find(src.ItemSelector).Each(func(i int, sel *goquery.Selection) {
		href, exists := sel.Attr(hrefAttr)
		if !exists {
			return
		}

		link, ok := normalize.ResolveURL(src.URL, href)
		if !ok {
			return
		}

		var rawTitle string
		if src.TitleAttr != "" {
			rawTitle, _ = sel.Attr(src.TitleAttr)
		} else {
			rawTitle = elementText(sel)
		}

		title := normalize.Text(rawTitle)
		if title == "" {
			return // Пропуск если нет title
		}

		if !e.matcher.Relevant(title, link) {
			return
		}

		items = append(items, Candidate{Title: title, URL: link})
	})

	return items
}
