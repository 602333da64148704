package keywords

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"
)

// Matcher проверяет релевантность текста по набору регулярных выражений.
// Набор общий для всех источников.
type Matcher struct {
	patterns []*regexp.Regexp
}

// Compile компилирует шаблоны без учёта регистра.
// Синонимы задаются альтернативой внутри шаблона: `npžp|npzp`.
func Compile(patterns []string) (*Matcher, error) {
	m := &Matcher{patterns: make([]*regexp.Regexp, 0, len(patterns))}

	for i, p := range patterns {
		if strings.TrimSpace(p) == "" {
			return nil, fmt.Errorf("keyword pattern #%d is empty", i)
		}
		re, err := regexp.Compile("(?i)" + p)
		if err != nil {
			return nil, fmt.Errorf("invalid keyword pattern %q: %w", p, err)
		}
		m.patterns = append(m.patterns, re)
	}

	return m, nil
}

// MustCompile как Compile, но паникует на ошибке. Для тестов и констант.
func MustCompile(patterns ...string) *Matcher {
	m, err := Compile(patterns)
	if err != nil {
		panic(err)
	}
	return m
}

// Match возвращает true, если хотя бы один шаблон встречается в тексте.
func (m *Matcher) Match(text string) bool {
	if text == "" {
		return false
	}
	t := strings.ToLower(text)
	for _, re := range m.patterns {
		if re.MatchString(t) {
			return true
		}
	}
	return false
}

// Relevant: заголовок и URL проверяются независимо.
// URL после разрешения percent-encoded, поэтому сверяем и декодированный вид:
// /v%C3%BDzva-7 должен совпасть с «výzva».
func (m *Matcher) Relevant(title, link string) bool {
	if m.Match(title) || m.Match(link) {
		return true
	}
	decoded, err := url.PathUnescape(link)
	if err != nil || decoded == link {
		return false
	}
	return m.Match(decoded)
}

// Len возвращает число скомпилированных шаблонов
func (m *Matcher) Len() int {
	return len(m.patterns)
}
