package normalize

import (
	"net/url"
	"strings"
)

// ResolveURL приводит href к абсолютному http(s) URL относительно base.
// Возвращает false, если ссылка пустая, якорная (#...), не парсится
// или ведёт на схему, отличную от http/https (mailto:, javascript:, tel: ...).
// Якорь из результата удаляется.
func ResolveURL(base, href string) (string, bool) {
	href = strings.TrimSpace(href)
	if href == "" || strings.HasPrefix(href, "#") {
		return "", false
	}

	ref, err := url.Parse(href)
	if err != nil {
		return "", false
	}

	// Относительная ссылка: достраиваем по адресу источника
	if ref.Scheme == "" {
		baseURL, err := url.Parse(base)
		if err != nil {
			return "", false
		}
		ref = baseURL.ResolveReference(ref)
	}

	if ref.Scheme != "http" && ref.Scheme != "https" {
		return "", false
	}
	if ref.Host == "" {
		return "", false
	}

	ref.Fragment = ""
	ref.RawFragment = ""

	return ref.String(), true
}
