package normalize

import (
	"strings"
)

// Text схлопывает любые последовательности пробельных символов (включая NBSP)
// в один пробел и обрезает края. Пустой ввод даёт пустую строку.
func Text(raw string) string {
	if raw == "" {
		return ""
	}
	return strings.Join(strings.Fields(raw), " ")
}
