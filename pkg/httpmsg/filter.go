package httpmsg

import (
	"mime"
	"strings"
)

// ContentTypeHeader — имя заголовка, которое проверяет фильтр. Сравнение чувствительно к регистру.
const ContentTypeHeader = "Content-Type"

// MatchMode задаёт строгость сравнения значения Content-Type.
type MatchMode int

const (
	// MatchLoose ищет подстроку в значении заголовка: "application/textual"
	// совпадает с "application/text".
	MatchLoose MatchMode = iota
	// MatchStrict разбирает значение как media type и сравнивает тип целиком без учёта регистра.
	MatchStrict
)

// ApplicableTypes — типы содержимого, для которых применяется преобразование.
var ApplicableTypes = []string{"application/text", "text/html"}

// Filter решает, применимо ли преобразование к сообщению.
type Filter struct {
	Mode MatchMode
}

// IsApplicable проверяет заголовки в режиме MatchLoose.
func IsApplicable(headers []string, isRequest bool) bool {
	return Filter{Mode: MatchLoose}.IsApplicable(headers, isRequest)
}

// IsApplicable просматривает заголовки по порядку и проверяет значение первого
// заголовка Content-Type. Если такого заголовка нет, возвращает false.
// Решение не зависит от isRequest: и запросы, и ответы проверяются одинаково.
func (f Filter) IsApplicable(headers []string, isRequest bool) bool {
	for _, line := range headers {
		name, value, ok := strings.Cut(line, ":")
		if !ok || name != ContentTypeHeader {
			continue
		}
		return f.matches(value)
	}
	return false
}

// Applies разбирает сообщение и проверяет его заголовки.
// Сообщение, которое не удалось разобрать, считается неприменимым.
func (f Filter) Applies(p Parser, msg []byte, isRequest bool) bool {
	info, err := p.Analyze(msg, isRequest)
	if err != nil {
		return false
	}
	return f.IsApplicable(info.Headers, isRequest)
}

func (f Filter) matches(value string) bool {
	if f.Mode == MatchStrict {
		mediaType, _, err := mime.ParseMediaType(value)
		if err != nil {
			return false
		}
		for _, t := range ApplicableTypes {
			if mediaType == t {
				return true
			}
		}
		return false
	}

	for _, t := range ApplicableTypes {
		if strings.Contains(value, t) {
			return true
		}
	}
	return false
}
