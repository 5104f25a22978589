// Package httpmsg описывает HTTP-сообщение как упорядоченный список строк заголовка
// и тело, решает, применимо ли к сообщению преобразование Base64/gzip,
// и собирает сообщение заново с новым телом.
//
// Разбор и сборка сообщения выполняются внешними компонентами через интерфейсы
// Parser и Builder. Пакет содержит их реализацию для HTTP/1.x (HTTP1).
package httpmsg

// Info — результат разбора сообщения.
// Headers содержит строки заголовка в исходном порядке; первая строка —
// стартовая строка запроса или ответа. BodyOffset — смещение начала тела.
type Info struct {
	Headers    []string
	BodyOffset int
}

// Parser разбирает сообщение на заголовки и смещение тела.
type Parser interface {
	Analyze(msg []byte, isRequest bool) (Info, error)
}

// Builder собирает сообщение из заголовков и тела.
// Builder отвечает за пересчёт заголовков, зависящих от длины тела
// (Content-Length). Rebuild полагается на этот контракт.
type Builder interface {
	Build(headers []string, body []byte) []byte
}

// Body возвращает тело сообщения по результату разбора.
func Body(msg []byte, info Info) []byte {
	if info.BodyOffset < 0 || info.BodyOffset > len(msg) {
		return nil
	}
	return msg[info.BodyOffset:]
}

// Rebuild подставляет новое тело в сообщение с исходными заголовками.
// Порядок и содержимое заголовков передаются сборщику без изменений;
// согласование Content-Length с новым телом выполняет Builder.
func Rebuild(b Builder, headers []string, body []byte) []byte {
	return b.Build(append([]string(nil), headers...), body)
}
