package httpmsg

import (
	"bytes"
	"errors"
	"strconv"
	"strings"
)

var (
	ErrEmptyMessage        = errors.New("empty message")
	ErrNoHeaderTerminator  = errors.New("header block is not terminated")
	errMalformedStartLine  = errors.New("malformed start line")
	crlf                   = []byte("\r\n")
	headerTerminatorCRLF   = []byte("\r\n\r\n")
	headerTerminatorBareLF = []byte("\n\n")
)

// HTTP1 разбирает и собирает сообщения HTTP/1.x.
type HTTP1 struct{}

// Analyze отделяет блок заголовков от тела. Блок заканчивается первой пустой
// строкой (CRLF CRLF, допускается LF LF). Сообщение без пустой строки
// считается состоящим только из заголовков, если оно заканчивается переводом
// строки, иначе возвращается ErrNoHeaderTerminator.
func (HTTP1) Analyze(msg []byte, isRequest bool) (Info, error) {
	if len(msg) == 0 {
		return Info{}, ErrEmptyMessage
	}

	head, offset := splitHead(msg)
	if offset < 0 {
		return Info{}, ErrNoHeaderTerminator
	}

	lines := strings.Split(string(head), "\n")
	headers := make([]string, 0, len(lines))
	for _, line := range lines {
		line = strings.TrimSuffix(line, "\r")
		if line == "" {
			continue
		}
		headers = append(headers, line)
	}

	if len(headers) == 0 || !validStartLine(headers[0], isRequest) {
		return Info{}, errMalformedStartLine
	}

	return Info{Headers: headers, BodyOffset: offset}, nil
}

// Build соединяет заголовки через CRLF, добавляет пустую строку и тело.
// Существующий Content-Length заменяется длиной нового тела. Если тело не пустое,
// а ни Content-Length, ни Transfer-Encoding нет, Content-Length добавляется.
// Остальные строки переносятся без изменений.
func (HTTP1) Build(headers []string, body []byte) []byte {
	var buf bytes.Buffer

	hasLength, hasEncoding := false, false
	for i, line := range headers {
		name, _, _ := strings.Cut(line, ":")
		switch {
		case i > 0 && strings.EqualFold(strings.TrimSpace(name), "Content-Length"):
			hasLength = true
			line = name + ": " + strconv.Itoa(len(body))
		case i > 0 && strings.EqualFold(strings.TrimSpace(name), "Transfer-Encoding"):
			hasEncoding = true
		}
		buf.WriteString(line)
		buf.Write(crlf)
	}
	if !hasLength && !hasEncoding && len(body) > 0 {
		buf.WriteString("Content-Length: " + strconv.Itoa(len(body)))
		buf.Write(crlf)
	}

	buf.Write(crlf)
	buf.Write(body)
	return buf.Bytes()
}

func splitHead(msg []byte) ([]byte, int) {
	crlfAt := bytes.Index(msg, headerTerminatorCRLF)
	lfAt := bytes.Index(msg, headerTerminatorBareLF)

	switch {
	case crlfAt >= 0 && (lfAt < 0 || crlfAt < lfAt):
		return msg[:crlfAt], crlfAt + len(headerTerminatorCRLF)
	case lfAt >= 0:
		return msg[:lfAt], lfAt + len(headerTerminatorBareLF)
	case bytes.HasSuffix(msg, []byte("\n")):
		return msg, len(msg)
	default:
		return nil, -1
	}
}

func validStartLine(line string, isRequest bool) bool {
	fields := strings.Fields(line)
	if isRequest {
		return len(fields) == 3 && strings.HasPrefix(fields[2], "HTTP/")
	}
	return len(fields) >= 2 && strings.HasPrefix(fields[0], "HTTP/")
}
