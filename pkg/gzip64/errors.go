package gzip64

import "errors"

// Виды ошибок преобразования. Проверяются через errors.Is.
var (
	ErrBase64Decode      = errors.New("base64 decode")
	ErrGzipFormat        = errors.New("gzip format")
	ErrCompression       = errors.New("compression")
	ErrSizeLimitExceeded = errors.New("size limit exceeded")
)

// Kind возвращает короткое имя вида ошибки для диагностики и API.
func Kind(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrBase64Decode):
		return "Base64DecodeError"
	case errors.Is(err, ErrSizeLimitExceeded):
		return "SizeLimitExceeded"
	case errors.Is(err, ErrGzipFormat):
		return "GzipFormatError"
	case errors.Is(err, ErrCompression):
		return "CompressionError"
	default:
		return "Error"
	}
}
