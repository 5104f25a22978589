// Модуль gzip для транспортного сжатия HTTP-тел сервиса инспектора.
// Позволяет отдавать ответы в сжатом виде и принимать сжатые запросы,
// ограничивая объём распакованных данных.
package gzip

import (
	"compress/gzip"
	"errors"
	"io"
	"net/http"
)

// ErrBodyTooLarge возвращается при чтении, если распакованное тело больше допустимого.
var ErrBodyTooLarge = errors.New("decompressed request body too large")

// CompressWriter предоставляет обертку для http.ResponseWriter,
// которая позволяет записывать данные в сжатом формате с использованием gzip.
type CompressWriter struct {
	w           http.ResponseWriter
	zw          *gzip.Writer
	wroteHeader bool
	compress    bool
}

// NewCompressWriter создает новый CompressWriter с заданным уровнем сжатия.
// Некорректный уровень заменяется уровнем по умолчанию.
func NewCompressWriter(w http.ResponseWriter, level int) *CompressWriter {
	zw, err := gzip.NewWriterLevel(w, level)
	if err != nil {
		zw = gzip.NewWriter(w)
	}
	return &CompressWriter{
		w:  w,
		zw: zw,
	}
}

// Header возвращает заголовки ответа, позволяя управлять ими через CompressWriter.
func (c *CompressWriter) Header() http.Header {
	return c.w.Header()
}

// Write записывает данные в ResponseWriter. Данные сжимаются, если ответ успешный.
func (c *CompressWriter) Write(p []byte) (int, error) {
	if !c.wroteHeader {
		c.WriteHeader(http.StatusOK)
	}
	if !c.compress {
		return c.w.Write(p)
	}
	return c.zw.Write(p)
}

// WriteHeader отправляет статус код ответа. Для кодов меньше 300 добавляет
// заголовок Content-Encoding и удаляет Content-Length, который перестаёт быть верным.
func (c *CompressWriter) WriteHeader(statusCode int) {
	if c.wroteHeader {
		return
	}
	c.wroteHeader = true
	if statusCode < 300 && statusCode != http.StatusNoContent {
		c.compress = true
		c.w.Header().Set("Content-Encoding", "gzip")
		c.w.Header().Del("Content-Length")
	}
	c.w.WriteHeader(statusCode)
}

// Close завершает работу с gzip.Writer, если ответ сжимался.
func (c *CompressWriter) Close() error {
	if !c.compress {
		return nil
	}
	return c.zw.Close()
}

// CompressReader предоставляет обертку для io.ReadCloser, которая позволяет
// читать данные в сжатом виде и декомпрессировать их с использованием gzip.
type CompressReader struct {
	r      io.ReadCloser
	zr     *gzip.Reader
	remain int64
	limit  bool
}

// NewCompressReader создает новый CompressReader. max ограничивает объём
// распакованных данных, 0 снимает ограничение.
func NewCompressReader(r io.ReadCloser, max int64) (*CompressReader, error) {
	zr, err := gzip.NewReader(r)
	if err != nil {
		return nil, err
	}

	return &CompressReader{
		r:      r,
		zr:     zr,
		remain: max,
		limit:  max > 0,
	}, nil
}

// Read читает данные из сжатого потока и распаковывает их.
func (c *CompressReader) Read(p []byte) (int, error) {
	if !c.limit {
		return c.zr.Read(p)
	}
	if c.remain <= 0 {
		// Проверяем, остались ли ещё данные за пределом.
		var one [1]byte
		if n, _ := c.zr.Read(one[:]); n > 0 {
			return 0, ErrBodyTooLarge
		}
		return 0, io.EOF
	}
	if int64(len(p)) > c.remain {
		p = p[:c.remain]
	}
	n, err := c.zr.Read(p)
	c.remain -= int64(n)
	return n, err
}

// Close закрывает как исходный Reader, так и gzip.Reader.
func (c *CompressReader) Close() error {
	if err := c.r.Close(); err != nil {
		return err
	}
	return c.zr.Close()
}
