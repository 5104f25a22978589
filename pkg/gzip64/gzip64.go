// Package gzip64 реализует преобразование тела HTTP-сообщения между
// транспортным видом (Base64 поверх gzip) и редактируемым открытым текстом.
//
// Декодирование: Base64 -> gzip -> открытый текст.
// Кодирование: открытый текст -> gzip -> Base64.
//
// Ни одна функция пакета не паникует на входных данных: каждая ошибка
// записывается в диагностический канал (Sink) и возвращается вызывающему коду,
// который сам решает, показывать ли исходное тело без изменений.
package gzip64

import (
	"bytes"
	"compress/gzip"
	"encoding/base64"
	"fmt"
	"io"
	"strings"
)

// DefaultMaxDecompressedSize ограничивает размер распакованных данных по умолчанию.
const DefaultMaxDecompressedSize int64 = 32 << 20

// Base64Codec описывает кодек Base64, который использует Engine.
// Decode обязан возвращать ошибку на некорректном вводе, а не обрезать его.
type Base64Codec interface {
	Encode(data []byte) string
	Decode(text string) ([]byte, error)
}

// Sink — диагностический канал, в который Engine пишет по одной строке на каждую ошибку.
// Канал не влияет на ход выполнения.
type Sink interface {
	Println(line string)
}

// StdBase64 — кодек со стандартным алфавитом и дополнением '='.
type StdBase64 struct{}

// Encode кодирует данные стандартным Base64 с дополнением.
func (StdBase64) Encode(data []byte) string {
	return base64.StdEncoding.EncodeToString(data)
}

// Decode декодирует текст стандартным Base64.
// Пробельные символы по краям отбрасываются, переводы строк внутри игнорируются.
func (StdBase64) Decode(text string) ([]byte, error) {
	return base64.StdEncoding.DecodeString(strings.TrimSpace(text))
}

// Engine выполняет оба взаимно обратных преобразования.
// Engine не хранит состояния между вызовами и может использоваться повторно.
type Engine struct {
	codec   Base64Codec
	sink    Sink
	level   int
	maxSize int64
}

// Option настраивает Engine.
type Option func(*Engine)

// WithCodec задаёт кодек Base64.
func WithCodec(c Base64Codec) Option {
	return func(e *Engine) {
		e.codec = c
	}
}

// WithSink задаёт диагностический канал. nil отключает диагностику.
func WithSink(s Sink) Option {
	return func(e *Engine) {
		e.sink = s
	}
}

// WithLevel задаёт уровень сжатия gzip.
func WithLevel(level int) Option {
	return func(e *Engine) {
		e.level = level
	}
}

// WithMaxDecompressedSize ограничивает объём распакованных данных.
// Значение 0 снимает ограничение.
func WithMaxDecompressedSize(n int64) Option {
	return func(e *Engine) {
		e.maxSize = n
	}
}

// NewEngine создаёт Engine со стандартным кодеком Base64, уровнем сжатия
// по умолчанию и ограничением DefaultMaxDecompressedSize.
func NewEngine(opts ...Option) *Engine {
	e := &Engine{
		codec:   StdBase64{},
		level:   gzip.DefaultCompression,
		maxSize: DefaultMaxDecompressedSize,
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.codec == nil {
		e.codec = StdBase64{}
	}
	return e
}

// DecodeAndDecompress декодирует Base64 и распаковывает gzip.
// При ошибке возвращает nil и ошибку одного из видов ErrBase64Decode,
// ErrGzipFormat или ErrSizeLimitExceeded.
func (e *Engine) DecodeAndDecompress(encoded []byte) ([]byte, error) {
	raw, err := e.codec.Decode(string(encoded))
	if err != nil {
		return nil, e.fail(ErrBase64Decode, err)
	}

	plain, err := e.decompress(raw)
	if err != nil {
		return nil, e.report(err)
	}
	return plain, nil
}

// CompressAndEncode сжимает данные в стандартный поток gzip и кодирует его Base64.
// При ошибке возвращает nil и ошибку вида ErrCompression.
func (e *Engine) CompressAndEncode(plain []byte) ([]byte, error) {
	compressed, err := e.compress(plain)
	if err != nil {
		return nil, e.fail(ErrCompression, err)
	}
	return []byte(e.codec.Encode(compressed)), nil
}

func (e *Engine) compress(data []byte) ([]byte, error) {
	var buf bytes.Buffer

	zw, err := gzip.NewWriterLevel(&buf, e.level)
	if err != nil {
		return nil, fmt.Errorf("failed to create gzip writer: %w", err)
	}

	if _, err := zw.Write(data); err != nil {
		zw.Close()
		return nil, fmt.Errorf("failed to write data: %w", err)
	}

	if err := zw.Close(); err != nil {
		return nil, fmt.Errorf("failed to close gzip writer: %w", err)
	}

	return buf.Bytes(), nil
}

func (e *Engine) decompress(data []byte) ([]byte, error) {
	if !IsGzip(data) {
		return nil, fmt.Errorf("%w: missing gzip magic bytes", ErrGzipFormat)
	}

	zr, err := gzip.NewReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: failed to create gzip reader: %w", ErrGzipFormat, err)
	}
	defer zr.Close()

	var src io.Reader = zr
	if e.maxSize > 0 {
		src = io.LimitReader(zr, e.maxSize+1)
	}

	var buf bytes.Buffer
	n, err := io.Copy(&buf, src)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read compressed data: %w", ErrGzipFormat, err)
	}
	if e.maxSize > 0 && n > e.maxSize {
		return nil, fmt.Errorf("%w: more than %d bytes", ErrSizeLimitExceeded, e.maxSize)
	}

	return buf.Bytes(), nil
}

func (e *Engine) fail(kind, err error) error {
	return e.report(fmt.Errorf("%w: %w", kind, err))
}

// report пишет ошибку в диагностический канал в виде "error(<вид>): <подробности>".
func (e *Engine) report(err error) error {
	if e.sink != nil {
		e.sink.Println(fmt.Sprintf("error(%s): %s", Kind(err), err))
	}
	return err
}

// IsGzip проверяет наличие магических байтов gzip.
func IsGzip(data []byte) bool {
	return len(data) >= 2 && data[0] == 0x1f && data[1] == 0x8b
}
