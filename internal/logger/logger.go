// Package logger предоставляет функции для инициализации и использования логирования
// в приложении, включая логирование HTTP-запросов с помощью библиотеки zap
// и диагностический канал для преобразований тела сообщения.
package logger

import (
	"bufio"
	"errors"
	"net"
	"net/http"
	"os"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Log является глобальной переменной для использования логгера. Изначально настроен на no-op логгер.
var Log = zap.NewNop()

// Initialize настраивает и инициализирует логгер с указанным уровнем логирования.
// Если file не пустой, записи дублируются в файл с ротацией.
// Возвращает ошибку, если уровень логирования некорректен или произошла ошибка при создании логгера.
func Initialize(level, file string) error {
	lvl, err := zap.ParseAtomicLevel(level)
	if err != nil {
		return err
	}

	cfg := zap.NewProductionConfig()
	cfg.Level = lvl

	zl, err := cfg.Build()
	if err != nil {
		return err
	}

	if file != "" {
		zl = zap.New(zapcore.NewTee(
			zapcore.NewCore(zapcore.NewJSONEncoder(cfg.EncoderConfig), zapcore.Lock(os.Stderr), lvl),
			zapcore.NewCore(zapcore.NewJSONEncoder(cfg.EncoderConfig), zapcore.AddSync(rotatingWriter(file)), lvl),
		), zap.AddCaller())
	}

	Log = zl
	return nil
}

func rotatingWriter(file string) *lumberjack.Logger {
	return &lumberjack.Logger{
		Filename:   file,
		MaxSize:    25,
		MaxBackups: 10,
		MaxAge:     14,
		Compress:   true,
	}
}

// Sink — диагностический канал для gzip64.Engine поверх zap.
type Sink struct {
	l *zap.Logger
}

// NewSink создаёт диагностический канал. Если l равен nil, используется глобальный Log.
func NewSink(l *zap.Logger) *Sink {
	return &Sink{l: l}
}

// Println записывает строку диагностики с уровнем Warn.
func (s *Sink) Println(line string) {
	l := s.l
	if l == nil {
		l = Log
	}
	l.Warn(line, zap.String("component", "gzip64"))
}

type responseData struct {
	status int
	size   int
}

type loggingResponseWriter struct {
	http.ResponseWriter
	data *responseData
}

func (r *loggingResponseWriter) Write(b []byte) (int, error) {
	size, err := r.ResponseWriter.Write(b)
	r.data.size += size
	return size, err
}

func (r *loggingResponseWriter) WriteHeader(statusCode int) {
	r.ResponseWriter.WriteHeader(statusCode)
	r.data.status = statusCode
}

func (r *loggingResponseWriter) Unwrap() http.ResponseWriter {
	return r.ResponseWriter
}

// Hijack нужен для перехода соединения на WebSocket.
func (r *loggingResponseWriter) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	h, ok := r.ResponseWriter.(http.Hijacker)
	if !ok {
		return nil, nil, errors.New("response writer does not support hijacking")
	}
	r.data.status = http.StatusSwitchingProtocols
	return h.Hijack()
}

// RequestLogger оборачивает HTTP-обработчик, логируя информацию о запросах:
// путь, метод, статус ответа, размер ответа и время выполнения.
func RequestLogger(h http.HandlerFunc) http.HandlerFunc {
	logFn := func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		data := &responseData{status: http.StatusOK}
		lw := &loggingResponseWriter{ResponseWriter: w, data: data}

		h(lw, r)

		Log.Info("got incoming HTTP request",
			zap.String("path", r.RequestURI),
			zap.String("method", r.Method),
			zap.Int("status", data.status),
			zap.Int("size", data.size),
			zap.Duration("duration", time.Since(start)),
		)
	}

	return logFn
}
