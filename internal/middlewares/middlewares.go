// Package middlewares содержит промежуточные обработчики (middleware), которые
// выполняются во время обработки HTTP-запросов: транспортное сжатие gzip,
// проверку токена владельца вкладок и ограничение доступа по подсети.
package middlewares

import (
	"context"
	"net"
	"net/http"
	"strings"

	"github.com/sol1corejz/gzip64-inspector/cmd/gzip"
	"github.com/sol1corejz/gzip64-inspector/internal/auth"
	"github.com/sol1corejz/gzip64-inspector/internal/logger"
	"go.uber.org/zap"
)

type ctxKey struct{}

// UserID возвращает идентификатор пользователя, сохранённый AuthMiddleware.
func UserID(ctx context.Context) string {
	id, _ := ctx.Value(ctxKey{}).(string)
	return id
}

// WithUserID сохраняет идентификатор пользователя в контексте.
func WithUserID(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, ctxKey{}, userID)
}

// GzipMiddleware проверяет, поддерживает ли клиент сжатие данных с использованием Gzip,
// и если поддерживает, применяет сжатие для ответа. Если запрос содержит сжатые данные,
// он их распаковывает перед передачей в следующий обработчик, но не больше max байт.
//
// Это транспортное сжатие (Content-Encoding) и оно не связано с телами
// в формате Base64/gzip, которые обрабатывает инспектор.
func GzipMiddleware(level int, max int64) func(h http.HandlerFunc) http.HandlerFunc {
	return func(h http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			ow := w

			acceptEncoding := r.Header.Get("Accept-Encoding")
			if strings.Contains(acceptEncoding, "gzip") {
				cw := gzip.NewCompressWriter(w, level)
				ow = cw
				defer cw.Close()
			}

			contentEncoding := r.Header.Get("Content-Encoding")
			if strings.Contains(contentEncoding, "gzip") {
				cr, err := gzip.NewCompressReader(r.Body, max)
				if err != nil {
					http.Error(w, "Invalid gzip request body", http.StatusBadRequest)
					return
				}
				r.Body = cr
				r.Header.Del("Content-Encoding")
				defer cr.Close()
			}

			h.ServeHTTP(ow, r)
		}
	}
}

// AuthMiddleware проверяет токен из cookie или заголовка Authorization
// и сохраняет идентификатор пользователя в контексте запроса.
func AuthMiddleware(secret string) func(h http.HandlerFunc) http.HandlerFunc {
	return func(h http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			token := TokenFromRequest(r)
			if token == "" {
				http.Error(w, "Missing token", http.StatusUnauthorized)
				return
			}

			userID, err := auth.GetUserID(secret, token)
			if err != nil {
				logger.Log.Info("Invalid token", zap.String("path", r.URL.Path), zap.Error(err))
				http.Error(w, "Invalid token", http.StatusUnauthorized)
				return
			}

			h.ServeHTTP(w, r.WithContext(WithUserID(r.Context(), userID)))
		}
	}
}

// TokenFromRequest извлекает токен из cookie или заголовка "Authorization: Bearer".
func TokenFromRequest(r *http.Request) string {
	if cookie, err := r.Cookie(auth.CookieName); err == nil && cookie.Value != "" {
		return cookie.Value
	}

	if token, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer "); ok {
		return strings.TrimSpace(token)
	}
	return ""
}

// TrustedSubnetMiddleware проверяет, входит ли IP клиента в доверенную подсеть.
func TrustedSubnetMiddleware(subnet string, h http.HandlerFunc) http.HandlerFunc {
	_, trustedNet, err := net.ParseCIDR(subnet)
	if err != nil {
		// Если подсеть некорректна, запрещаем доступ к эндпоинту.
		return func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "Forbidden", http.StatusForbidden)
		}
	}

	return func(w http.ResponseWriter, r *http.Request) {
		clientIP := r.Header.Get("X-Real-IP")
		if clientIP == "" {
			clientIP, _, _ = net.SplitHostPort(r.RemoteAddr)
		}

		ip := net.ParseIP(clientIP)
		if ip == nil || !trustedNet.Contains(ip) {
			http.Error(w, "Forbidden", http.StatusForbidden)
			return
		}

		h.ServeHTTP(w, r)
	}
}
