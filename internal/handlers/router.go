package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/sol1corejz/gzip64-inspector/internal/logger"
	"github.com/sol1corejz/gzip64-inspector/internal/middlewares"
)

// NewRouter определяет маршруты API инспектора.
//
// Маршруты:
// - "/ping" (GET): проверка доступности сервиса.
// - "/api/transform/applicable" (POST): применимо ли преобразование к сообщению.
// - "/api/transform/decode" (POST): Base64 -> gzip -> текст.
// - "/api/transform/encode" (POST): текст -> gzip -> Base64.
// - "/api/tabs" (POST): открыть вкладку.
// - "/api/tabs/{tabID}/message" (PUT, GET): загрузить сообщение, получить собранное сообщение.
// - "/api/tabs/{tabID}/text" (PUT): заменить текст вкладки.
// - "/api/tabs/{tabID}/selection" (GET): выделенная часть текста.
// - "/api/tabs/{tabID}" (DELETE): закрыть вкладку.
// - "/api/tabs/{tabID}/ws" (GET): WebSocket-канал вкладки.
// - "/api/internal/stats" (GET): статистика, только для доверенной подсети.
func NewRouter(h *Handlers, gzipLevel int, trustedSubnet string) chi.Router {
	gz := middlewares.GzipMiddleware(gzipLevel, h.MaxBodySize)
	authed := middlewares.AuthMiddleware(h.Secret)

	wrap := func(fn http.HandlerFunc) http.HandlerFunc {
		return logger.RequestLogger(gz(fn))
	}
	wrapAuthed := func(fn http.HandlerFunc) http.HandlerFunc {
		return wrap(authed(fn))
	}

	r := chi.NewRouter()

	r.Get("/ping", logger.RequestLogger(h.HandlePing))

	r.Route("/api/transform", func(r chi.Router) {
		r.Post("/applicable", wrap(h.HandleApplicable))
		r.Post("/decode", wrap(h.HandleDecode))
		r.Post("/encode", wrap(h.HandleEncode))
	})

	r.Route("/api/tabs", func(r chi.Router) {
		r.Post("/", wrap(h.HandleCreateTab))
		r.Put("/{tabID}/message", wrapAuthed(h.HandleSetMessage))
		r.Get("/{tabID}/message", wrapAuthed(h.HandleGetMessage))
		r.Put("/{tabID}/text", wrapAuthed(h.HandleSetText))
		r.Get("/{tabID}/selection", wrapAuthed(h.HandleSelection))
		r.Delete("/{tabID}", wrapAuthed(h.HandleDeleteTab))
		// WebSocket не оборачивается сжатием: соединение перехватывается.
		r.Get("/{tabID}/ws", logger.RequestLogger(authed(h.HandleTabSocket)))
	})

	r.Get("/api/internal/stats", logger.RequestLogger(middlewares.TrustedSubnetMiddleware(trustedSubnet, gz(h.HandleGetInternalStats))))

	return r
}
