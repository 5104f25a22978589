package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/sol1corejz/gzip64-inspector/cmd/gzip"
	"github.com/sol1corejz/gzip64-inspector/internal/file"
	"github.com/sol1corejz/gzip64-inspector/internal/logger"
	"github.com/sol1corejz/gzip64-inspector/internal/storage"
	"github.com/sol1corejz/gzip64-inspector/pkg/gzip64"
	"github.com/sol1corejz/gzip64-inspector/pkg/httpmsg"
	"go.uber.org/zap"
)

// DefaultMaxBodySize ограничивает размер тела входящего запроса к API.
const DefaultMaxBodySize int64 = 64 << 20

type Handlers struct {
	Store       storage.Storage
	Engine      *gzip64.Engine
	Filter      httpmsg.Filter
	Secret      string
	MaxBodySize int64

	// Journal получает запись о каждом сообщении, собранном после правки. nil отключает журнал.
	Journal *file.Producer
}

func New(store storage.Storage, engine *gzip64.Engine, filter httpmsg.Filter, secret string) *Handlers {
	return &Handlers{
		Store:       store,
		Engine:      engine,
		Filter:      filter,
		Secret:      secret,
		MaxBodySize: DefaultMaxBodySize,
	}
}

func (h *Handlers) HandlePing(w http.ResponseWriter, r *http.Request) {
	if err := h.Store.Ping(); err != nil {
		http.Error(w, "Storage unavailable", http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusOK)
}

func (h *Handlers) readBody(w http.ResponseWriter, r *http.Request) ([]byte, bool) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, h.MaxBodySize))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) || errors.Is(err, gzip.ErrBodyTooLarge) {
			http.Error(w, "Request body too large", http.StatusRequestEntityTooLarge)
			return nil, false
		}
		http.Error(w, "Failed to read request body", http.StatusBadRequest)
		return nil, false
	}
	defer r.Body.Close()

	return body, true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Log.Debug("error encoding response", zap.Error(err))
	}
}
