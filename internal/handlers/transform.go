package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/sol1corejz/gzip64-inspector/internal/logger"
	"github.com/sol1corejz/gzip64-inspector/internal/models"
	"github.com/sol1corejz/gzip64-inspector/pkg/gzip64"
	"github.com/sol1corejz/gzip64-inspector/pkg/httpmsg"
	"go.uber.org/zap"
)

// HandleApplicable сообщает, применимо ли преобразование к переданному сообщению.
func (h *Handlers) HandleApplicable(w http.ResponseWriter, r *http.Request) {
	var req models.ApplicableRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, h.MaxBodySize)).Decode(&req); err != nil {
		logger.Log.Debug("cannot decode request JSON body", zap.Error(err))
		http.Error(w, "Invalid JSON", http.StatusBadRequest)
		return
	}

	writeJSON(w, http.StatusOK, models.ApplicableResponse{
		Applicable: h.Filter.Applies(httpmsg.HTTP1{}, []byte(req.Message), req.IsRequest),
	})
}

// HandleDecode декодирует тело запроса из Base64 и распаковывает gzip.
// Ошибки формата возвращаются с кодом 422, превышение размера — с кодом 413.
func (h *Handlers) HandleDecode(w http.ResponseWriter, r *http.Request) {
	body, ok := h.readBody(w, r)
	if !ok {
		return
	}

	plain, err := h.Engine.DecodeAndDecompress(body)
	if err != nil {
		status := http.StatusUnprocessableEntity
		if errors.Is(err, gzip64.ErrSizeLimitExceeded) {
			status = http.StatusRequestEntityTooLarge
		}
		writeJSON(w, status, models.ErrorResponse{Error: err.Error(), Kind: gzip64.Kind(err)})
		return
	}

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	w.Write(plain)
}

// HandleEncode сжимает тело запроса gzip и кодирует его Base64.
func (h *Handlers) HandleEncode(w http.ResponseWriter, r *http.Request) {
	body, ok := h.readBody(w, r)
	if !ok {
		return
	}

	encoded, err := h.Engine.CompressAndEncode(body)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, models.ErrorResponse{Error: err.Error(), Kind: gzip64.Kind(err)})
		return
	}

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	w.Write(encoded)
}
