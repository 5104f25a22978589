package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"time"
	"unicode/utf8"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/sol1corejz/gzip64-inspector/internal/auth"
	"github.com/sol1corejz/gzip64-inspector/internal/file"
	"github.com/sol1corejz/gzip64-inspector/internal/logger"
	"github.com/sol1corejz/gzip64-inspector/internal/middlewares"
	"github.com/sol1corejz/gzip64-inspector/internal/models"
	"github.com/sol1corejz/gzip64-inspector/internal/storage"
	"github.com/sol1corejz/gzip64-inspector/pkg/gzip64"
	"github.com/sol1corejz/gzip64-inspector/pkg/httpmsg"
	"github.com/sol1corejz/gzip64-inspector/pkg/inspector"
	"go.uber.org/zap"
)

// OutcomeHeader — заголовок ответа с результатом сборки сообщения.
const OutcomeHeader = "X-Inspector-Outcome"

func (h *Handlers) newTab(editable bool) *inspector.Tab {
	return inspector.NewTab(inspector.Deps{
		Engine:  h.Engine,
		Parser:  httpmsg.HTTP1{},
		Builder: httpmsg.HTTP1{},
		Filter:  h.Filter,
		Log:     logger.Log,
	}, editable)
}

// HandleCreateTab открывает новую вкладку редактора. Если у клиента нет токена,
// он создаётся и устанавливается в cookie.
func (h *Handlers) HandleCreateTab(w http.ResponseWriter, r *http.Request) {
	userID, err := h.ensureUser(w, r)
	if err != nil {
		http.Error(w, "Invalid token", http.StatusUnauthorized)
		return
	}

	var req models.CreateTabRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, h.MaxBodySize)).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		logger.Log.Debug("cannot decode request JSON body", zap.Error(err))
		http.Error(w, "Invalid JSON", http.StatusBadRequest)
		return
	}

	editable := true
	if req.Editable != nil {
		editable = *req.Editable
	}

	entry := &storage.Entry{
		ID:    uuid.New().String(),
		Owner: userID,
		Tab:   h.newTab(editable),
	}
	if err := h.Store.Save(entry); err != nil {
		http.Error(w, "Failed to save tab", http.StatusInternalServerError)
		return
	}

	logger.Log.Info("tab opened", zap.String("tab", entry.ID), zap.Bool("editable", editable))

	writeJSON(w, http.StatusCreated, models.TabResponse{
		ID:        entry.ID,
		Caption:   entry.Tab.Caption(),
		Extension: inspector.ExtensionName,
		Editable:  editable,
	})
}

func (h *Handlers) ensureUser(w http.ResponseWriter, r *http.Request) (string, error) {
	if token := middlewares.TokenFromRequest(r); token != "" {
		return auth.GetUserID(h.Secret, token)
	}

	token, err := auth.GenerateToken(h.Secret)
	if err != nil {
		return "", err
	}

	http.SetCookie(w, &http.Cookie{
		Name:     auth.CookieName,
		Value:    token,
		Path:     "/",
		Expires:  time.Now().Add(auth.TokenExp),
		HttpOnly: true,
	})

	return auth.GetUserID(h.Secret, token)
}

func (h *Handlers) entry(w http.ResponseWriter, r *http.Request) (*storage.Entry, bool) {
	id := chi.URLParam(r, "tabID")
	if id == "" {
		http.Error(w, "Invalid tab ID", http.StatusBadRequest)
		return nil, false
	}

	e, err := h.Store.Get(id, middlewares.UserID(r.Context()))
	switch {
	case errors.Is(err, storage.ErrTabNotFound):
		http.Error(w, "Tab not found", http.StatusNotFound)
		return nil, false
	case errors.Is(err, storage.ErrForbidden):
		http.Error(w, "Forbidden", http.StatusForbidden)
		return nil, false
	case err != nil:
		http.Error(w, "Failed to load tab", http.StatusInternalServerError)
		return nil, false
	}
	return e, true
}

func view(e *storage.Entry) models.TabView {
	t := e.Tab
	text, encoding := encodeText(t.Text())
	v := models.TabView{
		ID:           e.ID,
		Enabled:      e.Enabled,
		Text:         text,
		TextEncoding: encoding,
		Editable:     t.Editable(),
		Modified:     t.IsModified(),
		IsRequest:    t.IsRequest(),
		State:        t.State().String(),
	}
	if err := t.Err(); err != nil {
		v.Error = err.Error()
		v.ErrorKind = gzip64.Kind(err)
	}
	return v
}

// encodeText возвращает данные строкой для JSON. Некорректный UTF-8 кодируется
// в Base64, чтобы encoding/json не заменил байты на U+FFFD.
func encodeText(data []byte) (string, string) {
	if utf8.Valid(data) {
		return string(data), ""
	}
	return gzip64.StdBase64{}.Encode(data), models.EncodingBase64
}

// HandleSetMessage загружает сообщение во вкладку. Параметр request=false
// означает ответ; по умолчанию сообщение считается запросом.
// Пустое тело очищает вкладку.
func (h *Handlers) HandleSetMessage(w http.ResponseWriter, r *http.Request) {
	e, ok := h.entry(w, r)
	if !ok {
		return
	}

	isRequest := true
	if q := r.URL.Query().Get("request"); q != "" {
		b, err := strconv.ParseBool(q)
		if err != nil {
			http.Error(w, "Invalid request flag", http.StatusBadRequest)
			return
		}
		isRequest = b
	}

	body, ok := h.readBody(w, r)
	if !ok {
		return
	}

	writeJSON(w, http.StatusOK, h.setMessage(e, body, isRequest))
}

func (h *Handlers) setMessage(e *storage.Entry, body []byte, isRequest bool) models.TabView {
	e.Lock()
	defer e.Unlock()

	if len(body) == 0 {
		body = nil
	}
	e.Enabled = body != nil && e.Tab.IsEnabled(body, isRequest)
	e.Tab.SetMessage(body, isRequest)
	return view(e)
}

// HandleSetText заменяет текст вкладки отредактированным.
func (h *Handlers) HandleSetText(w http.ResponseWriter, r *http.Request) {
	e, ok := h.entry(w, r)
	if !ok {
		return
	}

	body, ok := h.readBody(w, r)
	if !ok {
		return
	}

	v, ok := h.setText(e, body)
	if !ok {
		http.Error(w, "Tab is read-only", http.StatusConflict)
		return
	}
	writeJSON(w, http.StatusOK, v)
}

func (h *Handlers) setText(e *storage.Entry, text []byte) (models.TabView, bool) {
	e.Lock()
	defer e.Unlock()

	if !e.Tab.SetText(text) {
		return models.TabView{}, false
	}
	return view(e), true
}

// HandleGetMessage возвращает сообщение для отправки. Способ сборки
// передаётся в заголовке X-Inspector-Outcome.
func (h *Handlers) HandleGetMessage(w http.ResponseWriter, r *http.Request) {
	e, ok := h.entry(w, r)
	if !ok {
		return
	}

	msg, outcome := h.message(e)
	if msg == nil {
		http.Error(w, "No message loaded", http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "message/http")
	w.Header().Set(OutcomeHeader, outcome.String())
	w.WriteHeader(http.StatusOK)
	w.Write(msg)
}

func (h *Handlers) message(e *storage.Entry) ([]byte, inspector.Outcome) {
	e.Lock()
	defer e.Unlock()

	msg, outcome := e.Tab.Message()
	if outcome == inspector.OutcomeFallbackRaw {
		logger.Log.Warn("tab saved with uncompressed body", zap.String("tab", e.ID))
	}
	if outcome != inspector.OutcomeUnmodified {
		h.journal(e, msg, outcome)
	}
	return msg, outcome
}

func (h *Handlers) journal(e *storage.Entry, msg []byte, outcome inspector.Outcome) {
	if h.Journal == nil {
		return
	}

	event := &file.Event{
		UUID:      uuid.New().String(),
		TabID:     e.ID,
		Outcome:   outcome.String(),
		IsRequest: e.Tab.IsRequest(),
		Size:      len(msg),
		Time:      time.Now().UTC(),
	}
	if outcome == inspector.OutcomeFallbackRaw && e.Tab.Err() != nil {
		event.Error = e.Tab.Err().Error()
	}
	if err := h.Journal.WriteEvent(event); err != nil {
		logger.Log.Error("failed to write journal event", zap.String("tab", e.ID), zap.Error(err))
	}
}

// HandleSelection возвращает выделенную часть текста: параметры start и end.
func (h *Handlers) HandleSelection(w http.ResponseWriter, r *http.Request) {
	e, ok := h.entry(w, r)
	if !ok {
		return
	}

	start, err1 := strconv.Atoi(r.URL.Query().Get("start"))
	end, err2 := strconv.Atoi(r.URL.Query().Get("end"))
	if err1 != nil || err2 != nil {
		http.Error(w, "Invalid selection", http.StatusBadRequest)
		return
	}

	e.Lock()
	data := e.Tab.SelectedData(start, end)
	e.Unlock()

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	w.Write(data)
}

// HandleDeleteTab закрывает вкладку.
func (h *Handlers) HandleDeleteTab(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "tabID")

	err := h.Store.Delete(id, middlewares.UserID(r.Context()))
	switch {
	case errors.Is(err, storage.ErrTabNotFound):
		http.Error(w, "Tab not found", http.StatusNotFound)
		return
	case errors.Is(err, storage.ErrForbidden):
		http.Error(w, "Forbidden", http.StatusForbidden)
		return
	case err != nil:
		http.Error(w, "Failed to delete tab", http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
