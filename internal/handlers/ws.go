package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/websocket"
	"github.com/sol1corejz/gzip64-inspector/internal/logger"
	"github.com/sol1corejz/gzip64-inspector/internal/models"
	"github.com/sol1corejz/gzip64-inspector/internal/storage"
	"github.com/sol1corejz/gzip64-inspector/pkg/gzip64"
	"go.uber.org/zap"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  4096,
	WriteBufferSize: 4096,
}

// HandleTabSocket переводит соединение на WebSocket и обслуживает команды вкладки:
// set_message, set_text, get_message и selection. Каждая команда получает один ответ.
func (h *Handlers) HandleTabSocket(w http.ResponseWriter, r *http.Request) {
	e, ok := h.entry(w, r)
	if !ok {
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		logger.Log.Info("websocket upgrade failed", zap.Error(err))
		return
	}
	defer conn.Close()

	conn.SetReadLimit(h.MaxBodySize)

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				logger.Log.Info("websocket read failed", zap.String("tab", e.ID), zap.Error(err))
			}
			return
		}

		var cmd models.WSCommand
		if err := json.Unmarshal(data, &cmd); err != nil {
			if err := conn.WriteJSON(models.WSReply{Type: "error", Error: "invalid command"}); err != nil {
				return
			}
			continue
		}

		// Каждая команда продлевает жизнь вкладки; закрытая вкладка завершает канал.
		if err := h.Store.Touch(e.ID); err != nil {
			conn.WriteJSON(models.WSReply{Type: "error", Error: "tab closed"})
			return
		}

		if err := conn.WriteJSON(h.handleCommand(e, cmd)); err != nil {
			logger.Log.Info("websocket write failed", zap.String("tab", e.ID), zap.Error(err))
			return
		}
	}
}

func (h *Handlers) handleCommand(e *storage.Entry, cmd models.WSCommand) models.WSReply {
	var data []byte
	switch cmd.Encoding {
	case "":
		data = []byte(cmd.Data)
	case models.EncodingBase64:
		b, err := gzip64.StdBase64{}.Decode(cmd.Data)
		if err != nil {
			return models.WSReply{Type: "error", Error: "invalid base64 data"}
		}
		data = b
	default:
		return models.WSReply{Type: "error", Error: "unknown encoding " + cmd.Encoding}
	}

	switch cmd.Type {
	case "set_message":
		v := h.setMessage(e, data, cmd.IsRequest)
		return models.WSReply{Type: "view", View: &v}
	case "set_text":
		v, ok := h.setText(e, data)
		if !ok {
			return models.WSReply{Type: "error", Error: "tab is read-only"}
		}
		return models.WSReply{Type: "view", View: &v}
	case "get_message":
		msg, outcome := h.message(e)
		if msg == nil {
			return models.WSReply{Type: "error", Error: "no message loaded"}
		}
		reply := dataReply("message", msg)
		reply.Outcome = outcome.String()
		return reply
	case "selection":
		e.Lock()
		selected := e.Tab.SelectedData(cmd.Start, cmd.End)
		e.Unlock()
		return dataReply("selection", selected)
	default:
		return models.WSReply{Type: "error", Error: "unknown command " + cmd.Type}
	}
}

func dataReply(typ string, data []byte) models.WSReply {
	text, encoding := encodeText(data)
	return models.WSReply{Type: typ, Data: text, Encoding: encoding}
}
