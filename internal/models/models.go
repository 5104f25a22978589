package models

type ApplicableRequest struct {
	Message   string `json:"message"`
	IsRequest bool   `json:"is_request"`
}

type ApplicableResponse struct {
	Applicable bool `json:"applicable"`
}

type CreateTabRequest struct {
	Editable *bool `json:"editable,omitempty"`
}

type TabResponse struct {
	ID        string `json:"id"`
	Caption   string `json:"caption"`
	Extension string `json:"extension"`
	Editable  bool   `json:"editable"`
}

type TabView struct {
	ID        string `json:"id"`
	Enabled   bool   `json:"enabled"`
	Text      string `json:"text"`
	Editable  bool   `json:"editable"`
	Modified  bool   `json:"modified"`
	IsRequest bool   `json:"is_request"`
	State     string `json:"state"`
	Error     string `json:"error,omitempty"`
	ErrorKind string `json:"error_kind,omitempty"`

	// TextEncoding равно "base64", если текст не является корректным UTF-8
	// и передан в Text в кодировке Base64.
	TextEncoding string `json:"text_encoding,omitempty"`
}

type ErrorResponse struct {
	Error string `json:"error"`
	Kind  string `json:"kind,omitempty"`
}

// EncodingBase64 — значение полей *Encoding для данных в кодировке Base64.
const EncodingBase64 = "base64"

// WSCommand — команда клиента по WebSocket. Если Encoding равно "base64",
// Data передаётся в кодировке Base64.
type WSCommand struct {
	Type      string `json:"type"`
	IsRequest bool   `json:"is_request,omitempty"`
	Data      string `json:"data,omitempty"`
	Encoding  string `json:"encoding,omitempty"`
	Start     int    `json:"start,omitempty"`
	End       int    `json:"end,omitempty"`
}

// WSReply — ответ сервера по WebSocket. Data, не являющиеся корректным UTF-8,
// передаются в Base64 с Encoding "base64".
type WSReply struct {
	Type     string   `json:"type"`
	View     *TabView `json:"view,omitempty"`
	Data     string   `json:"data,omitempty"`
	Encoding string   `json:"encoding,omitempty"`
	Outcome  string   `json:"outcome,omitempty"`
	Error    string   `json:"error,omitempty"`
}

type InternalStatsResponse struct {
	Tabs  int `json:"tabs"`
	Users int `json:"users"`
}
