// Package inspector реализует вкладку редактора сообщения: загрузку сообщения,
// показ декодированного тела, редактирование и обратную сборку сообщения.
//
// Жизненный цикл одной вкладки:
//
//	SetMessage -> StateDisplayedPlain | StateDisplayedRaw -> SetText -> Message -> StateSaved
//
// Если преобразование неприменимо или декодирование не удалось, показывается
// исходное тело. Если при сохранении не удалось сжатие, в сообщение
// подставляется отредактированный текст как есть. Ни один из этих случаев
// не приводит к ошибке вызывающего кода: результат виден через State, Outcome и Err.
package inspector

import (
	"bytes"

	"github.com/sol1corejz/gzip64-inspector/pkg/gzip64"
	"github.com/sol1corejz/gzip64-inspector/pkg/httpmsg"
	"go.uber.org/zap"
)

const (
	// Caption — заголовок вкладки в инструменте.
	Caption = "Gzip Base64 JSON"
	// ExtensionName — имя расширения, под которым регистрируется вкладка.
	ExtensionName = "GZIPBASE64"
)

// State — состояние вкладки.
type State int

const (
	StateEmpty State = iota
	StateDisplayedPlain
	StateDisplayedRaw
	StateSaved
)

func (s State) String() string {
	switch s {
	case StateDisplayedPlain:
		return "displayed_plain"
	case StateDisplayedRaw:
		return "displayed_raw"
	case StateSaved:
		return "saved"
	default:
		return "empty"
	}
}

// Outcome описывает, каким образом было получено сохраняемое сообщение.
type Outcome int

const (
	// OutcomeUnmodified — текст не менялся, возвращено исходное сообщение.
	OutcomeUnmodified Outcome = iota
	// OutcomeRebuilt — тело сжато, закодировано и подставлено в сообщение.
	OutcomeRebuilt
	// OutcomeFallbackRaw — сжатие не удалось, подставлен отредактированный текст.
	OutcomeFallbackRaw
)

func (o Outcome) String() string {
	switch o {
	case OutcomeRebuilt:
		return "rebuilt"
	case OutcomeFallbackRaw:
		return "fallback_raw"
	default:
		return "unmodified"
	}
}

// Transformer — пара взаимно обратных преобразований тела.
type Transformer interface {
	DecodeAndDecompress(encoded []byte) ([]byte, error)
	CompressAndEncode(plain []byte) ([]byte, error)
}

// Deps — внешние компоненты, которые использует вкладка.
type Deps struct {
	Engine  Transformer
	Parser  httpmsg.Parser
	Builder httpmsg.Builder
	Filter  httpmsg.Filter
	Log     *zap.Logger
}

// Tab — одна вкладка редактора. Tab не предназначена для конкурентного использования.
type Tab struct {
	deps     Deps
	editable bool

	current   []byte
	isRequest bool
	headers   []string

	loaded   []byte
	text     []byte
	canEdit  bool
	modified bool

	state   State
	outcome Outcome
	err     error
}

// NewTab создаёт вкладку. Незаданные зависимости заменяются реализациями по умолчанию.
func NewTab(deps Deps, editable bool) *Tab {
	if deps.Engine == nil {
		deps.Engine = gzip64.NewEngine()
	}
	if deps.Parser == nil {
		deps.Parser = httpmsg.HTTP1{}
	}
	if deps.Builder == nil {
		deps.Builder = httpmsg.HTTP1{}
	}
	if deps.Log == nil {
		deps.Log = zap.NewNop()
	}
	return &Tab{deps: deps, editable: editable}
}

// Caption возвращает заголовок вкладки.
func (t *Tab) Caption() string {
	return Caption
}

// IsEnabled сообщает, нужно ли показывать вкладку для сообщения.
func (t *Tab) IsEnabled(content []byte, isRequest bool) bool {
	return t.deps.Filter.Applies(t.deps.Parser, content, isRequest)
}

// SetMessage загружает сообщение во вкладку. nil очищает вкладку и запрещает редактирование.
func (t *Tab) SetMessage(content []byte, isRequest bool) {
	t.current = content
	t.isRequest = isRequest
	t.headers = nil
	t.modified = false
	t.outcome = OutcomeUnmodified
	t.err = nil

	if content == nil {
		t.setText(nil, StateEmpty, false)
		return
	}

	info, err := t.deps.Parser.Analyze(content, isRequest)
	if err != nil {
		t.err = err
		t.deps.Log.Debug("message not parsed", zap.Bool("request", isRequest), zap.Error(err))
		t.setText(content, StateDisplayedRaw, false)
		return
	}
	t.headers = info.Headers
	body := httpmsg.Body(content, info)

	if !t.deps.Filter.IsApplicable(info.Headers, isRequest) {
		t.setText(body, StateDisplayedRaw, t.editable)
		return
	}

	plain, err := t.deps.Engine.DecodeAndDecompress(body)
	if err != nil {
		t.err = err
		t.deps.Log.Info("body shown undecoded",
			zap.String("kind", gzip64.Kind(err)),
			zap.Error(err),
		)
		t.setText(body, StateDisplayedRaw, t.editable)
		return
	}
	t.setText(plain, StateDisplayedPlain, t.editable)
}

func (t *Tab) setText(text []byte, state State, canEdit bool) {
	t.loaded = text
	t.text = text
	t.state = state
	t.canEdit = canEdit
}

// Text возвращает текущий текст вкладки.
func (t *Tab) Text() []byte {
	return t.text
}

// Editable сообщает, можно ли редактировать текст.
func (t *Tab) Editable() bool {
	return t.canEdit
}

// SetText заменяет текст вкладки. Изменение учитывается, только если вкладка
// редактируемая и текст отличается от загруженного.
func (t *Tab) SetText(text []byte) bool {
	if !t.canEdit {
		return false
	}
	t.text = append([]byte(nil), text...)
	t.modified = !bytes.Equal(t.text, t.loaded)
	return true
}

// IsModified сообщает, менялся ли текст после загрузки.
func (t *Tab) IsModified() bool {
	return t.modified
}

// SelectedData возвращает часть текста [start, end). Границы приводятся к длине текста.
func (t *Tab) SelectedData(start, end int) []byte {
	if start < 0 {
		start = 0
	}
	if end > len(t.text) {
		end = len(t.text)
	}
	if start >= end {
		return nil
	}
	return t.text[start:end]
}

// Message возвращает сообщение для отправки. Если текст не менялся, это исходное
// сообщение. Иначе текст сжимается, кодируется и подставляется как тело
// с исходными заголовками; при ошибке сжатия подставляется сам текст.
func (t *Tab) Message() ([]byte, Outcome) {
	if !t.modified || t.current == nil {
		t.outcome = OutcomeUnmodified
		return t.current, t.outcome
	}

	body, err := t.deps.Engine.CompressAndEncode(t.text)
	if err != nil {
		t.err = err
		t.deps.Log.Warn("edited text sent uncompressed",
			zap.String("kind", gzip64.Kind(err)),
			zap.Error(err),
		)
		body = t.text
		t.outcome = OutcomeFallbackRaw
	} else {
		t.outcome = OutcomeRebuilt
	}

	t.state = StateSaved
	return httpmsg.Rebuild(t.deps.Builder, t.headers, body), t.outcome
}

// State возвращает состояние вкладки.
func (t *Tab) State() State {
	return t.state
}

// Outcome возвращает результат последнего вызова Message.
func (t *Tab) Outcome() Outcome {
	return t.outcome
}

// Err возвращает последнюю ошибку разбора или преобразования.
func (t *Tab) Err() error {
	return t.err
}

// IsRequest сообщает, загружен ли запрос.
func (t *Tab) IsRequest() bool {
	return t.isRequest
}
