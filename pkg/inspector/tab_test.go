package inspector

import (
	"errors"
	"fmt"
	"testing"

	"github.com/sol1corejz/gzip64-inspector/pkg/gzip64"
	"github.com/sol1corejz/gzip64-inspector/pkg/httpmsg"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func encodedBody(t *testing.T, plain string) string {
	t.Helper()

	body, err := gzip64.NewEngine().CompressAndEncode([]byte(plain))
	require.NoError(t, err)
	return string(body)
}

func request(contentType, body string) []byte {
	return []byte("POST /api/data HTTP/1.1\r\n" +
		"Host: example.com\r\n" +
		"Content-Type: " + contentType + "\r\n" +
		fmt.Sprintf("Content-Length: %d\r\n", len(body)) +
		"\r\n" + body)
}

type brokenEncoder struct {
	*gzip64.Engine
}

func (brokenEncoder) CompressAndEncode([]byte) ([]byte, error) {
	return nil, fmt.Errorf("%w: disk on fire", gzip64.ErrCompression)
}

func TestTab_EndToEnd(t *testing.T) {
	original := request("application/text", encodedBody(t, `{"a":1}`))

	tab := NewTab(Deps{}, true)
	require.True(t, tab.IsEnabled(original, true))

	tab.SetMessage(original, true)
	assert.Equal(t, StateDisplayedPlain, tab.State())
	assert.Equal(t, `{"a":1}`, string(tab.Text()))
	assert.True(t, tab.Editable())
	assert.False(t, tab.IsModified())
	assert.NoError(t, tab.Err())

	require.True(t, tab.SetText([]byte(`{"a":2}`)))
	assert.True(t, tab.IsModified())

	msg, outcome := tab.Message()
	assert.Equal(t, OutcomeRebuilt, outcome)
	assert.Equal(t, StateSaved, tab.State())

	// Сохранённое сообщение снова открывается той же вкладкой.
	next := NewTab(Deps{}, false)
	require.True(t, next.IsEnabled(msg, true))
	next.SetMessage(msg, true)
	assert.Equal(t, StateDisplayedPlain, next.State())
	assert.Equal(t, `{"a":2}`, string(next.Text()))
	assert.False(t, next.Editable())

	info, err := httpmsg.HTTP1{}.Analyze(msg, true)
	require.NoError(t, err)
	origInfo, err := httpmsg.HTTP1{}.Analyze(original, true)
	require.NoError(t, err)
	assert.Equal(t, origInfo.Headers[:3], info.Headers[:3])
	assert.Equal(t, fmt.Sprintf("Content-Length: %d", len(httpmsg.Body(msg, info))), info.Headers[3])
}

func TestTab_UnmodifiedReturnsOriginal(t *testing.T) {
	original := request("text/html", encodedBody(t, "<p>hi</p>"))

	tab := NewTab(Deps{}, true)
	tab.SetMessage(original, true)

	// Тот же текст не считается изменением.
	require.True(t, tab.SetText([]byte("<p>hi</p>")))
	assert.False(t, tab.IsModified())

	msg, outcome := tab.Message()
	assert.Equal(t, OutcomeUnmodified, outcome)
	assert.Equal(t, original, msg)
	assert.Equal(t, StateDisplayedPlain, tab.State())
}

func TestTab_InapplicableShowsRawBody(t *testing.T) {
	original := request("application/json", `{"plain":true}`)

	tab := NewTab(Deps{}, true)
	assert.False(t, tab.IsEnabled(original, true))

	tab.SetMessage(original, true)
	assert.Equal(t, StateDisplayedRaw, tab.State())
	assert.Equal(t, `{"plain":true}`, string(tab.Text()))
	assert.NoError(t, tab.Err())
}

func TestTab_DecodeFailureShowsRawBody(t *testing.T) {
	tests := []struct {
		name string
		body string
		kind error
	}{
		{"not base64", "not base64!!", gzip64.ErrBase64Decode},
		{"base64 but not gzip", "aGVsbG8=", gzip64.ErrGzipFormat},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			original := request("application/text", tt.body)

			tab := NewTab(Deps{}, true)
			tab.SetMessage(original, true)

			assert.Equal(t, StateDisplayedRaw, tab.State())
			assert.Equal(t, tt.body, string(tab.Text()))
			assert.ErrorIs(t, tab.Err(), tt.kind)
			assert.True(t, tab.Editable())
		})
	}
}

func TestTab_SizeLimitShowsRawBody(t *testing.T) {
	body := encodedBody(t, string(make([]byte, 2048)))
	original := request("application/text", body)

	tab := NewTab(Deps{Engine: gzip64.NewEngine(gzip64.WithMaxDecompressedSize(1024))}, true)
	tab.SetMessage(original, true)

	assert.Equal(t, StateDisplayedRaw, tab.State())
	assert.Equal(t, body, string(tab.Text()))
	assert.ErrorIs(t, tab.Err(), gzip64.ErrSizeLimitExceeded)
}

func TestTab_EncodeFailureFallsBackToRawText(t *testing.T) {
	original := request("application/text", encodedBody(t, `{"a":1}`))

	tab := NewTab(Deps{Engine: brokenEncoder{gzip64.NewEngine()}}, true)
	tab.SetMessage(original, true)
	require.Equal(t, StateDisplayedPlain, tab.State())

	require.True(t, tab.SetText([]byte(`{"a":3}`)))
	msg, outcome := tab.Message()

	assert.Equal(t, OutcomeFallbackRaw, outcome)
	assert.Equal(t, OutcomeFallbackRaw, tab.Outcome())
	assert.Equal(t, StateSaved, tab.State())
	assert.True(t, errors.Is(tab.Err(), gzip64.ErrCompression))

	info, err := httpmsg.HTTP1{}.Analyze(msg, true)
	require.NoError(t, err)
	assert.Equal(t, `{"a":3}`, string(httpmsg.Body(msg, info)))
	assert.Contains(t, info.Headers, "Content-Length: 7")
}

func TestTab_ResponseRebuiltAsResponse(t *testing.T) {
	body := encodedBody(t, "<b>old</b>")
	original := []byte("HTTP/1.1 200 OK\r\nContent-Type: text/html; charset=utf-8\r\n" +
		fmt.Sprintf("Content-Length: %d\r\n\r\n", len(body)) + body)

	tab := NewTab(Deps{}, true)
	tab.SetMessage(original, false)
	require.Equal(t, StateDisplayedPlain, tab.State())
	assert.False(t, tab.IsRequest())

	tab.SetText([]byte("<b>new</b>"))
	msg, outcome := tab.Message()
	require.Equal(t, OutcomeRebuilt, outcome)

	next := NewTab(Deps{}, true)
	next.SetMessage(msg, false)
	assert.Equal(t, "<b>new</b>", string(next.Text()))
}

func TestTab_NilMessage(t *testing.T) {
	tab := NewTab(Deps{}, true)
	tab.SetMessage(nil, true)

	assert.Equal(t, StateEmpty, tab.State())
	assert.Nil(t, tab.Text())
	assert.False(t, tab.Editable())
	assert.False(t, tab.SetText([]byte("x")))

	msg, outcome := tab.Message()
	assert.Nil(t, msg)
	assert.Equal(t, OutcomeUnmodified, outcome)
}

func TestTab_UnparsableMessageIsReadOnly(t *testing.T) {
	tab := NewTab(Deps{}, true)
	tab.SetMessage([]byte("garbage without terminator"), true)

	assert.Equal(t, StateDisplayedRaw, tab.State())
	assert.Error(t, tab.Err())
	assert.False(t, tab.Editable())
	assert.Equal(t, "garbage without terminator", string(tab.Text()))
}

func TestTab_ReadOnly(t *testing.T) {
	tab := NewTab(Deps{}, false)
	tab.SetMessage(request("application/text", encodedBody(t, "x")), true)

	assert.False(t, tab.Editable())
	assert.False(t, tab.SetText([]byte("y")))
	assert.False(t, tab.IsModified())
}

func TestTab_StrictFilter(t *testing.T) {
	original := request("application/textual", encodedBody(t, "x"))

	loose := NewTab(Deps{}, true)
	strict := NewTab(Deps{Filter: httpmsg.Filter{Mode: httpmsg.MatchStrict}}, true)

	assert.True(t, loose.IsEnabled(original, true))
	assert.False(t, strict.IsEnabled(original, true))
}

func TestTab_SelectedData(t *testing.T) {
	tab := NewTab(Deps{}, true)
	tab.SetMessage(request("application/text", encodedBody(t, "0123456789")), true)

	assert.Equal(t, "234", string(tab.SelectedData(2, 5)))
	assert.Equal(t, "0123456789", string(tab.SelectedData(-3, 100)))
	assert.Nil(t, tab.SelectedData(5, 5))
	assert.Nil(t, tab.SelectedData(7, 2))
}

func TestTab_Caption(t *testing.T) {
	assert.Equal(t, "Gzip Base64 JSON", NewTab(Deps{}, true).Caption())
}

func TestStateAndOutcomeStrings(t *testing.T) {
	assert.Equal(t, "empty", StateEmpty.String())
	assert.Equal(t, "displayed_plain", StateDisplayedPlain.String())
	assert.Equal(t, "displayed_raw", StateDisplayedRaw.String())
	assert.Equal(t, "saved", StateSaved.String())
	assert.Equal(t, "unmodified", OutcomeUnmodified.String())
	assert.Equal(t, "rebuilt", OutcomeRebuilt.String())
	assert.Equal(t, "fallback_raw", OutcomeFallbackRaw.String())
}
