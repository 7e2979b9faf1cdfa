package telegram

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"weekly-scheduler/internal/compose"
	"weekly-scheduler/internal/dispatch"
	"weekly-scheduler/pkg/log"
	pkgTelegram "weekly-scheduler/pkg/telegram"
)

type fakeSender struct {
	mu   sync.Mutex
	sent []string
}

func (f *fakeSender) SendMessage(_ context.Context, _ int64, text string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, text)
	return nil
}

func (f *fakeSender) messages() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.sent...)
}

type fakeUseCase struct {
	mu     sync.Mutex
	inputs []dispatch.Input
	resets []string
	result compose.Result
}

func (f *fakeUseCase) Dispatch(_ context.Context, in dispatch.Input) (compose.Result, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.inputs = append(f.inputs, in)
	return f.result, nil
}

func (f *fakeUseCase) Reset(_ context.Context, id string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.resets = append(f.resets, id)
}

func (f *fakeUseCase) lastInput() dispatch.Input {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.inputs) == 0 {
		return dispatch.Input{}
	}
	return f.inputs[len(f.inputs)-1]
}

func update(text string) []byte {
	b, _ := json.Marshal(pkgTelegram.Update{
		UpdateID: 1,
		Message:  &pkgTelegram.Message{MessageID: 1, Chat: &pkgTelegram.Chat{ID: 42}, Text: text},
	})
	return b
}

func send(h Handler, body []byte, secret string) int {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.POST("/webhook/telegram", h.HandleWebhook)
	req := httptest.NewRequest(http.MethodPost, "/webhook/telegram", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if secret != "" {
		req.Header.Set(pkgTelegram.SecretHeader, secret)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w.Code
}

func TestHandleWebhook(t *testing.T) {
	uc := &fakeUseCase{result: compose.Result{Success: true, ResponseText: "Added Gym on Monday from 2:00 PM to 3:00 PM."}}
	bot := &fakeSender{}
	h := New(log.NewNop(), uc, bot, "")

	assert.Equal(t, http.StatusOK, send(h, update("/add monday | 14:00 | Gym"), ""))
	require.Eventually(t, func() bool { return len(bot.messages()) == 1 }, time.Second, 5*time.Millisecond)
	assert.Equal(t, uc.result.ResponseText, bot.messages()[0])

	in := uc.lastInput()
	assert.Equal(t, "telegram:42", in.ConversationID)
	assert.Equal(t, dispatch.IntentAdd, in.Intent)
	assert.Equal(t, "Gym", in.Name)
}

func TestHandleWebhookMessageDate(t *testing.T) {
	uc := &fakeUseCase{result: compose.Result{Success: true, ResponseText: "Nothing today."}}
	bot := &fakeSender{}
	h := New(log.NewNop(), uc, bot, "")

	sent := time.Date(2024, 5, 8, 22, 30, 0, 0, time.UTC)
	body, err := json.Marshal(pkgTelegram.Update{
		UpdateID: 2,
		Message:  &pkgTelegram.Message{MessageID: 2, Chat: &pkgTelegram.Chat{ID: 42}, Date: sent.Unix(), Text: "/today"},
	})
	require.NoError(t, err)

	assert.Equal(t, http.StatusOK, send(h, body, ""))
	require.Eventually(t, func() bool { return len(bot.messages()) == 1 }, time.Second, 5*time.Millisecond)
	assert.True(t, uc.lastInput().ClientDatetime.Equal(sent))
}

func TestHandleWebhookClarification(t *testing.T) {
	uc := &fakeUseCase{result: compose.Result{
		ResponseText:        "Which day?",
		ClarificationNeeded: &compose.Clarification{Question: "Which day?", MissingFields: []string{dispatch.FieldDay}},
	}}
	bot := &fakeSender{}
	h := New(log.NewNop(), uc, bot, "")

	send(h, update("/add | 9am | Dentist"), "")
	require.Eventually(t, func() bool { return len(bot.messages()) == 1 }, time.Second, 5*time.Millisecond)

	uc.mu.Lock()
	uc.result = compose.Result{Success: true, ResponseText: "Added Dentist."}
	uc.mu.Unlock()

	send(h, update("thursday"), "")
	require.Eventually(t, func() bool { return len(bot.messages()) == 2 }, time.Second, 5*time.Millisecond)
	assert.Equal(t, dispatch.Input{ConversationID: "telegram:42", Day: "thursday"}, uc.lastInput())

	// The question was answered, so chatter is not taken as an answer.
	send(h, update("thanks"), "")
	require.Eventually(t, func() bool { return len(bot.messages()) == 3 }, time.Second, 5*time.Millisecond)
	assert.Equal(t, helpText, bot.messages()[2])
}

func TestHandleWebhookReset(t *testing.T) {
	uc := &fakeUseCase{}
	bot := &fakeSender{}
	h := New(log.NewNop(), uc, bot, "")

	send(h, update("/reset"), "")
	require.Eventually(t, func() bool { return len(bot.messages()) == 1 }, time.Second, 5*time.Millisecond)
	uc.mu.Lock()
	defer uc.mu.Unlock()
	assert.Equal(t, []string{"telegram:42"}, uc.resets)
	assert.Empty(t, uc.inputs)
}

func TestHandleWebhookRejects(t *testing.T) {
	h := New(log.NewNop(), &fakeUseCase{}, &fakeSender{}, "s3cret")

	assert.Equal(t, http.StatusUnauthorized, send(h, update("/week"), ""))
	assert.Equal(t, http.StatusUnauthorized, send(h, update("/week"), "wrong"))
	assert.Equal(t, http.StatusBadRequest, send(h, []byte("{not json"), "s3cret"))
	assert.Equal(t, http.StatusOK, send(h, []byte(`{"update_id": 7}`), "s3cret"))
}
