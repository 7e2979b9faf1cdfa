package telegram

import (
	"context"
	"crypto/subtle"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"weekly-scheduler/internal/dispatch"
	pkgErrors "weekly-scheduler/pkg/errors"
	pkgResponse "weekly-scheduler/pkg/response"
	pkgTelegram "weekly-scheduler/pkg/telegram"
)

// HandleWebhook acknowledges the update at once and runs the command in the
// background, since Telegram expects an answer within a few seconds.
func (h *handler) HandleWebhook(c *gin.Context) {
	ctx := c.Request.Context()

	if h.secret != "" && subtle.ConstantTimeCompare([]byte(c.GetHeader(pkgTelegram.SecretHeader)), []byte(h.secret)) != 1 {
		pkgResponse.Error(c, pkgErrors.NewHTTPError(http.StatusUnauthorized, "invalid webhook secret"), nil)
		return
	}

	var update pkgTelegram.Update
	if err := c.ShouldBindJSON(&update); err != nil {
		h.l.Errorf(ctx, "telegram.HandleWebhook: failed to parse update: %v", err)
		pkgResponse.Error(c, err, nil)
		return
	}

	// Ignore non-message updates (polls, channel_post, etc.)
	if update.Message == nil || update.Message.Chat == nil {
		pkgResponse.OK(c, map[string]string{"status": "ignored"})
		return
	}

	msg := update.Message
	go func() {
		bgCtx, cancel := context.WithTimeout(context.Background(), processTimeout)
		defer cancel()
		if err := h.processMessage(bgCtx, msg); err != nil {
			h.l.Errorf(bgCtx, "telegram.processMessage: %v", err)
			if err := h.bot.SendMessage(bgCtx, msg.Chat.ID, "Something went wrong, please try again."); err != nil {
				h.l.Errorf(bgCtx, "telegram.HandleWebhook: failed to send error reply: %v", err)
			}
		}
	}()

	pkgResponse.OK(c, map[string]string{"status": "accepted"})
}

func (h *handler) processMessage(ctx context.Context, msg *pkgTelegram.Message) error {
	if msg.Text == "" {
		return nil
	}
	chatID := msg.Chat.ID
	convID := fmt.Sprintf("telegram:%d", chatID)

	pending, _ := h.pending.Get(chatID)
	in, act, err := parse(msg.Text, pending)
	if err != nil {
		return h.bot.SendMessage(ctx, chatID, err.Error())
	}

	switch act {
	case actionHelp:
		return h.bot.SendMessage(ctx, chatID, helpText)
	case actionReset:
		h.pending.Remove(chatID)
		h.uc.Reset(ctx, convID)
		return h.bot.SendMessage(ctx, chatID, "Okay, starting over.")
	}

	in.ConversationID = convID
	if msg.Date > 0 {
		in.ClientDatetime = time.Unix(msg.Date, 0)
	}
	res, err := h.uc.Dispatch(ctx, in)
	if err != nil {
		return fmt.Errorf("dispatch: %w", err)
	}

	if res.ClarificationNeeded != nil && len(res.ClarificationNeeded.MissingFields) > 0 {
		h.pending.Add(chatID, res.ClarificationNeeded.MissingFields)
	} else {
		h.pending.Remove(chatID)
	}
	return h.bot.SendMessage(ctx, chatID, reply(res.ResponseText, in.Intent))
}

func reply(text string, intent dispatch.Intent) string {
	if text == "" {
		return fmt.Sprintf("Done (%s).", intent)
	}
	return text
}
