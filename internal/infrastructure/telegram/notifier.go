package telegram

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"HomeworkBot/internal/config"
	"HomeworkBot/internal/domain"
	"HomeworkBot/internal/ports"
)

const (
	opSend         = "telegram send"
	replyBodyLimit = 4096
)

// Notifier sends plain text messages to one Telegram chat via the Bot API.
type Notifier struct {
	apiURL   string
	botToken string
	chatID   string
	client   *http.Client
}

var _ ports.Notifier = (*Notifier)(nil)

// NewNotifier registers bot token and chat identifier. A nil httpClient gets one with cfg.Timeout.
func NewNotifier(cfg config.TelegramConfig, httpClient *http.Client) *Notifier {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.Timeout}
	}
	return &Notifier{
		apiURL:   strings.TrimSuffix(cfg.APIURL, "/"),
		botToken: cfg.BotToken,
		chatID:   cfg.ChatID,
		client:   httpClient,
	}
}

// apiReply is the envelope every Bot API method answers with.
type apiReply struct {
	OK          bool   `json:"ok"`
	Description string `json:"description"`
}

// Send posts text to the configured chat.
func (n *Notifier) Send(ctx context.Context, text string) error {
	if n.botToken == "" || n.chatID == "" || n.client == nil {
		return domain.Errorf(domain.KindDelivery, opSend, "telegram notifier misconfigured")
	}

	endpoint := fmt.Sprintf("%s/bot%s/sendMessage", n.apiURL, n.botToken)
	form := url.Values{}
	form.Set("chat_id", n.chatID)
	form.Set("text", text)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return domain.NewError(domain.KindDelivery, opSend, fmt.Errorf("new request: %w", err))
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := n.client.Do(req)
	if err != nil {
		return domain.NewError(domain.KindDelivery, opSend, stripURL(err))
	}
	defer resp.Body.Close()

	var reply apiReply
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, replyBodyLimit))
	_ = json.Unmarshal(raw, &reply)

	if resp.StatusCode != http.StatusOK || !reply.OK {
		if reply.Description != "" {
			return domain.Errorf(domain.KindDelivery, opSend, "telegram error %s: %s", resp.Status, reply.Description)
		}
		return domain.Errorf(domain.KindDelivery, opSend, "telegram error: %s", resp.Status)
	}

	return nil
}

// stripURL drops the request URL, which carries the bot token, from a client error.
func stripURL(err error) error {
	var uerr *url.Error
	if errors.As(err, &uerr) {
		return fmt.Errorf("%s request: %w", uerr.Op, uerr.Err)
	}
	return err
}
