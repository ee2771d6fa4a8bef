package telegram

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"HomeworkBot/internal/config"
	"HomeworkBot/internal/domain"
)

func TestNotifierSend(t *testing.T) {
	t.Parallel()

	var gotChat, gotText, gotPath string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			t.Errorf("parse form: %v", err)
		}
		gotPath = r.URL.Path
		gotChat = r.PostForm.Get("chat_id")
		gotText = r.PostForm.Get("text")
		_, _ = w.Write([]byte(`{"ok":true,"result":{"message_id":1}}`))
	}))
	defer server.Close()

	n := NewNotifier(config.TelegramConfig{APIURL: server.URL + "/", BotToken: "123:abc", ChatID: "42", Timeout: time.Second}, server.Client())

	text := "Your work \"hw_1\" was reviewed!\n\nok"
	if err := n.Send(context.Background(), text); err != nil {
		t.Fatalf("Send returned error: %v", err)
	}

	if gotPath != "/bot123:abc/sendMessage" {
		t.Fatalf("unexpected path: %s", gotPath)
	}
	if gotChat != "42" {
		t.Fatalf("unexpected chat id: %s", gotChat)
	}
	if gotText != text {
		t.Fatalf("unexpected text: %q", gotText)
	}
}

func TestNotifierSendAPIError(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"ok":false,"error_code":400,"description":"Bad Request: chat not found"}`))
	}))
	defer server.Close()

	n := NewNotifier(config.TelegramConfig{APIURL: server.URL, BotToken: "t", ChatID: "1", Timeout: time.Second}, server.Client())

	err := n.Send(context.Background(), "hello")
	if err == nil {
		t.Fatal("expected error")
	}
	if domain.KindOf(err) != domain.KindDelivery {
		t.Fatalf("expected delivery error, got %v", domain.KindOf(err))
	}
	if want := "chat not found"; !strings.Contains(err.Error(), want) {
		t.Fatalf("error %q does not mention %q", err, want)
	}
}

func TestNotifierSendOKFalseWith200(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"ok":false,"description":"Forbidden: bot was blocked by the user"}`))
	}))
	defer server.Close()

	n := NewNotifier(config.TelegramConfig{APIURL: server.URL, BotToken: "t", ChatID: "1", Timeout: time.Second}, server.Client())

	if err := n.Send(context.Background(), "hello"); domain.KindOf(err) != domain.KindDelivery {
		t.Fatalf("expected delivery error, got %v", err)
	}
}

func TestNotifierMisconfigured(t *testing.T) {
	t.Parallel()

	n := NewNotifier(config.TelegramConfig{APIURL: "http://127.0.0.1:1"}, nil)
	if err := n.Send(context.Background(), "hello"); domain.KindOf(err) != domain.KindDelivery {
		t.Fatalf("expected delivery error, got %v", err)
	}
}

func TestNotifierTransportErrorHidesToken(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.NotFoundHandler())
	addr := server.URL
	server.Close()

	n := NewNotifier(config.TelegramConfig{APIURL: addr, BotToken: "super-secret", ChatID: "1", Timeout: time.Second}, nil)
	err := n.Send(context.Background(), "hello")
	if domain.KindOf(err) != domain.KindDelivery {
		t.Fatalf("expected delivery error, got %v", err)
	}
	if strings.Contains(err.Error(), "super-secret") {
		t.Fatalf("error leaks bot token: %v", err)
	}
}

func TestNotifierTransportErrorWithShortToken(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.NotFoundHandler())
	addr := server.URL
	server.Close()

	n := NewNotifier(config.TelegramConfig{APIURL: addr, BotToken: "t", ChatID: "1", Timeout: time.Second}, nil)
	err := n.Send(context.Background(), "hello")
	if domain.KindOf(err) != domain.KindDelivery {
		t.Fatalf("expected delivery error, got %v", err)
	}
	if strings.Contains(err.Error(), "/bott/") {
		t.Fatalf("error leaks bot token path: %v", err)
	}
	if !strings.HasPrefix(err.Error(), "telegram send: Post request: ") {
		t.Fatalf("error text mangled: %v", err)
	}
}
