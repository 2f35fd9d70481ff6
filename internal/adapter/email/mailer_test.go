package email

import (
	"context"
	"errors"
	"net/smtp"
	"strings"
	"testing"
	"time"

	"github.com/Temutjin2k/ride-dispatch/internal/domain/models"
	"github.com/Temutjin2k/ride-dispatch/internal/domain/types"
)

func TestMailer_Send(t *testing.T) {
	m := NewMailer(Config{Host: "smtp.example.com", Port: "587", Username: "bot@example.com", Password: "pw"})
	m.now = func() time.Time { return time.Date(2025, 3, 10, 8, 0, 0, 0, time.UTC) }

	var (
		gotAddr string
		gotTo   []string
		gotMsg  string
	)
	m.send = func(addr string, _ smtp.Auth, from string, to []string, msg []byte) error {
		gotAddr, gotTo, gotMsg = addr, to, string(msg)
		if from != "bot@example.com" {
			t.Errorf("from = %q", from)
		}
		return nil
	}

	err := m.Send(context.Background(), models.Email{To: "rider@example.com", Subject: "Your ride receipt", Body: "Total: 300\nThanks"})
	if err != nil {
		t.Fatalf("Send: %v", err)
	}
	if gotAddr != "smtp.example.com:587" || len(gotTo) != 1 || gotTo[0] != "rider@example.com" {
		t.Fatalf("addr=%q to=%v", gotAddr, gotTo)
	}
	for _, want := range []string{"To: rider@example.com\r\n", "Subject: Your ride receipt\r\n", "\r\n\r\nTotal: 300\r\nThanks"} {
		if !strings.Contains(gotMsg, want) {
			t.Fatalf("message missing %q:\n%s", want, gotMsg)
		}
	}

	m.send = func(string, smtp.Auth, string, []string, []byte) error { return errors.New("535 auth failed") }
	if err := m.Send(context.Background(), models.Email{To: "rider@example.com"}); types.KindOf(err) != types.KindService {
		t.Fatalf("smtp failure: %v", err)
	}
}

func TestMailer_Disabled(t *testing.T) {
	if err := NewMailer(Config{}).Send(context.Background(), models.Email{To: "a@b.c"}); !errors.Is(err, types.ErrFeatureDisabled) {
		t.Fatalf("got %v", err)
	}
}
