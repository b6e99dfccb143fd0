package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/ifb/ocorrencias-backend/internal/config"
	"github.com/twilio/twilio-go"
	twilioApi "github.com/twilio/twilio-go/rest/api/v2010"
)

// ErrNoSMSProvider is returned when no SMS provider is configured.
var ErrNoSMSProvider = errors.New("no sms provider configured")

// SMSSender delivers a text message to a phone number.
type SMSSender interface {
	Name() string
	Send(ctx context.Context, to, body string) error
}

// NewSMSSender returns the configured providers chained in order: Twilio, then Zenvia.
func NewSMSSender(cfg *config.Config) SMSSender {
	var chain FallbackSMS
	if cfg.TwilioAccountSID != "" && cfg.TwilioAuthToken != "" {
		chain = append(chain, NewTwilioSender(cfg.TwilioAccountSID, cfg.TwilioAuthToken, cfg.TwilioPhoneNumber))
	}
	if cfg.ZenviaAPIToken != "" {
		chain = append(chain, NewZenviaSender(cfg.ZenviaAPIToken, cfg.ZenviaSenderID))
	}
	return chain
}

// FallbackSMS tries each provider until one accepts the message.
type FallbackSMS []SMSSender

func (f FallbackSMS) Name() string { return "fallback" }

func (f FallbackSMS) Send(ctx context.Context, to, body string) error {
	if len(f) == 0 {
		return ErrNoSMSProvider
	}
	var errs []error
	for _, s := range f {
		err := s.Send(ctx, to, body)
		if err == nil {
			return nil
		}
		errs = append(errs, fmt.Errorf("%s: %w", s.Name(), err))
	}
	return errors.Join(errs...)
}

// ─── Twilio ────────────────────────────────────────────────────────────

type TwilioSender struct {
	client *twilio.RestClient
	from   string
}

func NewTwilioSender(accountSID, authToken, from string) *TwilioSender {
	client := twilio.NewRestClientWithParams(twilio.ClientParams{
		Username: accountSID,
		Password: authToken,
	})
	return &TwilioSender{client: client, from: from}
}

func (t *TwilioSender) Name() string { return "twilio" }

func (t *TwilioSender) Send(_ context.Context, to, body string) error {
	params := &twilioApi.CreateMessageParams{}
	params.SetTo(to)
	params.SetFrom(t.from)
	params.SetBody(body)

	if _, err := t.client.Api.CreateMessage(params); err != nil {
		return err
	}
	return nil
}

// ─── Zenvia ────────────────────────────────────────────────────────────

const zenviaURL = "https://api.zenvia.com/v2/channels/sms/messages"

type ZenviaSender struct {
	token    string
	senderID string
	client   *http.Client
	url      string
}

func NewZenviaSender(token, senderID string) *ZenviaSender {
	return &ZenviaSender{
		token:    token,
		senderID: senderID,
		client:   &http.Client{Timeout: 15 * time.Second},
		url:      zenviaURL,
	}
}

func (z *ZenviaSender) Name() string { return "zenvia" }

type zenviaContent struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

type zenviaPayload struct {
	From     string          `json:"from"`
	To       string          `json:"to"`
	Contents []zenviaContent `json:"contents"`
}

func (z *ZenviaSender) Send(ctx context.Context, to, body string) error {
	raw, err := json.Marshal(zenviaPayload{
		From:     z.senderID,
		To:       to,
		Contents: []zenviaContent{{Type: "text", Text: body}},
	})
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, z.url, bytes.NewReader(raw))
	if err != nil {
		return err
	}
	req.Header.Set("X-API-TOKEN", z.token)
	req.Header.Set("Content-Type", "application/json")

	res, err := z.client.Do(req)
	if err != nil {
		return err
	}
	defer res.Body.Close()

	if res.StatusCode >= http.StatusBadRequest {
		msg, _ := io.ReadAll(io.LimitReader(res.Body, 512))
		return fmt.Errorf("status %d: %s", res.StatusCode, msg)
	}
	return nil
}
