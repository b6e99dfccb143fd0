package notify

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSMS struct {
	name string
	err  error
	sent []string
}

func (f *fakeSMS) Name() string { return f.name }

func (f *fakeSMS) Send(_ context.Context, to, body string) error {
	f.sent = append(f.sent, to+"|"+body)
	return f.err
}

type fakeMailer struct {
	sent []Email
}

func (f *fakeMailer) Send(_ context.Context, msg Email) error {
	f.sent = append(f.sent, msg)
	return nil
}

func TestFallbackSMS_UsesNextProviderOnFailure(t *testing.T) {
	first := &fakeSMS{name: "twilio", err: errors.New("down")}
	second := &fakeSMS{name: "zenvia"}

	err := FallbackSMS{first, second}.Send(context.Background(), "+5561999999999", "oi")
	require.NoError(t, err)
	assert.Len(t, first.sent, 1)
	assert.Equal(t, []string{"+5561999999999|oi"}, second.sent)
}

func TestFallbackSMS_StopsAtFirstSuccess(t *testing.T) {
	first := &fakeSMS{name: "twilio"}
	second := &fakeSMS{name: "zenvia"}

	require.NoError(t, FallbackSMS{first, second}.Send(context.Background(), "1", "x"))
	assert.Len(t, first.sent, 1)
	assert.Empty(t, second.sent)
}

func TestFallbackSMS_AllFail(t *testing.T) {
	err := FallbackSMS{
		&fakeSMS{name: "twilio", err: errors.New("a")},
		&fakeSMS{name: "zenvia", err: errors.New("b")},
	}.Send(context.Background(), "1", "x")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "twilio: a")
	assert.Contains(t, err.Error(), "zenvia: b")
}

func TestFallbackSMS_Empty(t *testing.T) {
	err := FallbackSMS{}.Send(context.Background(), "1", "x")
	assert.ErrorIs(t, err, ErrNoSMSProvider)
}

func TestZenviaSender_Send(t *testing.T) {
	var got zenviaPayload
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "tok", r.Header.Get("X-API-TOKEN"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	z := NewZenviaSender("tok", "IFB")
	z.url = srv.URL

	require.NoError(t, z.Send(context.Background(), "5561988887777", "mensagem"))
	assert.Equal(t, "IFB", got.From)
	assert.Equal(t, "5561988887777", got.To)
	require.Len(t, got.Contents, 1)
	assert.Equal(t, "mensagem", got.Contents[0].Text)
}

func TestZenviaSender_ErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "invalid token", http.StatusUnauthorized)
	}))
	defer srv.Close()

	z := NewZenviaSender("bad", "IFB")
	z.url = srv.URL

	err := z.Send(context.Background(), "1", "x")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "401")
}

func TestDispatcher_Deliver(t *testing.T) {
	mailer := &fakeMailer{}
	sms := &fakeSMS{name: "fake"}
	d := NewDispatcher(mailer, sms)
	ctx := context.Background()

	require.NoError(t, d.Deliver(ctx, &Job{Kind: JobEmail, Email: &Email{To: []string{"a@ifb.edu.br"}, Subject: "s"}}))
	require.NoError(t, d.Deliver(ctx, &Job{Kind: JobSMS, Phone: "123", Body: "b"}))

	assert.Len(t, mailer.sent, 1)
	assert.Equal(t, []string{"123|b"}, sms.sent)

	assert.ErrorIs(t, d.Deliver(ctx, &Job{Kind: "fax"}), ErrUnknownJob)
	assert.ErrorIs(t, d.Deliver(ctx, &Job{Kind: JobEmail}), ErrUnknownJob)
}

func TestTextToHTML_Escapes(t *testing.T) {
	out := textToHTML("linha <1>\nlinha 2\n\nsegundo")
	assert.Equal(t, "<p>linha &lt;1&gt;<br>linha 2</p><p>segundo</p>", out)
}

func TestConsoleMailer_Send(t *testing.T) {
	m := &ConsoleMailer{log: zerolog.Nop()}
	assert.NoError(t, m.Send(context.Background(), Email{To: []string{"x@y.z"}}))
}
