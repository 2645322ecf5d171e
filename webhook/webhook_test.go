package webhook

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/use-agent/gamexport/config"
	"github.com/use-agent/gamexport/models"
)

func TestDeliver_SignsBody(t *testing.T) {
	var gotSig string
	var gotBody []byte
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotSig = r.Header.Get(SignatureHeader)
		gotBody, _ = io.ReadAll(r.Body)
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	c := New(config.WebhookConfig{URL: srv.URL, Secret: "s3cret"})
	res := &models.ExportResult{
		Username:   "alice",
		ProfileURL: "https://backloggd.com/u/alice/games/",
		Records:    []models.GameRecord{{Title: "A", Rating: 1}},
		LastPage:   2,
		StopReason: models.StopEmptyPage,
	}
	if err := c.Deliver(context.Background(), Completed(res, "alice_games.csv")); err != nil {
		t.Fatalf("Deliver: %v", err)
	}

	if want := "sha256=" + Sign("s3cret", gotBody); gotSig != want {
		t.Errorf("signature = %q, want %q", gotSig, want)
	}

	var ev struct {
		Type     string        `json:"type"`
		Username string        `json:"username"`
		Data     CompletedData `json:"data"`
	}
	if err := json.Unmarshal(gotBody, &ev); err != nil {
		t.Fatal(err)
	}
	if ev.Type != EventCompleted || ev.Username != "alice" {
		t.Errorf("event = %+v", ev)
	}
	if ev.Data.Records != 1 || ev.Data.LastPage != 2 || ev.Data.Path != "alice_games.csv" {
		t.Errorf("data = %+v", ev.Data)
	}
}

func TestDeliver_NoSecretNoSignature(t *testing.T) {
	var hasSig bool
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, hasSig = r.Header[SignatureHeader]
	}))
	defer srv.Close()

	c := New(config.WebhookConfig{URL: srv.URL})
	if err := c.Deliver(context.Background(), Failed("alice", "", errors.New("x"))); err != nil {
		t.Fatal(err)
	}
	if hasSig {
		t.Error("unexpected signature header without a secret")
	}
}

func TestDeliver_ErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	c := New(config.WebhookConfig{URL: srv.URL})
	if err := c.Deliver(context.Background(), Failed("alice", "", errors.New("x"))); err == nil {
		t.Fatal("expected error for 502")
	}
}

func TestNew_DisabledWithoutURL(t *testing.T) {
	if c := New(config.WebhookConfig{}); c != nil {
		t.Errorf("expected nil client, got %+v", c)
	}
}

func TestFailed_UsesExportErrorCode(t *testing.T) {
	err := models.NewExportError(models.ErrCodeWrite, "create out.csv", errors.New("permission denied"))
	ev := Failed("alice", "https://backloggd.com/u/alice/games/", err)

	data, ok := ev.Data.(FailedData)
	if !ok {
		t.Fatalf("Data is %T", ev.Data)
	}
	if data.Error.Code != models.ErrCodeWrite {
		t.Errorf("Code = %q", data.Error.Code)
	}
	if ev.Type != EventFailed {
		t.Errorf("Type = %q", ev.Type)
	}
}
