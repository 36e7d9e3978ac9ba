package deliverytest

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"testing"

	"github.com/kbukum/deliverykit/jsonvalue"
)

func post(t *testing.T, url, body string) (int, jsonvalue.Value) {
	t.Helper()
	resp, err := http.Post(url, "application/json", bytes.NewBufferString(body))
	if err != nil {
		t.Fatalf("post: %v", err)
	}
	defer resp.Body.Close()
	raw, _ := io.ReadAll(resp.Body)
	v, err := jsonvalue.Parse(raw)
	if err != nil {
		t.Fatalf("parse %q: %v", raw, err)
	}
	return resp.StatusCode, v
}

func TestServerScriptsReplies(t *testing.T) {
	ctx := context.Background()
	srv := NewServer()
	if err := srv.Start(ctx); err != nil {
		t.Fatal(err)
	}
	defer srv.Stop(ctx)

	srv.Reply(http.StatusOK, Body{
		TntID:    "T1",
		EdgeHost: "h1",
		Prefetch: []Mbox{{Name: "u1", Content: map[string]any{"k": "v"}, EventToken: "ev1"}},
	})
	srv.Reply(http.StatusBadRequest, map[string]any{"message": "bad request"})

	url := srv.BaseURL() + Path + "?client=acme&sessionId=s1"
	status, body := post(t, url, `{"prefetch":{"mboxes":[{"index":0,"name":"u1"}]}}`)
	if status != http.StatusOK {
		t.Fatalf("status = %d", status)
	}
	if got := body.Path("id", "tntId").StringOr(""); got != "T1" {
		t.Errorf("tntId = %q", got)
	}
	mbox := body.Path("prefetch", "mboxes").Index(0)
	if mbox.Get("name").StringOr("") != "u1" {
		t.Errorf("mbox = %s", mbox)
	}
	opt := mbox.Get("options").Index(0)
	if opt.Get("type").StringOr("") != "json" || opt.Path("content", "k").StringOr("") != "v" {
		t.Errorf("option = %s", opt)
	}

	status, body = post(t, url, `{}`)
	if status != http.StatusBadRequest || body.Get("message").StringOr("") != "bad request" {
		t.Errorf("second reply = %d %s", status, body)
	}

	status, _ = post(t, url, `{}`)
	if status != http.StatusOK {
		t.Errorf("default reply status = %d", status)
	}

	reqs := srv.Requests()
	if len(reqs) != 3 {
		t.Fatalf("captured %d requests", len(reqs))
	}
	if reqs[0].ClientCode != "acme" || reqs[0].SessionID != "s1" {
		t.Errorf("query = %+v", reqs[0])
	}
	if reqs[0].Body.Path("prefetch", "mboxes").Len() != 1 {
		t.Errorf("body = %s", reqs[0].Body)
	}

	srv.Reset()
	if len(srv.Requests()) != 0 {
		t.Error("Reset must drop captured requests")
	}
}

func TestServerRawReplyAndLifecycle(t *testing.T) {
	ctx := context.Background()
	srv := NewServer()
	if srv.BaseURL() != "" {
		t.Error("BaseURL must be empty before Start")
	}
	if err := srv.Start(ctx); err != nil {
		t.Fatal(err)
	}
	if err := srv.Start(ctx); err == nil {
		t.Error("second Start must fail")
	}
	srv.Script(Reply{Status: http.StatusOK, Raw: []byte("not json")})

	resp, err := http.Post(srv.BaseURL()+Path, "application/json", bytes.NewBufferString("{}"))
	if err != nil {
		t.Fatal(err)
	}
	raw, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	if string(raw) != "not json" {
		t.Errorf("raw reply = %q", raw)
	}

	if err := srv.Stop(ctx); err != nil {
		t.Fatal(err)
	}
	if err := srv.Stop(ctx); err != nil {
		t.Errorf("second Stop: %v", err)
	}
}
