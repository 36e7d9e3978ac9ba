package main

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"path/filepath"
	"strings"
	"testing"

	"github.com/kbukum/deliverykit/deliverytest"
	"github.com/kbukum/deliverykit/kvstore"
)

func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(io.Discard)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func setupEnv(t *testing.T, server string) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)
	t.Setenv("HOME", dir)
	t.Setenv("MBOXCTL_DELIVERY_CLIENT_CODE", "acme")
	t.Setenv("MBOXCTL_DELIVERY_SERVER", server)
	t.Setenv("MBOXCTL_STORE_PATH", filepath.Join(dir, "profile.db"))
	t.Setenv("MBOXCTL_LOGGING_LEVEL", "disabled")
	return dir
}

func TestPrefetchLoadDisplayAcrossInvocations(t *testing.T) {
	ctx := context.Background()
	srv := deliverytest.NewServer()
	if err := srv.Start(ctx); err != nil {
		t.Fatal(err)
	}
	defer srv.Stop(ctx)
	setupEnv(t, srv.BaseURL())

	srv.Reply(http.StatusOK, deliverytest.Body{
		TntID:    "T1.1_1",
		Prefetch: []deliverytest.Mbox{{Name: "hero", Content: "hello", EventToken: "ev1"}},
	})

	if _, err := runCLI(t, "prefetch", "hero"); err != nil {
		t.Fatalf("prefetch: %v", err)
	}

	out, err := runCLI(t, "load", "hero")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	var loaded resultOutput
	if err := json.Unmarshal([]byte(out), &loaded); err != nil {
		t.Fatalf("decode %q: %v", out, err)
	}
	if loaded.Sent || len(loaded.Answers) != 1 || loaded.Answers[0].Content != "hello" || !loaded.Answers[0].FromCache {
		t.Errorf("load output = %+v", loaded)
	}
	if n := len(srv.Requests()); n != 1 {
		t.Fatalf("endpoint saw %d requests after load, want 1", n)
	}

	out, err = runCLI(t, "display", "hero")
	if err != nil {
		t.Fatalf("display: %v", err)
	}
	if !strings.Contains(out, `"sent": true`) {
		t.Errorf("display output = %s", out)
	}
	reqs := srv.Requests()
	if len(reqs) != 2 || reqs[1].Body.Get("notifications").Index(0).Get("tokens").Index(0).StringOr("") != "ev1" {
		t.Errorf("display request = %+v", reqs)
	}
	if reqs[1].Body.Path("id", "tntId").StringOr("") != "T1.1_1" {
		t.Errorf("stored visitor id not sent: %s", reqs[1].Body)
	}

	out, err = runCLI(t, "session")
	if err != nil {
		t.Fatalf("session: %v", err)
	}
	var sess sessionOutput
	if err := json.Unmarshal([]byte(out), &sess); err != nil {
		t.Fatal(err)
	}
	if sess.TntID != "T1.1_1" || sess.ClientCode != "acme" || sess.Prefetched != 1 {
		t.Errorf("session = %+v", sess)
	}

	if _, err := runCLI(t, "reset"); err != nil {
		t.Fatalf("reset: %v", err)
	}
	out, _ = runCLI(t, "session")
	if strings.Contains(out, "T1.1_1") || strings.Contains(out, `"prefetched": 1`) {
		t.Errorf("reset left state behind: %s", out)
	}
}

func TestServerErrorIsReported(t *testing.T) {
	ctx := context.Background()
	srv := deliverytest.NewServer()
	if err := srv.Start(ctx); err != nil {
		t.Fatal(err)
	}
	defer srv.Stop(ctx)
	setupEnv(t, srv.BaseURL())
	srv.Reply(http.StatusBadRequest, map[string]any{"message": "bad request"})

	out, err := runCLI(t, "load", "hero", "--default", "fallback")
	if err == nil {
		t.Fatal("expected an error")
	}
	var failed resultOutput
	if err := json.Unmarshal([]byte(out), &failed); err != nil {
		t.Fatalf("decode %q: %v", out, err)
	}
	if failed.OK || !strings.Contains(failed.Error, "bad request") {
		t.Errorf("output = %s", out)
	}
	if len(failed.Answers) != 1 || failed.Answers[0].Content != "fallback" {
		t.Errorf("failed load must answer with default content: %s", out)
	}
}

func TestLegacyProfileMigrated(t *testing.T) {
	dir := setupEnv(t, "http://127.0.0.1:1")
	legacyPath := filepath.Join(dir, "legacy.db")
	db, err := kvstore.OpenSQLite(legacyPath)
	if err != nil {
		t.Fatal(err)
	}
	legacy, err := kvstore.NewSQLiteStore(db, nsLegacy)
	if err != nil {
		t.Fatal(err)
	}
	if err := legacy.Set(context.Background(), "visitor.tnt_id", "legacy-T"); err != nil {
		t.Fatal(err)
	}
	db.Close()
	t.Setenv("MBOXCTL_STORE_LEGACY_PATH", legacyPath)

	out, err := runCLI(t, "session")
	if err != nil {
		t.Fatalf("session: %v", err)
	}
	if !strings.Contains(out, `"tnt_id": "legacy-T"`) {
		t.Errorf("session = %s", out)
	}
}

func TestVersionCommand(t *testing.T) {
	out, err := runCLI(t, "version", "--json")
	if err != nil {
		t.Fatal(err)
	}
	var info map[string]any
	if err := json.Unmarshal([]byte(out), &info); err != nil {
		t.Fatalf("decode %q: %v", out, err)
	}
	if info["version"] == "" || info["platform"] == "" {
		t.Errorf("info = %v", info)
	}
}

func TestInvalidConfigRejected(t *testing.T) {
	setupEnv(t, "not a host/")
	if _, err := runCLI(t, "session"); err == nil {
		t.Error("expected invalid server to be rejected")
	}
}
