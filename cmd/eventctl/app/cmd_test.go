package app

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	natsserver "github.com/nats-io/nats-server/v2/test"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "eventctl.yaml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestReadConfigExpandsEnv(t *testing.T) {
	t.Setenv("TEST_EVENT_URL", "nats://example:4222")
	path := writeConfig(t, "transport: nats\nurl: ${TEST_EVENT_URL}\ncodec: msgpack\n")

	cfg, err := ReadConfig(path)
	if err != nil {
		t.Fatalf("ReadConfig failed: %v", err)
	}
	if cfg.URL == nil || *cfg.URL != "nats://example:4222" {
		t.Errorf("expected expanded url, got %v", cfg.URL)
	}
	if cfg.Prefix != nil {
		t.Errorf("expected prefix to be unset, got %q", *cfg.Prefix)
	}

	redis := "redis"
	MergeConfig(cfg, &Config{Transport: &redis})
	if *cfg.Transport != "redis" || *cfg.Codec != "msgpack" {
		t.Errorf("unexpected merge result: transport=%s codec=%s", *cfg.Transport, *cfg.Codec)
	}
}

func TestGetConfigMissingFile(t *testing.T) {
	if _, err := GetConfig(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("expected error for explicit missing config")
	}
}

func TestParseFields(t *testing.T) {
	got, err := ParseFields([]string{"name=ada", "n=3", "ok=true", "list=[1,2]", "raw={not json"})
	if err != nil {
		t.Fatalf("ParseFields failed: %v", err)
	}
	want := map[string]any{
		"name": "ada",
		"n":    float64(3),
		"ok":   true,
		"list": []any{float64(1), float64(2)},
		"raw":  "{not json",
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("ParseFields mismatch (-want +got):\n%s", diff)
	}

	if _, err := ParseFields([]string{"novalue"}); err == nil {
		t.Error("expected error for missing '='")
	}
}

func TestListenEmit(t *testing.T) {
	opts := natsserver.DefaultTestOptions
	opts.Port = -1
	s := natsserver.RunServer(&opts)
	defer s.Shutdown()

	t.Setenv("TEST_EVENT_URL", s.ClientURL())
	path := writeConfig(t, "transport: nats\nurl: ${TEST_EVENT_URL}\nprefix: test.\n")

	ready := make(chan struct{})
	listener := newCommand(&Options{ready: func() { close(ready) }})
	out := bytes.NewBuffer(nil)
	listener.SetOut(out)
	listener.SetArgs([]string{"--config", path, "listen", "--count", "1", "greet"})

	errCh := make(chan error, 1)
	go func() { errCh <- listener.Execute() }()

	select {
	case <-ready:
	case err := <-errCh:
		t.Fatalf("listen exited early: %v", err)
	case <-time.After(5 * time.Second):
		t.Fatal("listen did not subscribe")
	}

	emitter := newCommand(&Options{})
	emitOut := bytes.NewBuffer(nil)
	emitter.SetOut(emitOut)
	emitter.SetArgs([]string{"--config", path, "emit", "greet", "name=ada", "n=3"})
	if err := emitter.Execute(); err != nil {
		t.Fatalf("emit failed: %v", err)
	}
	if emitOut.String() != "emitted greet\n" {
		t.Errorf("unexpected emit output %q", emitOut.String())
	}

	select {
	case err := <-errCh:
		if err != nil {
			t.Fatalf("listen failed: %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("listen did not receive the event")
	}

	want := `{"type":"greet","fields":{"n":3,"name":"ada"}}` + "\n"
	if out.String() != want {
		t.Errorf("unexpected listen output:\n got %q\nwant %q", out.String(), want)
	}
}

func TestUnknownTransport(t *testing.T) {
	cmd := newCommand(&Options{})
	cmd.SetOut(bytes.NewBuffer(nil))
	cmd.SetErr(bytes.NewBuffer(nil))
	cmd.SetArgs([]string{"--config", writeConfig(t, "{}\n"), "--transport", "carrier-pigeon", "emit", "x"})
	if err := cmd.Execute(); err == nil {
		t.Error("expected error for unknown transport")
	}
}
