package main

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/vango-dev/vstore/internal/config"
)

func TestDemo(t *testing.T) {
	var out, logs bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&logs, nil))

	res := runDemo(&out, logger, 3)

	if res.final != 3 {
		t.Errorf("final = %d, want 3", res.final)
	}
	if res.counterRenders != 4 {
		t.Errorf("counter renders = %d, want 4", res.counterRenders)
	}
	if res.milestoneRender != 2 {
		t.Errorf("milestone renders = %d, want 2", res.milestoneRender)
	}
	if !strings.Contains(out.String(), "counter render #4: count = 3") {
		t.Errorf("unexpected demo output:\n%s", out.String())
	}
	if !strings.Contains(logs.String(), "error.code=S001") {
		t.Errorf("expected S001 in logs, got %q", logs.String())
	}
}

func TestVersionCommand(t *testing.T) {
	var out bytes.Buffer
	cmd := rootCmd()
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"version", "--short"})

	if err := cmd.Execute(); err != nil {
		t.Fatal(err)
	}
	if strings.TrimSpace(out.String()) != version {
		t.Errorf("version output = %q", out.String())
	}
}

func TestDemoCommand(t *testing.T) {
	var out, errOut bytes.Buffer
	cmd := rootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs([]string{"demo", "--clicks", "5"})

	if err := cmd.Execute(); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out.String(), "count = 5 after 5 clicks") {
		t.Errorf("unexpected output:\n%s", out.String())
	}
}

func TestReduceTodos(t *testing.T) {
	l := todoList{}
	l = reduceTodos(l, todoAction{Type: "add", Title: "write"})
	l = reduceTodos(l, todoAction{Type: "add", Title: "  "})
	l = reduceTodos(l, todoAction{Type: "add", Title: "ship"})

	if len(l.Items) != 2 || l.Items[1].ID != 2 {
		t.Fatalf("items = %+v", l.Items)
	}

	before := l.Items
	l = reduceTodos(l, todoAction{Type: "toggle", ID: 1})
	if !l.Items[0].Done {
		t.Error("toggle should mark item 1 done")
	}
	if before[0].Done {
		t.Error("toggle must not mutate the previous slice")
	}

	l = reduceTodos(l, todoAction{Type: "remove", ID: 1})
	if len(l.Items) != 1 || l.Items[0].Title != "ship" {
		t.Errorf("after remove items = %+v", l.Items)
	}

	l = reduceTodos(l, todoAction{Type: "filter", Filter: "done"})
	if l.Filter != "done" {
		t.Errorf("filter = %q", l.Filter)
	}
}

func TestLoadConfigFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "vstore.yaml")
	if err := os.WriteFile(path, []byte("name: todos\nequality: deep\n"), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := loadConfig(path)
	if err != nil {
		t.Fatalf("loadConfig error: %v", err)
	}
	if cfg.Name != "todos" || cfg.Equality != "deep" {
		t.Errorf("cfg = %+v", cfg)
	}

	bad := filepath.Join(t.TempDir(), "vstore.json")
	if err := os.WriteFile(bad, []byte(`{"equality":"strict"}`), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := loadConfig(bad); err == nil {
		t.Error("expected validation error")
	}
}

func TestServeInspector(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}

	cfg := config.New()
	cfg.Name = "todos"
	cfg.Log.Level = "error"

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	var out, logs bytes.Buffer
	go func() {
		done <- serveInspector(ctx, cfg, ln, &out, &logs)
	}()

	base := "http://" + ln.Addr().String()
	resp, err := http.Post(base+"/dispatch", "application/json",
		strings.NewReader(`{"type":"add","title":"ship"}`))
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusAccepted {
		t.Fatalf("dispatch status = %d", resp.StatusCode)
	}

	resp, err = http.Get(base + "/state")
	if err != nil {
		t.Fatal(err)
	}
	var state todoList
	json.NewDecoder(resp.Body).Decode(&state)
	resp.Body.Close()
	if len(state.Items) != 1 || state.Items[0].Title != "ship" {
		t.Errorf("state = %+v", state)
	}

	resp, err = http.Get(base + "/metrics")
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("metrics status = %d", resp.StatusCode)
	}

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("serveInspector error: %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("inspector did not shut down")
	}
}
