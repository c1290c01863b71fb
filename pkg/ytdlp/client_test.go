package ytdlp

import (
	"context"
	"errors"
	"testing"
)

func TestGetInfo_ParsesJSON(t *testing.T) {
	c := New()
	c.execFn = func(ctx context.Context, name string, args ...string) ([]byte, []byte, error) {
		return []byte(`{"id":"abc","title":"hello","webpage_url":"https://example.com","_type":"video"}`), nil, nil
	}

	info, err := c.GetInfo(context.Background(), "https://example.com/watch?v=abc")
	if err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if info.ID != "abc" {
		t.Fatalf("expected id=abc, got %q", info.ID)
	}
	if info.Title != "hello" {
		t.Fatalf("expected title=hello, got %q", info.Title)
	}
	if info.IsPlaylist() {
		t.Fatalf("expected a single video")
	}
	if len(info.Raw) == 0 {
		t.Fatalf("expected Raw to be set")
	}
}

func TestProbe_WrapsExecError(t *testing.T) {
	c := New()
	c.execFn = func(ctx context.Context, name string, args ...string) ([]byte, []byte, error) {
		return []byte("out"), []byte("err"), errors.New("boom")
	}

	_, err := c.Probe(context.Background(), "https://example.com")
	if err == nil {
		t.Fatalf("expected error")
	}
	var ee *ExecError
	if !errors.As(err, &ee) {
		t.Fatalf("expected ExecError, got %T", err)
	}
	if ee.Stderr != "err" {
		t.Fatalf("expected stderr=err, got %q", ee.Stderr)
	}
	if ee.Started() {
		t.Fatalf("expected a start failure")
	}
}

func TestVersion_TrimsOutput(t *testing.T) {
	c := New()
	c.execFn = func(ctx context.Context, name string, args ...string) ([]byte, []byte, error) {
		return []byte("2025.01.01\n"), nil, nil
	}

	v, err := c.Version(context.Background())
	if err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if v != "2025.01.01" {
		t.Fatalf("expected version to be trimmed, got %q", v)
	}
}

func TestTitle_TrimsOutput(t *testing.T) {
	c := New()
	var got []string
	c.execFn = func(ctx context.Context, name string, args ...string) ([]byte, []byte, error) {
		got = args
		return []byte("  Some clip ｜ Someone \n"), nil, nil
	}

	title, err := c.Title(context.Background(), "https://facebook.com/watch?v=1", "--cookies", "/c.txt")
	if err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if title != "Some clip ｜ Someone" {
		t.Fatalf("unexpected title %q", title)
	}
	want := []string{"--get-title", "--cookies", "/c.txt", "https://facebook.com/watch?v=1"}
	if len(got) != len(want) {
		t.Fatalf("expected args %v, got %v", want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("expected args %v, got %v", want, got)
		}
	}
}
