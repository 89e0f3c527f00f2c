package cmd

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/twig-dev/twig/internal/log"
)

func logCtx() context.Context {
	l := log.New(&bytes.Buffer{}, false, false)
	return log.WithLogger(context.Background(), l)
}

func TestRunContext_Success(t *testing.T) {
	t.Parallel()
	if err := RunContext(logCtx(), "", "true"); err != nil {
		t.Errorf("RunContext(true) = %v, want nil", err)
	}
}

func TestRunContext_Failure(t *testing.T) {
	t.Parallel()
	if err := RunContext(logCtx(), "", "false"); err == nil {
		t.Error("RunContext(false) = nil, want error")
	}
}

func TestRunContext_StderrMessage(t *testing.T) {
	t.Parallel()
	err := RunContext(logCtx(), "", "sh", "-c", "echo 'bad thing' >&2; exit 1")
	if err == nil {
		t.Fatal("RunContext = nil, want error")
	}
	if err.Error() != "bad thing" {
		t.Errorf("RunContext error = %q, want %q", err.Error(), "bad thing")
	}
}

func TestRunContext_ContextCancelled(t *testing.T) {
	t.Parallel()
	ctx, cancel := context.WithCancel(logCtx())
	cancel()
	err := RunContext(ctx, "", "sleep", "10")
	if !errors.Is(err, context.Canceled) {
		t.Errorf("RunContext error = %v, want context.Canceled", err)
	}
}

func TestRunContext_Timeout(t *testing.T) {
	t.Parallel()
	ctx, cancel := context.WithTimeout(logCtx(), 50*time.Millisecond)
	defer cancel()
	err := RunContext(ctx, "", "sleep", "10")
	if !IsTimeout(err) {
		t.Errorf("RunContext error = %v, want deadline exceeded", err)
	}
}

func TestOutputContext_Success(t *testing.T) {
	t.Parallel()
	out, err := OutputContext(logCtx(), "", "echo", "hello")
	if err != nil {
		t.Fatalf("OutputContext(echo hello) = %v, want nil", err)
	}
	if got := string(out); got != "hello\n" {
		t.Errorf("OutputContext output = %q, want %q", got, "hello\n")
	}
}

func TestOutputContext_Dir(t *testing.T) {
	t.Parallel()
	out, err := OutputContext(logCtx(), "/", "pwd")
	if err != nil {
		t.Fatalf("OutputContext with dir = %v, want nil", err)
	}
	if got := strings.TrimSpace(string(out)); got != "/" {
		t.Errorf("pwd in / = %q, want %q", got, "/")
	}
}

func TestVerboseEchoesCommand(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer
	ctx := log.WithLogger(context.Background(), log.New(&buf, true, false))
	if err := RunContext(ctx, "", "true"); err != nil {
		t.Fatalf("RunContext = %v", err)
	}
	if got := buf.String(); got != "$ true \n" && !strings.HasPrefix(got, "$ true") {
		t.Errorf("verbose echo = %q, want it to start with %q", got, "$ true")
	}
}

func TestExitCode(t *testing.T) {
	t.Parallel()
	err := RunContext(logCtx(), "", "sh", "-c", "exit 3")
	if got := ExitCode(err); got != 3 {
		t.Errorf("ExitCode = %d, want 3", got)
	}
	if got := ExitCode(errors.New("other")); got != -1 {
		t.Errorf("ExitCode(non-exit) = %d, want -1", got)
	}
	if got := ExitCode(nil); got != -1 {
		t.Errorf("ExitCode(nil) = %d, want -1", got)
	}
}
