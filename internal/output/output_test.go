package output

import (
	"bytes"
	"context"
	"testing"
)

func TestPrinterWrites(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer
	p := New(&buf)
	p.Print("a")
	p.Printf("%d", 1)
	p.Println("b")
	if got := buf.String(); got != "a1b\n" {
		t.Errorf("printer output = %q, want %q", got, "a1b\n")
	}
}

func TestFromContextRoundTrip(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer
	ctx := WithPrinter(context.Background(), &buf)
	p := FromContext(ctx)
	p.Println("data")
	if got := buf.String(); got != "data\n" {
		t.Errorf("context printer output = %q, want %q", got, "data\n")
	}
}

func TestFromContextDefault(t *testing.T) {
	t.Parallel()
	p := FromContext(context.Background())
	if p == nil || p.Writer() == nil {
		t.Fatal("FromContext without printer returned unusable Printer")
	}
}
