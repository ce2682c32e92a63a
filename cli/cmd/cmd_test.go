package cmd

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/alecthomas/kong"
)

// readSources concatenates everything yielded by srcs.
func readSources(t *testing.T, srcs *sourceFiles) string {
	t.Helper()

	var b strings.Builder

	for name, r := range srcs.All() {
		data, err := io.ReadAll(r)
		if err != nil {
			t.Fatalf("reading %s: %v", name, err)
		}

		b.Write(data)
	}

	return b.String()
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()

	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	return path
}

// pipeStdin replaces os.Stdin with a pipe carrying content.
func pipeStdin(t *testing.T, content string) {
	t.Helper()

	oldStdin := os.Stdin

	t.Cleanup(func() { os.Stdin = oldStdin })

	r, w, err := os.Pipe()
	if err != nil {
		t.Fatal(err)
	}

	os.Stdin = r

	go func() {
		defer w.Close()

		_, _ = io.WriteString(w, content)
	}()
}

func TestOpenSourcesEmpty(t *testing.T) {
	srcs, err := openSources(nil)
	if err != nil {
		t.Fatal(err)
	}

	if got := readSources(t, srcs); got != "" {
		t.Errorf("got %q, want empty", got)
	}
}

func TestOpenSourcesMultipleFiles(t *testing.T) {
	dir := t.TempDir()
	file1 := writeFile(t, dir, "file1.yaml", "first")
	file2 := writeFile(t, dir, "file2.yaml", "second")

	srcs, err := openSources([]string{file1, file2})
	if err != nil {
		t.Fatal(err)
	}
	defer srcs.Close()

	if got := readSources(t, srcs); got != "firstsecond" {
		t.Errorf("got %q, want %q", got, "firstsecond")
	}
}

func TestOpenSourcesDuplicates(t *testing.T) {
	dir := t.TempDir()
	target := writeFile(t, dir, "real.yaml", "once")

	link := filepath.Join(dir, "link.yaml")
	if err := os.Symlink(target, link); err != nil {
		t.Fatal(err)
	}

	t.Chdir(dir)

	tests := []struct {
		name    string
		sources []string
	}{
		{"identical paths", []string{target, target, target}},
		{"relative and absolute", []string{"real.yaml", target}},
		{"symlink", []string{target, link}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srcs, err := openSources(tt.sources)
			if err != nil {
				t.Fatal(err)
			}
			defer srcs.Close()

			if got := readSources(t, srcs); got != "once" {
				t.Errorf("got %q, want %q (file should only be read once)", got, "once")
			}
		})
	}
}

func TestOpenSourcesStdinLast(t *testing.T) {
	file := writeFile(t, t.TempDir(), "file.yaml", "file")

	pipeStdin(t, "stdin")

	// Pass stdin first, then file - stdin should still be read last
	srcs, err := openSources([]string{"-", file, "-"})
	if err != nil {
		t.Fatal(err)
	}
	defer srcs.Close()

	if got := readSources(t, srcs); got != "filestdin" {
		t.Errorf("got %q, want %q (stdin should be read once, last)", got, "filestdin")
	}
}

func TestOpenSourcesNonexistentFile(t *testing.T) {
	file := writeFile(t, t.TempDir(), "file.yaml", "exists")

	if _, err := openSources([]string{file, "/nonexistent/path/file.yaml"}); err == nil {
		t.Error("expected an error for a nonexistent file")
	}
}

func TestKongContextFrom(t *testing.T) {
	if kongContextFrom(context.Background()) != nil {
		t.Error("expected nil kong context")
	}

	var cli struct{}

	parser, err := kong.New(&cli)
	if err != nil {
		t.Fatal(err)
	}

	ktx, err := parser.Parse(nil)
	if err != nil {
		t.Fatal(err)
	}

	if kongContextFrom(WithContext(t.Context(), ktx)) != ktx {
		t.Error("kong context not round-tripped")
	}
}
