package repl

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"strings"

	"github.com/ardnew/enclose/log"
)

const defaultEditor = "vi"

// editClosureCommand implements [tea.ExecCommand] for the closure
// edit-define-retry loop. It writes the closure's source to a temp file,
// opens the user's editor, and redefines the closure from the result. On
// error the user is prompted to re-edit; declining leaves the closure as it
// was.
type editClosureCommand struct {
	session *Session
	name    string
	ctxFunc func() context.Context
	logger  log.Logger
	stdin   io.Reader
	stdout  io.Writer
	stderr  io.Writer
	defined bool
}

// SetStdin sets the stdin reader for the command.
func (c *editClosureCommand) SetStdin(r io.Reader) { c.stdin = r }

// SetStdout sets the stdout writer for the command.
func (c *editClosureCommand) SetStdout(w io.Writer) { c.stdout = w }

// SetStderr sets the stderr writer for the command.
func (c *editClosureCommand) SetStderr(w io.Writer) { c.stderr = w }

// Run executes the edit-define-retry loop. If the user declines to re-edit,
// it returns [ErrEditDeclined].
func (c *editClosureCommand) Run() error {
	ctx := c.ctxFunc()

	content, ok := c.session.Source(c.name)
	if !ok {
		return ErrUndefined.Wrap(errors.New(c.name))
	}

	// Create a single temp file for the entire loop.
	f, err := os.CreateTemp(os.TempDir(), "enclose-"+c.name+"-*.expr")
	if err != nil {
		return err
	}

	tmpPath := f.Name()

	defer os.Remove(tmpPath)

	if err := f.Chmod(0o600); err != nil {
		f.Close()

		return err
	}

	f.Close()

	for {
		if err := os.WriteFile(tmpPath, []byte(content+"\n"), 0o600); err != nil {
			return err
		}

		r, err := runEditor(ctx, c.stdin, c.stdout, c.stderr, tmpPath)
		if err != nil {
			return err
		}

		data, err := io.ReadAll(r)
		if err != nil {
			return err
		}

		source := strings.TrimSpace(string(data))
		if source == "" {
			// User cleared the content; treat as cancelled edit.
			return nil
		}

		defErr := c.session.Define(ctx, c.name, source)
		c.logger.TraceContext(
			ctx,
			"editor define attempt",
			slog.String("name", c.name),
			slog.Int("content_length", len(source)),
			slog.Bool("success", defErr == nil),
		)

		if defErr == nil {
			c.defined = true

			return nil
		}

		fmt.Fprintf(c.stderr, "\nerror: %s\n", defErr)
		fmt.Fprintf(c.stdout, "Re-edit? [Y/n] ")

		scanner := bufio.NewScanner(c.stdin)
		if !scanner.Scan() {
			return ErrEditDeclined
		}

		response := strings.TrimSpace(strings.ToLower(scanner.Text()))
		if response == "n" || response == "no" {
			return ErrEditDeclined
		}

		content = source
	}
}

// runEditor launches the user's editor on the given file path and returns a
// reader over the edited file content.
func runEditor(
	ctx context.Context,
	stdin io.Reader,
	stdout io.Writer,
	stderr io.Writer,
	path string,
) (io.Reader, error) {
	editor := os.Getenv("EDITOR")
	if editor == "" {
		editor = defaultEditor
	}

	cmd := exec.CommandContext(ctx, editor, path)
	cmd.Stdin = stdin
	cmd.Stdout = stdout
	cmd.Stderr = stderr

	if err := cmd.Run(); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	return bytes.NewReader(data), nil
}
