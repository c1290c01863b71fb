package curl

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os/exec"
	"strings"
)

type ExecError struct {
	Cmd      string
	Args     []string
	ExitCode int
	Stderr   string
	Cause    error
}

func (e *ExecError) Error() string {
	if e.ExitCode != 0 {
		return fmt.Sprintf("Download process exited with code %d", e.ExitCode)
	}
	return fmt.Sprintf("curl: command failed: %v", e.Cause)
}

func (e *ExecError) Unwrap() error { return e.Cause }

// Client shells out to curl for plain HTTP fetches that need no extractor.
type Client struct {
	// Path to curl executable. Defaults to "curl" (PATH lookup).
	Path string

	execFn func(ctx context.Context, name string, args ...string) (stdout []byte, stderr []byte, err error)
}

func New() *Client {
	return &Client{Path: "curl"}
}

// PathOrDefault returns the configured path or "curl" if unset.
func (c *Client) PathOrDefault() string {
	if strings.TrimSpace(c.Path) == "" {
		return "curl"
	}
	return c.Path
}

func (c *Client) exec(ctx context.Context, args ...string) ([]byte, []byte, error) {
	name := c.PathOrDefault()
	if c.execFn != nil {
		return c.execFn(ctx, name, args...)
	}

	slog.Info("curl: Executing command", "cmd", name, "args", args)
	cmd := exec.CommandContext(ctx, name, args...)
	var outBuf, errBuf bytes.Buffer
	cmd.Stdout = &outBuf
	cmd.Stderr = &errBuf
	err := cmd.Run()
	return outBuf.Bytes(), errBuf.Bytes(), err
}

// Page fetches url following redirects and returns the body.
func (c *Client) Page(ctx context.Context, url string) ([]byte, error) {
	if strings.TrimSpace(url) == "" {
		return nil, fmt.Errorf("curl: url is required")
	}
	args := []string{"-L", url}
	stdout, stderr, err := c.exec(ctx, args...)
	if err != nil {
		return nil, c.wrap(args, stderr, err)
	}
	return stdout, nil
}

// Fetch downloads url into outPath following redirects.
func (c *Client) Fetch(ctx context.Context, url string, outPath string) error {
	if strings.TrimSpace(url) == "" {
		return fmt.Errorf("curl: url is required")
	}
	if strings.TrimSpace(outPath) == "" {
		return fmt.Errorf("curl: outPath is required")
	}
	args := []string{"-L", url, "-o", outPath, "--progress-bar"}
	_, stderr, err := c.exec(ctx, args...)
	if err != nil {
		return c.wrap(args, stderr, err)
	}
	return nil
}

func (c *Client) wrap(args []string, stderr []byte, cause error) error {
	exitCode := 0
	var ee *exec.ExitError
	if errors.As(cause, &ee) {
		exitCode = ee.ExitCode()
	}
	return &ExecError{
		Cmd:      c.PathOrDefault(),
		Args:     args,
		ExitCode: exitCode,
		Stderr:   strings.TrimSpace(string(stderr)),
		Cause:    cause,
	}
}
