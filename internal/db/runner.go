package db

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"strings"
)

// Runner executes a native client tool. Adapters never call os/exec
// directly, so tests can swap in a fake.
type Runner interface {
	Run(ctx context.Context, name string, args []string, stdout io.Writer) error
	RunWithIO(ctx context.Context, name string, args []string, stdin io.Reader, stdout io.Writer) error
}

// ErrToolNotFound is returned when the requested binary is not on PATH.
var ErrToolNotFound = errors.New("executable file not found")

type LocalRunner struct{}

func (lr *LocalRunner) Run(ctx context.Context, name string, args []string, stdout io.Writer) error {
	return lr.RunWithIO(ctx, name, args, nil, stdout)
}

func (lr *LocalRunner) RunWithIO(ctx context.Context, name string, args []string, stdin io.Reader, stdout io.Writer) error {
	if _, err := exec.LookPath(name); err != nil {
		return fmt.Errorf("%s: %w", name, ErrToolNotFound)
	}

	var stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Stdin = stdin
	cmd.Stdout = stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		msg := strings.TrimSpace(stderr.String())
		if msg != "" {
			return fmt.Errorf("%s failed: %w: %s", name, err, msg)
		}
		return fmt.Errorf("%s failed: %w", name, err)
	}
	return nil
}
