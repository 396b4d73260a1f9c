package service

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"inkwell/app/config"
	"inkwell/app/repositories"

	"go.uber.org/zap"
)

// Version is reported by the version command.
const Version = "1.0.0"

var errBadgerOnly = errors.New("this command only works with STORE_DRIVER=badger")

// Runner executes CLI commands against one configuration.
type Runner struct {
	cfg *config.Config
	out io.Writer
	in  *bufio.Reader
}

// NewRunner creates a Runner reading answers from in and writing to out.
func NewRunner(cfg *config.Config, in io.Reader, out io.Writer) *Runner {
	if in == nil {
		in = os.Stdin
	}
	if out == nil {
		out = os.Stdout
	}
	return &Runner{cfg: cfg, out: out, in: bufio.NewReader(in)}
}

func (r *Runner) printf(format string, args ...interface{}) {
	fmt.Fprintf(r.out, format, args...)
}

// confirm asks a yes/no question, defaulting to no.
func (r *Runner) confirm(question string) bool {
	r.printf("%s [y/N] ", question)
	answer, _ := r.in.ReadString('\n')
	answer = strings.TrimSpace(answer)
	return answer == "y" || answer == "Y"
}

// openStore opens the configured store. The BadgerStore is nil for SQL drivers.
func openStore(cfg *config.Config, log *zap.Logger) (*repositories.Store, *repositories.BadgerStore, error) {
	switch cfg.StoreDriver {
	case "badger":
		if err := os.MkdirAll(cfg.BadgerPath, 0o755); err != nil {
			return nil, nil, fmt.Errorf("failed to create database directory: %w", err)
		}
		bs, err := repositories.OpenBadger(cfg.BadgerPath)
		if err != nil {
			return nil, nil, err
		}
		return bs.Store(), bs, nil
	case "postgres", "mysql":
		store, err := repositories.OpenGorm(cfg.StoreDriver, cfg.DatabaseURL, cfg.LogLevel, log)
		return store, nil, err
	default:
		return nil, nil, fmt.Errorf("unknown STORE_DRIVER %q", cfg.StoreDriver)
	}
}

func exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
