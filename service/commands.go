package service

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"inkwell/app/repositories"
	"inkwell/app/services"

	"go.uber.org/zap"
)

// HandleCommand runs one CLI command and returns its exit code.
func (r *Runner) HandleCommand(ctx context.Context, args []string) int {
	if len(args) < 1 {
		r.printHelp()
		return 1
	}

	cmd, rest := args[0], args[1:]
	switch cmd {
	case "serve":
		return r.serve(ctx)
	case "init":
		return r.initDb()
	case "clean":
		return r.clean(hasFlag(rest, "--yes", "-y"))
	case "backup":
		target := ""
		if len(rest) > 0 {
			target = rest[0]
		}
		return r.backup(target)
	case "restore":
		if len(rest) < 1 {
			r.printf("Error: backup file path required for restore\n")
			return 1
		}
		return r.restore(rest[0], hasFlag(rest[1:], "--yes", "-y"))
	case "user":
		return r.user(rest)
	case "version":
		r.printf("inkwell version %s\n", Version)
		return 0
	case "help":
		r.printHelp()
		return 0
	default:
		r.printf("Unknown command: %s\n\n", cmd)
		r.printHelp()
		return 1
	}
}

func (r *Runner) printHelp() {
	r.printf(`Usage: inkwell <command> [options]

Commands:
  serve                                   Run the blog HTTP server
  init                                    Initialize a new empty database
  clean [--yes]                           Delete the blog database
  backup [file]                           Write a backup of the database
  restore <file> [--yes]                  Restore the database from a backup
  user create <username> <password> [email]
                                          Create an author account
  version                                 Show version information
  help                                    Display this help message
`)
}

func hasFlag(args []string, names ...string) bool {
	for _, a := range args {
		for _, n := range names {
			if a == n {
				return true
			}
		}
	}
	return false
}

func (r *Runner) requireBadger() bool {
	if r.cfg.StoreDriver != "badger" {
		r.printf("Error: %v\n", errBadgerOnly)
		return false
	}
	return true
}

// initDb creates a new empty database.
func (r *Runner) initDb() int {
	if r.cfg.StoreDriver != "badger" {
		// SQL schemas are migrated on open
		store, _, err := openStore(r.cfg, zap.NewNop())
		if err != nil {
			r.printf("Failed to initialize database: %v\n", err)
			return 1
		}
		store.Close()
		r.printf("Database schema migrated successfully\n")
		return 0
	}

	if exists(r.cfg.BadgerPath) {
		r.printf("Database already exists. Use 'clean' first if you want to reinitialize.\n")
		return 1
	}
	store, _, err := openStore(r.cfg, zap.NewNop())
	if err != nil {
		r.printf("Failed to initialize database: %v\n", err)
		return 1
	}
	store.Close()
	r.printf("Database initialized successfully\n")
	return 0
}

// clean removes the database.
func (r *Runner) clean(yes bool) int {
	if !r.requireBadger() {
		return 1
	}
	if !exists(r.cfg.BadgerPath) {
		r.printf("Database is already clean (does not exist)\n")
		return 0
	}
	if !yes && !r.confirm("Are you sure you want to clean the database? This cannot be undone.") {
		r.printf("Operation cancelled\n")
		return 1
	}
	if err := os.RemoveAll(r.cfg.BadgerPath); err != nil {
		r.printf("Failed to clean database: %v\n", err)
		return 1
	}
	r.printf("Database cleaned successfully\n")
	return 0
}

// backup writes a full backup to target, or to data/backups when empty.
func (r *Runner) backup(target string) int {
	if !r.requireBadger() {
		return 1
	}
	if !exists(r.cfg.BadgerPath) {
		r.printf("No database exists to backup\n")
		return 1
	}
	if target == "" {
		target = filepath.Join("data", "backups", fmt.Sprintf("backup_%d.db", time.Now().Unix()))
	}
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		r.printf("Failed to create backup directory: %v\n", err)
		return 1
	}

	bs, err := repositories.OpenBadger(r.cfg.BadgerPath)
	if err != nil {
		r.printf("Failed to open database: %v\n", err)
		return 1
	}
	defer bs.Close()

	f, err := os.Create(target)
	if err != nil {
		r.printf("Failed to create backup file: %v\n", err)
		return 1
	}
	defer f.Close()

	if err := bs.Backup(f); err != nil {
		r.printf("Failed to backup database: %v\n", err)
		return 1
	}
	r.printf("Database backed up successfully to %s\n", target)
	return 0
}

// restore replaces the database with the contents of a backup file.
func (r *Runner) restore(backupFile string, yes bool) int {
	if !r.requireBadger() {
		return 1
	}
	fi, err := os.Stat(backupFile)
	if err != nil {
		r.printf("Backup file does not exist: %s\n", backupFile)
		return 1
	}
	if fi.Size() == 0 {
		r.printf("Backup file is empty: %s\n", backupFile)
		return 1
	}

	if exists(r.cfg.BadgerPath) {
		if !yes && !r.confirm("Existing database found. Do you want to replace it?") {
			r.printf("Operation cancelled\n")
			return 1
		}
		if err := os.RemoveAll(r.cfg.BadgerPath); err != nil {
			r.printf("Failed to remove existing database: %v\n", err)
			return 1
		}
	}
	if err := os.MkdirAll(r.cfg.BadgerPath, 0o755); err != nil {
		r.printf("Failed to create database directory: %v\n", err)
		return 1
	}

	bs, err := repositories.OpenBadger(r.cfg.BadgerPath)
	if err != nil {
		r.printf("Failed to open database: %v\n", err)
		return 1
	}
	defer bs.Close()

	f, err := os.Open(backupFile)
	if err != nil {
		r.printf("Failed to open backup file: %v\n", err)
		return 1
	}
	defer f.Close()

	err = func() (err error) {
		defer func() {
			if rec := recover(); rec != nil {
				err = fmt.Errorf("panic occurred during restore: %v", rec)
			}
		}()
		return bs.Load(f)
	}()
	if err != nil {
		r.printf("Failed to restore database: %v\n", err)
		return 1
	}
	r.printf("Database restored successfully\n")
	return 0
}

// user manages author accounts.
func (r *Runner) user(args []string) int {
	if len(args) < 3 || args[0] != "create" {
		r.printf("Usage: inkwell user create <username> <password> [email]\n")
		return 1
	}
	in := services.UserInput{Username: args[1], Password: args[2]}
	if len(args) > 3 {
		in.Email = args[3]
	}

	store, _, err := openStore(r.cfg, zap.NewNop())
	if err != nil {
		r.printf("Failed to open database: %v\n", err)
		return 1
	}
	defer store.Close()

	user, err := services.NewAuthService(store.Users, nil, nil).Register(in)
	var verr *services.ValidationError
	if errors.As(err, &verr) {
		r.printf("Invalid user: %v\n", verr)
		return 1
	}
	if err != nil {
		r.printf("Failed to create user: %v\n", err)
		return 1
	}
	r.printf("Created user %s (id %d)\n", user.Username, user.ID)
	return 0
}
