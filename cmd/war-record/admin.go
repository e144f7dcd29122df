package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/We-are-incomplete/war-record-only-read/internal/api"
	"github.com/We-are-incomplete/war-record-only-read/internal/storage"
)

func runMigrate(out io.Writer, dbPath string, args []string) (err error) {
	if len(args) == 0 || len(args) > 2 || (len(args) == 2) != (args[0] == "force") {
		fmt.Fprintln(os.Stderr, "usage: war-record migrate up|down|version|force <version>")
		return errUsage
	}

	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return fmt.Errorf("failed to create database directory: %w", err)
	}
	mgr, err := storage.NewMigrationManager(dbPath)
	if err != nil {
		return fmt.Errorf("failed to create migration manager: %w", err)
	}
	defer func() {
		if closeErr := mgr.Close(); closeErr != nil && err == nil {
			err = closeErr
		}
	}()

	switch args[0] {
	case "up":
		fmt.Fprintln(out, "Applying all pending migrations...")
		if err := mgr.Up(); err != nil {
			return err
		}
	case "down":
		fmt.Fprintln(out, "Rolling back last migration...")
		if err := mgr.Down(); err != nil {
			return err
		}
	case "force":
		v, err := strconv.Atoi(args[1])
		if err != nil || v < 0 {
			return fmt.Errorf("invalid version number %q", args[1])
		}
		fmt.Fprintf(out, "Forcing migration version to %d (no migrations are run)...\n", v)
		if err := mgr.Force(v); err != nil {
			return err
		}
	case "version", "status":
	default:
		fmt.Fprintf(os.Stderr, "Unknown migration command: %s\n", args[0])
		return errUsage
	}

	version, dirty, err := mgr.Version()
	if err != nil {
		return err
	}
	if dirty {
		fmt.Fprintf(out, "Current version: %d (dirty - migration failed or interrupted)\n", version)
	} else {
		fmt.Fprintf(out, "Current version: %d\n", version)
	}
	return nil
}

// runHashPassword prints the bcrypt hash of the password given as the only
// argument, or of the first line read from in.
func runHashPassword(in io.Reader, out io.Writer, args []string) error {
	var password string
	switch len(args) {
	case 0:
		line, err := bufio.NewReader(in).ReadString('\n')
		if err != nil && !errors.Is(err, io.EOF) {
			return fmt.Errorf("failed to read password: %w", err)
		}
		password = strings.TrimRight(line, "\r\n")
	case 1:
		password = args[0]
	default:
		fmt.Fprintln(os.Stderr, "usage: war-record hash-password [password]")
		return errUsage
	}

	hash, err := api.HashPassword(password)
	if err != nil {
		return err
	}
	fmt.Fprintln(out, hash)
	return nil
}
