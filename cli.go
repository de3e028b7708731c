package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"

	"tasklist/internal/presenter"
	"tasklist/internal/store"
)

var errUsage = errors.New("usage")

// terminalView prints the rows of a presenter.List, numbered from 1.
type terminalView struct {
	out  io.Writer
	list *presenter.List
}

func (v *terminalView) render() {
	if v.list.Len() == 0 {
		fmt.Fprintln(v.out, "No tasks.")
		return
	}
	for i, title := range v.list.Titles() {
		fmt.Fprintf(v.out, "%3d  %s\n", i+1, title)
	}
}

func (v *terminalView) apply(c presenter.Change) {
	task, ok := v.list.At(c.Index)
	switch c.Kind {
	case presenter.Insert:
		if ok {
			fmt.Fprintf(v.out, "added %d: %s\n", c.Index+1, task.Title)
		}
	case presenter.Update:
		if ok {
			fmt.Fprintf(v.out, "renamed %d: %s\n", c.Index+1, task.Title)
		}
	case presenter.Delete:
		fmt.Fprintf(v.out, "removed %d\n", c.Index+1)
	}
}

// runCommand executes a single list command against s and writes the
// resulting view to out. Log records go to log, never to out.
func runCommand(ctx context.Context, s store.Store, args []string, out io.Writer, log *slog.Logger) error {
	view := &terminalView{out: out}
	list := presenter.New(s,
		presenter.WithObserver(func(c presenter.Change) { view.apply(c) }),
		presenter.WithLogger(log),
	)
	view.list = list

	if err := list.Load(ctx); err != nil {
		return fmt.Errorf("failed to load tasks: %w", err)
	}

	switch args[0] {
	case "list", "ls":
		if len(args) != 1 {
			return fmt.Errorf("%w: list takes no arguments", errUsage)
		}
		view.render()
		return nil

	case "add":
		if len(args) < 2 {
			return fmt.Errorf("%w: add TITLE", errUsage)
		}
		_, err := list.Add(ctx, strings.Join(args[1:], " "))
		return err

	case "rename", "edit":
		if len(args) < 3 {
			return fmt.Errorf("%w: rename N TITLE", errUsage)
		}
		index, err := parseRow(args[1])
		if err != nil {
			return err
		}
		return list.Rename(ctx, index, strings.Join(args[2:], " "))

	case "remove", "rm":
		if len(args) != 2 {
			return fmt.Errorf("%w: remove N", errUsage)
		}
		index, err := parseRow(args[1])
		if err != nil {
			return err
		}
		return list.Remove(ctx, index)

	default:
		return fmt.Errorf("%w: unknown command %q", errUsage, args[0])
	}
}

func parseRow(s string) (int, error) {
	n, err := strconv.Atoi(s)
	if err != nil || n < 1 {
		return 0, fmt.Errorf("%w: row must be a positive number, got %q", errUsage, s)
	}
	return n - 1, nil
}
