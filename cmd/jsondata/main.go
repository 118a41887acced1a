// Command jsondata inspects and writes files in the jsondata layout.
//
// Usage:
//
//	jsondata [flags] cat NAME       print a file
//	jsondata [flags] put NAME       save JSON lines from stdin as records
//	jsondata [flags] ls [PREFIX]    list files
//	jsondata [flags] keys NAME      list the keys of a saved map
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"sort"
	"syscall"

	"github.com/hupe1980/jsondata"
	"github.com/hupe1980/jsondata/codec"
	"github.com/hupe1980/jsondata/config"
	"github.com/hupe1980/jsondata/delimited"
	"github.com/hupe1980/jsondata/jsonl"
	"github.com/hupe1980/jsondata/ndarray"
	"github.com/hupe1980/jsondata/npz"
)

var errUsage = errors.New("usage")

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx, os.Args[1:], os.Stdin, os.Stdout, os.Stderr); err != nil {
		if !errors.Is(err, errUsage) {
			fmt.Fprintf(os.Stderr, "jsondata: %v\n", err)
		}
		cancel()
		os.Exit(1)
	}
}

type cli struct {
	js     *jsondata.Store
	stdin  io.Reader
	stdout io.Writer
}

func run(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer) error {
	fset := flag.NewFlagSet("jsondata", flag.ContinueOnError)
	fset.SetOutput(stderr)
	configPath := fset.String("config", "", "Path to configuration file (YAML)")
	root := fset.String("root", "", "Local directory (overrides the configured store)")
	verbose := fset.Bool("v", false, "Log every file operation to stderr")
	fset.Usage = func() {
		fmt.Fprintf(stderr, "Usage: jsondata [options] <command> [args]\n\n")
		fmt.Fprintf(stderr, "Commands:\n")
		fmt.Fprintf(stderr, "  cat NAME      print a file\n")
		fmt.Fprintf(stderr, "  put NAME      save JSON lines from stdin as records\n")
		fmt.Fprintf(stderr, "  ls [PREFIX]   list files\n")
		fmt.Fprintf(stderr, "  keys NAME     list the keys of a saved map\n\n")
		fmt.Fprintf(stderr, "Options:\n")
		fset.PrintDefaults()
	}
	if err := fset.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return nil
		}
		return errUsage
	}

	cfg := config.Default()
	if *configPath != "" {
		var err error
		if cfg, err = config.Load(*configPath); err != nil {
			return err
		}
	}
	if *root != "" {
		cfg.Store.Type = config.StoreLocal
		cfg.Store.Root = *root
	}

	opts, err := cfg.Options(ctx)
	if err != nil {
		return err
	}
	if *verbose {
		opts = append(opts, jsondata.WithLogger(jsondata.NewLogger(
			slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: slog.LevelDebug}),
		)))
	}

	c := &cli{js: jsondata.New(opts...), stdin: stdin, stdout: stdout}

	rest := fset.Args()
	if len(rest) == 0 {
		fset.Usage()
		return errUsage
	}
	cmd, rest := rest[0], rest[1:]
	switch {
	case cmd == "cat" && len(rest) == 1:
		return c.cat(ctx, rest[0])
	case cmd == "put" && len(rest) == 1:
		return c.put(ctx, rest[0])
	case cmd == "ls" && len(rest) <= 1:
		prefix := ""
		if len(rest) == 1 {
			prefix = rest[0]
		}
		return c.ls(ctx, prefix)
	case cmd == "keys" && len(rest) == 1:
		return c.keys(ctx, rest[0])
	}
	fset.Usage()
	return errUsage
}

func (c *cli) cat(ctx context.Context, name string) error {
	v, err := c.js.Read(ctx, name)
	if err != nil {
		return err
	}
	switch t := v.(type) {
	case []any:
		return c.printRecords(t)
	case *ndarray.Array:
		return c.printArray(t)
	case []*ndarray.Array:
		for i, a := range t {
			fmt.Fprintf(c.stdout, "# %s %v\n", npz.PositionalKey(i), a.Shape())
			if err := c.printArray(a); err != nil {
				return err
			}
		}
	}
	return nil
}

func (c *cli) printRecords(records []any) error {
	for _, r := range records {
		b, err := codec.Default.Marshal(r)
		if err != nil {
			return err
		}
		if _, err := fmt.Fprintf(c.stdout, "%s\n", b); err != nil {
			return err
		}
	}
	return nil
}

// printArray prints a as delimited text. 0-D arrays print their value.
func (c *cli) printArray(a *ndarray.Array) error {
	if a.Ndim() == 0 {
		_, err := fmt.Fprintf(c.stdout, "%g\n", a.Data()[0])
		return err
	}
	if a.Size() == 0 {
		return nil
	}
	if a.Ndim() > 2 {
		flat, err := a.Reshape(a.Shape()[0], a.Size()/a.Shape()[0])
		if err != nil {
			return err
		}
		a = flat
	}
	return delimited.Write(c.stdout, a, func(o *delimited.WriteOptions) {
		o.Format = "%g"
	})
}

func (c *cli) put(ctx context.Context, name string) error {
	records, err := jsonl.ReadAll(c.stdin, codec.Default, jsonl.DefaultMaxLineSize)
	if err != nil {
		return fmt.Errorf("stdin: %w", err)
	}
	return c.js.Save(ctx, name, records)
}

func (c *cli) ls(ctx context.Context, prefix string) error {
	names, err := c.js.BlobStore().List(ctx, prefix)
	if err != nil {
		return err
	}
	for _, n := range names {
		fmt.Fprintln(c.stdout, n)
	}
	return nil
}

func (c *cli) keys(ctx context.Context, name string) error {
	m, err := c.js.ReadMap(ctx, name)
	if err != nil {
		return err
	}
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Fprintln(c.stdout, k)
	}
	return nil
}
