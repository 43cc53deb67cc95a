// Command asjsc is the archive/image tooling CLI around the asjs core
// (internal/archive, internal/image). It does not compile .as source: the
// parser and semantic compiler that would produce an ast.Node tree from
// source text are out of this module's scope (spec.md places them outside
// the "lexer, node model, flattener, build file, archive, image" core), so
// asjsc only wraps the two things genuinely owned by the core: building and
// inspecting runtime archives, and running or inspecting binary images.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/urfave/cli/v2"
	"golang.org/x/sync/errgroup"

	"github.com/standardbeagle/asjs/internal/archive"
	"github.com/standardbeagle/asjs/internal/config"
	"github.com/standardbeagle/asjs/internal/diag"
	"github.com/standardbeagle/asjs/internal/image"
	"github.com/standardbeagle/asjs/internal/ir"
	"github.com/standardbeagle/asjs/internal/version"
	"github.com/standardbeagle/asjs/pkg/pathutil"
)

func newSink() *diag.Sink {
	return diag.NewSink(diag.Info, func(d diag.Diagnostic) {
		fmt.Fprintln(os.Stderr, d.String())
	})
}

func main() {
	app := &cli.App{
		Name:    "asjsc",
		Usage:   "runtime archive and image tooling for the asjs compiler core",
		Version: version.Version,
		Commands: []*cli.Command{
			archiveCommand(),
			imageCommand(),
		},
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func archiveCommand() *cli.Command {
	return &cli.Command{
		Name:  "archive",
		Usage: "build and inspect runtime archives (.oar)",
		Subcommands: []*cli.Command{
			{
				Name:      "build",
				Usage:     "resolve glob patterns into a runtime archive",
				ArgsUsage: "[patterns...]",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "output", Aliases: []string{"o"}, Value: "rt.oar", Usage: "output archive path"},
					&cli.StringFlag{Name: "manifest", Aliases: []string{"m"}, Usage: "asjs.build.toml manifest (overrides patterns arguments)"},
					&cli.BoolFlag{Name: "watch", Usage: "rebuild whenever a source pattern's directory changes"},
				},
				Action: archiveBuildAction,
			},
			{
				Name:      "list",
				Usage:     "list the functions contained in a runtime archive",
				ArgsUsage: "<path>",
				Action:    archiveListAction,
			},
		},
	}
}

func imageCommand() *cli.Command {
	return &cli.Command{
		Name:  "image",
		Usage: "run and inspect binary images",
		Subcommands: []*cli.Command{
			{
				Name:      "run",
				Usage:     "load a binary image and run its entry point",
				ArgsUsage: "<path>",
				Action:    imageRunAction,
			},
			{
				Name:      "inspect",
				Usage:     "dump a binary image's header and variable table",
				ArgsUsage: "<path>",
				Flags: []cli.Flag{
					&cli.BoolFlag{Name: "verbose", Aliases: []string{"v"}, Usage: "print each variable's current value"},
				},
				Action: imageInspectAction,
			},
		},
	}
}

func resolvePatterns(c *cli.Context) ([]string, error) {
	if manifestPath := c.String("manifest"); manifestPath != "" {
		m, err := config.LoadBuildManifest(filepath.Dir(manifestPath))
		if err != nil {
			return nil, err
		}
		return m.Runtime.Patterns, nil
	}
	if c.NArg() == 0 {
		return nil, errors.New("asjsc archive build: no patterns given and no --manifest provided")
	}
	return c.Args().Slice(), nil
}

func archiveBuildAction(c *cli.Context) error {
	patterns, err := resolvePatterns(c)
	if err != nil {
		return err
	}
	output := c.String("output")

	if err := buildArchiveOnceParallel(patterns, output); err != nil {
		return err
	}
	if !c.Bool("watch") {
		return nil
	}
	return watchAndRebuild(c.Context, patterns, output)
}

// buildArchiveOnceParallel resolves every pattern concurrently with
// errgroup before assembling the archive, bounding the fan-out the way the
// teacher's integration tests bound concurrent goroutines with
// errgroup.SetLimit, since doublestar.Glob touches the filesystem per
// pattern and patterns are independent of one another.
func buildArchiveOnceParallel(patterns []string, output string) error {
	a := archive.New()

	g := new(errgroup.Group)
	g.SetLimit(8)
	contributors := make([][]string, len(patterns))
	for i, pattern := range patterns {
		i, pattern := i, pattern
		g.Go(func() error {
			matches, err := archive.AddFromPattern(a, pattern)
			if err != nil {
				return fmt.Errorf("pattern %q: %w", pattern, err)
			}
			contributors[i] = matches
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	for i, pattern := range patterns {
		if len(contributors[i]) == 0 {
			fmt.Fprintf(os.Stderr, "asjsc: warning: pattern %q matched nothing\n", pattern)
		}
	}
	if err := a.WriteFile(output); err != nil {
		return fmt.Errorf("writing %s: %w", output, err)
	}
	fmt.Fprintf(os.Stderr, "asjsc: wrote %s (%d functions)\n", output, len(a.Names()))
	return nil
}

// watchAndRebuild watches each pattern's glob root directory (pathutil.
// GlobRoot) and rebuilds the archive, debounced, whenever fsnotify reports
// a change underneath it — the same directory-root-plus-debounce shape as
// the teacher's indexing.FileWatcher, without that package's incremental
// index bookkeeping, since a full archive rebuild is cheap.
func watchAndRebuild(ctx context.Context, patterns []string, output string) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("starting watcher: %w", err)
	}
	defer watcher.Close()

	roots := make(map[string]struct{})
	for _, p := range patterns {
		roots[pathutil.GlobRoot(p)] = struct{}{}
	}
	for root := range roots {
		if err := watcher.Add(root); err != nil {
			fmt.Fprintf(os.Stderr, "asjsc: warning: cannot watch %s: %v\n", root, err)
			continue
		}
	}
	fmt.Fprintf(os.Stderr, "asjsc: watching %d director(y/ies) for changes\n", len(roots))

	const debounce = 200 * time.Millisecond
	var timer *time.Timer
	rebuild := func() {
		if err := buildArchiveOnceParallel(patterns, output); err != nil {
			fmt.Fprintf(os.Stderr, "asjsc: rebuild failed: %v\n", err)
		}
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case _, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if timer != nil {
				timer.Stop()
			}
			timer = time.AfterFunc(debounce, rebuild)
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			fmt.Fprintf(os.Stderr, "asjsc: watch error: %v\n", err)
		}
	}
}

func archiveListAction(c *cli.Context) error {
	if c.NArg() != 1 {
		return errors.New("asjsc archive list: expected exactly one archive path")
	}
	a, err := archive.Load(c.Args().First())
	if err != nil {
		return fmt.Errorf("loading archive: %w", err)
	}
	for _, name := range a.Names() {
		code, _ := a.Function(name)
		fmt.Printf("%-32s %d bytes\n", name, len(code))
	}
	return nil
}

func imageRunAction(c *cli.Context) error {
	if c.NArg() != 1 {
		return errors.New("asjsc image run: expected exactly one image path")
	}
	sink := newSink()
	img, err := image.Load(c.Args().First(), sink)
	if err != nil {
		return fmt.Errorf("loading image: %w", err)
	}
	defer img.Clean()

	result, err := img.Run()
	if err != nil {
		return fmt.Errorf("running image: %w", err)
	}
	fmt.Printf("result: %d\n", result)

	if n := img.VariableCount(); n > 0 {
		fmt.Println("variables:")
		for i := 0; i < n; i++ {
			v := img.VariableAt(i)
			fmt.Printf("  %-24s %s\n", v.Name, formatVariable(img, v))
		}
	}
	return nil
}

func imageInspectAction(c *cli.Context) error {
	if c.NArg() != 1 {
		return errors.New("asjsc image inspect: expected exactly one image path")
	}
	sink := newSink()
	img, err := image.Load(c.Args().First(), sink)
	if err != nil {
		return fmt.Errorf("loading image: %w", err)
	}
	defer img.Clean()

	major, minor := img.Version()
	fmt.Printf("version:   %d.%d\n", major, minor)
	fmt.Printf("variables: %d\n", img.VariableCount())

	if !c.Bool("verbose") {
		return nil
	}
	for i := 0; i < img.VariableCount(); i++ {
		v := img.VariableAt(i)
		fmt.Printf("  %-24s %-8s %s\n", v.Name, v.Type, formatVariable(img, v))
	}
	return nil
}

func formatVariable(img *image.Image, v *image.Variable) string {
	switch v.Type {
	case ir.TypeBoolean:
		return fmt.Sprintf("%v", img.Bool(v))
	case ir.TypeFloatingPoint:
		return fmt.Sprintf("%v", img.Float64(v))
	case ir.TypeString:
		return fmt.Sprintf("%q", img.String(v))
	default:
		return fmt.Sprintf("%v", img.Int64(v))
	}
}
