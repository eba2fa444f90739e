// Package cli implements the valuechain command-line interface.
//
// Every command works on one document, a JSON file given by --file (or the
// editor.file config key). Commands load the file into a [editor.Editor],
// apply one operation and write the file back. The store-backed commands
// (push, pull, ls-remote, serve) talk to the backend configured in the
// [store] section of the config file.
//
// # Logging
//
// All commands support --verbose (-v) for debug-level logging. The logger
// is passed through context.Context, and at debug level the editor, store
// and HTTP observability hooks are logged as well.
package cli

import (
	"context"
	"io"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/valuechain/internal/config"
	"github.com/matzehuels/valuechain/pkg/buildinfo"
	"github.com/matzehuels/valuechain/pkg/editor"
	"github.com/matzehuels/valuechain/pkg/errors"
	pkgio "github.com/matzehuels/valuechain/pkg/io"
	"github.com/matzehuels/valuechain/pkg/observability"
	"github.com/matzehuels/valuechain/pkg/store"
)

// =============================================================================
// Constants
// =============================================================================

// appName is the application name used for directories and display.
const appName = "valuechain"

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger

	configPath string
	file       string
	cfg        *config.Config
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{
		Logger: newLogger(w, level),
		cfg:    config.Default(),
	}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:          appName,
		Short:        "valuechain edits value-chain diagrams",
		Long:         `valuechain builds value-chain diagrams from typed activity nodes and the links between them, and stores, renders and serves them.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return c.setup(cmd)
		},
	}

	root.SetVersionTemplate(buildinfo.Template())

	root.PersistentFlags().StringVar(&c.configPath, "config", "", "config file (default $XDG_CONFIG_HOME/valuechain/config.toml)")
	root.PersistentFlags().StringVarP(&c.file, "file", "f", "", "document file (default from config, valuechain.json)")

	root.AddCommand(c.initCommand())
	root.AddCommand(c.nodeCommand())
	root.AddCommand(c.edgeCommand())
	root.AddCommand(c.connectCommand())
	root.AddCommand(c.importCommand())
	root.AddCommand(c.exportCommand())
	root.AddCommand(c.clearCommand())
	root.AddCommand(c.renderCommand())
	root.AddCommand(c.editCommand())
	root.AddCommand(c.colorsCommand())
	root.AddCommand(c.pushCommand())
	root.AddCommand(c.pullCommand())
	root.AddCommand(c.lsRemoteCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// setup loads the config file and attaches the logger to the command context.
func (c *CLI) setup(cmd *cobra.Command) error {
	cfg, err := config.Load(c.configPath)
	if err != nil {
		return err
	}
	c.cfg = cfg
	c.Logger.Debug("Loaded config", "path", configPathOrDefault(c.configPath))

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	cmd.SetContext(withLogger(ctx, c.Logger))

	if c.Logger.GetLevel() <= log.DebugLevel {
		installLogHooks(c.Logger)
	} else {
		observability.Reset()
	}
	return nil
}

func configPathOrDefault(p string) string {
	if p == "" {
		return config.Path()
	}
	return p
}

// =============================================================================
// Documents
// =============================================================================

// docPath returns the working document path.
func (c *CLI) docPath() string {
	if c.file != "" {
		return c.file
	}
	return c.cfg.Editor.File
}

func (c *CLI) editorOptions() []editor.Option {
	if c.cfg.Editor.StrictColor {
		return []editor.Option{editor.WithStrictColor()}
	}
	return nil
}

// openEditor loads the working document. A missing file opens an empty
// document, which is created on the first write.
func (c *CLI) openEditor(ctx context.Context) (*editor.Editor, error) {
	path := c.docPath()
	logger := loggerFromContext(ctx)

	res, err := pkgio.ImportJSON(path)
	if errors.Is(err, errors.ErrCodeDocumentNotFound) {
		logger.Debugf("No document at %s, starting empty", path)
		return editor.New(nil, c.editorOptions()...), nil
	}
	if err != nil {
		return nil, err
	}
	warnPartial(res)
	logger.Debugf("Loaded %s: %d nodes, %d edges", path, res.Graph.NodeCount(), res.Graph.EdgeCount())
	return editor.New(res.Graph, c.editorOptions()...), nil
}

// saveEditor writes the editor's graph back to the working document.
func (c *CLI) saveEditor(ctx context.Context, ed *editor.Editor) error {
	path := c.docPath()
	if err := pkgio.ExportJSON(ed.Graph(), path); err != nil {
		return err
	}
	loggerFromContext(ctx).Debugf("Wrote %s", path)
	return nil
}

// update opens the working document, runs op and saves the document if op
// changed the graph.
func (c *CLI) update(ctx context.Context, op func(*editor.Editor) error) error {
	ed, err := c.openEditor(ctx)
	if err != nil {
		return err
	}
	before := ed.Graph()
	if err := op(ed); err != nil {
		return err
	}
	if ed.Graph() == before {
		return nil
	}
	return c.saveEditor(ctx, ed)
}

// openStore opens the configured document store. A non-empty backend
// overrides the store.backend config key.
func (c *CLI) openStore(ctx context.Context, backend string) (store.Store, error) {
	sc, err := c.cfg.StoreConfig()
	if err != nil {
		return nil, err
	}
	if backend != "" {
		sc.Backend = backend
	}
	loggerFromContext(ctx).Debug("Opening store", "backend", sc.Backend)
	return store.Open(ctx, sc)
}

func warnPartial(res pkgio.Result) {
	if res.SkippedNodes > 0 {
		printWarning("Skipped %d node(s) with empty or duplicate ids", res.SkippedNodes)
	}
	if res.DroppedEdges > 0 {
		printWarning("Dropped %d edge(s) with missing endpoints or clashing ids", res.DroppedEdges)
	}
	if res.RewrittenEdges > 0 {
		printWarning("Renamed %d edge id(s) to the e-<source>-<target> form", res.RewrittenEdges)
	}
}

