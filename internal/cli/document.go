package cli

import (
	"context"
	"os"

	"github.com/spf13/cobra"

	"github.com/matzehuels/valuechain/pkg/editor"
	"github.com/matzehuels/valuechain/pkg/errors"
	pkgio "github.com/matzehuels/valuechain/pkg/io"
)

// initCommand creates the init command, which writes an empty document.
func (c *CLI) initCommand() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Create an empty document",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			path := c.docPath()
			if _, err := os.Stat(path); err == nil && !force {
				return errors.New(errors.ErrCodeInvalidInput, "%s already exists (use --force to overwrite)", path)
			}
			if err := c.saveEditor(cmd.Context(), editor.New(nil)); err != nil {
				return err
			}
			printSuccess("Created %s", path)
			printNextStep("Add a node", appName+" node add primary --label \"Inbound Logistics\"")
			return nil
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "overwrite an existing document")
	return cmd
}

// importCommand creates the import command, which replaces the document
// with the contents of another file.
func (c *CLI) importCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "import <path>",
		Short: "Replace the document with a JSON file",
		Long: `Replace the document with the nodes and edges of a JSON file.

Unknown node types are imported as custom nodes. Nodes with empty or
duplicate ids are skipped and edges whose endpoints are missing are
dropped; both are reported. A file that is not a valid document leaves the
current document untouched.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runImport(cmd.Context(), args[0])
		},
	}
}

func (c *CLI) runImport(ctx context.Context, src string) error {
	f, err := pkgio.Open(src)
	if err != nil {
		return err
	}
	defer f.Close()

	var res pkgio.Result
	err = c.update(ctx, func(ed *editor.Editor) error {
		var err error
		res, err = ed.Import(ctx, f)
		return err
	})
	if err != nil {
		return err
	}

	printSuccess("Imported %s", src)
	printStats(res.Graph.NodeCount(), res.Graph.EdgeCount())
	warnPartial(res)
	return nil
}

// exportCommand creates the export command.
func (c *CLI) exportCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "export [path]",
		Short: "Write the document as JSON (stdout when path is - or omitted)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ed, err := c.openEditor(cmd.Context())
			if err != nil {
				return err
			}
			if len(args) == 0 || args[0] == "-" {
				return ed.Export(os.Stdout)
			}
			if err := pkgio.ExportJSON(ed.Graph(), args[0]); err != nil {
				return err
			}
			printSuccess("Exported %d nodes, %d edges", ed.Graph().NodeCount(), ed.Graph().EdgeCount())
			printFile(args[0])
			return nil
		},
	}
}

// clearCommand creates the clear command.
func (c *CLI) clearCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Remove all nodes and edges",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			err := c.update(ctx, func(ed *editor.Editor) error {
				ed.Clear(ctx)
				return nil
			})
			if err != nil {
				return err
			}
			printSuccess("Cleared %s", c.docPath())
			return nil
		},
	}
}
