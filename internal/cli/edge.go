package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/valuechain/pkg/chain"
	"github.com/matzehuels/valuechain/pkg/connect"
	"github.com/matzehuels/valuechain/pkg/editor"
	"github.com/matzehuels/valuechain/pkg/errors"
)

// edgeCommand creates the edge command group.
func (c *CLI) edgeCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "edge",
		Short: "Add, remove and list edges",
	}

	cmd.AddCommand(c.edgeAddCommand())
	cmd.AddCommand(c.edgeRemoveCommand())
	cmd.AddCommand(c.edgeListCommand())

	return cmd
}

func (c *CLI) edgeAddCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "add <source> <target>",
		Short: "Connect two nodes",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			var e chain.Edge
			err := c.update(ctx, func(ed *editor.Editor) error {
				var err error
				e, err = ed.AddEdge(ctx, args[0], args[1])
				return err
			})
			if err != nil {
				return err
			}
			printEdge(e)
			return nil
		},
		ValidArgsFunction: c.completeNodeIDs(2),
	}
}

func (c *CLI) edgeRemoveCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "rm <edge-id>",
		Aliases: []string{"remove"},
		Short:   "Remove an edge",
		Long:    `Remove an edge by id. Edge ids have the form e-<source>-<target>.`,
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			err := c.update(ctx, func(ed *editor.Editor) error {
				if !ed.Graph().HasEdge(args[0]) {
					return errors.New(errors.ErrCodeEdgeNotFound, "edge %q not found", args[0])
				}
				ed.RemoveEdge(ctx, args[0])
				return nil
			})
			if err != nil {
				return err
			}
			printSuccess("Removed %s", args[0])
			return nil
		},
		ValidArgsFunction: c.completeEdgeIDs,
	}
}

func (c *CLI) edgeListCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "ls",
		Aliases: []string{"list"},
		Short:   "List edges",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ed, err := c.openEditor(cmd.Context())
			if err != nil {
				return err
			}
			edges := ed.Graph().Edges()
			if len(edges) == 0 {
				printInfo("No edges")
				return nil
			}
			for _, e := range edges {
				printEdge(e)
			}
			return nil
		},
	}
}

// connectCommand creates the connect command, the keyboard counterpart of
// dragging from a node's handle.
func (c *CLI) connectCommand() *cobra.Command {
	var force bool

	dirs := make([]string, len(connect.Directions))
	for i, d := range connect.Directions {
		dirs[i] = string(d)
	}

	cmd := &cobra.Command{
		Use:   "connect <id> <" + strings.Join(dirs, "|") + ">",
		Short: "Connect a node to its nearest neighbor in a direction",
		Long: `Connect a node to the nearest node on the given side.

Candidates must lie strictly beyond the node in that direction and within
150 units of it on the other axis. Right and bottom create an outgoing
edge; left and top an incoming one. Each node type only exposes some sides
(primary and external: left, right; support: top, bottom; custom: all);
--force ignores that restriction.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := connect.ParseDirection(args[1])
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			var (
				e     chain.Edge
				found bool
			)
			err = c.update(ctx, func(ed *editor.Editor) error {
				var err error
				e, found, err = ed.Connect(ctx, args[0], d, force)
				return err
			})
			if err != nil {
				return err
			}
			if !found {
				printWarning("No candidate %s of %s", d, args[0])
				return nil
			}
			printEdge(e)
			return nil
		},
		ValidArgsFunction: c.completeConnect,
	}

	cmd.Flags().BoolVar(&force, "force", false, "allow directions the node type does not expose")
	return cmd
}

func printEdge(e chain.Edge) {
	fmt.Println(StyleValue.Render(e.Source) + " " + StyleDim.Render(iconArrow) + " " + StyleValue.Render(e.Target) + "  " + StyleDim.Render(e.ID))
}
