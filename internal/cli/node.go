package cli

import (
	"context"
	"fmt"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/matzehuels/valuechain/pkg/chain"
	"github.com/matzehuels/valuechain/pkg/editor"
	"github.com/matzehuels/valuechain/pkg/errors"
	"github.com/matzehuels/valuechain/pkg/render/nodelink"
)

// nodeCommand creates the node command group.
func (c *CLI) nodeCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "node",
		Short: "Add, change and list nodes",
	}

	cmd.AddCommand(c.nodeAddCommand())
	cmd.AddCommand(c.nodeUpdateCommand())
	cmd.AddCommand(c.nodeMoveCommand())
	cmd.AddCommand(c.nodeRemoveCommand())
	cmd.AddCommand(c.nodeListCommand())

	return cmd
}

// nodeOpts holds the flags shared by node add and node update.
type nodeOpts struct {
	label       string
	description string
	color       string
	x, y        float64
}

func (c *CLI) nodeAddCommand() *cobra.Command {
	var opts nodeOpts

	cmd := &cobra.Command{
		Use:       "add <primary|support|external|custom>",
		Short:     "Add a node",
		Long:      `Add a node of the given type. Without --x/--y the node is placed like a toolbar click: diagonally offset from the previous one.`,
		Args:      cobra.ExactArgs(1),
		ValidArgs: nodeTypeNames(),
		RunE: func(cmd *cobra.Command, args []string) error {
			t, ok := chain.ParseNodeType(args[0])
			if !ok {
				return errors.New(errors.ErrCodeInvalidNodeType, "unknown node type %q (want primary, support, external or custom)", args[0])
			}

			var pos *chain.Position
			if cmd.Flags().Changed("x") || cmd.Flags().Changed("y") {
				pos = &chain.Position{X: opts.x, Y: opts.y}
			}
			var data *chain.NodeData
			if cmd.Flags().Changed("label") || opts.description != "" || opts.color != "" {
				label := opts.label
				if !cmd.Flags().Changed("label") {
					label = t.DisplayName()
				}
				data = &chain.NodeData{Label: label, Description: opts.description, Color: opts.color}
			}

			ctx := cmd.Context()
			var id string
			err := c.update(ctx, func(ed *editor.Editor) error {
				var err error
				id, err = ed.AddNode(ctx, t, pos, data)
				return err
			})
			if err != nil {
				return err
			}
			fmt.Println(id)
			return nil
		},
	}

	cmd.Flags().StringVar(&opts.label, "label", "", "node label (default: the type's display name)")
	cmd.Flags().StringVar(&opts.description, "description", "", "node description")
	cmd.Flags().StringVar(&opts.color, "color", "", "color override: preset name, #hex or rgb(r, g, b)")
	cmd.Flags().Float64Var(&opts.x, "x", 0, "x position")
	cmd.Flags().Float64Var(&opts.y, "y", 0, "y position")

	return cmd
}

func (c *CLI) nodeUpdateCommand() *cobra.Command {
	var opts nodeOpts

	cmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Change a node's label, description or color",
		Long:  `Change a node's label, description or color. Only the given flags are changed. --color default restores the type color.`,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var p chain.Patch
			if cmd.Flags().Changed("label") {
				p.Label = &opts.label
			}
			if cmd.Flags().Changed("description") {
				p.Description = &opts.description
			}
			if cmd.Flags().Changed("color") {
				p.Color = &opts.color
			}
			if p.IsEmpty() {
				return errors.New(errors.ErrCodeInvalidInput, "nothing to update (use --label, --description or --color)")
			}

			ctx := cmd.Context()
			err := c.update(ctx, func(ed *editor.Editor) error {
				return ed.UpdateNode(ctx, args[0], p)
			})
			if err != nil {
				return err
			}
			printSuccess("Updated %s", args[0])
			return nil
		},
		ValidArgsFunction: c.completeNodeIDs(1),
	}

	cmd.Flags().StringVar(&opts.label, "label", "", "node label")
	cmd.Flags().StringVar(&opts.description, "description", "", "node description")
	cmd.Flags().StringVar(&opts.color, "color", "", "color override: preset name, #hex, rgb(r, g, b) or default")

	return cmd
}

func (c *CLI) nodeMoveCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "move <id> <x> <y>",
		Short: "Move a node",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			x, err := strconv.ParseFloat(args[1], 64)
			if err != nil {
				return errors.Wrap(errors.ErrCodeInvalidInput, err, "invalid x %q", args[1])
			}
			y, err := strconv.ParseFloat(args[2], 64)
			if err != nil {
				return errors.Wrap(errors.ErrCodeInvalidInput, err, "invalid y %q", args[2])
			}

			ctx := cmd.Context()
			return c.update(ctx, func(ed *editor.Editor) error {
				return ed.MoveNode(ctx, args[0], chain.Position{X: x, Y: y})
			})
		},
		ValidArgsFunction: c.completeNodeIDs(1),
	}
}

func (c *CLI) nodeRemoveCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "rm <id>",
		Aliases: []string{"remove"},
		Short:   "Remove a node and its edges",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			var removedEdges int
			err := c.update(ctx, func(ed *editor.Editor) error {
				if !ed.Graph().HasNode(args[0]) {
					return errors.New(errors.ErrCodeNodeNotFound, "node %q not found", args[0])
				}
				removedEdges = len(ed.Graph().IncidentEdges(args[0]))
				ed.RemoveNode(ctx, args[0])
				return nil
			})
			if err != nil {
				return err
			}
			printSuccess("Removed %s", args[0])
			if removedEdges > 0 {
				printDetail("and %d edge(s)", removedEdges)
			}
			return nil
		},
		ValidArgsFunction: c.completeNodeIDs(1),
	}
}

func (c *CLI) nodeListCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "ls",
		Aliases: []string{"list"},
		Short:   "List nodes",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ed, err := c.openEditor(cmd.Context())
			if err != nil {
				return err
			}
			printNodeTable(cmd.Context(), ed.Graph())
			return nil
		},
	}
}

func printNodeTable(ctx context.Context, g *chain.Graph) {
	nodes := g.Nodes()
	if len(nodes) == 0 {
		printInfo("No nodes")
		return
	}

	headerStyle := lipgloss.NewStyle().Foreground(colorGray).Bold(true)
	rows := make([][]string, len(nodes))
	for i, n := range nodes {
		rows[i] = []string{
			n.ID,
			string(n.Type),
			n.Data.Label,
			fmtPosition(n.Position),
			swatch(nodelink.FillColor(n), nodelink.FillColor(n)),
		}
	}

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("ID", "Type", "Label", "Position", "Color").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 {
				return headerStyle
			}
			if col == 0 {
				return lipgloss.NewStyle().Foreground(colorGray)
			}
			return lipgloss.NewStyle()
		})

	fmt.Println(t.Render())
	printStats(g.NodeCount(), g.EdgeCount())
	loggerFromContext(ctx).Debugf("Listed %d nodes", len(nodes))
}

func fmtPosition(p chain.Position) string {
	return strconv.FormatFloat(p.X, 'f', -1, 64) + ", " + strconv.FormatFloat(p.Y, 'f', -1, 64)
}

func nodeTypeNames() []string {
	names := make([]string, len(chain.NodeTypes))
	for i, t := range chain.NodeTypes {
		names[i] = string(t)
	}
	return names
}
