package cli

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/matzehuels/valuechain/pkg/editor"
)

// editCommand creates the edit command, an interactive panel for one
// node's label, description and color.
func (c *CLI) editCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "edit [id]",
		Short: "Edit a node interactively",
		Long: `Open the edit panel for a node. Without an id, pick the node from a list.

Changes are kept in the panel until saved with enter; esc discards them and
ctrl+d deletes the node with its edges.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			return c.update(ctx, func(ed *editor.Editor) error {
				id := ""
				if len(args) == 1 {
					id = args[0]
				}
				return runEdit(ctx, ed, id)
			})
		},
		ValidArgsFunction: c.completeNodeIDs(1),
	}
}

func runEdit(ctx context.Context, ed *editor.Editor, id string) error {
	if id == "" {
		if ed.Graph().NodeCount() == 0 {
			printInfo("No nodes to edit")
			return nil
		}
		final, err := tea.NewProgram(NewNodeListModel(ed.Graph().Nodes()), tea.WithContext(ctx)).Run()
		if err != nil {
			return err
		}
		picked := final.(NodeListModel).Selected
		if picked == nil {
			return nil
		}
		id = picked.ID
	}

	s, err := ed.Edit(id)
	if err != nil {
		return err
	}
	final, err := tea.NewProgram(NewEditModel(s), tea.WithContext(ctx)).Run()
	if err != nil {
		_, _ = s.Cancel()
		return err
	}

	switch final.(EditModel).Action {
	case EditCommit:
		if !s.Dirty() {
			_, _ = s.Cancel()
			printInfo("No changes")
			return nil
		}
		if err := ed.Commit(ctx, s); err != nil {
			return err
		}
		printSuccess("Saved %s", id)
	case EditDelete:
		if err := ed.Delete(ctx, s); err != nil {
			return err
		}
		printSuccess("Deleted %s", id)
	default:
		_, _ = s.Cancel()
		printInfo("Discarded changes")
	}
	return nil
}
