package cli

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/matzehuels/valuechain/pkg/chain"
	"github.com/matzehuels/valuechain/pkg/connect"
	pkgio "github.com/matzehuels/valuechain/pkg/io"
)

// completionCommand creates the completion command for generating shell completions.
func (c *CLI) completionCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "completion [bash|zsh|fish|powershell]",
		Short: "Generate shell completion scripts",
		Long: `Generate shell completion scripts for valuechain.

Node and edge ids complete from the document given by --file.

Bash:
  $ source <(valuechain completion bash)

Zsh:
  $ valuechain completion zsh > "${fpath[1]}/_valuechain"

Fish:
  $ valuechain completion fish > ~/.config/fish/completions/valuechain.fish

PowerShell:
  PS> valuechain completion powershell | Out-String | Invoke-Expression
`,
		DisableFlagsInUseLine: true,
		ValidArgs:             []string{"bash", "zsh", "fish", "powershell"},
		Args:                  cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			switch args[0] {
			case "bash":
				return cmd.Root().GenBashCompletion(os.Stdout)
			case "zsh":
				return cmd.Root().GenZshCompletion(os.Stdout)
			case "fish":
				return cmd.Root().GenFishCompletion(os.Stdout, true)
			case "powershell":
				return cmd.Root().GenPowerShellCompletionWithDesc(os.Stdout)
			}
			return nil
		},
	}

	return cmd
}

// completionGraph reads the working document for completion. Completion
// runs without setup, so only --file and the default path are honored,
// and any error yields an empty graph.
func (c *CLI) completionGraph() *chain.Graph {
	res, err := pkgio.ImportJSON(c.docPath())
	if err != nil {
		return chain.New()
	}
	return res.Graph
}

// completeNodeIDs completes node ids, described by their labels, for the
// first n positional arguments.
func (c *CLI) completeNodeIDs(n int) cobra.CompletionFunc {
	return func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		if len(args) >= n {
			return nil, cobra.ShellCompDirectiveNoFileComp
		}
		var out []string
		for _, node := range c.completionGraph().Nodes() {
			out = append(out, node.ID+"\t"+node.Data.Label)
		}
		return out, cobra.ShellCompDirectiveNoFileComp
	}
}

// completeEdgeIDs completes the id of one edge.
func (c *CLI) completeEdgeIDs(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	if len(args) > 0 {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}
	var out []string
	for _, e := range c.completionGraph().Edges() {
		out = append(out, e.ID+"\t"+e.Source+" → "+e.Target)
	}
	return out, cobra.ShellCompDirectiveNoFileComp
}

// completeConnect completes a node id, then the directions its type exposes.
func (c *CLI) completeConnect(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	switch len(args) {
	case 0:
		return c.completeNodeIDs(1)(cmd, args, toComplete)
	case 1:
		dirs := connect.Directions
		if n, ok := c.completionGraph().Node(args[0]); ok {
			dirs = connect.Allowed(n.Type)
		}
		out := make([]string, len(dirs))
		for i, d := range dirs {
			out[i] = string(d)
		}
		return out, cobra.ShellCompDirectiveNoFileComp
	}
	return nil, cobra.ShellCompDirectiveNoFileComp
}
