package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/valuechain/pkg/chain"
	"github.com/matzehuels/valuechain/pkg/color"
)

// colorsCommand creates the colors command, which shows the presets a node
// color can name and the default color of each node type.
func (c *CLI) colorsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "colors",
		Short: "Show color presets and node type defaults",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Println(StyleTitle.Render("Presets"))
			for _, p := range color.Presets {
				printKeyValue(p.Name, swatch(p.Hex, p.Hex))
			}
			printNewline()

			fmt.Println(StyleTitle.Render("Type defaults"))
			for _, t := range chain.NodeTypes {
				hex := color.TypeDefault(t)
				printKeyValue(string(t), swatch(hex, hex)+" "+StyleDim.Render(t.DisplayName()))
			}
			printNewline()
			printNextStep("Use a preset", appName+" node update <id> --color green")
		},
	}
}
