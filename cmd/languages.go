package cmd

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/unicostudio/b-ai-localization/internal/langmeta"
)

var languagesCmd = &cobra.Command{
	Use:   "languages",
	Short: "List supported target languages",
	Long: `List every supported target language with its export code.

The code selects the language on the command line (-t TR) and names the
exported file (strings_tr.json).`,
	RunE: func(cmd *cobra.Command, args []string) error {
		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "CODE\tLANGUAGE")
		for _, pair := range langmeta.All() {
			fmt.Fprintf(w, "%s\t%s\n", pair[0], pair[1])
		}
		return w.Flush()
	},
}

func init() {
	rootCmd.AddCommand(languagesCmd)
}
