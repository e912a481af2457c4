package commands

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/jmylchreest/tablegrab/pkg/format"
	"github.com/jmylchreest/tablegrab/pkg/tablegrab"
)

var formatsCmd = &cobra.Command{
	Use:   "formats",
	Short: "List supported output formats",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "#\tFORMAT\tFILE\tDESCRIPTION")
		for i, f := range format.Formats() {
			fmt.Fprintf(w, "%d\t%s\t%s\t%s\n", i+1, f, tablegrab.DefaultOutputName(f), f.Description())
		}
		return w.Flush()
	},
}

func init() {
	rootCmd.AddCommand(formatsCmd)
}
