package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/codemind-go/internal/diff"
)

var diffStat bool

var diffCmd = &cobra.Command{
	Use:   "diff <original> <revised>",
	Short: "Print the line diff between two files.",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		original, err := os.ReadFile(args[0])
		if err != nil {
			return err
		}
		revised, err := os.ReadFile(args[1])
		if err != nil {
			return err
		}
		if diff.TooLarge(string(original), string(revised)) {
			fmt.Fprintln(cmd.ErrOrStderr(), "warning: inputs are large, diff may be slow")
		}

		lines := diff.Compute(string(original), string(revised))
		if diffStat {
			added, removed := diff.Stats(lines)
			fmt.Fprintf(cmd.OutOrStdout(), "%d insertions(+), %d deletions(-)\n", added, removed)
			return nil
		}
		if len(lines) > 0 {
			fmt.Fprintln(cmd.OutOrStdout(), diff.Render(lines))
		}
		return nil
	},
}

func init() {
	diffCmd.Flags().BoolVar(&diffStat, "stat", false, "Print only insertion and deletion counts")
}
