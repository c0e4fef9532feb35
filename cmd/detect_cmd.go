package cmd

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/dzjyyds666/hyconf/parse"
	"github.com/dzjyyds666/hyconf/pkg"
)

var detectInput string

var detectCmd = &cobra.Command{
	Use:   "detect",
	Short: "show how a document is split into format blocks",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if len(detectInput) == 0 {
			return fmt.Errorf("no input file path")
		}
		content, err := pkg.ReadInput(detectInput)
		if err != nil {
			return err
		}
		describe(cmd.OutOrStdout(), content)
		return nil
	},
}

func init() {
	detectCmd.Flags().StringVarP(&detectInput, "input", "i", "", "input file path, - for stdin")
}

func describe(w io.Writer, content string) {
	for _, seg := range parse.SplitSegments(content) {
		fmt.Fprintf(w, "%d-%d\t%s\n", seg.StartLine, seg.EndLine, seg.Format)
	}
	fmt.Fprintf(w, "format\t%s\n", parse.DetectFormat(content))
}
