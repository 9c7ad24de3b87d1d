package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/phanxgames/fx"
)

func newValidateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate <script>",
		Short: "Check a script without running it",
		Args:  cobra.ExactArgs(1),
		RunE:  runValidate,
	}
}

func runValidate(cmd *cobra.Command, args []string) error {
	script, err := loadScript(args[0])
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s %s: %d nodes, %d steps\n",
		styles.ok.Render("ok"), args[0], len(script.Nodes), len(script.Steps))
	return nil
}

func loadScript(path string) (*fx.Script, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read script: %w", err)
	}
	return fx.LoadScript(data)
}
