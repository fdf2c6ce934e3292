package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"arbiter/internal/config"
	"arbiter/internal/rulepack"
)

var packsCmd = &cobra.Command{
	Use:   "packs",
	Short: "List available compliance rule packs",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(nil)
		if err != nil {
			return err
		}
		reg, err := rulepack.Load(cfg.RulePackDir)
		if err != nil {
			return fmt.Errorf("loading rule packs: %w", err)
		}
		for _, name := range reg.Names() {
			p := reg.Get(name)
			marker := " "
			if name == cfg.RulePack {
				marker = "*"
			}
			fmt.Fprintf(os.Stdout, "%s %s (version %s)\n    %s\n", marker, p.Name, p.Version, p.Description)
		}
		return nil
	},
}
