package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sn2234/file-monitor/internal/config"
)

func newVerifyCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "verify",
		Short: "Check the config file and that every configured folder exists",
		Long: `Verify loads the locations config and checks every input, processing,
completed, failed and current_dir path. All missing paths are reported,
not only the first one.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configFile)
			if err != nil {
				return err
			}
			if err := config.VerifyPaths(cfg, logger); err != nil {
				return fmt.Errorf("verify paths: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "ok: %d location(s), poll interval %s\n",
				len(cfg.Locations), cfg.PollInterval())
			return nil
		},
	}
}
