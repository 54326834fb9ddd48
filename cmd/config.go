package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tavren/waydesk/internal/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show the effective configuration",
	Run: func(cmd *cobra.Command, args []string) {
		cfg := config.Get()
		fmt.Printf("config file: %s\n", config.GetConfigPath())
		fmt.Printf("locking: %v\n", cfg.Shell.Locking)
		fmt.Printf("default user: %s\n", cfg.Shell.DefaultUser)
		fmt.Printf("panel color: %s\n", cfg.Shell.PanelColor)
		fmt.Printf("background: image=%q color=%s type=%s\n",
			cfg.Shell.BackgroundImage, cfg.Shell.BackgroundColor, cfg.Shell.BackgroundType)
		fmt.Printf("pam service: %q\n", cfg.Shell.PamService)
		fmt.Printf("launchers: %d\n", len(cfg.Launchers))
		for _, l := range cfg.Launchers {
			user := l.User
			if user == "" {
				user = "*"
			}
			fmt.Printf("  [%s] %s\n", user, l.Path)
		}
	},
}
