package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/tavren/waydesk/internal/config"
	"github.com/tavren/waydesk/internal/logger"
)

var (
	// Version is set during build
	Version = "0.1.0-dev"

	configPath string
	logLevel   string

	rootCmd = &cobra.Command{
		Use:   "waydesk",
		Short: "Waydesk - Wayland desktop shell client",
		Long: `Waydesk draws the desktop chrome for a Wayland compositor speaking the
desktop_shell protocol: a background and panel per output, plus the
session lock screen with multi-user switching.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if configPath != "" {
				config.SetConfigPath(configPath)
			}
			if err := config.Init(); err != nil {
				// A broken config file should not keep the desktop from
				// coming up; run on defaults and say so.
				logger.Warnf("config unavailable, using defaults: %v", err)
			}
			level := config.Get().Logging.LogLevel
			if logLevel != "" {
				level = logLevel
			}
			if level != "" {
				logger.SetLevel(level)
			}
			return nil
		},
		RunE: runShell,
	}
)

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.Version = Version
	rootCmd.SetVersionTemplate(`{{with .Name}}{{printf "%s " .}}{{end}}{{printf "version %s\n" .Version}}`)

	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "path to config file")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level (debug, info, warn, error)")

	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(usersCmd)
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(versionCmd)
}

// Exit with error message
func exitError(format string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, "Error: "+format+"\n", args...)
	os.Exit(1)
}
