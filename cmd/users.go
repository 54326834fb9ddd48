package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tavren/waydesk/internal/accounts"
)

var usersCmd = &cobra.Command{
	Use:   "users",
	Short: "List accounts offered on the lock screen",
	Run: func(cmd *cobra.Command, args []string) {
		users, err := accounts.List()
		if err != nil {
			exitError("failed to read accounts: %v", err)
		}
		for _, u := range users {
			if u.Selectable() {
				fmt.Printf("%s (uid %d)\n", u.Name, u.UID)
			}
		}
	},
}
