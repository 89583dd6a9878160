package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"poemas-versos/cmd/api/auth"
)

var tokenAdmin bool

// tokenCmd issues an access token signed with JWT_SECRET
var tokenCmd = &cobra.Command{
	Use:   "token <user_code>",
	Short: "Issue an API access token",
	Long: `Sign a JWT for user_code with JWT_SECRET / JWT_ISSUER / JWT_TTL from the
environment. Use --admin for moderation endpoints.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		tokens, err := auth.NewJWTManagerFromEnv()
		if err != nil {
			return err
		}
		role := auth.RoleUser
		if tokenAdmin {
			role = auth.RoleAdmin
		}
		token, err := tokens.Sign(args[0], role)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), token)
		return nil
	},
}

func init() {
	tokenCmd.Flags().BoolVar(&tokenAdmin, "admin", false, "Issue an admin token")
}
