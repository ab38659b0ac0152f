package cmd

import (
	"fmt"

	"github.com/alexedwards/argon2id"
	"github.com/spf13/cobra"
)

var hashPasswordCmd = &cobra.Command{
	Use:   "hash-password [password]",
	Short: "Generate an Argon2id hash for a password",
	Long: `Generate an Argon2id PHC hash of a password.

Useful for seeding a user row directly in the database or for
verifying what the register operation stores.

Example:
  wisp-gate hash-password "correct horse battery staple"
  # Output: $argon2id$v=19$m=65536,t=1,p=...

Security note: The password will appear in shell history.
Consider using an environment variable:
  wisp-gate hash-password "$MY_PASSWORD"`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		hash, err := argon2id.CreateHash(args[0], argon2id.DefaultParams)
		if err != nil {
			return fmt.Errorf("failed to hash password: %w", err)
		}
		fmt.Println(hash)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(hashPasswordCmd)
}
