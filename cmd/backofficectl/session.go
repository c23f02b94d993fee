package main

import (
	"bufio"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/terra-clan/backoffice/internal/models"
	"github.com/terra-clan/backoffice/internal/session"
)

var loginCmd = &cobra.Command{
	Use:   "login <username>",
	Short: "Sign the console in to the admin API",
	Long: `Sign the console in. The password is read from --password, then
BACKOFFICECTL_PASSWORD, then a line on stdin.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		password := cfg.GetString("password")
		if password == "" {
			fmt.Fprint(cmd.ErrOrStderr(), "Password: ")
			line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
			if err != nil && line == "" {
				return fmt.Errorf("read password: %w", err)
			}
			password = strings.TrimRight(line, "\r\n")
		}

		env, err := console.Post(cmd.Context(), "/auth/login", models.Credentials{Username: args[0], Password: password})
		if err != nil {
			return err
		}

		var admin models.Admin
		if err := env.DecodeData(&admin); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Logged in as %s (%s)\n", admin.Username, admin.Role)
		return nil
	},
}

func init() {
	loginCmd.Flags().String("password", "", "admin password")
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "End the console session",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if _, err := console.Post(cmd.Context(), "/auth/logout", nil); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "Logged out")
		return nil
	},
}

var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Show the signed-in operator",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := console.Get(cmd.Context(), "/auth/session", nil)
		if err != nil {
			return err
		}

		var st session.State
		if err := env.DecodeData(&st); err != nil {
			return err
		}
		if cfg.GetBool(cfgKeyJSON) {
			return printJSON(cmd.OutOrStdout(), st)
		}
		if !st.IsAuthenticated || st.Admin == nil {
			fmt.Fprintln(cmd.OutOrStdout(), "Not logged in")
			return nil
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s (%s, %s)\n", st.Admin.Username, st.Admin.Role, st.Admin.Status)
		return nil
	},
}
