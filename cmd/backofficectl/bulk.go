package main

import (
	"bufio"
	"fmt"
	"net/url"
	"strings"

	"github.com/spf13/cobra"

	"github.com/terra-clan/backoffice/internal/bulk"
)

type bulkBody struct {
	Action string   `json:"action"`
	IDs    []string `json:"ids"`
}

type bulkPreview struct {
	Action      string `json:"action"`
	Count       int    `json:"count"`
	Message     string `json:"message"`
	Destructive bool   `json:"destructive"`
}

var bulkYes bool

var bulkCmd = &cobra.Command{
	Use:   "bulk <resource> <action> <id>...",
	Short: "Apply an action to many records",
	Long: `Bulk previews the action, asks for confirmation and then applies it
to every id. Use --yes to skip the prompt.`,
	Args: cobra.MinimumNArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		base := "/api/v1/" + url.PathEscape(args[0]) + "/bulk"
		body := bulkBody{Action: args[1], IDs: args[2:]}

		if !bulkYes {
			env, err := console.Post(cmd.Context(), base+"/preview", body)
			if err != nil {
				return err
			}
			var preview bulkPreview
			if err := env.DecodeData(&preview); err != nil {
				return err
			}

			ok, err := confirm(cmd, preview.Message)
			if err != nil {
				return err
			}
			if !ok {
				fmt.Fprintln(cmd.OutOrStdout(), "Cancelled")
				return nil
			}
		}

		env, err := console.Post(cmd.Context(), base, body)
		if err != nil {
			return err
		}

		var outcome bulk.Outcome
		if err := env.DecodeData(&outcome); err != nil {
			return err
		}
		if cfg.GetBool(cfgKeyJSON) {
			return printJSON(cmd.OutOrStdout(), outcome)
		}
		fmt.Fprintln(cmd.OutOrStdout(), outcome.Message)
		return nil
	},
}

func init() {
	bulkCmd.Flags().BoolVarP(&bulkYes, "yes", "y", false, "skip the confirmation prompt")
}

// confirm asks a yes/no question on the command's streams
func confirm(cmd *cobra.Command, question string) (bool, error) {
	fmt.Fprintf(cmd.ErrOrStderr(), "%s [y/N] ", question)
	line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
	if err != nil && line == "" {
		return false, nil
	}
	switch strings.ToLower(strings.TrimSpace(line)) {
	case "y", "yes":
		return true, nil
	}
	return false, nil
}
