package main

import (
	"fmt"
	"net/url"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/terra-clan/backoffice/internal/api"
	"github.com/terra-clan/backoffice/internal/table"
)

var resourcesCmd = &cobra.Command{
	Use:   "resources",
	Short: "List the resources the console manages",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := console.Get(cmd.Context(), "/api/v1/resources", nil)
		if err != nil {
			return err
		}

		var resources []api.ResourceInfo
		if err := env.DecodeData(&resources); err != nil {
			return err
		}
		if cfg.GetBool(cfgKeyJSON) {
			return printJSON(cmd.OutOrStdout(), resources)
		}

		tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
		fmt.Fprintln(tw, "NAME\tTITLE\tBULK ACTIONS")
		for _, r := range resources {
			actions := "-"
			if len(r.BulkActions) > 0 {
				actions = fmt.Sprint(r.BulkActions)
			}
			fmt.Fprintf(tw, "%s\t%s\t%s\n", r.Name, r.Title, actions)
		}
		return tw.Flush()
	},
}

var listOpts listOptions

var listCmd = &cobra.Command{
	Use:   "list <resource>",
	Short: "List one page of a resource",
	Long: `List renders one page of a resource's table view.

Filters are key=value pairs sent as column filters, for example
--filter isSuspended=true. Sorting defaults to the view's preset.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		q, err := listOpts.query()
		if err != nil {
			return err
		}

		env, err := console.Get(cmd.Context(), "/api/v1/views/"+url.PathEscape(args[0]), q)
		if err != nil {
			return err
		}

		var view table.View[map[string]any]
		if err := env.DecodeData(&view); err != nil {
			return err
		}
		if cfg.GetBool(cfgKeyJSON) {
			return printJSON(cmd.OutOrStdout(), view)
		}
		return renderView(cmd.OutOrStdout(), view)
	},
}

func init() {
	listCmd.Flags().IntVar(&listOpts.Page, "page", 1, "page number, 1-based")
	listCmd.Flags().IntVar(&listOpts.Limit, "limit", 0, "page size (default: the view's page size)")
	listCmd.Flags().StringVar(&listOpts.Search, "search", "", "global search")
	listCmd.Flags().StringVar(&listOpts.Sort, "sort", "", "sort column")
	listCmd.Flags().StringVar(&listOpts.Order, "order", "asc", "sort order: asc or desc")
	listCmd.Flags().StringArrayVar(&listOpts.Filters, "filter", nil, "column filter key=value (repeatable)")
	listCmd.Flags().StringSliceVar(&listOpts.Hidden, "hide", nil, "columns to hide")
}

var getCmd = &cobra.Command{
	Use:   "get <resource> <id>",
	Short: "Show one record",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := console.Get(cmd.Context(), "/api/v1/"+url.PathEscape(args[0])+"/"+url.PathEscape(args[1]), nil)
		if err != nil {
			return err
		}

		var record map[string]any
		if err := env.DecodeData(&record); err != nil {
			return err
		}
		return printJSON(cmd.OutOrStdout(), record)
	},
}

var statsCmd = &cobra.Command{
	Use:   "stats <resource>",
	Short: "Show a resource's statistics",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := console.Get(cmd.Context(), "/api/v1/"+url.PathEscape(args[0])+"/stats", nil)
		if err != nil {
			return err
		}

		var stats map[string]any
		if err := env.DecodeData(&stats); err != nil {
			return err
		}
		return printJSON(cmd.OutOrStdout(), stats)
	},
}
