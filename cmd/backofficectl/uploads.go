package main

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"text/tabwriter"

	"github.com/gabriel-vasile/mimetype"
	"github.com/spf13/cobra"

	"github.com/terra-clan/backoffice/internal/models"
	"github.com/terra-clan/backoffice/internal/upload"
	"github.com/terra-clan/backoffice/pkg/client"
)

var uploadOpts struct {
	ContextID string
	Existing  []string
	Multiple  bool
}

var uploadCmd = &cobra.Command{
	Use:   "upload <image|document> <context> <file>...",
	Short: "Upload assets",
	Long: `Upload sends files to the asset store for a context such as products
or careers. Existing URLs are kept ahead of the new ones in the result.`,
	Args: cobra.MinimumNArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		kind, assetCtx, paths := args[0], args[1], args[2:]

		files := make([]client.FilePart, 0, len(paths))
		for _, p := range paths {
			f, err := os.Open(p)
			if err != nil {
				return err
			}
			defer f.Close()

			ct := ""
			if m, err := mimetype.DetectFile(p); err == nil {
				ct = m.String()
			}
			files = append(files, client.FilePart{Name: filepath.Base(p), ContentType: ct, Content: f})
		}

		q := url.Values{}
		q.Set("multiple", strconv.FormatBool(uploadOpts.Multiple || len(files) > 1))
		if uploadOpts.ContextID != "" {
			q.Set("contextId", uploadOpts.ContextID)
		}
		for _, u := range uploadOpts.Existing {
			q.Add("existing", u)
		}

		path := "/api/v1/uploads/" + url.PathEscape(kind) + "/" + url.PathEscape(assetCtx)
		env, err := console.UploadQuery(cmd.Context(), path, q, "files", files)
		if err != nil {
			return err
		}

		var res upload.Result
		if err := env.DecodeData(&res); err != nil {
			return err
		}
		if cfg.GetBool(cfgKeyJSON) {
			return printJSON(cmd.OutOrStdout(), res)
		}

		tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
		fmt.Fprintln(tw, "FILE\tRESULT")
		for _, f := range res.Files {
			result := f.URL
			if f.Error != "" {
				result = "failed: " + f.Error
			}
			fmt.Fprintf(tw, "%s\t%s\n", f.Name, result)
		}
		if err := tw.Flush(); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), env.Message)
		return nil
	},
}

func init() {
	uploadCmd.Flags().StringVar(&uploadOpts.ContextID, "context-id", "", "id of the record the assets belong to")
	uploadCmd.Flags().StringSliceVar(&uploadOpts.Existing, "existing", nil, "URLs already attached")
	uploadCmd.Flags().BoolVar(&uploadOpts.Multiple, "multiple", false, "keep existing URLs and allow several files")
}

var recentContext string

var recentCmd = &cobra.Command{
	Use:   "recent",
	Short: "List recent uploads",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		q := url.Values{}
		if recentContext != "" {
			q.Set("context", recentContext)
		}
		env, err := console.Get(cmd.Context(), "/api/v1/uploads/recent", q)
		if err != nil {
			return err
		}

		var assets []models.UploadedAsset
		if err := env.DecodeData(&assets); err != nil {
			return err
		}
		if cfg.GetBool(cfgKeyJSON) {
			return printJSON(cmd.OutOrStdout(), assets)
		}

		tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
		fmt.Fprintln(tw, "UPLOADED\tTYPE\tCONTEXT\tURL")
		for _, a := range assets {
			fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", a.UploadedAt.Format("2006-01-02 15:04"), a.Type, a.Context, a.URL)
		}
		return tw.Flush()
	},
}

var forgetCmd = &cobra.Command{
	Use:   "delete <url>...",
	Short: "Delete uploaded assets",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := console.Delete(cmd.Context(), "/api/v1/uploads", map[string]any{"urls": args})
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), env.Message)
		return nil
	},
}

func init() {
	recentCmd.Flags().StringVar(&recentContext, "context", "", "only uploads of this context")
	recentCmd.AddCommand(forgetCmd)
}
