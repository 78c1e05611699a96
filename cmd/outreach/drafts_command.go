package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"outreach/internal/connectors"
	"outreach/internal/mailer"
	"outreach/internal/pipeline"
)

func newDraftsCommand(ctx *commandContext) *cobra.Command {
	var provider string
	cmd := &cobra.Command{
		Use:   "drafts <output.csv>",
		Short: "Compose one outreach draft per person in a stacked output table",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := ctx.config
			if provider != "" {
				cfg.DraftsProvider = provider
			}
			conn, closeConn, err := mailer.NewConnector(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			defer closeConn()

			composer, err := connectors.NewComposer(cfg, pipeline.NewNormalizer(ctx.rules))
			if err != nil {
				return err
			}
			drafts := connectors.NewDraftService(composer, cfg.RawMailDir, conn, ctx.logger)
			res, err := mailer.NewService(cfg, drafts, ctx.logger).DraftFile(cmd.Context(), args[0])
			fmt.Fprintf(cmd.OutOrStdout(), "drafts composed=%d delivered=%d skipped=%d archive=%s\n", res.Composed, res.Delivered, res.Skipped, cfg.RawMailDir)
			if err != nil {
				return err
			}
			if res.Interrupted {
				return cmd.Context().Err()
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&provider, "provider", "", "file, gmail or imap (default DRAFTS_PROVIDER)")
	return cmd
}
