package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"outreach/internal/delivery"
)

func newUploadCommand(ctx *commandContext) *cobra.Command {
	var remoteName string
	cmd := &cobra.Command{
		Use:   "upload <file>",
		Short: "Copy an output table to the SFTP drop",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			remote, err := delivery.Upload(cmd.Context(), delivery.SFTPConfigFrom(ctx.config), args[0], remoteName)
			if err != nil {
				return err
			}
			ctx.logger.Info("upload complete", "local", args[0], "remote", remote)
			fmt.Fprintf(cmd.OutOrStdout(), "uploaded %s\n", remote)
			return nil
		},
	}
	cmd.Flags().StringVar(&remoteName, "name", "", "Remote file name (default local base name)")
	return cmd
}
