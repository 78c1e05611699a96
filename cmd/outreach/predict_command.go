package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"outreach/internal/config"
	"outreach/internal/pipeline"
)

func newPredictCommand(ctx *commandContext) *cobra.Command {
	var pattern, domain string
	cmd := &cobra.Command{
		Use:   "predict <name>",
		Short: "Normalize a name and predict its address from the institution convention",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			t, err := ctx.target()
			if err != nil {
				return err
			}
			if pattern != "" {
				if t.pattern, err = pipeline.ParseEmailPattern(pattern); err != nil {
					return err
				}
			}
			if domain != "" {
				t.domain = strings.ToLower(strings.Trim(strings.TrimSpace(domain), "@"))
				if err := config.ValidateDomain(t.domain); err != nil {
					return err
				}
			}
			if t.pattern == "" || t.domain == "" {
				return fmt.Errorf("an email pattern and domain are required (flags, EMAIL_PATTERN/EMAIL_DOMAIN or --institution)")
			}

			name, err := pipeline.NewNormalizer(ctx.rules).Normalize(strings.Join(args, " "))
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%s\t%s\n", name.Display, pipeline.Predict(name, t.pattern, t.domain))
			return nil
		},
	}
	cmd.Flags().StringVar(&pattern, "pattern", "", "initial_last, first.last, first.last.lower, first_last or last")
	cmd.Flags().StringVar(&domain, "domain", "", "Email domain")
	return cmd
}
