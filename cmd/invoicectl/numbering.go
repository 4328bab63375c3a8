package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/MrJamesThe3rd/facturador/internal/invoice"
)

func (c *cli) numberingCmd() *cobra.Command {
	var pos string

	cmd := &cobra.Command{
		Use:   "numbering",
		Short: "Inspect or advance invoice number counters",
	}

	cmd.PersistentFlags().StringVar(&pos, "pos", invoice.DefaultPOS, "point of sale")

	cmd.AddCommand(
		&cobra.Command{
			Use:   "peek",
			Short: "Print the next number without consuming it",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				svc, err := c.services(cmd.Context())
				if err != nil {
					return err
				}
				defer svc.Close()

				next, err := svc.Numbering.PeekNext(cmd.Context(), c.tenant, pos)
				if err != nil {
					return err
				}

				fmt.Fprintf(cmd.OutOrStdout(), "%s-%s\n", pos, next)

				return nil
			},
		},
		&cobra.Command{
			Use:   "allocate",
			Short: "Consume and print the next number",
			Long: "Consume and print the next number. The number is gone for good: use it\n" +
				"only to skip a number already used outside this service.",
			Args: cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				svc, err := c.services(cmd.Context())
				if err != nil {
					return err
				}
				defer svc.Close()

				next, err := svc.Numbering.AllocateNext(cmd.Context(), c.tenant, pos)
				if err != nil {
					return err
				}

				fmt.Fprintf(cmd.OutOrStdout(), "%s-%s\n", pos, next)

				return nil
			},
		},
	)

	return cmd
}
