package main

import (
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/MrJamesThe3rd/facturador/internal/stock"
)

func (c *cli) stockCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stock",
		Short: "Adjust stock and read the movement history",
	}

	cmd.AddCommand(c.stockAdjustCmd(), c.stockHistoryCmd())

	return cmd
}

func (c *cli) stockAdjustCmd() *cobra.Command {
	var (
		product string
		delta   int64
		typ     string
		note    string
	)

	cmd := &cobra.Command{
		Use:   "adjust",
		Short: "Apply a stock change and record its movement",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			productID, err := uuid.Parse(product)
			if err != nil {
				return fmt.Errorf("invalid --product: %w", err)
			}

			svc, err := c.services(cmd.Context())
			if err != nil {
				return err
			}
			defer svc.Close()

			mv, err := svc.Stock.Adjust(cmd.Context(), c.tenant, stock.AdjustParams{
				ProductID: productID,
				Delta:     delta,
				Type:      stock.MovementType(typ),
				Note:      note,
			})
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "%s %+d -> %d\n", mv.ProductSKU, mv.Change, mv.NewStock)

			return nil
		},
	}

	cmd.Flags().StringVar(&product, "product", "", "product id")
	cmd.Flags().Int64Var(&delta, "delta", 0, "signed quantity to apply")
	cmd.Flags().StringVar(&typ, "type", string(stock.MovementManualAdjustment), "movement type: sale, purchase or manual_adjustment")
	cmd.Flags().StringVar(&note, "note", "", "free-form note stored with the movement")

	_ = cmd.MarkFlagRequired("product")
	_ = cmd.MarkFlagRequired("delta")

	return cmd
}

func (c *cli) stockHistoryCmd() *cobra.Command {
	var (
		product string
		limit   int
	)

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List stock movements, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			filter := stock.MovementFilter{Limit: limit}

			if product != "" {
				id, err := uuid.Parse(product)
				if err != nil {
					return fmt.Errorf("invalid --product: %w", err)
				}

				filter.ProductID = &id
			}

			svc, err := c.services(cmd.Context())
			if err != nil {
				return err
			}
			defer svc.Close()

			ms, err := svc.Stock.History(cmd.Context(), c.tenant, filter)
			if err != nil {
				return err
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "WHEN\tSKU\tTYPE\tCHANGE\tSTOCK\tNOTE")

			for _, m := range ms {
				fmt.Fprintf(tw, "%s\t%s\t%s\t%+d\t%d\t%s\n",
					m.CreatedAt.Format(time.DateTime), m.ProductSKU, m.Type, m.Change, m.NewStock, m.Note)
			}

			return tw.Flush()
		},
	}

	cmd.Flags().StringVar(&product, "product", "", "only movements of this product id")
	cmd.Flags().IntVar(&limit, "limit", 50, "maximum number of movements")

	return cmd
}
