package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"github.com/sushihentaime/companyblog/internal/client"
)

func companiesCmd(newClient func() *client.Client) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "companies",
		Short: "Manage companies",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List companies",
		RunE: func(cmd *cobra.Command, _ []string) error {
			companies, err := newClient().Companies().Query(cmd.Context())
			if err != nil {
				return fmt.Errorf("list companies: %w", err)
			}

			if len(companies) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "no companies found")
				return nil
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tNAME")
			for _, c := range companies {
				fmt.Fprintf(tw, "%d\t%s\n", c.ID, c.Name)
			}
			return tw.Flush()
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "create <name>",
		Short: "Create a company",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := newClient().Companies().Create(cmd.Context(), args[0])
			if err != nil {
				return fmt.Errorf("create company: %w", err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "company %d created\n", c.ID)
			return nil
		},
	})

	return cmd
}
