package main

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"github.com/sushihentaime/companyblog/internal/blogservice"
	"github.com/sushihentaime/companyblog/internal/client"
	"github.com/sushihentaime/companyblog/internal/companyservice"
)

func blogsCmd(newClient func() *client.Client) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "blogs",
		Short: "Manage blogs",
	}

	cmd.AddCommand(blogListCmd(newClient))
	cmd.AddCommand(blogGetCmd(newClient))
	cmd.AddCommand(blogCreateCmd(newClient))
	cmd.AddCommand(blogUpdateCmd(newClient))
	cmd.AddCommand(blogDeleteCmd(newClient))

	return cmd
}

func blogListCmd(newClient func() *client.Client) *cobra.Command {
	var (
		limit, offset int
		search        string
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List blogs",
		RunE: func(cmd *cobra.Command, _ []string) error {
			blogs := newClient().Blogs()

			var (
				list []blogservice.Blog
				err  error
			)
			if search != "" {
				list, err = blogs.Search(cmd.Context(), search, limit, offset)
			} else {
				list, err = blogs.List(cmd.Context(), limit, offset)
			}
			if err != nil {
				return fmt.Errorf("list blogs: %w", err)
			}

			if len(list) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "no blogs found")
				return nil
			}

			return printBlogs(cmd.OutOrStdout(), list...)
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 10, "maximum number of blogs")
	cmd.Flags().IntVar(&offset, "offset", 0, "number of blogs to skip")
	cmd.Flags().StringVarP(&search, "search", "q", "", "only blogs whose name contains this")

	return cmd
}

func blogGetCmd(newClient func() *client.Client) *cobra.Command {
	return &cobra.Command{
		Use:   "get <id>",
		Short: "Show a blog",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}

			blog, err := newClient().Blogs().Find(cmd.Context(), id)
			if err != nil {
				return fmt.Errorf("get blog %d: %w", id, err)
			}

			return printBlogs(cmd.OutOrStdout(), *blog)
		},
	}
}

func blogCreateCmd(newClient func() *client.Client) *cobra.Command {
	var (
		name, handle string
		companyID    int
	)

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a blog",
		RunE: func(cmd *cobra.Command, _ []string) error {
			blog := &blogservice.Blog{Name: name, Handle: handle}
			if companyID > 0 {
				blog.Company = &companyservice.Company{ID: companyID}
			}

			created, err := newClient().Blogs().Create(cmd.Context(), blog)
			if err != nil {
				return fmt.Errorf("create blog: %w", err)
			}

			return printBlogs(cmd.OutOrStdout(), *created)
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "blog name")
	cmd.Flags().StringVar(&handle, "handle", "", "blog handle")
	cmd.Flags().IntVar(&companyID, "company", 0, "owning company id")
	_ = cmd.MarkFlagRequired("name")
	_ = cmd.MarkFlagRequired("handle")

	return cmd
}

func blogUpdateCmd(newClient func() *client.Client) *cobra.Command {
	var (
		name, handle string
		companyID    int
	)

	cmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Change the fields given as flags",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}

			blogs := newClient().Blogs()

			blog, err := blogs.Find(cmd.Context(), id)
			if err != nil {
				return fmt.Errorf("get blog %d: %w", id, err)
			}

			if cmd.Flags().Changed("name") {
				blog.Name = name
			}
			if cmd.Flags().Changed("handle") {
				blog.Handle = handle
			}
			if cmd.Flags().Changed("company") {
				blog.Company = &companyservice.Company{ID: companyID}
			}

			updated, err := blogs.Update(cmd.Context(), blog)
			if err != nil {
				return fmt.Errorf("update blog %d: %w", id, err)
			}

			return printBlogs(cmd.OutOrStdout(), *updated)
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "blog name")
	cmd.Flags().StringVar(&handle, "handle", "", "blog handle")
	cmd.Flags().IntVar(&companyID, "company", 0, "owning company id")

	return cmd
}

func blogDeleteCmd(newClient func() *client.Client) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a blog",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}

			if err := newClient().Blogs().Delete(cmd.Context(), id); err != nil {
				return fmt.Errorf("delete blog %d: %w", id, err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "blog %d deleted\n", id)
			return nil
		},
	}
}

func printBlogs(out io.Writer, blogs ...blogservice.Blog) error {
	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tHANDLE\tCOMPANY")

	for _, b := range blogs {
		id, company := "-", "-"
		if b.ID != nil {
			id = fmt.Sprint(*b.ID)
		}
		if b.Company != nil {
			company = fmt.Sprint(b.Company.ID)
			if b.Company.Name != "" {
				company = fmt.Sprintf("%d (%s)", b.Company.ID, b.Company.Name)
			}
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", id, b.Name, b.Handle, company)
	}

	return tw.Flush()
}
