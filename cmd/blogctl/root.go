package main

import (
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/sushihentaime/companyblog/internal/client"
)

// newRootCmd builds the command tree. Flags can also be set through
// BLOGCTL_API_URL, BLOGCTL_TOKEN and BLOGCTL_TIMEOUT.
func newRootCmd() *cobra.Command {
	v := viper.New()
	v.SetEnvPrefix("blogctl")
	v.AutomaticEnv()

	root := &cobra.Command{
		Use:           "blogctl",
		Short:         "Manage company blogs through the companyblog API",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.PersistentFlags().String("api-url", "http://localhost:4000", "base URL of the companyblog API")
	root.PersistentFlags().String("token", "", "access token")
	root.PersistentFlags().Duration("timeout", 30*time.Second, "HTTP timeout")
	_ = v.BindPFlag("api_url", root.PersistentFlags().Lookup("api-url"))
	_ = v.BindPFlag("token", root.PersistentFlags().Lookup("token"))
	_ = v.BindPFlag("timeout", root.PersistentFlags().Lookup("timeout"))

	newClient := func() *client.Client {
		return client.New(v.GetString("api_url"), v.GetString("token"), v.GetDuration("timeout"))
	}

	root.AddCommand(loginCmd(newClient))
	root.AddCommand(blogsCmd(newClient))
	root.AddCommand(companiesCmd(newClient))

	return root
}

func loginCmd(newClient func() *client.Client) *cobra.Command {
	var password string

	cmd := &cobra.Command{
		Use:   "login <username>",
		Short: "Log in and print an access token",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if password == "" {
				return fmt.Errorf("password is required")
			}

			token, err := newClient().Login(cmd.Context(), args[0], password)
			if err != nil {
				return fmt.Errorf("login: %w", err)
			}

			fmt.Fprintln(cmd.OutOrStdout(), token.AccessTokenPlain)
			return nil
		},
	}
	cmd.Flags().StringVarP(&password, "password", "p", "", "account password")

	return cmd
}

func parseID(arg string) (int, error) {
	id, err := strconv.Atoi(arg)
	if err != nil || id < 1 {
		return 0, fmt.Errorf("invalid id %q", arg)
	}
	return id, nil
}
