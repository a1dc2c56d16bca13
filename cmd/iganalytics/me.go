package main

import (
	"context"

	"github.com/spf13/cobra"
)

var rawResponse bool

// meCmd represents the me command
var meCmd = &cobra.Command{
	Use:   "me",
	Short: "Show the account the token belongs to",
	Long: `Show the username and id of the account the access token belongs to.

With --raw the response of GET /me is printed as received: status code,
headers and body. Use it to debug token problems.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd, nil)
		if err != nil {
			return err
		}
		return runMe(cmd.Context(), a, rawResponse)
	},
}

func init() {
	rootCmd.AddCommand(meCmd)
	meCmd.Flags().BoolVar(&rawResponse, "raw", false, "print status, headers and body of the response")
}

func runMe(ctx context.Context, a *app, raw bool) error {
	if raw {
		resp, err := a.client.Raw(ctx)
		if err != nil {
			return a.apiFailure("fetching user info", err)
		}
		return a.out.Raw(resp)
	}

	account, err := a.client.GetAccount(ctx)
	if err != nil {
		return a.apiFailure("fetching user info", err)
	}
	return a.out.Account(account)
}
