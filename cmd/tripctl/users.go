package main

import (
	"context"
	"io"
	"net/http"
	"os"
	"strconv"

	"github.com/spf13/cobra"
)

type upsertUserOptions struct {
	UserID   string `json:"userId,omitempty"`
	Email    string `json:"email"`
	Name     string `json:"name,omitempty"`
	ImageURL string `json:"imageUrl,omitempty"`
	Status   string `json:"status,omitempty"`
}

func runUpsertUser(ctx context.Context, c *apiClient, opts upsertUserOptions, out io.Writer) error {
	data, err := c.do(ctx, http.MethodPost, "/api/users", nil, opts)
	if err != nil {
		return err
	}
	return printJSON(out, data)
}

func init() {
	usersCmd := &cobra.Command{Use: "users", Short: "User operations"}

	var opts upsertUserOptions
	upsertCmd := &cobra.Command{
		Use:   "upsert",
		Short: "Create or refresh a user",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runUpsertUser(cmd.Context(), newAPIClient(apiFlag, tokenFlag), opts, os.Stdout)
		},
	}
	upsertCmd.Flags().StringVarP(&opts.UserID, "user", "u", "", "User ID (taken from the token when omitted)")
	upsertCmd.Flags().StringVarP(&opts.Email, "email", "e", "", "User email (required)")
	upsertCmd.Flags().StringVarP(&opts.Name, "name", "n", "", "Full name")
	upsertCmd.Flags().StringVar(&opts.ImageURL, "image", "", "Avatar URL")
	upsertCmd.Flags().StringVar(&opts.Status, "status", "", "user or admin (admins only)")
	_ = upsertCmd.MarkFlagRequired("email")
	usersCmd.AddCommand(upsertCmd)

	usersCmd.AddCommand(&cobra.Command{
		Use:   "get USER_ID",
		Short: "Get user by ID",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := newAPIClient(apiFlag, tokenFlag).do(cmd.Context(), http.MethodGet, "/api/users/"+args[0], nil, nil)
			if err != nil {
				return err
			}
			return printJSON(os.Stdout, data)
		},
	})

	var limit, offset int
	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List users (admin)",
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := newAPIClient(apiFlag, tokenFlag).do(cmd.Context(), http.MethodGet, "/api/admin/users",
				map[string]string{"limit": strconv.Itoa(limit), "offset": strconv.Itoa(offset)}, nil)
			if err != nil {
				return err
			}
			return printJSON(os.Stdout, data)
		},
	}
	listCmd.Flags().IntVarP(&limit, "limit", "l", 20, "Page size")
	listCmd.Flags().IntVarP(&offset, "offset", "o", 0, "Page offset")
	usersCmd.AddCommand(listCmd)

	rootCmd.AddCommand(usersCmd)
}
