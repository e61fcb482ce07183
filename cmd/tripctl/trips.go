package main

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"strconv"

	"github.com/spf13/cobra"
)

type createOptions struct {
	Country      string   `json:"country"`
	NumberOfDays int      `json:"numberOfDays"`
	TravelStyle  string   `json:"travelStyle"`
	Interests    []string `json:"interests"`
	Budget       string   `json:"budget"`
	GroupType    string   `json:"groupType"`
	UserID       string   `json:"userId,omitempty"`
}

func runCreate(ctx context.Context, c *apiClient, opts createOptions, out io.Writer) error {
	data, err := c.do(ctx, http.MethodPost, "/api/create-trip", nil, opts)
	if err != nil {
		return err
	}
	return printJSON(out, data)
}

func runGet(ctx context.Context, c *apiClient, tripID string, out io.Writer) error {
	data, err := c.do(ctx, http.MethodGet, "/api/trips/"+tripID, nil, nil)
	if err != nil {
		return err
	}
	return printJSON(out, data)
}

func runList(ctx context.Context, c *apiClient, userID string, limit, offset int, out io.Writer) error {
	data, err := c.do(ctx, http.MethodGet, "/api/trips", map[string]string{
		"userId": userID,
		"limit":  strconv.Itoa(limit),
		"offset": strconv.Itoa(offset),
	}, nil)
	if err != nil {
		return err
	}
	return printJSON(out, data)
}

func runSearch(ctx context.Context, c *apiClient, query string, limit int, out io.Writer) error {
	if query == "" {
		return fmt.Errorf("query cannot be empty")
	}
	data, err := c.do(ctx, http.MethodGet, "/api/admin/trips/search", map[string]string{
		"q":     query,
		"limit": strconv.Itoa(limit),
	}, nil)
	if err != nil {
		return err
	}
	return printJSON(out, data)
}

func runDownload(ctx context.Context, c *apiClient, path string, query map[string]string, out io.Writer) error {
	data, err := c.do(ctx, http.MethodGet, path, query, nil)
	if err != nil {
		return err
	}
	_, err = out.Write(data)
	return err
}

func runReindex(ctx context.Context, c *apiClient, out io.Writer) error {
	data, err := c.do(ctx, http.MethodPost, "/api/admin/trips/reindex", nil, nil)
	if err != nil {
		return err
	}
	return printJSON(out, data)
}

func runDelete(ctx context.Context, c *apiClient, tripID string, out io.Writer) error {
	if _, err := c.do(ctx, http.MethodDelete, "/api/admin/trips/"+tripID, nil, nil); err != nil {
		return err
	}
	_, err := fmt.Fprintf(out, "deleted %s\n", tripID)
	return err
}

// outputFile opens path for writing, or stdout for "" and "-".
func outputFile(path string) (io.WriteCloser, error) {
	if path == "" || path == "-" {
		return nopCloser{os.Stdout}, nil
	}
	return os.Create(path)
}

type nopCloser struct{ io.Writer }

func (nopCloser) Close() error { return nil }

func init() {
	var opts createOptions
	createCmd := &cobra.Command{
		Use:   "create",
		Short: "Generate a trip",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCreate(cmd.Context(), newAPIClient(apiFlag, tokenFlag), opts, os.Stdout)
		},
	}
	createCmd.Flags().StringVar(&opts.Country, "country", "", "Destination country (required)")
	createCmd.Flags().IntVarP(&opts.NumberOfDays, "days", "d", 3, "Number of days (1-10)")
	createCmd.Flags().StringVar(&opts.TravelStyle, "style", "", "Travel style (required)")
	createCmd.Flags().StringSliceVarP(&opts.Interests, "interests", "i", nil, "Interests, comma separated (required)")
	createCmd.Flags().StringVar(&opts.Budget, "budget", "", "Budget (required)")
	createCmd.Flags().StringVar(&opts.GroupType, "group", "", "Group type (required)")
	createCmd.Flags().StringVarP(&opts.UserID, "user", "u", "", "User ID (taken from the token when omitted)")
	for _, f := range []string{"country", "style", "interests", "budget", "group"} {
		_ = createCmd.MarkFlagRequired(f)
	}
	rootCmd.AddCommand(createCmd)

	rootCmd.AddCommand(&cobra.Command{
		Use:   "get TRIP_ID",
		Short: "Show one trip",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGet(cmd.Context(), newAPIClient(apiFlag, tokenFlag), args[0], os.Stdout)
		},
	})

	var listUser string
	var listLimit, listOffset int
	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List trips, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runList(cmd.Context(), newAPIClient(apiFlag, tokenFlag), listUser, listLimit, listOffset, os.Stdout)
		},
	}
	listCmd.Flags().StringVarP(&listUser, "user", "u", "", "Only trips of this user")
	listCmd.Flags().IntVarP(&listLimit, "limit", "l", 20, "Page size")
	listCmd.Flags().IntVarP(&listOffset, "offset", "o", 0, "Page offset")
	rootCmd.AddCommand(listCmd)

	var calStart, calOut string
	calCmd := &cobra.Command{
		Use:   "calendar TRIP_ID",
		Short: "Download the trip as an iCalendar file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			w, err := outputFile(calOut)
			if err != nil {
				return err
			}
			defer w.Close()
			return runDownload(cmd.Context(), newAPIClient(apiFlag, tokenFlag),
				"/api/trips/"+args[0]+"/calendar.ics", map[string]string{"start": calStart}, w)
		},
	}
	calCmd.Flags().StringVar(&calStart, "start", "", "First day, YYYY-MM-DD (default today)")
	calCmd.Flags().StringVarP(&calOut, "out", "o", "", "Output file (default stdout)")
	rootCmd.AddCommand(calCmd)

	var query string
	var searchLimit int
	searchCmd := &cobra.Command{
		Use:   "search",
		Short: "Keyword search over trips (admin)",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSearch(cmd.Context(), newAPIClient(apiFlag, tokenFlag), query, searchLimit, os.Stdout)
		},
	}
	searchCmd.Flags().StringVarP(&query, "query", "q", "", "Search query text (required)")
	searchCmd.Flags().IntVarP(&searchLimit, "limit", "k", 10, "Number of results")
	_ = searchCmd.MarkFlagRequired("query")
	rootCmd.AddCommand(searchCmd)

	var exportUser, exportOut string
	exportCmd := &cobra.Command{
		Use:   "export",
		Short: "Export trips as CSV (admin)",
		RunE: func(cmd *cobra.Command, args []string) error {
			w, err := outputFile(exportOut)
			if err != nil {
				return err
			}
			defer w.Close()
			return runDownload(cmd.Context(), newAPIClient(apiFlag, tokenFlag),
				"/api/admin/trips/export.csv", map[string]string{"userId": exportUser}, w)
		},
	}
	exportCmd.Flags().StringVarP(&exportUser, "user", "u", "", "Only trips of this user")
	exportCmd.Flags().StringVarP(&exportOut, "out", "o", "", "Output file (default stdout)")
	rootCmd.AddCommand(exportCmd)

	rootCmd.AddCommand(&cobra.Command{
		Use:   "reindex",
		Short: "Rebuild the search index from the store (admin)",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runReindex(cmd.Context(), newAPIClient(apiFlag, tokenFlag), os.Stdout)
		},
	})

	rootCmd.AddCommand(&cobra.Command{
		Use:   "delete TRIP_ID",
		Short: "Delete a trip (admin)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDelete(cmd.Context(), newAPIClient(apiFlag, tokenFlag), args[0], os.Stdout)
		},
	})
}
