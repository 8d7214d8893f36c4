// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"os"
	"strconv"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/pdiddy/price-scout/internal/store"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Inspect the recorded price history",
}

var historyRunsCmd = &cobra.Command{
	Use:   "runs",
	Short: "List recorded runs, newest first",
	RunE:  runHistoryRuns,
}

var historyItemCmd = &cobra.Command{
	Use:   "item <id>",
	Short: "Show the recorded prices for one catalog item",
	Args:  cobra.ExactArgs(1),
	RunE:  runHistoryItem,
}

func init() {
	historyRunsCmd.Flags().Int("limit", 20, "maximum number of runs to list")

	historyCmd.AddCommand(historyRunsCmd)
	historyCmd.AddCommand(historyItemCmd)
	rootCmd.AddCommand(historyCmd)
}

func openStore() (*store.Store, error) {
	s, err := store.NewStore(loadConfig().Store)
	if err != nil {
		return nil, fmt.Errorf("opening price history: %w", err)
	}
	return s, nil
}

func runHistoryRuns(cmd *cobra.Command, args []string) error {
	s, err := openStore()
	if err != nil {
		return err
	}
	defer s.Close()

	limit, _ := cmd.Flags().GetInt("limit")
	runs, err := s.ListRuns(cmd.Context(), limit)
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		fmt.Println("no runs recorded")
		return nil
	}

	tw := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "RUN\tSTARTED\tDURATION\tITEMS")
	for _, r := range runs {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%d\n",
			r.ID, r.Started.Local().Format("2006-01-02 15:04:05"), r.Duration, r.Items)
	}
	return tw.Flush()
}

func runHistoryItem(cmd *cobra.Command, args []string) error {
	itemID, err := strconv.Atoi(args[0])
	if err != nil {
		return fmt.Errorf("invalid item id %q", args[0])
	}

	s, err := openStore()
	if err != nil {
		return err
	}
	defer s.Close()

	history, err := s.ItemHistory(cmd.Context(), itemID)
	if err != nil {
		return err
	}
	if len(history) == 0 {
		fmt.Printf("no observations for item %d\n", itemID)
		return nil
	}

	fmt.Printf("%s\n\n", history[0].ItemName)
	tw := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "OBSERVED\tSOURCE\tPRICE\tSCORE\tLISTING")
	for _, o := range history {
		price := fmt.Sprintf("¥%d", o.Representative)
		if o.PriceHigh > 0 {
			price = fmt.Sprintf("¥%d~¥%d", o.PriceLow, o.PriceHigh)
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%.2f\t%s\n",
			o.Observed.Local().Format("2006-01-02 15:04"), o.Source, price, o.Score, o.ProductName)
	}
	return tw.Flush()
}
