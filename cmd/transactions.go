package cmd

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/s0up4200/cardctl/filter"
	"github.com/s0up4200/cardctl/model"
	"github.com/s0up4200/cardctl/store"
)

var (
	filterExpr string
	preset     string
	limit      int
	rows       int
	mccFilter  string
	fromDate   string
	toDate     string
)

var transactionsCmd = &cobra.Command{
	Use:   "transactions <account-id>",
	Short: "List a card's transactions, optionally filtered",
	Long: `List a card's transactions, newest first. Transactions are paged from the
platform until --limit is reached, then narrowed by --filter or --preset.

Filters are expr expressions over Amount, Currency, Merchant, Category,
State, Type, Description and CreatedAt, with helpers such as merchant("shell"),
mcc("grocery"), declined(), pending(), amountAbove(20), daysAgo(30) and
hasPrefix(Description, "shell").
The shorthand merchant:"shell" AND amount:>20 is accepted too.`,
	Args: cobra.ExactArgs(1),
	RunE: runTransactions,
}

func init() {
	transactionsCmd.Flags().StringVarP(&filterExpr, "filter", "f", "", "filter expression")
	transactionsCmd.Flags().StringVarP(&preset, "preset", "p", "", "use a preset filter from config")
	transactionsCmd.Flags().IntVarP(&limit, "limit", "n", 100, "maximum transactions to fetch, 0 for all")
	transactionsCmd.Flags().IntVar(&rows, "rows", store.DefaultRows, "page size requested from the platform")
	transactionsCmd.Flags().StringVar(&mccFilter, "mcc", "", "only fetch this merchant category")
	transactionsCmd.Flags().StringVar(&fromDate, "from", "", "first day to fetch (YYYY-MM-DD)")
	transactionsCmd.Flags().StringVar(&toDate, "to", "", "last day to fetch (YYYY-MM-DD)")
	transactionsCmd.MarkFlagsMutuallyExclusive("filter", "preset")

	rootCmd.AddCommand(transactionsCmd)
}

func runTransactions(cmd *cobra.Command, args []string) error {
	q := store.TransactionQuery{Rows: rows, MCC: mccFilter}
	var err error
	if q.StartDate, err = parseDay(fromDate); err != nil {
		return err
	}
	if q.EndDate, err = parseDay(toDate); err != nil {
		return err
	}

	ctx, cancel := commandContext(cmd)
	defer cancel()

	txs, err := client.Transactions.All(ctx, args[0], q, limit)
	if err != nil {
		return err
	}

	switch {
	case filterExpr != "":
		logger.Info().Str("filter", filterExpr).Msg("Filtering transactions")
		txs, err = filter.Apply(ctx, filterExpr, txs)
		if err != nil {
			return fmt.Errorf("invalid filter expression: %w", err)
		}
	case preset != "":
		logger.Info().Str("preset", preset).Msg("Filtering transactions")
		txs, err = presets.EvaluateFilter(ctx, preset, txs)
		if err != nil {
			return err
		}
	}

	if ok, err := printJSON(txs); ok {
		return err
	}

	if len(txs) == 0 {
		fmt.Println("No transactions found matching the filter criteria.")
		return nil
	}

	fmt.Printf("\nFound %d transactions:\n", len(txs))
	fmt.Println(strings.Repeat("-", 80))
	for _, tx := range txs {
		printTransaction(tx)
	}
	return nil
}

func parseDay(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	t, err := time.Parse(time.DateOnly, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q, want YYYY-MM-DD", s)
	}
	return t, nil
}

func printTransaction(tx model.Transaction) {
	amount := "-"
	if tx.BillingAmount != nil {
		amount = tx.BillingAmount.String()
	} else if tx.LocalAmount != nil {
		amount = tx.LocalAmount.String()
	}

	fmt.Printf("• %s  %-24s %14s", tx.CreatedAt.Local().Format("2006-01-02 15:04"), tx.MerchantName(), amount)
	switch {
	case tx.IsDeclined():
		fmt.Printf(" [DECLINED]")
	case tx.IsPending():
		fmt.Printf(" [PENDING]")
	}
	fmt.Println()
	if tx.DeclineReason != "" {
		fmt.Printf("  Reason: %s\n", tx.DeclineReason)
	}
}
