package cmd

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/s0up4200/cardctl/model"
)

var (
	refresh       bool
	showSecrets   bool
	spendingMonth string
)

var cardsCmd = &cobra.Command{
	Use:   "cards",
	Short: "List the user's cards",
	RunE:  runCards,
}

var cardCmd = &cobra.Command{
	Use:   "card",
	Short: "Inspect or manage a single card",
}

var cardDetailsCmd = &cobra.Command{
	Use:   "details <account-id>",
	Short: "Show the card number, expiration and CVV",
	Args:  cobra.ExactArgs(1),
	RunE:  runCardDetails,
}

var cardLockCmd = &cobra.Command{
	Use:   "lock <account-id>",
	Short: "Lock a card",
	Args:  cobra.ExactArgs(1),
	RunE:  runCardState(true),
}

var cardUnlockCmd = &cobra.Command{
	Use:   "unlock <account-id>",
	Short: "Unlock a card",
	Args:  cobra.ExactArgs(1),
	RunE:  runCardState(false),
}

var cardBalanceCmd = &cobra.Command{
	Use:   "balance <account-id>",
	Short: "Show the card's funding source and balances",
	Args:  cobra.ExactArgs(1),
	RunE:  runCardBalance,
}

var cardSpendingCmd = &cobra.Command{
	Use:   "spending <account-id>",
	Short: "Show spending by category for a month",
	Args:  cobra.ExactArgs(1),
	RunE:  runCardSpending,
}

var cardActivateCmd = &cobra.Command{
	Use:   "activate <account-id> <code>",
	Short: "Activate a physical card with the code printed on it",
	Args:  cobra.ExactArgs(2),
	RunE:  runCardActivate,
}

func init() {
	cardsCmd.Flags().BoolVar(&refresh, "refresh", false, "bypass cached cards")
	cardDetailsCmd.Flags().BoolVar(&showSecrets, "show", false, "print the full card number and CVV")
	cardSpendingCmd.Flags().StringVar(&spendingMonth, "month", "", "month as YYYY-MM (default current month)")

	cardCmd.AddCommand(cardDetailsCmd, cardLockCmd, cardUnlockCmd, cardBalanceCmd, cardSpendingCmd, cardActivateCmd)
	rootCmd.AddCommand(cardsCmd, cardCmd)
}

func runCards(cmd *cobra.Command, args []string) error {
	ctx, cancel := commandContext(cmd)
	defer cancel()

	cards, err := client.Cards.Cards(ctx, refresh)
	if err != nil {
		return err
	}
	if ok, err := printJSON(cards); ok {
		return err
	}

	if len(cards) == 0 {
		fmt.Println("No cards found.")
		return nil
	}

	fmt.Printf("\nFound %d cards:\n", len(cards))
	fmt.Println(strings.Repeat("-", 60))
	for _, c := range cards {
		printCard(c)
	}
	return nil
}

func printCard(c model.Card) {
	fmt.Printf("• %s %s ****%s [%s]\n", c.AccountID, c.CardNetwork, c.LastFour, strings.ToUpper(string(c.State)))
	if c.SpendableToday != nil {
		fmt.Printf("  Spendable today: %s\n", c.SpendableToday)
	}
	if c.TotalBalance != nil {
		fmt.Printf("  Balance: %s\n", c.TotalBalance)
	}
}

func runCardDetails(cmd *cobra.Command, args []string) error {
	ctx, cancel := commandContext(cmd)
	defer cancel()

	details, err := client.Cards.Details(ctx, args[0])
	if err != nil {
		return err
	}
	if !showSecrets {
		details.PAN = maskPAN(details.PAN)
		details.CVV = "***"
	}
	if ok, err := printJSON(details); ok {
		return err
	}

	fmt.Printf("Number:     %s\n", details.PAN)
	fmt.Printf("Expiration: %s\n", details.Expiration)
	fmt.Printf("CVV:        %s\n", details.CVV)
	return nil
}

func maskPAN(pan string) string {
	if len(pan) <= 4 {
		return pan
	}
	return strings.Repeat("*", len(pan)-4) + pan[len(pan)-4:]
}

func runCardState(lock bool) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		ctx, cancel := commandContext(cmd)
		defer cancel()

		var (
			card model.Card
			err  error
		)
		if lock {
			card, err = client.Cards.Lock(ctx, args[0])
		} else {
			card, err = client.Cards.Unlock(ctx, args[0])
		}
		if err != nil {
			return err
		}
		if ok, err := printJSON(card); ok {
			return err
		}
		printCard(card)
		return nil
	}
}

func runCardBalance(cmd *cobra.Command, args []string) error {
	ctx, cancel := commandContext(cmd)
	defer cancel()

	overview, err := client.Cards.Overview(ctx, args[0])
	if err != nil {
		return err
	}
	if ok, err := printJSON(overview.FundingSource); ok {
		return err
	}

	printCard(overview.Card)
	fs := overview.FundingSource
	fmt.Printf("  Funding source: %s", fs.ID)
	if fs.Custodian != nil {
		fmt.Printf(" (%s)", fs.Custodian.CustodianType)
	}
	fmt.Println()
	if fs.Balance != nil {
		fmt.Printf("  Source balance: %s\n", fs.Balance)
	}
	if fs.AmountSpendable != nil {
		fmt.Printf("  Spendable: %s\n", fs.AmountSpendable)
	}
	if fs.AmountHeld != nil {
		fmt.Printf("  Held: %s\n", fs.AmountHeld)
	}
	return nil
}

// parseMonth reads YYYY-MM, defaulting to the current month
func parseMonth(s string) (time.Month, int, error) {
	if s == "" {
		now := time.Now()
		return now.Month(), now.Year(), nil
	}
	t, err := time.Parse("2006-01", s)
	if err != nil {
		return 0, 0, fmt.Errorf("invalid month %q, want YYYY-MM", s)
	}
	return t.Month(), t.Year(), nil
}

func runCardSpending(cmd *cobra.Command, args []string) error {
	month, year, err := parseMonth(spendingMonth)
	if err != nil {
		return err
	}

	ctx, cancel := commandContext(cmd)
	defer cancel()

	spending, err := client.Cards.MonthlySpending(ctx, args[0], month, year)
	if err != nil {
		return err
	}
	if ok, err := printJSON(spending); ok {
		return err
	}

	fmt.Printf("Spending for %s %d:\n", month, year)
	if len(spending.Spending) == 0 {
		fmt.Println("  nothing spent")
	}
	for _, c := range spending.Spending {
		fmt.Printf("  %-16s %s\n", c.CategoryID, c.Spending)
	}
	return nil
}

func runCardActivate(cmd *cobra.Command, args []string) error {
	if _, err := strconv.Atoi(args[1]); err != nil {
		return fmt.Errorf("activation code must be numeric")
	}

	ctx, cancel := commandContext(cmd)
	defer cancel()

	result, err := client.Cards.ActivatePhysical(ctx, args[0], args[1])
	if err != nil {
		return err
	}
	if ok, err := printJSON(result); ok {
		return err
	}
	fmt.Printf("Activation result: %s\n", result.Result)
	if result.ErrorMessage != "" {
		fmt.Printf("  %s (code %d)\n", result.ErrorMessage, result.ErrorCode)
	}
	return nil
}
