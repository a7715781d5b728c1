package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/s0up4200/cardctl/model"
)

var userCmd = &cobra.Command{
	Use:   "user",
	Short: "Show the signed-in user",
	RunE:  runUser,
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "End the session and clear cached data",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := commandContext(cmd)
		defer cancel()

		if err := client.Logout(ctx); err != nil {
			return fmt.Errorf("failed to log out: %w", err)
		}
		if purgeCache && client.Cache() != nil {
			if err := client.Cache().Purge(); err != nil {
				return fmt.Errorf("failed to purge cache: %w", err)
			}
		}
		fmt.Println("Logged out.")
		return nil
	},
}

var kindsCmd = &cobra.Command{
	Use:   "kinds",
	Short: "List the record types the client can decode",
	Run: func(cmd *cobra.Command, args []string) {
		for _, kind := range client.Kinds() {
			fmt.Println(kind)
		}
	},
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show the effective configuration and platform configuration",
	RunE:  runConfig,
}

var purgeCache bool

func init() {
	logoutCmd.Flags().BoolVar(&purgeCache, "purge", false, "also remove cached data of every other session")
	rootCmd.AddCommand(userCmd, logoutCmd, kindsCmd, configCmd)
}

func runUser(cmd *cobra.Command, args []string) error {
	ctx, cancel := commandContext(cmd)
	defer cancel()

	user, err := client.Users.CurrentUser(ctx, false)
	if err != nil {
		return err
	}
	if ok, err := printJSON(user); ok {
		return err
	}

	fmt.Printf("User %s\n", user.UserID)
	for _, r := range user.UserData.Data {
		fmt.Printf("  %-12s %s\n", r.Kind(), describeDataPoint(r))
	}
	return nil
}

func describeDataPoint(r model.Record) string {
	switch dp := r.(type) {
	case model.PersonalName:
		return strings.TrimSpace(dp.FirstName + " " + dp.LastName)
	case model.PhoneNumber:
		return "+" + dp.CountryCode + " " + dp.PhoneNumber + verifiedMark(dp.Verified)
	case model.Email:
		return dp.Email + verifiedMark(dp.Verified)
	case model.BirthDate:
		return dp.Date
	default:
		return ""
	}
}

func verifiedMark(verified bool) string {
	if verified {
		return " (verified)"
	}
	return ""
}

func runConfig(cmd *cobra.Command, args []string) error {
	ctx, cancel := commandContext(cmd)
	defer cancel()

	fmt.Println("Client:")
	fmt.Printf("- Base URL: %s\n", cfg.Platform.BaseURL)
	fmt.Printf("- API key: %s\n", redact(cfg.Platform.APIKey))
	fmt.Printf("- Session: %s\n", redact(client.SessionToken()))
	fmt.Printf("- Timeout: %s\n", cfg.Platform.Timeout)
	fmt.Printf("- Pinned keys: %d\n", len(cfg.Platform.PinnedKeys))
	fmt.Printf("- Cache: %s (ttl %s)\n", cfg.Cache.Dir, cfg.Cache.TTL)
	if names := presets.ListFilters(); len(names) > 0 {
		fmt.Printf("- Filter presets: %s\n", strings.Join(names, ", "))
	}

	pc, err := client.Config.ContextConfiguration(ctx, false)
	if err != nil {
		return fmt.Errorf("failed to get platform configuration: %w", err)
	}
	if ok, err := printJSON(pc); ok {
		return err
	}

	fmt.Printf("\nPlatform:\n")
	fmt.Printf("- Team: %s\n", pc.Team.Name)
	fmt.Printf("- Project: %s\n", pc.Project.Name)
	fmt.Printf("- Sign-in: %s", pc.Project.PrimaryAuthCredential)
	if len(pc.Project.SecondaryAuthCredentials) > 0 {
		fmt.Printf(" then %s", strings.Join(pc.Project.SecondaryAuthCredentials, ", "))
	}
	fmt.Println()
	return nil
}

func redact(secret string) string {
	switch {
	case secret == "":
		return "(none)"
	case len(secret) <= 8:
		return "****"
	default:
		return secret[:4] + "..." + secret[len(secret)-4:]
	}
}
