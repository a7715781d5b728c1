package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/s0up4200/cardctl/model"
)

var (
	loginAfter bool
	alsoIDs    []string
)

var verifyCmd = &cobra.Command{
	Use:   "verify",
	Short: "Verify a phone number or email address and sign in",
	Long: `Signing in takes one or more verifications. Start one with 'verify phone'
or 'verify email', then submit the code you received with 'verify finish'.
Pass --login to exchange the passed verifications for a session.`,
}

var verifyPhoneCmd = &cobra.Command{
	Use:   "phone <country-code> <number>",
	Short: "Send a verification code by SMS",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		phone := model.PhoneNumber{
			CountryCode: strings.TrimPrefix(args[0], "+"),
			PhoneNumber: args[1],
		}
		ctx, cancel := commandContext(cmd)
		defer cancel()

		return printStarted(client.Verifications.StartPhone(ctx, phone))
	},
}

var verifyEmailCmd = &cobra.Command{
	Use:   "email <address>",
	Short: "Send a verification code by email",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := commandContext(cmd)
		defer cancel()

		return printStarted(client.Verifications.StartEmail(ctx, model.Email{Email: args[0]}))
	},
}

var verifyFinishCmd = &cobra.Command{
	Use:   "finish <verification-id> <code>",
	Short: "Submit a verification code",
	Args:  cobra.ExactArgs(2),
	RunE:  runVerifyFinish,
}

func init() {
	verifyFinishCmd.Flags().BoolVar(&loginAfter, "login", false, "sign in once the verification passes")
	verifyFinishCmd.Flags().StringSliceVar(&alsoIDs, "also", nil, "other passed verification IDs to sign in with")

	verifyCmd.AddCommand(verifyPhoneCmd, verifyEmailCmd, verifyFinishCmd)
	rootCmd.AddCommand(verifyCmd)
}

func printStarted(v model.Verification, err error) error {
	if err != nil {
		return fmt.Errorf("failed to start verification: %w", err)
	}
	if ok, err := printJSON(v); ok {
		return err
	}

	fmt.Printf("Verification %s started (%s).\n", v.VerificationID, v.VerificationType)
	fmt.Printf("Submit the code with: cardctl verify finish %s <code>\n", v.VerificationID)
	return nil
}

func runVerifyFinish(cmd *cobra.Command, args []string) error {
	ctx, cancel := commandContext(cmd)
	defer cancel()

	v, err := client.Verifications.Complete(ctx, model.Verification{VerificationID: args[0]}, args[1])
	if err != nil {
		return err
	}
	if !v.IsPassed() {
		return fmt.Errorf("verification %s %s", v.VerificationID, v.Status)
	}
	fmt.Printf("Verification %s passed.\n", v.VerificationID)

	if !loginAfter {
		return nil
	}

	verifications := []model.Verification{v}
	for _, id := range alsoIDs {
		verifications = append(verifications, model.Verification{VerificationID: id})
	}

	user, err := client.Login(ctx, verifications...)
	if err != nil {
		return err
	}
	if ok, err := printJSON(user); ok {
		return err
	}

	fmt.Printf("Signed in as %s.\n", user.UserID)
	fmt.Printf("Session token: %s\n", user.UserToken)
	fmt.Println("Set platform.session_token or CARDCTL_PLATFORM_SESSION_TOKEN to reuse it.")
	return nil
}
