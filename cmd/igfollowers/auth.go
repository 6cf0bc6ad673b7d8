package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"igfollowers/pkg/auth"
	"igfollowers/pkg/ui"
)

var authCmd = &cobra.Command{
	Use:   "auth",
	Short: "Manage stored Instagram credentials",
	Long: `Store Instagram session cookies securely in the system keychain (or an
encrypted file on systems without one). Stored accounts are picked up
automatically by the api and export strategies; select one explicitly
with --account.`,
}

var authLoginCmd = &cobra.Command{
	Use:   "login",
	Short: "Store session cookies for an account",
	Long: `Prompts for the session cookies of a logged-in browser session.

To find them: log in to instagram.com, open DevTools (F12), and copy
sessionid, csrftoken, and ds_user_id from Application > Cookies >
https://www.instagram.com.`,
	RunE: runAuthLogin,
}

var authLogoutCmd = &cobra.Command{
	Use:   "logout [username]",
	Short: "Remove stored credentials",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runAuthLogout,
}

var authListCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored accounts",
	RunE:  runAuthList,
}

func runAuthLogin(cmd *cobra.Command, args []string) error {
	username, err := ui.PromptLine("Instagram username")
	if err != nil {
		return err
	}
	if username == "" {
		return fmt.Errorf("username is required")
	}

	sessionID, err := ui.PromptPassword("Session ID (sessionid cookie)")
	if err != nil {
		return err
	}
	csrfToken, err := ui.PromptPassword("CSRF token (csrftoken cookie)")
	if err != nil {
		return err
	}
	dsUserID, err := ui.PromptLine("DS user ID (ds_user_id cookie)")
	if err != nil {
		return err
	}

	manager, err := auth.NewManager()
	if err != nil {
		return fmt.Errorf("failed to initialize credential manager: %w", err)
	}

	account := &auth.Account{
		Username:  username,
		SessionID: sessionID,
		CSRFToken: csrfToken,
		DSUserID:  dsUserID,
	}
	if err := manager.Store(account); err != nil {
		return err
	}

	ui.PrintSuccess(fmt.Sprintf("Credentials stored for @%s", username))
	return nil
}

func runAuthLogout(cmd *cobra.Command, args []string) error {
	manager, err := auth.NewManager()
	if err != nil {
		return fmt.Errorf("failed to initialize credential manager: %w", err)
	}

	var username string
	if len(args) > 0 {
		username = args[0]
	} else {
		accounts, err := manager.List()
		if err != nil || len(accounts) == 0 {
			ui.PrintWarning("No stored accounts found")
			return nil
		}
		if len(accounts) > 1 {
			return fmt.Errorf("multiple accounts stored, pass the username to remove")
		}
		username = accounts[0].Username
	}

	if err := manager.Delete(username); err != nil {
		return err
	}

	ui.PrintSuccess(fmt.Sprintf("Credentials removed for @%s", username))
	return nil
}

func runAuthList(cmd *cobra.Command, args []string) error {
	manager, err := auth.NewManager()
	if err != nil {
		return fmt.Errorf("failed to initialize credential manager: %w", err)
	}

	accounts, err := manager.List()
	if err != nil {
		return err
	}
	if len(accounts) == 0 {
		ui.PrintWarning("No stored accounts found")
		return nil
	}

	for i, account := range accounts {
		sanitized := auth.SanitizeAccount(account)
		fmt.Fprintf(os.Stdout, "%d. Username: %s\n", i+1, sanitized.Username)
		fmt.Fprintf(os.Stdout, "   Session ID: %s\n", sanitized.SessionID)
		fmt.Fprintf(os.Stdout, "   CSRF Token: %s\n", sanitized.CSRFToken)
		if sanitized.DSUserID != "" {
			fmt.Fprintf(os.Stdout, "   DS User ID: %s\n", sanitized.DSUserID)
		}
		fmt.Fprintf(os.Stdout, "   Last Modified: %s\n\n", sanitized.LastModified.Format("2006-01-02 15:04:05"))
	}

	return nil
}

func init() {
	rootCmd.AddCommand(authCmd)

	authCmd.AddCommand(authLoginCmd)
	authCmd.AddCommand(authLogoutCmd)
	authCmd.AddCommand(authListCmd)
}
