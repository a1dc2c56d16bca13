package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"iganalytics/pkg/auth"
	"iganalytics/pkg/config"
	"iganalytics/pkg/instagram"
	"iganalytics/pkg/logger"
	"iganalytics/pkg/ui"
)

// authCmd represents the auth command
var authCmd = &cobra.Command{
	Use:   "auth",
	Short: "Manage stored access tokens",
	Long: `Manage stored Graph API access tokens.

Tokens are stored using:
  - System keychain (when available)
  - Encrypted file with PBKDF2 key derivation
  - Environment variables (read only)

Never share your access token or config files!`,
}

// loginCmd represents the auth login command
var loginCmd = &cobra.Command{
	Use:   "login [name]",
	Short: "Store an access token securely",
	Long: `Store a Graph API access token in the system keychain or an encrypted file.

The token is checked against GET /me and stored under the account's username,
or under the given name when one is provided.`,
	Example: `  # Interactive login
  iganalytics auth login

  # Store the token under a custom name
  iganalytics auth login brand-account`,
	Args: cobra.MaximumNArgs(1),
	RunE: runLogin,
}

// logoutCmd represents the auth logout command
var logoutCmd = &cobra.Command{
	Use:   "logout [name]",
	Short: "Remove a stored access token",
	Long: `Remove a stored access token.

If no name is provided, you will be shown a list of stored accounts
to choose from. You can also remove all accounts at once.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runLogout,
}

// listCmd represents the auth list command
var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List all stored accounts",
	Long:  `List all stored accounts with masked tokens.`,
	Args:  cobra.NoArgs,
	RunE:  runList,
}

func init() {
	rootCmd.AddCommand(authCmd)
	authCmd.AddCommand(loginCmd)
	authCmd.AddCommand(logoutCmd)
	authCmd.AddCommand(listCmd)
}

func runLogin(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd, nil)
	if err != nil {
		return err
	}

	manager, err := auth.NewManager()
	if err != nil {
		return fmt.Errorf("failed to initialize credential manager: %w", err)
	}

	ui.PrintBanner()
	auth.ShowTokenGuide(ui.Output())

	reader := bufio.NewReader(os.Stdin)
	fmt.Fprint(ui.Output(), "🔐 Access token (hidden as you type): ")
	token, err := readPassword(reader)
	if err != nil {
		return fmt.Errorf("failed to read access token: %w", err)
	}
	if token == "" {
		return fmt.Errorf("access token is required")
	}

	var name string
	if len(args) > 0 {
		name = args[0]
	}

	account, err := verifyToken(cmd.Context(), cfg, logger.GetLogger(), token, name)
	if err != nil {
		ui.PrintWarning("Could not verify the token", err)
		if account.Username == "" {
			fmt.Fprint(ui.Output(), "📱 Name for this account: ")
			input, _ := reader.ReadString('\n')
			account.Username = strings.TrimSpace(input)
		}
	}
	if account.Username == "" {
		return fmt.Errorf("account name is required")
	}

	if existing, _ := manager.Retrieve(account.Username); existing != nil {
		fmt.Fprintf(ui.Output(), "\n⚠️  Account '%s' already exists. Replace its token? (y/N): ", account.Username)
		input, _ := reader.ReadString('\n')
		if !strings.HasPrefix(strings.ToLower(strings.TrimSpace(input)), "y") {
			return nil
		}
	}

	if err := manager.Store(account); err != nil {
		return fmt.Errorf("failed to store credentials: %w", err)
	}

	ui.PrintSuccess(fmt.Sprintf("Account saved: %s", account.Username))
	if account.UserID != "" {
		ui.PrintInfo("User ID", account.UserID)
	}

	fmt.Fprintln(ui.Output(), "\n🔒 Your token is stored in:")
	if auth.IsKeyringAvailable() {
		fmt.Fprintln(ui.Output(), "   • System keychain (primary)")
	}
	fmt.Fprintln(ui.Output(), "   • Encrypted file (backup)")

	fmt.Fprintln(ui.Output(), "\n📖 Next steps:")
	fmt.Fprintln(ui.Output(), "   $ iganalytics analyze")
	fmt.Fprintf(ui.Output(), "   $ iganalytics analyze --account %s\n", account.Username)
	return nil
}

// verifyToken calls GET /me with token. The returned account always
// carries the token and the given name; on success the username and id
// reported by the API fill in what the caller left empty.
func verifyToken(ctx context.Context, cfg *config.Config, log logger.Logger, token, name string) (*auth.Account, error) {
	account := &auth.Account{Username: name, AccessToken: token}

	verifyCfg := *cfg
	verifyCfg.Instagram.AccessToken = token
	client := instagram.NewFromConfig(&verifyCfg, log)

	me, err := client.GetAccount(ctx)
	if err != nil {
		return account, err
	}

	account.UserID = me.Identifier()
	if account.Username == "" {
		account.Username = me.Username
	}
	return account, nil
}

func runLogout(cmd *cobra.Command, args []string) error {
	manager, err := auth.NewManager()
	if err != nil {
		return fmt.Errorf("failed to initialize credential manager: %w", err)
	}

	if len(args) > 0 {
		if err := manager.Delete(args[0]); err != nil {
			return fmt.Errorf("failed to remove account: %w", err)
		}
		ui.PrintSuccess("Account removed: " + args[0])
		return nil
	}

	accounts, err := manager.List()
	if err != nil || len(accounts) == 0 {
		ui.PrintWarning("No stored accounts found")
		return nil
	}

	reader := bufio.NewReader(os.Stdin)
	out := ui.Output()

	if len(accounts) == 1 {
		account := accounts[0]
		fmt.Fprintf(out, "Remove account '%s'? (y/N): ", account.Username)
		input, _ := reader.ReadString('\n')
		if !strings.HasPrefix(strings.ToLower(strings.TrimSpace(input)), "y") {
			return nil
		}
		if err := manager.Delete(account.Username); err != nil {
			return fmt.Errorf("failed to remove account: %w", err)
		}
		ui.PrintSuccess("Account removed: " + account.Username)
		return nil
	}

	fmt.Fprintln(out, "Select account to remove:")
	for i, account := range accounts {
		fmt.Fprintf(out, "  %d. %s\n", i+1, account.Username)
	}
	fmt.Fprintf(out, "  %d. Remove all accounts\n", len(accounts)+1)
	fmt.Fprintf(out, "  0. Cancel\n\n")

	fmt.Fprint(out, "Choice: ")
	input, _ := reader.ReadString('\n')

	var choice int
	fmt.Sscanf(strings.TrimSpace(input), "%d", &choice)

	switch {
	case choice == 0:
		return nil
	case choice == len(accounts)+1:
		fmt.Fprint(out, "Remove ALL accounts? This cannot be undone! (yes/N): ")
		confirm, _ := reader.ReadString('\n')
		if strings.TrimSpace(confirm) != "yes" {
			return nil
		}
		if err := manager.DeleteAll(); err != nil {
			return fmt.Errorf("failed to remove all accounts: %w", err)
		}
		ui.PrintSuccess("All accounts removed")
		return nil
	case choice > 0 && choice <= len(accounts):
		account := accounts[choice-1]
		if err := manager.Delete(account.Username); err != nil {
			return fmt.Errorf("failed to remove account: %w", err)
		}
		ui.PrintSuccess("Account removed: " + account.Username)
		return nil
	default:
		return fmt.Errorf("invalid choice: %s", strings.TrimSpace(input))
	}
}

func runList(cmd *cobra.Command, args []string) error {
	manager, err := auth.NewManager()
	if err != nil {
		return fmt.Errorf("failed to initialize credential manager: %w", err)
	}

	accounts, err := manager.List()
	if err != nil {
		return fmt.Errorf("failed to list accounts: %w", err)
	}

	printAccounts(ui.Output(), accounts)
	return nil
}

func printAccounts(w io.Writer, accounts []*auth.Account) {
	if len(accounts) == 0 {
		ui.PrintInfo("No stored accounts", "Use 'iganalytics auth login' to add an account")
		return
	}

	ui.PrintHighlight("Stored Accounts")
	fmt.Fprintln(w)

	for i, account := range accounts {
		sanitized := auth.SanitizeAccount(account)
		fmt.Fprintf(w, "%d. Username: %s\n", i+1, sanitized.Username)
		if sanitized.UserID != "" {
			fmt.Fprintf(w, "   User ID: %s\n", sanitized.UserID)
		}
		fmt.Fprintf(w, "   Access Token: %s\n", sanitized.AccessToken)
		fmt.Fprintf(w, "   Last Modified: %s\n", sanitized.LastModified.Format("2006-01-02 15:04:05"))
		fmt.Fprintln(w)
	}
}

// readPassword reads a secret from stdin without echo when stdin is a terminal
func readPassword(reader *bufio.Reader) (string, error) {
	if term.IsTerminal(int(syscall.Stdin)) {
		password, err := term.ReadPassword(int(syscall.Stdin))
		fmt.Fprintln(ui.Output())
		if err == nil {
			return strings.TrimSpace(string(password)), nil
		}
	}

	input, err := reader.ReadString('\n')
	if err != nil && input == "" {
		return "", err
	}
	return strings.TrimSpace(input), nil
}
