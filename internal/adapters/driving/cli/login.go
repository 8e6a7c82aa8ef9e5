package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/browerscan/pocketbase.cn/internal/core/domain"
)

var (
	loginIdentity      string
	loginPasswordStdin bool
)

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Sign in to PocketBase.cn",
	Long: `Signs in with an email or username and password. The session is stored
locally and sent with later requests.

  pbcn login -u me@example.com
  echo "$PASSWORD" | pbcn login -u me@example.com --password-stdin`,
	Args: cobra.NoArgs,
	RunE: runLogin,
}

var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Show the signed-in user",
	Args:  cobra.NoArgs,
	RunE:  runWhoami,
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Sign out and forget the stored session",
	Args:  cobra.NoArgs,
	RunE:  runLogout,
}

func init() {
	loginCmd.Flags().StringVarP(&loginIdentity, "identity", "u", "", "email or username")
	loginCmd.Flags().BoolVar(&loginPasswordStdin, "password-stdin", false, "read the password from stdin")
	rootCmd.AddCommand(loginCmd)
	rootCmd.AddCommand(whoamiCmd)
	rootCmd.AddCommand(logoutCmd)
}

func runLogin(cmd *cobra.Command, _ []string) error {
	if authService == nil {
		return errors.New("auth service not configured")
	}

	in := cmd.InOrStdin()
	reader := bufio.NewReader(in)

	identity := strings.TrimSpace(loginIdentity)
	if identity == "" {
		if loginPasswordStdin {
			return errors.New("--identity is required with --password-stdin")
		}
		cmd.Print("Email or username: ")
		line, err := reader.ReadString('\n')
		if err != nil && !errors.Is(err, io.EOF) {
			return fmt.Errorf("failed to read identity: %w", err)
		}
		identity = strings.TrimSpace(line)
	}

	var password string
	if loginPasswordStdin {
		line, err := reader.ReadString('\n')
		if err != nil && !errors.Is(err, io.EOF) {
			return fmt.Errorf("failed to read password: %w", err)
		}
		password = strings.TrimRight(line, "\r\n")
	} else {
		cmd.Print("Password: ")
		password = readPassword(in, reader)
		cmd.Println()
	}

	if identity == "" || password == "" {
		return errors.New("identity and password are required")
	}

	session, err := authService.Login(cmd.Context(), identity, password)
	if err != nil {
		return fmt.Errorf("login failed: %w", err)
	}

	cmd.Printf("Signed in as %s\n", displayName(session.User))
	return nil
}

// readPassword reads a line without echo when in is a terminal.
func readPassword(in io.Reader, reader *bufio.Reader) string {
	if f, ok := in.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		password, err := term.ReadPassword(int(f.Fd()))
		if err == nil {
			return string(password)
		}
	}
	// Fallback to regular input
	input, _ := reader.ReadString('\n')
	return strings.TrimSpace(input)
}

func runWhoami(cmd *cobra.Command, _ []string) error {
	if authService == nil {
		return errors.New("auth service not configured")
	}

	session, err := authService.Refresh(cmd.Context())
	if errors.Is(err, domain.ErrAuthRequired) {
		cmd.Println("Not signed in.")
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to refresh session: %w", err)
	}

	cmd.Printf("Signed in as %s\n", displayName(session.User))
	cmd.Printf("  ID: %s\n", session.User.ID)
	if session.User.Email != "" {
		cmd.Printf("  Email: %s\n", session.User.Email)
	}
	if !session.ExpiresAt.IsZero() {
		cmd.Printf("  Expires: %s\n", session.ExpiresAt.Local().Format(time.RFC3339))
	}
	return nil
}

func runLogout(cmd *cobra.Command, _ []string) error {
	if authService == nil {
		return errors.New("auth service not configured")
	}
	if err := authService.Logout(cmd.Context()); err != nil {
		return fmt.Errorf("logout failed: %w", err)
	}
	cmd.Println("Signed out.")
	return nil
}

func displayName(u domain.User) string {
	switch {
	case u.Name != "":
		return u.Name
	case u.Username != "":
		return u.Username
	case u.Email != "":
		return u.Email
	default:
		return u.ID
	}
}
