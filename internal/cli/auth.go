package cli

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/term"

	"github.com/pratik-mahalle/dashlist/pkg/client"
)

func newAuthCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "auth",
		Short: "Authentication commands",
	}

	cmd.AddCommand(newAuthLoginCmd())
	cmd.AddCommand(newAuthRegisterCmd())
	cmd.AddCommand(newAuthLogoutCmd())
	cmd.AddCommand(newAuthMeCmd())

	return cmd
}

func newAuthLoginCmd() *cobra.Command {
	var email, password string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Login with email and password",
		RunE: func(cmd *cobra.Command, args []string) error {
			if email == "" {
				email = promptInput("Email: ")
			}
			if password == "" {
				password = promptPassword("Password: ")
			}

			resp, err := apiClient.Login(cmd.Context(), email, password)
			if err != nil {
				return fmt.Errorf("login failed: %w", err)
			}
			if err := storeCredentials(resp, email); err != nil {
				return err
			}

			name := email
			if resp.User != nil && resp.User.Username != "" {
				name = resp.User.Username
			}
			fmt.Printf("Logged in as %s\n", name)
			return nil
		},
	}

	cmd.Flags().StringVar(&email, "email", "", "email address")
	cmd.Flags().StringVar(&password, "password", "", "password")

	return cmd
}

func newAuthRegisterCmd() *cobra.Command {
	var req client.RegisterRequest

	cmd := &cobra.Command{
		Use:   "register",
		Short: "Register a new account",
		RunE: func(cmd *cobra.Command, args []string) error {
			if req.Email == "" {
				req.Email = promptInput("Email: ")
			}
			if req.Username == "" {
				req.Username = promptInput("Username: ")
			}
			if req.Password == "" {
				req.Password = promptPassword("Password: ")
				if confirm := promptPassword("Confirm password: "); req.Password != confirm {
					return fmt.Errorf("passwords do not match")
				}
			}

			resp, err := apiClient.Register(cmd.Context(), req)
			if err != nil {
				return fmt.Errorf("registration failed: %w", err)
			}
			if err := storeCredentials(resp, req.Email); err != nil {
				return err
			}

			fmt.Printf("Account created. Logged in as %s\n", req.Email)
			return nil
		},
	}

	cmd.Flags().StringVar(&req.Email, "email", "", "email address")
	cmd.Flags().StringVar(&req.Password, "password", "", "password")
	cmd.Flags().StringVar(&req.Username, "username", "", "username")
	cmd.Flags().StringVar(&req.FirstName, "first-name", "", "first name")
	cmd.Flags().StringVar(&req.LastName, "last-name", "", "last name")

	return cmd
}

func newAuthLogoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Clear stored credentials",
		RunE: func(cmd *cobra.Command, args []string) error {
			if apiClient.GetToken() != "" {
				// The server only clears its cookies; a failure here is harmless
				if err := apiClient.Logout(cmd.Context()); err != nil {
					cliLogger.WithError(err).Debug("Server logout failed")
				}
			}

			viper.Set("auth.token", "")
			viper.Set("auth.refresh_token", "")
			viper.Set("auth.email", "")
			if _, err := writeConfig(); err != nil {
				return fmt.Errorf("failed to clear credentials: %w", err)
			}

			fmt.Println("Logged out successfully")
			return nil
		},
	}
}

func newAuthMeCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "me",
		Aliases: []string{"whoami"},
		Short:   "Show current user info",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := requireAuth(); err != nil {
				return err
			}
			user, err := apiClient.GetCurrentUser(cmd.Context())
			if err != nil {
				return fmt.Errorf("failed to get user info: %w", err)
			}

			if getOutputFormat() != "table" {
				return printOutput(user)
			}

			fmt.Printf("Email:       %s\n", user.Email)
			fmt.Printf("Username:    %s\n", user.Username)
			if name := strings.TrimSpace(user.FirstName + " " + user.LastName); name != "" {
				fmt.Printf("Name:        %s\n", name)
			}
			fmt.Printf("Role:        %s\n", user.Role)
			fmt.Printf("Permissions: %s\n", strings.Join(user.Permissions, ", "))
			fmt.Printf("ID:          %d\n", user.ID)
			return nil
		},
	}
}

// currentUser returns the logged in user, or nil without a stored token
func currentUser(ctx context.Context) (*client.User, error) {
	if apiClient.GetToken() == "" {
		return nil, nil
	}
	user, err := apiClient.GetCurrentUser(ctx)
	if err != nil {
		if apiErr, ok := client.AsAPIError(err); ok && apiErr.IsUnauthorized() {
			return nil, fmt.Errorf("session expired. Run 'dashlist auth login' again")
		}
		return nil, fmt.Errorf("failed to get user info: %w", err)
	}
	return user, nil
}

func storeCredentials(resp *client.LoginResponse, email string) error {
	viper.Set("auth.token", resp.AccessToken)
	if resp.RefreshToken != "" {
		viper.Set("auth.refresh_token", resp.RefreshToken)
	}
	viper.Set("auth.email", email)

	if _, err := writeConfig(); err != nil {
		return fmt.Errorf("failed to save credentials: %w", err)
	}
	return nil
}

func promptInput(prompt string) string {
	fmt.Print(prompt)
	reader := bufio.NewReader(os.Stdin)
	input, _ := reader.ReadString('\n')
	return strings.TrimSpace(input)
}

func promptPassword(prompt string) string {
	fmt.Print(prompt)
	password, err := term.ReadPassword(int(syscall.Stdin))
	fmt.Println()
	if err != nil {
		return ""
	}
	return string(password)
}
