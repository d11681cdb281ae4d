// Package account provides the sign-in and profile commands.
package account

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/agentstation/coursemap/internal/appcontext"
	"github.com/agentstation/coursemap/internal/cmd/output"
	"github.com/agentstation/coursemap/pkg/accounts"
	"github.com/agentstation/coursemap/pkg/errors"
)

// NewCommand creates the account command.
func NewCommand(app appcontext.Interface) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "account",
		Aliases: []string{"auth"},
		GroupID: "student",
		Short:   "Register, sign in and edit the profile",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmd.Help()
		},
	}
	cmd.AddCommand(
		newRegisterCommand(app),
		newLoginCommand(app),
		newLogoutCommand(app),
		newWhoamiCommand(app),
		newProfileCommand(app),
	)
	return cmd
}

func newRegisterCommand(app appcontext.Interface) *cobra.Command {
	var (
		in   accounts.RegisterInput
		role string
	)
	cmd := &cobra.Command{
		Use:     "register",
		Short:   "Create an account and sign in",
		Args:    cobra.NoArgs,
		Example: `  coursemap account register --email ana@example.com --password secret1 --name Ana`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			in.Role = accounts.Role(role)
			client, err := app.Client()
			if err != nil {
				return err
			}
			session, err := client.Accounts().Register(cmd.Context(), in)
			if err != nil {
				return err
			}
			return printSession(cmd, app, session)
		},
	}
	cmd.Flags().StringVar(&in.Email, "email", "", "Email address")
	cmd.Flags().StringVar(&in.Password, "password", "", "Password (at least 6 characters)")
	cmd.Flags().StringVar(&in.Name, "name", "", "Display name")
	cmd.Flags().StringVar(&role, "role", "", "Role: student, teacher or admin")
	cmd.Flags().StringVar(&in.Phone, "phone", "", "Phone number")
	cmd.Flags().StringVar(&in.Address, "address", "", "Postal address")
	cmd.Flags().StringVar(&in.DOB, "dob", "", "Date of birth")
	_ = cmd.MarkFlagRequired("email")
	_ = cmd.MarkFlagRequired("password")
	return cmd
}

func newLoginCommand(app appcontext.Interface) *cobra.Command {
	var email, password string
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			client, err := app.Client()
			if err != nil {
				return err
			}
			session, err := client.Accounts().Login(cmd.Context(), email, password)
			if err != nil {
				return err
			}
			return printSession(cmd, app, session)
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "Email address")
	cmd.Flags().StringVar(&password, "password", "", "Password")
	_ = cmd.MarkFlagRequired("email")
	_ = cmd.MarkFlagRequired("password")
	return cmd
}

func newLogoutCommand(app appcontext.Interface) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Sign out",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			client, err := app.Client()
			if err != nil {
				return err
			}
			return client.Accounts().Logout(cmd.Context())
		},
	}
}

func newWhoamiCommand(app appcontext.Interface) *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the signed-in user",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			client, err := app.Client()
			if err != nil {
				return err
			}
			session, ok := client.Accounts().Current(cmd.Context())
			if !ok {
				return errors.NewAuthenticationError("", "not signed in")
			}
			return printSession(cmd, app, session)
		},
	}
}

// newProfileCommand shows or overrides profile fields of the signed-in user.
func newProfileCommand(app appcontext.Interface) *cobra.Command {
	var set []string
	cmd := &cobra.Command{
		Use:     "profile",
		Short:   "Show or edit profile fields",
		Args:    cobra.NoArgs,
		Example: `  coursemap account profile --set phone=555-0100 --set name="Ana B"`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			client, err := app.Client()
			if err != nil {
				return err
			}
			session, ok := client.Accounts().Current(cmd.Context())
			if !ok {
				return errors.NewAuthenticationError("", "not signed in")
			}
			for _, pair := range set {
				field, value, found := strings.Cut(pair, "=")
				if !found {
					return errors.NewValidationError("set", pair, "expected field=value")
				}
				if err := client.Accounts().SetProfileField(cmd.Context(), session.Email, field, value); err != nil {
					return err
				}
			}
			profile, err := client.Accounts().Profile(cmd.Context(), session.Email)
			if err != nil {
				return err
			}
			return output.NewFormatter(output.Format(app.OutputFormat())).Format(cmd.OutOrStdout(), profile)
		},
	}
	cmd.Flags().StringArrayVar(&set, "set", nil, "Profile field to set as field=value (repeatable)")
	return cmd
}

func printSession(cmd *cobra.Command, app appcontext.Interface, session accounts.Session) error {
	return output.NewFormatter(output.Format(app.OutputFormat())).Format(cmd.OutOrStdout(), session)
}
