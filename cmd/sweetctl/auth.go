package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/erazemk/sweetshop/internal/model"
	"github.com/erazemk/sweetshop/internal/session"
)

func credentialError(err error) error {
	var cerr *session.CredentialError
	if errors.As(err, &cerr) {
		return errors.New(cerr.Message)
	}
	return err
}

func (a *app) passwordFrom(cmd *cobra.Command, password string) (string, error) {
	if password != "" {
		return password, nil
	}
	return a.readPassword(cmd, "Password: ")
}

func printIdentity(cmd *cobra.Command, prefix string, id *model.Identity) {
	fmt.Fprintf(cmd.OutOrStdout(), "%s %s <%s> (%s)\n", prefix, id.Name, id.Email, id.Role)
}

func newLoginCmd(a *app) *cobra.Command {
	var email, password string
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in and store the session token",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			pw, err := a.passwordFrom(cmd, password)
			if err != nil {
				return err
			}
			if err := a.provider.Login(cmd.Context(), email, pw); err != nil {
				return credentialError(err)
			}
			printIdentity(cmd, "Logged in as", a.provider.Snapshot().User)
			return nil
		},
	}
	cmd.Flags().StringVarP(&email, "email", "e", "", "account email")
	cmd.Flags().StringVarP(&password, "password", "p", "", "password (prompted if empty)")
	cmd.MarkFlagRequired("email")
	return cmd
}

func newRegisterCmd(a *app) *cobra.Command {
	var name, email, password, role string
	cmd := &cobra.Command{
		Use:   "register",
		Short: "Create an account and sign in with it",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			pw, err := a.passwordFrom(cmd, password)
			if err != nil {
				return err
			}
			if password == "" {
				confirm, err := a.readPassword(cmd, "Confirm password: ")
				if err != nil {
					return err
				}
				if confirm != pw {
					return errors.New("Passwords do not match")
				}
			}
			if err := a.provider.Register(cmd.Context(), name, email, pw, role); err != nil {
				return credentialError(err)
			}
			printIdentity(cmd, "Registered and logged in as", a.provider.Snapshot().User)
			return nil
		},
	}
	cmd.Flags().StringVarP(&name, "name", "n", "", "full name")
	cmd.Flags().StringVarP(&email, "email", "e", "", "account email")
	cmd.Flags().StringVarP(&password, "password", "p", "", "password (prompted twice if empty)")
	cmd.Flags().StringVar(&role, "role", model.RoleUser, "requested role (user or admin)")
	cmd.MarkFlagRequired("name")
	cmd.MarkFlagRequired("email")
	return cmd
}

func newLogoutCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the stored session token",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a.provider.Logout()
			fmt.Fprintln(cmd.OutOrStdout(), "Logged out")
			return nil
		},
	}
}

func newWhoamiCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the signed-in account",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.requireSession(); err != nil {
				return err
			}
			printIdentity(cmd, "Logged in as", a.provider.Snapshot().User)
			return nil
		},
	}
}
