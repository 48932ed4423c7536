package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

func newLoginCmd(rt *runtime) *cobra.Command {
	var email string
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in as a reviewer",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var err error
			if email == "" {
				if email, err = rt.prompt("Email: "); err != nil {
					return err
				}
			}
			password, err := rt.secret("Password: ")
			if err != nil {
				return err
			}
			if email == "" || password == "" {
				return errors.New("email and password are required")
			}

			creds, err := rt.client.Login(cmd.Context(), email, password)
			if err != nil {
				return describe(err)
			}
			fmt.Fprintf(rt.streams.Out, "Signed in as %s (%s)\n", creds.User.Email, creds.User.Role)
			return nil
		},
	}
	cmd.Flags().StringVarP(&email, "email", "e", "", "Account e-mail")
	return cmd
}

func newLogoutCmd(rt *runtime) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the stored session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := rt.client.Logout(); err != nil {
				return err
			}
			fmt.Fprintln(rt.streams.Out, "Signed out")
			return nil
		},
	}
}

func newWhoamiCmd(rt *runtime) *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the signed-in account",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			user, err := rt.client.Me(cmd.Context())
			if err != nil {
				return describe(err)
			}
			fmt.Fprintf(rt.streams.Out, "%s (%s)\n", user.Email, user.Role)
			return nil
		},
	}
}
