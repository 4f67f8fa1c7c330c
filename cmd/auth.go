package cmd

import (
	"errors"
	"fmt"

	"github.com/theirongolddev/tripbudget/internal/auth"
	"github.com/theirongolddev/tripbudget/internal/form"
	"github.com/theirongolddev/tripbudget/internal/kv"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"
)

var (
	flagAuthName     string
	flagAuthEmail    string
	flagAuthPassword string
)

var authCmd = &cobra.Command{
	Use:   "auth",
	Short: "Manage the signed-in traveler",
}

var signupCmd = &cobra.Command{
	Use:   "signup",
	Short: "Create an account and sign in",
	RunE:  runSignup,
}

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Sign in with email and password",
	RunE:  runLogin,
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Sign out",
	RunE:  runLogout,
}

var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Show the signed-in traveler",
	RunE:  runWhoami,
}

func init() {
	for _, c := range []*cobra.Command{signupCmd, loginCmd} {
		c.Flags().StringVar(&flagAuthEmail, "email", "", "Email address")
		c.Flags().StringVar(&flagAuthPassword, "password", "", "Password (prompted when omitted)")
	}
	signupCmd.Flags().StringVar(&flagAuthName, "name", "", "Full name")

	authCmd.AddCommand(signupCmd, loginCmd, logoutCmd, whoamiCmd)
	rootCmd.AddCommand(authCmd)
}

// promptCredentials asks for whatever the flags left empty.
func promptCredentials(name, email, password *string, withName bool) error {
	var fields []huh.Field
	if withName && *name == "" {
		fields = append(fields, huh.NewInput().Title("Full Name").Value(name).Validate(form.Name))
	}
	if *email == "" {
		fields = append(fields, huh.NewInput().Title("Email").Value(email).Validate(form.Email))
	}
	if *password == "" {
		validate := form.Password
		if withName {
			validate = form.NewPassword
		}
		fields = append(fields, huh.NewInput().
			Title("Password").
			EchoMode(huh.EchoModePassword).
			Value(password).
			Validate(validate))
	}
	if len(fields) == 0 {
		return nil
	}
	if !interactive() {
		return errors.New("missing credentials: pass --email and --password")
	}
	return huh.NewForm(huh.NewGroup(fields...)).WithTheme(huh.ThemeCharm()).Run()
}

func authResultErr(res auth.Result) error {
	if res.Success {
		return nil
	}
	return errors.New(res.Error)
}

func runSignup(cmd *cobra.Command, _ []string) error {
	name, email, password := flagAuthName, flagAuthEmail, flagAuthPassword
	if err := promptCredentials(&name, &email, &password, true); err != nil {
		return err
	}
	if errs := form.ValidateSignup(name, email, password); !errs.Empty() {
		return fmt.Errorf("invalid signup: %w", errs)
	}

	e, err := newEnv(cmd.Context(), cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	defer e.Close()

	progressf("  Creating account...\n")
	if err := authResultErr(e.auth.Signup(cmd.Context(), name, email, password)); err != nil {
		return err
	}
	u, _ := e.auth.CurrentUser()
	fmt.Fprintf(cmd.OutOrStdout(), "  Welcome, %s! You are signed in as %s.\n", u.FirstName(), u.Email)
	return nil
}

func runLogin(cmd *cobra.Command, _ []string) error {
	email, password := flagAuthEmail, flagAuthPassword
	if err := promptCredentials(nil, &email, &password, false); err != nil {
		return err
	}
	if errs := form.ValidateLogin(email, password); !errs.Empty() {
		return fmt.Errorf("invalid login: %w", errs)
	}

	e, err := newEnv(cmd.Context(), cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	defer e.Close()

	progressf("  Signing in...\n")
	if err := authResultErr(e.auth.Login(cmd.Context(), email, password)); err != nil {
		return err
	}
	u, _ := e.auth.CurrentUser()
	fmt.Fprintf(cmd.OutOrStdout(), "  Welcome back, %s.\n", u.FirstName())
	return nil
}

func runLogout(cmd *cobra.Command, _ []string) error {
	e, err := newEnv(cmd.Context(), cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	defer e.Close()

	if !e.auth.IsAuthenticated() {
		fmt.Fprintln(cmd.OutOrStdout(), "  Not signed in.")
		return nil
	}
	if err := e.auth.Logout(cmd.Context()); err != nil {
		return fmt.Errorf("signing out: %w", err)
	}
	fmt.Fprintln(cmd.OutOrStdout(), "  Signed out.")
	return nil
}

func runWhoami(cmd *cobra.Command, _ []string) error {
	e, err := newEnv(cmd.Context(), cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	defer e.Close()

	u, ok := e.auth.CurrentUser()
	if !ok {
		fmt.Fprintln(cmd.OutOrStdout(), "  Not signed in. Run `tripbudget auth login`.")
		return nil
	}
	fmt.Fprintf(cmd.OutOrStdout(), "  %s <%s>\n", u.Name, u.Email)
	if st, ok := e.session.(kv.Timestamped); ok {
		if since, found, err := st.UpdatedAt(cmd.Context(), auth.SessionKey); err == nil && found {
			fmt.Fprintf(cmd.OutOrStdout(), "  Signed in since %s\n", since.Local().Format("Jan 2, 2006 15:04"))
		}
	}
	return nil
}
