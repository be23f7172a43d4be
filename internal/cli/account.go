package cli

import (
	"errors"
	"os"
	"strings"

	"github.com/Abdurahmanit/GroupProject/classifieds/internal/client/forms"
	"github.com/Abdurahmanit/GroupProject/classifieds/internal/domain"
	"github.com/spf13/cobra"
)

// passwordEnv is read when --password is omitted.
const passwordEnv = "CLASSIFIEDS_PASSWORD"

func password(flag string) string {
	if flag != "" {
		return flag
	}
	return os.Getenv(passwordEnv)
}

func newLoginCmd(app *App) *cobra.Command {
	var email, pass string
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in and remember the session",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			auth, err := app.Backend.Authenticate(ctx, strings.TrimSpace(email), password(pass))
			if err != nil {
				if errors.Is(err, domain.ErrUnauthorized) {
					return &userError{msg: "Invalid email or password.", cause: err}
				}
				return err
			}
			if err := app.Session.Login(ctx, *auth); err != nil {
				return err
			}
			app.printf("Signed in as %s\n", auth.Email)
			return nil
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "account email")
	cmd.Flags().StringVar(&pass, "password", "", "account password (or $"+passwordEnv+")")
	_ = cmd.MarkFlagRequired("email")
	return cmd
}

func newLogoutCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the stored session",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := app.Session.Logout(cmd.Context()); err != nil {
				return err
			}
			app.printf("Signed out\n")
			return nil
		},
	}
}

func newWhoamiCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the signed-in user",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if !app.Session.IsAuthenticated() {
				app.printf("Not signed in\n")
				return nil
			}
			profile := app.Session.Profile()
			if profile == nil {
				id := app.Session.Identity()
				app.printf("%s (id %d)\n", id.Email, id.UserID)
				return nil
			}
			printProfile(app, profile)
			return nil
		},
	}
}

func printProfile(app *App, p *domain.UserProfile) {
	name := strings.TrimSpace(p.FirstName + " " + p.LastName)
	app.printf("%s (id %d)\n", name, p.ID)
	if p.Email != "" {
		app.printf("Email:      %s\n", p.Email)
	}
	if p.Phone != "" {
		app.printf("Phone:      %s\n", p.Phone)
	}
	if len(p.Roles) > 0 {
		app.printf("Roles:      %s\n", strings.Join(p.Roles, ", "))
	}
	app.printf("Active ads: %d\n", p.ActiveAdsCount)
	app.printf("Member since %s\n", p.RegisteredAt.Format(domain.DateLayout))
}

func newRegisterCmd(app *App) *cobra.Command {
	var (
		form   forms.RegistrationForm
		avatar string
	)
	cmd := &cobra.Command{
		Use:   "register",
		Short: "Create a new account",
		RunE: func(cmd *cobra.Command, _ []string) error {
			form.Password = password(form.Password)
			if form.PasswordConfirm == "" {
				form.PasswordConfirm = form.Password
			}
			if avatar != "" {
				upload, err := readUpload(avatar)
				if err != nil {
					return err
				}
				form.Avatar = &upload
			}
			summary, err := app.Forms.Register(cmd.Context(), form)
			if err != nil {
				return err
			}
			app.printf("Account %s created (id %d). You can now log in.\n", summary.Email, summary.ID)
			return nil
		},
	}
	f := cmd.Flags()
	f.StringVar(&form.Email, "email", "", "account email")
	f.StringVar(&form.Password, "password", "", "password, at least 8 characters (or $"+passwordEnv+")")
	f.StringVar(&form.PasswordConfirm, "password-confirm", "", "password confirmation, defaults to --password")
	f.StringVar(&form.FirstName, "first-name", "", "first name")
	f.StringVar(&form.LastName, "last-name", "", "last name")
	f.StringVar(&form.Phone, "phone", "", "contact phone")
	f.Int64Var(&form.CityID, "city", 0, "city id")
	f.StringVar(&avatar, "avatar", "", "path to an avatar image")
	return cmd
}

func newProfileCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "profile [user-id]",
		Short: "Show a user profile, your own by default",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id := app.Session.Identity().UserID
			if len(args) == 1 {
				parsed, err := parseID(args[0])
				if err != nil {
					return err
				}
				id = parsed
			}
			if id == 0 {
				return &userError{msg: "Please log in or pass a user id.", cause: domain.ErrUnauthorized}
			}
			profile, err := app.Backend.GetUserProfile(cmd.Context(), id, app.Session.Token())
			if err != nil {
				return err
			}
			printProfile(app, profile)
			return nil
		},
	}
	cmd.AddCommand(newProfileUpdateCmd(app))
	return cmd
}

func newProfileUpdateCmd(app *App) *cobra.Command {
	var avatar string
	cmd := &cobra.Command{
		Use:   "update",
		Short: "Edit your profile",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if _, err := requireSession(app); err != nil {
				return err
			}
			current := app.Session.Profile()
			if current == nil {
				if err := app.Session.RefreshProfile(cmd.Context()); err != nil {
					return err
				}
				current = app.Session.Profile()
			}
			form := forms.ProfileForm{
				FirstName: current.FirstName,
				LastName:  current.LastName,
				Phone:     current.Phone,
				CityID:    current.CityID,
			}
			f := cmd.Flags()
			if f.Changed("first-name") {
				form.FirstName, _ = f.GetString("first-name")
			}
			if f.Changed("last-name") {
				form.LastName, _ = f.GetString("last-name")
			}
			if f.Changed("phone") {
				form.Phone, _ = f.GetString("phone")
			}
			if f.Changed("city") {
				form.CityID, _ = f.GetInt64("city")
			}
			if avatar != "" {
				upload, err := readUpload(avatar)
				if err != nil {
					return err
				}
				form.Avatar = &upload
			}
			profile, err := app.Forms.UpdateProfile(cmd.Context(), form)
			if err != nil {
				return err
			}
			app.printf("Profile saved\n")
			printProfile(app, profile)
			return nil
		},
	}
	f := cmd.Flags()
	f.String("first-name", "", "first name")
	f.String("last-name", "", "last name")
	f.String("phone", "", "contact phone")
	f.Int64("city", 0, "city id")
	f.StringVar(&avatar, "avatar", "", "path to a new avatar image")
	return cmd
}
