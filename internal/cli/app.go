// Package cli implements the classifieds command line client on top of the
// client-side components.
package cli

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/Abdurahmanit/GroupProject/classifieds/internal/client/forms"
	"github.com/Abdurahmanit/GroupProject/classifieds/internal/client/session"
	"github.com/Abdurahmanit/GroupProject/classifieds/internal/domain"
	"github.com/Abdurahmanit/GroupProject/classifieds/internal/platform/logger"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// App carries the collaborators shared by all commands.
type App struct {
	Backend domain.Backend
	Session *session.Store
	Forms   *forms.Service
	Out     io.Writer
	Log     *logger.Logger
}

// NewApp wires a session store and the form service around backend.
func NewApp(backend domain.Backend, storage session.Storage, out io.Writer, log *logger.Logger) *App {
	app := &App{Backend: backend, Out: out, Log: log.Named("cli")}
	app.Session = session.NewStore(storage, backend, session.NavigatorFunc(func() {
		app.Log.Debug("Session ended")
	}), log)
	app.Forms = forms.NewService(backend, app.Session, log)
	return app
}

func (a *App) printf(format string, args ...interface{}) {
	fmt.Fprintf(a.Out, format, args...)
}

// NewRootCmd builds the command tree.
func NewRootCmd(app *App) *cobra.Command {
	root := &cobra.Command{
		Use:           "classifieds",
		Short:         "Browse and manage classified advertisements",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if err := app.Session.Init(cmd.Context()); err != nil && !errors.Is(err, session.ErrSuperseded) {
				app.Log.Warn("Stored session could not be restored", zap.Error(err))
			}
			return nil
		},
	}
	root.SetOut(app.Out)

	root.AddCommand(
		newLoginCmd(app),
		newLogoutCmd(app),
		newWhoamiCmd(app),
		newRegisterCmd(app),
		newProfileCmd(app),
		newSearchCmd(app),
		newLocationsCmd(app),
		newCategoriesCmd(app),
		newAdCmd(app),
		newAdminCmd(app),
	)
	return root
}

// userError is shown to the user verbatim.
type userError struct {
	msg   string
	cause error
}

func (e *userError) Error() string { return e.msg }
func (e *userError) Unwrap() error { return e.cause }

// Message turns a command error into the text shown to the user.
func Message(err error) string {
	var uerr *userError
	if errors.As(err, &uerr) {
		return uerr.msg
	}
	var verrs forms.ValidationErrors
	if errors.As(err, &verrs) {
		fields := make([]string, 0, len(verrs))
		for field := range verrs {
			fields = append(fields, field)
		}
		sort.Strings(fields)
		var b strings.Builder
		b.WriteString("Please fix the following fields:")
		for _, field := range fields {
			fmt.Fprintf(&b, "\n  %s: %s", field, verrs[field])
		}
		return b.String()
	}
	return domain.UserMessage(err)
}

func readUpload(path string) (domain.ImageUpload, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return domain.ImageUpload{}, fmt.Errorf("%w: cannot read %s", domain.ErrInvalidInput, path)
	}
	return domain.ImageUpload{FileName: filepath.Base(path), Data: data}, nil
}

func requireSession(app *App) (string, error) {
	token := app.Session.Token()
	if token == "" {
		return "", &userError{msg: "Please log in first.", cause: domain.ErrUnauthorized}
	}
	return token, nil
}

func parseID(arg string) (int64, error) {
	id, err := strconv.ParseInt(arg, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("%w: %q is not a valid id", domain.ErrInvalidInput, arg)
	}
	return id, nil
}
