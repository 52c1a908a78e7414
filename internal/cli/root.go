// Package cli implements the libctl command tree. It is the UI collaborator
// of the core: commands read session state, consult the access policy before
// anything protected, and render what the services return.
package cli

import (
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/openshelf/libctl/internal/core/ports"
	"github.com/openshelf/libctl/internal/core/service"
	"github.com/openshelf/libctl/internal/infrastructure/config"
	"github.com/openshelf/libctl/internal/infrastructure/rest"
	"github.com/openshelf/libctl/internal/infrastructure/storage"
	"github.com/openshelf/libctl/pkg/logger"
)

// App holds the wired client: one REST client, one session store, one
// availability reconciler per process.
type App struct {
	cfg     *config.Config
	log     zerolog.Logger
	client  *rest.Client
	session ports.SessionService
	recon   *service.AvailabilityReconciler
	circ    *service.CirculationService
}

// NewRootCmd builds the libctl command tree. The app is wired and the
// session restored in PersistentPreRunE, so every subcommand starts with
// settled session state and the guards never see a loading session.
func NewRootCmd() *cobra.Command {
	app := &App{}

	root := &cobra.Command{
		Use:           "libctl",
		Short:         "Command-line client for the library catalog service",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return app.wire(cmd)
		},
	}

	root.AddCommand(
		newLoginCmd(app),
		newLogoutCmd(app),
		newRegisterCmd(app),
		newWhoamiCmd(app),
		newBooksCmd(app),
		newBorrowCmd(app),
		newReturnCmd(app),
		newLoansCmd(app),
		newUsersCmd(app),
	)

	return root
}

func (a *App) wire(cmd *cobra.Command) error {
	ctx := cmd.Context()

	cfg, err := config.Load(ctx)
	if err != nil {
		return err
	}
	log := logger.Init(logger.Options{Level: cfg.LogLevel, Pretty: cfg.LogPretty})

	store := storage.NewFileStore(cfg.StateDir)
	client := rest.NewClient(cfg.APIURL, cfg.HTTPTimeout, log)
	session := service.NewSessionService(client, store, log)

	// The request layer reads the token per request and clears the session
	// the moment the server answers 401.
	client.SetTokenSource(store.Token)
	client.SetUnauthorizedHook(session.Invalidate)

	recon := service.NewAvailabilityReconciler(log)

	a.cfg = cfg
	a.log = log
	a.client = client
	a.session = session
	a.recon = recon
	a.circ = service.NewCirculationService(client, client, session, recon, log)

	// Must settle before any protected command runs.
	session.Initialize(ctx)
	return nil
}

// requireAccess evaluates the guard for the current session and returns an
// error describing where a rejected caller should go.
func (a *App) requireAccess(req service.Requirement) error {
	switch service.Evaluate(a.session.Snapshot(), req) {
	case service.Allow:
		return nil
	case service.RedirectHome:
		return fmt.Errorf("this command requires the librarian role")
	default:
		return fmt.Errorf("not logged in; run `libctl login` first")
	}
}

// Execute runs the command tree and maps failure to a non-zero exit.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
