package cli

import (
	"context"
	"errors"
	"io"
	"strings"

	"github.com/dmitrijs2005/moviekeeper/internal/client/config"
	"github.com/dmitrijs2005/moviekeeper/internal/models"
	"github.com/spf13/cobra"
)

// newApp is a test seam for NewApp.
var newApp = NewApp

// NewRootCommand builds the command tree. The App is created once flags are
// parsed; cleanup releases it and must be called after Execute.
func NewRootCommand() (root *cobra.Command, cleanup func()) {
	loader := config.NewLoader()
	var app *App

	get := func() *App { return app }
	cleanup = func() {
		if app != nil {
			app.Close()
			app = nil
		}
	}

	root = &cobra.Command{
		Use:           "moviekeeper",
		Short:         "Offline-first movie catalog client",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loader.Load()
			if err != nil {
				return err
			}
			app, err = newApp(cmd.Context(), cfg, cmd.InOrStdin(), cmd.OutOrStdout())
			return err
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			return get().REPL(cmd.Context())
		},
	}
	loader.RegisterFlags(root.PersistentFlags())

	root.AddCommand(
		newAuthCommand("signup", "Create an account and log in", func(a *App) func(context.Context, string) error { return a.SignUp }, get),
		newAuthCommand("login", "Log in", func(a *App) func(context.Context, string) error { return a.Login }, get),
		&cobra.Command{
			Use:   "logout",
			Short: "Forget the stored session",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				return get().Logout(cmd.Context())
			},
		},
		newListCommand(get),
		&cobra.Command{
			Use:   "show <id>",
			Short: "Show one item",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				return get().Show(cmd.Context(), args[0])
			},
		},
		&cobra.Command{
			Use:   "search <query>",
			Short: "Fuzzy search by title",
			Args:  cobra.MinimumNArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				return get().Search(cmd.Context(), strings.Join(args, " "))
			},
		},
		&cobra.Command{
			Use:   "sync",
			Short: "Send queued writes and reload items",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				return get().Sync(cmd.Context())
			},
		},
		&cobra.Command{
			Use:   "repl",
			Short: "Interactive session (default)",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				return get().REPL(cmd.Context())
			},
		},
		newSaveCommand(get),
	)

	return root, cleanup
}

func newAuthCommand(use, short string, action func(*App) func(context.Context, string) error, get func() *App) *cobra.Command {
	var username string
	cmd := &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return action(get())(cmd.Context(), username)
		},
	}
	cmd.Flags().StringVarP(&username, "user", "u", "", "username (prompted when empty)")
	return cmd
}

func newSaveCommand(get func() *App) *cobra.Command {
	var (
		id, title, release, photo string
		rented                    bool
		rentals                   int
		lat, lng                  float64
	)

	cmd := &cobra.Command{
		Use:   "save",
		Short: "Create an item, or update it with --id",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a := get()
			fl := cmd.Flags()

			var m models.Movie
			if id != "" {
				if cur, ok := a.engine.Store().Find(id); ok {
					m = cur
				}
				m.ID = id
			}
			if fl.Changed("title") {
				m.Title = title
			}
			if fl.Changed("release-date") {
				d, err := parseDate(release)
				if err != nil {
					return err
				}
				m.ReleaseDate = d
			}
			if fl.Changed("rented") {
				m.Rented = rented
			}
			if fl.Changed("rentals") {
				m.RentalCount = rentals
			}
			if fl.Changed("lat") {
				m.Lat = lat
			}
			if fl.Changed("lng") {
				m.Lng = lng
			}

			return a.Save(cmd.Context(), m, photo)
		},
	}

	fl := cmd.Flags()
	fl.StringVar(&id, "id", "", "identifier of the item to update")
	fl.StringVarP(&title, "title", "t", "", "title")
	fl.StringVar(&release, "release-date", "", "release date, YYYY-MM-DD")
	fl.BoolVar(&rented, "rented", false, "currently rented")
	fl.IntVar(&rentals, "rentals", 0, "number of rentals")
	fl.Float64Var(&lat, "lat", 0, "latitude")
	fl.Float64Var(&lng, "lng", 0, "longitude")
	fl.StringVar(&photo, "photo", "", "photo file to upload")

	return cmd
}

// Execute runs the CLI with the process arguments.
func Execute(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer) error {
	root, cleanup := NewRootCommand()
	defer cleanup()

	root.SetArgs(args)
	root.SetIn(stdin)
	root.SetOut(stdout)
	root.SetErr(stderr)

	err := root.ExecuteContext(ctx)
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

func newListCommand(get func() *App) *cobra.Command {
	var rentals string
	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"l"},
		Short:   "List items",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return get().List(cmd.Context(), rentals)
		},
	}
	cmd.Flags().StringVar(&rentals, "rentals", "any", "rental count filter: <=N, >N or any")
	return cmd
}
