package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/GTDGit/drapery_api/internal/config"
	"github.com/GTDGit/drapery_api/internal/database"
	"github.com/GTDGit/drapery_api/internal/importer"
	"github.com/GTDGit/drapery_api/internal/repository"
	"github.com/GTDGit/drapery_api/internal/selection"
	"github.com/GTDGit/drapery_api/internal/service"
	"github.com/GTDGit/drapery_api/internal/utils"
)

var migrationsDir string

// migrateCmd applies pending migrations
var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply pending database migrations",
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := connect()
		if err != nil {
			return err
		}
		defer db.Close()
		if err := database.Migrate(db.DB, migrationsDir); err != nil {
			return err
		}
		log.Info().Str("dir", migrationsDir).Msg("migrations applied")
		return nil
	},
}

var dryRun bool

// importCmd loads a vendor price list
var importCmd = &cobra.Command{
	Use:   "import <file.csv|file.xlsx>",
	Short: "Import a vendor price list into the catalog",
	Long: `Import a CSV or Excel price list into the catalog.

The first row must be a header with at least Name and Category columns.
A file with any invalid row is rejected as a whole; use --dry-run to see
the problems without touching the database.`,
	Args: cobra.ExactArgs(1),
	RunE: runImport,
}

func runImport(cmd *cobra.Command, args []string) error {
	path := args[0]
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	if dryRun {
		res := importer.Import(filepath.Base(path), f)
		printImport(cmd, res)
		if res.HasErrors() {
			return utils.ErrInvalidImport
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%d rows would be imported\n", len(res.Items))
		return nil
	}

	db, err := connect()
	if err != nil {
		return err
	}
	defer db.Close()

	svc := service.NewImportService(repository.NewCatalogRepository(db), repository.NewVendorRepository(db), nil)
	res, err := svc.Import(cmd.Context(), filepath.Base(path), f)
	printImport(cmd, res)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%d rows imported\n", res.Imported)
	return nil
}

func printImport(cmd *cobra.Command, res importer.ImportResult) {
	out := cmd.OutOrStdout()
	for _, w := range res.Warnings {
		fmt.Fprintf(out, "warning: %s\n", w)
	}
	for _, e := range res.Errors {
		fmt.Fprintf(out, "error:   %s\n", e)
	}
}

var (
	userEmail    string
	userName     string
	userPassword string
)

// createUserCmd registers a staff account
var createUserCmd = &cobra.Command{
	Use:   "create-user",
	Short: "Create a staff account for the quote editor",
	RunE: func(cmd *cobra.Command, args []string) error {
		if userEmail == "" {
			return errors.New("--email is required")
		}
		password := userPassword
		if password == "" {
			password = os.Getenv("CATALOGCTL_PASSWORD")
		}
		if password == "" {
			return errors.New("--password or CATALOGCTL_PASSWORD is required")
		}

		db, err := connect()
		if err != nil {
			return err
		}
		defer db.Close()

		user, err := service.NewUserAuthService(repository.NewUserRepository(db)).CreateUser(cmd.Context(), userEmail, password, userName)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "created user %d <%s>\n", user.ID, user.Email)
		return nil
	},
}

// treatmentsCmd validates and prints treatment rules
var treatmentsCmd = &cobra.Command{
	Use:   "treatments [rules.yaml]",
	Short: "Validate a treatment rules file and print the resulting tabs",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		resolver := selection.DefaultResolver()
		if len(args) == 1 {
			var err error
			if resolver, err = selection.LoadResolver(args[0]); err != nil {
				return err
			}
		}
		printTreatments(cmd, resolver)
		return nil
	},
}

func printTreatments(cmd *cobra.Command, r *selection.Resolver) {
	out := cmd.OutOrStdout()
	for _, tc := range r.Treatments() {
		var tabs []string
		for _, t := range r.Tabs(tc) {
			tabs = append(tabs, fmt.Sprintf("%s(%s)", t.Label, t.Key))
		}
		fmt.Fprintf(out, "%-16s %s\n", tc, strings.Join(tabs, ", "))
	}
}

func init() {
	migrateCmd.Flags().StringVar(&migrationsDir, "dir", "migrations", "migrations directory")
	importCmd.Flags().BoolVar(&dryRun, "dry-run", false, "parse and validate only")
	createUserCmd.Flags().StringVar(&userEmail, "email", "", "login email")
	createUserCmd.Flags().StringVar(&userName, "name", "", "display name")
	createUserCmd.Flags().StringVar(&userPassword, "password", "", "password (prefer CATALOGCTL_PASSWORD)")
}

func connect() (*sqlx.DB, error) {
	cfg, err := config.LoadDatabase()
	if err != nil {
		return nil, err
	}
	return database.Connect(cfg)
}

