/*
main.go - CE Tracker operations CLI

PURPOSE:
  Command-line companion to the server for jobs that should not go
  through the HTTP API: bootstrapping the first admin account, bulk
  importing a user's CE history from CSV, and pulling a backup file
  without a browser session.

COMMANDS:
  create-admin  Create an administrator account
  import-csv    Import CE records from a CSV file into a user's history
  backup        Write a user's full backup JSON to disk

GLOBAL FLAGS:
  --db  SQLite database path (default: cetrack.db, or CETRACK_DB_PATH)

EXAMPLES:
  # First-run bootstrap on a fresh database
  cectl --db=./data/cetrack.db create-admin \
      --username=ops --email=ops@example.com --password=changeme1

  # Load a spreadsheet export into an existing account
  cectl import-csv --user=advisor@example.com ./history.csv

  # Nightly backup of one account
  cectl backup --user=advisor@example.com -o /backups/advisor.json

SEE ALSO:
  - transfer/csv.go: the CSV import rules (same as the API upload)
  - transfer/backup.go: the backup format
  - cmd/server/main.go: the HTTP server
*/
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/crypto/bcrypt"

	"github.com/fairhaven/cetrack/ce"
	"github.com/fairhaven/cetrack/store/sqlite"
	"github.com/fairhaven/cetrack/transfer"
)

var (
	dbPath string

	// create-admin flags
	adminUsername string
	adminEmail    string
	adminPassword string

	// import-csv and backup flags
	userEmail string
	backupOut string
)

var rootCmd = &cobra.Command{
	Use:   "cectl",
	Short: "Operations tool for the CE Tracker database",
	Long: `cectl works directly against the CE Tracker SQLite database for
jobs that do not belong in the HTTP API: creating the first admin
account, bulk-importing CE history, and taking per-user backups.

The server does not need to be stopped; the database handles
concurrent access.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

var createAdminCmd = &cobra.Command{
	Use:   "create-admin",
	Short: "Create an administrator account",
	Long: `Creates a user with admin rights. Meant for bootstrapping a fresh
deployment; after the first admin exists, further admins are granted
through the admin API.`,
	RunE: runCreateAdmin,
}

var importCSVCmd = &cobra.Command{
	Use:   "import-csv <file>",
	Short: "Import CE records from a CSV file",
	Long: `Imports CE records into the account identified by --user. The CSV
must carry Title and Hours columns; Date Completed, Provider,
Category, and Description are picked up when present. Rows that are
unusable or duplicates of existing records are skipped with a note,
the same as an upload through the web interface.`,
	Args: cobra.ExactArgs(1),
	RunE: runImportCSV,
}

var backupCmd = &cobra.Command{
	Use:   "backup",
	Short: "Write a user's backup JSON to disk",
	Long: `Exports the account identified by --user as backup JSON: profile,
designations, and every CE record. The file restores through the web
interface or the API. Use -o - to write to stdout.`,
	RunE: runBackup,
}

func init() {
	defaultDB := "cetrack.db"
	if v, ok := os.LookupEnv("CETRACK_DB_PATH"); ok && v != "" {
		defaultDB = v
	}
	rootCmd.PersistentFlags().StringVar(&dbPath, "db", defaultDB, "SQLite database path")

	createAdminCmd.Flags().StringVar(&adminUsername, "username", "", "admin username")
	createAdminCmd.Flags().StringVar(&adminEmail, "email", "", "admin email address")
	createAdminCmd.Flags().StringVar(&adminPassword, "password", "", "admin password (min 6 characters)")
	createAdminCmd.MarkFlagRequired("username")
	createAdminCmd.MarkFlagRequired("email")
	createAdminCmd.MarkFlagRequired("password")

	importCSVCmd.Flags().StringVar(&userEmail, "user", "", "email of the account to import into")
	importCSVCmd.MarkFlagRequired("user")

	backupCmd.Flags().StringVar(&userEmail, "user", "", "email of the account to back up")
	backupCmd.Flags().StringVarP(&backupOut, "out", "o", "", "output path (default: suggested filename, - for stdout)")
	backupCmd.MarkFlagRequired("user")

	rootCmd.AddCommand(createAdminCmd)
	rootCmd.AddCommand(importCSVCmd)
	rootCmd.AddCommand(backupCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "cectl:", err)
		os.Exit(1)
	}
}

func runCreateAdmin(cmd *cobra.Command, args []string) error {
	username := strings.TrimSpace(adminUsername)
	email := strings.TrimSpace(adminEmail)
	if username == "" {
		return fmt.Errorf("username must not be empty")
	}
	if email == "" || !strings.Contains(email, "@") {
		return fmt.Errorf("email %q does not look like an email address", email)
	}
	if len(adminPassword) < 6 {
		return fmt.Errorf("password must be at least 6 characters")
	}

	st, err := openStore()
	if err != nil {
		return err
	}
	defer st.Close()

	hash, err := bcrypt.GenerateFromPassword([]byte(adminPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}

	user := ce.User{
		Username:     username,
		Email:        email,
		PasswordHash: string(hash),
		IsAdmin:      true,
	}
	if err := st.CreateUser(context.Background(), &user); err != nil {
		switch {
		case errors.Is(err, ce.ErrDuplicateUsername):
			return fmt.Errorf("username %q is already taken", username)
		case errors.Is(err, ce.ErrDuplicateEmail):
			return fmt.Errorf("email %q is already registered", email)
		}
		return fmt.Errorf("create user: %w", err)
	}

	fmt.Printf("Created admin account %q (%s)\n", user.Username, user.Email)
	return nil
}

func runImportCSV(cmd *cobra.Command, args []string) error {
	st, err := openStore()
	if err != nil {
		return err
	}
	defer st.Close()

	ctx := context.Background()
	user, err := findUser(ctx, st, userEmail)
	if err != nil {
		return err
	}

	f, err := os.Open(args[0])
	if err != nil {
		return fmt.Errorf("open csv: %w", err)
	}
	defer f.Close()

	importer := &transfer.CSVImporter{Records: st}
	result, err := importer.Import(ctx, user.ID, f, ce.Today())
	if err != nil {
		return fmt.Errorf("import failed: %w", err)
	}

	fmt.Println(result.Summary("imported"))
	for _, note := range result.Notes {
		fmt.Println("  -", note)
	}
	return nil
}

func runBackup(cmd *cobra.Command, args []string) error {
	st, err := openStore()
	if err != nil {
		return err
	}
	defer st.Close()

	ctx := context.Background()
	user, err := findUser(ctx, st, userEmail)
	if err != nil {
		return err
	}

	exporter := &transfer.BackupExporter{Users: st, Assignments: st, Records: st}
	data, filename, err := exporter.Export(ctx, user.ID, time.Now())
	if err != nil {
		return fmt.Errorf("export failed: %w", err)
	}

	out := backupOut
	if out == "-" {
		_, err := os.Stdout.Write(data)
		return err
	}
	if out == "" {
		out = filename
	}
	if err := os.WriteFile(out, data, 0o600); err != nil {
		return fmt.Errorf("write backup: %w", err)
	}

	fmt.Printf("Wrote backup for %q to %s (%d bytes)\n", user.Username, out, len(data))
	return nil
}

func openStore() (*sqlite.Store, error) {
	st, err := sqlite.New(dbPath)
	if err != nil {
		return nil, fmt.Errorf("open database %s: %w", dbPath, err)
	}
	return st, nil
}

func findUser(ctx context.Context, st *sqlite.Store, email string) (ce.User, error) {
	user, err := st.UserByEmail(ctx, strings.TrimSpace(email))
	if errors.Is(err, ce.ErrUserNotFound) {
		return ce.User{}, fmt.Errorf("no account with email %q", email)
	}
	if err != nil {
		return ce.User{}, fmt.Errorf("look up user: %w", err)
	}
	return user, nil
}
