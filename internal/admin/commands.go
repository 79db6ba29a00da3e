package admin

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/dmitrijs2005/lawhelper/internal/common"
	"github.com/dmitrijs2005/lawhelper/internal/logging"
	"github.com/dmitrijs2005/lawhelper/internal/server/config"
	"github.com/dmitrijs2005/lawhelper/internal/server/medimport"
	"github.com/dmitrijs2005/lawhelper/internal/server/services"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

// readPassword is a test seam for term.ReadPassword.
var readPassword = term.ReadPassword

type rootOptions struct {
	configPath string
	dsn        string
	debug      bool
}

// NewRootCommand builds the admin CLI. open connects to the database for
// every command that needs it.
func NewRootCommand(open Opener) *cobra.Command {
	opts := &rootOptions{}

	root := &cobra.Command{
		Use:           "lawhelper-admin",
		Short:         "Operator tasks for the LawHelper backend",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVarP(&opts.configPath, "config", "c", "", "YAML or JSON config file")
	root.PersistentFlags().StringVar(&opts.dsn, "dsn", "", "PostgreSQL DSN (overrides config and DATABASE_URL)")
	root.PersistentFlags().BoolVar(&opts.debug, "debug", false, "verbose logging")

	root.AddCommand(
		newMigrateCommand(opts, open),
		newCreateAccountCommand(opts, open),
		newImportMedicalCommand(opts, open),
		newPurgeSessionsCommand(opts, open),
	)
	return root
}

// withBackend loads the config, opens the backend and runs fn.
func withBackend(cmd *cobra.Command, opts *rootOptions, open Opener, fn func(ctx context.Context, b Backend) error) error {
	var args []string
	if opts.configPath != "" {
		args = []string{"-c", opts.configPath}
	}
	cfg, err := config.LoadConfig(args)
	if err != nil {
		return fmt.Errorf("config error: %w", err)
	}
	if opts.dsn != "" {
		cfg.DatabaseDSN = opts.dsn
	}

	logger, zl, err := logging.New(opts.debug || cfg.Debug)
	if err != nil {
		return err
	}
	defer func() { _ = zl.Sync() }()

	ctx := cmd.Context()
	b, err := open(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer func() {
		if err := b.Close(); err != nil {
			logger.Warn(ctx, "db close error", "error", err)
		}
	}()

	return fn(ctx, b)
}

func newMigrateCommand(opts *rootOptions, open Opener) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending database migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withBackend(cmd, opts, open, func(ctx context.Context, b Backend) error {
				if err := b.Migrate(ctx); err != nil {
					return fmt.Errorf("migrations failed: %w", err)
				}
				fmt.Fprintln(cmd.OutOrStdout(), "migrations applied")
				return nil
			})
		},
	}
}

func newCreateAccountCommand(opts *rootOptions, open Opener) *cobra.Command {
	var (
		name          string
		email         string
		passwordStdin bool
	)
	cmd := &cobra.Command{
		Use:   "create-account",
		Short: "Create an account; the password is read from the terminal",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			password, err := promptPassword(cmd, passwordStdin)
			if err != nil {
				return err
			}
			defer common.WipeByteArray(password)

			in := services.RegisterInput{Name: name, Email: email, Password: string(password)}
			if err := in.Validate(); err != nil {
				return err
			}

			return withBackend(cmd, opts, open, func(ctx context.Context, b Backend) error {
				account, err := b.CreateAccount(ctx, in)
				if errors.Is(err, common.ErrAlreadyExists) {
					return fmt.Errorf("an account with email %s already exists", in.Email)
				}
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "account created: %s\n", account.ID)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "display name")
	cmd.Flags().StringVar(&email, "email", "", "login email")
	cmd.Flags().BoolVar(&passwordStdin, "password-stdin", false, "read the password from stdin instead of the terminal")
	_ = cmd.MarkFlagRequired("name")
	_ = cmd.MarkFlagRequired("email")
	return cmd
}

func promptPassword(cmd *cobra.Command, fromStdin bool) ([]byte, error) {
	if fromStdin {
		line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
		if err != nil && !(errors.Is(err, io.EOF) && line != "") {
			return nil, fmt.Errorf("read password: %w", err)
		}
		return []byte(strings.TrimRight(line, "\r\n")), nil
	}

	fmt.Fprint(cmd.ErrOrStderr(), "Enter password: ")
	pw, err := readPassword(int(os.Stdin.Fd()))
	fmt.Fprintln(cmd.ErrOrStderr())
	if err != nil {
		return nil, fmt.Errorf("read password: %w", err)
	}
	return pw, nil
}

func newImportMedicalCommand(opts *rootOptions, open Opener) *cobra.Command {
	var accountID, caseID, file string
	cmd := &cobra.Command{
		Use:   "import-medical",
		Short: "Import a medical billing sheet (.xlsx or .csv) into a case",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			f, err := os.Open(file)
			if err != nil {
				return err
			}
			defer f.Close()

			records, err := medimport.Parse(f, file)
			if err != nil {
				return fmt.Errorf("%s: %w", file, err)
			}

			return withBackend(cmd, opts, open, func(ctx context.Context, b Backend) error {
				n, err := b.ImportMedical(ctx, accountID, caseID, records)
				if errors.Is(err, common.ErrorNotFound) {
					return fmt.Errorf("case %s not found for account %s", caseID, accountID)
				}
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "imported %d records\n", n)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&accountID, "account", "", "owning account id")
	cmd.Flags().StringVar(&caseID, "case", "", "case id")
	cmd.Flags().StringVar(&file, "file", "", "path to the .xlsx or .csv sheet")
	for _, name := range []string{"account", "case", "file"} {
		_ = cmd.MarkFlagRequired(name)
	}
	return cmd
}

func newPurgeSessionsCommand(opts *rootOptions, open Opener) *cobra.Command {
	return &cobra.Command{
		Use:   "purge-sessions",
		Short: "Delete expired sessions",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withBackend(cmd, opts, open, func(ctx context.Context, b Backend) error {
				n, err := b.PurgeSessions(ctx)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "purged %d sessions\n", n)
				return nil
			})
		},
	}
}
