package admin

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/lawhelper/internal/common"
	"github.com/dmitrijs2005/lawhelper/internal/logging"
	"github.com/dmitrijs2005/lawhelper/internal/server/config"
	"github.com/dmitrijs2005/lawhelper/internal/server/models"
	"github.com/dmitrijs2005/lawhelper/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/lawhelper/internal/server/services"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeBackend struct {
	migrated   bool
	created    []services.RegisterInput
	createErr  error
	imported   []*models.MedicalRecord
	importErr  error
	importCase string
	purged     int64
	closed     bool
}

func (b *fakeBackend) Migrate(context.Context) error { b.migrated = true; return nil }

func (b *fakeBackend) CreateAccount(_ context.Context, in services.RegisterInput) (*models.Account, error) {
	if b.createErr != nil {
		return nil, b.createErr
	}
	b.created = append(b.created, in)
	return &models.Account{ID: "acc-1", Name: in.Name, Email: in.Email}, nil
}

func (b *fakeBackend) ImportMedical(_ context.Context, _, caseID string, records []*models.MedicalRecord) (int, error) {
	if b.importErr != nil {
		return 0, b.importErr
	}
	b.importCase = caseID
	b.imported = records
	return len(records), nil
}

func (b *fakeBackend) PurgeSessions(context.Context) (int64, error) { return b.purged, nil }

func (b *fakeBackend) Close() error { b.closed = true; return nil }

func run(t *testing.T, b *fakeBackend, stdin string, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	root := NewRootCommand(func(context.Context, *config.Config, logging.Logger) (Backend, error) { return b, nil })
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetIn(strings.NewReader(stdin))
	root.SetArgs(args)
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func TestMigrate(t *testing.T) {
	b := &fakeBackend{}
	out, err := run(t, b, "", "migrate")

	require.NoError(t, err)
	assert.True(t, b.migrated)
	assert.True(t, b.closed)
	assert.Contains(t, out, "migrations applied")
}

func TestCreateAccount_PasswordFromStdin(t *testing.T) {
	b := &fakeBackend{}
	out, err := run(t, b, "correct horse\n", "create-account", "--name", "Jane Doe", "--email", "jane@example.com", "--password-stdin")

	require.NoError(t, err)
	require.Len(t, b.created, 1)
	assert.Equal(t, "correct horse", b.created[0].Password)
	assert.Contains(t, out, "account created: acc-1")
}

func TestCreateAccount_PasswordFromTerminal(t *testing.T) {
	old := readPassword
	t.Cleanup(func() { readPassword = old })
	readPassword = func(int) ([]byte, error) { return []byte("terminal secret"), nil }

	b := &fakeBackend{}
	_, err := run(t, b, "", "create-account", "--name", "Jane Doe", "--email", "jane@example.com")

	require.NoError(t, err)
	assert.Equal(t, "terminal secret", b.created[0].Password)
}

func TestCreateAccount_Errors(t *testing.T) {
	t.Run("short password never reaches the database", func(t *testing.T) {
		b := &fakeBackend{}
		_, err := run(t, b, "short\n", "create-account", "--name", "Jane", "--email", "jane@example.com", "--password-stdin")
		assert.True(t, errors.Is(err, common.ErrorValidation))
		assert.False(t, b.closed)
	})

	t.Run("duplicate email", func(t *testing.T) {
		b := &fakeBackend{createErr: common.ErrAlreadyExists}
		_, err := run(t, b, "correct horse\n", "create-account", "--name", "Jane", "--email", "jane@example.com", "--password-stdin")
		assert.EqualError(t, err, "an account with email jane@example.com already exists")
	})

	t.Run("missing flag", func(t *testing.T) {
		_, err := run(t, &fakeBackend{}, "", "create-account", "--name", "Jane")
		assert.ErrorContains(t, err, `"email" not set`)
	})

	t.Run("terminal read fails", func(t *testing.T) {
		old := readPassword
		t.Cleanup(func() { readPassword = old })
		readPassword = func(int) ([]byte, error) { return nil, errors.New("not a terminal") }

		_, err := run(t, &fakeBackend{}, "", "create-account", "--name", "Jane", "--email", "jane@example.com")
		assert.ErrorContains(t, err, "read password: not a terminal")
	})
}

func TestImportMedical(t *testing.T) {
	path := filepath.Join(t.TempDir(), "billing.csv")
	require.NoError(t, os.WriteFile(path, []byte("provider,charged\nMercy Hospital,$120\nDr. Patel,80\n"), 0o600))

	b := &fakeBackend{}
	out, err := run(t, b, "", "import-medical", "--account", "acc-1", "--case", "case-9", "--file", path)

	require.NoError(t, err)
	assert.Equal(t, "case-9", b.importCase)
	require.Len(t, b.imported, 2)
	assert.Equal(t, "Dr. Patel", b.imported[1].ProviderName)
	assert.Contains(t, out, "imported 2 records")
}

func TestImportMedical_Errors(t *testing.T) {
	dir := t.TempDir()
	good := filepath.Join(dir, "billing.csv")
	require.NoError(t, os.WriteFile(good, []byte("provider\nMercy\n"), 0o600))
	bad := filepath.Join(dir, "billing.txt")
	require.NoError(t, os.WriteFile(bad, []byte("provider\nMercy\n"), 0o600))

	_, err := run(t, &fakeBackend{importErr: common.ErrorNotFound}, "", "import-medical", "--account", "a", "--case", "c", "--file", good)
	assert.EqualError(t, err, "case c not found for account a")

	_, err = run(t, &fakeBackend{}, "", "import-medical", "--account", "a", "--case", "c", "--file", bad)
	assert.ErrorContains(t, err, "medical import accepts")

	_, err = run(t, &fakeBackend{}, "", "import-medical", "--account", "a", "--case", "c", "--file", filepath.Join(dir, "missing.csv"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestPurgeSessions(t *testing.T) {
	out, err := run(t, &fakeBackend{purged: 4}, "", "purge-sessions")

	require.NoError(t, err)
	assert.Contains(t, out, "purged 4 sessions")
}

func TestOpenerError(t *testing.T) {
	root := NewRootCommand(func(context.Context, *config.Config, logging.Logger) (Backend, error) {
		return nil, errors.New("db ping error: refused")
	})
	root.SetArgs([]string{"purge-sessions"})
	root.SetOut(&bytes.Buffer{})

	assert.EqualError(t, root.ExecuteContext(context.Background()), "db ping error: refused")
}

func TestPostgresBackend_PurgeSessions(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	cfg := &config.Config{}
	cfg.LoadDefaults()
	rm := repomanager.NewPostgresRepositoryManager()
	b := &postgresBackend{db: db, rm: rm, accounts: services.NewAccountService(db, rm, cfg, logging.NewNop())}

	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM sessions WHERE expires_at <= $1`)).
		WithArgs(sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 7))

	n, err := b.PurgeSessions(context.Background())
	require.NoError(t, err)
	assert.EqualValues(t, 7, n)
	require.NoError(t, mock.ExpectationsWereMet())
}
