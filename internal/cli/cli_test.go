package cli

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/caerus-app/caerus-backend/internal/domain"
	"github.com/caerus-app/caerus-backend/internal/repo"
)

func TestVersionPrintsBuildVersion(t *testing.T) {
	stdout, _, err := executeCLI(t, "version")
	require.NoError(t, err)
	assert.Equal(t, Version+"\n", stdout)
}

func TestMigrateCreatesSchema(t *testing.T) {
	dbPath := useTempDB(t)

	stdout, _, err := executeCLI(t, "migrate")
	require.NoError(t, err)
	assert.Contains(t, stdout, "migrated")
	assert.Contains(t, stdout, "sqlite")

	db, err := repo.OpenSQLite(dbPath)
	require.NoError(t, err)
	assert.True(t, db.Migrator().HasTable(&domain.User{}))
}

func TestAdminGrantAndRevoke(t *testing.T) {
	dbPath := useTempDB(t)
	_, _, err := executeCLI(t, "migrate")
	require.NoError(t, err)

	db, err := repo.OpenSQLite(dbPath)
	require.NoError(t, err)
	u := &domain.User{ID: "u-admin", FirebaseUID: "fb-admin", Email: "ops@caerus.app", Role: domain.RoleInvestor}
	require.NoError(t, repo.CreateUserWithProfile(context.Background(), db, u, 15))

	stdout, _, err := executeCLI(t, "admin", "grant", "  OPS@caerus.app ")
	require.NoError(t, err)
	assert.Contains(t, stdout, "ops@caerus.app: admin=true")

	got, err := repo.GetUser(context.Background(), db, "u-admin")
	require.NoError(t, err)
	assert.True(t, got.IsAdmin)

	_, _, err = executeCLI(t, "admin", "revoke", "ops@caerus.app")
	require.NoError(t, err)
	got, err = repo.GetUser(context.Background(), db, "u-admin")
	require.NoError(t, err)
	assert.False(t, got.IsAdmin)
}

func TestAdminGrantUnknownEmail(t *testing.T) {
	useTempDB(t)
	_, _, err := executeCLI(t, "migrate")
	require.NoError(t, err)

	_, _, err = executeCLI(t, "admin", "grant", "nobody@caerus.app")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no user with email")
}

func TestAdminGrantRequiresEmail(t *testing.T) {
	_, _, err := executeCLI(t, "admin", "grant")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "accepts 1 arg(s)")
}

func TestPurgeIdempotency(t *testing.T) {
	dbPath := useTempDB(t)
	_, _, err := executeCLI(t, "migrate")
	require.NoError(t, err)

	db, err := repo.OpenSQLite(dbPath)
	require.NoError(t, err)
	ctx := context.Background()
	_, err = repo.CreateIdempotency(ctx, db, "u1", "thread-1", "old", "m1", 201, time.Nanosecond)
	require.NoError(t, err)
	_, err = repo.CreateIdempotency(ctx, db, "u1", "thread-1", "fresh", "m2", 201, time.Hour)
	require.NoError(t, err)
	time.Sleep(5 * time.Millisecond)

	stdout, _, err := executeCLI(t, "purge-idempotency")
	require.NoError(t, err)
	assert.Contains(t, stdout, "removed 1 expired keys")
}

func TestEnvFileIsLoaded(t *testing.T) {
	dir := t.TempDir()
	dbPath := filepath.Join(dir, "fromenv.db")
	envFile := filepath.Join(dir, "test.env")
	require.NoError(t, os.WriteFile(envFile, []byte("DB_PATH="+dbPath+"\n"), 0o600))
	t.Setenv("ENVIRONMENT", "development")
	t.Setenv("DB_DRIVER", "sqlite")
	t.Cleanup(func() { _ = os.Unsetenv("DB_PATH") })

	root := newRootCmd()
	root.SetOut(&bytes.Buffer{})
	root.SetErr(&bytes.Buffer{})
	root.SetArgs([]string{"--env-file", envFile, "migrate"})
	require.NoError(t, root.Execute())

	_, err := os.Stat(dbPath)
	assert.NoError(t, err)
}

func TestMigrateFailsOnBadConfig(t *testing.T) {
	t.Setenv("DB_DRIVER", "mysql")
	_, _, err := executeCLI(t, "migrate")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "load config")
}

// useTempDB points the sqlite driver at a fresh file and returns its path.
func useTempDB(t *testing.T) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), "caerus.db")
	t.Setenv("ENVIRONMENT", "development")
	t.Setenv("DB_DRIVER", "sqlite")
	t.Setenv("DB_PATH", p)
	return p
}

func executeCLI(t *testing.T, args ...string) (string, string, error) {
	t.Helper()

	root := newRootCmd()
	stdout := &bytes.Buffer{}
	stderr := &bytes.Buffer{}
	root.SetOut(stdout)
	root.SetErr(stderr)
	root.SetArgs(append([]string{"--env-file", ""}, args...))

	err := root.Execute()
	return stdout.String(), stderr.String(), err
}
