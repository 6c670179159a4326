package sqlite

import (
	"crypto/rand"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestVerifyIntegrityDetectsPageCorruption(t *testing.T) {
	tmpDir := t.TempDir()
	dbPath := filepath.Join(tmpDir, "playout.sqlite")

	db, err := Open(dbPath, DefaultConfig())
	require.NoError(t, err)

	_, err = db.Exec("CREATE TABLE docs (id TEXT PRIMARY KEY, body TEXT);")
	require.NoError(t, err)
	for i := 0; i < 100; i++ {
		_, err = db.Exec("INSERT INTO docs (id, body) VALUES (?, ?);", i, "payload")
		require.NoError(t, err)
	}
	require.NoError(t, db.Close())

	issues, err := VerifyIntegrity(dbPath, "quick")
	require.NoError(t, err)
	require.Nil(t, issues, "freshly written database should report healthy")

	f, err := os.OpenFile(dbPath, os.O_RDWR, 0644)
	require.NoError(t, err)
	corrupt := make([]byte, 100)
	_, err = rand.Read(corrupt)
	require.NoError(t, err)
	_, err = f.WriteAt(corrupt, 4096)
	require.NoError(t, err)
	require.NoError(t, f.Close())

	issues, err = VerifyIntegrity(dbPath, "full")
	require.NoError(t, err)
	require.NotNil(t, issues, "corrupted database should fail integrity check")
}
