package imagefs

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFileLoader(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "hive.png")
	require.NoError(t, os.WriteFile(path, []byte{0x89, 'P', 'N', 'G'}, 0o644))

	l := NewFileLoader()
	data, err := l.Load(context.Background(), path)
	require.NoError(t, err)
	require.Len(t, data, 4)

	_, err = l.Load(context.Background(), filepath.Join(dir, "missing.png"))
	require.ErrorIs(t, err, os.ErrNotExist)

	empty := filepath.Join(dir, "empty.png")
	require.NoError(t, os.WriteFile(empty, nil, 0o644))
	_, err = l.Load(context.Background(), empty)
	require.Error(t, err)
}
