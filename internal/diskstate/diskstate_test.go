package diskstate

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestWriteThenReadRoundTripsRecords(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state")
	store := NewFileStore(path)

	records := []Record{
		{Namespace: "accumulator", Key: "total_reseed_events", Value: []byte{0, 0, 0, 7}},
		{Namespace: "accumulator", Key: "pool_label_3", Value: []byte("label")},
	}
	require.NoError(t, store.Write(records))

	got, err := store.Read()
	require.NoError(t, err)
	require.Equal(t, records, got)
}

func TestWriteKeepsPreviousFileAsOldFallback(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state")
	store := NewFileStore(path)

	require.NoError(t, store.Write([]Record{{Namespace: "a", Key: "k1", Value: []byte("v1")}}))
	require.NoError(t, store.Write([]Record{{Namespace: "a", Key: "k2", Value: []byte("v2")}}))

	_, err := os.Stat(path + ".old")
	require.NoError(t, err)

	oldStore := NewFileStore(path + ".old")
	oldRecords, err := oldStore.Read()
	require.NoError(t, err)
	require.Equal(t, "k1", oldRecords[0].Key)
}

func TestReadRejectsCorruptedBody(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state")
	store := NewFileStore(path)
	require.NoError(t, store.Write([]Record{{Namespace: "a", Key: "k", Value: []byte("v")}}))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	data = append(data, []byte("tampered-extra-line\n")...)
	require.NoError(t, os.WriteFile(path, data, 0o600))

	_, err = store.Read()
	require.ErrorIs(t, err, ErrChecksumMismatch)
}

func TestReadRejectsBadMagic(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state")
	require.NoError(t, os.WriteFile(path, []byte("NOT-THE-MAGIC\x1f1\x1fAAAA\x1f0\n"), 0o600))

	store := NewFileStore(path)
	_, err := store.Read()
	require.ErrorIs(t, err, ErrBadMagic)
}

func TestWriteThenReadEmptyRecordSet(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state")
	store := NewFileStore(path)

	require.NoError(t, store.Write(nil))
	got, err := store.Read()
	require.NoError(t, err)
	require.Empty(t, got)
}
