package reportstore

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/yanqian/airquality-advisor/internal/domain/airquality"
)

func TestMemoryStorageRoundTrip(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStorage()

	obj, err := store.Put(ctx, "reports/a.json", []byte(`{"state":"ready"}`), "application/json")
	require.NoError(t, err)
	require.Equal(t, int64(17), obj.Size)
	require.NotEmpty(t, obj.ETag)

	data, err := store.Get(ctx, "reports/a.json")
	require.NoError(t, err)
	require.JSONEq(t, `{"state":"ready"}`, string(data))

	_, err = store.Get(ctx, "reports/missing.json")
	require.ErrorIs(t, err, airquality.ErrObjectNotFound)
}

func TestSanitizeEndpoint(t *testing.T) {
	require.Equal(t, "acct.r2.cloudflarestorage.com", sanitizeEndpoint("https://acct.r2.cloudflarestorage.com/bucket"))
	require.Equal(t, "localhost:9000", sanitizeEndpoint(" http://localhost:9000 "))
}
