package sources

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/coldkeep/fortunad/internal/source"
)

func TestSystemReturnsRequestedByteCount(t *testing.T) {
	s := NewSystem(32)
	data, err := s.GetEntropy(context.Background(), source.PriorityNormal)
	require.NoError(t, err)
	require.Len(t, data, 32)
}

func TestJitterReturnsOneSampleWorthOfBytesPerReading(t *testing.T) {
	j := NewJitter(3)
	data, err := j.GetEntropy(context.Background(), source.PriorityNormal)
	require.NoError(t, err)
	require.Len(t, data, 24)
}

func TestOracleRejectsNonHTTPScheme(t *testing.T) {
	_, err := NewOracle("bad", "ftp://example.com", nil)
	require.Error(t, err)
}

func TestOracleDigestsResponseBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("entropy-ish payload"))
	}))
	defer srv.Close()

	o, err := NewOracle("demo", srv.URL, nil)
	require.NoError(t, err)

	data, err := o.GetEntropy(context.Background(), source.PriorityNormal)
	require.NoError(t, err)
	require.Len(t, data, 32) // sha256 digest size
}

func TestOracleFaultsOnServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	o, err := NewOracle("demo", srv.URL, nil)
	require.NoError(t, err)

	_, err = o.GetEntropy(context.Background(), source.PriorityNormal)
	require.Error(t, err)
}
