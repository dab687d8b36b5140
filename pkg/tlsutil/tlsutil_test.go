package tlsutil_test

import (
	"crypto/tls"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/VeyronShark/Stroke-Predictor-using-ML/pkg/tlsutil"
)

func TestGenerateSelfSigned_Handshake(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, tlsutil.GenerateSelfSigned([]string{"127.0.0.1", "localhost"}, dir))

	serverCfg, err := tlsutil.ServerConfig(filepath.Join(dir, tlsutil.ServerCert), filepath.Join(dir, tlsutil.ServerKey))
	require.NoError(t, err)
	assert.Equal(t, uint16(tls.VersionTLS12), serverCfg.MinVersion)

	srv := httptest.NewUnstartedServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))
	srv.TLS = serverCfg
	srv.StartTLS()
	defer srv.Close()

	clientCfg, err := tlsutil.ClientConfig(filepath.Join(dir, tlsutil.CAFile))
	require.NoError(t, err)
	client := &http.Client{Transport: &http.Transport{TLSClientConfig: clientCfg}}

	resp, err := client.Get(srv.URL)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
}

func TestLoadErrors(t *testing.T) {
	dir := t.TempDir()

	_, err := tlsutil.ServerConfig(filepath.Join(dir, "missing.pem"), filepath.Join(dir, "missing-key.pem"))
	assert.Error(t, err)

	_, err = tlsutil.ClientConfig(filepath.Join(dir, "missing.pem"))
	assert.Error(t, err)

	cfg, err := tlsutil.ClientConfig("")
	require.NoError(t, err)
	assert.Nil(t, cfg.RootCAs)
}
