package server_test

import (
	"os"
	"strings"
	"testing"

	"github.com/mirrorcast/mirrorcast/server"
	"github.com/mirrorcast/mirrorcast/server/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadConfig_Defaults(t *testing.T) {
	test.UnsetEnvPrefix(server.EnvPrefix)

	c, err := server.ReadConfig(nil)
	require.NoError(t, err)

	assert.Equal(t, 8787, c.BindPort)
	require.Equal(t, 1, len(c.ICEServers))
	assert.Equal(t, []string{"stun:stun.l.google.com:19302"}, c.ICEServers[0].URLs)
}

func TestReadConfigFiles(t *testing.T) {
	var c server.Config

	err := server.ReadConfigFiles([]string{"config_example.yml"}, &c)
	require.NoError(t, err)

	assert.Equal(t, "127.0.0.1", c.BindHost)
	assert.Equal(t, 8443, c.BindPort)
	assert.Equal(t, "test.pem", c.TLS.Cert)
	assert.Equal(t, "test.key", c.TLS.Key)
	assert.Equal(t, "test_token", c.Prometheus.AccessToken)

	require.Equal(t, 1, len(c.ICEServers))
	ice := c.ICEServers[0]
	assert.Equal(t, []string{"stun:stun.l.google.com:19302"}, ice.URLs)
	assert.Equal(t, server.AuthTypeSecret, ice.AuthType)
	assert.Equal(t, "test_user", ice.AuthSecret.Username)
	assert.Equal(t, "test_secret", ice.AuthSecret.Secret)
}

func TestReadConfigFiles_Error(t *testing.T) {
	var c server.Config

	err := server.ReadConfigFiles([]string{"config_missing.yml"}, &c)
	require.Error(t, err)
	assert.Regexp(t, "no such file", err.Error())
}

func TestReadConfigYAML_Error(t *testing.T) {
	var c server.Config

	err := server.ReadConfigYAML(strings.NewReader("gfakjhglakjhlakdhgl"), &c)
	require.Error(t, err)
	assert.Regexp(t, "decode yaml", err.Error())
}

func TestReadConfigFromEnv(t *testing.T) {
	prefix := "MIRRORCASTTEST_"
	defer test.UnsetEnvPrefix(prefix)

	os.Setenv(prefix+"BIND_HOST", "0.0.0.0")
	os.Setenv(prefix+"BIND_PORT", "9090")
	os.Setenv(prefix+"TLS_CERT", "test.pem")
	os.Setenv(prefix+"TLS_KEY", "test.key")
	os.Setenv(prefix+"ICE_SERVER_URLS", "turn:turn.example.com:3478,turns:turn.example.com:5349")
	os.Setenv(prefix+"ICE_SERVER_AUTH_TYPE", "secret")
	os.Setenv(prefix+"ICE_SERVER_USERNAME", "test_user")
	os.Setenv(prefix+"ICE_SERVER_SECRET", "test_secret")
	os.Setenv(prefix+"PROMETHEUS_ACCESS_TOKEN", "token123")

	var c server.Config

	server.ReadConfigFromEnv(prefix, &c)

	assert.Equal(t, "0.0.0.0", c.BindHost)
	assert.Equal(t, 9090, c.BindPort)
	assert.Equal(t, "test.pem", c.TLS.Cert)
	assert.Equal(t, "test.key", c.TLS.Key)
	assert.Equal(t, "token123", c.Prometheus.AccessToken)

	require.Equal(t, 1, len(c.ICEServers))
	ice := c.ICEServers[0]
	assert.Equal(t, []string{"turn:turn.example.com:3478", "turns:turn.example.com:5349"}, ice.URLs)
	assert.Equal(t, server.AuthTypeSecret, ice.AuthType)
	assert.Equal(t, "test_user", ice.AuthSecret.Username)
	assert.Equal(t, "test_secret", ice.AuthSecret.Secret)
}

func TestReadConfigFromEnv_EmptyICEServers(t *testing.T) {
	prefix := "MIRRORCASTTEST_"
	defer test.UnsetEnvPrefix(prefix)

	os.Setenv(prefix+"ICE_SERVER_URLS", "")

	c := server.Config{}
	server.InitConfig(&c)
	server.ReadConfigFromEnv(prefix, &c)

	// Setting the variable to empty clears the default servers.
	assert.Empty(t, c.ICEServers)
}
