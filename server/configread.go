package server

import (
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/juju/errors"
	"gopkg.in/yaml.v2"
)

// EnvPrefix is the prefix for all environment variable overrides.
const EnvPrefix = "MIRRORCAST_"

func ReadConfigFile(filename string, c *Config) error {
	f, err := os.Open(filename)
	if err != nil {
		return errors.Annotatef(err, "read config file: %s", filename)
	}

	defer f.Close()

	err = ReadConfigYAML(f, c)

	return errors.Annotatef(err, "read yaml config: %s", filename)
}

func ReadConfigFiles(filenames []string, c *Config) (err error) {
	for _, filename := range filenames {
		err = ReadConfigFile(filename, c)
		if err != nil {
			return errors.Trace(err)
		}
	}

	return nil
}

func InitConfig(c *Config) {
	c.BindPort = 8787
	c.ICEServers = []ICEServer{{
		URLs: []string{"stun:stun.l.google.com:19302"},
	}}
}

// ReadConfig loads the defaults, applies the config files in order and the
// environment on top.
func ReadConfig(filenames []string) (c Config, err error) {
	InitConfig(&c)
	err = ReadConfigFiles(filenames, &c)
	ReadConfigFromEnv(EnvPrefix, &c)

	return c, errors.Trace(err)
}

func ReadConfigYAML(reader io.Reader, c *Config) error {
	decoder := yaml.NewDecoder(reader)
	if err := decoder.Decode(c); err != nil {
		return errors.Annotate(err, "decode yaml")
	}

	return nil
}

func ReadConfigFromEnv(prefix string, c *Config) {
	setEnvString(&c.BindHost, prefix+"BIND_HOST")
	setEnvInt(&c.BindPort, prefix+"BIND_PORT")
	setEnvString(&c.TLS.Cert, prefix+"TLS_CERT")
	setEnvString(&c.TLS.Key, prefix+"TLS_KEY")

	if value, ok := os.LookupEnv(prefix + "ICE_SERVER_URLS"); ok {
		// Do not use the default servers, even if value is empty.
		c.ICEServers = make([]ICEServer, 0, 1)

		var ice ICEServer

		setSlice(&ice.URLs, value)

		if len(ice.URLs) > 0 {
			setEnvAuthType(&ice.AuthType, prefix+"ICE_SERVER_AUTH_TYPE")
			setEnvString(&ice.AuthSecret.Secret, prefix+"ICE_SERVER_SECRET")
			setEnvString(&ice.AuthSecret.Username, prefix+"ICE_SERVER_USERNAME")
			c.ICEServers = append(c.ICEServers, ice)
		}
	}

	setEnvString(&c.Prometheus.AccessToken, prefix+"PROMETHEUS_ACCESS_TOKEN")
}

func setSlice(dest *[]string, value string) {
	for _, v := range strings.Split(value, ",") {
		if v != "" {
			*dest = append(*dest, v)
		}
	}
}

func setEnvString(dest *string, name string) {
	value := os.Getenv(name)
	if value != "" {
		*dest = value
	}
}

func setEnvInt(dest *int, name string) {
	value, err := strconv.Atoi(os.Getenv(name))
	if err == nil {
		*dest = value
	}
}

func setEnvAuthType(authType *AuthType, name string) {
	value := os.Getenv(name)
	switch AuthType(value) {
	case AuthTypeSecret:
		*authType = AuthTypeSecret
	case AuthTypeNone:
		*authType = AuthTypeNone
	}
}
