package logger

import (
	"strings"
)

// Config provides a method for getting a logging level for a particular
// namespace.
type Config interface {
	// LevelForNamespace returns a logging Level for a particular namespace.
	LevelForNamespace(namespace string) Level
}

// ConfigMap maps namespaces to levels. A namespace is matched either in full
// or by its last segment, and the empty key configures the root logger.
type ConfigMap map[string]Level

// NewConfigMapFromString parses a CSV string in the form
// "ns1:level1,ns2:level2". It is meant for reading the configuration from an
// environment variable. Entries without a level default to info.
func NewConfigMapFromString(stringConfig string) Config {
	if stringConfig == "" {
		return nil
	}

	configSlice := strings.Split(stringConfig, ",")

	ret := make(ConfigMap, len(configSlice))

	for _, ns := range configSlice {
		level := LevelInfo

		if index := strings.LastIndex(ns, ":"); index > -1 {
			if cfgLevel, ok := LevelFromString(ns[index+1:]); ok {
				level = cfgLevel
				ns = ns[:index]
			}
		}

		ret[ns] = level
	}

	return ret
}

// LevelForNamespace implements Config.
func (c ConfigMap) LevelForNamespace(namespace string) Level {
	if level, ok := c[namespace]; ok {
		return level
	}

	// Check only the last part of the namespace.
	if index := strings.LastIndex(namespace, ":"); index > -1 {
		if level, ok := c[namespace[index+1:]]; ok {
			return level
		}
	}

	// Return configuration for root logger.
	return c[""]
}

// LevelForNamespace implements Config. A bare Level applies to all
// namespaces.
func (l Level) LevelForNamespace(string) Level {
	return l
}
