// Package config provides configuration structures and utilities for tagdict.
// It defines where raw pages are read from, where JSON outputs go, how pages
// are fetched, and the optional .tagdict YAML file that overrides defaults.
package config
