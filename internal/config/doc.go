// Package config holds the settings shared by the siteclone commands:
// budgets and timeouts of a clone, output locations, proxy and server
// options, and per-site overrides read from a .siteclone YAML file.
package config
