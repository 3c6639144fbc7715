// Package util holds the small generic helpers shared by the config and
// command packages.
package util
