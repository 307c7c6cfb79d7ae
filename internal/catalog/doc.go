// Package catalog holds the course and simulation records served by the
// content backend, plus the lookups and searches the pages run over them.
//
// Records decode from the backend's JSON as well as from YAML and TOML
// fixtures. Simulation.Unit is the single place where the two simulation
// shapes (split html/css/js fields or one complete document) are turned
// into a sandbox.Unit.
package catalog
