// Package config holds process-wide constants for the latus tools:
// problem file extensions and default network/cache addresses.
package config

// ProblemFileExt is the canonical extension for a YAML problem file.
const ProblemFileExt = ".latus.yaml"

// ProblemFileExtensions are all extensions latusc treats as a problem
// file when scanning a directory argument.
var ProblemFileExtensions = []string{".latus.yaml", ".latus.yml"}

// DefaultDaemonAddr is the address latusd listens on when no -addr flag
// is given. latusc solve -remote always takes an explicit address.
const DefaultDaemonAddr = "127.0.0.1:7631"

// DefaultCachePath is the SQLite database latusc/latusd use to memoize
// solved problems when -cache is not given.
const DefaultCachePath = "latus-cache.db"
