package config

// Logging defaults.
const (
	DefaultLogLevel = "info"
)

// Reconstruction defaults.
const (
	DefaultMaxDepth = 256
)

// Batch defaults. Zero workers means one per CPU.
const (
	DefaultBatchWorkers = 0
	DefaultBatchPolicy  = "skip"
)

// Output defaults.
const (
	DefaultOutputFormat = "json"
	DefaultColor        = "auto"
)

// Server defaults.
const (
	DefaultServerHost         = "127.0.0.1"
	DefaultServerPort         = 8080
	DefaultServerReadTimeout  = "30s"
	DefaultServerWriteTimeout = "60s"
	DefaultServerIdleTimeout  = "120s"
)

// Accepted values of enumerated settings.
var (
	Policies   = []string{"skip", "abort"}                           //nolint:gochecknoglobals // static option list.
	Formats    = []string{"json", "yaml", "sexpr", "tree", "leaves"} //nolint:gochecknoglobals // static option list.
	ColorModes = []string{"auto", "always", "never"}                 //nolint:gochecknoglobals // static option list.
	LogLevels  = []string{"debug", "info", "warn", "error"}          //nolint:gochecknoglobals // static option list.
)
