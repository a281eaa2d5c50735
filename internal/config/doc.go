// Package config provides configuration parsing for the vstore CLI.
//
// The configuration is stored in vstore.json, vstore.toml or vstore.yaml.
// The format is chosen by file extension. Keys that are absent keep their
// defaults and unknown keys are rejected.
//
// # Configuration File Structure
//
//	name = "todos"
//	equality = "shallow"
//
//	[log]
//	level = "debug"
//	format = "json"
//
//	[inspector]
//	addr = "localhost:7070"
//	allowOrigins = ["http://localhost:3000"]
//
//	[metrics]
//	enabled = true
//	namespace = "vstore"
//
//	[tracing]
//	enabled = false
//
// # Usage
//
//	cfg, err := config.Load(".")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	if err := cfg.Validate(); err != nil {
//	    log.Fatal(err)
//	}
//
//	logger := cfg.Logger(os.Stderr)
package config
