// Package config provides configuration parsing for the oz CLI.
//
// The configuration is stored in oz.json. This package handles loading,
// saving, and validating it. Every field is optional.
//
// # Configuration File Structure
//
//	{
//	  "log": {
//	    "level": "debug",
//	    "format": "json"
//	  },
//	  "metrics": {
//	    "enabled": true,
//	    "namespace": "oz"
//	  },
//	  "tracing": {
//	    "enabled": false,
//	    "tracerName": "oz/reactive"
//	  },
//	  "devtools": {
//	    "addr": "localhost:7070",
//	    "history": 512
//	  },
//	  "runtime": {
//	    "queueSize": 1024
//	  }
//	}
//
// # Usage
//
//	cfg, err := config.Discover(".")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	logger := cfg.Log.NewLogger(os.Stderr)
package config
