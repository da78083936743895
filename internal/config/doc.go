// Package config provides configuration parsing for querystate tools.
//
// The configuration is stored in querystate.json (or querystate.yaml) in the
// working directory. This package handles loading, saving, and validating
// configuration.
//
// # Configuration File Structure
//
//	{
//	  "schema": {"name": "string", "age": "number", "draft": "boolean"},
//	  "includes": ["name", "age"],
//	  "excludes": ["draft"],
//	  "initialState": {"name": "guest"},
//	  "initialOptions": {"scroll": true},
//	  "initialLocation": {"pathname": "/", "search": ""},
//	  "server": {
//	    "addr": ":8080",
//	    "path": "/history",
//	    "metrics": true
//	  }
//	}
//
// An absent "includes" admits every field; an empty list admits none.
//
// # Usage
//
//	cfg, err := config.Load(".")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	sch, err := cfg.BuildSchema()
package config
