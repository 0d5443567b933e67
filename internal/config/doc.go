// Package config loads the vcache.json configuration used by the vcache
// command.
//
// # Configuration File Structure
//
//	{
//	  "server": {
//	    "addr": "localhost:7070",
//	    "tracerName": "vcache"
//	  },
//	  "log": {
//	    "level": "info",
//	    "format": "text"
//	  },
//	  "metrics": {
//	    "enabled": true,
//	    "namespace": "vcache",
//	    "path": "/metrics"
//	  },
//	  "snapshot": {
//	    "backend": "s3",
//	    "bucket": "ops-ui-state",
//	    "prefix": "vcache/",
//	    "region": "eu-west-1",
//	    "name": "latest",
//	    "restoreOnStart": true
//	  }
//	}
//
// Missing fields take defaults. VCACHE_ADDR and VCACHE_LOG_LEVEL override
// the file.
package config
