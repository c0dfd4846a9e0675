// Package config loads chatcal configuration from a file, CHATCAL_*
// environment variables and command-line flags, in increasing order of
// precedence.
//
// A minimal config file:
//
//	google:
//	  client_id: 1234.apps.googleusercontent.com
//	  client_secret: secret
//	permissions:
//	  - permission: addEvents
//	    users: [alice]
//	  - permission: setupPlugin
//	    users: [alice]
//
// Every key can also be set from the environment, e.g.
// CHATCAL_GOOGLE_CLIENT_SECRET or CHATCAL_PERSISTENCE_TYPE.
package config
