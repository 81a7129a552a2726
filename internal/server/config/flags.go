package config

import (
	"flag"
	"os"
	"time"

	"github.com/pacpoom/interface-vdc/internal/flagx"
)

// parseFlags populates selected server Config fields from command-line flags.
//
// Supported flags (short forms):
//
//	-a string   HTTP bind address (e.g., ":4000")
//	-d string   PostgreSQL DSN
//	-s string   JWT HMAC secret key
//	-t int      access token validity, minutes
//	-u string   external platform URL
//	-i string   platform application ID header value
//	-k string   platform API code header value
//	-w int      platform call timeout, seconds
//	-n int      sync reconciliation interval, minutes
//
// The function first filters os.Args to only the flags it recognizes using
// flagx.FilterArgs, avoiding collisions with other components. Duration
// flags are accepted as integers and converted to time.Duration values.
func parseFlags(config *Config) {
	args := flagx.FilterArgs(os.Args[1:], []string{"-a", "-d", "-s", "-t", "-u", "-i", "-k", "-w", "-n"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&config.EndpointAddrHTTP, "a", config.EndpointAddrHTTP, "address and port to run server")
	fs.StringVar(&config.DatabaseDSN, "d", config.DatabaseDSN, "database DSN")
	fs.StringVar(&config.SecretKey, "s", config.SecretKey, "secret key")

	accessTokenValidityMinutes := fs.Int("t", int(config.AccessTokenValidityDuration.Minutes()), "access token validity (in minutes)")

	fs.StringVar(&config.PlatformURL, "u", config.PlatformURL, "external platform URL")
	fs.StringVar(&config.PlatformAppID, "i", config.PlatformAppID, "platform application ID")
	fs.StringVar(&config.PlatformAPICode, "k", config.PlatformAPICode, "platform API code")

	platformTimeoutSeconds := fs.Int("w", int(config.PlatformTimeout.Seconds()), "platform call timeout (in seconds)")
	syncIntervalMinutes := fs.Int("n", int(config.SyncInterval.Minutes()), "sync interval (in minutes)")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	config.AccessTokenValidityDuration = time.Duration(*accessTokenValidityMinutes) * time.Minute
	config.PlatformTimeout = time.Duration(*platformTimeoutSeconds) * time.Second
	config.SyncInterval = time.Duration(*syncIntervalMinutes) * time.Minute
}
