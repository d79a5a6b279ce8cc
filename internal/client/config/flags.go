package config

import (
	"flag"
	"os"
	"time"

	"github.com/dmitrijs2005/authkeeper/internal/flagx"
)

// parseFlags populates selected Config fields from command-line flags.
//
// Supported flags (short forms):
//
//	-a string   base URL of the identity endpoint (default from Config)
//	-d string   path to the local database file (default from Config)
//	-t int      access token TTL in minutes (default from Config)
//
// The function filters os.Args to only include the flags it knows about,
// using flagx.FilterArgs, to avoid interference with other components.
func parseFlags(cfg *Config) {
	args := flagx.FilterArgs(os.Args[1:], []string{"-a", "-d", "-t"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&cfg.ServerEndpointAddr, "a", cfg.ServerEndpointAddr, "base URL of the identity endpoint")
	fs.StringVar(&cfg.DatabasePath, "d", cfg.DatabasePath, "path to the local database file")
	accessTTL := fs.Int("t", int(cfg.AccessTokenTTL.Minutes()), "access token TTL (in minutes)")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	cfg.AccessTokenTTL = time.Duration(*accessTTL) * time.Minute
}
