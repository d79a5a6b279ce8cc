package config

import (
	"flag"
	"os"
	"time"

	"github.com/dmitrijs2005/authkeeper/internal/flagx"
)

// parseFlags populates selected server Config fields from command-line flags.
//
// Supported flags (short forms):
//
//	-a string   HTTP bind address (e.g., ":8080")
//	-d string   PostgreSQL DSN
//	-e string   redis address
//	-t int      access token TTL, minutes
//	-r int      refresh token TTL, minutes
//	-m int      max login attempts per cooldown window
//
// The function first filters os.Args to only the flags it recognizes using
// flagx.FilterArgs, avoiding collisions with other components.
func parseFlags(config *Config) {
	args := flagx.FilterArgs(os.Args[1:], []string{"-a", "-d", "-e", "-t", "-r", "-m"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&config.EndpointAddr, "a", config.EndpointAddr, "address and port to run server")
	fs.StringVar(&config.DatabaseDSN, "d", config.DatabaseDSN, "database DSN")
	fs.StringVar(&config.RedisAddr, "e", config.RedisAddr, "redis address")

	accessTTL := fs.Int("t", int(config.AccessTokenTTL.Minutes()), "access token TTL (in minutes)")
	refreshTTL := fs.Int("r", int(config.RefreshTokenTTL.Minutes()), "refresh token TTL (in minutes)")
	fs.IntVar(&config.MaxLoginAttempts, "m", config.MaxLoginAttempts, "max login attempts per cooldown window")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	config.AccessTokenTTL = time.Duration(*accessTTL) * time.Minute
	config.RefreshTokenTTL = time.Duration(*refreshTTL) * time.Minute
}
