package config

import (
	"flag"
	"os"

	"github.com/dmitrijs2005/rabetweb/internal/flagx"
)

// parseFlags overlays Config with command-line flags:
//
//	-a string   listen address (":8080")
//	-d string   PostgreSQL DSN
//	-s string   session signing secret
//	-i string   identity token signing secret
//	-v string   base URL the access gate uses to reach /api/auth/verify
//	-u, -p      S3 user and password
//	-b, -g, -e  S3 bucket, region and base endpoint
//	-l int      auth attempts per minute per client
//	-production mark cookies Secure
//
// Only these flags are read from os.Args, so other components can define
// their own. A malformed value panics.
func parseFlags(config *Config) {
	args := flagx.FilterArgs(os.Args[1:], []string{
		"-a", "-d", "-s", "-i", "-v", "-u", "-p", "-b", "-g", "-e", "-l", "-production",
	})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&config.ListenAddr, "a", config.ListenAddr, "address and port to run server")
	fs.StringVar(&config.DatabaseDSN, "d", config.DatabaseDSN, "database DSN")
	fs.StringVar(&config.SessionSecret, "s", config.SessionSecret, "session signing secret")
	fs.StringVar(&config.IdentitySecret, "i", config.IdentitySecret, "identity token signing secret")
	fs.StringVar(&config.VerifyBaseURL, "v", config.VerifyBaseURL, "verify endpoint base URL")
	fs.StringVar(&config.S3RootUser, "u", config.S3RootUser, "S3 root user")
	fs.StringVar(&config.S3RootPassword, "p", config.S3RootPassword, "S3 root password")
	fs.StringVar(&config.S3Bucket, "b", config.S3Bucket, "S3 bucket")
	fs.StringVar(&config.S3Region, "g", config.S3Region, "S3 region")
	fs.StringVar(&config.S3BaseEndpoint, "e", config.S3BaseEndpoint, "S3 base endpoint")
	fs.IntVar(&config.AuthRateLimit, "l", config.AuthRateLimit, "auth attempts per minute")
	fs.BoolVar(&config.Production, "production", config.Production, "production mode")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}
}
