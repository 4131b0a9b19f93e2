package config

import (
	"flag"
	"strings"

	"github.com/dmitrijs2005/lifedesk/internal/flagx"
)

var ownFlags = []string{
	"-a", "-g", "-driver", "-d", "-s", "-rs", "-k", "-t", "-r", "-bcrypt-cost",
	"-origins", "-janitor", "-debug",
	"-s3-user", "-s3-password", "-s3-bucket", "-s3-region", "-s3-endpoint",
}

// parseFlags overlays command-line flags onto config.
//
//	-a string        HTTP bind address (e.g. ":8080")
//	-g string        gRPC health bind address, "" disables
//	-driver string   database driver: pgx | sqlite
//	-d string        database DSN
//	-s string        access token secret
//	-rs string       refresh token secret
//	-k string        vault encryption secret
//	-t duration      access token validity (e.g. 15m)
//	-r duration      refresh token validity (e.g. 168h)
//	-bcrypt-cost int password hash cost
//	-origins string  comma-separated CORS origins
//	-janitor duration expired refresh token purge interval
//	-debug           verbose mode
//	-s3-*            vault export object storage
//
// Only the flags listed above are considered; anything else on the command
// line (for example -c) is filtered out first.
func parseFlags(config *Config, args []string) {
	fs := flag.NewFlagSet("server", flag.ContinueOnError)

	fs.StringVar(&config.EndpointAddrHTTP, "a", config.EndpointAddrHTTP, "HTTP address and port")
	fs.StringVar(&config.EndpointAddrGRPC, "g", config.EndpointAddrGRPC, "gRPC health address and port")
	fs.StringVar(&config.DatabaseDriver, "driver", config.DatabaseDriver, "database driver (pgx|sqlite)")
	fs.StringVar(&config.DatabaseDSN, "d", config.DatabaseDSN, "database DSN")
	fs.StringVar(&config.AccessTokenSecret, "s", config.AccessTokenSecret, "access token secret")
	fs.StringVar(&config.RefreshTokenSecret, "rs", config.RefreshTokenSecret, "refresh token secret")
	fs.StringVar(&config.VaultKey, "k", config.VaultKey, "vault encryption secret")
	fs.DurationVar(&config.AccessTokenValidityDuration, "t", config.AccessTokenValidityDuration, "access token validity")
	fs.DurationVar(&config.RefreshTokenValidityDuration, "r", config.RefreshTokenValidityDuration, "refresh token validity")
	fs.IntVar(&config.BcryptCost, "bcrypt-cost", config.BcryptCost, "bcrypt cost")
	origins := fs.String("origins", strings.Join(config.AllowedOrigins, ","), "comma-separated CORS origins")
	fs.DurationVar(&config.JanitorInterval, "janitor", config.JanitorInterval, "expired refresh token purge interval")
	fs.BoolVar(&config.Debug, "debug", config.Debug, "debug mode")
	fs.StringVar(&config.S3RootUser, "s3-user", config.S3RootUser, "S3 root user")
	fs.StringVar(&config.S3RootPassword, "s3-password", config.S3RootPassword, "S3 root password")
	fs.StringVar(&config.S3Bucket, "s3-bucket", config.S3Bucket, "S3 bucket for vault exports")
	fs.StringVar(&config.S3Region, "s3-region", config.S3Region, "S3 region")
	fs.StringVar(&config.S3BaseEndpoint, "s3-endpoint", config.S3BaseEndpoint, "S3 base endpoint")

	if err := fs.Parse(flagx.FilterArgs(args, ownFlags)); err != nil {
		panic(err)
	}

	config.AllowedOrigins = splitList(*origins)
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
