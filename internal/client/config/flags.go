package config

import (
	"flag"

	"github.com/dmitrijs2005/lifedesk/internal/flagx"
)

// parseFlags populates selected Config fields from command-line flags.
//
//	-a string          base URL of the lifedesk API
//	-tokens string     token file; "" keeps tokens in memory
//	-export-dir string where vault exports are saved
//	-reveal duration   how long a revealed secret stays visible
//	-timeout duration  per-request HTTP timeout
//
// Arguments other than these are filtered out with flagx.FilterArgs first.
func parseFlags(cfg *Config, args []string) {
	args = flagx.FilterArgs(args, []string{"-a", "-tokens", "-export-dir", "-reveal", "-timeout"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&cfg.ServerURL, "a", cfg.ServerURL, "base URL of the server")
	fs.StringVar(&cfg.TokenFile, "tokens", cfg.TokenFile, "token file (empty keeps tokens in memory)")
	fs.StringVar(&cfg.ExportDir, "export-dir", cfg.ExportDir, "directory for vault exports")
	fs.DurationVar(&cfg.RevealTimeout, "reveal", cfg.RevealTimeout, "re-mask revealed secrets after")
	fs.DurationVar(&cfg.RequestTimeout, "timeout", cfg.RequestTimeout, "HTTP request timeout")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}
}
