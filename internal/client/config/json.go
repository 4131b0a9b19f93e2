package config

import (
	"encoding/json"
	"os"

	"github.com/dmitrijs2005/lifedesk/internal/flagx"
	"github.com/dmitrijs2005/lifedesk/internal/timex"
)

// JsonConfig is a DTO used exclusively for JSON unmarshalling. Durations
// accept "30s" or integer nanoseconds.
type JsonConfig struct {
	ServerURL      *string         `json:"server_url"`
	TokenFile      *string         `json:"token_file"`
	ExportDir      *string         `json:"export_dir"`
	RevealTimeout  *timex.Duration `json:"reveal_timeout"`
	RequestTimeout *timex.Duration `json:"request_timeout"`
}

// parseJson overlays cfg with the file named by -c/-config. Keys absent from
// the file keep their current values; a token_file of "" selects the
// in-memory store. Read or decode errors panic.
func parseJson(cfg *Config, args []string) {
	path := flagx.ConfigPath(args)
	if path == "" {
		return
	}

	data, err := os.ReadFile(path)
	if err != nil {
		panic(err)
	}
	var jc JsonConfig
	if err := json.Unmarshal(data, &jc); err != nil {
		panic(err)
	}

	if jc.ServerURL != nil {
		cfg.ServerURL = *jc.ServerURL
	}
	if jc.TokenFile != nil {
		cfg.TokenFile = *jc.TokenFile
	}
	if jc.ExportDir != nil {
		cfg.ExportDir = *jc.ExportDir
	}
	if jc.RevealTimeout != nil {
		cfg.RevealTimeout = jc.RevealTimeout.Duration
	}
	if jc.RequestTimeout != nil {
		cfg.RequestTimeout = jc.RequestTimeout.Duration
	}
}
