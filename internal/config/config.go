// Package config provides functionality for managing configuration options
// for the application using command-line flags, environment variables and an
// optional JSON config file.
package config

import (
	"encoding/json"
	"flag"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Options holds the configuration values for the application.
type Options struct {
	// Port defines the server's listening address (ip:port).
	Port string `json:"server_address"`

	// ResultHostname is the base URL used for short links.
	ResultHostname string `json:"base_url"`

	// FilePath is the path to the storage journal for DSN-less persistence.
	FilePath string `json:"file_storage_path"`

	// DatabaseDSN holds the PostgreSQL connection string.
	DatabaseDSN string `json:"database_dsn"`

	// CodeLength is the length of generated short codes.
	CodeLength int `json:"code_length"`

	// TrustedSubnet, when set, restricts the analytics overview to a CIDR.
	TrustedSubnet string `json:"trusted_subnet"`

	// EnablePprof indicates whether to enable pprof for profiling.
	EnablePprof bool `json:"enable_pprof"`

	// EnableHTTPS indicates whether to serve TLS via autocert.
	EnableHTTPS bool `json:"enable_https"`

	// Config is the path to a JSON config file.
	Config string `json:"-"`
}

// options holds the current configuration values.
var options = &Options{}

func init() {
	flag.StringVar(&options.Port, "a", "localhost:8080", "run on ip:port server")
	flag.StringVar(&options.ResultHostname, "b", "http://localhost:8080", "result base url")
	flag.StringVar(&options.FilePath, "f", "", "path to storage journal file")
	flag.StringVar(&options.DatabaseDSN, "d", "", "db address")
	flag.IntVar(&options.CodeLength, "l", 8, "short code length")
	flag.StringVar(&options.TrustedSubnet, "t", "", "trusted subnet for analytics (CIDR)")
	flag.BoolVar(&options.EnablePprof, "p", false, "enable pprof")
	flag.BoolVar(&options.EnableHTTPS, "s", false, "enable https")
	flag.StringVar(&options.Config, "c", "", "path to json config file")
}

// Parse resolves the configuration. Flags are the baseline, a JSON config
// file (when given) overrides them and environment variables win over both.
// A .env file in the working directory is loaded first when present.
func Parse() *Options {
	_ = godotenv.Load()

	flag.Parse()

	if configPath := os.Getenv("CONFIG"); configPath != "" {
		options.Config = configPath
	}

	if options.Config != "" {
		if content, err := os.ReadFile(options.Config); err == nil {
			_ = json.Unmarshal(content, options)
		}
	}

	if serverAddress := os.Getenv("SERVER_ADDRESS"); serverAddress != "" {
		options.Port = serverAddress
	}

	if baseURL := os.Getenv("BASE_URL"); baseURL != "" {
		options.ResultHostname = baseURL
	}

	if storagePath := os.Getenv("FILE_STORAGE_PATH"); storagePath != "" {
		options.FilePath = storagePath
	}

	if dsn := os.Getenv("DATABASE_DSN"); dsn != "" {
		options.DatabaseDSN = dsn
	}

	if codeLength := os.Getenv("CODE_LENGTH"); codeLength != "" {
		if n, err := strconv.Atoi(codeLength); err == nil && n > 0 {
			options.CodeLength = n
		}
	}

	if trustedSubnet := os.Getenv("TRUSTED_SUBNET"); trustedSubnet != "" {
		options.TrustedSubnet = trustedSubnet
	}

	if enableHTTPS := os.Getenv("ENABLE_HTTPS"); enableHTTPS != "" {
		httpsMode, err := strconv.ParseBool(enableHTTPS)
		if err != nil {
			options.EnableHTTPS = false
		}

		options.EnableHTTPS = httpsMode
	}

	return options
}
