package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"github.com/staxsum/htmlform"
)

// assignments collects repeated -set name=value flags.
type assignments map[string]string

func (a assignments) String() string {
	keys := make([]string, 0, len(a))
	for k := range a {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+"="+a[k])
	}
	return strings.Join(parts, ",")
}

func (a assignments) Set(s string) error {
	name, value, ok := strings.Cut(s, "=")
	if !ok || name == "" {
		return fmt.Errorf("expected name=value, got %q", s)
	}
	a[name] = value
	return nil
}

type cliOptions struct {
	targetURL  string
	configFile string
	valuesFile string
	formIndex  int
	formName   string
	submit     string
	timeout    int
	rateLimit  int
	insecure   bool
	verbose    bool
	dryRun     bool
	set        assignments
}

func parseFlags(args []string) (*cliOptions, error) {
	opts := &cliOptions{set: assignments{}}

	fs := flag.NewFlagSet("htmlform", flag.ContinueOnError)
	fs.StringVar(&opts.targetURL, "url", "", "Page containing the form (required)")
	fs.StringVar(&opts.configFile, "config", "", "TOML file with session settings")
	fs.StringVar(&opts.valuesFile, "values", "", "YAML or TOML file with field values")
	fs.IntVar(&opts.formIndex, "form", 0, "Index of the form to submit")
	fs.StringVar(&opts.formName, "name", "", "Name or id of the form to submit (overrides -form)")
	fs.StringVar(&opts.submit, "submit", "", "Submit button to press (default: first one)")
	fs.IntVar(&opts.timeout, "timeout", 0, "Request timeout in seconds")
	fs.IntVar(&opts.rateLimit, "rate", 0, "Requests per second limit")
	fs.BoolVar(&opts.insecure, "insecure", false, "Skip TLS certificate verification")
	fs.BoolVar(&opts.verbose, "verbose", false, "Verbose output")
	fs.BoolVar(&opts.dryRun, "dry-run", false, "Print the request without sending it")
	fs.Var(opts.set, "set", "Field value as name=value (repeatable)")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if opts.targetURL == "" {
		return nil, fmt.Errorf("target URL is required")
	}
	return opts, nil
}

// fileConfig is the on-disk shape of -config.
type fileConfig struct {
	Timeout      int               `toml:"timeout"`
	Rate         int               `toml:"rate"`
	MaxRedirects int               `toml:"max_redirects"`
	UserAgent    string            `toml:"user_agent"`
	Insecure     bool              `toml:"insecure"`
	Headers      map[string]string `toml:"headers"`
}

func loadFileConfig(path string) (fileConfig, error) {
	var fc fileConfig
	if path == "" {
		return fc, nil
	}
	if _, err := toml.DecodeFile(path, &fc); err != nil {
		return fc, fmt.Errorf("failed to read config %s: %w", path, err)
	}
	return fc, nil
}

// sessionConfig layers defaults, the config file and flags, in that order.
func sessionConfig(fc fileConfig, opts *cliOptions) htmlform.SessionConfig {
	cfg := htmlform.DefaultSessionConfig()

	if fc.Timeout > 0 {
		cfg.Timeout = time.Duration(fc.Timeout) * time.Second
	}
	if fc.Rate > 0 {
		cfg.RateLimit = fc.Rate
	}
	if fc.MaxRedirects > 0 {
		cfg.MaxRedirects = fc.MaxRedirects
	}
	if fc.UserAgent != "" {
		cfg.UserAgent = fc.UserAgent
	}
	cfg.Insecure = fc.Insecure
	cfg.Headers = fc.Headers

	if opts.timeout > 0 {
		cfg.Timeout = time.Duration(opts.timeout) * time.Second
	}
	if opts.rateLimit > 0 {
		cfg.RateLimit = opts.rateLimit
	}
	if opts.insecure {
		cfg.Insecure = true
	}
	return cfg
}

// loadValues reads field overrides from a YAML or TOML file. Scalars of any
// type are accepted and turned into their string form.
func loadValues(path string) (map[string]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	raw := map[string]interface{}{}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &raw)
	case ".toml":
		err = toml.Unmarshal(data, &raw)
	default:
		return nil, fmt.Errorf("unsupported values file %s: want .yaml, .yml or .toml", path)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}

	values := make(map[string]string, len(raw))
	for k, v := range raw {
		switch v.(type) {
		case map[string]interface{}, []interface{}:
			return nil, fmt.Errorf("value for %s must be a scalar", k)
		case nil:
			values[k] = ""
		default:
			values[k] = fmt.Sprint(v)
		}
	}
	return values, nil
}

// overrides merges the values file with -set flags, flags winning.
func overrides(opts *cliOptions) (map[string]string, error) {
	merged := map[string]string{}
	if opts.valuesFile != "" {
		values, err := loadValues(opts.valuesFile)
		if err != nil {
			return nil, err
		}
		for k, v := range values {
			merged[k] = v
		}
	}
	for k, v := range opts.set {
		merged[k] = v
	}
	return merged, nil
}
