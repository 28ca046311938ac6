package cfg

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/pelletier/go-toml"
)

type Config struct {
	LogFormat  string `toml:"log_format" default:"console"`
	LogTimeKey string `toml:"log_time_key" default:"time"`
	LogLevel   string `toml:"log_level" default:"info"`

	// GithubAPIURL is the base URL of the GitHub REST API, it must be
	// changed for GitHub Enterprise installations.
	GithubAPIURL string `toml:"github_api_url" default:"https://api.github.com/"`

	// MaxRetries is the number of times a failed API request is
	// repeated before the run is aborted.
	MaxRetries int `toml:"max_retries" default:"3"`
	// RetryDelay is the time waited between retries, in
	// time.ParseDuration format.
	RetryDelay string `toml:"retry_delay" default:"200ms"`

	// FilterQuery is an optional jq query that is evaluated for each
	// dependabot pull request, only pull requests for which it
	// evaluates to true are considered for merging.
	FilterQuery string `toml:"filter_query"`

	// PushgatewayURL is the address of a Prometheus Pushgateway, when
	// set, metrics of the run are pushed to it.
	PushgatewayURL string `toml:"pushgateway_url"`
}

// Load parses a TOML configuration. Unset keys have their default values.
func Load(reader io.Reader) (*Config, error) {
	var result Config

	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, err
	}

	if err := toml.Unmarshal(data, &result); err != nil {
		return nil, err
	}

	return &result, nil
}

// Default returns the configuration that is used when no configuration file
// is specified.
func Default() *Config {
	result, err := Load(strings.NewReader(""))
	if err != nil {
		panic(fmt.Sprintf("loading default configuration failed: %s", err))
	}

	return result
}

// GetRetryDelay returns RetryDelay as time.Duration.
func (c *Config) GetRetryDelay() (time.Duration, error) {
	d, err := time.ParseDuration(c.RetryDelay)
	if err != nil {
		return 0, fmt.Errorf("retry_delay: %w", err)
	}

	if d < 0 {
		return 0, errors.New("retry_delay: must not be negative")
	}

	return d, nil
}

// GetMaxRetries returns MaxRetries, negative values are rejected.
func (c *Config) GetMaxRetries() (uint64, error) {
	if c.MaxRetries < 0 {
		return 0, fmt.Errorf("max_retries: must not be negative, is %d", c.MaxRetries)
	}

	return uint64(c.MaxRetries), nil
}
