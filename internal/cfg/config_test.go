package cfg

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	config := Default()

	assert.Equal(t, "console", config.LogFormat)
	assert.Equal(t, "time", config.LogTimeKey)
	assert.Equal(t, "info", config.LogLevel)
	assert.Equal(t, "https://api.github.com/", config.GithubAPIURL)
	assert.Equal(t, 3, config.MaxRetries)
	assert.Empty(t, config.FilterQuery)
	assert.Empty(t, config.PushgatewayURL)

	d, err := config.GetRetryDelay()
	require.NoError(t, err)
	assert.Equal(t, 200*time.Millisecond, d)
}

func TestLoad(t *testing.T) {
	const doc = `
log_format = "logfmt"
log_level = "debug"
github_api_url = "https://github.example.com/api/v3/"
max_retries = 0
retry_delay = "1s"
filter_query = '.head.ref | startswith("dependabot/")'
pushgateway_url = "http://pushgateway:9091"
`

	config, err := Load(strings.NewReader(doc))
	require.NoError(t, err)

	assert.Equal(t, "logfmt", config.LogFormat)
	assert.Equal(t, "debug", config.LogLevel)
	assert.Equal(t, "time", config.LogTimeKey)
	assert.Equal(t, "https://github.example.com/api/v3/", config.GithubAPIURL)
	assert.Equal(t, `.head.ref | startswith("dependabot/")`, config.FilterQuery)
	assert.Equal(t, "http://pushgateway:9091", config.PushgatewayURL)

	retries, err := config.GetMaxRetries()
	require.NoError(t, err)
	assert.Equal(t, uint64(0), retries)

	d, err := config.GetRetryDelay()
	require.NoError(t, err)
	assert.Equal(t, time.Second, d)
}

func TestLoadInvalidToml(t *testing.T) {
	_, err := Load(strings.NewReader("max_retries = ["))
	assert.Error(t, err)
}

func TestGetRetryDelayInvalid(t *testing.T) {
	for _, val := range []string{"", "200", "soon", "-1s"} {
		t.Run(val, func(t *testing.T) {
			config := Config{RetryDelay: val}
			_, err := config.GetRetryDelay()
			assert.Error(t, err)
		})
	}
}

func TestGetMaxRetriesNegative(t *testing.T) {
	config := Config{MaxRetries: -1}
	_, err := config.GetMaxRetries()
	assert.Error(t, err)
}
