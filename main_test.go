package main

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestDefaultsCommandJSON(t *testing.T) {
	var out bytes.Buffer
	err := newApp(&out, io.Discard).Run([]string{"gatewaycfg", "defaults", "--format", "json", "--id", "okex-main", "okex"})
	require.NoError(t, err)

	var got map[string]map[string]interface{}
	require.NoError(t, json.Unmarshal(out.Bytes(), &got))
	require.Contains(t, got, "okex-main")

	rec := got["okex-main"]
	assert.Equal(t, "OKEx", rec["name"])
	assert.Equal(t, 0.2, rec["feesPercent"])
	assert.Equal(t, map[string]interface{}{"global": map[string]interface{}{"maxRequestsPerSecond": float64(3)}}, rec["throttle"])
}

func TestDefaultsCommandYAML(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, newApp(&out, io.Discard).Run([]string{"gatewaycfg", "defaults", "okex"}))

	var got map[string]struct {
		Type       string `yaml:"type"`
		EmulatedWs struct {
			WsTickers struct {
				Period int `yaml:"period"`
			} `yaml:"wsTickers"`
		} `yaml:"emulatedWs"`
	}
	require.NoError(t, yaml.Unmarshal(out.Bytes(), &got))
	assert.Equal(t, "okex", got["okex"].Type)
	assert.Equal(t, 30, got["okex"].EmulatedWs.WsTickers.Period)
}

func TestDefaultsCommandErrors(t *testing.T) {
	var out bytes.Buffer
	assert.Error(t, newApp(&out, io.Discard).Run([]string{"gatewaycfg", "defaults"}))
	assert.Error(t, newApp(&out, io.Discard).Run([]string{"gatewaycfg", "defaults", "kraken"}))
	assert.Error(t, newApp(&out, io.Discard).Run([]string{"gatewaycfg", "defaults", "--format", "xml", "okex"}))
}

func TestTypesCommand(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, newApp(&out, io.Discard).Run([]string{"gatewaycfg", "types"}))
	assert.Equal(t, "okex\n", out.String())
}

func TestCheckCommand(t *testing.T) {
	t.Setenv("LOG_LEVEL", "")
	path := filepath.Join(t.TempDir(), "config.yml")
	content := `gateway: {name: gw, version: "1.0"}
logging: {level: error, output: stderr}
exchanges:
  okex:
    verbose: true
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	var out bytes.Buffer
	require.NoError(t, newApp(&out, io.Discard).Run([]string{"gatewaycfg", "check", "--config", path, "--format", "json"}))

	var got map[string]map[string]interface{}
	require.NoError(t, json.Unmarshal(out.Bytes(), &got))
	assert.Equal(t, true, got["okex"]["verbose"])
	assert.Equal(t, "okex", got["okex"]["type"])
}

func TestCheckCommandRejectsInvalidExchange(t *testing.T) {
	t.Setenv("LOG_LEVEL", "")
	path := filepath.Join(t.TempDir(), "config.yml")
	content := `gateway: {name: gw, version: "1.0"}
logging: {level: error, output: stderr}
exchanges:
  okex:
    throttle: {global: {maxRequestsPerSecond: 0}}
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	var out bytes.Buffer
	err := newApp(&out, io.Discard).Run([]string{"gatewaycfg", "check", "-c", path})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "maxRequestsPerSecond")
	assert.Empty(t, out.String())
}

func TestCheckCommandKeepsLogsOffStdout(t *testing.T) {
	t.Setenv("LOG_LEVEL", "")
	t.Setenv("APP_ENV", "")
	path := filepath.Join(t.TempDir(), "config.yml")
	content := `gateway: {name: gw, version: "1.0"}
logging: {level: report, format: json, output: stdout}
exchanges:
  okex:
    throttle: {global: {maxRequestsPerSecond: 5}}
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	var out, errOut bytes.Buffer
	require.NoError(t, newApp(&out, &errOut).Run([]string{"gatewaycfg", "check", "-c", path}))

	var got map[string]struct {
		Type     string `yaml:"type"`
		Throttle struct {
			Global struct {
				MaxRequestsPerSecond int `yaml:"maxRequestsPerSecond"`
			} `yaml:"global"`
		} `yaml:"throttle"`
	}
	require.NoError(t, yaml.Unmarshal(out.Bytes(), &got))
	assert.Equal(t, "okex", got["okex"].Type)
	assert.Equal(t, 5, got["okex"].Throttle.Global.MaxRequestsPerSecond)
	assert.NotContains(t, out.String(), "checking exchange configuration")

	var checked map[string]interface{}
	var features []string
	for _, line := range bytes.Split(bytes.TrimSpace(errOut.Bytes()), []byte("\n")) {
		var entry map[string]interface{}
		require.NoError(t, json.Unmarshal(line, &entry))
		switch entry["message"] {
		case "checking exchange configuration":
			assert.Contains(t, entry, "APP_ENV")
		case "exchange config ok":
			checked = entry
		case "emulated stream":
			features = append(features, entry["feature"].(string))
			assert.Equal(t, "30s", entry["interval"])
		}
	}
	require.NotNil(t, checked)
	assert.Equal(t, float64(5), checked["max_rps"])
	assert.Equal(t, float64(5), checked["burst"])
	assert.Equal(t, []string{"wsOrderBooks", "wsTickers", "wsTrades"}, features)
}
