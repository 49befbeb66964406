package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/feast-dev/feast-entity/go/internal/feast/model"
	"github.com/feast-dev/feast-entity/go/internal/feast/registry"
	"github.com/feast-dev/feast-entity/go/protos/feast/types"
)

const definitionsYAML = `
entities:
  - name: driver
    join_keys: [driver_id]
    value_type: INT64
    description: A driver
    owner: ml@example.com
    tags:
      team: matchmaking
  - name: trip
    join_keys:
      rider_id: STRING
      driver_id: INT64
`

type recordingDiagnostics struct {
	notices []model.DeprecationNotice
}

func (r *recordingDiagnostics) Deprecated(notice model.DeprecationNotice) {
	r.notices = append(r.notices, notice)
}

func TestParseDefinitions(t *testing.T) {
	definitions, err := parseDefinitions([]byte(definitionsYAML))
	require.NoError(t, err)
	require.Len(t, definitions, 2)

	diagnostics := &recordingDiagnostics{}
	driver, err := definitions[0].build(diagnostics)
	require.NoError(t, err)
	assert.Equal(t, map[string]types.ValueType_Enum{"driver_id": types.ValueType_INT64}, driver.JoinKeyMap())
	assert.Equal(t, "matchmaking", driver.Tags["team"])
	assert.NoError(t, driver.IsValid())

	trip, err := definitions[1].build(diagnostics)
	require.NoError(t, err)
	assert.Equal(t, []string{"driver_id", "rider_id"}, trip.GetJoinKeyNames())
	assert.Empty(t, diagnostics.notices)
}

func TestDefinitionWithoutJoinKeys(t *testing.T) {
	definitions, err := parseDefinitions([]byte("entities:\n  - name: customer\n"))
	require.NoError(t, err)

	diagnostics := &recordingDiagnostics{}
	customer, err := definitions[0].build(diagnostics)
	require.NoError(t, err)
	assert.Equal(t, "customer", customer.JoinKey())
	assert.Len(t, diagnostics.notices, 1)
	assert.Error(t, customer.IsValid())
}

func TestDefinitionWithScalarJoinKeys(t *testing.T) {
	definitions, err := parseDefinitions([]byte("entities:\n  - name: customer\n    join_keys: customer_id\n"))
	require.NoError(t, err)

	_, err = definitions[0].build(&recordingDiagnostics{})
	require.Error(t, err)
	assert.True(t, errors.Is(err, model.ErrInvalidArgument))
}

func TestDefinitionWithMultipleLegacyJoinKeys(t *testing.T) {
	definitions, err := parseDefinitions([]byte("entities:\n  - name: trip\n    join_keys: [a, b]\n"))
	require.NoError(t, err)

	_, err = definitions[0].build(&recordingDiagnostics{})
	assert.True(t, errors.Is(err, model.ErrInvalidArgument))
}

func runCommand(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out, errOut bytes.Buffer
	root := newRootCommand()
	root.SetOut(&out)
	root.SetErr(&errOut)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func TestApplyListDescribeDelete(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "feature_store.yaml"),
		[]byte("project: feature_repo\nprovider: local\nregistry: registry.db\n"), 0o644))
	definitionsPath := filepath.Join(dir, "entities.yaml")
	require.NoError(t, os.WriteFile(definitionsPath, []byte(definitionsYAML), 0o644))

	configPath := filepath.Join(dir, "feature_store.yaml")
	_, err := runCommand(t, "--config", configPath, "apply", definitionsPath)
	require.NoError(t, err)

	out, err := runCommand(t, "--config", configPath, "list")
	require.NoError(t, err)
	assert.Equal(t, "driver\tdriver_id:INT64\ntrip\tdriver_id:INT64,rider_id:STRING\n", out)

	out, err = runCommand(t, "-c", configPath, "describe", "driver")
	require.NoError(t, err)
	assert.Contains(t, out, "name: driver")
	assert.Contains(t, out, "owner: ml@example.com")
	assert.Contains(t, out, "createdTimestamp")

	config, err := registry.NewRepoConfigFromFile(dir)
	require.NoError(t, err)
	registryConfig, err := config.GetRegistryConfig()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "registry.db"), registryConfig.Path)

	_, err = runCommand(t, "--config", configPath, "delete", "driver")
	require.NoError(t, err)
	_, err = runCommand(t, "--config", configPath, "describe", "driver")
	assert.True(t, errors.Is(err, registry.ErrEntityNotFound))
}

func TestApplyRejectsInvalidDefinitions(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "feature_store.yaml"),
		[]byte("project: feature_repo\nregistry: registry.db\n"), 0o644))
	definitionsPath := filepath.Join(dir, "entities.yaml")
	require.NoError(t, os.WriteFile(definitionsPath, []byte("entities:\n  - name: customer\n"), 0o644))

	configPath := filepath.Join(dir, "feature_store.yaml")
	_, err := runCommand(t, "-c", configPath, "apply", definitionsPath)
	require.Error(t, err)
	assert.True(t, errors.Is(err, model.ErrInvalidState))

	out, err := runCommand(t, "-c", configPath, "list")
	require.NoError(t, err)
	assert.Empty(t, out)
}

func TestConfigFlagDefault(t *testing.T) {
	root := newRootCommand()
	flag := root.PersistentFlags().Lookup("config")
	require.NotNil(t, flag)
	assert.Equal(t, "c", flag.Shorthand)
	assert.Equal(t, "feature_store.yaml", flag.DefValue)
}

func TestMissingConfigFileFails(t *testing.T) {
	_, err := runCommand(t, "-c", filepath.Join(t.TempDir(), "feature_store.yaml"), "list")
	assert.Error(t, err)
}

func TestTracingEnabled(t *testing.T) {
	for value, expected := range map[string]bool{
		"":      false,
		"false": false,
		"nope":  false,
		"true":  true,
		"1":     true,
	} {
		t.Setenv("ENABLE_DATADOG_TRACING", value)
		assert.Equal(t, expected, tracingEnabled(), value)
	}
}
