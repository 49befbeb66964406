package registry

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRepoConfigFromFile(t *testing.T) {
	dir := t.TempDir()
	yaml := []byte(`
project: feature_repo
provider: local
registry:
  path: data/registry.db
  cache_ttl_seconds: 60
online_store:
  type: redis
  connection_string: localhost:6379
`)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "feature_store.yaml"), yaml, 0o644))

	config, err := NewRepoConfigFromFile(dir)
	require.NoError(t, err)
	assert.Equal(t, "feature_repo", config.Project)
	assert.Equal(t, "local", config.Provider)
	assert.Equal(t, dir, config.RepoPath)
	assert.Equal(t, "redis", config.OnlineStore["type"])

	registryConfig, err := config.GetRegistryConfig()
	require.NoError(t, err)
	assert.Equal(t, "sql", registryConfig.RegistryStoreType)
	assert.Equal(t, filepath.Join(dir, "data/registry.db"), registryConfig.Path)
	assert.Equal(t, int64(60), registryConfig.CacheTtlSeconds)
	assert.Equal(t, "Unknown", registryConfig.ClientId)
}

func TestRepoConfigRequiresProject(t *testing.T) {
	_, err := NewRepoConfigFromYAML([]byte("provider: local\n"))
	assert.Error(t, err)
}

func TestGetRegistryConfigFromPathString(t *testing.T) {
	config := &RepoConfig{Project: "feature_repo", Registry: "https://registry.example.com"}
	registryConfig, err := config.GetRegistryConfig()
	require.NoError(t, err)
	assert.Equal(t, "http", registryConfig.RegistryStoreType)
	assert.Equal(t, "https://registry.example.com", registryConfig.Path)
	assert.Equal(t, int64(600), registryConfig.CacheTtlSeconds)
}

func TestGetRegistryConfigInfersRedis(t *testing.T) {
	config := &RepoConfig{Project: "feature_repo", Registry: map[string]interface{}{
		"path":      "redis://localhost:6379/0",
		"client_id": "feast-go",
	}}
	registryConfig, err := config.GetRegistryConfig()
	require.NoError(t, err)
	assert.Equal(t, "redis", registryConfig.RegistryStoreType)
	assert.Equal(t, "feast-go", registryConfig.ClientId)
}

func TestGetRegistryConfigExplicitType(t *testing.T) {
	config := &RepoConfig{Project: "feature_repo", Registry: map[string]interface{}{
		"registry_type": "remote",
		"path":          "registry.internal:6570",
	}}
	registryConfig, err := config.GetRegistryConfig()
	require.NoError(t, err)
	assert.Equal(t, "remote", registryConfig.RegistryStoreType)
	assert.Equal(t, "registry.internal:6570", registryConfig.Path)
}

func TestGetRegistryConfigRejectsUnexpectedType(t *testing.T) {
	config := &RepoConfig{Project: "feature_repo", Registry: 42}
	_, err := config.GetRegistryConfig()
	assert.Error(t, err)
}

func TestNewRepoConfigFromConfigPath(t *testing.T) {
	dir := t.TempDir()
	configPath := filepath.Join(dir, "staging.yaml")
	require.NoError(t, os.WriteFile(configPath, []byte("project: feature_repo\nregistry: registry.db\n"), 0o644))

	config, err := NewRepoConfigFromConfigPath(configPath)
	require.NoError(t, err)
	assert.Equal(t, dir, config.RepoPath)

	registryConfig, err := config.GetRegistryConfig()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "registry.db"), registryConfig.Path)

	_, err = NewRepoConfigFromConfigPath(filepath.Join(dir, "missing.yaml"))
	assert.Error(t, err)
}
