package registry

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/ghodss/yaml"
	"github.com/pkg/errors"
)

const (
	defaultClientId        = "Unknown"
	defaultCacheTtlSeconds = 600
)

type RepoConfig struct {
	// Feast project name
	Project string `json:"project"`
	// Feast provider name
	Provider string `json:"provider"`
	// Either a path string or a map of registry options
	Registry interface{} `json:"registry"`
	// Online store config
	OnlineStore map[string]interface{} `json:"online_store"`
	// Offline store config
	OfflineStore map[string]interface{} `json:"offline_store"`
	// Repo path
	RepoPath string `json:"repo_path"`
}

type RegistryConfig struct {
	RegistryStoreType string `json:"registry_store_type"`
	Path              string `json:"path"`
	ClientId          string `json:"client_id"`
	CacheTtlSeconds   int64  `json:"cache_ttl_seconds"`
}

// NewRepoConfigFromFile reads feature_store.yaml from repoPath.
func NewRepoConfigFromFile(repoPath string) (*RepoConfig, error) {
	return NewRepoConfigFromConfigPath(filepath.Join(repoPath, "feature_store.yaml"))
}

// NewRepoConfigFromConfigPath reads the repo config at configPath. Unless the
// config names one, the repo path is the directory holding the file.
func NewRepoConfigFromConfigPath(configPath string) (*RepoConfig, error) {
	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read %s", filepath.Base(configPath))
	}
	config, err := NewRepoConfigFromYAML(data)
	if err != nil {
		return nil, err
	}
	if config.RepoPath == "" {
		config.RepoPath = filepath.Dir(configPath)
	}
	return config, nil
}

func NewRepoConfigFromYAML(data []byte) (*RepoConfig, error) {
	config := RepoConfig{}
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, errors.Wrap(err, "failed to parse repo config")
	}
	if config.Project == "" {
		return nil, errors.New("repo config does not set a project")
	}
	return &config, nil
}

// GetRegistryConfig resolves the registry section, which may be a bare path
// or a map. Relative file paths are resolved against RepoPath.
func (r *RepoConfig) GetRegistryConfig() (*RegistryConfig, error) {
	registryConfig := RegistryConfig{ClientId: defaultClientId, CacheTtlSeconds: defaultCacheTtlSeconds}
	switch v := r.Registry.(type) {
	case nil:
	case string:
		registryConfig.Path = v
	case map[string]interface{}:
		for key, value := range v {
			switch key {
			case "path":
				if s, ok := value.(string); ok {
					registryConfig.Path = s
				}
			case "registry_store_type", "registry_type":
				if s, ok := value.(string); ok {
					registryConfig.RegistryStoreType = s
				}
			case "client_id":
				if s, ok := value.(string); ok {
					registryConfig.ClientId = s
				}
			case "cache_ttl_seconds":
				switch ttl := value.(type) {
				case float64:
					registryConfig.CacheTtlSeconds = int64(ttl)
				case int:
					registryConfig.CacheTtlSeconds = int64(ttl)
				case int64:
					registryConfig.CacheTtlSeconds = ttl
				}
			}
		}
	default:
		return nil, errors.Errorf("unexpected registry config type %T", r.Registry)
	}

	if registryConfig.RegistryStoreType == "" {
		registryConfig.RegistryStoreType = inferRegistryStoreType(registryConfig.Path)
	}
	if registryConfig.RegistryStoreType == "sql" && isRelativeFilePath(registryConfig.Path) && r.RepoPath != "" {
		registryConfig.Path = filepath.Join(r.RepoPath, registryConfig.Path)
	}
	return &registryConfig, nil
}

func inferRegistryStoreType(path string) string {
	switch {
	case strings.HasPrefix(path, "http://"), strings.HasPrefix(path, "https://"):
		return "http"
	case strings.HasPrefix(path, "redis://"), strings.HasPrefix(path, "rediss://"):
		return "redis"
	default:
		return "sql"
	}
}

func isRelativeFilePath(path string) bool {
	return path != "" && !strings.HasPrefix(path, "file:") && !filepath.IsAbs(path)
}
