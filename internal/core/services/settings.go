package services

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/browerscan/pocketbase.cn/internal/core/domain"
	"github.com/browerscan/pocketbase.cn/internal/core/ports/driven"
	"github.com/browerscan/pocketbase.cn/internal/core/ports/driving"
)

// Ensure SettingsService implements the interface.
var _ driving.SettingsService = (*SettingsService)(nil)

// Config keys for settings storage.
const (
	keyPocketBaseURL = "pocketbase.url"
	keySiteURL       = "site.url"
	keyTimeoutMS     = "fetch.timeout_ms"
	keyRetries       = "fetch.retries"
	keyRetryDelayMS  = "fetch.retry_delay_ms"
	keyRateLimit     = "fetch.rate_limit"
	keyListLimit     = "list.limit"
	keySearchCap     = "search.cap"
	keySnapshotTTL   = "snapshot.ttl_seconds"
	keyDocsDir       = "docs.dir"
)

// EnvPocketBaseURL overrides pocketbase.url when set.
const EnvPocketBaseURL = "PBCN_POCKETBASE_URL"

type settingKind int

const (
	kindString settingKind = iota
	kindURL
	kindInt
)

var settingKeys = []struct {
	key  string
	kind settingKind
}{
	{keyPocketBaseURL, kindURL},
	{keySiteURL, kindURL},
	{keyTimeoutMS, kindInt},
	{keyRetries, kindInt},
	{keyRetryDelayMS, kindInt},
	{keyRateLimit, kindInt},
	{keyListLimit, kindInt},
	{keySearchCap, kindInt},
	{keySnapshotTTL, kindInt},
	{keyDocsDir, kindString},
}

// SettingsService manages application settings.
type SettingsService struct {
	configStore driven.ConfigStore
	getenv      func(string) string
}

// NewSettingsService creates a new settings service.
func NewSettingsService(configStore driven.ConfigStore) *SettingsService {
	return &SettingsService{
		configStore: configStore,
		getenv:      os.Getenv,
	}
}

// Get retrieves current application settings.
func (s *SettingsService) Get() (*domain.AppSettings, error) {
	defaults := domain.DefaultAppSettings()

	settings := &domain.AppSettings{
		PocketBaseURL: s.getString(keyPocketBaseURL, defaults.PocketBaseURL),
		SiteURL:       s.getString(keySiteURL, defaults.SiteURL),
		Fetch: domain.FetchSettings{
			Timeout:    s.getMillis(keyTimeoutMS, defaults.Fetch.Timeout),
			Retries:    s.getNonNegative(keyRetries, defaults.Fetch.Retries),
			RetryDelay: s.getMillis(keyRetryDelayMS, defaults.Fetch.RetryDelay),
			RateLimit:  s.getNonNegative(keyRateLimit, defaults.Fetch.RateLimit),
		},
		ListLimit:   s.getInt(keyListLimit, defaults.ListLimit),
		SearchCap:   s.getInt(keySearchCap, defaults.SearchCap),
		SnapshotTTL: time.Duration(s.getInt(keySnapshotTTL, int(defaults.SnapshotTTL/time.Second))) * time.Second,
		DocsDir:     s.configStore.GetString(keyDocsDir),
	}

	if env := strings.TrimSpace(s.getenv(EnvPocketBaseURL)); env != "" {
		settings.PocketBaseURL = env
	}
	settings.PocketBaseURL = strings.TrimRight(settings.PocketBaseURL, "/")
	settings.SiteURL = strings.TrimRight(settings.SiteURL, "/")

	return settings, nil
}

// Set validates value for key and stores it.
func (s *SettingsService) Set(key, value string) error {
	kind, ok := lookupKind(key)
	if !ok {
		return fmt.Errorf("unknown setting %q: %w", key, domain.ErrInvalidInput)
	}

	switch kind {
	case kindInt:
		n, err := strconv.Atoi(strings.TrimSpace(value))
		if err != nil || n < 0 {
			return fmt.Errorf("%s must be a non-negative integer: %w", key, domain.ErrInvalidInput)
		}
		return s.configStore.Set(key, int64(n))
	case kindURL:
		v := strings.TrimSpace(value)
		if !strings.HasPrefix(v, "http://") && !strings.HasPrefix(v, "https://") {
			return fmt.Errorf("%s must be an http(s) URL: %w", key, domain.ErrInvalidInput)
		}
		return s.configStore.Set(key, strings.TrimRight(v, "/"))
	default:
		return s.configStore.Set(key, value)
	}
}

// Lookup returns the effective value of key.
func (s *SettingsService) Lookup(key string) (string, error) {
	if _, ok := lookupKind(key); !ok {
		return "", fmt.Errorf("unknown setting %q: %w", key, domain.ErrInvalidInput)
	}
	settings, err := s.Get()
	if err != nil {
		return "", err
	}

	switch key {
	case keyPocketBaseURL:
		return settings.PocketBaseURL, nil
	case keySiteURL:
		return settings.SiteURL, nil
	case keyTimeoutMS:
		return strconv.FormatInt(settings.Fetch.Timeout.Milliseconds(), 10), nil
	case keyRetries:
		return strconv.Itoa(settings.Fetch.Retries), nil
	case keyRetryDelayMS:
		return strconv.FormatInt(settings.Fetch.RetryDelay.Milliseconds(), 10), nil
	case keyRateLimit:
		return strconv.Itoa(settings.Fetch.RateLimit), nil
	case keyListLimit:
		return strconv.Itoa(settings.ListLimit), nil
	case keySearchCap:
		return strconv.Itoa(settings.SearchCap), nil
	case keySnapshotTTL:
		return strconv.Itoa(int(settings.SnapshotTTL / time.Second)), nil
	default:
		return settings.DocsDir, nil
	}
}

// Keys lists the known setting keys.
func (s *SettingsService) Keys() []string {
	keys := make([]string, 0, len(settingKeys))
	for _, k := range settingKeys {
		keys = append(keys, k.key)
	}
	return keys
}

// Path returns the configuration file path.
func (s *SettingsService) Path() string {
	return s.configStore.Path()
}

func lookupKind(key string) (settingKind, bool) {
	for _, k := range settingKeys {
		if k.key == key {
			return k.kind, true
		}
	}
	return kindString, false
}

// Helper methods for reading config with defaults.

func (s *SettingsService) getString(key, defaultVal string) string {
	val := s.configStore.GetString(key)
	if val == "" {
		return defaultVal
	}
	return val
}

func (s *SettingsService) getInt(key string, defaultVal int) int {
	val := s.configStore.GetInt(key)
	if val <= 0 {
		return defaultVal
	}
	return val
}

// getNonNegative treats an explicit zero as a valid value.
func (s *SettingsService) getNonNegative(key string, defaultVal int) int {
	if _, exists := s.configStore.Get(key); !exists {
		return defaultVal
	}
	val := s.configStore.GetInt(key)
	if val < 0 {
		return defaultVal
	}
	return val
}

func (s *SettingsService) getMillis(key string, defaultVal time.Duration) time.Duration {
	if _, exists := s.configStore.Get(key); !exists {
		return defaultVal
	}
	return time.Duration(s.getNonNegative(key, 0)) * time.Millisecond
}
