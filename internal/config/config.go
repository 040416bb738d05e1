// Package config resolves ResolvedConfig by merging CLI overrides,
// environment variables, and the AWS-style credentials/config files, with
// CLI flag > environment variable > credentials file > config file >
// default precedence.
package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"time"

	s3clierrors "github.com/marmos91/s3cli/internal/errors"
	"github.com/marmos91/s3cli/internal/telemetry"
	"github.com/mitchellh/mapstructure"
	"gopkg.in/ini.v1"
)

// ChecksumAlgorithm is the integrity algorithm attached to batch-delete and
// upload requests.
type ChecksumAlgorithm string

const (
	ChecksumSha256 ChecksumAlgorithm = "Sha256"
	ChecksumCrc32  ChecksumAlgorithm = "Crc32"
	ChecksumCrc32c ChecksumAlgorithm = "Crc32c"
	ChecksumSha1   ChecksumAlgorithm = "Sha1"
)

// Credentials holds the access key pair (and optional session token) used
// to sign requests.
type Credentials struct {
	AccessKeyID     string
	SecretAccessKey string
	SessionToken    string
}

// OTelConfig is the resolved telemetry section of ResolvedConfig.
type OTelConfig struct {
	Enabled     bool
	Endpoint    string
	ServiceName string
}

// ResolvedConfig is the immutable, fully-merged configuration for a single
// invocation. It is constructed once by Load and shared read-only by every
// component.
type ResolvedConfig struct {
	Credentials       Credentials
	EndpointURL       string // empty ⇒ default AWS S3 endpoint resolution
	Region            string
	HTTPTimeout       time.Duration
	MaxConcurrent     int
	MaxRetries        int
	ChecksumAlgorithm ChecksumAlgorithm
	OTel              OTelConfig
}

// Overrides carries the global CLI flag values, which take precedence over
// every other source.
type Overrides struct {
	Endpoint string
	Region   string
	Timeout  time.Duration
	Profile  string
}

const (
	defaultRegion            = "us-east-1"
	defaultHTTPTimeout       = 30 * time.Second
	defaultMaxConcurrent     = 4
	defaultMaxRetries        = 3
	defaultChecksumAlgorithm = ChecksumSha256
)

// loopbackAliases are hostnames the resolver normalizes to their address
// form, so every command observes the same endpoint regardless of which
// alias a user or config file happened to spell out.
var loopbackAliases = map[string]string{
	"localhost":     "127.0.0.1",
	"ip6-localhost": "::1",
	"ip6-loopback":  "::1",
}

// Load resolves a ResolvedConfig from overrides, the environment, the
// credentials file, and the config file, in that precedence order. Unknown
// keys in either file are ignored. Returns ConfigError when a required
// field (credentials) cannot be resolved from any source.
func Load(overrides Overrides) (*ResolvedConfig, error) {
	profile := overrides.Profile
	if profile == "" {
		profile = envOrDefault("AWS_PROFILE", "default")
	}

	credsFile, err := readCredentialsFile(profile)
	if err != nil {
		return nil, err
	}
	cfgFile, err := readConfigFile(profile)
	if err != nil {
		return nil, err
	}

	cfg := &ResolvedConfig{
		Region:            defaultRegion,
		HTTPTimeout:       defaultHTTPTimeout,
		MaxConcurrent:     defaultMaxConcurrent,
		MaxRetries:        defaultMaxRetries,
		ChecksumAlgorithm: defaultChecksumAlgorithm,
		OTel: OTelConfig{
			ServiceName: "s3cli",
		},
	}

	// Precedence (lowest to highest): default (already set) < config file
	// < credentials file < environment < CLI override.
	applyFileSection(cfg, cfgFile)
	applyFileSection(cfg, credsFile)
	applyEnv(cfg)
	applyOverrides(cfg, overrides)

	cfg.EndpointURL = normalizeEndpoint(cfg.EndpointURL)

	if cfg.Credentials.AccessKeyID == "" || cfg.Credentials.SecretAccessKey == "" {
		return nil, s3clierrors.New(s3clierrors.KindConfigError,
			"no credentials found in environment, credentials file, or config file")
	}

	return cfg, nil
}

type fileSection struct {
	accessKeyID     string
	secretAccessKey string
	sessionToken    string
	region          string
	endpoint        string
	otelEnabled     *bool
	otelEndpoint    string
	otelServiceName string
}

func applyFileSection(cfg *ResolvedConfig, s fileSection) {
	if s.accessKeyID != "" {
		cfg.Credentials.AccessKeyID = s.accessKeyID
	}
	if s.secretAccessKey != "" {
		cfg.Credentials.SecretAccessKey = s.secretAccessKey
	}
	if s.sessionToken != "" {
		cfg.Credentials.SessionToken = s.sessionToken
	}
	if s.region != "" {
		cfg.Region = s.region
	}
	if s.endpoint != "" {
		cfg.EndpointURL = s.endpoint
	}
	if s.otelEnabled != nil {
		cfg.OTel.Enabled = *s.otelEnabled
	}
	if s.otelEndpoint != "" {
		cfg.OTel.Endpoint = s.otelEndpoint
	}
	if s.otelServiceName != "" {
		cfg.OTel.ServiceName = s.otelServiceName
	}
}

// readCredentialsFile reads ~/.aws/credentials, whose sections are bare
// profile names ([default], [work], ...).
func readCredentialsFile(profile string) (fileSection, error) {
	return readINISection(credentialsFilePath(), profile, false)
}

// readConfigFile reads ~/.aws/config, whose sections are "[default]" for
// the default profile and "[profile NAME]" for every other profile, plus
// an optional dedicated "otel" section.
func readConfigFile(profile string) (fileSection, error) {
	path := configFilePath()
	f, err := loadINIFile(path)
	if err != nil || f == nil {
		return fileSection{}, err
	}

	section, err := decodeProfileSection(f, path, profile, true)
	if err != nil {
		return fileSection{}, err
	}

	if otel, err := f.GetSection("otel"); err == nil {
		if otel.HasKey("enabled") {
			enabled := otel.Key("enabled").MustBool(false)
			section.otelEnabled = &enabled
		}
		section.otelEndpoint = otel.Key("endpoint").String()
		section.otelServiceName = otel.Key("service_name").String()
	}

	return section, nil
}

func readINISection(path, profile string, configFileNaming bool) (fileSection, error) {
	f, err := loadINIFile(path)
	if err != nil || f == nil {
		return fileSection{}, err
	}
	return decodeProfileSection(f, path, profile, configFileNaming)
}

// loadINIFile loads path as an INI file. A missing file is not an error:
// it returns (nil, nil) so callers fall back to other sources.
func loadINIFile(path string) (*ini.File, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, nil
	}

	f, err := ini.Load(path)
	if err != nil {
		return nil, s3clierrors.Wrap(s3clierrors.KindConfigError, err,
			"failed to read "+path)
	}
	return f, nil
}

func decodeProfileSection(f *ini.File, path, profile string, configFileNaming bool) (fileSection, error) {
	sectionName := profile
	if configFileNaming && profile != "default" {
		sectionName = "profile " + profile
	}

	sec, err := f.GetSection(sectionName)
	if err != nil {
		// No matching profile section is not an error: the caller may
		// still resolve everything from the environment or CLI flags.
		return fileSection{}, nil
	}

	var decoded struct {
		AccessKeyID     string `mapstructure:"aws_access_key_id"`
		SecretAccessKey string `mapstructure:"aws_secret_access_key"`
		SessionToken    string `mapstructure:"aws_session_token"`
		Region          string `mapstructure:"region"`
		Endpoint        string `mapstructure:"endpoint_url"`
	}
	if err := mapstructure.Decode(sec.KeysHash(), &decoded); err != nil {
		return fileSection{}, s3clierrors.Wrap(s3clierrors.KindConfigError, err,
			"failed to decode "+path)
	}

	return fileSection{
		accessKeyID:     decoded.AccessKeyID,
		secretAccessKey: decoded.SecretAccessKey,
		sessionToken:    decoded.SessionToken,
		region:          decoded.Region,
		endpoint:        decoded.Endpoint,
	}, nil
}

func applyEnv(cfg *ResolvedConfig) {
	if v := os.Getenv("AWS_ACCESS_KEY_ID"); v != "" {
		cfg.Credentials.AccessKeyID = v
	}
	if v := os.Getenv("AWS_SECRET_ACCESS_KEY"); v != "" {
		cfg.Credentials.SecretAccessKey = v
	}
	if v := os.Getenv("AWS_SESSION_TOKEN"); v != "" {
		cfg.Credentials.SessionToken = v
	}
	if v := os.Getenv("AWS_ENDPOINT_URL"); v != "" {
		cfg.EndpointURL = v
	}
	if v := os.Getenv("AWS_REGION"); v != "" {
		cfg.Region = v
	} else if v := os.Getenv("AWS_DEFAULT_REGION"); v != "" {
		cfg.Region = v
	}
	if v := os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT"); v != "" {
		cfg.OTel.Endpoint = v
	}
	if v := os.Getenv("OTEL_SERVICE_NAME"); v != "" {
		cfg.OTel.ServiceName = v
	}
	if v := os.Getenv("OTEL_ENABLED"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.OTel.Enabled = b
		}
	}
}

func applyOverrides(cfg *ResolvedConfig, o Overrides) {
	if o.Endpoint != "" {
		cfg.EndpointURL = o.Endpoint
	}
	if o.Region != "" {
		cfg.Region = o.Region
	}
	if o.Timeout > 0 {
		cfg.HTTPTimeout = o.Timeout
	}
}

// normalizeEndpoint rewrites loopback hostname aliases to a single
// canonical address form, so every command observes the identical
// endpoint regardless of which alias a file or flag happened to spell.
func normalizeEndpoint(endpoint string) string {
	if endpoint == "" {
		return endpoint
	}

	u, err := url.Parse(endpoint)
	if err != nil || u.Hostname() == "" {
		return endpoint
	}

	canonical, ok := loopbackAliases[u.Hostname()]
	if !ok {
		return endpoint
	}

	if port := u.Port(); port != "" {
		u.Host = fmt.Sprintf("%s:%s", canonical, port)
	} else {
		u.Host = canonical
	}
	return u.String()
}

func envOrDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func credentialsFilePath() string {
	if v := os.Getenv("AWS_SHARED_CREDENTIALS_FILE"); v != "" {
		return v
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".aws", "credentials")
	}
	return filepath.Join(home, ".aws", "credentials")
}

func configFilePath() string {
	if v := os.Getenv("AWS_CONFIG_FILE"); v != "" {
		return v
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".aws", "config")
	}
	return filepath.Join(home, ".aws", "config")
}

// TelemetryConfig adapts the resolved OTel section into the telemetry
// package's own Config type, so every verb initializes the spine from the
// same merged source.
func (c *ResolvedConfig) TelemetryConfig() telemetry.Config {
	return telemetry.Config{
		Enabled:        c.OTel.Enabled,
		ServiceName:    c.OTel.ServiceName,
		ServiceVersion: "dev",
		Endpoint:       c.OTel.Endpoint,
		Insecure:       true,
		SampleRate:     1.0,
	}
}
