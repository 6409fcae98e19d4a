package config

import (
	"errors"
	"fmt"
	"net/netip"
	"os"
	"strconv"
	"strings"
	"time"
)

// minSecretLen is the shortest HS256 secret accepted at startup.
const minSecretLen = 32

// Config holds all runtime configuration loaded from environment variables.
// It is built once in main and treated as read-only afterwards.
type Config struct {
	AppPort string
	AppEnv  string

	JWTSecret    string
	SessionTTL   time.Duration
	CodeTTL      time.Duration
	SendCooldown time.Duration
	BearerPrefix string

	RedisAddr     string
	RedisPassword string
	RedisDB       int
	StoreTimeout  time.Duration

	AWSRegion      string
	AWSEndpointURL string // empty in prod, set to LocalStack URL in dev
	AWSAccessKeyID string
	AWSSecretKey   string
	DynamoTables   DynamoTables
	S3BucketName   string
	AvatarMaxBytes int64

	MailTransport string // "smtp" | "sns"
	SMTPHost      string
	SMTPPort      string
	SMTPFrom      string
	SMTPUsername  string
	SMTPPassword  string
	SNSRegion     string
	SNSTopicARN   string

	AllowedOrigins []string // CORS allowed origins
	TrustedProxies []string // IPs or CIDRs whose X-Forwarded-For is believed
}

// DynamoTables holds the DynamoDB table name for each entity.
type DynamoTables struct {
	Accounts string
	Counters string
}

// Load reads all configuration from environment variables.
func Load() *Config {
	return &Config{
		AppPort: getEnv("APP_PORT", "3000"),
		AppEnv:  getEnv("APP_ENV", "development"),

		JWTSecret:    getEnv("JWT_SECRET", ""),
		SessionTTL:   getEnvDuration("SESSION_TTL", 7200*time.Second),
		CodeTTL:      getEnvDuration("CODE_TTL", 5*time.Minute),
		SendCooldown: getEnvDuration("SEND_COOLDOWN", time.Minute),
		BearerPrefix: getEnv("BEARER_PREFIX", "Bearer "),

		RedisAddr:     getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisDB:       getEnvInt("REDIS_DB", 0),
		StoreTimeout:  getEnvDuration("STORE_TIMEOUT", 2*time.Second),

		AWSRegion:      getEnv("AWS_REGION", "us-east-1"),
		AWSEndpointURL: getEnv("AWS_ENDPOINT_URL", ""),
		AWSAccessKeyID: getEnv("AWS_ACCESS_KEY_ID", ""),
		AWSSecretKey:   getEnv("AWS_SECRET_ACCESS_KEY", ""),
		DynamoTables: DynamoTables{
			Accounts: getEnv("DYNAMO_TABLE_ACCOUNTS", "accounts"),
			Counters: getEnv("DYNAMO_TABLE_COUNTERS", "counters"),
		},
		S3BucketName:   getEnv("S3_BUCKET_NAME", "go-api-avatars"),
		AvatarMaxBytes: int64(getEnvInt("AVATAR_MAX_BYTES", 10<<20)),

		MailTransport: getEnv("MAIL_TRANSPORT", "smtp"),
		SMTPHost:      getEnv("SMTP_HOST", "localhost"),
		SMTPPort:      getEnv("SMTP_PORT", "1025"),
		SMTPFrom:      getEnv("SMTP_FROM", "noreply@example.com"),
		SMTPUsername:  getEnv("SMTP_USERNAME", ""),
		SMTPPassword:  getEnv("SMTP_PASSWORD", ""),
		SNSRegion:     getEnv("SNS_REGION", "us-east-1"),
		SNSTopicARN:   getEnv("SNS_TOPIC_ARN", ""),

		AllowedOrigins: strings.Split(getEnv("ALLOWED_ORIGINS", "*"), ","),
		TrustedProxies: getEnvList("TRUSTED_PROXIES"),
	}
}

// Validate reports configuration that would make the service unsafe to start.
func (c *Config) Validate() error {
	var errs []error
	if len(c.JWTSecret) < minSecretLen {
		errs = append(errs, errors.New("JWT_SECRET must be at least 32 bytes"))
	}
	if c.SessionTTL <= 0 {
		errs = append(errs, errors.New("SESSION_TTL must be positive"))
	}
	if c.CodeTTL <= 0 || c.SendCooldown <= 0 {
		errs = append(errs, errors.New("CODE_TTL and SEND_COOLDOWN must be positive"))
	}
	if c.StoreTimeout <= 0 {
		errs = append(errs, errors.New("STORE_TIMEOUT must be positive"))
	}
	if c.MailTransport == "sns" && c.SNSTopicARN == "" {
		errs = append(errs, errors.New("SNS_TOPIC_ARN is required when MAIL_TRANSPORT=sns"))
	}
	if _, err := c.ProxyPrefixes(); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

// ProxyPrefixes parses TrustedProxies. A bare address is a single-host prefix.
func (c *Config) ProxyPrefixes() ([]netip.Prefix, error) {
	out := make([]netip.Prefix, 0, len(c.TrustedProxies))
	for _, raw := range c.TrustedProxies {
		if p, err := netip.ParsePrefix(raw); err == nil {
			out = append(out, p.Masked())
			continue
		}
		a, err := netip.ParseAddr(raw)
		if err != nil {
			return nil, fmt.Errorf("TRUSTED_PROXIES: %q is not an IP or CIDR", raw)
		}
		a = a.Unmap()
		out = append(out, netip.PrefixFrom(a, a.BitLen()))
	}
	return out, nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func getEnvList(key string) []string {
	var out []string
	for _, v := range strings.Split(os.Getenv(key), ",") {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}

// getEnvDuration accepts Go duration strings ("90s", "5m") or a bare number of seconds.
func getEnvDuration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	if d, err := time.ParseDuration(v); err == nil {
		return d
	}
	if n, err := strconv.Atoi(v); err == nil {
		return time.Duration(n) * time.Second
	}
	return fallback
}
