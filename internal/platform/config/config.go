package config

import (
	"errors"
	"fmt"
	"io/fs"
	"math"
	"net"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	defaultTokenTTL     = 7 * 24 * time.Hour
	defaultBcryptCost   = 10
	defaultMediaFolder  = "employee_photos"
	defaultMediaRegion  = "us-east-1"
	defaultLogLevel     = "info"
	defaultLogFormat    = "json"
	defaultReadTimeout  = 15 * time.Second
	defaultWriteTimeout = 15 * time.Second
	dotEnvFile          = ".env"
)

// Config はアプリケーション全体の設定を表現します。
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Database DatabaseConfig `yaml:"database"`
	Auth     AuthConfig     `yaml:"auth"`
	Media    MediaConfig    `yaml:"media"`
	Logging  LoggingConfig  `yaml:"logging"`
}

// ServerConfig は HTTP サーバーに関する設定です。
type ServerConfig struct {
	ListenAddr      string        `yaml:"listen_addr"`
	ReadTimeout     time.Duration `yaml:"-"`
	WriteTimeout    time.Duration `yaml:"-"`
	ReadTimeoutRaw  string        `yaml:"read_timeout"`
	WriteTimeoutRaw string        `yaml:"write_timeout"`
}

// DatabaseConfig は PostgreSQL 接続に関する設定です。
type DatabaseConfig struct {
	Host               string        `yaml:"host"`
	Port               int           `yaml:"port"`
	User               string        `yaml:"user"`
	Password           string        `yaml:"password"`
	Name               string        `yaml:"name"`
	SSLMode            string        `yaml:"ssl_mode"`
	MaxOpenConns       int           `yaml:"max_open_conns"`
	MaxIdleConns       int           `yaml:"max_idle_conns"`
	ConnMaxLifetime    time.Duration `yaml:"-"`
	ConnMaxIdleTime    time.Duration `yaml:"-"`
	ConnMaxLifetimeRaw string        `yaml:"conn_max_lifetime"`
	ConnMaxIdleTimeRaw string        `yaml:"conn_max_idle_time"`
}

// AuthConfig はトークン発行とパスワードハッシュに関する設定です。
type AuthConfig struct {
	JWTSecret   string        `yaml:"jwt_secret"`
	TokenTTL    time.Duration `yaml:"-"`
	TokenTTLRaw string        `yaml:"token_ttl"`
	BcryptCost  int           `yaml:"bcrypt_cost"`
}

// MediaConfig は社員写真を保存する S3 互換ストレージの設定です。
type MediaConfig struct {
	Bucket          string `yaml:"bucket"`
	Region          string `yaml:"region"`
	Endpoint        string `yaml:"endpoint"`
	AccessKeyID     string `yaml:"access_key_id"`
	SecretAccessKey string `yaml:"secret_access_key"`
	PublicBaseURL   string `yaml:"public_base_url"`
	Folder          string `yaml:"folder"`
	UsePathStyle    bool   `yaml:"use_path_style"`
}

// LoggingConfig はログ出力の設定です。
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Load は指定されたパスから設定ファイルを読み込みます。
// カレントディレクトリに .env があれば読み込み、秘匿値は環境変数で上書きします。
func Load(path string) (*Config, error) {
	cfg, err := read(path)
	if err != nil {
		return nil, err
	}

	if err := cfg.validateAndNormalize(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// LoadDatabase は database セクションのみを検証して返します。
// マイグレーションのように認証やメディアの設定を必要としない処理で使います。
func LoadDatabase(path string) (DatabaseConfig, error) {
	cfg, err := read(path)
	if err != nil {
		return DatabaseConfig{}, err
	}

	if err := cfg.Database.validateAndNormalize(); err != nil {
		return DatabaseConfig{}, err
	}

	return cfg.Database, nil
}

func read(path string) (*Config, error) {
	if err := loadDotEnv(dotEnvFile); err != nil {
		return nil, err
	}

	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read file %s: %w", path, err)
	}

	var cfg Config
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return nil, fmt.Errorf("config: parse yaml: %w", err)
	}

	cfg.applyEnv()
	return &cfg, nil
}

// loadDotEnv は .env を環境変数へ読み込みます。ファイルが無い場合のみ無視します。
func loadDotEnv(path string) error {
	if err := godotenv.Load(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("config: load %s: %w", path, err)
	}
	return nil
}

func (c *Config) applyEnv() {
	overrideString(&c.Auth.JWTSecret, "JWT_SECRET")
	overrideString(&c.Database.Password, "DATABASE_PASSWORD")
	overrideString(&c.Media.AccessKeyID, "MEDIA_ACCESS_KEY_ID")
	overrideString(&c.Media.SecretAccessKey, "MEDIA_SECRET_ACCESS_KEY")
}

func overrideString(dst *string, key string) {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		*dst = v
	}
}

func (c *Config) validateAndNormalize() error {
	if err := c.Server.validateAndNormalize(); err != nil {
		return err
	}

	db := &c.Database
	if err := db.validateAndNormalize(); err != nil {
		return err
	}

	if err := c.Auth.validateAndNormalize(); err != nil {
		return err
	}

	if err := c.Media.validateAndNormalize(); err != nil {
		return err
	}

	return c.Logging.validateAndNormalize()
}

func (s *ServerConfig) validateAndNormalize() error {
	if s.ListenAddr == "" {
		return fmt.Errorf("config: server.listen_addr must be set")
	}

	read, err := parseDurationAllowEmpty(s.ReadTimeoutRaw)
	if err != nil {
		return fmt.Errorf("config: server.read_timeout: %w", err)
	}
	if read == 0 {
		read = defaultReadTimeout
	}
	s.ReadTimeout = read

	write, err := parseDurationAllowEmpty(s.WriteTimeoutRaw)
	if err != nil {
		return fmt.Errorf("config: server.write_timeout: %w", err)
	}
	if write == 0 {
		write = defaultWriteTimeout
	}
	s.WriteTimeout = write

	return nil
}

func (d *DatabaseConfig) validateAndNormalize() error {
	if d.Host == "" {
		return fmt.Errorf("config: database.host must be set")
	}
	if d.Port == 0 {
		return fmt.Errorf("config: database.port must be set")
	}
	if d.User == "" {
		return fmt.Errorf("config: database.user must be set")
	}
	if d.Password == "" {
		return fmt.Errorf("config: database.password must be set")
	}
	if d.Name == "" {
		return fmt.Errorf("config: database.name must be set")
	}
	if d.SSLMode == "" {
		d.SSLMode = "disable"
	}
	if d.MaxOpenConns < 0 || d.MaxOpenConns > math.MaxInt32 {
		return fmt.Errorf("config: database.max_open_conns must be between 0 and %d", math.MaxInt32)
	}
	if d.MaxIdleConns < 0 || d.MaxIdleConns > math.MaxInt32 {
		return fmt.Errorf("config: database.max_idle_conns must be between 0 and %d", math.MaxInt32)
	}
	if d.MaxOpenConns > 0 && d.MaxIdleConns > d.MaxOpenConns {
		return fmt.Errorf("config: database.max_idle_conns must not exceed max_open_conns")
	}

	lifetime, err := parseDurationAllowEmpty(d.ConnMaxLifetimeRaw)
	if err != nil {
		return fmt.Errorf("config: database.conn_max_lifetime: %w", err)
	}
	d.ConnMaxLifetime = lifetime

	idleTime, err := parseDurationAllowEmpty(d.ConnMaxIdleTimeRaw)
	if err != nil {
		return fmt.Errorf("config: database.conn_max_idle_time: %w", err)
	}
	d.ConnMaxIdleTime = idleTime

	return nil
}

func (a *AuthConfig) validateAndNormalize() error {
	if strings.TrimSpace(a.JWTSecret) == "" {
		return fmt.Errorf("config: auth.jwt_secret must be set (or JWT_SECRET)")
	}

	ttl, err := parseDurationAllowEmpty(a.TokenTTLRaw)
	if err != nil {
		return fmt.Errorf("config: auth.token_ttl: %w", err)
	}
	if ttl < 0 {
		return fmt.Errorf("config: auth.token_ttl must be positive")
	}
	if ttl == 0 {
		ttl = defaultTokenTTL
	}
	a.TokenTTL = ttl

	if a.BcryptCost == 0 {
		a.BcryptCost = defaultBcryptCost
	}

	return nil
}

func (m *MediaConfig) validateAndNormalize() error {
	if m.Bucket == "" {
		return fmt.Errorf("config: media.bucket must be set")
	}
	if m.PublicBaseURL == "" {
		return fmt.Errorf("config: media.public_base_url must be set")
	}
	if _, err := url.ParseRequestURI(m.PublicBaseURL); err != nil {
		return fmt.Errorf("config: media.public_base_url: %w", err)
	}
	m.PublicBaseURL = strings.TrimRight(m.PublicBaseURL, "/")

	if m.Region == "" {
		m.Region = defaultMediaRegion
	}
	m.Folder = strings.Trim(m.Folder, "/")
	if m.Folder == "" {
		m.Folder = defaultMediaFolder
	}
	return nil
}

func (l *LoggingConfig) validateAndNormalize() error {
	l.Level = strings.ToLower(l.Level)
	if l.Level == "" {
		l.Level = defaultLogLevel
	}
	switch l.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("config: logging.level must be one of debug, info, warn, error")
	}

	l.Format = strings.ToLower(l.Format)
	if l.Format == "" {
		l.Format = defaultLogFormat
	}
	if l.Format != "json" && l.Format != "text" {
		return fmt.Errorf("config: logging.format must be json or text")
	}
	return nil
}

func parseDurationAllowEmpty(raw string) (time.Duration, error) {
	if raw == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, err
	}
	return d, nil
}

// DSN は pgx 用の接続文字列を返します。
func (d DatabaseConfig) DSN() string {
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(d.User, d.Password),
		Host:     net.JoinHostPort(d.Host, strconv.Itoa(d.Port)),
		Path:     "/" + d.Name,
		RawQuery: "sslmode=" + url.QueryEscape(d.SSLMode),
	}
	return u.String()
}
