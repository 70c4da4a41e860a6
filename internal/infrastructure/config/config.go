package config

import "time"

// Config holds all configuration for the application
type Config struct {
	Environment string         `mapstructure:"environment"`
	Server      ServerConfig   `mapstructure:"server"`
	Database    DatabaseConfig `mapstructure:"database"`
	Logger      LoggerConfig   `mapstructure:"logger"`
	Mpesa       MpesaConfig    `mapstructure:"mpesa"`
	Email       EmailConfig    `mapstructure:"email"`
	Business    BusinessConfig `mapstructure:"business"`
}

// ServerConfig contains HTTP server settings
type ServerConfig struct {
	Host              string        `mapstructure:"host"`
	Port              int           `mapstructure:"port"`
	ReadTimeout       time.Duration `mapstructure:"readTimeout"`       // seconds
	WriteTimeout      time.Duration `mapstructure:"writeTimeout"`      // seconds
	IdleTimeout       time.Duration `mapstructure:"idleTimeout"`       // seconds
	ReadHeaderTimeout time.Duration `mapstructure:"readHeaderTimeout"` // seconds
	ShutdownTimeout   time.Duration `mapstructure:"shutdownTimeout"`   // seconds
}

// DatabaseConfig contains database connection settings
type DatabaseConfig struct {
	Driver          string        `mapstructure:"driver"`
	Host            string        `mapstructure:"host"`
	Port            string        `mapstructure:"port"`
	Username        string        `mapstructure:"username"`
	Password        string        `mapstructure:"password"`
	Database        string        `mapstructure:"database"`
	SSLMode         string        `mapstructure:"sslMode"`
	MaxOpenConns    int           `mapstructure:"maxOpenConns"`
	MaxIdleConns    int           `mapstructure:"maxIdleConns"`
	ConnMaxLifetime time.Duration `mapstructure:"connMaxLifetime"` // minutes
	ConnMaxIdleTime time.Duration `mapstructure:"connMaxIdleTime"` // minutes
	QueryTimeout    time.Duration `mapstructure:"queryTimeout"`    // seconds
	RetryAttempts   int           `mapstructure:"retryAttempts"`
	RetryDelay      time.Duration `mapstructure:"retryDelay"` // seconds
}

// LoggerConfig contains logger settings
type LoggerConfig struct {
	Level      string `mapstructure:"level"`
	Format     string `mapstructure:"format"`
	Output     string `mapstructure:"output"`
	TimeFormat string `mapstructure:"timeFormat"`
	CallerInfo bool   `mapstructure:"callerInfo"`
}

// MpesaConfig contains the Daraja API settings
type MpesaConfig struct {
	Environment    string        `mapstructure:"environment"` // sandbox or production
	ConsumerKey    string        `mapstructure:"consumerKey"`
	ConsumerSecret string        `mapstructure:"consumerSecret"`
	ShortCode      string        `mapstructure:"shortCode"`
	Passkey        string        `mapstructure:"passkey"`
	CallbackURL    string        `mapstructure:"callbackUrl"`
	Timeout        time.Duration `mapstructure:"timeout"` // seconds
}

// EmailConfig contains the transactional email provider settings
type EmailConfig struct {
	APIKey  string        `mapstructure:"apiKey"`
	From    string        `mapstructure:"from"`
	Timeout time.Duration `mapstructure:"timeout"` // seconds
}

// BusinessConfig identifies the merchant on receipts
type BusinessConfig struct {
	Name  string `mapstructure:"name"`
	Phone string `mapstructure:"phone"`
	Email string `mapstructure:"email"`
}
