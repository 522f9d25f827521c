package config

import (
	"encoding/json"
	"fmt"
	"os"
	"time"
)

// StructuredJSONConfig mirrors [StructuredConfig] in the shape of the JSON
// configuration file.
type StructuredJSONConfig struct {
	App struct {
		BaseURL       string   `json:"base_url"`
		Version       string   `json:"version"`
		TokenSignKey  string   `json:"token_sign_key"`
		TokenIssuer   string   `json:"token_issuer"`
		TokenDuration Duration `json:"token_duration"`
		BcryptCost    int      `json:"bcrypt_cost"`
		LogLevel      string   `json:"log_level"`
	} `json:"app,omitempty"`

	Storage struct {
		DB struct {
			Driver string `json:"driver"`
			DSN    string `json:"dsn"`
		} `json:"db,omitempty"`
	} `json:"storage,omitempty"`

	Server struct {
		HTTPAddress       string   `json:"http_address"`
		RequestTimeout    Duration `json:"request_timeout"`
		RateLimitRPS      float64  `json:"rate_limit_rps"`
		RateLimitBurst    int      `json:"rate_limit_burst"`
		TrustProxyHeaders bool     `json:"trust_proxy_headers"`
	} `json:"server,omitempty"`

	Session struct {
		CookieName string   `json:"cookie_name"`
		HashKey    string   `json:"hash_key"`
		BlockKey   string   `json:"block_key"`
		MaxAge     Duration `json:"max_age"`
		Secure     bool     `json:"secure"`
	} `json:"session,omitempty"`

	Mail struct {
		Driver         string   `json:"driver"`
		From           string   `json:"from"`
		SMTPHost       string   `json:"smtp_host"`
		SMTPPort       int      `json:"smtp_port"`
		SMTPUsername   string   `json:"smtp_username"`
		SMTPPassword   string   `json:"smtp_password"`
		HTTPEndpoint   string   `json:"http_endpoint"`
		HTTPAPIKey     string   `json:"http_api_key"`
		Timeout        Duration `json:"timeout"`
		RetryAttempts  uint64   `json:"retry_attempts"`
		RetryBaseDelay Duration `json:"retry_base_delay"`
	} `json:"mail,omitempty"`
}

func parseJSON(jsonFilePath string) (*StructuredConfig, error) {
	jsonFile, err := os.Open(jsonFilePath)
	if err != nil {
		return nil, fmt.Errorf("error reading a json file: %w", err)
	}
	defer jsonFile.Close()

	var jsonCfg StructuredJSONConfig
	if err := json.NewDecoder(jsonFile).Decode(&jsonCfg); err != nil {
		return nil, fmt.Errorf("error decoding json configs: %w", err)
	}

	cfg := &StructuredConfig{
		App: App{
			BaseURL:       jsonCfg.App.BaseURL,
			Version:       jsonCfg.App.Version,
			TokenSignKey:  jsonCfg.App.TokenSignKey,
			TokenIssuer:   jsonCfg.App.TokenIssuer,
			TokenDuration: time.Duration(jsonCfg.App.TokenDuration),
			BcryptCost:    jsonCfg.App.BcryptCost,
			LogLevel:      jsonCfg.App.LogLevel,
		},
		Storage: Storage{
			DB: DB{
				Driver: jsonCfg.Storage.DB.Driver,
				DSN:    jsonCfg.Storage.DB.DSN,
			},
		},
		Server: Server{
			HTTPAddress:       jsonCfg.Server.HTTPAddress,
			RequestTimeout:    time.Duration(jsonCfg.Server.RequestTimeout),
			RateLimitRPS:      jsonCfg.Server.RateLimitRPS,
			RateLimitBurst:    jsonCfg.Server.RateLimitBurst,
			TrustProxyHeaders: jsonCfg.Server.TrustProxyHeaders,
		},
		Session: Session{
			CookieName: jsonCfg.Session.CookieName,
			HashKey:    jsonCfg.Session.HashKey,
			BlockKey:   jsonCfg.Session.BlockKey,
			MaxAge:     time.Duration(jsonCfg.Session.MaxAge),
			Secure:     jsonCfg.Session.Secure,
		},
		Mail: Mail{
			Driver:         jsonCfg.Mail.Driver,
			From:           jsonCfg.Mail.From,
			SMTPHost:       jsonCfg.Mail.SMTPHost,
			SMTPPort:       jsonCfg.Mail.SMTPPort,
			SMTPUsername:   jsonCfg.Mail.SMTPUsername,
			SMTPPassword:   jsonCfg.Mail.SMTPPassword,
			HTTPEndpoint:   jsonCfg.Mail.HTTPEndpoint,
			HTTPAPIKey:     jsonCfg.Mail.HTTPAPIKey,
			Timeout:        time.Duration(jsonCfg.Mail.Timeout),
			RetryAttempts:  jsonCfg.Mail.RetryAttempts,
			RetryBaseDelay: time.Duration(jsonCfg.Mail.RetryBaseDelay),
		},
	}

	return cfg, nil
}

// Duration is a wrapper around time.Duration that supports JSON unmarshaling from strings like "1h", "30s"
type Duration time.Duration

func (d *Duration) UnmarshalJSON(b []byte) error {
	var v interface{}
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}

	switch value := v.(type) {
	case float64:
		*d = Duration(time.Duration(value))
		return nil
	case string:
		tmp, err := time.ParseDuration(value)
		if err != nil {
			return err
		}
		*d = Duration(tmp)
		return nil
	default:
		return json.Unmarshal(b, (*time.Duration)(d))
	}
}

func (d Duration) MarshalJSON() ([]byte, error) {
	return json.Marshal(time.Duration(d).String())
}
