package enrollment

import (
	"github.com/caarlos0/env/v11"
	_ "github.com/joho/godotenv/autoload" // Load .env file automatically
)

// Config carries the service settings loadable from the environment.
//
// Issuer is the label shown in authenticator apps. SiteName is the
// human-readable name embedded in backup documents and their filenames and
// defaults to Issuer when empty. Scopes is the comma-separated whitelist of
// enrollment scopes. The remaining fields mirror the RFC 6238 parameters.
type Config struct {
	Issuer            string   `env:"TWOFA_ISSUER,required"`
	SiteName          string   `env:"TWOFA_SITE_NAME"`
	Scopes            []string `env:"TWOFA_SCOPES" envDefault:"user"`
	Digits            int      `env:"TWOFA_DIGITS" envDefault:"6"`
	Period            int      `env:"TWOFA_PERIOD" envDefault:"30"`
	Window            int      `env:"TWOFA_WINDOW" envDefault:"1"`
	SecretLength      int      `env:"TWOFA_SECRET_LENGTH" envDefault:"20"`
	RecoveryCodeCount int      `env:"TWOFA_RECOVERY_CODES" envDefault:"10"`
}

// LoadConfig loads the service configuration from the environment.
func LoadConfig() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}
