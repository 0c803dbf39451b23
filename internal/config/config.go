package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
)

// Config holds the application configuration, populated from environment
// variables.
type Config struct {
	ServerPort    int    `env:"PORT" envDefault:"8080"`
	DatabaseURL   string `env:"DATABASE_URL,required"`
	JWTSecret     string `env:"JWT_SECRET,required"`
	AllowedOrigin string `env:"ALLOWED_ORIGIN" envDefault:"http://localhost:5173"`

	// Standard cron expression controlling how often unattached image
	// records are cleaned up.
	ImageSweepSchedule string `env:"IMAGE_SWEEP_SCHEDULE" envDefault:"*/30 * * * *"`

	Cloudinary CloudinaryConfig
}

// CloudinaryConfig holds the credentials for the external media host.
type CloudinaryConfig struct {
	CloudName string `env:"CLOUDINARY_CLOUD_NAME"`
	APIKey    string `env:"CLOUDINARY_API_KEY"`
	APISecret string `env:"CLOUDINARY_API_SECRET"`
	Folder    string `env:"CLOUDINARY_FOLDER" envDefault:"blog-images"`
	// Overridable so tests can point the uploader at a local server.
	UploadBaseURL string `env:"CLOUDINARY_UPLOAD_BASE_URL" envDefault:"https://api.cloudinary.com/v1_1"`
}

// Load parses the configuration from environment variables.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse environment: %w", err)
	}
	return cfg, nil
}
