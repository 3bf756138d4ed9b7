package server

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v2"
)

// Config represents the server configuration
type Config struct {
	Server struct {
		HTTPPort       int   `yaml:"http_port"`
		MaxUploadBytes int64 `yaml:"max_upload_bytes"`
	} `yaml:"server"`
	Mongo struct {
		URI               string `yaml:"uri"`
		Database          string `yaml:"database"`
		PasswordSecretARN string `yaml:"password_secret_arn"`
		CACertFile        string `yaml:"ca_cert_file"`
	} `yaml:"mongo"`
	S3 struct {
		Region     string `yaml:"region"`
		BucketName string `yaml:"bucket_name"`
	} `yaml:"s3"`
	Redis struct {
		Address string `yaml:"address"`
		TTL     int    `yaml:"ttl"`
	} `yaml:"redis"`
	Log struct {
		Level  string `yaml:"level"`
		Format string `yaml:"format"`
	} `yaml:"log"`
}

// LoadConfig loads the configuration from a file
func LoadConfig(path string) (*Config, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, fmt.Errorf("config file not found: %s", path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %v", err)
	}

	var config Config
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %v", err)
	}

	// Set defaults
	if config.Server.HTTPPort == 0 {
		config.Server.HTTPPort = 8080
	}
	if config.Server.MaxUploadBytes == 0 {
		config.Server.MaxUploadBytes = 32 << 20
	}
	if config.Mongo.URI == "" {
		config.Mongo.URI = "mongodb://localhost:27017"
	}
	if config.Mongo.Database == "" {
		config.Mongo.Database = "studiohub"
	}
	if config.S3.Region == "" {
		config.S3.Region = "us-east-1"
	}
	if config.S3.BucketName == "" {
		config.S3.BucketName = "studiohub-instructions"
	}
	if config.Redis.TTL == 0 {
		config.Redis.TTL = 300
	}
	if config.Log.Level == "" {
		config.Log.Level = "info"
	}

	return &config, nil
}
