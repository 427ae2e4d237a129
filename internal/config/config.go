package config

import (
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Server struct {
		Port string `yaml:"port"`
	} `yaml:"server"`
	Log struct {
		Level  string `yaml:"level"`
		Format string `yaml:"format"`
	} `yaml:"log"`
	Redis struct {
		Addr     string `yaml:"addr"`
		Password string `yaml:"password"`
		DB       int    `yaml:"db"`
		TTL      string `yaml:"ttl"`
	} `yaml:"redis"`
	Postgres struct {
		URL string `yaml:"url"`
	} `yaml:"postgres"`
	Game struct {
		// QuestionSet names the set of three question lists a new room copies.
		QuestionSet string `yaml:"questionSet"`
		// WarmupSeconds is the fixed sequential-quiz round duration.
		WarmupSeconds int `yaml:"warmupSeconds"`
		// QualificationAdvance is how many players survive the qualification cut.
		QualificationAdvance int `yaml:"qualificationAdvance"`
		// WarmupAdvance is how many players survive the warmup cut.
		WarmupAdvance  int    `yaml:"warmupAdvance"`
		RoomCodeLength int    `yaml:"roomCodeLength"`
		BankTTL        string `yaml:"bankTTL"`
	} `yaml:"game"`
}

// Load reads YAML config from path.
func Load(path string) (Config, error) {
	cfg := Config{}
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// TTLDuration parses a duration string or returns the fallback if empty or invalid.
func TTLDuration(raw string, fallback time.Duration) time.Duration {
	if raw == "" {
		return fallback
	}
	if d, err := time.ParseDuration(raw); err == nil {
		return d
	}
	return fallback
}
