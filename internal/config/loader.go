package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Load builds Settings from the environment. A .env file in the working
// directory is loaded first when present (it never overrides variables
// already set), then an optional YAML settings file, then the environment
// itself, which always wins.
func Load() (*Settings, error) {
	_ = godotenv.Load()

	s := defaultSettings()

	path := os.Getenv("TFANALYZER_CONFIG")
	if path == "" {
		if _, err := os.Stat("tfanalyzer.yaml"); err == nil {
			path = "tfanalyzer.yaml"
		}
	}
	if path != "" {
		if err := loadFile(path, s); err != nil {
			return nil, err
		}
	}

	applyEnv(s)
	return s, nil
}

func defaultSettings() *Settings {
	return &Settings{
		OpenAIModel:       "gpt-4o",
		Temperature:       0.7,
		DestinationFolder: "/tmp",
		Host:              "127.0.0.1",
		Port:              8123,
	}
}

// loadFile merges a YAML settings file into s.
func loadFile(path string, s *Settings) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading config file: %w", err)
	}
	if err := yaml.Unmarshal(data, s); err != nil {
		return fmt.Errorf("parsing config YAML: %w", err)
	}
	return nil
}

// applyEnv overlays environment variables onto s.
func applyEnv(s *Settings) {
	setString(&s.OpenAIAPIKey, "OPENAI_API_KEY")
	setString(&s.OpenAIModel, "OPENAI_MODEL")
	setString(&s.AzureEndpoint, "AZURE_OPENAI_ENDPOINT")
	setString(&s.AzureDeployment, "AZURE_OPENAI_DEPLOYMENT_NAME")
	setString(&s.AzureAPIKey, "AZURE_OPENAI_API_KEY")
	setString(&s.AzureAPIVersion, "AZURE_OPENAI_API_VERSION")
	setString(&s.TmpDir, "TMP_DIR")
	setString(&s.DestinationFolder, "DESTINATION_FOLDER")
	setString(&s.Host, "TF_CODE_ANALYZER_HOST")
	setString(&s.DatabaseURL, "DATABASE_URL")

	if v := os.Getenv("OPENAI_TEMPERATURE"); v != "" {
		if f, err := strconv.ParseFloat(v, 32); err == nil {
			s.Temperature = float32(f)
		} else {
			slog.Warn("ignoring invalid OPENAI_TEMPERATURE", "value", v)
		}
	}
	if v := os.Getenv("TF_CODE_ANALYZER_PORT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			s.Port = n
		} else {
			slog.Warn("ignoring invalid TF_CODE_ANALYZER_PORT", "value", v)
		}
	}
}

func setString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}
