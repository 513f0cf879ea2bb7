package config

import (
	"bytes"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// clearLLMEnv blanks every credential variable so tests see a clean slate.
func clearLLMEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"OPENAI_API_KEY", "OPENAI_MODEL", "OPENAI_TEMPERATURE",
		"AZURE_OPENAI_ENDPOINT", "AZURE_OPENAI_DEPLOYMENT_NAME",
		"AZURE_OPENAI_API_KEY", "AZURE_OPENAI_API_VERSION",
		"TMP_DIR", "DESTINATION_FOLDER",
		"TF_CODE_ANALYZER_HOST", "TF_CODE_ANALYZER_PORT",
		"DATABASE_URL", "TFANALYZER_CONFIG",
	} {
		t.Setenv(key, "")
	}
}

func TestLoad_Defaults(t *testing.T) {
	clearLLMEnv(t)
	t.Chdir(t.TempDir())

	s, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if s.OpenAIModel != "gpt-4o" {
		t.Errorf("model = %q, want gpt-4o", s.OpenAIModel)
	}
	if s.Temperature != 0.7 {
		t.Errorf("temperature = %v, want 0.7", s.Temperature)
	}
	if s.DestinationFolder != "/tmp" {
		t.Errorf("destination folder = %q, want /tmp", s.DestinationFolder)
	}
	if s.Host != "127.0.0.1" || s.Port != 8123 {
		t.Errorf("bind address = %s:%d, want 127.0.0.1:8123", s.Host, s.Port)
	}
}

func TestLoad_EnvOverridesDefaults(t *testing.T) {
	clearLLMEnv(t)
	t.Chdir(t.TempDir())
	t.Setenv("OPENAI_API_KEY", "sk-test")
	t.Setenv("OPENAI_MODEL", "gpt-4o-mini")
	t.Setenv("OPENAI_TEMPERATURE", "0.2")
	t.Setenv("TMP_DIR", "/scratch")
	t.Setenv("TF_CODE_ANALYZER_PORT", "9000")

	s, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if s.OpenAIAPIKey != "sk-test" {
		t.Errorf("api key = %q", s.OpenAIAPIKey)
	}
	if s.OpenAIModel != "gpt-4o-mini" {
		t.Errorf("model = %q", s.OpenAIModel)
	}
	if s.Temperature != 0.2 {
		t.Errorf("temperature = %v", s.Temperature)
	}
	if s.TmpDir != "/scratch" {
		t.Errorf("tmp dir = %q", s.TmpDir)
	}
	if s.Port != 9000 {
		t.Errorf("port = %d", s.Port)
	}
}

func TestLoad_MalformedNumericEnvKeepsDefaults(t *testing.T) {
	clearLLMEnv(t)
	t.Chdir(t.TempDir())
	t.Setenv("OPENAI_TEMPERATURE", "warm")
	t.Setenv("TF_CODE_ANALYZER_PORT", "eighty")

	var logged bytes.Buffer
	prev := slog.Default()
	slog.SetDefault(slog.New(slog.NewTextHandler(&logged, nil)))
	t.Cleanup(func() { slog.SetDefault(prev) })

	s, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if s.Temperature != 0.7 {
		t.Errorf("temperature = %v, want default 0.7", s.Temperature)
	}
	if s.Port != 8123 {
		t.Errorf("port = %d, want default 8123", s.Port)
	}
	for _, key := range []string{"OPENAI_TEMPERATURE", "TF_CODE_ANALYZER_PORT"} {
		if !strings.Contains(logged.String(), key) {
			t.Errorf("expected a warning naming %s, got: %s", key, logged.String())
		}
	}
}

func TestLoad_YAMLFileThenEnvWins(t *testing.T) {
	clearLLMEnv(t)
	dir := t.TempDir()
	t.Chdir(dir)

	yaml := "openai_api_key: from-file\nopenai_model: file-model\nport: 7000\n"
	if err := os.WriteFile(filepath.Join(dir, "tfanalyzer.yaml"), []byte(yaml), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("OPENAI_MODEL", "env-model")

	s, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if s.OpenAIAPIKey != "from-file" {
		t.Errorf("api key = %q, want from-file", s.OpenAIAPIKey)
	}
	if s.OpenAIModel != "env-model" {
		t.Errorf("model = %q, env must win over the file", s.OpenAIModel)
	}
	if s.Port != 7000 {
		t.Errorf("port = %d, want 7000 from file", s.Port)
	}
}

func TestLoad_DotEnvFile(t *testing.T) {
	clearLLMEnv(t)
	dir := t.TempDir()
	t.Chdir(dir)

	if err := os.WriteFile(filepath.Join(dir, ".env"), []byte("OPENAI_API_KEY=sk-dotenv\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	// godotenv only fills variables that are unset, so the blank value left
	// by clearLLMEnv has to go. t.Setenv above restores it after the test.
	os.Unsetenv("OPENAI_API_KEY")

	s, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if s.OpenAIAPIKey != "sk-dotenv" {
		t.Errorf("api key = %q, want sk-dotenv", s.OpenAIAPIKey)
	}
}

func TestSettings_Model(t *testing.T) {
	s := &Settings{OpenAIModel: "gpt-4o"}
	if s.Model() != "gpt-4o" {
		t.Errorf("Model() = %q", s.Model())
	}

	s = &Settings{
		OpenAIModel:     "gpt-4o",
		AzureEndpoint:   "https://x.openai.azure.com",
		AzureDeployment: "my-deployment",
		AzureAPIKey:     "key",
		AzureAPIVersion: "2024-02-01",
	}
	if s.Model() != "my-deployment" {
		t.Errorf("Model() = %q, want the Azure deployment", s.Model())
	}
}
