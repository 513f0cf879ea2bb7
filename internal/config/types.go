package config

// Settings holds all runtime configuration for the analyzer service.
// Exactly one of the OpenAI and Azure OpenAI credential sets must be
// populated; see Validate.
type Settings struct {
	// OpenAI
	OpenAIAPIKey string `yaml:"openai_api_key"`
	OpenAIModel  string `yaml:"openai_model"`

	// Azure OpenAI
	AzureEndpoint   string `yaml:"azure_openai_endpoint"`
	AzureDeployment string `yaml:"azure_openai_deployment_name"`
	AzureAPIKey     string `yaml:"azure_openai_api_key"`
	AzureAPIVersion string `yaml:"azure_openai_api_version"`

	// Sampling temperature for the extraction chain.
	Temperature float32 `yaml:"temperature"`

	// TmpDir is the root under which zip inputs are extracted.
	TmpDir string `yaml:"tmp_dir"`
	// DestinationFolder receives downloaded repository zipballs.
	DestinationFolder string `yaml:"destination_folder"`

	// HTTP API bind address.
	Host string `yaml:"host"`
	Port int    `yaml:"port"`

	// DatabaseURL enables the run-history store when set.
	DatabaseURL string `yaml:"database_url"`
}

// Model returns the model identifier the active backend will be called with.
func (s *Settings) Model() string {
	if s.HasAzure() {
		return s.AzureDeployment
	}
	return s.OpenAIModel
}

// HasOpenAI reports whether the plain OpenAI backend is configured.
func (s *Settings) HasOpenAI() bool {
	return s.OpenAIAPIKey != ""
}

// HasAzure reports whether the Azure OpenAI backend is fully configured.
func (s *Settings) HasAzure() bool {
	return s.AzureEndpoint != "" && s.AzureDeployment != "" && s.AzureAPIKey != "" && s.AzureAPIVersion != ""
}
