package config

import (
	"fmt"
	"os/exec"
	"strings"
)

// ValidationError represents a single validation issue with the settings.
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// azureFields lists the settings an Azure OpenAI deployment requires.
var azureFields = []string{
	"AZURE_OPENAI_ENDPOINT",
	"AZURE_OPENAI_DEPLOYMENT_NAME",
	"AZURE_OPENAI_API_KEY",
	"AZURE_OPENAI_API_VERSION",
}

// Validate checks Settings for structural and semantic errors. Exactly one
// LLM backend must be configured: OpenAI, or the full Azure credential set.
// It returns a slice of all validation errors found (empty if valid).
func Validate(s *Settings) []ValidationError {
	var errs []ValidationError

	hasOpenAI := s.HasOpenAI()
	hasAzure := s.HasAzure()
	azurePartial := !hasAzure &&
		(s.AzureEndpoint != "" || s.AzureDeployment != "" || s.AzureAPIKey != "" || s.AzureAPIVersion != "")

	switch {
	case hasOpenAI && hasAzure:
		errs = append(errs, ValidationError{
			Field:   "llm",
			Message: "both OpenAI and Azure OpenAI settings are provided; provide only one",
		})
	case azurePartial:
		errs = append(errs, ValidationError{
			Field:   "llm",
			Message: fmt.Sprintf("incomplete Azure OpenAI settings; required: %s", strings.Join(azureFields, ", ")),
		})
	case !hasOpenAI && !hasAzure:
		errs = append(errs, ValidationError{
			Field:   "llm",
			Message: fmt.Sprintf("missing LLM settings; provide OPENAI_API_KEY or all of: %s", strings.Join(azureFields, ", ")),
		})
	}

	if s.Port <= 0 || s.Port > 65535 {
		errs = append(errs, ValidationError{
			Field:   "port",
			Message: fmt.Sprintf("invalid port %d", s.Port),
		})
	}

	return errs
}

// requiredBinaries are the external tools the pipeline shells out to.
var requiredBinaries = []string{"terraform", "tflint"}

// CheckRequiredBinaries verifies that terraform and tflint resolve on PATH.
// It runs at service startup, before the pipeline ever spawns a process.
func CheckRequiredBinaries() error {
	var missing []string
	for _, bin := range requiredBinaries {
		if _, err := exec.LookPath(bin); err != nil {
			missing = append(missing, bin)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing required binaries: %s", strings.Join(missing, ", "))
	}
	return nil
}
