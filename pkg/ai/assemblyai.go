package ai

import (
	"os"

	aai "github.com/AssemblyAI/assemblyai-go-sdk"

	"github.com/johnquangdev/meeting-insights/pkg/config"
)

// NewAssemblyAIClient creates an official AssemblyAI SDK client using the
// provided config. If cfg is nil, falls back to environment variables.
func NewAssemblyAIClient(cfg *config.AssemblyConfig) *aai.Client {
	var apiKey string
	if cfg != nil {
		apiKey = cfg.APIKey
	}
	if apiKey == "" {
		apiKey = os.Getenv("ASSEMBLYAI_API_KEY")
	}
	return aai.NewClient(apiKey)
}
