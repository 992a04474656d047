package provider

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/julianshen/repodoc/internal/config"
)

// DefaultAnthropicBaseURL is used when [provider.anthropic] sets no base_url.
const DefaultAnthropicBaseURL = "https://api.anthropic.com"

// ProviderConstructor builds an LLMProvider for one endpoint. A nil client
// means the provider's default.
type ProviderConstructor func(baseURL, apiKey string, extraHeaders map[string]string, client *http.Client) LLMProvider

var registry = map[string]ProviderConstructor{}

// RegisterProvider makes a wire protocol available to NewProvider. The
// anthropic and openai packages register themselves from init.
func RegisterProvider(protocol string, constructor ProviderConstructor) {
	registry[protocol] = constructor
}

// endpoint is a resolved provider selection.
type endpoint struct {
	protocol     string
	baseURL      string
	apiKey       string
	extraHeaders map[string]string
}

// NewProvider builds the provider named by cfg.Provider.Default. "anthropic"
// selects the Messages API. Any other name must match a
// [[provider.openai_compatible]] entry.
func NewProvider(cfg *config.Config, client *http.Client) (LLMProvider, error) {
	ep, err := resolveEndpoint(cfg.Provider)
	if err != nil {
		return nil, err
	}
	constructor, ok := registry[ep.protocol]
	if !ok {
		return nil, fmt.Errorf("%s provider not registered", ep.protocol)
	}
	return constructor(ep.baseURL, ep.apiKey, ep.extraHeaders, client), nil
}

func resolveEndpoint(pc config.ProviderConfig) (endpoint, error) {
	name := pc.Default
	if name == "anthropic" {
		key, err := config.ResolveAPIKey(pc.Anthropic.APIKeySource, pc.Anthropic.APIKey, config.EnvAnthropicKey)
		if err != nil {
			return endpoint{}, fmt.Errorf("resolving anthropic api key: %w", err)
		}
		base := pc.Anthropic.BaseURL
		if base == "" {
			base = DefaultAnthropicBaseURL
		}
		return endpoint{protocol: "anthropic", baseURL: base, apiKey: key}, nil
	}

	for _, oc := range pc.OpenAI {
		if oc.Name != name {
			continue
		}
		if strings.TrimSpace(oc.BaseURL) == "" {
			return endpoint{}, fmt.Errorf("provider %q has no base_url", name)
		}
		key, err := config.ResolveAPIKey(oc.APIKeySource, oc.APIKey, APIKeyEnvVar(name))
		if err != nil {
			return endpoint{}, fmt.Errorf("resolving %s api key: %w", name, err)
		}
		return endpoint{protocol: "openai", baseURL: oc.BaseURL, apiKey: key, extraHeaders: oc.ExtraHeaders}, nil
	}
	return endpoint{}, fmt.Errorf("unknown provider: %q", name)
}

// APIKeyEnvVar names the environment variable holding the key of an
// OpenAI-compatible entry: "local-llm" reads LOCAL_LLM_API_KEY.
func APIKeyEnvVar(name string) string {
	return strings.ToUpper(strings.ReplaceAll(name, "-", "_")) + "_API_KEY"
}
