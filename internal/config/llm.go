package config

import "github.com/embercraft/companion/internal/llm"

// LLMConfiguration projects the [ai] table into the dispatcher's own
// configuration type, leaving ToolEnabled for the caller to set once the
// tool registry exists.
func (f *File) LLMConfiguration() llm.Configuration {
	cfg := llm.Configuration{
		PrimaryURL:   f.AI.Cloud.URL,
		PrimaryKey:   f.AI.Cloud.Key,
		PrimaryModel: f.AI.Cloud.Model,

		FallbackURL:   f.AI.CloudFallback.URL,
		FallbackKey:   f.AI.CloudFallback.Key,
		FallbackModel: f.AI.CloudFallback.Model,

		LocalURL:   f.AI.Local.URL,
		LocalModel: f.AI.Local.Model,

		Temperature: f.AI.Temperature,
		MaxTokens:   f.AI.MaxTokens,

		MaxToolIterations: f.AI.MaxToolIterations,
		TimeoutMS:         f.AI.TimeoutMS,

		ProviderFailureCooldownTicks: f.AI.ProviderFailureCooldownTicks,
		BlockedCommands:              f.AI.BlockedCommands,
	}
	return cfg
}
