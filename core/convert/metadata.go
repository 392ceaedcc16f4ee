package convert

import (
	"github.com/mfalcone/bridgo/providers/ai"
	"github.com/mfalcone/bridgo/providers/store"
)

// Metadata keys written by ExtractResponseMetadata.
const (
	MetaKeyTokens           = "tokens"
	MetaKeyPromptTokens     = "prompt_tokens"
	MetaKeyCompletionTokens = "completion_tokens"
	MetaKeyModel            = "model"
	MetaKeyRequestID        = "provider_request_id"
	MetaKeyFinishReason     = "finish_reason"
	MetaKeySteps            = "steps"
)

// ephemeralMetadataKeys are transient provider cache-control hints. Providers
// cap the number of cache annotations per request, so persisting them across
// turns would accumulate stale directives until requests start failing. They
// are stripped from every metadata map before it is written, no matter where
// they originated.
var ephemeralMetadataKeys = []string{
	"cache_type",
	"cache_control",
	"provider_options",
}

// ExtractResponseMetadata flattens a provider response into a metadata map
// ready for persistence, merging extra on top (extra wins on key collision).
//
// Absent response fields produce absent keys, never zero values: a response
// without usage yields no token keys at all, which keeps "not reported"
// distinguishable from "reported as zero". Cache-control hints are stripped
// from the final map regardless of whether they came from the response or
// from extra.
func ExtractResponseMetadata(response *ai.ChatResponse, extra store.Metadata) store.Metadata {
	meta := store.Metadata{}

	if response != nil {
		if response.Usage != nil {
			meta[MetaKeyTokens] = response.Usage.TotalTokens()
			meta[MetaKeyPromptTokens] = response.Usage.PromptTokens
			meta[MetaKeyCompletionTokens] = response.Usage.CompletionTokens
		}
		if response.Model != "" {
			meta[MetaKeyModel] = response.Model
		}
		if response.ID != "" {
			meta[MetaKeyRequestID] = response.ID
		}
		if response.FinishReason != "" {
			meta[MetaKeyFinishReason] = response.FinishReason
		}
		if len(response.Steps) > 0 {
			meta[MetaKeySteps] = len(response.Steps)
		}
	}

	return StripEphemeral(MergeMetadata(meta, extra))
}

// MergeMetadata combines two metadata maps into a fresh one. Keys present in
// overrides win over keys in base; neither input is mutated. Merge precedence
// is carried entirely by parameter position, so callers state it explicitly.
func MergeMetadata(base, overrides store.Metadata) store.Metadata {
	merged := make(store.Metadata, len(base)+len(overrides))
	for key, value := range base {
		merged[key] = value
	}
	for key, value := range overrides {
		merged[key] = value
	}
	return merged
}

// StripEphemeral removes provider cache-control hints from metadata. This is
// a dedicated post-merge filter: ephemeral keys always lose, regardless of
// merge order. The map is modified in place and returned for chaining.
func StripEphemeral(metadata store.Metadata) store.Metadata {
	for _, key := range ephemeralMetadataKeys {
		delete(metadata, key)
	}
	return metadata
}
