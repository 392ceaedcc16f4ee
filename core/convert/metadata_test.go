package convert

import (
	"testing"

	"github.com/mfalcone/bridgo/providers/ai"
	"github.com/mfalcone/bridgo/providers/store"
)

func TestExtractResponseMetadata_TokenMath(t *testing.T) {
	response := &ai.ChatResponse{
		Usage: &ai.Usage{PromptTokens: 50, CompletionTokens: 50},
	}

	meta := ExtractResponseMetadata(response, nil)

	if meta[MetaKeyTokens] != 100 {
		t.Errorf("expected tokens 100, got %v", meta[MetaKeyTokens])
	}
	if meta[MetaKeyPromptTokens] != 50 || meta[MetaKeyCompletionTokens] != 50 {
		t.Errorf("unexpected token split: %v", meta)
	}
}

func TestExtractResponseMetadata_AbsentFieldsProduceAbsentKeys(t *testing.T) {
	meta := ExtractResponseMetadata(&ai.ChatResponse{}, nil)

	for _, key := range []string{
		MetaKeyTokens, MetaKeyPromptTokens, MetaKeyCompletionTokens,
		MetaKeyModel, MetaKeyRequestID, MetaKeyFinishReason, MetaKeySteps,
	} {
		if _, present := meta[key]; present {
			t.Errorf("expected key %q absent for empty response, got %v", key, meta[key])
		}
	}
}

func TestExtractResponseMetadata_ZeroUsageIsStillReported(t *testing.T) {
	// A reported zero is not the same as "not reported": the usage struct is
	// present, so the token keys must appear with value 0.
	response := &ai.ChatResponse{Usage: &ai.Usage{}}

	meta := ExtractResponseMetadata(response, nil)

	if value, present := meta[MetaKeyTokens]; !present || value != 0 {
		t.Errorf("expected tokens key present with 0, got %v (present=%v)", value, present)
	}
}

func TestExtractResponseMetadata_FullResponse(t *testing.T) {
	response := &ai.ChatResponse{
		ID:           "req_abc",
		Model:        "sonnet-latest",
		FinishReason: "stop",
		Usage:        &ai.Usage{PromptTokens: 12, CompletionTokens: 3},
		Steps:        []ai.Step{{Text: "a"}, {Text: "b"}},
	}

	meta := ExtractResponseMetadata(response, nil)

	if meta[MetaKeyModel] != "sonnet-latest" {
		t.Errorf("expected model, got %v", meta[MetaKeyModel])
	}
	if meta[MetaKeyRequestID] != "req_abc" {
		t.Errorf("expected provider_request_id, got %v", meta[MetaKeyRequestID])
	}
	if meta[MetaKeyFinishReason] != "stop" {
		t.Errorf("expected finish_reason, got %v", meta[MetaKeyFinishReason])
	}
	if meta[MetaKeySteps] != 2 {
		t.Errorf("expected steps 2, got %v", meta[MetaKeySteps])
	}
}

func TestExtractResponseMetadata_ExtraWinsOnCollision(t *testing.T) {
	response := &ai.ChatResponse{Model: "model-from-response"}
	extra := store.Metadata{"model": "model-from-caller", "custom": "kept"}

	meta := ExtractResponseMetadata(response, extra)

	if meta[MetaKeyModel] != "model-from-caller" {
		t.Errorf("expected caller value to win, got %v", meta[MetaKeyModel])
	}
	if meta["custom"] != "kept" {
		t.Errorf("expected custom extra key preserved, got %v", meta["custom"])
	}
}

func TestExtractResponseMetadata_StripsEphemeralKeysFromBothSides(t *testing.T) {
	extra := store.Metadata{
		"cache_type":       "ephemeral",
		"cache_control":    map[string]any{"type": "ephemeral"},
		"provider_options": map[string]any{"anthropic": "beta"},
		"kept":             true,
	}

	meta := ExtractResponseMetadata(&ai.ChatResponse{Model: "m"}, extra)

	for _, key := range []string{"cache_type", "cache_control", "provider_options"} {
		if _, present := meta[key]; present {
			t.Errorf("expected ephemeral key %q stripped, got %v", key, meta[key])
		}
	}
	if meta["kept"] != true {
		t.Errorf("expected non-ephemeral extra key preserved")
	}
}

func TestExtractResponseMetadata_NilResponse(t *testing.T) {
	meta := ExtractResponseMetadata(nil, store.Metadata{"agent": "demo"})

	if len(meta) != 1 || meta["agent"] != "demo" {
		t.Errorf("expected only extra keys for nil response, got %v", meta)
	}
}

func TestMergeMetadata(t *testing.T) {
	base := store.Metadata{"a": 1, "b": 1}
	overrides := store.Metadata{"b": 2, "c": 2}

	merged := MergeMetadata(base, overrides)

	if merged["a"] != 1 || merged["b"] != 2 || merged["c"] != 2 {
		t.Errorf("unexpected merge result: %v", merged)
	}

	// Inputs must stay untouched.
	if base["b"] != 1 {
		t.Errorf("expected base unmutated, got %v", base)
	}
	if len(overrides) != 2 {
		t.Errorf("expected overrides unmutated, got %v", overrides)
	}
}

func TestMergeMetadata_NilInputs(t *testing.T) {
	if merged := MergeMetadata(nil, nil); len(merged) != 0 {
		t.Errorf("expected empty map from nil inputs, got %v", merged)
	}
	if merged := MergeMetadata(nil, store.Metadata{"x": 1}); merged["x"] != 1 {
		t.Errorf("expected overrides applied over nil base, got %v", merged)
	}
}

func TestStripEphemeral(t *testing.T) {
	meta := store.Metadata{"cache_control": "x", "tokens": 10}

	stripped := StripEphemeral(meta)

	if _, present := stripped["cache_control"]; present {
		t.Errorf("expected cache_control removed")
	}
	if stripped["tokens"] != 10 {
		t.Errorf("expected other keys untouched")
	}
}
