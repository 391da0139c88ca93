package types

import "time"

// ErrorResponse is a consistent JSON error payload.
type ErrorResponse struct {
	// Error message.
	// example: invalid JSON body
	Error string `json:"error" example:"invalid JSON body"`
	// HTTP status code.
	// example: 400
	Code int `json:"code" example:"400"`
}

// ProvidersResponse wraps the whole language model configuration returned by GET /providers.
type ProvidersResponse struct {
	Providers GlobalLLMConfig `json:"providers"`
}

// ProviderConfigUpdate is the body of PATCH /providers/{provider}. Remote model
// cards and the fetch time are owned by the catalog refresh and cannot be set here.
type ProviderConfigUpdate struct {
	// example: true
	Enabled *bool `json:"enabled,omitempty" example:"true"`
	// example: https://api.openai.com/v1
	Endpoint *string `json:"endpoint,omitempty" example:"https://api.openai.com/v1"`
	// Options are merged key by key; an empty value removes the key.
	Options       map[string]string `json:"options,omitempty"`
	EnabledModels *[]string         `json:"enabledModels,omitempty"`
	// Replaces the whole custom card list. Prefer POST .../custom-models for edits.
	CustomModelCards *[]ModelCard `json:"customModelCards,omitempty" validate:"omitempty,dive"`
}

// Patch converts the update into a provider config patch.
func (u ProviderConfigUpdate) Patch() ProviderConfigPatch {
	return ProviderConfigPatch{
		Enabled:          u.Enabled,
		Endpoint:         u.Endpoint,
		Options:          u.Options,
		EnabledModels:    u.EnabledModels,
		CustomModelCards: u.CustomModelCards,
	}
}

// EnabledRequest is the body of PUT /providers/{provider}/enabled.
type EnabledRequest struct {
	// example: false
	Enabled *bool `json:"enabled" validate:"required" example:"false"`
}

// CustomModelCardRequest is the body of POST /providers/{provider}/custom-models.
// Op selects which of the remaining fields is read.
type CustomModelCardRequest struct {
	// One of add, update, delete, replace.
	// example: add
	Op    string          `json:"op" validate:"required,oneof=add update delete replace" example:"add"`
	Card  *ModelCard      `json:"card,omitempty" validate:"required_if=Op add"`
	ID    string          `json:"id,omitempty" validate:"required_if=Op update,required_if=Op delete"`
	Patch *ModelCardPatch `json:"patch,omitempty" validate:"required_if=Op update"`
	Cards []ModelCard     `json:"cards,omitempty" validate:"dive"`
}

// EditingResponse reports the card currently open for edit, if any.
type EditingResponse struct {
	Editing *EditingTarget `json:"editing"`
}

// ModelListResponse is returned by GET /providers/{provider}/models.
type ModelListResponse struct {
	// example: openai
	Provider ProviderKey `json:"provider" example:"openai"`
	// example: true
	AutoFetch bool `json:"autoFetch" example:"true"`
	// Cache state for this key: idle, pending, resolved or failed.
	// example: resolved
	State  string      `json:"state" example:"resolved"`
	Models []ModelCard `json:"models"`
	// Time the cached list was fetched.
	FetchedAt *time.Time `json:"fetchedAt,omitempty"`
	// Fetch failure message when state is failed.
	Error string `json:"error,omitempty"`
}
