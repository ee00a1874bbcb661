package chatcli

// Chat models usable with the chat completions endpoint.
//
// https://platform.openai.com/docs/models
const (
	ModelGPT4o     = "gpt-4o"
	ModelGPT4oMini = "gpt-4o-mini"
	ModelGPT41     = "gpt-4.1"
	ModelGPT41Mini = "gpt-4.1-mini"
)

// DefaultModel is the model used for exchanges unless overridden
// with the OPENAI_MODEL environment variable.
const DefaultModel = ModelGPT4o
