package model

// OpenAIModel is a single descriptor in a /models listing response.
// Synthetic entries injected by the proxy use this shape.
//
// https://platform.openai.com/docs/api-reference/models/list
type OpenAIModel struct {
	Id      string `json:"id"`
	Object  string `json:"object"`
	Created int64  `json:"created"`
	OwnedBy string `json:"owned_by"`
}
