package store

import (
	"encoding/json"
	"time"
)

// StepLLM holds raw labelling exchanges.
const StepLLM StepName = "llm"

// LLMExchange is one labelling request and what came back.
type LLMExchange struct {
	Timestamp time.Time `json:"timestamp"`
	Provider  string    `json:"provider"`
	Model     string    `json:"model"`
	Prompt    string    `json:"prompt"`
	Response  string    `json:"response"`
	Error     string    `json:"error,omitempty"`
}

// SaveLLMExchange snapshots an exchange under StepLLM.
func (sn Snapshots) SaveLLMExchange(exchange LLMExchange) (string, error) {
	b, err := json.MarshalIndent(exchange, "", "  ")
	if err != nil {
		return "", err
	}
	return sn.write(StepLLM, ".json", b)
}
