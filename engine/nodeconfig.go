package engine

import (
	"encoding/json"
)

// ============================================================================
// Node Config Interface
// ============================================================================

// NodeConfig interface that all typed node configs implement
type NodeConfig interface {
	Validate() error
	GetType() NodeType
}

// ============================================================================
// Message Config
// ============================================================================

type MessageNodeConfig struct {
	Text LocalizedText `json:"text"`
}

func (c MessageNodeConfig) Validate() error {
	if c.Text.Resolve("en") == "" {
		return ErrDefinitionMalformed().WithDetail("reason", "message node requires text with an en value")
	}
	return nil
}

func (c MessageNodeConfig) GetType() NodeType { return NodeTypeMessage }

// ============================================================================
// Wait Reply Config
// ============================================================================

type WaitReplyNodeConfig struct {
	Prompt  LocalizedText `json:"prompt,omitempty"`
	StoreAs string        `json:"store_as"`
}

func (c WaitReplyNodeConfig) Validate() error {
	if c.StoreAs == "" {
		return ErrDefinitionMalformed().WithDetail("reason", "wait_reply node requires store_as")
	}
	return nil
}

func (c WaitReplyNodeConfig) GetType() NodeType { return NodeTypeWaitReply }

// ============================================================================
// Send Config
// ============================================================================

type SendNodeConfig struct {
	Recipient string        `json:"recipient"` // template
	Text      LocalizedText `json:"text"`
	RecordAs  string        `json:"record_as,omitempty"`
}

func (c SendNodeConfig) Validate() error {
	if c.Recipient == "" {
		return ErrDefinitionMalformed().WithDetail("reason", "send node requires recipient")
	}
	if c.Text.Resolve("en") == "" {
		return ErrDefinitionMalformed().WithDetail("reason", "send node requires text with an en value")
	}
	return nil
}

func (c SendNodeConfig) GetType() NodeType { return NodeTypeSend }

// ============================================================================
// API Call Config
// ============================================================================

type APICallNodeConfig struct {
	Kind           ActionKind        `json:"kind"`
	Parameters     map[string]any    `json:"parameters"`
	OutputMappings map[string]string `json:"output_mappings,omitempty"`
}

func (c APICallNodeConfig) Validate() error {
	if c.Kind == "" {
		return ErrDefinitionMalformed().WithDetail("reason", "api_call node requires kind")
	}
	return nil
}

func (c APICallNodeConfig) GetType() NodeType { return NodeTypeAPICall }

// Descriptor convierte la config al descriptor de acción que consume el invoker
func (c APICallNodeConfig) Descriptor() ActionDescriptor {
	return ActionDescriptor{Kind: c.Kind, Parameters: c.Parameters}
}

// ============================================================================
// Condition Config
// ============================================================================

// ConditionOperator operador de comparación de un nodo condición
type ConditionOperator string

const (
	OperatorGreaterThan ConditionOperator = "gt"
	OperatorLessThan    ConditionOperator = "lt"
	OperatorEqual       ConditionOperator = "eq"
	OperatorNotEqual    ConditionOperator = "neq"
	OperatorExists      ConditionOperator = "exists"
	OperatorEmpty       ConditionOperator = "empty"
)

type ConditionNodeConfig struct {
	Field    string            `json:"field"` // template
	Operator ConditionOperator `json:"operator"`
	Value    string            `json:"value,omitempty"`
}

func (c ConditionNodeConfig) Validate() error {
	if c.Field == "" {
		return ErrDefinitionMalformed().WithDetail("reason", "condition node requires field")
	}
	switch c.Operator {
	case OperatorGreaterThan, OperatorLessThan, OperatorEqual, OperatorNotEqual, OperatorExists, OperatorEmpty:
		return nil
	default:
		return ErrDefinitionMalformed().WithDetail("reason", "unknown condition operator: "+string(c.Operator))
	}
}

func (c ConditionNodeConfig) GetType() NodeType { return NodeTypeCondition }

// ============================================================================
// Config Extraction Helpers
// ============================================================================

// extractConfig round-trips the raw config map through JSON into the typed struct
func extractConfig(config map[string]any, target any) error {
	data, err := json.Marshal(config)
	if err != nil {
		return ErrDefinitionMalformed().WithDetail("reason", "config not serializable").WithCause(err)
	}
	if err := json.Unmarshal(data, target); err != nil {
		return ErrDefinitionMalformed().WithDetail("reason", "config does not match node type").WithCause(err)
	}
	return nil
}

func ExtractMessageConfig(config map[string]any) (MessageNodeConfig, error) {
	var c MessageNodeConfig
	if err := extractConfig(config, &c); err != nil {
		return c, err
	}
	return c, c.Validate()
}

func ExtractWaitReplyConfig(config map[string]any) (WaitReplyNodeConfig, error) {
	var c WaitReplyNodeConfig
	if err := extractConfig(config, &c); err != nil {
		return c, err
	}
	return c, c.Validate()
}

func ExtractSendConfig(config map[string]any) (SendNodeConfig, error) {
	var c SendNodeConfig
	if err := extractConfig(config, &c); err != nil {
		return c, err
	}
	return c, c.Validate()
}

func ExtractAPICallConfig(config map[string]any) (APICallNodeConfig, error) {
	var c APICallNodeConfig
	if err := extractConfig(config, &c); err != nil {
		return c, err
	}
	return c, c.Validate()
}

func ExtractConditionConfig(config map[string]any) (ConditionNodeConfig, error) {
	var c ConditionNodeConfig
	if err := extractConfig(config, &c); err != nil {
		return c, err
	}
	return c, c.Validate()
}
