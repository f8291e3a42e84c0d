package schema

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
)

// Hash returns a stable hex digest of the schema's serialized form. It is a
// cheap change detector for the version ledger, not a cryptographic
// commitment; a collision only costs a skipped short-circuit.
func (t *TableSchema) Hash() (string, error) {
	data, err := json.Marshal(t)
	if err != nil {
		return "", fmt.Errorf("failed to serialize schema: %w", err)
	}
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:]), nil
}

// Serialize returns the schema as JSON.
func (t *TableSchema) Serialize() (string, error) {
	data, err := json.Marshal(t)
	if err != nil {
		return "", fmt.Errorf("failed to serialize schema: %w", err)
	}
	return string(data), nil
}

// Deserialize parses a JSON-serialized schema.
func Deserialize(jsonStr string) (*TableSchema, error) {
	var t TableSchema
	if err := json.Unmarshal([]byte(jsonStr), &t); err != nil {
		return nil, fmt.Errorf("failed to deserialize schema: %w", err)
	}
	return &t, nil
}
