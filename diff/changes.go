// Package diff compares two versions of a table definition and produces
// typed schema-change records. Rename detection relies on identity tokens
// assigned at schema-authoring time; entities without tokens diff as
// remove+add.
package diff

import (
	"github.com/schemakit/schemakit/schema"
)

// ChangeType tags a single structural difference.
type ChangeType string

const (
	TableAdded             ChangeType = "tableAdded"
	TableRemoved           ChangeType = "tableRemoved"
	TableRenamed           ChangeType = "tableRenamed"
	FieldAdded             ChangeType = "fieldAdded"
	FieldRemoved           ChangeType = "fieldRemoved"
	FieldRenamed           ChangeType = "fieldRenamed"
	FieldTypeChanged       ChangeType = "fieldTypeChanged"
	FieldConstraintChanged ChangeType = "fieldConstraintChanged"
	IndexAdded             ChangeType = "indexAdded"
	IndexRemoved           ChangeType = "indexRemoved"
	ForeignKeyAdded        ChangeType = "foreignKeyAdded"
	ForeignKeyRemoved      ChangeType = "foreignKeyRemoved"
)

// Constraints is the before/after payload of a fieldConstraintChanged
// record.
type Constraints struct {
	Nullable bool `json:"nullable"`
	Unique   bool `json:"unique"`
}

// SchemaChange is one structural difference between two table definitions.
// Changes are transient: only the operations derived from them are
// persisted.
type SchemaChange struct {
	Type         ChangeType                `json:"type"`
	TableName    string                    `json:"tableName"`
	OldTableName string                    `json:"oldTableName,omitempty"`
	FieldName    string                    `json:"fieldName,omitempty"`
	OldFieldName string                    `json:"oldFieldName,omitempty"`
	Field        *schema.FieldSchema       `json:"field,omitempty"`
	Index        *schema.IndexSchema       `json:"index,omitempty"`
	ForeignKey   *schema.ForeignKeySchema  `json:"foreignKey,omitempty"`
	OldType      schema.FieldType          `json:"oldType,omitempty"`
	NewType      schema.FieldType          `json:"newType,omitempty"`
	Before       *Constraints              `json:"before,omitempty"`
	After        *Constraints              `json:"after,omitempty"`
}
