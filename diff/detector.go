package diff

import (
	"github.com/schemakit/schemakit/schema"
)

// Detector compares old and new table schemas.
type Detector struct{}

// NewDetector creates a new change detector.
func NewDetector() *Detector {
	return &Detector{}
}

// Detect returns the structural differences between old and new in
// discovery order: table rename, field adds/renames, field removes, field
// type/constraint changes, index adds, index removes, foreign-key adds,
// foreign-key removes. Safe application ordering is the operation
// generator's concern, not this step's.
func (d *Detector) Detect(old, new *schema.TableSchema) []SchemaChange {
	var changes []SchemaChange

	// Table rename requires matching identity tokens on both snapshots.
	if old.ID != "" && new.ID != "" && old.ID == new.ID && old.Name != new.Name {
		changes = append(changes, SchemaChange{
			Type:         TableRenamed,
			TableName:    new.Name,
			OldTableName: old.Name,
		})
	}

	changes = append(changes, d.diffFields(old, new)...)
	changes = append(changes, d.diffIndexes(old, new)...)
	changes = append(changes, d.diffForeignKeys(old, new)...)

	return changes
}

func (d *Detector) diffFields(old, new *schema.TableSchema) []SchemaChange {
	var changes []SchemaChange

	oldByName := make(map[string]*schema.FieldSchema, len(old.Fields))
	for i := range old.Fields {
		oldByName[old.Fields[i].Name] = &old.Fields[i]
	}
	newByName := make(map[string]*schema.FieldSchema, len(new.Fields))
	for i := range new.Fields {
		newByName[new.Fields[i].Name] = &new.Fields[i]
	}

	// Identity tokens of new fields, used to tell a removed field apart
	// from a rename source.
	newTokens := make(map[string]bool, len(new.Fields))
	for _, f := range new.Fields {
		if f.ID != "" {
			newTokens[f.ID] = true
		}
	}

	// New-only fields: a shared identity token under a different name is a
	// rename, anything else is an add.
	for i := range new.Fields {
		nf := &new.Fields[i]
		if _, ok := oldByName[nf.Name]; ok {
			continue
		}
		renamed := false
		if nf.ID != "" {
			for j := range old.Fields {
				of := &old.Fields[j]
				if of.ID == nf.ID && of.Name != nf.Name {
					changes = append(changes, SchemaChange{
						Type:         FieldRenamed,
						TableName:    new.Name,
						FieldName:    nf.Name,
						OldFieldName: of.Name,
						Field:        nf,
					})
					renamed = true
					break
				}
			}
		}
		if !renamed {
			changes = append(changes, SchemaChange{
				Type:      FieldAdded,
				TableName: new.Name,
				FieldName: nf.Name,
				Field:     nf,
			})
		}
	}

	// Old-only fields that were not rename sources are removals.
	for i := range old.Fields {
		of := &old.Fields[i]
		if _, ok := newByName[of.Name]; ok {
			continue
		}
		if of.ID != "" && newTokens[of.ID] {
			continue
		}
		changes = append(changes, SchemaChange{
			Type:      FieldRemoved,
			TableName: new.Name,
			FieldName: of.Name,
			Field:     of,
		})
	}

	// Fields present in both, matched by name.
	for i := range new.Fields {
		nf := &new.Fields[i]
		of, ok := oldByName[nf.Name]
		if !ok {
			continue
		}
		if of.Type != nf.Type {
			changes = append(changes, SchemaChange{
				Type:      FieldTypeChanged,
				TableName: new.Name,
				FieldName: nf.Name,
				Field:     nf,
				OldType:   of.Type,
				NewType:   nf.Type,
			})
		}
		if of.Nullable != nf.Nullable || of.Unique != nf.Unique {
			changes = append(changes, SchemaChange{
				Type:      FieldConstraintChanged,
				TableName: new.Name,
				FieldName: nf.Name,
				Field:     nf,
				Before:    &Constraints{Nullable: of.Nullable, Unique: of.Unique},
				After:     &Constraints{Nullable: nf.Nullable, Unique: nf.Unique},
			})
		}
	}

	return changes
}

func (d *Detector) diffIndexes(old, new *schema.TableSchema) []SchemaChange {
	var changes []SchemaChange

	oldSigs := make(map[string]bool, len(old.Indexes))
	for _, idx := range old.Indexes {
		oldSigs[idx.Signature()] = true
	}
	newSigs := make(map[string]bool, len(new.Indexes))
	for _, idx := range new.Indexes {
		newSigs[idx.Signature()] = true
	}

	for i := range new.Indexes {
		idx := &new.Indexes[i]
		if !oldSigs[idx.Signature()] {
			changes = append(changes, SchemaChange{
				Type:      IndexAdded,
				TableName: new.Name,
				Index:     idx,
			})
		}
	}
	for i := range old.Indexes {
		idx := &old.Indexes[i]
		if !newSigs[idx.Signature()] {
			changes = append(changes, SchemaChange{
				Type:      IndexRemoved,
				TableName: new.Name,
				Index:     idx,
			})
		}
	}

	return changes
}

func (d *Detector) diffForeignKeys(old, new *schema.TableSchema) []SchemaChange {
	var changes []SchemaChange

	oldSigs := make(map[string]bool, len(old.ForeignKeys))
	for _, fk := range old.ForeignKeys {
		oldSigs[fk.Signature()] = true
	}
	newSigs := make(map[string]bool, len(new.ForeignKeys))
	for _, fk := range new.ForeignKeys {
		newSigs[fk.Signature()] = true
	}

	for i := range new.ForeignKeys {
		fk := &new.ForeignKeys[i]
		if !oldSigs[fk.Signature()] {
			changes = append(changes, SchemaChange{
				Type:       ForeignKeyAdded,
				TableName:  new.Name,
				FieldName:  fk.Field,
				ForeignKey: fk,
			})
		}
	}
	for i := range old.ForeignKeys {
		fk := &old.ForeignKeys[i]
		if !newSigs[fk.Signature()] {
			changes = append(changes, SchemaChange{
				Type:       ForeignKeyRemoved,
				TableName:  new.Name,
				FieldName:  fk.Field,
				ForeignKey: fk,
			})
		}
	}

	return changes
}
