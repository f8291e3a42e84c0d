package diff

import (
	"github.com/schemakit/schemakit/schema"
)

// TablePair is an old/new table matched across two schema sets.
type TablePair struct {
	Old *schema.TableSchema
	New *schema.TableSchema
}

// PairTables matches tables across two schema sets, by identity token
// first and by name otherwise. Unmatched new tables are additions,
// unmatched old tables removals.
func PairTables(old, new []*schema.TableSchema) (pairs []TablePair, added, removed []*schema.TableSchema) {
	oldByToken := make(map[string]*schema.TableSchema)
	oldByName := make(map[string]*schema.TableSchema)
	for _, t := range old {
		if t.ID != "" {
			oldByToken[t.ID] = t
		}
		oldByName[t.Name] = t
	}

	matched := make(map[*schema.TableSchema]bool)
	for _, nt := range new {
		var ot *schema.TableSchema
		if nt.ID != "" {
			ot = oldByToken[nt.ID]
		}
		if ot == nil {
			ot = oldByName[nt.Name]
		}
		if ot == nil || matched[ot] {
			added = append(added, nt)
			continue
		}
		matched[ot] = true
		pairs = append(pairs, TablePair{Old: ot, New: nt})
	}
	for _, ot := range old {
		if !matched[ot] {
			removed = append(removed, ot)
		}
	}
	return pairs, added, removed
}

// DetectSet diffs two whole schema sets, emitting tableAdded/tableRemoved
// for unmatched tables and delegating matched pairs to Detect.
func (d *Detector) DetectSet(old, new []*schema.TableSchema) []SchemaChange {
	var changes []SchemaChange
	pairs, added, removed := PairTables(old, new)
	for _, t := range added {
		changes = append(changes, SchemaChange{Type: TableAdded, TableName: t.Name})
	}
	for _, p := range pairs {
		changes = append(changes, d.Detect(p.Old, p.New)...)
	}
	for _, t := range removed {
		changes = append(changes, SchemaChange{Type: TableRemoved, TableName: t.Name})
	}
	return changes
}
