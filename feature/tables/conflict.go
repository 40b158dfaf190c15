package tables

import (
	"sort"
	"strings"

	"partition-manager/core/catalog"
	"partition-manager/core/storage"
)

// ConflictReason explains why a table is marked for deletion.
type ConflictReason string

const (
	// ReasonSubpath marks tables whose location sits inside another
	// table's location.
	ReasonSubpath ConflictReason = "subpath"
	// ReasonNameOverlap marks tables sharing another table's exact
	// location under a longer variant of its name.
	ReasonNameOverlap ConflictReason = "name_overlap"
)

// Finding is one table marked for deletion, paired with the table it
// conflicts with.
type Finding struct {
	Table         catalog.Table  `json:"table"`
	ConflictsWith catalog.Table  `json:"conflicts_with"`
	Reason        ConflictReason `json:"reason"`
}

// Report is the computed set of table conflicts for one database.
// Ambiguous pairs could not be resolved automatically and require manual
// attention; they are never marked for deletion.
type Report struct {
	Database  string             `json:"database"`
	Findings  []Finding          `json:"findings"`
	Ambiguous [][2]catalog.Table `json:"ambiguous,omitempty"`

	// Scanned is the number of storage-backed tables examined.
	Scanned int `json:"scanned"`
}

// FindConflicts inspects every pairing of tables in one database and marks
// tables that are really stray sub-partitions of another table. Crawlers
// produce these two ways: a table registered inside another table's
// location, and a duplicate registered at the same location under the
// original name plus a generated suffix. In both cases the table with the
// nested location or the longer name is marked and its counterpart
// survives. Tables without a conflicting counterpart are never marked.
func FindConflicts(tables []catalog.Table) Report {
	backed := make([]catalog.Table, 0, len(tables))
	for _, t := range tables {
		if !strings.HasPrefix(t.Location, storage.Scheme) {
			continue
		}
		t.Location = storage.NormalizeLocation(t.Location)
		backed = append(backed, t)
	}
	sortTables(backed)

	report := Report{Scanned: len(backed)}
	marked := map[string]bool{}
	mark := func(table, with catalog.Table, reason ConflictReason) {
		key := table.Name + "\x00" + table.Location
		if marked[key] {
			return
		}
		marked[key] = true
		report.Findings = append(report.Findings, Finding{
			Table:         table,
			ConflictsWith: with,
			Reason:        reason,
		})
	}

	for _, b := range backed {
		if a, ok := nearestAncestor(backed, b); ok {
			mark(b, a, ReasonSubpath)
		}
	}

	for i, a := range backed {
		for _, b := range backed[i+1:] {
			if a.Location != b.Location {
				continue
			}
			switch {
			case a.Name == b.Name:
				report.Ambiguous = append(report.Ambiguous, [2]catalog.Table{a, b})
			case strings.Contains(b.Name, a.Name):
				mark(b, a, ReasonNameOverlap)
			case strings.Contains(a.Name, b.Name):
				mark(a, b, ReasonNameOverlap)
			}
		}
	}

	sort.Slice(report.Findings, func(i, j int) bool {
		if report.Findings[i].Table.Name != report.Findings[j].Table.Name {
			return report.Findings[i].Table.Name < report.Findings[j].Table.Name
		}
		return report.Findings[i].Table.Location < report.Findings[j].Table.Location
	})
	return report
}

// nearestAncestor finds the table whose location is the longest strict
// prefix of b's location. Locations carry a trailing slash, so a string
// prefix check is already segment-aligned: "s3://b/t-1/" never matches
// under "s3://b/t-10/".
func nearestAncestor(tables []catalog.Table, b catalog.Table) (catalog.Table, bool) {
	var best catalog.Table
	found := false
	for _, a := range tables {
		if a.Location == b.Location || !strings.HasPrefix(b.Location, a.Location) {
			continue
		}
		if !found || len(a.Location) > len(best.Location) {
			best = a
			found = true
		}
	}
	return best, found
}

func sortTables(tables []catalog.Table) {
	sort.Slice(tables, func(i, j int) bool {
		if tables[i].Name != tables[j].Name {
			return tables[i].Name < tables[j].Name
		}
		return tables[i].Location < tables[j].Location
	})
}
