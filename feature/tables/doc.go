// Package tables detects and removes catalog tables that are really stray
// sub-partitions of another table, the usual fallout of a crawler run over
// a bucket that already holds registered tables.
//
// FindConflicts computes the conflict report from a table listing; Cleaner
// wires it to the catalog with a separate, confirmation-gated Apply step.
package tables
