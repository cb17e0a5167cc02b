// Package output renders command results for tw5keep-cli as an aligned
// table, JSON or YAML.
//
// Struct fields tagged `table:"wide"` only appear with --wide; fields
// tagged `table:"-"` never appear in tables.
package output
