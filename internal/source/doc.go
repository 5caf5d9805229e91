// Package source reads review records from a delimited text file.
//
// The file must carry a header naming the unnamed index column ("") and the
// type, review, label and file columns. Header order is free and extra
// columns are ignored. Records are returned in file order with every field
// passed through as raw text.
package source
