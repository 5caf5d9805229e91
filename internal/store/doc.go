// Package store implements reviewbench.ReviewTable on a single PostgreSQL
// connection using pgx.
//
// The table name is validated against a plain identifier pattern and quoted
// with pgx.Identifier before it is placed in any statement. Values always
// travel as bind parameters.
package store
