package store

// SQL templates. %[1]s is replaced by the quoted table identifier.
const (
	// Parameter $1: table name as stored in the catalog
	queryTableExists = `
		SELECT EXISTS (
			SELECT FROM pg_tables
			WHERE schemaname = current_schema() AND tablename = $1
		)
	`

	queryCreateTable = `
		CREATE TABLE IF NOT EXISTS %[1]s (
			id serial PRIMARY KEY,
			row_number integer,
			type varchar,
			review varchar,
			label varchar,
			file varchar
		)
	`

	queryCountRows = `SELECT COUNT(row_number) FROM %[1]s`

	// row_number arrives as raw text and is cast by the server, so a
	// non-numeric value fails the insert.
	queryInsertRow = `
		INSERT INTO %[1]s (row_number, type, review, label, file)
		VALUES (($1::text)::integer, $2, $3, $4, $5)
	`

	queryDeleteAll = `DELETE FROM %[1]s`

	// Parameter $1: sentinel value
	querySetTypeAll = `UPDATE %[1]s SET type = $1`

	// Parameters $1: sentinel value, $2: id
	querySetTypeByID = `UPDATE %[1]s SET type = $1 WHERE id = $2`

	// Parameters $1: limit, $2: offset
	queryPageOffset = `SELECT id FROM %[1]s ORDER BY id ASC LIMIT $1 OFFSET $2`

	// Parameters $1: last seen id, $2: limit
	queryPageKeyset = `SELECT id FROM %[1]s WHERE id > $1 ORDER BY id ASC LIMIT $2`
)

// copyColumns is the column list for COPY, in insert order.
var copyColumns = []string{"row_number", "type", "review", "label", "file"}
