package mysql

// SQL queries for MySQL metadata introspection. information_schema filters
// on DATABASE() so only the connected database is visible.
const (
	queryListTables = `
		SELECT table_schema, table_name
		FROM information_schema.tables
		WHERE table_schema = DATABASE()
		  AND table_type = 'BASE TABLE'
		ORDER BY table_name`

	queryGetColumns = `
		SELECT
			column_name,
			data_type,
			is_nullable,
			ordinal_position,
			column_key = 'PRI' AS is_primary
		FROM information_schema.columns
		WHERE table_schema = ?
		  AND table_name = ?
		ORDER BY ordinal_position`

	queryTableRowCount = `
		SELECT COALESCE(table_rows, 0)
		FROM information_schema.tables
		WHERE table_schema = ?
		  AND table_name = ?`
)
