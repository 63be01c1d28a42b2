package postgres

const (
	querySaveSnapshot = `
		INSERT INTO coverage_snapshots (id, data_timestamp, number_of_cells, compressed_cells)
		VALUES ($1, $2, $3, $4)
	`

	queryLoadLatestSnapshot = `
		SELECT id, data_timestamp, number_of_cells, compressed_cells
		FROM coverage_snapshots
		ORDER BY data_timestamp DESC
		LIMIT 1
	`

	querySchemaExists = `
		SELECT EXISTS (
			SELECT FROM information_schema.tables
			WHERE table_name = 'coverage_snapshots'
		)
	`
)
