package results

import "context"

// migrate creates the necessary database tables
func (s *Store) migrate(ctx context.Context) error {
	schema := `
	CREATE TABLE IF NOT EXISTS simulation_results (
		id UUID PRIMARY KEY,
		run_id UUID NOT NULL,
		city TEXT NOT NULL,
		scenario TEXT NOT NULL,
		severity DOUBLE PRECISION NOT NULL,
		severity_index INT NOT NULL,
		repeat_index INT NOT NULL,
		avg_ratio DOUBLE PRECISION NOT NULL,
		median_ratio DOUBLE PRECISION NOT NULL,
		pct_disconnected DOUBLE PRECISION NOT NULL,
		n_removed_edges INT NOT NULL,
		n_pairs INT NOT NULL,
		created_at TIMESTAMP NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_simulation_results_run_id ON simulation_results(run_id);
	CREATE INDEX IF NOT EXISTS idx_simulation_results_city ON simulation_results(city);
	CREATE INDEX IF NOT EXISTS idx_simulation_results_scenario ON simulation_results(scenario);
	`

	_, err := s.pool.Exec(ctx, schema)
	return err
}
