package results

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/urbansim/roadshock/pkg/experiment"
	"github.com/urbansim/roadshock/pkg/simulation"
)

// SaveResult stores a single simulation outcome under its own run ID.
func (s *Store) SaveResult(ctx context.Context, r *simulation.Result) error {
	row := experiment.Row{Result: *r}
	return s.saveRow(ctx, uuid.NewString(), row)
}

// SaveTable stores every row of a sweep under the table's run ID.
func (s *Store) SaveTable(ctx context.Context, t *experiment.Table) error {
	for _, row := range t.Rows {
		if err := s.saveRow(ctx, t.RunID, row); err != nil {
			return err
		}
	}
	return nil
}

func (s *Store) saveRow(ctx context.Context, runID string, row experiment.Row) error {
	query := `
		INSERT INTO simulation_results
			(id, run_id, city, scenario, severity, severity_index, repeat_index,
			 avg_ratio, median_ratio, pct_disconnected, n_removed_edges, n_pairs, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
	`

	_, err := s.pool.Exec(ctx, query,
		uuid.NewString(),
		runID,
		row.City,
		row.Scenario,
		row.Severity,
		row.SeverityIndex,
		row.Repeat,
		row.AvgRatio,
		row.MedianRatio,
		row.PctDisconnected,
		row.NRemovedEdges,
		row.NPairs,
		time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("failed to save result: %w", err)
	}
	return nil
}
