package etl

import (
	"context"
	"os"
	"path/filepath"
	"time"

	"github.com/statmill/nfldw/internal/config"
)

// Prune removes staged rows and raw files older than the configured
// retention. Staging tables are a landing zone, not a system of record —
// once the typed tables hold the data the staged copies only cost disk.
func (p *Pipeline) Prune(ctx context.Context) (rowsDeleted int64, filesRemoved int) {
	cutoff := time.Now().Add(-p.cfg.StagingRetention)

	staging := []string{
		config.StgPBPRawTable,
		config.StgPlayersTable,
		config.StgGamesTable,
		config.StgPlayerGameTable,
		config.StgTeamGameTable,
		config.StgInjuriesTable,
	}
	for _, table := range staging {
		tag, err := p.pool.Exec(ctx,
			"DELETE FROM "+table+" WHERE loaded_at < $1", cutoff)
		if err != nil {
			p.logger.Warn("Prune: failed to clear staging table", "table", table, "error", err)
			continue
		}
		if tag.RowsAffected() > 0 {
			p.logger.Info("Prune: cleared staged rows", "table", table, "count", tag.RowsAffected())
			rowsDeleted += tag.RowsAffected()
		}
	}

	entries, err := os.ReadDir(p.cfg.RawDir)
	if err != nil {
		if !os.IsNotExist(err) {
			p.logger.Warn("Prune: failed to read raw dir", "dir", p.cfg.RawDir, "error", err)
		}
		return rowsDeleted, filesRemoved
	}
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		info, err := entry.Info()
		if err != nil || info.ModTime().After(cutoff) {
			continue
		}
		path := filepath.Join(p.cfg.RawDir, entry.Name())
		if err := os.Remove(path); err != nil {
			p.logger.Warn("Prune: failed to remove raw file", "path", path, "error", err)
			continue
		}
		filesRemoved++
	}
	if filesRemoved > 0 {
		p.logger.Info("Prune: removed stale raw files", "count", filesRemoved)
	}

	return rowsDeleted, filesRemoved
}
