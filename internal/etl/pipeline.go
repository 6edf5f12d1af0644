package etl

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/statmill/nfldw/internal/config"
	"github.com/statmill/nfldw/internal/nflverse"
)

// Pipeline wires the three stages together over shared configuration, the
// connection pool, and the nflverse download client.
type Pipeline struct {
	cfg    *config.Config
	pool   *pgxpool.Pool
	client *nflverse.Client
	logger *slog.Logger
}

// New creates a pipeline. pool may be nil for extract/transform-only use.
func New(cfg *config.Config, pool *pgxpool.Pool, logger *slog.Logger) *Pipeline {
	if logger == nil {
		logger = slog.Default()
	}
	return &Pipeline{
		cfg:    cfg,
		pool:   pool,
		client: nflverse.NewClient(cfg.NFLverseBaseURL, cfg.RequestsPerMinute, cfg.HTTPTimeout, logger),
		logger: logger,
	}
}

// LoadOptions controls the load stage.
type LoadOptions struct {
	Full         bool // ignore the meta_run_state watermark
	WithRaw      bool // also land raw play-by-play rows in stg_pbp_raw
	SkipInjuries bool
}

// RunOptions controls a full extract-transform-load run.
type RunOptions struct {
	Force bool // re-download raw files that already exist
	LoadOptions
}

// TransformSummary reports row counts out of the transform stage.
type TransformSummary struct {
	Players     int
	Games       int
	PlayerGames int
	TeamGames   int
	Injuries    int
}

func (s *TransformSummary) String() string {
	return fmt.Sprintf("players=%d games=%d player_games=%d team_games=%d injuries=%d",
		s.Players, s.Games, s.PlayerGames, s.TeamGames, s.Injuries)
}

// --------------------------------------------------------------------------
// Extract
// --------------------------------------------------------------------------

// Extract downloads the season's datasets into the raw directory. Files
// already on disk are kept unless force is set.
func (p *Pipeline) Extract(ctx context.Context, season int, force bool) error {
	for _, ds := range nflverse.All {
		dest := filepath.Join(p.cfg.RawDir, ds.RawFile(season))
		if !force {
			if _, err := os.Stat(dest); err == nil {
				p.logger.Info("Raw file exists, skipping", "dataset", ds, "season", season, "path", dest)
				continue
			}
		}
		if err := p.client.Download(ctx, ds, season, dest); err != nil {
			return err
		}
	}
	return nil
}

// --------------------------------------------------------------------------
// Transform
// --------------------------------------------------------------------------

// Transform reads the season's raw files and writes the transformed
// dimension and fact sets to the transformed directory.
func (p *Pipeline) Transform(season int) (*TransformSummary, error) {
	raw := func(ds nflverse.Dataset) string {
		return filepath.Join(p.cfg.RawDir, ds.RawFile(season))
	}
	for _, ds := range nflverse.All {
		if _, err := os.Stat(raw(ds)); err != nil {
			return nil, fmt.Errorf("raw file missing (run extract first): %w", err)
		}
	}

	summary := &TransformSummary{}
	out := p.cfg.TransformedDir

	players, err := TransformRosters(raw(nflverse.DatasetRosters))
	if err != nil {
		return nil, err
	}
	if err := writePlayers(playersFile(out, season), players); err != nil {
		return nil, err
	}
	summary.Players = len(players)

	games, err := TransformSchedules(raw(nflverse.DatasetSchedules))
	if err != nil {
		return nil, err
	}
	if err := writeGames(gamesFile(out, season), games); err != nil {
		return nil, err
	}
	summary.Games = len(games)

	playerFacts, teamFacts, err := TransformPBP(raw(nflverse.DatasetPBP), GameIndex(games))
	if err != nil {
		return nil, err
	}
	if err := writePlayerGames(playerGameFile(out, season), playerFacts); err != nil {
		return nil, err
	}
	if err := writeTeamGames(teamGameFile(out, season), teamFacts); err != nil {
		return nil, err
	}
	summary.PlayerGames = len(playerFacts)
	summary.TeamGames = len(teamFacts)

	injuries, err := TransformInjuries(raw(nflverse.DatasetInjuries))
	if err != nil {
		return nil, err
	}
	if err := writeInjuries(injuriesFile(out, season), injuries); err != nil {
		return nil, err
	}
	summary.Injuries = len(injuries)

	p.logger.Info("Transform complete", "season", season, "summary", summary)
	return summary, nil
}

// --------------------------------------------------------------------------
// Load
// --------------------------------------------------------------------------

// Load stages the season's transformed sets and upserts them into the typed
// schema, then advances meta_run_state. Unless opts.Full is set, fact rows
// at or before the stored watermark are skipped.
func (p *Pipeline) Load(ctx context.Context, season int, opts LoadOptions) Result {
	start := time.Now()
	result := Result{Season: season}
	out := p.cfg.TransformedDir

	// 1. Dimension seeds
	n, err := UpsertTeams(ctx, p.pool)
	result.TeamsUpserted = n
	if err != nil {
		result.AddErrorf("upsert teams: %v", err)
		result.Duration = time.Since(start)
		return result
	}

	// Season spans two calendar years (September through February).
	dates, err := EnsureDates(ctx, p.pool, season, season+1)
	result.DatesInserted = dates
	if err != nil {
		result.AddErrorf("ensure dim_date: %v", err)
		result.Duration = time.Since(start)
		return result
	}

	// 2. Players
	playersOK := false
	if _, err := stageCSV(ctx, p.pool, config.StgPlayersTable, playersFile(out, season)); err != nil {
		result.AddErrorf("stage players: %v", err)
	} else if n, err := UpsertPlayersFromStg(ctx, p.pool); err != nil {
		result.AddErrorf("upsert players: %v", err)
	} else {
		result.PlayersUpserted = int(n)
		playersOK = true
	}

	// 3. Games
	if _, err := stageCSV(ctx, p.pool, config.StgGamesTable, gamesFile(out, season)); err != nil {
		result.AddErrorf("stage games: %v", err)
	} else if n, err := UpsertGamesFromStg(ctx, p.pool); err != nil {
		result.AddErrorf("upsert games: %v", err)
	} else {
		result.GamesUpserted = int(n)
	}

	// 4. Incremental watermark
	sinceKey := 0
	prior, err := GetRunState(ctx, p.pool, config.PipelinePBP)
	if err != nil {
		result.AddErrorf("read run state: %v", err)
	}
	if !opts.Full {
		switch {
		case prior != nil && prior.LastGameDate != nil:
			sinceKey = DateKey(*prior.LastGameDate)
		default:
			// Run state missing or cleared; recover the watermark from the
			// facts already in the warehouse.
			if key, err := MaxLoadedDateKey(ctx, p.pool); err != nil {
				result.AddErrorf("recover watermark: %v", err)
			} else {
				sinceKey = key
			}
		}
		if sinceKey > 0 {
			p.logger.Info("Incremental load", "since_date_key", sinceKey)
		}
	}

	// 5. Facts
	factsOK := true
	if _, err := stageCSV(ctx, p.pool, config.StgPlayerGameTable, playerGameFile(out, season)); err != nil {
		result.AddErrorf("stage player games: %v", err)
		factsOK = false
	} else if n, err := UpsertPlayerGamesFromStg(ctx, p.pool, sinceKey); err != nil {
		result.AddErrorf("upsert player games: %v", err)
		factsOK = false
	} else {
		result.PlayerGamesUpserted = int(n)
	}

	if _, err := stageCSV(ctx, p.pool, config.StgTeamGameTable, teamGameFile(out, season)); err != nil {
		result.AddErrorf("stage team games: %v", err)
		factsOK = false
	} else if n, err := UpsertTeamGamesFromStg(ctx, p.pool, sinceKey); err != nil {
		result.AddErrorf("upsert team games: %v", err)
		factsOK = false
	} else {
		result.TeamGamesUpserted = int(n)
	}

	// 6. Injuries (append log, replaced per season)
	injuriesOK := false
	if !opts.SkipInjuries {
		if _, err := stageCSV(ctx, p.pool, config.StgInjuriesTable, injuriesFile(out, season)); err != nil {
			result.AddErrorf("stage injuries: %v", err)
		} else if n, err := ReplaceInjuriesFromStg(ctx, p.pool, season); err != nil {
			result.AddErrorf("load injuries: %v", err)
		} else {
			result.InjuriesInserted = int(n)
			injuriesOK = true
		}
	}

	// 7. Raw play-by-play landing
	if opts.WithRaw {
		rawPath := filepath.Join(p.cfg.RawDir, nflverse.DatasetPBP.RawFile(season))
		if n, err := StageRawPBP(ctx, p.pool, season, rawPath); err != nil {
			result.AddErrorf("stage raw pbp: %v", err)
		} else {
			result.RawPlaysStaged = int(n)
		}
	}

	// 8. Advance run state. Each pipeline's row only moves when its load
	// succeeded; a failed fact upsert must not push the watermark past rows
	// that never landed, or the next incremental run skips them forever.
	var priorDate *time.Time
	if prior != nil {
		priorDate = prior.LastGameDate
	}
	if lastGameDate, ok := nextWatermark(priorDate, p.maxStagedGameDate(ctx), factsOK); ok {
		if err := UpdateRunState(ctx, p.pool, config.PipelinePBP, lastGameDate, &season); err != nil {
			result.AddErrorf("update run state pbp: %v", err)
		}
	} else {
		p.logger.Warn("Fact load failed; watermark not advanced", "season", season)
	}
	if playersOK {
		if err := UpdateRunState(ctx, p.pool, config.PipelineRosters, nil, &season); err != nil {
			result.AddErrorf("update run state rosters: %v", err)
		}
	}
	if injuriesOK {
		if err := UpdateRunState(ctx, p.pool, config.PipelineInjuries, nil, &season); err != nil {
			result.AddErrorf("update run state injuries: %v", err)
		}
	}

	result.Duration = time.Since(start)
	p.logger.Info("Load complete", "season", season,
		"duration", result.Duration.Round(time.Second), "summary", result.Summary())
	return result
}

// nextWatermark decides what game-date watermark to record after a load, and
// whether to record run state at all. A failed fact load records nothing, and
// the watermark never regresses: it is the later of the stored date and the
// latest staged one.
func nextWatermark(prior, staged *time.Time, factsLoaded bool) (*time.Time, bool) {
	if !factsLoaded {
		return nil, false
	}
	if prior != nil && (staged == nil || staged.Before(*prior)) {
		return prior, true
	}
	return staged, true
}

// maxStagedGameDate returns the latest game date in the staged player-game
// set, or nil if nothing (dated) was staged.
func (p *Pipeline) maxStagedGameDate(ctx context.Context) *time.Time {
	var maxKey *int
	err := p.pool.QueryRow(ctx, `
		SELECT MAX(date_key::int) FROM `+config.StgPlayerGameTable+`
		WHERE date_key <> '' AND date_key <> '0'`).Scan(&maxKey)
	if err != nil || maxKey == nil {
		return nil
	}
	d := DateFromKey(*maxKey)
	return &d
}

// --------------------------------------------------------------------------
// Run + Backfill
// --------------------------------------------------------------------------

// Run executes extract, transform, and load for one season.
func (p *Pipeline) Run(ctx context.Context, season int, opts RunOptions) Result {
	start := time.Now()
	result := Result{Season: season}

	p.logger.Info("Phase 1/3: Extract", "season", season)
	if err := p.Extract(ctx, season, opts.Force); err != nil {
		result.AddErrorf("extract season %d: %v", season, err)
		result.Duration = time.Since(start)
		return result
	}

	p.logger.Info("Phase 2/3: Transform", "season", season)
	if _, err := p.Transform(season); err != nil {
		result.AddErrorf("transform season %d: %v", season, err)
		result.Duration = time.Since(start)
		return result
	}

	p.logger.Info("Phase 3/3: Load", "season", season)
	result = p.Load(ctx, season, opts.LoadOptions)
	result.Duration = time.Since(start)
	return result
}

// Backfill runs the pipeline for an inclusive season range. Extract and
// transform are independent per season and run on a bounded worker pool;
// loads share the staging tables and the watermark, so they run serially in
// ascending season order afterwards. Seasons fail independently; the
// aggregate result collects every season's counts and errors.
func (p *Pipeline) Backfill(ctx context.Context, fromSeason, toSeason, workers int, opts RunOptions) Result {
	start := time.Now()
	var result Result

	// Historical seasons sit behind the current watermark; an incremental
	// backfill would load nothing.
	opts.Full = true

	total := toSeason - fromSeason + 1
	seasons := make(chan int, total)
	for s := fromSeason; s <= toSeason; s++ {
		seasons <- s
	}
	close(seasons)

	if workers < 1 {
		workers = 1
	}
	if workers > total {
		workers = total
	}

	var mu sync.Mutex
	failed := make(map[int]bool)

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for season := range seasons {
				if ctx.Err() != nil {
					return
				}
				if err := p.Extract(ctx, season, opts.Force); err != nil {
					mu.Lock()
					failed[season] = true
					result.AddErrorf("extract season %d: %v", season, err)
					mu.Unlock()
					continue
				}
				if _, err := p.Transform(season); err != nil {
					mu.Lock()
					failed[season] = true
					result.AddErrorf("transform season %d: %v", season, err)
					mu.Unlock()
				}
			}
		}()
	}
	wg.Wait()

	for season := fromSeason; season <= toSeason; season++ {
		if failed[season] || ctx.Err() != nil {
			continue
		}
		result.Add(p.Load(ctx, season, opts.LoadOptions))
	}

	result.Duration = time.Since(start)
	p.logger.Info("Backfill complete",
		"from", fromSeason, "to", toSeason,
		"duration", result.Duration.Round(time.Second), "summary", result.Summary())
	return result
}
