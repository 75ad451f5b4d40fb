// Command pointcull generates (or loads) a point cloud, indexes it in an
// octree and culls it against an orbiting camera frustum, logging per-frame
// visibility and optionally writing plots, an HTML report and a SQLite frame
// log.
//
// With -db set, the subcommands "migrate <up|down|status>" and "runs"
// maintain the database instead of culling.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/banshee-data/pointcull/internal/config"
	"github.com/banshee-data/pointcull/internal/db"
	"github.com/banshee-data/pointcull/internal/monitoring"
	"github.com/banshee-data/pointcull/internal/octree"
	"github.com/banshee-data/pointcull/internal/pointsource"
	"github.com/banshee-data/pointcull/internal/report"
	"github.com/banshee-data/pointcull/internal/scene"
	"github.com/banshee-data/pointcull/internal/version"
)

var (
	configPath    = flag.String("config", "", "Path to a tuning JSON file (defaults built in)")
	frames        = flag.Int("frames", 72, "Number of frames to cull")
	points        = flag.Int("points", 0, "Number of points to generate (overrides point_count)")
	source        = flag.String("source", "uniform", "Synthetic point source: uniform or disc")
	seed          = flag.Int64("seed", 1, "Random seed for the point source")
	dbFile        = flag.String("db", "", "Path to a SQLite database for points and frame logs")
	runID         = flag.String("run", "", "Load points from this stored run instead of generating")
	orbit         = flag.Float64("orbit", -1, "Degrees to orbit the camera per frame (overrides orbit_step_deg)")
	plotDir       = flag.String("plot-dir", "", "Write a PNG per frame into this directory")
	htmlFile      = flag.String("html", "", "Write an HTML report of all frames to this file")
	metricsListen = flag.String("metrics-listen", "", "Serve Prometheus metrics on this address (e.g. :9100)")
	debug         = flag.Bool("debug", false, "Enable debug logging")
	showVersion   = flag.Bool("version", false, "Print version and exit")
)

type options struct {
	cfg       *config.TuningConfig
	frames    int
	source    string
	seed      int64
	dbFile    string
	runID     string
	orbitStep float64
	plotDir   string
	htmlFile  string
}

func main() {
	flag.Parse()
	if *showVersion {
		fmt.Println(version.String())
		return
	}
	monitoring.SetDebug(*debug)

	cfg := config.DefaultTuningConfig()
	if *configPath != "" {
		var err error
		cfg, err = config.LoadTuningConfig(*configPath)
		if err != nil {
			log.Fatalf("failed to load config: %v", err)
		}
	}
	if *points > 0 {
		cfg.PointCount = points
	}
	step := cfg.GetOrbitStepDeg()
	if *orbit >= 0 {
		step = *orbit
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if flag.NArg() > 0 {
		if err := runSubcommand(ctx, *dbFile, flag.Args()); err != nil {
			log.Fatalf("pointcull: %v", err)
		}
		return
	}

	var srv *http.Server
	if *metricsListen != "" {
		srv = startMetricsServer(*metricsListen)
	}

	err := run(ctx, options{
		cfg:       cfg,
		frames:    *frames,
		source:    *source,
		seed:      *seed,
		dbFile:    *dbFile,
		runID:     *runID,
		orbitStep: step,
		plotDir:   *plotDir,
		htmlFile:  *htmlFile,
	})
	if serr := stopMetricsServer(srv); serr != nil {
		log.Printf("metrics server shutdown: %v", serr)
	}
	if err != nil && !errors.Is(err, context.Canceled) {
		log.Fatalf("pointcull: %v", err)
	}
}

// startMetricsServer serves /metrics on addr in the background.
func startMetricsServer(addr string) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		log.Printf("serving metrics on %s", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Printf("metrics server failed: %v", err)
		}
	}()
	return srv
}

// stopMetricsServer shuts srv down, waiting up to five seconds for
// in-flight scrapes. A nil server is a no-op.
func stopMetricsServer(srv *http.Server) error {
	if srv == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return srv.Shutdown(ctx)
}

// runSubcommand handles the database maintenance subcommands.
func runSubcommand(ctx context.Context, dbPath string, args []string) error {
	if dbPath == "" {
		return fmt.Errorf("%s requires -db", args[0])
	}
	store, err := db.Open(dbPath)
	if err != nil {
		return err
	}
	defer store.Close()

	switch args[0] {
	case "migrate":
		return db.RunMigrateCommand(store, args[1:], os.Stdout)
	case "runs":
		return db.PrintRuns(ctx, store, os.Stdout)
	default:
		return fmt.Errorf("unknown subcommand %q", args[0])
	}
}

func newSource(name string, cfg *config.TuningConfig, seed int64) (pointsource.Source, error) {
	switch name {
	case "uniform":
		return pointsource.NewUniform(r3.Vec{}, cfg.GetPointSpread(), seed), nil
	case "disc":
		return pointsource.NewDisc(cfg.GetPointSpread(), seed), nil
	default:
		return nil, fmt.Errorf("unknown point source %q", name)
	}
}

// loadPoints returns the stored run's points, or generates new ones and
// stores them when a database is open. The returned run ID is empty when no
// database is in use.
func loadPoints(ctx context.Context, store *db.DB, opts options) ([]octree.Entry[float64], string, error) {
	if opts.runID != "" {
		if store == nil {
			return nil, "", errors.New("-run requires -db")
		}
		entries, err := store.LoadPoints(ctx, opts.runID)
		if err != nil {
			return nil, "", err
		}
		log.Printf("loaded %d points from run %s", len(entries), opts.runID)
		return entries, opts.runID, nil
	}

	src, err := newSource(opts.source, opts.cfg, opts.seed)
	if err != nil {
		return nil, "", err
	}
	entries := pointsource.Take(src, opts.cfg.GetPointCount())
	if store == nil {
		return entries, "", nil
	}

	id, err := store.CreateRun(ctx, fmt.Sprintf("%s seed=%d", opts.source, opts.seed))
	if err != nil {
		return nil, "", err
	}
	if err := store.SavePoints(ctx, id, entries); err != nil {
		return nil, "", err
	}
	log.Printf("stored %d points as run %s", len(entries), id)
	return entries, id, nil
}

func run(ctx context.Context, opts options) error {
	var store *db.DB
	if opts.dbFile != "" {
		var err error
		store, err = db.Open(opts.dbFile)
		if err != nil {
			return err
		}
		defer store.Close()
	}

	entries, id, err := loadPoints(ctx, store, opts)
	if err != nil {
		return err
	}

	sc, err := scene.NewFitted(opts.cfg, entries)
	if err != nil {
		return err
	}
	st := sc.Stats()
	log.Printf("octree: %d points, %d leaves, %d internal, depth %d, %d overfull, root half extent %g",
		st.Points, st.Leaves, st.Internal, st.Depth, st.Overfull, sc.RootHalfExtent())

	var results []scene.FrameResult
	for i := 0; i < opts.frames; i++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		if i > 0 {
			sc.Orbit(opts.orbitStep)
		}

		res, err := sc.Frame()
		if err != nil {
			return fmt.Errorf("frame %d: %w", i, err)
		}
		log.Printf("frame %d: eye=(%.2f, %.2f, %.2f) regions=%d visible=%d culled=%d in %s",
			res.Index, res.Eye.X, res.Eye.Y, res.Eye.Z, len(res.Regions), len(res.Visible), res.Culled, res.Elapsed)

		if store != nil {
			rec := db.FrameRecord{
				Frame:          res.Index,
				Eye:            res.Eye,
				VisibleRegions: len(res.Regions),
				VisiblePoints:  len(res.Visible),
				CulledPoints:   res.Culled,
				Elapsed:        res.Elapsed,
			}
			if err := store.RecordFrame(ctx, id, rec); err != nil {
				return err
			}
		}
		if opts.plotDir != "" {
			if _, err := report.WritePNG(opts.plotDir, res); err != nil {
				return err
			}
		}
		if opts.htmlFile != "" {
			results = append(results, res)
		}
	}

	if opts.htmlFile != "" {
		f, err := os.Create(opts.htmlFile)
		if err != nil {
			return fmt.Errorf("failed to create report: %w", err)
		}
		defer f.Close()
		if err := report.WriteHTML(f, results...); err != nil {
			return err
		}
		log.Printf("wrote report for %d frames to %s", len(results), opts.htmlFile)
	}
	return nil
}
