package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/voxelforge/voxelforge/internal/engine/atlas"
	"github.com/voxelforge/voxelforge/internal/engine/config"
	"github.com/voxelforge/voxelforge/internal/engine/mesh"
	"github.com/voxelforge/voxelforge/internal/engine/meshcache"
	"github.com/voxelforge/voxelforge/internal/engine/stream"
	"github.com/voxelforge/voxelforge/internal/engine/voxel"
	"github.com/voxelforge/voxelforge/internal/viewer"
)

func main() {
	cfg := config.Default()

	configPath := flag.String("config", "", "path to a YAML config file")
	walkSpeed := flag.Float64("walk", 4, "viewer speed in blocks per second along +x")
	tick := flag.Duration("tick", time.Duration(cfg.TickInterval), "streaming tick interval")
	flag.StringVar(&cfg.ListenAddr, "listen", cfg.ListenAddr, "viewer websocket listen address")
	flag.IntVar(&cfg.RenderRadius, "radius", cfg.RenderRadius, "render radius in chunks")
	flag.IntVar(&cfg.Workers, "workers", cfg.Workers, "mesh worker goroutines")
	flag.IntVar(&cfg.QueueSize, "queue", cfg.QueueSize, "pending mesh task queue size")
	flag.Int64Var(&cfg.Worldgen.Seed, "seed", cfg.Worldgen.Seed, "worldgen seed")
	flag.StringVar(&cfg.AtlasPath, "atlas", cfg.AtlasPath, "texture atlas descriptor (empty = built-in)")
	flag.StringVar(&cfg.AtlasImage, "atlas-image", cfg.AtlasImage, "atlas image to validate against the descriptor")
	flag.StringVar(&cfg.MeshCachePath, "mesh-cache", cfg.MeshCachePath, "mesh cache database (empty = disabled)")
	flag.Parse()

	log := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))

	cfg.TickInterval = config.Duration(*tick)

	explicit := map[string]bool{}
	flag.Visit(func(f *flag.Flag) { explicit[f.Name] = true })
	if *configPath != "" {
		fromFile, err := config.Load(*configPath)
		if err != nil {
			log.Error("load config", "error", err)
			os.Exit(1)
		}
		config.Merge(cfg, fromFile, explicit)
	}
	if err := cfg.Validate(); err != nil {
		log.Error("invalid config", "error", err)
		os.Exit(1)
	}

	a, err := loadAtlas(cfg)
	if err != nil {
		log.Error("load atlas", "error", err)
		os.Exit(1)
	}

	classifier := voxel.NewClassifier(cfg.Worldgen)
	mesher := mesh.NewMesher(classifier, a, cfg.Worldgen.ChunkSize, cfg.Worldgen.WorldHeight)
	meshFn := func(pos voxel.ChunkPos) mesh.Buffer { return mesher.Mesh(pos) }

	if cfg.MeshCachePath != "" {
		cache, err := meshcache.Open(cfg.MeshCachePath, cfg.Worldgen.Seed)
		if err != nil {
			log.Error("open mesh cache", "error", err)
			os.Exit(1)
		}
		defer cache.Close()
		meshFn = cache.Wrap(meshFn, func(err error) {
			log.Warn("mesh cache", "error", err)
		})
		log.Info("mesh cache enabled", "path", cfg.MeshCachePath)
	}

	display, err := viewer.NewServer(log)
	if err != nil {
		log.Error("init viewer server", "error", err)
		os.Exit(1)
	}
	defer display.Close()

	pool := stream.NewPool(cfg.Workers, cfg.QueueSize, meshFn)
	manager := stream.NewManager(log, pool, display, stream.NopPhysics{}, cfg.RenderRadius, cfg.Worldgen.ChunkSize)
	defer manager.Close()

	mux := http.NewServeMux()
	mux.HandleFunc("/scene", display.Handler())
	srv := &http.Server{Addr: cfg.ListenAddr, Handler: mux}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	go func() {
		log.Info("viewer endpoint listening", "addr", cfg.ListenAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("http server", "error", err)
			cancel()
		}
	}()

	log.Info("streaming started",
		"seed", cfg.Worldgen.Seed,
		"radius", cfg.RenderRadius,
		"workers", cfg.Workers)

	run(ctx, manager, time.Duration(cfg.TickInterval), &walker{speed: *walkSpeed, start: time.Now()})

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Warn("http shutdown", "error", err)
	}
	log.Info("stopped")
}

// walker is a scripted viewer moving in a straight line along +x so the
// loaded set keeps turning over.
type walker struct {
	speed float64
	start time.Time
}

func (w *walker) Position() (x, y, z float64) {
	return w.speed * time.Since(w.start).Seconds(), 0, 0
}

// run drives the streaming manager until the context ends.
func run(ctx context.Context, m *stream.Manager, interval time.Duration, v stream.Viewer) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			x, _, z := v.Position()
			m.Tick(x, z)
		}
	}
}

func loadAtlas(cfg *config.Config) (*atlas.Atlas, error) {
	var (
		a   *atlas.Atlas
		err error
	)
	if cfg.AtlasPath == "" {
		a, err = atlas.New(atlas.Default())
	} else {
		a, err = atlas.Load(cfg.AtlasPath)
	}
	if err != nil {
		return nil, err
	}
	if cfg.AtlasImage != "" {
		img, err := atlas.LoadImage(cfg.AtlasImage)
		if err != nil {
			return nil, err
		}
		if err := a.CheckImage(img); err != nil {
			return nil, err
		}
	}
	return a, nil
}
