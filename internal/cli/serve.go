package cli

import (
	"context"
	"fmt"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/nats-io/nats.go"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"

	"github.com/matzehuels/hemicycle/pkg/cache"
	"github.com/matzehuels/hemicycle/pkg/errors"
	"github.com/matzehuels/hemicycle/pkg/feed"
	"github.com/matzehuels/hemicycle/pkg/observability/prom"
	"github.com/matzehuels/hemicycle/pkg/pipeline"
	"github.com/matzehuels/hemicycle/pkg/server"
	"github.com/matzehuels/hemicycle/pkg/store"
)

// serveOpts holds the command-line flags for the serve command. Every flag
// falls back to a HEMICYCLE_ environment variable.
type serveOpts struct {
	addr    string // HTTP listen address
	id      string // broadcast ID; generated when empty
	restore bool   // replay stored results on start
	metrics bool   // expose Prometheus metrics at /metrics

	natsURL string // NATS server; no NATS ingestion when empty
	subject string // NATS subject carrying updates
	queue   string // NATS queue group

	redisAddr      string // Redis for results and frame cache
	redisNamespace string // key prefix in Redis
	mongoURI       string // MongoDB for results
	mongoDatabase  string // MongoDB database
	storeDir       string // directory for file-backed results
	noCache        bool   // disable the assignment cache
}

// serveCommand creates the serve command running a live broadcast.
func (c *CLI) serveCommand() *cobra.Command {
	opts := serveOpts{
		addr:           envOr("ADDR", ":8080"),
		id:             envOr("BROADCAST_ID", ""),
		metrics:        true,
		natsURL:        envOr("NATS_URL", ""),
		subject:        envOr("NATS_SUBJECT", feed.DefaultSubject),
		queue:          envOr("NATS_QUEUE", ""),
		redisAddr:      envOr("REDIS_ADDR", ""),
		redisNamespace: envOr("REDIS_NAMESPACE", store.DefaultRedisNamespace),
		mongoURI:       envOr("MONGO_URI", ""),
		mongoDatabase:  envOr("MONGO_DATABASE", store.DefaultMongoDatabase),
		storeDir:       envOr("STORE_DIR", ""),
	}

	cmd := &cobra.Command{
		Use:   "serve [config]",
		Short: "Run a live broadcast server",
		Long: `Serve starts a broadcast and accepts results over HTTP and, optionally,
from a NATS subject. Results are persisted to Redis, MongoDB or a directory so
that a restarted server can resume the broadcast with --restore.`,
		Example: `  hemicycle serve house.toml
  hemicycle serve house.toml --nats-url nats://localhost:4222 --redis-addr localhost:6379 --id house-2024 --restore`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := opts.validate(); err != nil {
				return err
			}
			return c.runServe(cmd, args[0], opts)
		},
	}

	f := cmd.Flags()
	f.StringVar(&opts.addr, "addr", opts.addr, "HTTP listen address")
	f.StringVar(&opts.id, "id", opts.id, "broadcast ID (required with --restore)")
	f.BoolVar(&opts.restore, "restore", false, "replay stored results before accepting new ones")
	f.BoolVar(&opts.metrics, "metrics", opts.metrics, "expose Prometheus metrics at /metrics")
	f.StringVar(&opts.natsURL, "nats-url", opts.natsURL, "NATS server to ingest results from")
	f.StringVar(&opts.subject, "subject", opts.subject, "NATS subject carrying results")
	f.StringVar(&opts.queue, "queue", opts.queue, "NATS queue group")
	f.StringVar(&opts.redisAddr, "redis-addr", opts.redisAddr, "Redis address for results and frames")
	f.StringVar(&opts.redisNamespace, "redis-namespace", opts.redisNamespace, "Redis key prefix")
	f.StringVar(&opts.mongoURI, "mongo-uri", opts.mongoURI, "MongoDB URI for results")
	f.StringVar(&opts.mongoDatabase, "mongo-database", opts.mongoDatabase, "MongoDB database")
	f.StringVar(&opts.storeDir, "store-dir", opts.storeDir, "directory for results")
	f.BoolVar(&opts.noCache, "no-cache", false, "disable the assignment cache")

	return cmd
}

func (o serveOpts) validate() error {
	backends := 0
	for _, v := range []string{o.redisAddr, o.mongoURI, o.storeDir} {
		if v != "" {
			backends++
		}
	}
	if backends > 1 {
		return errors.New(errors.ErrCodeInvalidInput, "choose one of --redis-addr, --mongo-uri and --store-dir")
	}
	if o.restore && o.id == "" {
		return errors.New(errors.ErrCodeInvalidInput, "--restore needs the --id of the broadcast to resume")
	}
	if o.id != "" {
		if err := errors.ValidateID("broadcast", o.id); err != nil {
			return err
		}
	}
	if o.natsURL != "" {
		if err := errors.ValidateSubject(o.subject); err != nil {
			return err
		}
	}
	return nil
}

func (c *CLI) runServe(cmd *cobra.Command, path string, opts serveOpts) error {
	ctx := cmd.Context()
	logger := loggerFromContext(ctx)
	status := cmd.ErrOrStderr()

	cfg, err := c.loadConfig(path)
	if err != nil {
		return err
	}

	var serverOpts []server.Option
	if opts.metrics {
		reg := prometheus.NewRegistry()
		reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
		prom.New(reg, "").Register()
		serverOpts = append(serverOpts, server.WithMetrics(promhttp.HandlerFor(reg, promhttp.HandlerOpts{})))
	}

	frames, err := c.openCache(ctx, opts)
	if err != nil {
		return err
	}
	defer frames.Close()

	assignments := frames
	if opts.redisAddr == "" {
		if assignments, err = newCache(opts.noCache); err != nil {
			return err
		}
		defer assignments.Close()
	}
	keyer := cache.NewDefaultKeyer()
	if opts.redisAddr != "" {
		keyer = cache.NewScopedKeyer(keyer, opts.redisNamespace+":")
	}
	runner := pipeline.NewRunner(assignments, keyer, logger)
	b, err := runner.Start(ctx, cfg, pipeline.Options{ID: opts.id})
	if err != nil {
		return err
	}

	st, err := openStore(ctx, opts, logger)
	if err != nil {
		return err
	}
	defer st.Close()

	coord := feed.NewCoordinator(b,
		feed.WithStore(st),
		feed.WithCache(frames, keyer),
		feed.WithLogger(logger),
	)
	if opts.restore {
		n, err := coord.Restore(ctx)
		if err != nil {
			return fmt.Errorf("restore: %w", err)
		}
		printInfo(status, "Restored %d results", n)
	}

	printSuccess(status, "Serving %s", title(cfg, path))
	printKeyValue(status, "broadcast", b.ID)
	printKeyValue(status, "address", opts.addr)
	if opts.natsURL != "" {
		printKeyValue(status, "subject", opts.subject)
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		coord.Run(ctx)
	}()

	if opts.natsURL != "" {
		nc, err := nats.Connect(opts.natsURL, nats.Name(appName))
		if err != nil {
			cancel()
			wg.Wait()
			return errors.Wrap(errors.ErrCodeNetwork, err, "connect nats %s", opts.natsURL)
		}
		defer nc.Close()

		src := &feed.NATSSource{Conn: nc, Subject: opts.subject, Queue: opts.queue, Logger: logger}
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := coord.Feed(ctx, "nats", src); err != nil {
				logger.Error("nats feed stopped", "err", err)
				cancel()
			}
		}()
	}

	srv := server.New(coord, append(serverOpts, server.WithLogger(logger))...)
	err = srv.ListenAndServe(ctx, opts.addr)
	cancel()
	wg.Wait()
	return err
}

// openCache returns the frame cache: Redis when configured, otherwise none.
func (c *CLI) openCache(ctx context.Context, opts serveOpts) (cache.Cache, error) {
	if opts.redisAddr == "" {
		return cache.NewNullCache(), nil
	}
	return cache.NewRedisCache(ctx, &redis.Options{Addr: opts.redisAddr})
}

// openStore returns the configured result store.
func openStore(ctx context.Context, opts serveOpts, logger *log.Logger) (store.Store, error) {
	switch {
	case opts.redisAddr != "":
		logger.Debug("using redis store", "addr", opts.redisAddr)
		return store.NewRedisStore(ctx, &redis.Options{Addr: opts.redisAddr}, opts.redisNamespace)
	case opts.mongoURI != "":
		logger.Debug("using mongodb store", "database", opts.mongoDatabase)
		return store.NewMongoStore(ctx, store.MongoConfig{URI: opts.mongoURI, Database: opts.mongoDatabase})
	case opts.storeDir != "":
		logger.Debug("using file store", "dir", opts.storeDir)
		return store.NewFileStore(opts.storeDir)
	}
	logger.Warn("results are kept in memory only")
	return store.NewMemoryStore(), nil
}
