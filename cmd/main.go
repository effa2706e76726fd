package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/urfave/cli"

	"gitlab.com/testsys2pcms.net/internal/adapter/crypto"
	"gitlab.com/testsys2pcms.net/internal/adapter/fetch"
	"gitlab.com/testsys2pcms.net/internal/adapter/pcms"
	"gitlab.com/testsys2pcms.net/internal/adapter/postgres/conversionrepository"
	"gitlab.com/testsys2pcms.net/internal/adapter/redis/payloadcache"
	"gitlab.com/testsys2pcms.net/internal/config"
	"gitlab.com/testsys2pcms.net/internal/core/ports/secondary"
	"gitlab.com/testsys2pcms.net/internal/core/services/convert"
	"gitlab.com/testsys2pcms.net/internal/domain"
	logger2 "gitlab.com/testsys2pcms.net/internal/global/logger"
	"gitlab.com/testsys2pcms.net/internal/handlers"
	http2 "gitlab.com/testsys2pcms.net/internal/http"
	"gitlab.com/testsys2pcms.net/internal/schedulerengine"
)

const usage = `converts a testsys contest export into PCMS2 XML documents`

func main() {
	app := cli.NewApp()
	app.Name = "testsys2pcms"
	app.Usage = usage
	app.Version = "1.0.0"

	app.Flags = []cli.Flag{
		cli.StringFlag{
			Name:  "env, e",
			Usage: "load <env>.env before reading configuration",
		},
	}
	app.Commands = []cli.Command{
		convertCmd,
		serveCmd,
		watchCmd,
		tokenCmd,
	}
	app.Before = func(c *cli.Context) error {
		if env := c.GlobalString("env"); env != "" {
			if err := config.Load(env); err != nil {
				return fmt.Errorf("error loading %s.env file: %w", env, err)
			}
		}
		logger2.Configure(config.NewSystemConfig().LogLevel)
		return nil
	}
	app.After = func(c *cli.Context) error {
		_ = logger2.Logger.Sync()
		return nil
	}

	if err := app.Run(os.Args); err != nil {
		logger2.Error("Command failed", "error", err)
		_ = logger2.Logger.Sync()
		os.Exit(1)
	}
}

var convertCmd = cli.Command{
	Name:  "convert",
	Usage: "fetch the export once and write the XML documents",
	Action: func(c *cli.Context) error {
		ctx, stop := signalContext()
		defer stop()

		app, err := setup(ctx, config.NewSystemConfig())
		if err != nil {
			return err
		}
		defer app.Close()

		conversion, err := app.convertSvc.Convert(ctx, convert.Options{Force: true})
		if err != nil {
			return err
		}
		logger2.Info("Documents written", "contest", conversion.Contest, "runs", conversion.Runs)
		return nil
	},
}

var serveCmd = cli.Command{
	Name:  "serve",
	Usage: "serve the conversion HTTP API",
	Action: func(c *cli.Context) error {
		ctx, stop := signalContext()
		defer stop()

		sysCfg := config.NewSystemConfig()
		app, err := setup(ctx, sysCfg)
		if err != nil {
			return err
		}
		defer app.Close()

		jwtSvc := crypto.NewJWTService(sysCfg.JwtConfig)
		mw := handlers.New(jwtSvc, crypto.DefaultSigningMethod, sysCfg.JwtConfig.Secret != "", logger2.Logger)
		if sysCfg.JwtConfig.Secret == "" {
			logger2.Warn("JWT_SECRET is empty, API is unauthenticated")
		}
		serviceProvider := http2.NewServiceProvider(app.convertSvc, mw)
		httpServer := http2.NewServer(sysCfg.HttpConfig.Port, sysCfg.HttpConfig.ServiceName, *serviceProvider, logger2.Logger)
		if err := httpServer.Init(); err != nil {
			return err
		}
		httpServer.Start(ctx)

		if sysCfg.DebugMode {
			logger2.Debug("Scheduler disabled in debug mode")
		} else {
			schedulerengine.NewSchedulerEngine(sysCfg.ScheduleSvcCfg, app.convertSvc, logger2.Logger).StartConvertEngine(ctx)
		}

		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := httpServer.Stop(shutdownCtx); err != nil {
			return err
		}
		logger2.Info("successfully shutdown server")
		return nil
	},
}

var watchCmd = cli.Command{
	Name:  "watch",
	Usage: "re-convert the export on every schedule tick until interrupted",
	Action: func(c *cli.Context) error {
		ctx, stop := signalContext()
		defer stop()

		sysCfg := config.NewSystemConfig()
		app, err := setup(ctx, sysCfg)
		if err != nil {
			return err
		}
		defer app.Close()

		engine := schedulerengine.NewSchedulerEngine(sysCfg.ScheduleSvcCfg, app.convertSvc, logger2.Logger)
		engine.StartConvertEngine(ctx)
		logger2.Info("Watching export", "url", sysCfg.ContestConfig.URL, "interval", sysCfg.ScheduleSvcCfg.ConvertInterval)
		engine.Wait()
		return nil
	},
}

var tokenCmd = cli.Command{
	Name:  "token",
	Usage: "print an API token signed with JWT_SECRET",
	Flags: []cli.Flag{
		cli.StringFlag{
			Name:  "subject",
			Value: "operator",
			Usage: "token subject",
		},
	},
	Action: func(c *cli.Context) error {
		jwtSvc := crypto.NewJWTService(config.NewJwtConfig())
		tok, err := jwtSvc.GenerateTokenHMAC(context.Background(), crypto.DefaultSigningMethod, map[string]interface{}{
			"sub":        c.String("subject"),
			"permission": []string{domain.PermissionConvert},
		})
		if err != nil {
			return err
		}
		fmt.Println(tok)
		return nil
	},
}

type application struct {
	convertSvc *convert.ConvertService
	closers    []func() error
}

func (a *application) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			logger2.Warn("Failed to release resource", "error", err)
		}
	}
}

// setup wires the fetcher, optional cache and history, and the emitter
func setup(ctx context.Context, sysCfg *config.AppConfig) (*application, error) {
	contestCfg := sysCfg.ContestConfig
	if err := contestCfg.Validate(); err != nil {
		return nil, err
	}
	logger := logger2.Logger
	app := &application{}

	var fetcher secondary.Fetcher = fetch.NewFetcher(ctx, sysCfg.FetchConfig, logger)
	if sysCfg.RedisConfig.Enabled() {
		redisClient := setupRedis(sysCfg.RedisConfig)
		app.closers = append(app.closers, redisClient.Close)
		fetcher = payloadcache.NewCachingFetcher(fetcher, redisClient, sysCfg.RedisConfig.PayloadTTL, logger)
	}

	var repo secondary.ConversionRepository
	if sysCfg.PostgresConfig.Enabled() {
		db, err := setupDatabase(sysCfg.PostgresConfig)
		if err != nil {
			app.Close()
			return nil, fmt.Errorf("failed to set up database: %w", err)
		}
		app.closers = append(app.closers, db.Close)
		conversionRepo := conversionrepository.NewConversionRepository(db, logger)
		if err := conversionRepo.EnsureSchema(ctx); err != nil {
			app.Close()
			return nil, err
		}
		repo = conversionRepo
	}

	emitter := pcms.NewEmitter(contestCfg, logger)
	app.convertSvc = convert.NewConvertService(fetcher, emitter, repo, contestCfg, logger)
	return app, nil
}

// setupDatabase sets up the PostgreSQL connection
func setupDatabase(cfg *config.PostgresConfig) (*sqlx.DB, error) {
	db, err := sqlx.Open("postgres", cfg.Url)
	if err != nil {
		return nil, err
	}

	// Test the connection
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, err
	}

	return db, nil
}

// setupRedis sets up the Redis connection
func setupRedis(cfg *config.RedisConfig) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     cfg.Url,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
}

func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
}
