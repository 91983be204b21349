package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/opst/footprintweb/cmd/footprintweb/handlers"
	"github.com/opst/footprintweb/pkg/buildtime"
	kconf "github.com/opst/footprintweb/pkg/configs/server"
	kpool "github.com/opst/footprintweb/pkg/conn/db/postgres/pool"
	"github.com/opst/footprintweb/pkg/domain/catalog"
	"github.com/opst/footprintweb/pkg/echoutil"
	"github.com/opst/footprintweb/pkg/forms"
	"github.com/opst/footprintweb/pkg/graph"
	"github.com/opst/footprintweb/pkg/lifecycle"
	"github.com/opst/footprintweb/pkg/loop"
	"github.com/opst/footprintweb/pkg/repository"
	"github.com/opst/footprintweb/pkg/repository/memory"
	kpg "github.com/opst/footprintweb/pkg/repository/postgres"
	"github.com/opst/footprintweb/pkg/session"
	"github.com/opst/footprintweb/pkg/utils/filewatch"
	"github.com/opst/footprintweb/pkg/utils/retry"
)

func main() {
	configPath := flag.String("config-path", "", "server config path")
	loglevel := flag.String("loglevel", "info", "log level. debug|info|warn|error|off")
	pversion := flag.Bool("version", false, "show version")
	flag.Parse()

	if *pversion {
		fmt.Println(buildtime.VersionString())
		return
	}

	e := echo.New()
	e.HideBanner = true
	e.JSONSerializer = echoutil.JSONSerializer{}
	e.Pre(middleware.AddTrailingSlash())

	// set log
	echoutil.SetLevel(e, *loglevel)
	e.HTTPErrorHandler = func(err error, ctx echo.Context) {
		e.DefaultHTTPErrorHandler(err, ctx)
		e.Logger.Error(err)
	}
	e.Use(echoutil.LogHandlerFunc)

	// read configfile
	conf, err := kconf.Load(*configPath)
	if err != nil {
		log.Fatalf("can not read configration: %s", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cat := catalog.Builtin()
	watched := []string{*configPath}
	if seeds := conf.Seeds(); seeds != "" {
		if err := cat.LoadSeedFile(seeds); err != nil {
			log.Fatalf("can not read seeds: %s", err)
		}
		watched = append(watched, seeds)
	}

	{
		wctx, wcancel, err := filewatch.UntilModified(ctx, watched...)
		if err != nil {
			log.Fatalf("can not watch configration: %s", err)
		}
		defer wcancel()
		context.AfterFunc(wctx, func() {
			var modified *filewatch.ModifiedError
			if !errors.As(context.Cause(wctx), &modified) {
				return
			}
			log.Printf("%s. quit to restart server.", modified)
			graceful, cancel := context.WithTimeout(context.Background(), 15*time.Second)
			defer cancel()
			if err := e.Shutdown(graceful); err != nil {
				log.Printf("error on shutdown by file update: %s", err)
			}
		})
	}

	provider, closeProvider, err := getProvider(ctx, conf.Database())
	if err != nil {
		log.Fatalf("can not connect to database: %s", err)
	}
	defer closeProvider()

	go func() {
		hk := conf.Housekeeping()
		expired, err := loop.Start(
			ctx, 0,
			repository.ExpireTask(provider, hk.Idle(), hk.Interval(), time.Now, e.Logger),
			loop.WithTimeout(hk.Interval()),
		)
		if err != nil && !errors.Is(err, context.Canceled) {
			e.Logger.Errorf("housekeeping is stopped: %s", err)
		}
		e.Logger.Infof("housekeeping is finished. %d graphs are expired", expired)
	}()

	m := &handlers.Model{
		Catalog:      cat,
		Forms:        forms.NewBuilder(cat, forms.BuiltinConfig(), forms.WithLogger(e.Logger)),
		Orchestrator: lifecycle.NewBuiltin(cat, lifecycle.WithLogger(e.Logger)),
		GraphOptions: []graph.Option{graph.WithLogger(e.Logger)},
	}

	sess := conf.Session()
	api := e.Group("/api", handlers.Sessions(
		session.NewTokens(sess.Key(), sess.TTL()), sess.Cookie(), provider,
	))
	handlers.Register(api, m)

	log.Println("registred routes:")
	for _, r := range e.Routes() {
		log.Println(r.Method, r.Path)
	}

	if err := e.Start(fmt.Sprintf(":%d", conf.Port())); err != nil && !errors.Is(err, http.ErrServerClosed) {
		e.Logger.Fatal(err)
	}
}

// getProvider connects to postgres at dburi, or keeps graphs in memory for empty dburi.
//
// Connecting is retried for a while, since the database may be starting up.
func getProvider(ctx context.Context, dburi string) (repository.Provider, func(), error) {
	if dburi == "" {
		log.Println("graphs are kept in memory. they are lost on restart.")
		return memory.New(), func() {}, nil
	}

	cctx, cancel := context.WithTimeout(ctx, time.Minute)
	defer cancel()
	pool, err := retry.Blocking(
		cctx, retry.ExponentialBackoff(500*time.Millisecond, 2, 10*time.Second),
		func() (kpool.Pool, error) {
			pool, err := kpool.Connect(cctx, dburi)
			if err != nil {
				log.Printf("database is not ready: %s", err)
				return nil, fmt.Errorf("%w: %w", retry.ErrRetry, err)
			}
			return pool, nil
		},
	)
	if err != nil {
		return nil, nil, err
	}

	provider := kpg.New(pool)
	if err := provider.Migrate(ctx); err != nil {
		pool.Close()
		return nil, nil, err
	}
	return provider, pool.Close, nil
}
