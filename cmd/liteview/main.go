package main

import (
	"context"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/liteview/liteview/pkg/capture"
	"github.com/liteview/liteview/pkg/config"
	"github.com/liteview/liteview/pkg/control"
	"github.com/liteview/liteview/pkg/logger"
	"github.com/liteview/liteview/pkg/monitoring"
	xos "github.com/liteview/liteview/pkg/os"
	"github.com/liteview/liteview/pkg/preview"
	"github.com/liteview/liteview/pkg/preview/sdl"
	"github.com/liteview/liteview/pkg/service"
	"github.com/liteview/liteview/pkg/session"
	"github.com/liteview/liteview/pkg/settings"
	"github.com/liteview/liteview/pkg/thread"
	flag "github.com/spf13/pflag"
)

var Version = "dev"

func run() {
	conf, err := config.NewConfig(os.Args[1:])
	if err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}
	fs := flag.NewFlagSet("liteview", flag.ExitOnError)
	version := fs.BoolP("version", "v", false, "Print version and exit")
	conf.WithFlags(fs)
	_ = fs.Parse(os.Args[1:])
	if *version {
		fmt.Println(Version)
		return
	}

	log := logger.NewConsole(conf.Debug, "lv", conf.NoColor)
	if conf.JSONLog {
		log = logger.New(conf.Debug)
	}
	log.Info().Msgf("version %s", Version)
	log.Debug().Msgf("config %+v", conf)

	if err = app(conf, log); err != nil {
		log.Error().Err(err).Msg("")
		os.Exit(1)
	}
}

func app(conf *config.Config, log *logger.Logger) error {
	backend, err := captureBackend(conf.Capture, log)
	if err != nil {
		return err
	}
	policy, err := capture.ParsePolicy(conf.Capture.Policy)
	if err != nil {
		return err
	}

	storage, err := settings.NewFileStorage(conf.Settings.Path)
	if err != nil {
		return err
	}
	store := settings.NewStore(storage, log)

	var console *control.Console
	sessions := session.New(backend, capture.Config{
		Policy:        policy,
		LiveThreshold: conf.Capture.LiveThreshold,
		DrainLimit:    conf.Capture.DrainLimit,
		DrainPoll:     conf.Capture.DrainPoll,
	}, func(err error) { console.Notify(err) }, log)
	svc := control.New(store, sessions, backend, Version, log)
	console = control.NewConsole(svc, os.Stdin, os.Stdout, log)

	surfaces, closeSurfaces, err := previewBackend(conf.Preview, log)
	if err != nil {
		return err
	}
	defer closeSurfaces()
	consumer := preview.NewConsumer(preview.Config{
		Title:     conf.Preview.Title,
		Interval:  conf.Preview.Interval,
		FpsWindow: conf.Preview.FpsWindow,
		Osd:       conf.Preview.Osd,
	}, sessions, surfaces, log)

	var services service.Group
	if !conf.Settings.NoWatch {
		services.Add(settings.NewWatcher(storage, store, log))
	}
	if conf.Monitoring.IsEnabled() {
		services.Add(monitoring.New(conf.Monitoring, log))
	}
	services.Add(sessions)
	services.Start()
	log.Debug().Msgf("%d services started", services.Len())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		consumer.Run(ctx)
	}()

	if conf.Capture.Autostart {
		if err := svc.Start(nil); err != nil {
			console.Notify(err)
		}
	}

	go func() {
		if console.Run(ctx) {
			cancel()
		}
	}()
	console.Exec("help")

	select {
	case <-xos.ExpectTermination():
		log.Info().Msg("terminated")
	case <-ctx.Done():
	}
	cancel()

	sctx, scancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer scancel()
	err = services.Shutdown(sctx)
	wg.Wait()
	return err
}

func captureBackend(conf config.Capture, log *logger.Logger) (capture.Backend, error) {
	switch conf.Backend {
	case "screen", "":
		return capture.NewScreen(conf.Queue, log), nil
	case "pattern":
		return capture.NewPattern(conf.Pattern.Width, conf.Pattern.Height, conf.Queue), nil
	}
	return nil, fmt.Errorf("unknown capture backend: %s", conf.Backend)
}

func previewBackend(conf config.Preview, log *logger.Logger) (preview.Backend, func(), error) {
	switch conf.Backend {
	case "sdl", "":
		s, err := sdl.New(sdl.Options{Framed: conf.Framed}, log)
		if err != nil {
			return nil, nil, err
		}
		return s, s.Deinit, nil
	case "headless":
		return preview.NewHeadless(log), func() {}, nil
	}
	return nil, nil, fmt.Errorf("unknown preview backend: %s", conf.Backend)
}

func main() { thread.Wrap(run) }
