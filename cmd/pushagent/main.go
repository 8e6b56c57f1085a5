package main

import (
	"context"
	"errors"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/smartsonnette/webpush-agent/autopush"
	"github.com/smartsonnette/webpush-agent/config"
	"github.com/smartsonnette/webpush-agent/notification"
	"github.com/smartsonnette/webpush-agent/state"
	"github.com/smartsonnette/webpush-agent/subscribe"
	"github.com/smartsonnette/webpush-agent/useragent"
)

var flagConfigFile = flag.String("c", "etc/pushagent.yml", "path to config file")

func newLogger(c config.Log) (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	if c.Development {
		cfg = zap.NewDevelopmentConfig()
	}
	level, err := zap.ParseAtomicLevel(c.Level)
	if err != nil {
		return nil, err
	}
	cfg.Level = level
	return cfg.Build()
}

func main() {
	flag.Parse()
	boot := zap.Must(zap.NewProduction())

	conf, err := config.NewFromFile(*flagConfigFile)
	if err != nil {
		boot.Fatal("can't open config file", zap.Error(err))
	}
	log, err := newLogger(conf.Log)
	if err != nil {
		boot.Fatal("can't build logger", zap.Error(err))
	}
	defer func() { _ = log.Sync() }()

	if err = conf.Validate(); err != nil {
		log.Fatal("invalid config", zap.Error(err))
	}
	if err = run(conf, log); err != nil && !errors.Is(err, context.Canceled) {
		log.Fatal("agent stopped", zap.Error(err))
	}
	log.Info("goodbye")
}

func run(conf *config.Config, log *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	identity, err := state.Load(conf.StatePath)
	if err != nil {
		return err
	}

	var displayer notification.Displayer = notification.LogDisplayer{Log: log.Named("display")}
	if conf.NotifyCommand != "" {
		displayer = notification.MultiDisplayer{
			displayer,
			notification.CommandDisplayer{Command: conf.NotifyCommand},
		}
	}
	handler := notification.NewHandler(displayer, conf.DefaultIcon, log)

	client, notifications := autopush.NewClient(log)
	agent := useragent.New(client, notifications, identity, conf.StatePath, handler, log)
	if err = agent.Connect(conf.PushService); err != nil {
		// without a push service the bootstrap below is a no-op
		log.Warn("push service unreachable", zap.Error(err))
	}

	// runs on every start: an open channel reuses the stored subscription,
	// so the collection endpoint receives it again
	endpoint, err := conf.SubscribeURL()
	if err != nil {
		return err
	}
	bootstrap := &subscribe.Bootstrap{
		Platform:             agent,
		HTTPClient:           useragent.NewHTTPClient(conf.HTTP2),
		Endpoint:             endpoint,
		ScriptPath:           conf.ScriptPath,
		ApplicationServerKey: conf.ApplicationServerKey,
		Log:                  log,
	}
	if err = bootstrap.Run(ctx); err != nil {
		log.Warn("subscription failed", zap.Error(err))
	}

	if agent.Capabilities() == (subscribe.Capabilities{}) {
		return nil
	}
	id := agent.Identity()
	log.Info("waiting for pushes", zap.String("uaid", id.UAID), zap.Strings("channels", id.ChannelIDs))
	return agent.Serve(ctx)
}
