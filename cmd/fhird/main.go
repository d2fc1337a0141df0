// Copyright 2015-2026 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

// Package fhird serves the read and history REST interface over an
// in-memory versioned record store.  Records can be loaded at startup
// from the "seed" section of the configuration file.
package main

import (
	"os"

	"github.com/diffeo/go-fhirhistory/dispatch"
	"github.com/diffeo/go-fhirhistory/memory"
	"github.com/diffeo/go-fhirhistory/paging"
	"github.com/diffeo/go-fhirhistory/restserver"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"
	"github.com/urfave/cli"
)

func main() {
	app := cli.NewApp()
	app.Name = "fhird"
	app.Usage = "serve resource read and history requests over HTTP"
	app.Flags = flags()
	app.Action = run
	if err := app.Run(os.Args); err != nil {
		logrus.WithFields(logrus.Fields{
			"err": err,
		}).Fatal("fhird failed")
	}
}

// flags returns the command-line flags.  All but --config can also be
// set in the configuration file.
func flags() []cli.Flag {
	return []cli.Flag{
		cli.StringFlag{
			Name:  "http",
			Value: ":5980",
			Usage: "[ip]:port for HTTP REST interface",
		},
		cli.StringFlag{
			Name:  "config",
			Usage: "global configuration YAML file",
		},
		cli.StringFlag{
			Name:  "prefix",
			Value: "/",
			Usage: "URL path to serve resources under",
		},
		cli.StringFlag{
			Name:  "base-url",
			Usage: "absolute URL of the prefix as clients see it",
		},
		cli.IntFlag{
			Name:  "page-size",
			Value: restserver.DefaultPageSize,
			Usage: "history entries per page",
		},
		cli.IntFlag{
			Name:  "paging-capacity",
			Value: 100,
			Usage: "history results kept for continuation links",
		},
		cli.StringFlag{
			Name:  "log-level",
			Value: "info",
			Usage: "minimum level of log messages",
		},
		cli.BoolFlag{
			Name:  "log-requests",
			Usage: "log all requests",
		},
	}
}

func run(c *cli.Context) error {
	cfg, err := loadConfig(c)
	if err != nil {
		logrus.WithFields(logrus.Fields{
			"err": err,
		}).Fatal("Could not load configuration")
		return err
	}
	level, _ := logrus.ParseLevel(cfg.LogLevel)
	logrus.SetLevel(level)

	store := memory.New()
	for _, seed := range cfg.Seed {
		store.Put(seed.ResourceType, seed.ID, seed.Content)
	}

	reg := dispatch.NewRegistry()
	if err = store.Register(reg, cfg.ResourceTypes...); err != nil {
		logrus.WithFields(logrus.Fields{
			"err": err,
		}).Fatal("Could not register handlers")
		return err
	}
	reg.Freeze()

	pages := paging.New(cfg.PagingCapacity)
	m, err := newMetrics(prometheus.DefaultRegisterer, pages)
	if err != nil {
		logrus.WithFields(logrus.Fields{
			"err": err,
		}).Fatal("Could not register metrics")
		return err
	}

	var reqLogger *logrus.Logger
	if cfg.LogRequests {
		stdlog := logrus.StandardLogger()
		reqLogger = &logrus.Logger{
			Out:       stdlog.Out,
			Formatter: stdlog.Formatter,
			Hooks:     stdlog.Hooks,
			Level:     logrus.DebugLevel,
		}
	}

	h := &HTTP{
		Config:   cfg,
		Registry: reg,
		Pages:    pages,
		Metrics:  m,
		Gatherer: prometheus.DefaultGatherer,
		Log:      logrus.StandardLogger(),
	}
	if reqLogger != nil {
		h.RequestLog = reqLogger
	}
	logrus.WithFields(logrus.Fields{
		"http":  cfg.HTTP,
		"types": cfg.ResourceTypes,
		"seed":  len(cfg.Seed),
	}).Info("serving")
	return h.Serve()
}
