package main

import (
	"fmt"
	"net/http"

	"go.uber.org/zap"
	"golang.org/x/crypto/acme/autocert"

	"github.com/linkboard/linkboard/internal/app/server"
	"github.com/linkboard/linkboard/internal/app/service"
	"github.com/linkboard/linkboard/internal/config"
	"github.com/linkboard/linkboard/internal/logger"
	"github.com/linkboard/linkboard/internal/repository"
	"github.com/linkboard/linkboard/internal/storage"

	_ "net/http/pprof"
)

var buildVersion string
var buildDate string
var buildCommit string

func main() {
	options := config.Parse()

	fmt.Printf("Build version: %s\n", buildVersion)
	fmt.Printf("Build date: %s\n", buildDate)
	fmt.Printf("Build commit: %s\n", buildCommit)

	log := logger.New()
	defer func() {
		_ = log.Log.Sync()
	}()

	if err := log.Init("Info"); err != nil {
		panic(err)
	}
	zapLogger := log.Log

	if options.EnablePprof {
		go func() {
			zapLogger.Info("Starting pprof server", zap.String("addr", "localhost:6060"))
			if err := http.ListenAndServe("localhost:6060", nil); err != nil {
				zapLogger.Error("pprof server error", zap.Error(err))
			}
		}()
	}

	var s service.Storage
	var err error

	if options.DatabaseDSN != "" {
		zapLogger.Info("using db", zap.String("dsn", options.DatabaseDSN))
		db := repository.InitDB(options.DatabaseDSN, zapLogger)
		defer db.Close()
		s = repository.CreateLinkRepository(db, zapLogger)
		zapLogger.Info("Database connected and tables ready.")
	} else if options.FilePath != "" {
		zapLogger.Info("using file journal", zap.String("filePath", options.FilePath))

		s, err = storage.NewFileStorage(options.FilePath, zapLogger)
		if err != nil {
			panic(err)
		}
	} else {
		zapLogger.Info("using in memory storage")

		s, err = storage.CreateMemoryStorage()
		if err != nil {
			panic(err)
		}
	}

	generator := service.NewCodeGenerator(options.CodeLength)
	linkService := service.NewLink(s, generator, zapLogger, options.ResultHostname)
	auth := service.NewAuth()

	r := server.Init(options.ResultHostname, zapLogger, true, linkService, auth, options.TrustedSubnet)

	if options.EnableHTTPS {
		manager := &autocert.Manager{
			Cache:      autocert.DirCache("cache-dir"),
			Prompt:     autocert.AcceptTOS,
			HostPolicy: autocert.HostWhitelist("linkboard.example", "www.linkboard.example"),
		}
		srv := &http.Server{
			Addr:      ":443",
			Handler:   r,
			TLSConfig: manager.TLSConfig(),
		}
		zapLogger.Info("Server is running with TLS", zap.String("hostname", options.Port))
		if err := srv.ListenAndServeTLS("", ""); err != nil {
			panic(err)
		}
	} else {
		zapLogger.Info("Server is running", zap.String("hostname", options.Port))
		if err := http.ListenAndServe(options.Port, r); err != nil {
			panic(err)
		}
	}
}
