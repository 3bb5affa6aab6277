// Command lzwserver serves the LZW compression API over HTTP.
//
// Settings come from the environment (PORT, GO_ENV, MAX_FILE_SIZE,
// LZW_DICTIONARY_CAPACITY, LOG_LEVEL) and optionally from the YAML file
// named by LZW_CONFIG.
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/adilg123/lzw-compression-tool/internal/api"
	"github.com/adilg123/lzw-compression-tool/internal/config"
	"github.com/adilg123/lzw-compression-tool/internal/log"
)

const shutdownTimeout = 10 * time.Second

func main() {
	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf(ctx, "loading config: %v", err)
	}
	if err := log.SetLevel(cfg.LogLevel); err != nil {
		log.Fatalf(ctx, "%v", err)
	}
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	// Multipart bodies above this size spill to disk.
	router.MaxMultipartMemory = cfg.MaxFileSize
	api.SetupRoutes(router, cfg)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		log.Infof(ctx, "Listening on addr %s (environment %s, dictionary capacity %d)",
			srv.Addr, cfg.Environment, cfg.DictionaryCapacity)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf(ctx, "ListenAndServe: %v", err)
		}
	}()

	<-ctx.Done()
	log.Infof(context.Background(), "shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Errorf(shutdownCtx, "Shutdown: %v", err)
	}
}
