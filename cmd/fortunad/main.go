// Command fortunad runs the pooled entropy daemon: it seeds a cipher
// PRNG from a bank of demo entropy sources, serves random bytes and
// status over HTTP, and records its reseed count to a disk-state file
// after every reseed. An existing disk-state file is read at start only
// to log how many records it holds; nothing is restored from it.
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/coldkeep/fortunad/internal/auth"
	"github.com/coldkeep/fortunad/internal/config"
	"github.com/coldkeep/fortunad/internal/diskstate"
	"github.com/coldkeep/fortunad/internal/generator"
	"github.com/coldkeep/fortunad/internal/handlers"
	"github.com/coldkeep/fortunad/internal/sources"
	"github.com/coldkeep/fortunad/internal/telemetry"
)

const reseedEventsNamespace = "accumulator"
const reseedEventsKey = "total_reseed_events"

func main() {
	log := logrus.NewEntry(logrus.StandardLogger())

	cfg := config.Load()

	gen, err := generator.New(cfg.Scheduler, log)
	if err != nil {
		log.WithError(err).Fatal("failed to construct generator")
	}

	gen.AddSource(sources.NewSystem(64))
	gen.AddSource(sources.NewJitter(8))

	sink := telemetry.NewSink(cfg.TelemetryEndpoint, log)
	gen.AddReseedListener(func() {
		sink.Report(telemetry.ReseedEvent{
			GeneratorID: gen.ID().String(),
			ReseedCount: gen.ReseedCount(),
			Priority:    gen.Priority().String(),
			ObservedAt:  time.Now().Unix(),
		})
	})

	store := diskstate.NewFileStore(cfg.DiskStatePath)
	if records, err := store.Read(); err != nil && !os.IsNotExist(err) {
		log.WithError(err).Warn("disk state load failed; starting cold")
	} else if err == nil {
		log.WithField("records", len(records)).Info("loaded disk state bookkeeping")
	}
	gen.AddReseedListener(func() {
		persistBookkeeping(store, gen, log)
	})

	gen.Start()
	defer gen.Dispose()

	startServer(cfg, gen, log)
}

func persistBookkeeping(store *diskstate.FileStore, gen *generator.Generator, log *logrus.Entry) {
	count := gen.ReseedCount()
	value := make([]byte, 8)
	for i := 0; i < 8; i++ {
		value[i] = byte(count >> (56 - 8*i))
	}
	err := store.Write([]diskstate.Record{
		{Namespace: reseedEventsNamespace, Key: reseedEventsKey, Value: value},
	})
	if err != nil {
		log.WithError(err).Warn("disk state persist failed")
	}
}

func startServer(cfg *config.AppConfig, gen *generator.Generator, log *logrus.Entry) {
	issuer := auth.NewIssuer(cfg.JWTSecret)
	cred := handlers.AdminCredential{
		Username:     cfg.AdminUsername,
		PasswordHash: cfg.AdminPasswordHash,
	}

	router := gin.Default()
	router.Use(cors.Default())

	api := router.Group("/api/v1")
	api.GET("/status", handlers.Status(gen))
	api.GET("/random", handlers.Random(gen))
	api.POST("/admin/login", handlers.Login(cred, issuer))

	admin := api.Group("/admin")
	admin.Use(handlers.RequireAuth(issuer))
	admin.POST("/reseed", handlers.Reseed(gen))
	admin.POST("/sources", handlers.AddSource(gen))

	srv := &http.Server{
		Addr:    cfg.ListenAddr,
		Handler: router,
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.WithError(err).Fatal("http server exited unexpectedly")
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.WithError(err).Warn("http server shutdown did not complete cleanly")
	}
}
