package main

import (
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/prestamos/vales-gateway/internal/auth"
	"github.com/prestamos/vales-gateway/internal/config"
	"github.com/prestamos/vales-gateway/internal/handlers"
	"github.com/prestamos/vales-gateway/internal/repository"
	"github.com/prestamos/vales-gateway/internal/services"
	xhttp "github.com/prestamos/vales-gateway/pkg/http"
	"github.com/prestamos/vales-gateway/pkg/logger"
	"github.com/prestamos/vales-gateway/pkg/pg"
	"github.com/prestamos/vales-gateway/pkg/prom"
)

func main() {
	err := config.Load(argContainsEnvPath())
	if err != nil {
		logger.Error("failed to load config", "error", err)
		return
	}

	if err := logger.SetLevel(config.Get().LogLevel); err != nil {
		logger.Warn("invalid LOG_LEVEL, keeping default", "value", config.Get().LogLevel)
	}

	s := xhttp.NewServer(xhttp.DefaultServerOption)
	s.Use(xhttp.CompressMiddleware(6))
	s.Use(xhttp.TimeoutMiddleware(time.Second * 5))
	s.Use(xhttp.RequestLoggerMiddleware)
	s.Use(xhttp.RequestIDMiddleware)
	s.Use(xhttp.CORSMiddleware)
	s.Use(xhttp.RecoverMiddleware)
	s.Router = xhttp.CreateDefaultRouter()

	readConf := pg.Config{
		User:     config.Get().PostgresReadUser,
		Host:     config.Get().PostgresReadHost,
		Port:     config.Get().PostgresReadPort,
		Password: config.Get().PostgresReadPassword,
		Database: config.Get().PostgresReadDatabase,
	}
	writeConf := pg.Config{
		User:     config.Get().PostgresWriteUser,
		Host:     config.Get().PostgresWriteHost,
		Port:     config.Get().PostgresWritePort,
		Password: config.Get().PostgresWritePassword,
		Database: config.Get().PostgresWriteDatabase,
	}

	pgDebug := config.Get().AppEnv == "dev"
	db, err := pg.CreateReadWrite(readConf, writeConf, pgDebug)
	if err != nil {
		logger.Error("failed connecting to pg", "error", err)
		return
	}

	if err := pg.Migrate(writeConf, config.Get().MigrationsDir); err != nil {
		logger.Error("failed running migrations", "error", err)
		return
	}

	host, _ := os.Hostname()
	if err := prom.Create(host, config.Get().AppEnv, config.Get().PromNamespace); err != nil {
		logger.Error("failed registering prometheus collectors", "error", err)
		return
	}

	tokens := auth.NewJWTManager(
		config.Get().JWTSecret,
		time.Duration(config.Get().JWTExpiryHours)*time.Hour,
	)

	branchRepo := repository.NewBranchRepository(db)
	voucherRepo := repository.NewVoucherRepository(db)

	// services
	authService := services.NewAuthService(branchRepo, tokens)
	branchService := services.NewBranchService(branchRepo)
	voucherService := services.NewVoucherService(voucherRepo)
	healthService := services.NewHealthService(db)

	// handlers
	authHandler := handlers.NewAuthHandler(authService)
	branchHandler := handlers.NewBranchHandler(branchService)
	voucherHandler := handlers.NewVoucherHandler(voucherService)
	healthHandler := handlers.NewHealthHandler(healthService)

	g := s.Router.Group("/api")
	handlers.RegisterAuthRoutes(g, authHandler, tokens)
	handlers.RegisterBranchRoutes(g, branchHandler, tokens)
	handlers.RegisterVoucherRoutes(g, voucherHandler, tokens)
	handlers.RegisterHealthRoutes(g, healthHandler)
	s.Router.GET("/metrics", prom.Handler())

	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)

	go func() {
		var err = s.ListenAndServe(config.Get().HttpListenAddr)
		if err != nil {
			logger.Error("error in running http-server", "error", err)
		}
	}()

	<-c
	s.Shutdown()
}

func argContainsEnvPath() string {
	for _, v := range os.Args {
		if strings.Contains(v, "--env=") {
			s := strings.Split(v, "=")
			if _, err := os.Open(s[1]); err != nil {
				logger.Error("failed to open the passed env file, got error" + err.Error())
				return ""
			}
			return s[1]
		}
	}
	return ""
}
