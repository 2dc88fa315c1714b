package main

import (
	"net/http"
	"os"
	"time"

	"vet-clinic-api/internal/platform/logger"
	"vet-clinic-api/internal/router"
)

// @title Vet Clinic API
// @version 1.0
// @description Backend de gestión para una clínica veterinaria: cuentas, mascotas, turnos e inventario de medicaciones.
// @BasePath /api/v1

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Token JWT con prefijo "Bearer "

func main() {
	log := logger.NewFromEnv()

	addr := ":8080"
	if v := os.Getenv("PORT"); v != "" {
		addr = ":" + v
	}

	r := router.NewRouter(router.Options{Logger: log})

	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	log.Info("starting server", map[string]any{"addr": addr})
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Error("server error", map[string]any{"error": err.Error()})
		os.Exit(1)
	}
}
