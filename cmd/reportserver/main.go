package main

import (
	"time"

	"reportforms/httpapi"
	"reportforms/internal/applog"
	"reportforms/internal/monitoring"
)

func main() {
	logConfig := &applog.Config{
		Level:      applog.LevelInfo,
		Format:     "json",
		Output:     "stdout",
		AddSource:  true,
		TimeFormat: "2006-01-02T15:04:05.000Z",
	}

	if err := applog.InitGlobalLogger(logConfig); err != nil {
		panic(err)
	}

	logger := applog.GetGlobalLogger()
	logger.Info("Starting report evaluation service")

	memMonitor := monitoring.NewMemoryMonitor(logger, &monitoring.MemoryConfig{
		CollectionInterval: 30 * time.Second,
	})
	memMonitor.Start()
	defer memMonitor.Stop()

	cfg := httpapi.DefaultConfig()
	cfg.UploadDir = "uploads"
	cfg.CORSOrigins = []string{"http://localhost:5173"}

	server, err := httpapi.NewServer(cfg, logger)
	if err != nil {
		logger.Fatal("Failed to build server", err)
	}

	logger.Info("Starting server on :8080")
	if err := server.Engine().Run(":8080"); err != nil {
		logger.Fatal("Failed to start server", err)
	}
}
