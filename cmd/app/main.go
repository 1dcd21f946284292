package main

import (
	"flag"
	"log"
	"os"

	"SmartCVD/internal/di"
	"SmartCVD/internal/services/catalog"
	"SmartCVD/pkg/config"
)

func main() {
	configPath := flag.String("config", "config/config.yaml", "config file path (empty for defaults)")
	check := flag.Bool("check", false, "validate config and catalog, then exit")
	flag.Parse()

	cfg, err := config.LoadWithEnv(*configPath)
	if err != nil {
		log.Fatalf("config load failed: %v", err)
	}

	if *check {
		if err := checkCatalog(cfg.Calculator.CatalogPath); err != nil {
			log.Fatalf("catalog invalid: %v", err)
		}
		log.Printf("config ok: env=%s cache=%s mode=%s", cfg.Environment, cfg.Cache.Backend, cfg.Calculator.ProjectionMode)
		return
	}

	log.Printf("env=%s cache=%s mode=%s kafka=%t", cfg.Environment, cfg.Cache.Backend, cfg.Calculator.ProjectionMode, cfg.Kafka.Enabled)

	// Wire DI: Initialize all dependencies
	app, cleanup, err := di.InitializeApp(cfg)
	if err != nil {
		log.Fatalf("app initialization failed: %v", err)
	}

	// blocks until SIGINT/SIGTERM
	err = app.Run()
	cleanup()
	if err != nil {
		log.Printf("app error: %v", err)
		os.Exit(1)
	}
}

func checkCatalog(path string) error {
	if path == "" {
		return nil
	}
	c, err := catalog.Load(path)
	if err != nil {
		return err
	}
	log.Printf("catalog %s: %d interventions, %d therapies", path, len(c.Interventions()), len(c.Therapies()))
	return nil
}
