package main

import (
	"log"

	"github.com/firemason/firemason/core/gateway"
	"github.com/firemason/firemason/core/infra/buildinfo"
	"github.com/firemason/firemason/core/infra/config"
	"github.com/firemason/firemason/core/infra/logging"
)

func main() {
	log.Println("firemason translator starting...")
	buildinfo.Log("firemason-translator")
	cfg := config.Load()
	tcfg, err := config.LoadTranslator(cfg.TranslatorConfigPath)
	if err != nil {
		logging.Error("firemason-translator", "translator config not loaded, using defaults", "path", cfg.TranslatorConfigPath, "error", err)
	}
	if err := gateway.Run(cfg, tcfg); err != nil {
		log.Fatalf("translator gateway error: %v", err)
	}
}
