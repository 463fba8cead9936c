package main

import (
	"log"

	"github.com/vbonduro/solienne/internal/config"
	"github.com/vbonduro/solienne/internal/eden"
	"github.com/vbonduro/solienne/internal/logging"
	"github.com/vbonduro/solienne/internal/portal"
	"github.com/vbonduro/solienne/internal/web"
	"github.com/vbonduro/solienne/internal/web/templates"
)

func main() {
	cfg := config.Load()

	logger, cleanup, err := logging.New(cfg.LogLevel, cfg.LogFile)
	if err != nil {
		log.Fatalf("failed to initialize logger: %v", err)
	}
	defer cleanup()

	allow, err := portal.LoadAllowList(cfg.AdminsFile)
	if err != nil {
		logger.Error("failed to load admin allow-list", "path", cfg.AdminsFile, "error", err)
		return
	}
	logger.Info("loaded admin allow-list", "path", cfg.AdminsFile, "admins", allow.Len())

	if cfg.AgentID == "" {
		logger.Warn("SOLIENNE_AGENT_ID is not set; /api/creations will fail")
	}

	newClient := func() (web.CreationsClient, error) {
		client, err := eden.NewFromEnv(cfg.EdenBaseURL)
		if err != nil {
			return nil, err
		}
		return client, nil
	}
	sessions := portal.NewSessions(allow, portal.NewProxyFetcher(cfg.SelfURL, nil), logger)
	server := web.NewServer(cfg.AgentID, newClient, sessions, templates.FS, logger)

	if err := server.ListenAndServe(cfg.ListenAddr); err != nil {
		logger.Error("server error", "error", err)
	}
}
