package main

import (
	"flag"

	"github.com/alnet/mentorbridge/internal/pkg/logger"
	"github.com/alnet/mentorbridge/internal/server"
)

// @title MentorBridge API
// @version 1.0
// @description Student and alumni networking: profiles, connections, messaging, jobs, startups, donations, events and analytics

// @BasePath /api/v1
// @schemes http https

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description JWT access token as "Bearer <token>"

func main() {
	configPath := flag.String("config", "", "path to config.yaml (defaults to $MENTORBRIDGE_CONFIG or configs/config.yaml)")
	flag.Parse()

	srv, err := server.NewServer(*configPath)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to initialize server")
	}

	if err := srv.Run(); err != nil {
		logger.Fatal().Err(err).Msg("Server execution failed or shutdown encountered errors")
	}

	logger.Info().Msg("Application finished gracefully.")
}
