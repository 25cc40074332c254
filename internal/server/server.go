/*
Package server implements the application's network transport layer.
It initializes the HTTP server, configures timeouts, and wires the
handlers to their dependencies.
*/
package server

import (
	"fmt"
	"net/http"
	"time"

	"Lumi_V0.1/internal/config"
	"Lumi_V0.1/internal/database"
	"Lumi_V0.1/internal/user"
	"Lumi_V0.1/internal/utility"
)

// Server defines the configuration and dependencies for the HTTP service.
type Server struct {
	// port specifies the TCP port the server will listen on.
	port int

	cfg config.Config

	// db is the durable storage behind every user's state.
	db database.KV

	user *user.Handler
}

// Deps are the collaborators built by main.
type Deps struct {
	Storage  database.KV
	Analyzer user.Analyzer
	States   user.StateRegistry
	Hub      *utility.Hub
}

// New builds the Server without starting it.
func New(cfg config.Config, deps Deps) *Server {
	return &Server{
		port: cfg.Port,
		cfg:  cfg,
		db:   deps.Storage,
		user: user.NewHandler(deps.Analyzer, deps.States, deps.Hub, cfg.MaxUploadBytes),
	}
}

// NewServer returns a configured *http.Server with production network timeouts.
func NewServer(cfg config.Config, deps Deps) *http.Server {
	s := New(cfg, deps)

	return &http.Server{
		Addr:         fmt.Sprintf(":%d", s.port),
		Handler:      s.RegisterRoutes(),
		IdleTimeout:  time.Minute,
		ReadTimeout:  30 * time.Second,
		// Analysis waits on two sequential model calls.
		WriteTimeout: 2*cfg.AIRequestTimeout*time.Duration(cfg.AIMaxAttempts) + 10*time.Second,
	}
}
