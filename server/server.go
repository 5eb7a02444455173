package server

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/techagentng/relayhub/config"
	"github.com/techagentng/relayhub/db"
	"github.com/techagentng/relayhub/mailingservices"
	"github.com/techagentng/relayhub/services"
)

type Server struct {
	Config              *config.Config
	Mail                *mailingservices.Mailgun
	UserRepository      db.UserRepository
	ConversationService services.ConversationService
	MessageService      services.MessageService
	PresenceRegistry    *services.PresenceRegistry
	Dispatcher          *services.Dispatcher
}

// Start runs the HTTP server until SIGINT/SIGTERM, then shuts down
// gracefully. Live connections are dropped on shutdown; presence is
// not persisted, so everyone is offline after a restart.
func (s *Server) Start() {
	s.Dispatcher.Start()
	defer s.Dispatcher.Stop()

	r := s.setupRouter()
	port := s.Config.Port
	if port == 0 {
		port = 8080
	}

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", port),
		Handler: r,
	}

	go func() {
		log.Printf("listening on :%d", port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("server forced to shutdown: %v", err)
	}
	log.Println("server exited")
}
