package main

import (
	"net/http"
	"time"

	"github.com/matryer/way"
	log "github.com/sirupsen/logrus"
)

func (s *Server) routes() {
	s.router = s.GameServer.Routes()
	s.router.NotFound = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		log.WithField("path", r.URL.Path).Debug("route not found")
		http.NotFound(w, r)
	})
}

func (s *Server) handler() http.Handler {
	return logRequests(s.router)
}

// logRequests logs every request once it is answered; websocket requests are
// logged when the player leaves the game.
func logRequests(router *way.Router) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		router.ServeHTTP(w, r)
		log.WithFields(log.Fields{
			"method":   r.Method,
			"path":     r.URL.Path,
			"duration": time.Since(start),
		}).Debug("request served")
	})
}
