package main

import (
	"net/http"

	"github.com/matryer/way"
	log "github.com/sirupsen/logrus"
	"github.com/zucenko/accessbattle/server"
)

type Server struct {
	router     *way.Router
	GameServer *server.GameServer
}

func main() {
	cfg, err := server.LoadConfig()
	if err != nil {
		log.Fatalln(err)
	}
	if err := setupLogging(cfg); err != nil {
		log.Fatalln(err)
	}

	gameServer, err := server.NewGameServer(cfg)
	if err != nil {
		log.Fatalln(err)
	}
	Server := Server{GameServer: gameServer}
	go Server.GameServer.Loop()
	Server.routes()

	log.WithField("port", cfg.Port).Info("listening")
	log.Fatalln(http.ListenAndServe(":"+cfg.Port, Server.handler()))
}

func setupLogging(cfg server.Config) error {
	level, err := log.ParseLevel(cfg.LogLevel)
	if err != nil {
		return err
	}
	log.SetLevel(level)
	if cfg.LogFormat == "json" {
		log.SetFormatter(&log.JSONFormatter{})
	} else {
		log.SetFormatter(&log.TextFormatter{FullTimestamp: true})
	}
	return nil
}
