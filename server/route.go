package server

import "github.com/matryer/way"

const URI_WS = "/play"
const URI_GAME_WS = "/games/:id/play"
const URI_GAMES = "/games"
const URI_HEALTH = "/health"

func (s *GameServer) Routes() *way.Router {
	router := way.NewRouter()
	router.HandleFunc("GET", URI_WS, s.HandleHttpCall())
	router.HandleFunc("GET", URI_GAME_WS, s.HandleHttpCall())
	router.HandleFunc("GET", URI_GAMES, s.HandleList())
	router.HandleFunc("GET", URI_HEALTH, s.HandleHealth())
	return router
}
