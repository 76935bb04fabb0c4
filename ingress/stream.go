package ingress

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"

	"github.com/dsirotkin256/matchcore/engine"
)

// StreamHub upgrades requests to websockets and relays a single market's
// trade or top-of-book hub straight through, generalizing the single
// global hub the teacher server kept for its one market into a
// per-market lookup against the dispatcher.
type StreamHub struct {
	dispatcher *engine.Dispatcher
	upgrader   websocket.Upgrader
	logger     *logrus.Logger
}

func NewStreamHub(d *engine.Dispatcher, logger *logrus.Logger) *StreamHub {
	return &StreamHub{
		dispatcher: d,
		upgrader:   websocket.Upgrader{CheckOrigin: func(*http.Request) bool { return true }},
		logger:     logger,
	}
}

type outboundMessage struct {
	Type string      `json:"type"`
	Data interface{} `json:"data"`
}

func (s *StreamHub) HandleTrades(w http.ResponseWriter, r *http.Request) {
	market, ok := s.dispatcher.RegisteredMarketName(mux.Vars(r)["market"])
	if !ok {
		http.Error(w, "unknown market", http.StatusBadRequest)
		return
	}
	hub, ok := s.dispatcher.TradesHub(market)
	if !ok {
		http.Error(w, "unknown market", http.StatusBadRequest)
		return
	}

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	defer conn.Close()

	sub := hub.Subscribe(32)
	defer hub.Unsubscribe(sub)

	for trade := range sub.C() {
		msg := outboundMessage{Type: "trade", Data: trade}
		if err := conn.WriteJSON(msg); err != nil {
			return
		}
	}
}

func (s *StreamHub) HandleBook(w http.ResponseWriter, r *http.Request) {
	market, ok := s.dispatcher.RegisteredMarketName(mux.Vars(r)["market"])
	if !ok {
		http.Error(w, "unknown market", http.StatusBadRequest)
		return
	}
	hub, ok := s.dispatcher.ViewsHub(market)
	if !ok {
		http.Error(w, "unknown market", http.StatusBadRequest)
		return
	}

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	defer conn.Close()

	sub := hub.Subscribe(32)
	defer hub.Unsubscribe(sub)

	for view := range sub.C() {
		msg := outboundMessage{Type: "book", Data: view}
		if err := conn.WriteJSON(msg); err != nil {
			return
		}
	}
}
