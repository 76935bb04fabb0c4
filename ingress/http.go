package ingress

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"

	"github.com/dsirotkin256/matchcore/engine"
)

// Server wires a Dispatcher to the HTTP surface: path-parametrized order
// submission, cancellation, and depth/quote reads. The route shape
// (/{side}/{market}/{price}/{quantity}) follows the original transport's
// documented segments rather than a JSON body, so a simple curl/loadgen
// client never needs to build a payload.
type Server struct {
	dispatcher    *engine.Dispatcher
	ids           *IDGenerator
	scale         int32
	snapshotDepth int
	authToken     string
	corsOrigin    string
	logger        *logrus.Logger
	streams       *StreamHub
}

func NewServer(d *engine.Dispatcher, scale int32, snapshotDepth int, authToken, corsOrigin string, logger *logrus.Logger) *Server {
	return &Server{
		dispatcher:    d,
		ids:           NewIDGenerator("ord"),
		scale:         scale,
		snapshotDepth: snapshotDepth,
		authToken:     authToken,
		corsOrigin:    corsOrigin,
		logger:        logger,
		streams:       NewStreamHub(d, logger),
	}
}

func (s *Server) Routes() http.Handler {
	r := mux.NewRouter()
	r.Use(s.withCORS)
	r.Use(s.withAuth)

	r.HandleFunc("/{side}/{market}/{price}/{quantity}", s.handleSubmit).Methods(http.MethodPost)
	r.HandleFunc("/cancel/{market}/{side}/{price}/{id}", s.handleCancel).Methods(http.MethodPost)
	r.HandleFunc("/orderbook/{market}/{depth}", s.handleSnapshot).Methods(http.MethodGet)
	r.HandleFunc("/quote/{market}", s.handleQuote).Methods(http.MethodGet)
	r.HandleFunc("/ws/trades/{market}", s.streams.HandleTrades)
	r.HandleFunc("/ws/book/{market}", s.streams.HandleBook)
	return r
}

func (s *Server) withCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", s.corsOrigin)
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) withAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.authToken == "" {
			next.ServeHTTP(w, r)
			return
		}
		token := strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")
		if token == "" {
			token = r.URL.Query().Get("token")
		}
		if token != s.authToken {
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte("missing or invalid token"))
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) resolveMarket(w http.ResponseWriter, raw string) (string, bool) {
	market, ok := s.dispatcher.RegisteredMarketName(raw)
	if !ok {
		s.badRequest(w, engine.NotFoundf("unknown market %q", raw))
		return "", false
	}
	return market, true
}

func parseSide(raw string) (engine.Side, error) {
	switch strings.ToLower(raw) {
	case "buy", "bid", "b":
		return engine.Buy, nil
	case "sell", "ask", "s":
		return engine.Sell, nil
	default:
		return 0, engine.InputInvalidf("unknown side %q", raw)
	}
}

func (s *Server) handleSubmit(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)

	side, err := parseSide(vars["side"])
	if err != nil {
		s.badRequest(w, err)
		return
	}
	market, ok := s.resolveMarket(w, vars["market"])
	if !ok {
		return
	}
	price, err := ParseTicks(vars["price"], s.scale)
	if err != nil {
		s.badRequest(w, err)
		return
	}
	quantity, err := ParseTicks(vars["quantity"], s.scale)
	if err != nil {
		s.badRequest(w, err)
		return
	}

	order, err := engine.NewOrder(s.ids.Next(), market, side, price, quantity, time.Now())
	if err != nil {
		s.badRequest(w, err)
		return
	}

	if _, err := s.dispatcher.Send(order); err != nil {
		s.badRequest(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"id": order.ID, "status": "accepted"})
}

func (s *Server) handleCancel(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)

	market, ok := s.resolveMarket(w, vars["market"])
	if !ok {
		return
	}
	side, err := parseSide(vars["side"])
	if err != nil {
		s.badRequest(w, err)
		return
	}
	price, err := ParseTicks(vars["price"], s.scale)
	if err != nil {
		s.badRequest(w, err)
		return
	}

	cancelled, err := s.dispatcher.Cancel(market, vars["id"], side, price)
	if err != nil {
		s.badRequest(w, err)
		return
	}
	if !cancelled {
		w.WriteHeader(http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "cancelled"})
}

type levelResponse struct {
	Side     string `json:"side"`
	Price    string `json:"price"`
	Quantity string `json:"quantity"`
	Orders   int    `json:"orders"`
}

func (s *Server) handleSnapshot(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	market, ok := s.resolveMarket(w, vars["market"])
	if !ok {
		return
	}
	depth, err := strconv.Atoi(vars["depth"])
	if err != nil || depth <= 0 {
		depth = s.snapshotDepth
	}

	levels, err := s.dispatcher.Snapshot(market, depth)
	if err != nil {
		s.badRequest(w, err)
		return
	}

	out := make([]levelResponse, 0, len(levels))
	for _, lvl := range levels {
		out = append(out, levelResponse{
			Side:     lvl.Side.String(),
			Price:    FormatTicks(lvl.Price, s.scale),
			Quantity: FormatTicks(lvl.CumulativeLeftover, s.scale),
			Orders:   lvl.OrderCount,
		})
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleQuote(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	market, ok := s.resolveMarket(w, vars["market"])
	if !ok {
		return
	}

	bestBuy, err := s.dispatcher.BestBuy(market)
	if err != nil {
		s.badRequest(w, err)
		return
	}
	bestSell, err := s.dispatcher.BestSell(market)
	if err != nil {
		s.badRequest(w, err)
		return
	}
	quote, _ := s.dispatcher.Quote(market)
	spread, _ := s.dispatcher.Spread(market)

	writeJSON(w, http.StatusOK, map[string]string{
		"bestBid": FormatTicks(bestBuy, s.scale),
		"bestAsk": FormatTicks(bestSell, s.scale),
		"quote":   strconv.FormatFloat(quote, 'f', 6, 64),
		"spread":  strconv.FormatFloat(spread, 'f', 6, 64),
	})
}

func (s *Server) badRequest(w http.ResponseWriter, err error) {
	writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
}

func writeJSON(w http.ResponseWriter, code int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(payload)
}
