package pricefeed

import (
	"encoding/json"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
)

// tickerFrame is an exchange mini-ticker message: symbol plus latest price.
type tickerFrame struct {
	Symbol string  `json:"s"`
	Close  float64 `json:"c,string"`
}

// Stream maintains a websocket ticker subscription and pushes prices into
// the REST client's cache, cutting polling latency between ticks. The
// symbol map translates exchange symbols (BTCUSDT) to instrument ids
// (bitcoin); unmapped symbols are dropped.
type Stream struct {
	mu sync.RWMutex

	url        string
	symbolMap  map[string]string
	client     *Client
	logger     zerolog.Logger
	onPrice    func(instrument string, price float64)
	wsConn     *websocket.Conn
	isRunning  bool
	stopChan   chan struct{}
	reconnects int
}

// NewStream creates a stream feeding the given client.
func NewStream(url string, symbolMap map[string]string, client *Client, logger zerolog.Logger) *Stream {
	normalized := make(map[string]string, len(symbolMap))
	for symbol, instrument := range symbolMap {
		normalized[strings.ToUpper(symbol)] = instrument
	}
	return &Stream{
		url:       url,
		symbolMap: normalized,
		client:    client,
		logger:    logger.With().Str("component", "pricefeed-stream").Logger(),
		stopChan:  make(chan struct{}),
	}
}

// SetPriceCallback sets an additional callback invoked on every streamed
// price, after the cache update.
func (s *Stream) SetPriceCallback(cb func(instrument string, price float64)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onPrice = cb
}

// Start begins the stream connection. Safe to call once.
func (s *Stream) Start() {
	s.mu.Lock()
	if s.isRunning {
		s.mu.Unlock()
		return
	}
	s.isRunning = true
	s.mu.Unlock()

	go s.connect()
	s.logger.Info().Str("url", s.url).Msg("price stream started")
}

// Stop closes the connection and halts reconnects.
func (s *Stream) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.isRunning {
		return
	}
	s.isRunning = false
	close(s.stopChan)

	if s.wsConn != nil {
		s.wsConn.Close()
	}
	s.logger.Info().Msg("price stream stopped")
}

// IsRunning reports whether the stream is active.
func (s *Stream) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.isRunning
}

// connect dials and re-dials the websocket until stopped.
func (s *Stream) connect() {
	for {
		s.mu.RLock()
		running := s.isRunning
		s.mu.RUnlock()
		if !running {
			return
		}

		conn, _, err := websocket.DefaultDialer.Dial(s.url, nil)
		if err != nil {
			s.logger.Warn().Err(err).Msg("stream connection failed, retrying in 5s")
			s.mu.Lock()
			s.reconnects++
			s.mu.Unlock()
			time.Sleep(5 * time.Second)
			continue
		}

		s.mu.Lock()
		s.wsConn = conn
		s.reconnects = 0
		s.mu.Unlock()

		s.logger.Info().Msg("stream connected")
		s.readLoop(conn)

		s.mu.RLock()
		running = s.isRunning
		s.mu.RUnlock()
		if !running {
			return
		}

		s.logger.Warn().Msg("stream connection lost, reconnecting in 3s")
		time.Sleep(3 * time.Second)
	}
}

func (s *Stream) readLoop(conn *websocket.Conn) {
	for {
		_, message, err := conn.ReadMessage()
		if err != nil {
			if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				s.logger.Debug().Err(err).Msg("stream read error")
			}
			return
		}
		s.handleMessage(message)
	}
}

// handleMessage accepts either a single ticker frame or an array of frames.
func (s *Stream) handleMessage(message []byte) {
	var frames []tickerFrame
	if err := json.Unmarshal(message, &frames); err != nil {
		var single tickerFrame
		if err := json.Unmarshal(message, &single); err != nil {
			s.logger.Debug().Msg("unrecognized stream message")
			return
		}
		frames = []tickerFrame{single}
	}

	for _, frame := range frames {
		instrument, ok := s.symbolMap[strings.ToUpper(frame.Symbol)]
		if !ok || frame.Close <= 0 {
			continue
		}
		s.client.UpdatePrice(instrument, frame.Close)

		s.mu.RLock()
		cb := s.onPrice
		s.mu.RUnlock()
		if cb != nil {
			cb(instrument, frame.Close)
		}
	}
}

// Stats returns stream counters for status reporting.
func (s *Stream) Stats() map[string]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return map[string]interface{}{
		"running":    s.isRunning,
		"reconnects": s.reconnects,
	}
}
