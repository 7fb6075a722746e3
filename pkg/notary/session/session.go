// Package session frames one notary request/response exchange over a
// websocket connection: a client opens a connection, sends one
// envelope, and receives one envelope back. See SPEC_FULL.md §7.
package session

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// RequestEnvelope is what a client sends over the wire: opaque
// transaction bytes (a FilteredTransaction or a full Transaction,
// depending on notary mode) plus the requester's identifying name.
type RequestEnvelope struct {
	Requester string `json:"requester"`
	Payload   []byte `json:"payload"`
}

// ResponseEnvelope is what the server sends back: either a signature
// or an error message, never both.
type ResponseEnvelope struct {
	Signature []byte `json:"signature,omitempty"`
	Error     string `json:"error,omitempty"`
}

// Handler processes one decoded request and returns the signature
// bytes to send back, or an error whose message is sent back instead.
type Handler func(req RequestEnvelope) ([]byte, error)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  4096,
	WriteBufferSize: 4096,
}

// Serve upgrades one HTTP connection to a websocket, assigns it a
// session id, reads exactly one RequestEnvelope, runs handle, and
// writes back exactly one ResponseEnvelope. Each session is logged
// under its own id so a request can be traced end to end across a
// notary's logs.
func Serve(w http.ResponseWriter, r *http.Request, handle Handler, log *zap.Logger) {
	if log == nil {
		log = zap.NewNop()
	}
	id := uuid.New()
	log = log.With(zap.String("session", id.String()))

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Error("websocket upgrade failed", zap.Error(err))
		return
	}
	defer conn.Close()

	var req RequestEnvelope
	if err := conn.ReadJSON(&req); err != nil {
		log.Warn("reading request envelope", zap.Error(err))
		return
	}

	sig, err := handle(req)
	resp := ResponseEnvelope{Signature: sig}
	if err != nil {
		log.Info("request failed", zap.Error(err))
		resp = ResponseEnvelope{Error: err.Error()}
	}

	if err := conn.WriteJSON(resp); err != nil {
		log.Warn("writing response envelope", zap.Error(err))
	}
}

// Dial opens a session to a notary and exchanges one request/response
// pair, the client-side counterpart to Serve.
func Dial(url string, req RequestEnvelope) (ResponseEnvelope, error) {
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		return ResponseEnvelope{}, err
	}
	defer conn.Close()

	if err := conn.WriteJSON(req); err != nil {
		return ResponseEnvelope{}, err
	}
	var resp ResponseEnvelope
	if err := conn.ReadJSON(&resp); err != nil {
		return ResponseEnvelope{}, err
	}
	return resp, nil
}
