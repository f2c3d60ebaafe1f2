// Package bridge exposes projector sessions to a host application over a
// WebSocket connection carrying JSON messages.
package bridge

import (
	"github.com/Faultbox/projector-rig/internal/projector"
	"github.com/Faultbox/projector-rig/pkg/projection"
)

// Operations.
const (
	OpCreate  = "create"
	OpChange  = "change"
	OpDelete  = "delete"
	OpDerived = "derived"
	OpList    = "list"
)

// Request is a message from the host.
type Request struct {
	// Seq is echoed in the response so clients can match replies.
	Seq    int64                  `json:"seq,omitempty"`
	Op     string                 `json:"op"`
	ID     string                 `json:"id,omitempty"`
	Params *projection.Parameters `json:"params,omitempty"`
	Change *projector.Change      `json:"change,omitempty"`
	// CustomImage binds the custom texture's size on create.
	CustomImage *projection.Size `json:"custom_image,omitempty"`
}

// Response answers a request, or with Seq 0 announces a change made
// outside the connection (e.g. a reloaded preset).
type Response struct {
	Seq     int64              `json:"seq,omitempty"`
	ID      string             `json:"id,omitempty"`
	Update  *projector.Update  `json:"update,omitempty"`
	Sockets []projector.Socket `json:"sockets,omitempty"`
	Derived *projector.Derived `json:"derived,omitempty"`
	IDs     []string           `json:"ids,omitempty"`
	Error   string             `json:"error,omitempty"`
}

// UpdateResponse wraps an update together with its socket assignments.
func UpdateResponse(u projector.Update) Response {
	return Response{ID: u.ID, Update: &u, Sockets: u.Sockets()}
}

func errorResponse(req Request, err error) Response {
	return Response{Seq: req.Seq, ID: req.ID, Error: err.Error()}
}
