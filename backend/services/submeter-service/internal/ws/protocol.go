package ws

import (
	"context"
	"encoding/json"
	"fmt"

	"submeter/backend/services/submeter-service/internal/models"
	"submeter/backend/services/submeter-service/internal/service"
)

// Client message types.
const (
	MessageEdit   = "edit"
	MessageSubmit = "submit"
	MessageReset  = "reset"
	MessageState  = "state"
)

// Server message types.
const (
	ReplyState = "state"
	ReplyError = "error"
)

// ClientMessage is one form event sent by the browser.
type ClientMessage struct {
	Type  string               `json:"type"`
	Field models.Field         `json:"field,omitempty"`
	Value string               `json:"value,omitempty"`
	Input *models.ReadingInput `json:"input,omitempty"`
}

// ServerMessage carries the form state after each event.
type ServerMessage struct {
	Type   string            `json:"type"`
	State  *models.FormState `json:"state,omitempty"`
	Result *models.Result    `json:"result,omitempty"`
	Error  string            `json:"error,omitempty"`
}

// FormProcessor applies client events to a single calculator session.
type FormProcessor struct {
	session *service.BillCalculator
}

var _ MessageProcessor = (*FormProcessor)(nil)

// NewFormProcessor wraps session.
func NewFormProcessor(session *service.BillCalculator) *FormProcessor {
	return &FormProcessor{session: session}
}

// Process handles one raw client message and returns the encoded reply. Malformed
// messages get an error reply rather than closing the connection.
func (p *FormProcessor) Process(ctx context.Context, raw []byte) ([]byte, error) {
	var msg ClientMessage
	if err := json.Unmarshal(raw, &msg); err != nil {
		return encode(ServerMessage{Type: ReplyError, Error: "invalid message"})
	}

	reply := ServerMessage{Type: ReplyState}
	switch msg.Type {
	case MessageEdit:
		if !p.session.Edit(msg.Field, msg.Value) {
			return encode(ServerMessage{Type: ReplyError, Error: fmt.Sprintf("unknown field %q", msg.Field)})
		}
	case MessageSubmit:
		var res models.Result
		if msg.Input != nil {
			res = p.session.Submit(ctx, *msg.Input)
		} else {
			res = p.session.SubmitCurrent(ctx)
		}
		reply.Result = &res
	case MessageReset:
		p.session.Reset()
	case MessageState:
	default:
		return encode(ServerMessage{Type: ReplyError, Error: fmt.Sprintf("unknown message type %q", msg.Type)})
	}

	state := p.session.State()
	reply.State = &state
	return encode(reply)
}

// Snapshot returns the encoded current state, sent when a client connects.
func (p *FormProcessor) Snapshot() ([]byte, error) {
	state := p.session.State()
	return encode(ServerMessage{Type: ReplyState, State: &state})
}

func encode(msg ServerMessage) ([]byte, error) {
	data, err := json.Marshal(msg)
	if err != nil {
		return nil, fmt.Errorf("ws: encode reply: %w", err)
	}
	return data, nil
}
