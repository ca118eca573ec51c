package liteapi

import (
	"fmt"

	"github.com/tonwire/tonwire/internal/tl"
)

// ADNL message constructor ids.
const (
	idMessageQuery  uint32 = 0xb48bf97a
	idMessageAnswer uint32 = 0x0fac8416
	idMessagePing   uint32 = 0x4d082b9a
	idMessagePong   uint32 = 0xdc69fb03
)

// Message is the ADNL-level envelope exchanged over an established
// connection: a correlated query or answer, or a ping/pong keep-alive.
type Message interface {
	tl.Marshaler
	isMessage()
}

// Query carries a serialized lite query under a 256-bit correlation tag. The
// tag is assigned by the client; the server echoes it unmodified in the
// answer.
//
// adnl.message.query query_id:int256 query:bytes
type Query struct {
	QueryId Int256
	Query   LiteQuery
}

func (Query) isMessage() {}

func (q Query) MarshalTL(w *tl.Writer) {
	w.WriteConstructor(idMessageQuery)
	q.QueryId.MarshalTL(w)
	w.WriteNested(q.Query)
}

// Answer carries a serialized response under the query's correlation tag.
//
// adnl.message.answer query_id:int256 answer:bytes
type Answer struct {
	QueryId Int256
	Answer  Response
}

func (Answer) isMessage() {}

func (a Answer) MarshalTL(w *tl.Writer) {
	w.WriteConstructor(idMessageAnswer)
	a.QueryId.MarshalTL(w)
	w.WriteNested(a.Answer)
}

// Ping is a liveness probe answered by the envelope layer itself.
//
// tcp.ping random_id:long
type Ping struct {
	RandomId uint64
}

func (Ping) isMessage() {}

func (p Ping) MarshalTL(w *tl.Writer) {
	w.WriteConstructor(idMessagePing)
	w.WriteUint64(p.RandomId)
}

// Pong answers a Ping, echoing its random id.
//
// tcp.pong random_id:long
type Pong struct {
	RandomId uint64
}

func (Pong) isMessage() {}

func (p Pong) MarshalTL(w *tl.Writer) {
	w.WriteConstructor(idMessagePong)
	w.WriteUint64(p.RandomId)
}

// EncodeMessage serializes a message to its wire form.
func EncodeMessage(m Message) []byte {
	return tl.Serialize(m)
}

// DecodeMessage decodes one complete message from data.
func DecodeMessage(data []byte) (Message, error) {
	r := tl.NewReader(data)
	id, err := r.ReadConstructor()
	if err != nil {
		return nil, err
	}
	var msg Message
	switch id {
	case idMessageQuery:
		var q Query
		if err := q.QueryId.UnmarshalTL(r); err != nil {
			return nil, err
		}
		if err := r.ReadNested(&q.Query); err != nil {
			return nil, err
		}
		msg = q
	case idMessageAnswer:
		var a Answer
		if err := a.QueryId.UnmarshalTL(r); err != nil {
			return nil, err
		}
		body, err := r.ReadBytes()
		if err != nil {
			return nil, err
		}
		if a.Answer, err = DecodeResponse(body); err != nil {
			return nil, err
		}
		msg = a
	case idMessagePing:
		var p Ping
		if p.RandomId, err = r.ReadUint64(); err != nil {
			return nil, err
		}
		msg = p
	case idMessagePong:
		var p Pong
		if p.RandomId, err = r.ReadUint64(); err != nil {
			return nil, err
		}
		msg = p
	default:
		return nil, fmt.Errorf("%w: 0x%08x is not a message", tl.ErrUnknownConstructor, id)
	}
	if err := r.Finish(); err != nil {
		return nil, err
	}
	return msg, nil
}
