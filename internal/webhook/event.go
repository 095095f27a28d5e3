package webhook

import (
	"encoding/json"
	"strings"
)

// Kind classifies an inbound webhook payload. Classification is structural:
// the two card-action shapes are distinguished by envelope layout, not by a
// version tag.
type Kind int

const (
	// KindUnknown is a well-formed event of a type the bot does not handle.
	// It is acknowledged and never retried.
	KindUnknown Kind = iota
	// KindChallenge is a url_verification handshake.
	KindChallenge
	// KindLegacyCardAction is a button action delivered without the
	// header/event envelope.
	KindLegacyCardAction
	// KindCardAction is a card.action.trigger schema event.
	KindCardAction
	// KindMessage is an im.message.receive_v1 schema event.
	KindMessage
	// KindMalformed is a schema payload missing its header or event. It is
	// acknowledged as non-fatal before any token verification.
	KindMalformed
	// KindIgnored is a message deliberately skipped to avoid feedback
	// loops: a bot echo or an interactive message the bot itself posted.
	KindIgnored
)

func (k Kind) String() string {
	switch k {
	case KindChallenge:
		return "challenge"
	case KindLegacyCardAction:
		return "legacy_card_action"
	case KindCardAction:
		return "card_action"
	case KindMessage:
		return "message"
	case KindMalformed:
		return "malformed"
	case KindIgnored:
		return "ignored"
	default:
		return "unknown"
	}
}

const (
	eventTypeMessage    = "im.message.receive_v1"
	eventTypeCardAction = "card.action.trigger"
)

// InboundEvent is the parsed, classified webhook payload. Immutable once
// returned by Classify.
type InboundEvent struct {
	Kind      Kind
	Challenge string

	// Token is the top-level verification token, empty for shapes that do
	// not carry one.
	Token string

	// DedupKey identifies the logical event for idempotent dispatch. Empty
	// when no stable identity exists; such events are always processed.
	DedupKey string

	// Reason explains KindIgnored and KindUnknown classifications, for logs.
	Reason string

	CardAction *CardActionEvent
	Message    *MessageEvent
}

// CardActionEvent is a button click, from either envelope shape.
type CardActionEvent struct {
	// Value is the raw action value. It may be a JSON object, a JSON string
	// containing an object, or that string encoded once more.
	Value json.RawMessage

	// OpenMessageID locates the card message to replace. Populated from the
	// legacy top-level field or the schema event context, whichever exists.
	OpenMessageID string

	// OperatorID is the acting user's open id, when the shape carries one.
	OperatorID string
}

// MessageEvent is an inbound user message.
type MessageEvent struct {
	SenderOpenID string
	Content      string
}

// Text extracts the plain text body from the message content payload.
func (m *MessageEvent) Text() string {
	var body struct {
		Text string `json:"text"`
	}
	if err := json.Unmarshal([]byte(m.Content), &body); err != nil {
		return ""
	}
	return strings.TrimSpace(body.Text)
}

type rawAction struct {
	Tag   string          `json:"tag"`
	Value json.RawMessage `json:"value"`
}

type rawHeader struct {
	EventType string `json:"event_type"`
	EventID   string `json:"event_id"`
}

type rawEnvelope struct {
	Type          string          `json:"type"`
	Challenge     string          `json:"challenge"`
	Token         string          `json:"token"`
	Action        *rawAction      `json:"action"`
	OpenMessageID string          `json:"open_message_id"`
	Header        *rawHeader      `json:"header"`
	Event         json.RawMessage `json:"event"`
}

type rawMessageEvent struct {
	Sender struct {
		SenderType string `json:"sender_type"`
		SenderID   struct {
			OpenID string `json:"open_id"`
		} `json:"sender_id"`
	} `json:"sender"`
	Message struct {
		MessageType string `json:"message_type"`
		Content     string `json:"content"`
	} `json:"message"`
}

type rawCardActionEvent struct {
	Operator struct {
		OpenID string `json:"open_id"`
	} `json:"operator"`
	Action        rawAction `json:"action"`
	OpenMessageID string    `json:"open_message_id"`
	Context       struct {
		OpenMessageID string `json:"open_message_id"`
	} `json:"context"`
}

// Classify resolves a decrypted payload into an InboundEvent. First match
// wins, in this order: verification challenge, legacy card action, schema
// envelope sanity, event type dispatch.
func Classify(body []byte) (InboundEvent, error) {
	var env rawEnvelope
	if err := json.Unmarshal(body, &env); err != nil {
		return InboundEvent{}, err
	}

	if env.Type == "url_verification" {
		return InboundEvent{Kind: KindChallenge, Challenge: env.Challenge}, nil
	}

	if env.Action != nil && env.Action.Tag == "button" && env.Header == nil {
		return InboundEvent{
			Kind:     KindLegacyCardAction,
			DedupKey: legacyDedupKey(env.OpenMessageID, env.Action.Value),
			CardAction: &CardActionEvent{
				Value:         env.Action.Value,
				OpenMessageID: env.OpenMessageID,
			},
		}, nil
	}

	if env.Header == nil || len(env.Event) == 0 {
		return InboundEvent{Kind: KindMalformed, Token: env.Token, Reason: "missing header or event"}, nil
	}

	switch env.Header.EventType {
	case eventTypeMessage:
		var msg rawMessageEvent
		if err := json.Unmarshal(env.Event, &msg); err != nil {
			return InboundEvent{}, err
		}
		if msg.Sender.SenderType == "app" {
			return InboundEvent{Kind: KindIgnored, Token: env.Token, Reason: "own message"}, nil
		}
		if msg.Message.MessageType == "interactive" {
			return InboundEvent{Kind: KindIgnored, Token: env.Token, Reason: "interactive message"}, nil
		}
		return InboundEvent{
			Kind:     KindMessage,
			Token:    env.Token,
			DedupKey: env.Header.EventID,
			Message: &MessageEvent{
				SenderOpenID: msg.Sender.SenderID.OpenID,
				Content:      msg.Message.Content,
			},
		}, nil

	case eventTypeCardAction:
		var action rawCardActionEvent
		if err := json.Unmarshal(env.Event, &action); err != nil {
			return InboundEvent{}, err
		}
		// The message id has shown up in two places across platform
		// versions; take whichever is present.
		openMessageID := action.Context.OpenMessageID
		if openMessageID == "" {
			openMessageID = action.OpenMessageID
		}
		return InboundEvent{
			Kind:     KindCardAction,
			Token:    env.Token,
			DedupKey: env.Header.EventID,
			CardAction: &CardActionEvent{
				Value:         action.Action.Value,
				OpenMessageID: openMessageID,
				OperatorID:    action.Operator.OpenID,
			},
		}, nil
	}

	return InboundEvent{Kind: KindUnknown, Token: env.Token, Reason: env.Header.EventType}, nil
}

// legacyDedupKey derives a stable identity for legacy card actions, which
// carry no event id.
func legacyDedupKey(openMessageID string, value json.RawMessage) string {
	if openMessageID == "" && len(value) == 0 {
		return ""
	}
	return openMessageID + "|" + string(value)
}

// HasEncrypt reports whether the raw body carries an encrypted envelope and
// returns the ciphertext.
func HasEncrypt(body []byte) (string, bool) {
	var probe struct {
		Encrypt string `json:"encrypt"`
	}
	if err := json.Unmarshal(body, &probe); err != nil {
		return "", false
	}
	return probe.Encrypt, probe.Encrypt != ""
}
