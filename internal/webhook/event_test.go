package webhook

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassifyChallenge(t *testing.T) {
	evt, err := Classify([]byte(`{"type":"url_verification","challenge":"abc","token":"whatever"}`))
	require.NoError(t, err)
	assert.Equal(t, KindChallenge, evt.Kind)
	assert.Equal(t, "abc", evt.Challenge)
}

func TestClassifyLegacyCardAction(t *testing.T) {
	body := `{
		"open_message_id": "om_1",
		"token": "scoped",
		"action": {"tag": "button", "value": "{\"action\":\"Approve\",\"recordIds\":\"r1\",\"count\":1}"}
	}`
	evt, err := Classify([]byte(body))
	require.NoError(t, err)
	assert.Equal(t, KindLegacyCardAction, evt.Kind)
	require.NotNil(t, evt.CardAction)
	assert.Equal(t, "om_1", evt.CardAction.OpenMessageID)
	assert.NotEmpty(t, evt.DedupKey)
}

func TestClassifySchemaCardAction(t *testing.T) {
	body := `{
		"token": "tok",
		"header": {"event_type": "card.action.trigger", "event_id": "evt_42"},
		"event": {
			"operator": {"open_id": "ou_1"},
			"action": {"tag": "button", "value": {"action": "Reject"}},
			"context": {"open_message_id": "om_ctx"}
		}
	}`
	evt, err := Classify([]byte(body))
	require.NoError(t, err)
	assert.Equal(t, KindCardAction, evt.Kind)
	assert.Equal(t, "evt_42", evt.DedupKey)
	assert.Equal(t, "tok", evt.Token)
	require.NotNil(t, evt.CardAction)
	assert.Equal(t, "om_ctx", evt.CardAction.OpenMessageID)
	assert.Equal(t, "ou_1", evt.CardAction.OperatorID)
}

func TestClassifySchemaCardActionFallbackMessageID(t *testing.T) {
	body := `{
		"header": {"event_type": "card.action.trigger", "event_id": "evt_43"},
		"event": {"action": {"tag": "button", "value": {}}, "open_message_id": "om_top"}
	}`
	evt, err := Classify([]byte(body))
	require.NoError(t, err)
	require.NotNil(t, evt.CardAction)
	assert.Equal(t, "om_top", evt.CardAction.OpenMessageID)
}

func TestClassifyMessage(t *testing.T) {
	body := `{
		"token": "tok",
		"header": {"event_type": "im.message.receive_v1", "event_id": "evt_7"},
		"event": {
			"sender": {"sender_type": "user", "sender_id": {"open_id": "ou_9"}},
			"message": {"message_type": "text", "content": "{\"text\":\"hi\"}"}
		}
	}`
	evt, err := Classify([]byte(body))
	require.NoError(t, err)
	assert.Equal(t, KindMessage, evt.Kind)
	require.NotNil(t, evt.Message)
	assert.Equal(t, "ou_9", evt.Message.SenderOpenID)
	assert.Equal(t, "hi", evt.Message.Text())
}

func TestClassifyBotEchoIgnored(t *testing.T) {
	body := `{
		"header": {"event_type": "im.message.receive_v1", "event_id": "evt_8"},
		"event": {
			"sender": {"sender_type": "app"},
			"message": {"message_type": "text", "content": "{}"}
		}
	}`
	evt, err := Classify([]byte(body))
	require.NoError(t, err)
	assert.Equal(t, KindIgnored, evt.Kind)
}

func TestClassifyInteractiveMessageIgnored(t *testing.T) {
	body := `{
		"header": {"event_type": "im.message.receive_v1", "event_id": "evt_9"},
		"event": {
			"sender": {"sender_type": "user", "sender_id": {"open_id": "ou"}},
			"message": {"message_type": "interactive", "content": "{}"}
		}
	}`
	evt, err := Classify([]byte(body))
	require.NoError(t, err)
	assert.Equal(t, KindIgnored, evt.Kind)
}

func TestClassifyMissingHeaderOrEvent(t *testing.T) {
	for _, body := range []string{
		`{"token":"tok","event":{"x":1}}`,
		`{"token":"tok","header":{"event_type":"card.action.trigger"}}`,
		`{"token":"tok"}`,
	} {
		evt, err := Classify([]byte(body))
		require.NoError(t, err, body)
		assert.Equal(t, KindMalformed, evt.Kind, body)
	}
}

func TestClassifyUnknownEventType(t *testing.T) {
	body := `{"token":"tok","header":{"event_type":"something.else","event_id":"e"},"event":{}}`
	evt, err := Classify([]byte(body))
	require.NoError(t, err)
	assert.Equal(t, KindUnknown, evt.Kind)
	assert.Equal(t, "tok", evt.Token)
}

func TestClassifyInvalidJSON(t *testing.T) {
	_, err := Classify([]byte(`{`))
	assert.Error(t, err)
}

func TestHasEncrypt(t *testing.T) {
	cipher, ok := HasEncrypt([]byte(`{"encrypt":"abc"}`))
	assert.True(t, ok)
	assert.Equal(t, "abc", cipher)

	_, ok = HasEncrypt([]byte(`{"type":"url_verification"}`))
	assert.False(t, ok)
}
