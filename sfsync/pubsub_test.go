package sfsync

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
)

func pushEnvelope(t *testing.T, runID uint) []byte {
	t.Helper()
	payload, err := json.Marshal(SyncPubSubPayload{RunId: runID})
	if err != nil {
		t.Fatal(err)
	}
	var envelope PubSubPushEnvelope
	envelope.Message.Data = payload
	body, err := json.Marshal(envelope)
	if err != nil {
		t.Fatal(err)
	}
	return body
}

func pushStatus(t *testing.T, body []byte) int {
	t.Helper()
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.POST("/pubsub/salesforce-sync", PubSubPushHandler())

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/pubsub/salesforce-sync", bytes.NewReader(body))
	r.ServeHTTP(w, req)
	return w.Code
}

// A run that cannot start must answer non-2xx so Pub/Sub redelivers it;
// acking would strand the row in queued and block all future triggers.
func TestPubSubPushHandler_RetriesWhenRunCannotStart(t *testing.T) {
	// No Redis lock is configured in tests, so the run cannot be taken.
	if got := pushStatus(t, pushEnvelope(t, 7)); got != http.StatusServiceUnavailable {
		t.Fatalf("status = %d, want 503", got)
	}
}

func TestPubSubPushHandler_AcksMalformedMessages(t *testing.T) {
	cases := map[string][]byte{
		"garbage body": []byte("not json"),
		"empty data":   []byte(`{"message":{}}`),
		"zero run id":  pushEnvelope(t, 0),
	}
	for name, body := range cases {
		if got := pushStatus(t, body); got != http.StatusNoContent {
			t.Errorf("%s: status = %d, want 204", name, got)
		}
	}
}

func TestPubSubPushHandler_DisabledEndpointAcks(t *testing.T) {
	t.Setenv("ENABLE_SF_SYNC_PUBSUB_PUSH_ENDPOINT", "false")
	if got := pushStatus(t, pushEnvelope(t, 7)); got != http.StatusNoContent {
		t.Fatalf("status = %d, want 204", got)
	}
}

func TestEnvBoolDefault(t *testing.T) {
	t.Setenv("SF_SYNC_CREATE_TOPIC", "YES")
	if !envBoolDefault("SF_SYNC_CREATE_TOPIC", false) {
		t.Error("YES should parse true")
	}
	t.Setenv("SF_SYNC_CREATE_TOPIC", "off")
	if envBoolDefault("SF_SYNC_CREATE_TOPIC", true) {
		t.Error("off should parse false")
	}
	t.Setenv("SF_SYNC_CREATE_TOPIC", strings.Repeat(" ", 3))
	if !envBoolDefault("SF_SYNC_CREATE_TOPIC", true) {
		t.Error("blank should fall back to the default")
	}
}
