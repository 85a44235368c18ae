package sfsync

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"os"
	"strings"
	"time"

	"cloud.google.com/go/pubsub"
	"github.com/bsm/redislock"
	"github.com/dealdesk/deals_backend/config"
	"github.com/gin-gonic/gin"
)

const syncLockKey = "salesforce-sync-lock"

func PublishSyncRun(ctx context.Context, runID uint) error {
	topicName := strings.TrimSpace(os.Getenv("SF_SYNC_TOPIC"))
	if topicName == "" {
		topicName = "salesforce-sync"
	}

	client, err := config.GetClient(ctx)
	if err != nil {
		return err
	}

	topic := client.Topic(topicName)
	if envBoolDefault("SF_SYNC_CREATE_TOPIC", false) {
		topic, err = config.CreateTopicIfNotExists(client, topicName)
		if err != nil {
			return err
		}
	}

	data, _ := json.Marshal(SyncPubSubPayload{RunId: runID})
	res := topic.Publish(ctx, &pubsub.Message{Data: data})
	_, err = res.Get(ctx)
	return err
}

// PubSubPushHandler executes queued runs delivered by the push subscription.
// A Redis lock guarantees only one sync writes to the destination at a time.
// Malformed envelopes are always acked; a run that could not start (lock held,
// infrastructure error) answers non-2xx so Pub/Sub redelivers it — the run row
// stays queued and is picked up once the lock frees. Re-deliveries of finished
// runs are no-ops in ProcessQueuedRun.
func PubSubPushHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !envBoolDefault("ENABLE_SF_SYNC_PUBSUB_PUSH_ENDPOINT", true) {
			c.Status(204)
			return
		}

		body, err := io.ReadAll(c.Request.Body)
		if err != nil {
			c.Status(204)
			return
		}

		var envelope PubSubPushEnvelope
		if err := json.Unmarshal(body, &envelope); err != nil {
			c.Status(204)
			return
		}

		var payload SyncPubSubPayload
		if err := json.Unmarshal(envelope.Message.Data, &payload); err != nil {
			c.Status(204)
			return
		}
		if payload.RunId == 0 {
			c.Status(204)
			return
		}

		if err := runLocked(c.Request.Context(), payload.RunId); err != nil {
			c.Status(503)
			return
		}
		c.Status(204)
	}
}

func runLocked(ctx context.Context, runID uint) error {
	logger := config.GetLogger()

	locker := config.GetRedisLock()
	if locker == nil {
		return errors.New("redis lock not initialized")
	}
	lock, err := locker.Obtain(ctx, syncLockKey, 30*time.Minute, nil)
	if err != nil {
		if errors.Is(err, redislock.ErrNotObtained) {
			// Surfacing the error keeps the run queued and lets Pub/Sub
			// redeliver it; swallowing it would strand the row in queued and
			// block every future trigger.
			logger.WithField("runId", runID).Warn("another sync holds the lock, deferring run")
		}
		return err
	}
	defer func() { _ = lock.Release(ctx) }()

	if err := ProcessQueuedRun(ctx, config.GetDB(), runID); err != nil {
		config.LogError(logger, "sfsync", "runLocked", "process queued run",
			map[string]interface{}{"runId": runID}, err)
		return err
	}
	return nil
}

func envBoolDefault(key string, def bool) bool {
	val := strings.ToLower(strings.TrimSpace(os.Getenv(key)))
	switch val {
	case "true", "1", "yes", "y", "on":
		return true
	case "false", "0", "no", "n", "off":
		return false
	default:
		return def
	}
}
