package queue

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/hibiken/asynq"
)

// ScheduleSecretRotation enqueues re-encryption of every site ingest secret
// under keyID after the given delay.
func (c *Client) ScheduleSecretRotation(keyID string, in time.Duration) error {
	payload, err := json.Marshal(SecretRotationPayload{KeyID: keyID})
	if err != nil {
		return fmt.Errorf("failed to marshal payload: %w", err)
	}

	task := asynq.NewTask(QueueSecretRotation, payload)
	_, err = c.client.Enqueue(task,
		asynq.Queue(QueueSecretRotation),
		asynq.ProcessIn(in),
		asynq.MaxRetry(3),
		asynq.Timeout(10*time.Minute),
		// one pending rotation per key
		asynq.TaskID(QueueSecretRotation+":"+keyID),
	)
	if err != nil && err != asynq.ErrTaskIDConflict {
		return fmt.Errorf("failed to enqueue secret rotation task: %w", err)
	}
	return nil
}
