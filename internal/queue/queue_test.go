package queue

import (
	"testing"

	"github.com/leafcart/internal/config"

	"github.com/hibiken/asynq"
)

func TestOrderPostCommitTaskRoundTrip(t *testing.T) {
	task, err := NewOrderPostCommitTask(OrderPostCommitPayload{OrderID: 42})
	if err != nil {
		t.Fatalf("new task failed: %v", err)
	}
	if task.Type() != TaskOrderPostCommit {
		t.Fatalf("unexpected task type: %s", task.Type())
	}
	payload, err := ParseOrderPostCommitPayload(task)
	if err != nil {
		t.Fatalf("parse payload failed: %v", err)
	}
	if payload.OrderID != 42 {
		t.Fatalf("unexpected order id: %d", payload.OrderID)
	}
}

func TestParseOrderPostCommitPayloadRejectsMissingOrder(t *testing.T) {
	if _, err := ParseOrderPostCommitPayload(asynq.NewTask(TaskOrderPostCommit, []byte(`{}`))); err == nil {
		t.Fatalf("expected error for empty order id")
	}
	if _, err := ParseOrderPostCommitPayload(asynq.NewTask(TaskOrderPostCommit, []byte(`not-json`))); err == nil {
		t.Fatalf("expected error for malformed payload")
	}
}

func TestDisabledClientIsNoop(t *testing.T) {
	client, err := NewClient(&config.QueueConfig{Enabled: false})
	if err != nil {
		t.Fatalf("new client failed: %v", err)
	}
	if client.Enabled() {
		t.Fatalf("disabled client should report not enabled")
	}
	if err := client.EnqueueOrderPostCommit(OrderPostCommitPayload{OrderID: 1}, 0); err != nil {
		t.Fatalf("disabled enqueue should be a no-op, got %v", err)
	}
	if err := client.Close(); err != nil {
		t.Fatalf("close disabled client failed: %v", err)
	}
}

func TestBuildServerConfigDefaults(t *testing.T) {
	opt, cfg := BuildServerConfig(&config.QueueConfig{Host: " redis ", Port: 6380, DB: 2})
	if opt.Addr != "redis:6380" || opt.DB != 2 {
		t.Fatalf("unexpected redis opt: %+v", opt)
	}
	if cfg.Concurrency != 10 {
		t.Fatalf("unexpected concurrency: %d", cfg.Concurrency)
	}
	if cfg.Queues[CriticalQueue] == 0 || cfg.Queues[DefaultQueue] == 0 {
		t.Fatalf("unexpected queues: %+v", cfg.Queues)
	}
}
