package queue

import (
	"encoding/json"
	"testing"

	"github.com/dujiao-next/loyalty/internal/config"
)

func TestNewUserRegisteredTaskPayload(t *testing.T) {
	task, err := NewUserRegisteredTask(UserRegisteredPayload{UserID: 7, ReferralCode: "FS1026ABC"})
	if err != nil {
		t.Fatalf("new task failed: %v", err)
	}
	if task.Type() != TaskUserRegistered {
		t.Fatalf("unexpected task type: %s", task.Type())
	}
	var payload UserRegisteredPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		t.Fatalf("decode payload failed: %v", err)
	}
	if payload.UserID != 7 || payload.ReferralCode != "FS1026ABC" {
		t.Fatalf("unexpected payload: %+v", payload)
	}
}

func TestTaskIDsAreStablePerEntity(t *testing.T) {
	if userRegisteredTaskID(3) != userRegisteredTaskID(3) || userRegisteredTaskID(3) == userRegisteredTaskID(4) {
		t.Fatalf("user task id should be derived from user id")
	}
	if orderCompletedTaskID(9) != "order_completed:9" {
		t.Fatalf("unexpected order task id: %s", orderCompletedTaskID(9))
	}
}

func TestDisabledClientIsNoop(t *testing.T) {
	client, err := NewClient(&config.QueueConfig{Enabled: false})
	if err != nil {
		t.Fatalf("new client failed: %v", err)
	}
	if client.Enabled() {
		t.Fatalf("client should be disabled")
	}
	if err := client.EnqueueOrderCompleted(OrderCompletedPayload{OrderID: 1}); err != nil {
		t.Fatalf("disabled enqueue should be noop, got %v", err)
	}
	if err := client.Close(); err != nil {
		t.Fatalf("close failed: %v", err)
	}
}

func TestBuildServerConfigDefaults(t *testing.T) {
	opt, cfg := BuildServerConfig(&config.QueueConfig{Host: " redis ", Port: 6380})
	if opt.Addr != "redis:6380" {
		t.Fatalf("unexpected addr: %s", opt.Addr)
	}
	if cfg.Concurrency != 10 || cfg.Queues[CriticalQueue] != 6 {
		t.Fatalf("unexpected server config: %+v", cfg)
	}
}
