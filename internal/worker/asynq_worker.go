package worker

import (
	"context"
	"errors"
	"fmt"

	"github.com/leafcart/internal/logger"
	"github.com/leafcart/internal/provider"
	"github.com/leafcart/internal/queue"
	"github.com/leafcart/internal/service"

	"github.com/hibiken/asynq"
)

// Consumer 异步任务消费者
type Consumer struct {
	*provider.Container
}

// NewConsumer 创建消费者
func NewConsumer(c *provider.Container) *Consumer {
	return &Consumer{
		Container: c,
	}
}

// Register 注册消费者
func (c *Consumer) Register(mux *asynq.ServeMux) {
	if c == nil || mux == nil {
		logger.Debugw("worker_register_skip_nil", "consumer_nil", c == nil, "mux_nil", mux == nil)
		return
	}
	mux.HandleFunc(queue.TaskOrderPostCommit, c.handleOrderPostCommit)
}

func (c *Consumer) handleOrderPostCommit(ctx context.Context, task *asynq.Task) error {
	if c == nil || c.Container == nil || c.OrderService == nil {
		logger.Warnw("worker_order_post_commit_skip_service_nil")
		return nil
	}
	payload, err := queue.ParseOrderPostCommitPayload(task)
	if err != nil {
		logger.Warnw("worker_order_post_commit_invalid_payload", "error", err)
		return fmt.Errorf("%w: %v", asynq.SkipRetry, err)
	}
	if err := c.OrderService.ApplyPostCommitEffects(ctx, payload.OrderID); err != nil {
		if errors.Is(err, service.ErrOrderNotFound) {
			logger.Warnw("worker_order_post_commit_order_not_found", "order_id", payload.OrderID)
			return fmt.Errorf("%w: %v", asynq.SkipRetry, err)
		}
		logger.Warnw("worker_order_post_commit_failed", "order_id", payload.OrderID, "error", err)
		return err
	}
	logger.Infow("worker_order_post_commit_applied", "order_id", payload.OrderID)
	return nil
}
