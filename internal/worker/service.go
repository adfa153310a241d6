package worker

import (
	"context"
	"errors"
	"time"

	"github.com/leafcart/internal/config"
	"github.com/leafcart/internal/logger"
	"github.com/leafcart/internal/queue"

	"github.com/hibiken/asynq"
)

const (
	postCommitSweepInterval = time.Minute
	postCommitSweepAge      = 5 * time.Minute
	postCommitSweepBatch    = 100
)

// Service 异步队列服务
type Service struct {
	name     string
	server   *asynq.Server
	mux      *asynq.ServeMux
	consumer *Consumer
}

// NewService 创建异步队列服务
func NewService(cfg *config.QueueConfig, consumer *Consumer) (*Service, error) {
	if cfg == nil || !cfg.Enabled {
		return nil, errors.New("queue disabled")
	}
	if consumer == nil {
		return nil, errors.New("consumer is nil")
	}
	opt, serverCfg := queue.BuildServerConfig(cfg)
	server := asynq.NewServer(opt, serverCfg)
	mux := asynq.NewServeMux()
	consumer.Register(mux)
	return &Service{
		name:     "worker",
		server:   server,
		mux:      mux,
		consumer: consumer,
	}, nil
}

// Name 服务名称
func (s *Service) Name() string {
	if s == nil || s.name == "" {
		return "worker"
	}
	return s.name
}

// Start 启动服务
func (s *Service) Start(ctx context.Context) error {
	if s == nil || s.server == nil || s.mux == nil {
		return errors.New("worker not initialized")
	}
	if s.consumer != nil && s.consumer.Container != nil && s.consumer.OrderService != nil {
		go s.runPostCommitSweepLoop(ctx)
	}
	return s.server.Run(s.mux)
}

// Stop 停止服务
func (s *Service) Stop(ctx context.Context) error {
	if s == nil || s.server == nil {
		return nil
	}
	_ = ctx
	s.server.Shutdown()
	return nil
}

// runPostCommitSweepLoop 兜底扫描：补偿任务丢失或队列曾不可用时仍能完成积分与核销
func (s *Service) runPostCommitSweepLoop(ctx context.Context) {
	runOnce := func() {
		if _, err := s.consumer.OrderService.SweepPendingPostCommit(ctx, postCommitSweepAge, postCommitSweepBatch); err != nil {
			logger.Warnw("worker_post_commit_sweep_failed", "error", err)
		}
	}
	runOnce()

	ticker := time.NewTicker(postCommitSweepInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			runOnce()
		}
	}
}
