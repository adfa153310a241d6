package queue

import (
	"encoding/json"
	"fmt"

	"github.com/leafcart/internal/constants"

	"github.com/hibiken/asynq"
)

const (
	// TaskOrderPostCommit 订单提交后副作用补偿任务（优惠码核销 + 积分入账）
	TaskOrderPostCommit = constants.TaskOrderPostCommit
)

// OrderPostCommitPayload 提交后副作用任务载荷
type OrderPostCommitPayload struct {
	OrderID uint `json:"order_id"`
}

// NewOrderPostCommitTask 创建提交后副作用任务
func NewOrderPostCommitTask(payload OrderPostCommitPayload) (*asynq.Task, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskOrderPostCommit, body), nil
}

// ParseOrderPostCommitPayload 解析任务载荷
func ParseOrderPostCommitPayload(task *asynq.Task) (OrderPostCommitPayload, error) {
	var payload OrderPostCommitPayload
	if task == nil {
		return payload, fmt.Errorf("nil task")
	}
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return payload, err
	}
	if payload.OrderID == 0 {
		return payload, fmt.Errorf("order_id is required")
	}
	return payload, nil
}
