package workerpool

import (
	"github.com/vnykmshr/taskpool/pkg/common/validation"
)

func (c Config) validate() error {
	if err := validation.ValidatePositive("workerpool", "worker_count", c.WorkerCount); err != nil {
		return err
	}
	if err := validation.ValidateNonNegative("workerpool", "queue_capacity", c.QueueCapacity); err != nil {
		return err
	}
	return validation.ValidateDuration("workerpool", "task_timeout", c.TaskTimeout)
}
