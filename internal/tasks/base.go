package tasks

import (
	"encoding/json"
	"fmt"
	"time"

	"travelbook_app/internal/models"
)

// BuildScheduledTask is a helper to build ScheduledTask records generically
func BuildScheduledTask(taskName string, args interface{}, due time.Time, recurringInterval *string, taskType models.ScheduledTaskType, maxAttempt int) (*models.ScheduledTask, error) {
	argsBytes, err := json.Marshal(args)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal args: %w", err)
	}

	var mapArgs map[string]interface{}
	if err := json.Unmarshal(argsBytes, &mapArgs); err != nil {
		return nil, fmt.Errorf("failed to unmarshal into map: %w", err)
	}

	return &models.ScheduledTask{
		TaskName:          taskName,
		Arguments:         mapArgs,
		Due:               due,
		RecurringInterval: recurringInterval,
		Status:            models.ScheduledTaskStatusActive,
		TaskType:          taskType,
		MaxAttempt:        maxAttempt,
	}, nil
}

// uintArg pulls a uint out of the loosely typed task arguments. JSON
// round-trips numbers as float64.
func uintArg(args map[string]interface{}, key string) (uint, bool) {
	switch val := args[key].(type) {
	case float64:
		return uint(val), true
	case int:
		return uint(val), true
	case uint:
		return val, true
	default:
		return 0, false
	}
}
