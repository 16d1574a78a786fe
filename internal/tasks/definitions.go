package tasks

// DefineTasks registers all available tasks
func DefineTasks() {
	// Register general tasks
	RegisterHandler(LogInfoTask.TaskID(), LogInfoTask.HandleExecution)

	// Register booking tasks
	RegisterHandler(ExpireStaleBookingsTask.TaskID(), ExpireStaleBookingsTask.HandleExecution)

	// Register notification tasks
	RegisterHandler(SendBookingEmailTask.TaskID(), SendBookingEmailTask.HandleExecution)
}
