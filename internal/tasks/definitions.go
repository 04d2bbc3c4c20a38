package tasks

// DefineTasks registers all available tasks
func DefineTasks() {
	// Register general tasks
	RegisterHandler(LogInfoTask.TaskID(), LogInfoTask.HandleExecution)

	// Register reminder tasks
	RegisterHandler(DueReminderTask.TaskID(), DueReminderTask.HandleExecution)
}
