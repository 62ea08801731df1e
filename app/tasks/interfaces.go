package tasks

// TaskSchedulerInterface is the scheduling surface used by the main
// application: worker pool lifecycle plus ad-hoc task submission.
type TaskSchedulerInterface interface {
	Start()
	Stop()
	EnqueueTask(task TaskInterface) error
}
