package docstore

const (
	TaskStatusDoing uint = 1
	TaskStatusDone  uint = 2
	TaskStatusFail  uint = 3
)
