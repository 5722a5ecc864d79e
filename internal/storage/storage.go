package storage

import "predictionScope/internal/model"

// LogSink receives contract logs.
type LogSink interface {
	PutLogs(logs []model.ContractLog) error
}

// ActivitySink receives derived user activities.
type ActivitySink interface {
	PutActivities(activities []model.UserActivity) error
}
