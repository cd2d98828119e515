package model

import "github.com/oncall-lab/argus/pkg/domain/types"

// Notification is an abstract event handed to the notification sink.
// Presentation and auto-dismiss behavior belong to the sink.
type Notification struct {
	Level   types.NotifyLevel `json:"level"`
	Title   string            `json:"title"`
	Message string            `json:"message"`
}
