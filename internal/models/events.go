package models

// File event kinds reported by the config file monitor
const (
	FileEventCreate = "create"
	FileEventModify = "modify"
	FileEventDelete = "delete"
)

// FileEvent represents a file system event
type FileEvent struct {
	Type string `json:"type"` // "create", "modify", "delete"
	Path string `json:"path"`
}
