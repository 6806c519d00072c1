package watcher

import (
	"time"

	"github.com/fsnotify/fsnotify"
)

// FileEventType represents the type of file system event
type FileEventType string

const (
	FileCreated  FileEventType = "created"
	FileRemoved  FileEventType = "removed"
	FileModified FileEventType = "modified"
)

// FileEvent represents a change of a watched file
type FileEvent struct {
	Path      string
	EventType FileEventType
	Timestamp time.Time
}

func eventType(op fsnotify.Op) (FileEventType, bool) {
	switch {
	case op.Has(fsnotify.Create):
		return FileCreated, true
	case op.Has(fsnotify.Write):
		return FileModified, true
	case op.Has(fsnotify.Remove), op.Has(fsnotify.Rename):
		return FileRemoved, true
	}
	return "", false
}
