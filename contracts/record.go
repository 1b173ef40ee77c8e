package contracts

import "time"

// PendingInstallRecord is the durable marker of an install left incomplete
// across a process restart. At most one is tracked at a time; the coordinator
// is its only writer.
type PendingInstallRecord struct {
	TaskID     string    `json:"task_id"`
	ArtifactID string    `json:"artifact_id"`
	LocalPath  string    `json:"local_path"`
	CreatedAt  time.Time `json:"created_at"`
	State      TaskState `json:"state"`
}

// RecordStore persists the single pending-install slot. Implementations never
// interpret the record. Failures here are non-fatal to callers: losing the
// record only degrades resumability, never the success path.
type RecordStore interface {
	Save(record PendingInstallRecord) error
	Load() (record PendingInstallRecord, found bool, err error)
	Clear() error
}
