package shell

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/sideloadhq/depot/contracts"
)

// DiskRecordSlot persists the single pending-install record as one JSON file.
// Writes go through a temp file and a rename so a crash mid-save never leaves
// a half-written record behind.
type DiskRecordSlot struct {
	path string
}

func NewDiskRecordSlot(path string) *DiskRecordSlot {
	return &DiskRecordSlot{path: path}
}

func (this *DiskRecordSlot) Save(record contracts.PendingInstallRecord) error {
	raw, err := json.Marshal(record)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(this.path), 0755); err != nil {
		return err
	}
	temp := this.path + ".tmp"
	if err := os.WriteFile(temp, raw, 0644); err != nil {
		return err
	}
	return os.Rename(temp, this.path)
}

func (this *DiskRecordSlot) Load() (record contracts.PendingInstallRecord, found bool, err error) {
	raw, err := os.ReadFile(this.path)
	if os.IsNotExist(err) {
		return record, false, nil
	}
	if err != nil {
		return record, false, err
	}
	if err := json.Unmarshal(raw, &record); err != nil {
		// A corrupt slot is as good as no slot; the caller only loses resumability.
		_ = os.Remove(this.path)
		return contracts.PendingInstallRecord{}, false, err
	}
	return record, true, nil
}

func (this *DiskRecordSlot) Clear() error {
	err := os.Remove(this.path)
	if os.IsNotExist(err) {
		return nil
	}
	return err
}
