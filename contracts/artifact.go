package contracts

import (
	"errors"
	"time"
)

// Artifact is the catalog's record of one distributable package.
type Artifact struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	PackageID   string    `json:"package_id"`
	VersionName string    `json:"version_name"`
	VersionCode int64     `json:"version_code"`
	MinSDK      int       `json:"min_sdk"`
	TargetSDK   int       `json:"target_sdk"`
	SizeBytes   int64     `json:"size_bytes"`
	MD5Checksum []byte    `json:"md5_checksum,omitempty"`
	BinaryURL   URL       `json:"binary_url"`
	IconURL     *URL      `json:"icon_url,omitempty"`
	Pinned      bool      `json:"pinned"`
	Downloads   int64     `json:"downloads"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func (this Artifact) Validate() error {
	if this.Name == "" {
		return errors.New("name is required")
	}
	if this.PackageID == "" {
		return errors.New("package id is required")
	}
	if this.VersionName == "" {
		return errors.New("version name is required")
	}
	if this.BinaryURL.Value().String() == "" {
		return errors.New("binary address is required")
	}
	return nil
}

// Catalog exposes the backend's artifact records. Read operations serve end
// users; the rest are administrator-only.
type Catalog interface {
	List() ([]Artifact, error)
	Get(id string) (Artifact, error)
	Search(substring string) ([]Artifact, error)

	Create(artifact Artifact) (Artifact, error)
	Update(artifact Artifact) error
	Delete(id string) error
	TogglePinned(id string) error
	IncrementDownloads(id string) error
}
