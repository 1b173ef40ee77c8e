package core

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/mholt/archiver"
)

// Split bundles (.xapk/.apks) are archives of split APKs; they can only be
// installed through a session that stages every split before the commit.

func IsBundle(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xapk", ".apks":
		return true
	}
	return false
}

// StagingDir is where a bundle's splits are extracted to, next to the bundle.
func StagingDir(bundlePath string) string {
	return bundlePath + ".staging"
}

// DiscardStaging removes a bundle's staging directory; already gone is fine.
func DiscardStaging(bundlePath string) {
	_ = os.RemoveAll(StagingDir(bundlePath))
}

// StageBundle extracts a split bundle into stagingDir and returns the
// contained APK paths in stable order. Non-APK bundle members (icons,
// manifest metadata) are ignored.
func StageBundle(bundlePath, stagingDir string) ([]string, error) {
	if err := os.RemoveAll(stagingDir); err != nil {
		return nil, err
	}
	zip := archiver.NewZip()
	if err := zip.Unarchive(bundlePath, stagingDir); err != nil {
		return nil, fmt.Errorf("could not extract bundle %q: %w", bundlePath, err)
	}

	var splits []string
	err := filepath.Walk(stagingDir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			return nil
		}
		if strings.EqualFold(filepath.Ext(path), ".apk") {
			splits = append(splits, path)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	if len(splits) == 0 {
		return nil, fmt.Errorf("bundle %q contains no packages", bundlePath)
	}
	sort.Strings(splits)
	return splits, nil
}
