package main

import (
	"crypto/md5"
	"flag"
	"io"
	"log"
	"mime"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/sideloadhq/depot/contracts"
	"github.com/sideloadhq/depot/core"
	"github.com/sideloadhq/depot/shell"
)

type uploadConfig struct {
	FilePath     string
	IconPath     string
	Name         string
	PackageID    string
	VersionName  string
	VersionCode  int64
	MinSDK       int
	TargetSDK    int
	RemotePrefix string
}

// uploadMain pushes a package binary (and optionally its icon) to remote
// storage and registers the resulting artifact with the catalog.
// Administrator-only.
func uploadMain(args []string) {
	var upload uploadConfig
	flags := flag.NewFlagSet("depot upload", flag.ExitOnError)
	flags.StringVar(&upload.FilePath, "file", "", "The package file to upload (.apk, .xapk, or .apks).")
	flags.StringVar(&upload.IconPath, "icon", "", "An optional icon image uploaded alongside the binary.")
	flags.StringVar(&upload.Name, "name", "", "The human-readable application name.")
	flags.StringVar(&upload.PackageID, "package", "", "The application package id (e.g. com.example.app).")
	flags.StringVar(&upload.VersionName, "version", "", "The human-readable version (e.g. 1.2.3).")
	flags.Int64Var(&upload.VersionCode, "code", 0, "The monotonically increasing version code.")
	flags.IntVar(&upload.MinSDK, "min-sdk", 21, "The minimum supported platform SDK level.")
	flags.IntVar(&upload.TargetSDK, "target-sdk", 34, "The targeted platform SDK level.")
	flags.StringVar(&upload.RemotePrefix, "remote", envDefault("DEPOT_REMOTE_PREFIX", ""),
		"The remote storage prefix (e.g. gs://bucket/artifacts).")
	var catalogAddress string
	var maxRetry int
	flags.StringVar(&catalogAddress, "catalog", envDefault("DEPOT_CATALOG_URL", "http://localhost:8080"),
		"The base address of the artifact catalog.")
	flags.IntVar(&maxRetry, "max-retry", 5, "How many times to retry transient remote storage failures.")
	_ = flags.Parse(args)

	parsed, err := url.Parse(strings.TrimSuffix(catalogAddress, "/"))
	if err != nil {
		log.Fatal("invalid catalog address:", err)
	}
	config := Config{CatalogAddress: *parsed, MaxRetry: maxRetry}

	if upload.FilePath == "" || upload.RemotePrefix == "" {
		log.Fatal("usage: depot upload -file <path> -name <name> -package <id> -version <version> -remote <gs://...>")
	}

	uploader := buildUploader(config)
	binaryAddress := composeRemoteAddress(upload, filepath.Base(upload.FilePath))
	size, checksum := uploadFile(uploader, upload.FilePath, binaryAddress,
		"application/vnd.android.package-archive")

	var iconURL *contracts.URL
	if upload.IconPath != "" {
		iconAddress := composeRemoteAddress(upload, filepath.Base(upload.IconPath))
		uploadFile(uploader, upload.IconPath, iconAddress, contentTypeOf(upload.IconPath))
		icon := contracts.URL(iconAddress)
		iconURL = &icon
	}

	catalog := shell.NewCatalogClient(shell.NewHTTPClient(), config.CatalogAddress)
	created, err := catalog.Create(contracts.Artifact{
		Name:        upload.Name,
		PackageID:   upload.PackageID,
		VersionName: upload.VersionName,
		VersionCode: upload.VersionCode,
		MinSDK:      upload.MinSDK,
		TargetSDK:   upload.TargetSDK,
		SizeBytes:   size,
		MD5Checksum: checksum,
		BinaryURL:   contracts.URL(binaryAddress),
		IconURL:     iconURL,
	})
	if err != nil {
		log.Fatal(err)
	}
	log.Printf("Registered artifact [%s].", created.ID)
}

func uploadFile(uploader contracts.Uploader, filePath string, address url.URL, contentType string) (int64, []byte) {
	body, size, checksum := openAndFingerprint(filePath)
	defer func() { _ = body.Close() }()
	err := uploader.Upload(contracts.UploadRequest{
		RemoteAddress: address,
		Body:          body,
		Size:          size,
		ContentType:   contentType,
		Checksum:      checksum,
	})
	if err != nil {
		log.Fatal(err)
	}
	log.Printf("Uploaded %s to [%s].", core.HumanFileSize(float64(size)), address.String())
	return size, checksum
}

func openAndFingerprint(filePath string) (*os.File, int64, []byte) {
	file, err := os.Open(filePath)
	if err != nil {
		log.Fatal(err)
	}
	info, err := file.Stat()
	if err != nil {
		log.Fatal(err)
	}
	hasher := md5.New()
	if _, err := io.Copy(hasher, file); err != nil {
		log.Fatal(err)
	}
	if _, err := file.Seek(0, io.SeekStart); err != nil {
		log.Fatal(err)
	}
	return file, info.Size(), hasher.Sum(nil)
}

func composeRemoteAddress(upload uploadConfig, filename string) url.URL {
	prefix, err := url.Parse(upload.RemotePrefix)
	if err != nil {
		log.Fatal("invalid remote prefix:", err)
	}
	prefix.Path = path.Join(prefix.Path, upload.PackageID, upload.VersionName, filename)
	return *prefix
}

func contentTypeOf(filePath string) string {
	if contentType := mime.TypeByExtension(filepath.Ext(filePath)); contentType != "" {
		return contentType
	}
	return "application/octet-stream"
}

func buildUploader(config Config) contracts.Uploader {
	parser := core.NewGoogleCredentialParser(shell.NewDiskFileSystem(), shell.NewEnvironment())
	credentials, err := parser.Parse()
	if err != nil {
		log.Fatal(err)
	}
	client := shell.NewGoogleCloudStorageClient(shell.NewHTTPClient(), credentials, http.StatusOK)
	return core.NewRetryClient(client, config.MaxRetry, time.Sleep)
}
