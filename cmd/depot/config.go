package main

import (
	"flag"
	"log"
	"net/url"
	"os"
	"path/filepath"
	"strings"
)

type Config struct {
	CatalogAddress url.URL
	StateDirectory string
	ADBPath        string
	DeviceSerial   string
	ChunkSize      int
	MaxRetry       int
}

// ParseConfig reads the shared flags for a sub-command. Environment variables
// (optionally from a .env file) provide the defaults so that flags only need
// to appear when overriding them.
func ParseConfig(name string, args []string) (Config, []string) {
	var config Config
	var catalogAddress string

	flags := flag.NewFlagSet("depot "+name, flag.ExitOnError)
	flags.StringVar(&catalogAddress, "catalog", envDefault("DEPOT_CATALOG_URL", "http://localhost:8080"),
		"The base address of the artifact catalog.")
	flags.StringVar(&config.StateDirectory, "state", envDefault("DEPOT_STATE_DIR", defaultStateDirectory()),
		"The directory holding downloads and the pending install record.")
	flags.StringVar(&config.ADBPath, "adb", envDefault("DEPOT_ADB", "adb"),
		"The path to the Android debug bridge executable.")
	flags.StringVar(&config.DeviceSerial, "serial", envDefault("DEPOT_DEVICE_SERIAL", ""),
		"The serial of the target device (blank: the only connected device).")
	flags.IntVar(&config.ChunkSize, "chunk-size", 0,
		"The download chunk size in bytes (0: the built-in default).")
	flags.IntVar(&config.MaxRetry, "max-retry", 5,
		"How many times to retry transient remote storage failures.")
	_ = flags.Parse(args)

	parsed, err := url.Parse(strings.TrimSuffix(catalogAddress, "/"))
	if err != nil {
		log.Fatal("invalid catalog address:", err)
	}
	config.CatalogAddress = *parsed

	return config, flags.Args()
}

func envDefault(key, fallback string) string {
	if value, set := os.LookupEnv(key); set && strings.TrimSpace(value) != "" {
		return value
	}
	return fallback
}

func defaultStateDirectory() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".depot"
	}
	return filepath.Join(home, ".depot")
}

func (this Config) RecordPath() string {
	return filepath.Join(this.StateDirectory, "pending-install.json")
}

func (this Config) DownloadPath(filename string) string {
	return filepath.Join(this.StateDirectory, "downloads", filename)
}
