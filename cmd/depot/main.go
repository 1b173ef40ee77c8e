package main

import (
	"log"
	"os"

	"github.com/sideloadhq/depot/shell"
)

func main() {
	log.SetFlags(log.Ltime | log.Lshortfile)

	if err := shell.LoadEnvFile(".env"); err != nil {
		log.Fatal(err)
	}

	if isSubCommand("install") {
		installMain(os.Args[2:])
	} else if isSubCommand("resume") {
		resumeMain(os.Args[2:])
	} else if isSubCommand("list") {
		listMain(os.Args[2:])
	} else if isSubCommand("search") {
		searchMain(os.Args[2:])
	} else if isSubCommand("upload") {
		uploadMain(os.Args[2:])
	} else if isSubCommand("pin") {
		pinMain(os.Args[2:])
	} else if isSubCommand("delete") {
		deleteMain(os.Args[2:])
	} else if isSubCommand("version") {
		versionMain()
	} else {
		log.Fatal("usage: depot <install|resume|list|search|upload|pin|delete|version> [flags]")
	}
}

func isSubCommand(name string) bool {
	return len(os.Args) > 1 && os.Args[1] == name
}

func versionMain() {
	log.Printf("depot [%s]\n", ldflagsSoftwareVersion)
}

var ldflagsSoftwareVersion = "debug"
