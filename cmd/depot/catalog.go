package main

import (
	"fmt"
	"log"
	"os"
	"text/tabwriter"

	"github.com/sideloadhq/depot/contracts"
	"github.com/sideloadhq/depot/core"
	"github.com/sideloadhq/depot/shell"
)

func listMain(args []string) {
	config, _ := ParseConfig("list", args)
	catalog := shell.NewCatalogClient(shell.NewHTTPClient(), config.CatalogAddress)
	artifacts, err := catalog.List()
	if err != nil {
		log.Fatal(err)
	}
	printArtifacts(artifacts)
}

func searchMain(args []string) {
	config, remaining := ParseConfig("search", args)
	if len(remaining) != 1 {
		log.Fatal("usage: depot search [flags] <substring>")
	}
	catalog := shell.NewCatalogClient(shell.NewHTTPClient(), config.CatalogAddress)
	artifacts, err := catalog.Search(remaining[0])
	if err != nil {
		log.Fatal(err)
	}
	printArtifacts(artifacts)
}

func pinMain(args []string) {
	config, remaining := ParseConfig("pin", args)
	if len(remaining) != 1 {
		log.Fatal("usage: depot pin [flags] <artifact-id>")
	}
	catalog := shell.NewCatalogClient(shell.NewHTTPClient(), config.CatalogAddress)
	if err := catalog.TogglePinned(remaining[0]); err != nil {
		log.Fatal(err)
	}
}

func deleteMain(args []string) {
	config, remaining := ParseConfig("delete", args)
	if len(remaining) != 1 {
		log.Fatal("usage: depot delete [flags] <artifact-id>")
	}
	catalog := shell.NewCatalogClient(shell.NewHTTPClient(), config.CatalogAddress)
	if err := catalog.Delete(remaining[0]); err != nil {
		log.Fatal(err)
	}
}

func printArtifacts(artifacts []contracts.Artifact) {
	writer := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	_, _ = fmt.Fprintln(writer, "ID\tNAME\tPACKAGE\tVERSION\tSIZE\tPINNED\tDOWNLOADS")
	for _, artifact := range artifacts {
		pinned := ""
		if artifact.Pinned {
			pinned = "*"
		}
		_, _ = fmt.Fprintf(writer, "%s\t%s\t%s\t%s\t%s\t%s\t%d\n",
			artifact.ID, artifact.Name, artifact.PackageID, artifact.VersionName,
			core.HumanFileSize(float64(artifact.SizeBytes)), pinned, artifact.Downloads)
	}
	_ = writer.Flush()
}
