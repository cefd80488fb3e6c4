package main

import (
	"flag"
	"log"
	"os"
	"path/filepath"

	"github.com/voxelforge/voxelforge/internal/engine/atlas"
)

func main() {
	var (
		src = flag.String("src", "", "atlas bundle source (any go-getter url: git::, http::, s3::, file paths)")
		out = flag.String("o", "./atlas", "output dir path")
	)
	flag.Parse()

	if *src == "" {
		log.Fatal("atlas bundle source required")
	}
	if *out == "" {
		log.Fatal("output dir path required")
	}

	if err := os.RemoveAll(*out); err != nil {
		log.Fatal(err)
	}

	log.Printf("start downloading atlas bundle to %s", *out)
	if err := atlas.Fetch(*out, *src); err != nil {
		log.Fatal(err)
	}

	// Validate the fetched descriptor right away so a broken bundle fails
	// here instead of at engine startup.
	desc := filepath.Join(*out, "atlas.json")
	a, err := atlas.Load(desc)
	if err != nil {
		log.Fatalf("fetched bundle is invalid: %v", err)
	}
	if img, err := atlas.LoadImage(filepath.Join(*out, "atlas.png")); err == nil {
		if err := a.CheckImage(img); err != nil {
			log.Fatalf("fetched bundle is invalid: %v", err)
		}
	}

	w, h := a.Size()
	log.Printf("done downloading atlas bundle (%dx%d) to %s", w, h, *out)
}
