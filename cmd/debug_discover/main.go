package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"partition-manager/core/config"
	"partition-manager/core/storage"
	"partition-manager/feature/partitions"
)

func main() {
	if len(os.Args) != 2 {
		fmt.Println("usage: debug_discover s3://bucket/prefix/")
		os.Exit(1)
	}
	root := os.Args[1]

	// Load config
	cfg, err := config.LoadConfig(".")
	if err != nil {
		log.Fatal(err)
	}

	// Create storage client
	client, err := storage.NewClient(cfg.Storage)
	if err != nil {
		log.Fatal(err)
	}

	d := partitions.NewDiscoverer(storage.NewLister(client))

	count := 0
	for res := range d.Discover(context.Background(), root) {
		if res.Err != nil {
			log.Fatal(res.Err)
		}
		count++
		fmt.Printf("%s\t%s\n", res.Descriptor.Value, res.Descriptor.Location)
	}
	fmt.Printf("\n%d partitions found under %s\n", count, root)
}
