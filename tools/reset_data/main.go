package main

import (
	"fmt"
	"log"

	"study-assistant/config"
	dbPkg "study-assistant/pkg/db"
	"study-assistant/pkg/store"
)

func main() {
	cfg := config.LoadConfig()

	var backend store.Backend
	if cfg.Storage.Backend == "sql" {
		gdb, err := dbPkg.InitDB(cfg.Storage.Database)
		if err != nil {
			log.Fatalf("Database connection failed: %v", err)
		}
		defer dbPkg.CloseDB()

		b, err := store.NewSQLBackend(gdb)
		if err != nil {
			log.Fatalf("Document table init failed: %v", err)
		}
		backend = b
		fmt.Printf("Storage: sql (%s)\n", cfg.Storage.Database.Driver)
	} else {
		b, err := store.NewFileBackend(cfg.Storage.DataDir)
		if err != nil {
			log.Fatalf("Data directory init failed: %v", err)
		}
		backend = b
		fmt.Printf("Storage: file (%s)\n", cfg.Storage.DataDir)
	}

	names, err := backend.Names()
	if err != nil {
		log.Fatalf("List documents failed: %v", err)
	}
	if len(names) == 0 {
		fmt.Println("No documents found")
		return
	}

	// Confirm
	fmt.Printf("\nWARNING: This operation will DELETE documents %v!\n", names)
	fmt.Print("Type 'YES' to confirm: ")
	var confirm string
	fmt.Scanln(&confirm)
	if confirm != "YES" {
		fmt.Println("Operation cancelled")
		return
	}

	for _, name := range names {
		fmt.Printf("Deleting %s... ", name)
		if err := backend.Delete(name); err != nil {
			fmt.Printf("Failed: %v\n", err)
		} else {
			fmt.Println("Success")
		}
	}

	fmt.Println("\nData reset completed!")
	fmt.Println("The server starts with empty defaults on next launch")
}
