// cmd/adduser/main.go
// Creates or updates an API user in the database.
//
// Usage:
//
//	go run ./cmd/adduser -username officer -password testing
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"strings"

	"github.com/padraicbc/regattaapi/config"
	bundb "github.com/padraicbc/regattaapi/db"
	"github.com/padraicbc/regattaapi/handlers"
	"github.com/padraicbc/regattaapi/store"
)

func main() {
	username := flag.String("username", "", "username (required)")
	password := flag.String("password", "", "plain-text password (required)")
	flag.Parse()

	name := strings.TrimSpace(*username)
	hash, err := handlers.HashPasswordForUser(name, *password)
	if err != nil {
		log.Fatal("both -username and -password are required: ", err)
	}

	ctx := context.Background()
	cfg := config.LoadDB()
	db := bundb.Setup(cfg)
	defer db.Close()

	if err := bundb.CreateTables(ctx, db); err != nil {
		log.Fatal("create tables: ", err)
	}
	if err := store.New(db, nil).SaveUser(ctx, name, hash); err != nil {
		log.Fatal("save user: ", err)
	}

	fmt.Printf("user %q saved\n", name)
}
