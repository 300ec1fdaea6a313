// Command apikey mints API keys for the catalog service.
//
//	API_KEY_SECRET=... apikey -client inventory-sync -scope write -ttl 720h
package main

import (
	"flag"
	"fmt"
	"os"

	"ProductCatalog/internal/auth"
)

func main() {
	client := flag.String("client", "", "client name recorded in the key")
	scope := flag.String("scope", string(auth.ScopeRead), "read or write")
	ttl := flag.Duration("ttl", 0, "key lifetime, 0 for no expiry")
	flag.Parse()

	secret := os.Getenv("API_KEY_SECRET")
	if len(secret) < 32 {
		fail("API_KEY_SECRET is required and must be at least 32 chars")
	}
	if *client == "" {
		fail("-client is required")
	}

	sc, err := auth.ParseScope(*scope)
	if err != nil {
		fail(err.Error())
	}

	key, err := auth.NewKeyMaker(secret).New(*client, sc, *ttl)
	if err != nil {
		fail(err.Error())
	}
	fmt.Println(key)
}

func fail(msg string) {
	fmt.Fprintln(os.Stderr, "apikey:", msg)
	os.Exit(1)
}
