package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/talkincode/warehouse/config"
	"github.com/talkincode/warehouse/internal/auth"
)

func main() {
	conffile := flag.String("c", "", "config yaml file")
	email := flag.String("email", "", "email claim of the issued token")
	flag.Parse()

	if *email == "" {
		flag.Usage()
		os.Exit(1)
	}

	cfg, err := config.LoadConfig(*conffile)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	tokens := auth.NewTokenService(cfg.Web.Secret, cfg.Web.TokenTTL)
	token, err := tokens.Issue(map[string]interface{}{"email": *email})
	if err != nil {
		log.Fatalf("Failed to issue token: %v", err)
	}

	fmt.Printf("Authorization: Bearer %s\n", token)
	fmt.Printf("valid for %s\n", tokens.TTL())
}
