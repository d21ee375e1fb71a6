// cmd/genhash prints a hash for an operator secret and, optionally, a
// development JWT for the API.
//
//	go run ./cmd/genhash -segredo 1234
//	go run ./cmd/genhash -segredo 1234 -esquema argon2id
//	go run ./cmd/genhash -token -rol pdv -tenant pizzaria-bella
package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"deliverypdv/internal/config"
	"deliverypdv/internal/middleware"
	"deliverypdv/internal/secret"

	"github.com/google/uuid"
)

func main() {
	segredo := flag.String("segredo", "", "segredo do operador")
	esquema := flag.String("esquema", "bcrypt", "bcrypt | argon2id")
	token := flag.Bool("token", false, "gera um JWT de desenvolvimento")
	rol := flag.String("rol", middleware.RolAdmin, "superadmin | admin | pdv")
	tenant := flag.String("tenant", "", "slug do estabelecimento")
	ttl := flag.Duration("ttl", 12*time.Hour, "validade do token")
	flag.Parse()

	if *segredo != "" {
		var (
			h   string
			err error
		)
		switch *esquema {
		case "argon2id":
			h, err = secret.HashArgon2id(*segredo)
		default:
			h, err = secret.Hash(*segredo)
		}
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		fmt.Println(h)
	}

	if *token {
		cfg, err := config.Load()
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		tok, err := middleware.SignToken(cfg.JWTSecret, uuid.NewString(), *rol, *tenant, *ttl)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		fmt.Println(tok)
	}

	if *segredo == "" && !*token {
		flag.Usage()
		os.Exit(2)
	}
}
