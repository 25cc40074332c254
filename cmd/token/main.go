// Command token mints a development access token signed with JWT_SECRET.
package main

import (
	"flag"
	"fmt"
	"os"

	"Lumi_V0.1/internal/auth"
	"github.com/caarlos0/env/v9"
	"github.com/joho/godotenv"
)

type tokenConfig struct {
	Secret string `env:"JWT_SECRET,required,notEmpty"`
}

func main() {
	userID := flag.String("user", "", "user id to put in the token")
	email := flag.String("email", "", "optional email claim")
	name := flag.String("name", "", "optional name claim")
	ttl := flag.Duration("ttl", auth.AccessTokenDuration, "token lifetime")
	flag.Parse()

	if *userID == "" {
		fmt.Fprintln(os.Stderr, "usage: token -user <id> [-email e] [-name n] [-ttl 15m]")
		os.Exit(2)
	}

	_ = godotenv.Load()
	var cfg tokenConfig
	if err := env.Parse(&cfg); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	token, err := auth.NewAccessToken([]byte(cfg.Secret), *userID, *email, *name, *ttl)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	fmt.Println(token)
}

