// Command token mints access tokens for local development and smoke tests.
package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"

	"github.com/iliyamo/tenant-booking/internal/utils"
)

func main() {
	_ = godotenv.Load()

	tenant := flag.Uint64("tenant", 0, "tenant id (required)")
	user := flag.Uint64("user", 0, "user id (required)")
	role := flag.String("role", utils.RoleCustomer, "ADMIN, STAFF or CUSTOMER")
	ttl := flag.Duration("ttl", time.Hour, "token lifetime")
	flag.Parse()

	secret := os.Getenv("JWT_SECRET")
	if secret == "" || *tenant == 0 || *user == 0 {
		flag.Usage()
		fmt.Fprintln(os.Stderr, "JWT_SECRET, -tenant and -user are required")
		os.Exit(2)
	}
	tok, err := utils.NewAccessToken(secret, *tenant, *user, *role, *ttl)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	fmt.Println(tok.Token)
}
