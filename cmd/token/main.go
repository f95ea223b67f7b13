package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/joho/godotenv"

	"gorecords/internal/domain"
	"gorecords/internal/pkg/token"
)

// Emite um JWT para chamar as rotas de escrita quando AUTH_ENABLED=true.
func main() {
	_ = godotenv.Load()

	userID := flag.String("user", "", "ID (UUID) do chamador")
	role := flag.String("role", string(domain.RoleCustomer), "ADMIN ou CUSTOMER")
	secret := flag.String("secret", os.Getenv("JWT_SECRET_KEY"), "chave HMAC (padrão: JWT_SECRET_KEY)")
	expiry := flag.Duration("expiry", time.Hour, "validade do token")
	flag.Parse()

	if err := uuid.Validate(*userID); err != nil {
		log.Fatalf("-user deve ser um UUID válido: %v", err)
	}
	parsedRole, ok := domain.ParseUserRole(*role)
	if !ok {
		log.Fatalf("-role inválida: %q", *role)
	}
	if *secret == "" {
		log.Fatal("JWT_SECRET_KEY não definido e -secret não informado")
	}

	signed, err := token.NewService(*secret, *expiry).GenerateToken(*userID, string(parsedRole))
	if err != nil {
		log.Fatalf("%v", err)
	}
	fmt.Println(signed)
}
