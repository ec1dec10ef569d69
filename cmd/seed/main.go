package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/joho/godotenv"

	"github.com/fixora/resourcesvc/application/usecase/crud"
	"github.com/fixora/resourcesvc/domain/entity"
	"github.com/fixora/resourcesvc/infrastructure/adapter/postgres"
)

// seed inserts demo resources owned by one actor so the list endpoint has
// something to page through.
func main() {
	owner := flag.String("owner", getenvDefault("SEED_OWNER_ID", "demo-user"), "actor id recorded as created_by")
	count := flag.Int("count", 25, "number of resources to create")
	prefix := flag.String("prefix", "Demo resource", "name prefix")
	flag.Parse()

	_ = godotenv.Load()

	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		log.Fatal("DATABASE_URL environment variable is required")
	}
	if *count < 1 {
		log.Fatal("-count must be positive")
	}

	ctx := context.Background()
	db, err := postgres.Open(ctx, postgres.DBConfig{URL: dsn})
	if err != nil {
		log.Fatalf("failed to connect db: %v", err)
	}
	defer db.Close()

	svc := crud.NewService[*entity.Resource](postgres.NewResourceRepository(db), crud.Options{})

	for i := 1; i <= *count; i++ {
		rec, err := svc.Create(ctx, entity.NewResource(fmt.Sprintf("%s %02d", *prefix, i)), *owner)
		if err != nil {
			log.Fatalf("failed to seed resource %d: %v", i, err)
		}
		fmt.Printf("Seeded resource: id=%s name=%q owner=%s\n", rec.ID, rec.Name, *owner)
	}
}

func getenvDefault(k, d string) string {
	v := os.Getenv(k)
	if v == "" {
		return d
	}
	return v
}
