package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/madhava-poojari/learnsphere/internal/config"
	"github.com/madhava-poojari/learnsphere/internal/service"
	"github.com/madhava-poojari/learnsphere/internal/store"
)

func main() {
	file := flag.String("file", "", "seed YAML file (default: the embedded demo data)")
	student := flag.String("student", "", "create one student instead of seeding: email,first[,last]")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	if cfg.StoreDriver != config.StorePostgres {
		fmt.Println("Usage: STORE_DRIVER=postgres go run cmd/seed/main.go [-file seed.yaml] [-student email,first,last]")
		os.Exit(1)
	}

	repo, err := store.Open(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	defer repo.Close()
	ctx := context.Background()

	if *student != "" {
		parts := strings.Split(*student, ",")
		if len(parts) < 2 {
			fmt.Fprintln(os.Stderr, "Error: -student expects email,first[,last]")
			os.Exit(1)
		}
		last := ""
		if len(parts) > 2 {
			last = strings.TrimSpace(parts[2])
		}
		u, err := service.NewUserService(repo).CreateStudent(ctx, parts[0], strings.TrimSpace(parts[1]), last)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		fmt.Println(u.ID)
		return
	}

	seed, err := store.LoadSeed(*file)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	if err := seed.Apply(ctx, repo); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("seeded %d courses, %d users\n", len(seed.Courses), len(seed.Users))
}
