// Command mealbook-admin issues role tokens, seeds members and applies
// schema migrations.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"mealbook/internal/auth"
	"mealbook/internal/cli"
	"mealbook/internal/config"
	"mealbook/internal/core"
	"mealbook/internal/log"
	"mealbook/internal/services"
	"mealbook/internal/storage"
)

const usage = `usage: mealbook-admin <command> [flags]

commands:
  token    -subject NAME [-role admin|member] [-ttl 720h]   issue a role token
  seed     NAME...                                         add members
  migrate                                                  apply schema migrations
`

func main() {
	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}

	cli.LoadEnvFile()
	logger := cli.SetupLogger(log.ComponentApp)
	cfg := cli.LoadAndValidateConfig(logger)

	var err error
	switch cmd, args := os.Args[1], os.Args[2:]; cmd {
	case "token":
		err = runToken(cfg, args)
	case "seed":
		err = runSeed(logger, cfg, args)
	case "migrate":
		err = runMigrate(logger, cfg)
	default:
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}
	if err != nil {
		logger.Error("Command failed", "command", os.Args[1], "error", err)
		os.Exit(1)
	}
}

func runToken(cfg *config.Config, args []string) error {
	fs := flag.NewFlagSet("token", flag.ExitOnError)
	subject := fs.String("subject", "", "token subject, usually the holder's name")
	role := fs.String("role", string(core.RoleMember), "admin or member")
	ttl := fs.Duration("ttl", cfg.TokenTTL, "token lifetime")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if cfg.JWTSecret == "" {
		return fmt.Errorf("JWT_SECRET is not set")
	}

	token, err := auth.NewJWTManager(cfg.JWTSecret, *ttl).Generate(*subject, core.Role(*role))
	if err != nil {
		return err
	}
	fmt.Println(token)
	return nil
}

func runSeed(logger *log.Logger, cfg *config.Config, names []string) error {
	if len(names) == 0 {
		return fmt.Errorf("seed needs at least one member name")
	}
	repo := cli.InitSQLite(logger, cfg)
	defer repo.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	members := services.NewMemberService(repo)
	for _, name := range names {
		m, err := members.Add(ctx, name)
		if err != nil {
			return fmt.Errorf("add %q: %w", name, err)
		}
		fmt.Printf("%s\t%s\n", m.ID, m.Name)
	}
	return nil
}

func runMigrate(logger *log.Logger, cfg *config.Config) error {
	if err := storage.RunMigrations(cfg.SQLiteDBPath); err != nil {
		return err
	}
	version, dirty, err := storage.SchemaVersion(cfg.SQLiteDBPath)
	if err != nil {
		return err
	}
	logger.Info("Schema up to date", "path", cfg.SQLiteDBPath, "version", version, "dirty", dirty)
	return nil
}
