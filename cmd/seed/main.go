package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sort"

	"github.com/charmbracelet/log"
	"github.com/sahilchouksey/mentor-hub-api/config"
	"github.com/sahilchouksey/mentor-hub-api/database"
	"github.com/sahilchouksey/mentor-hub-api/services"
	"github.com/sahilchouksey/mentor-hub-api/utils"
	"github.com/urfave/cli/v3"
)

func main() {
	app := &cli.Command{
		Name:  "mentor-hub-seed",
		Usage: "Seed, export and bootstrap the mentor hub storage",
		Commands: []*cli.Command{
			{
				Name:  "seed",
				Usage: "Insert seed records into collections that are still empty",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "file",
						Aliases: []string{"f"},
						Usage:   "Path to the TOML seed file",
						Value:   "seed.toml",
					},
				},
				Action: runSeed,
			},
			{
				Name:  "export",
				Usage: "Dump every collection of the active backend as flat JSON files",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "dir",
						Aliases: []string{"d"},
						Usage:   "Output directory",
						Value:   "export",
					},
				},
				Action: runExport,
			},
			{
				Name:  "create-admin",
				Usage: "Create the bootstrap admin user if no admin exists",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "password",
						Usage: "Admin password (defaults to ADMIN_PASSWORD, generated when empty)",
					},
					&cli.StringFlag{
						Name:  "email",
						Usage: "Admin email (defaults to ADMIN_EMAIL)",
					},
				},
				Action: runCreateAdmin,
			},
		},
	}

	if err := app.Run(context.Background(), os.Args); err != nil {
		log.Error("command failed", "err", err)
		os.Exit(1)
	}
}

// open loads the environment and connects to the configured backend.
func open(ctx context.Context) (*config.EnviornmentVariable, *services.Services, func(), error) {
	if err := config.LoadENV(); err != nil {
		return nil, nil, nil, err
	}
	env, err := config.Get()
	if err != nil {
		return nil, nil, nil, err
	}
	utils.SetupLogger(env.LOG_LEVEL, false)

	store, err := database.Open(ctx, env)
	if err != nil {
		return nil, nil, nil, err
	}
	svc, err := services.New(store, services.Options{})
	if err != nil {
		store.Close()
		return nil, nil, nil, err
	}
	return env, svc, func() { store.Close() }, nil
}

func runSeed(ctx context.Context, cmd *cli.Command) error {
	data, err := services.LoadSeedFile(cmd.String("file"))
	if err != nil {
		return err
	}

	_, svc, closeFn, err := open(ctx)
	if err != nil {
		return err
	}
	defer closeFn()

	report, err := services.NewSeeder(svc).SeedAll(ctx, data)
	printCounts("seeded", report)
	return err
}

func runExport(ctx context.Context, cmd *cli.Command) error {
	_, svc, closeFn, err := open(ctx)
	if err != nil {
		return err
	}
	defer closeFn()

	if svc.Store.Mode() == database.ModeFile && sameDir(cmd.String("dir"), svc.Store) {
		return errors.New("export directory is the active data directory")
	}

	counts, err := database.Export(ctx, svc.Store, cmd.String("dir"))
	printCounts("exported", counts)
	return err
}

func runCreateAdmin(ctx context.Context, cmd *cli.Command) error {
	env, svc, closeFn, err := open(ctx)
	if err != nil {
		return err
	}
	defer closeFn()

	password := cmd.String("password")
	if password == "" {
		password = env.ADMIN_PASSWORD
	}
	email := cmd.String("email")
	if email == "" {
		email = env.ADMIN_EMAIL
	}

	user, err := services.NewSeeder(svc).EnsureAdminUser(ctx, password, email)
	if err != nil {
		return err
	}
	if user == nil {
		fmt.Println("an admin user already exists")
		return nil
	}
	fmt.Printf("created admin user %q\n", user.Username)
	return nil
}

func sameDir(dir string, store database.Storage) bool {
	fs, ok := store.(*database.FileStore)
	if !ok {
		return false
	}
	a, errA := os.Stat(dir)
	b, errB := os.Stat(fs.Dir())
	return errA == nil && errB == nil && os.SameFile(a, b)
}

func printCounts(verb string, counts map[string]int) {
	names := make([]string, 0, len(counts))
	for name := range counts {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Printf("%s %-24s %d\n", verb, name, counts[name])
	}
}
