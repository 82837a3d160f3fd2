package cli

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"

	"thingmadurinn/internal/config"
	"thingmadurinn/internal/domain"
	"thingmadurinn/internal/infra/memory"
	pgstore "thingmadurinn/internal/infra/postgres"
	redisstore "thingmadurinn/internal/infra/redis"
	sqlitestore "thingmadurinn/internal/infra/sqlite"
	"thingmadurinn/internal/quiz"
	"thingmadurinn/internal/token"
	transport "thingmadurinn/internal/transport/http"
)

// NewServeCmd builds the CLI subcommand to start the server.
func NewServeCmd(configPath, port *string) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the quiz server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer(cmd.Context(), *configPath, *port)
		},
	}
}

func runServer(ctx context.Context, configPath, portFlag string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	finalPort := portFlag
	if finalPort == "" {
		finalPort = cfg.Server.Port
	}
	if finalPort == "" {
		finalPort = "8080"
	}

	secret := cfg.TokenSecret()
	if secret == config.DefaultTokenSecret {
		log.Printf("warning: using the default token secret; set token.secret or TOKEN_SECRET before deploying")
	}

	var (
		members quiz.MemberRepository
		scores  quiz.ScoreStore
	)
	switch {
	case cfg.Postgres.URL != "":
		if err := runMigrationsWithConfig(ctx, cfg); err != nil {
			return err
		}
		pool, err := pgxpool.Connect(ctx, cfg.Postgres.URL)
		if err != nil {
			return err
		}
		defer pool.Close()
		members = pgstore.NewMemberRepository(pool)
		scores = pgstore.NewScoreStore(pool)
	case cfg.SQLite.Path != "":
		db, err := sqlitestore.Open(ctx, cfg.SQLite.Path)
		if err != nil {
			return err
		}
		defer db.Close()
		members = sqlitestore.NewMemberRepository(db)
		scores = sqlitestore.NewScoreStore(db)
	default:
		log.Printf("no database configured, serving the built-in demo corpus")
		members = memory.NewMemberRepository(demoMembers(), demoAffiliations())
		scores = memory.NewScoreStore()
	}

	if cfg.Redis.Addr != "" {
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		scores = redisstore.NewScoreCache(client, scores, config.TTLDuration(cfg.Redis.TTL, 5*time.Minute))
	}

	hub := quiz.NewScoreHub()
	quizSvc := quiz.NewService(members, token.NewCodec(secret))
	scoreSvc := quiz.NewScoreService(scores, hub)
	handler := transport.NewHandler(quizSvc, scoreSvc, hub)

	server := &http.Server{
		Addr:         ":" + finalPort,
		Handler:      handler.Routes(cfg.CORS.Origins),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}

	go func() {
		log.Printf("starting quiz service on :%s", finalPort)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Printf("failed to start server: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-stop:
		log.Println("shutting down server...")
	case <-ctx.Done():
		log.Println("context canceled, shutting down server...")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}

// demoMembers is a tiny corpus so the service can be tried without running
// the ingestion tool; swap in sqlite or postgres for the real dataset.
func demoMembers() []domain.Member {
	return []domain.Member{
		{ID: 1, Name: "Jón Jónsson", Birthdate: "1962-04-11", ImageURL: "https://www.althingi.is/myndir/thingmenn-cache/1/1-400.jpg"},
		{ID: 2, Name: "Guðrún Jónsdóttir", Birthdate: "1970-09-02", ImageURL: "https://www.althingi.is/myndir/thingmenn-cache/2/2-400.jpg"},
		{ID: 3, Name: "Einar Gunnarsson", Birthdate: "1955-01-23", ImageURL: "https://www.althingi.is/myndir/thingmenn-cache/3/3-400.jpg"},
		{ID: 4, Name: "Sigríður Einarsdóttir", Birthdate: "1981-06-30", ImageURL: "https://www.althingi.is/myndir/thingmenn-cache/4/4-400.jpg"},
		{ID: 5, Name: "Ólafur Þórsson", Birthdate: "1948-12-05", ImageURL: "https://www.althingi.is/myndir/thingmenn-cache/5/5-400.jpg"},
		{ID: 6, Name: "Helga Björnsdóttir", Birthdate: "1975-03-17", ImageURL: "https://www.althingi.is/myndir/thingmenn-cache/6/6-400.jpg"},
	}
}

func demoAffiliations() map[int64][]domain.Affiliation {
	id := func(v int64) *int64 { return &v }
	return map[int64][]domain.Affiliation{
		1: {{MemberID: 1, Term: 150, PartyID: id(35), Party: "Sjálfstæðisflokkur"}},
		2: {{MemberID: 2, Term: 150, PartyID: id(38), Party: "Samfylkingin"}},
		3: {{MemberID: 3, Term: 149, PartyID: id(23), Party: "Framsóknarflokkur"}},
		4: {{MemberID: 4, Term: 150, PartyID: id(47), Party: "Vinstrihreyfingin - grænt framboð"}},
		5: {{MemberID: 5, Term: 148, Party: "Alþýðuflokkur"}},
		6: {{MemberID: 6, Term: 150, PartyID: id(52), Party: "Píratar"}},
	}
}
