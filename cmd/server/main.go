package main

import (
	"context"
	"flag"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/gorilla/handlers"
	"github.com/rs/cors"
	"github.com/sirupsen/logrus"

	"pineapplepoker-server/internal/config"
	"pineapplepoker-server/internal/jwt"
	"pineapplepoker-server/internal/mux"
	"pineapplepoker-server/pkg/bot"
	"pineapplepoker-server/pkg/db"
	"pineapplepoker-server/pkg/engine"
	"pineapplepoker-server/pkg/room"
	"pineapplepoker-server/pkg/store"
)

const readTimeout = time.Second * 5
const writeTimeout = time.Second * 10
const janitorInterval = time.Hour

// Version is the server version
var Version = "v0.0.0-dev"

var addr = flag.String("addr", "", "the listen address (overrides the config)")

func main() {
	flag.Parse()
	setupLogger()

	// fail fast
	jwt.LoadKeys()

	cfg := config.Instance()

	listenAddr := cfg.ListenAddr
	if *addr != "" {
		listenAddr = *addr
	}

	s := newStore(cfg)
	defer s.Close()

	e := engine.New(s, bot.Greedy{}, engine.Options{
		PlacementTimeout: cfg.Game.PlacementTimeout,
		InterRoundDelay:  cfg.Game.InterRoundDelay,
		MaxPlayers:       cfg.Game.MaxPlayers,
		TotalRounds:      cfg.Game.TotalRounds,
	})

	ctx := context.Background()

	dealer := room.NewDealer(e, s, cfg.Game.BotMoveDelay)
	if err := dealer.StartShift(ctx); err != nil {
		logrus.WithError(err).Fatal("could not start dealer")
	}

	room.NewJanitor(s, cfg.Game.RoomRetention, janitorInterval).StartShift(ctx)

	m, err := mux.NewMux(ctx, Version, e, s)
	if err != nil {
		logrus.WithError(err).Fatal("could not create mux")
	}

	c := cors.New(cors.Options{
		AllowedHeaders: []string{"Origin", "Accept", "Content-Type", "X-Requested-With", "Authorization"},
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodDelete},
	})

	srv := &http.Server{
		Addr:         listenAddr,
		Handler:      loggingHandler(c.Handler(m)),
		ReadTimeout:  readTimeout,
		WriteTimeout: writeTimeout,
	}

	logrus.WithField("addr", srv.Addr).Info("listening")
	logrus.Fatal(srv.ListenAndServe())
}

// newStore selects postgres when a DSN is configured, otherwise the
// in-memory store
func newStore(cfg config.Config) store.Store {
	if cfg.PGDSN == "" {
		logrus.Info("no pgDsn configured, using in-memory store")
		return store.NewMemory()
	}

	conn, err := db.Connect(cfg.PGDSN)
	if err != nil {
		logrus.WithError(err).Fatal("could not connect to database")
	}

	db.Migrate(conn, cfg.MigrationsPath)
	return store.NewPostgres(conn, cfg.PGDSN)
}

func loggingHandler(next http.Handler) http.Handler {
	if config.Instance().Log.DisableAccessLogs {
		return next
	}

	return handlers.CombinedLoggingHandler(os.Stdout, next)
}

func setupLogger() {
	if lvl := config.Instance().Log.Level; lvl != "" {
		level, err := logrus.ParseLevel(lvl)
		if err != nil {
			logrus.WithError(err).Fatal("could not parse level")
		}

		logrus.SetLevel(level)
	}

	if strings.ToLower(config.Instance().Log.Format) == "json" {
		logrus.SetFormatter(&logrus.JSONFormatter{})
	}
}
