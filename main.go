package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	gapp "github.com/streamkit/popcorn/internal/app"
	"github.com/streamkit/popcorn/internal/app/services"
	"github.com/streamkit/popcorn/internal/gateways/eventbus"
	"github.com/streamkit/popcorn/internal/gateways/haruhichan"
	"github.com/streamkit/popcorn/internal/gateways/omdb"
	"github.com/streamkit/popcorn/internal/gateways/opensubtitles"
	"github.com/streamkit/popcorn/internal/gateways/popcornapi"
	"github.com/streamkit/popcorn/internal/gateways/repository"
	"github.com/streamkit/popcorn/internal/gateways/secrets"
	"github.com/streamkit/popcorn/internal/gateways/trakt"
	"github.com/streamkit/popcorn/internal/gateways/yts"
	"github.com/streamkit/popcorn/internal/lib/bus"
	"github.com/streamkit/popcorn/internal/model"
	"github.com/streamkit/popcorn/internal/oauth"
)

func main() {
	path, err := os.UserCacheDir()
	if err != nil {
		panic(err)
	}

	cacheDir := filepath.Join(path, gapp.Name)
	err = os.MkdirAll(cacheDir, os.ModePerm)
	if err != nil {
		panic(err)
	}
	slog.Info("cache", "dir", cacheDir)

	db := repository.NewDB(cacheDir)
	if !db.Exists("settings.json") {
		err := db.SaveSettings(model.NewSettings())
		if err != nil {
			panic(fmt.Sprintf("creating settings: %s", err))
		}
	}
	settings, err := db.LoadSettings()
	if err != nil {
		panic(fmt.Sprintf("loading settings: %s", err))
	}

	b := bus.New()
	eventBus := eventbus.New(b)
	bus.Register(b, func(e gapp.NetworkError) {
		slog.Warn("provider unreachable", "provider", e.Provider, "error", e.Err)
	})
	bus.Register(b, func(e gapp.AuthError) {
		slog.Warn("authentication rejected, sign in again", "service", e.Service)
	})

	sec := secrets.NewSecrets(gapp.Name)
	credentials := oauth.NewManager(trakt.OAuthConfig(), sec)
	scrobbler := trakt.New(eventBus, credentials)

	movies := yts.New(eventBus, settings.CatalogPageSize())
	shows := popcornapi.New(eventBus)
	crossRef := omdb.New(settings.OmdbAPIKey())
	animes := haruhichan.New(eventBus, crossRef)

	subtitlesPassword := ""
	if pwd, err := sec.Retrieve("opensubtitles"); err == nil {
		subtitlesPassword = string(pwd)
	}
	subtitles, err := opensubtitles.New(settings.OpenSubtitles.Username, subtitlesPassword)
	if err != nil {
		panic(fmt.Sprintf("creating subtitles client: %s", err))
	}

	details := services.NewDetails(scrobbler, subtitles)
	search := services.NewSearch(movies, shows, animes)

	watchlists := map[model.MediaType]*services.Watchlist{}
	for _, mt := range []model.MediaType{model.Movies, model.Episodes} {
		wl, err := services.NewWatchlist(mt, db, scrobbler)
		if err != nil {
			panic(fmt.Sprintf("creating %s watchlist: %s", mt, err))
		}
		watchlists[mt] = wl
	}

	run(context.Background(), cli{
		movies:     movies,
		shows:      shows,
		animes:     animes,
		search:     search,
		details:    details,
		watchlists: watchlists,
	}, os.Args[1:])
}

type cli struct {
	movies     *yts.Client
	shows      *popcornapi.Client
	animes     *haruhichan.Client
	search     *services.Search
	details    *services.Details
	watchlists map[model.MediaType]*services.Watchlist
}

func run(ctx context.Context, c cli, args []string) {
	if len(args) == 0 {
		usage()
		return
	}

	switch args[0] {
	case "movies":
		movies, err := c.movies.Load(ctx, 1, yts.Trending, yts.All, strings.Join(args[1:], " "))
		if err != nil {
			slog.Error("loading movies", "error", err)
			return
		}
		for _, m := range movies {
			fmt.Printf("%s (%d)  %.1f/5  %s\n", m.Title, m.Year, m.Rating, m.ImdbID)
		}
	case "shows":
		shows, err := c.shows.Load(ctx, 1, popcornapi.Trending, "", strings.Join(args[1:], " "))
		if err != nil {
			slog.Error("loading shows", "error", err)
			return
		}
		for _, s := range shows {
			fmt.Printf("%s (%s)  %.1f/5  %s\n", s.Title, s.Year, s.Rating, s.ImdbID)
		}
	case "anime":
		animes, err := c.animes.Load(ctx, 1, haruhichan.Popularity, "", strings.Join(args[1:], " "))
		if err != nil {
			slog.Error("loading anime", "error", err)
			return
		}
		for _, a := range animes {
			fmt.Printf("%s (%s)  %s\n", a.Title, a.Year, a.ImdbID)
		}
	case "search":
		if len(args) < 2 {
			usage()
			return
		}
		for result := range c.search.Search(ctx, strings.Join(args[1:], " ")) {
			if result.Err != nil {
				slog.Warn("provider search failed", "provider", result.Provider, "error", result.Err)
				continue
			}
			for _, item := range result.Items {
				switch {
				case item.Movie != nil:
					fmt.Printf("[%s] %s (%d)\n", result.Provider, item.Movie.Title, item.Movie.Year)
				case item.Show != nil:
					fmt.Printf("[%s] %s (%s)\n", result.Provider, item.Show.Title, item.Show.Year)
				}
			}
		}
	case "watched":
		if len(args) < 2 {
			usage()
			return
		}
		mediaType, err := model.ParseMediaType(args[1])
		if err != nil {
			slog.Error("unknown media type", "type", args[1])
			return
		}
		wl, ok := c.watchlists[mediaType]
		if !ok {
			slog.Error("no watchlist for media type", "type", args[1])
			return
		}
		for ids := range wl.Watched(ctx) {
			fmt.Printf("%d watched: %s\n", len(ids), strings.Join(ids, ", "))
		}
	default:
		usage()
	}
}

func usage() {
	fmt.Printf("usage: %s <movies|shows|anime|search|watched> [query]\n", gapp.Name)
}
