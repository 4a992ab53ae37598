package opensubtitles

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/kolo/xmlrpc"
	"github.com/quintans/faults"

	"github.com/streamkit/popcorn/internal/app"
	"github.com/streamkit/popcorn/internal/model"
)

const (
	endpoint     = "https://api.opensubtitles.org/xml-rpc"
	userAgent    = "Popcorn Time v1"
	defaultLimit = 300
	statusOK     = "200 OK"
)

// Client talks the XML-RPC dialect of the subtitle service. Anonymous login
// works with empty credentials; a registered account lifts rate limits.
type Client struct {
	rpc      *xmlrpc.Client
	username string
	password string
}

func New(username, password string) (*Client, error) {
	rpc, err := xmlrpc.NewClient(endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("creating xml-rpc client: %w", err)
	}
	return &Client{
		rpc:      rpc,
		username: username,
		password: password,
	}, nil
}

type loginReply struct {
	Token  string `xmlrpc:"token"`
	Status string `xmlrpc:"status"`
}

// Login implements app.SubtitlesClient. The returned token authenticates
// subsequent searches for the session.
func (c *Client) Login(ctx context.Context) (string, error) {
	var reply loginReply
	err := c.call(ctx, "LogIn", []any{c.username, c.password, "en", userAgent}, &reply)
	if err != nil {
		return "", fmt.Errorf("logging in: %w", err)
	}
	if reply.Status != statusOK {
		return "", faults.Errorf("login rejected: %s", reply.Status)
	}
	return reply.Token, nil
}

type searchReply struct {
	Status string        `xmlrpc:"status"`
	Data   []subtitleRow `xmlrpc:"data"`
}

type subtitleRow struct {
	LanguageName    string `xmlrpc:"LanguageName"`
	ISO639          string `xmlrpc:"ISO639"`
	SubDownloadLink string `xmlrpc:"SubDownloadLink"`
}

// Search implements app.SubtitlesClient. Results are deduplicated per
// language, first hit wins, and returned sorted by language name.
func (c *Client) Search(ctx context.Context, query app.SubtitleQuery) ([]model.Subtitle, error) {
	params := map[string]any{"sublanguageid": "all"}
	if query.ImdbID != "" {
		// the service wants the bare number, without the tt prefix
		params["imdbid"] = strings.TrimPrefix(query.ImdbID, "tt")
	} else {
		params["query"] = query.Query
		params["season"] = query.Season
		params["episode"] = query.Episode
	}

	limit := query.Limit
	if limit <= 0 {
		limit = defaultLimit
	}

	var reply searchReply
	err := c.call(ctx, "SearchSubtitles", []any{query.Token, []any{params}, map[string]any{"limit": limit}}, &reply)
	if err != nil {
		return nil, fmt.Errorf("searching subtitles: %w", err)
	}
	if reply.Status != statusOK {
		return nil, faults.Errorf("search rejected: %s", reply.Status)
	}

	seen := map[string]struct{}{}
	var subtitles []model.Subtitle
	for _, row := range reply.Data {
		if row.LanguageName == "" || row.SubDownloadLink == "" {
			continue
		}
		if _, ok := seen[row.LanguageName]; ok {
			continue
		}
		seen[row.LanguageName] = struct{}{}
		subtitles = append(subtitles, model.Subtitle{
			Language: row.LanguageName,
			Link:     row.SubDownloadLink,
			ISO639:   row.ISO639,
		})
	}
	slices.SortFunc(subtitles, func(a, b model.Subtitle) int {
		return strings.Compare(a.Language, b.Language)
	})

	return subtitles, nil
}

// call runs an rpc in a goroutine so a cancelled context does not leave the
// caller blocked on the wire.
func (c *Client) call(ctx context.Context, method string, args []any, reply any) error {
	done := make(chan error, 1)
	go func() {
		done <- c.rpc.Call(method, args, reply)
	}()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case err := <-done:
		return err
	}
}
