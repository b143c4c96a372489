package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"time"

	"ipgeo-client/internal/app"
	"ipgeo-client/internal/config"
	"ipgeo-client/internal/mapview"
	"ipgeo-client/internal/mapview/osm"
	"ipgeo-client/internal/models"
	"ipgeo-client/internal/service"

	"github.com/rs/zerolog/log"
)

const mapContainer = "map"

const usage = `usage: geoclient <command> [arguments]

commands:
  login -email E -password P   sign in
  logout                       sign out
  whoami                       show the signed-in user
  lookup [ip]                  show your location, or the location of ip
  history                      list past searches
  history show <id>            show a past search
  history delete <id>...       delete entries (or --all)
  history clear                delete every entry
`

func main() {
	configDir := flag.String("config", "./configs", "Directory containing app.env")
	flag.Usage = func() { fmt.Fprint(os.Stderr, usage) }
	flag.Parse()

	if flag.NArg() == 0 {
		flag.Usage()
		os.Exit(2)
	}

	cfg, err := config.LoadConfig(*configDir)
	if err != nil {
		log.Fatal().Err(err).Msg("cannot load config")
	}
	log.Logger = app.NewLogger(cfg.LogLevel)

	ctx := context.Background()
	client, err := app.NewClient(ctx, cfg, log.Logger)
	if err != nil {
		log.Fatal().Err(err).Msg("cannot open client state")
	}
	defer client.Close()

	if err := run(ctx, client, os.Stdout, flag.Args()); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		client.Close()
		os.Exit(1)
	}
}

func run(ctx context.Context, client *app.Client, out io.Writer, args []string) error {
	login := service.NewLoginService(client.Auth, client.Session)

	switch args[0] {
	case "login":
		return runLogin(ctx, login, out, args[1:])
	case "logout":
		login.Logout(ctx)
		fmt.Fprintln(out, "Signed out")
		return nil
	case "whoami":
		user, ok := client.Session.User()
		if !ok {
			return service.ErrNotSignedIn
		}
		fmt.Fprintf(out, "%s %s\n", user.Email, dash(user.Name))
		return nil
	}

	// Everything below needs a session.
	if err := login.RequireSession(); err != nil {
		return fmt.Errorf("%w, run geoclient login first", err)
	}

	switch args[0] {
	case "lookup":
		return runLookup(ctx, client, out, args[1:])
	case "history":
		return runHistory(ctx, client, out, args[1:])
	default:
		return fmt.Errorf("unknown command %q", args[0])
	}
}

func runLogin(ctx context.Context, login *service.LoginService, out io.Writer, args []string) error {
	fs := flag.NewFlagSet("login", flag.ContinueOnError)
	email := fs.String("email", "", "Account email")
	password := fs.String("password", "", "Account password")
	if err := fs.Parse(args); err != nil {
		return err
	}

	user, err := login.Login(ctx, *email, *password)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "Signed in as %s\n", user.Email)
	return nil
}

// page is one mounted home view: coordinator, map controller and widget.
type page struct {
	home   *service.HomeService
	widget *osm.Widget
}

// openPage mounts the home view. A failed baseline lookup is returned as
// baselineErr alongside a usable page; only a view that went inactive fails.
func openPage(ctx context.Context, client *app.Client) (p *page, baselineErr error, err error) {
	widget := osm.NewWidget()
	viewport := mapview.NewController(widget, client.Log)
	home := service.NewHomeService(client.Geo, client.History, viewport, client.Log)
	if err := home.Activate(ctx, mapContainer); err != nil {
		if errors.Is(err, service.ErrInactive) {
			home.Deactivate()
			return nil, nil, err
		}
		client.Log.Debug().Err(err).Msg("baseline lookup failed")
		baselineErr = err
	}
	return &page{home: home, widget: widget}, baselineErr, nil
}

// pageError carries the message the page shows for err.
type pageError struct {
	msg string
	err error
}

func (e *pageError) Error() string { return e.msg }
func (e *pageError) Unwrap() error { return e.err }

func (p *page) fail(err error) error {
	if msg := p.home.State().Error; msg != "" {
		return &pageError{msg: msg, err: err}
	}
	return err
}

func (p *page) render(out io.Writer) {
	state := p.home.State()
	rec, ok := state.Current.Get()
	if !ok {
		fmt.Fprintln(out, "No location")
		return
	}
	printRecord(out, rec)
	if _, _, hasLoc := rec.Coordinates(); !hasLoc {
		return
	}
	if m := p.widget.Current(); m != nil && !m.Destroyed() {
		fmt.Fprintln(out, "Map:     ", m.Summary())
		fmt.Fprintln(out, "          "+m.Link())
	}
}

func runLookup(ctx context.Context, client *app.Client, out io.Writer, args []string) error {
	p, baselineErr, err := openPage(ctx, client)
	if err != nil {
		return err
	}
	defer p.home.Deactivate()

	if len(args) == 0 && baselineErr != nil {
		return p.fail(baselineErr)
	}
	if len(args) > 0 {
		p.home.SetInput(args[0])
		if err := p.home.Search(ctx); err != nil {
			return p.fail(err)
		}
	}
	p.render(out)
	return nil
}

func runHistory(ctx context.Context, client *app.Client, out io.Writer, args []string) error {
	if len(args) == 0 {
		printHistory(out, client.History.Entries())
		return nil
	}

	switch args[0] {
	case "show":
		if len(args) < 2 {
			return errors.New("history show needs an entry id")
		}
		entry, ok := findEntry(client.History.Entries(), args[1])
		if !ok {
			return fmt.Errorf("no history entry %q", args[1])
		}
		p, _, err := openPage(ctx, client)
		if err != nil {
			return err
		}
		defer p.home.Deactivate()
		p.home.SelectEntry(entry)
		p.render(out)
		return nil

	case "delete":
		fs := flag.NewFlagSet("history delete", flag.ContinueOnError)
		all := fs.Bool("all", false, "Delete every entry")
		if err := fs.Parse(args[1:]); err != nil {
			return err
		}
		if *all {
			client.History.ToggleAll()
		} else {
			for _, id := range fs.Args() {
				client.History.Toggle(id)
			}
		}
		if len(client.History.Selected()) == 0 {
			fmt.Fprintln(out, service.MsgNothingSelected)
			return nil
		}
		removed := len(client.History.Selected())
		client.History.Remove(ctx, client.History.Selected()...)
		client.History.ClearSelection()
		fmt.Fprintf(out, "Deleted %d entries\n", removed)
		return nil

	case "clear":
		client.History.Clear(ctx)
		fmt.Fprintln(out, "History cleared")
		return nil

	default:
		return fmt.Errorf("unknown history command %q", args[0])
	}
}

func findEntry(entries []models.HistoryEntry, id string) (models.HistoryEntry, bool) {
	for _, e := range entries {
		if e.ID == id {
			return e, true
		}
	}
	return models.HistoryEntry{}, false
}

func printRecord(out io.Writer, r models.GeoRecord) {
	fmt.Fprintln(out, "IP:      ", dash(r.IP))
	fmt.Fprintln(out, "City:    ", dash(r.City))
	fmt.Fprintln(out, "Region:  ", dash(r.Region))
	fmt.Fprintln(out, "Country: ", dash(r.Country))
	fmt.Fprintln(out, "Postal:  ", dash(r.Postal))
	fmt.Fprintln(out, "Org:     ", dash(r.Org))
	fmt.Fprintln(out, "Timezone:", dash(r.Timezone))
	fmt.Fprintln(out, "Location:", dash(r.Loc))
}

func printHistory(out io.Writer, entries []models.HistoryEntry) {
	if len(entries) == 0 {
		fmt.Fprintln(out, service.MsgNoHistory)
		return
	}
	for _, e := range entries {
		place := ""
		if e.GeoData.City != "" {
			place = e.GeoData.City + ", " + e.GeoData.Country
		}
		when := time.UnixMilli(e.Timestamp).Format(time.DateTime)
		fmt.Fprintf(out, "%s  %-39s  %-30s  %s\n", e.ID, e.IP, dash(place), when)
	}
}

func dash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
