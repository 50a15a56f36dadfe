// Package main provides admin management utilities for the admin hub.
//
// Account commands (promote, demote, list-admins) talk to the database
// directly. Moderation commands go through the REST API at ADMIN_API_URL
// using ADMIN_API_TOKEN, the same way the console does.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/url"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"text/tabwriter"
	"time"

	"adminhub/internal/adminclient"
	"adminhub/internal/config"
	"adminhub/internal/database"
	"adminhub/internal/eventqueue"
	"adminhub/internal/repository"
	"adminhub/internal/service"

	"github.com/gorilla/websocket"
)

// errReported marks failures the moderator already printed as a notice.
var errReported = errors.New("reported")

func usage() {
	fmt.Println("Usage:")
	fmt.Println("  go run ./cmd/admin promote <user_id>           - Promote user to admin")
	fmt.Println("  go run ./cmd/admin demote <user_id>            - Demote user from admin")
	fmt.Println("  go run ./cmd/admin list-admins                 - List all admins")
	fmt.Println("  go run ./cmd/admin login <email> <password>    - Print an API token")
	fmt.Println("  go run ./cmd/admin queue [flags]               - Show the moderation queue")
	fmt.Println("  go run ./cmd/admin approve <event_id>          - Approve a pending post")
	fmt.Println("  go run ./cmd/admin reject <event_id> [reason]  - Reject a pending post")
	fmt.Println("  go run ./cmd/admin delete <event_id>           - Delete a post")
	fmt.Println("  go run ./cmd/admin watch                       - Stream the live admin feed")
}

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(1)
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	command, args := os.Args[1], os.Args[2:]
	switch command {
	case "promote", "demote", "list-admins":
		err = runAccountCommand(ctx, cfg, command, args)
	case "login", "queue", "approve", "reject", "delete", "watch":
		err = runAPICommand(ctx, cfg, command, args)
	default:
		usage()
		os.Exit(1)
	}
	if err != nil {
		if !errors.Is(err, errReported) {
			fmt.Printf("❌ %v\n", err)
		}
		os.Exit(1)
	}
}

func parseID(args []string, command string) (uint, error) {
	if len(args) < 1 {
		return 0, fmt.Errorf("usage: go run ./cmd/admin %s <id>", command)
	}
	id, err := strconv.ParseUint(args[0], 10, 64)
	if err != nil || id == 0 {
		return 0, fmt.Errorf("invalid id %q", args[0])
	}
	return uint(id), nil
}

func runAccountCommand(ctx context.Context, cfg *config.Config, command string, args []string) error {
	db, err := database.Connect(cfg)
	if err != nil {
		return fmt.Errorf("connect database: %w", err)
	}
	// no acting admin exists to attribute in the activity log
	users := service.NewUserService(repository.NewUserRepository(db), nil, nil, cfg.JWTSecret)
	system := service.Actor{IP: "cli"}

	switch command {
	case "list-admins":
		admins, err := users.ListAdmins(ctx)
		if err != nil {
			return err
		}
		if len(admins) == 0 {
			fmt.Println("No admins found in the system")
			return nil
		}
		fmt.Printf("Found %d admin(s):\n", len(admins))
		for _, admin := range admins {
			fmt.Printf("  - %s (ID: %d, Email: %s)\n", admin.Username, admin.ID, admin.Email)
		}
		return nil

	default:
		id, err := parseID(args, command)
		if err != nil {
			return err
		}
		promote := command == "promote"
		user, err := users.SetAdmin(ctx, system, id, promote)
		if err != nil {
			return err
		}
		verb := "demoted"
		if promote {
			verb = "promoted"
		}
		fmt.Printf("✅ Successfully %s %s (ID: %d)\n", verb, user.Username, user.ID)
		return nil
	}
}

func runAPICommand(ctx context.Context, cfg *config.Config, command string, args []string) error {
	base := cfg.AdminAPIURL
	if base == "" {
		base = "http://localhost:" + cfg.Port + "/admin/v1"
	}
	client := adminclient.New(base, adminclient.WithToken(cfg.AdminAPIToken))

	if command == "login" {
		if len(args) < 2 {
			return errors.New("usage: go run ./cmd/admin login <email> <password>")
		}
		res, err := client.Login(ctx, args[0], args[1])
		if err != nil {
			return err
		}
		fmt.Printf("ADMIN_API_TOKEN=%s\n# expires %s\n", res.Token, res.ExpiresAt.Format(time.RFC3339))
		return nil
	}
	if cfg.AdminAPIToken == "" {
		return errors.New("ADMIN_API_TOKEN is not set; run the login command first")
	}

	moderator := adminclient.NewModerator(client, nil, adminclient.NoticeFunc(func(n adminclient.Notice) {
		icon := "✅"
		if n.Level == adminclient.NoticeError {
			icon = "❌"
		}
		fmt.Printf("%s %s\n", icon, n.Message)
	}))

	switch command {
	case "queue":
		return printQueue(ctx, moderator, args)
	case "watch":
		return watch(ctx, base, cfg.AdminAPIToken)
	}

	id, err := parseID(args, command)
	if err != nil {
		return err
	}
	switch command {
	case "approve":
		err = moderator.Approve(ctx, id)
	case "reject":
		err = moderator.Reject(ctx, id, strings.Join(args[1:], " "))
	default:
		err = moderator.Delete(ctx, id)
	}
	if err != nil && !errors.Is(err, adminclient.ErrInFlight) {
		return errReported
	}
	return err
}

func printQueue(ctx context.Context, moderator *adminclient.Moderator, args []string) error {
	fs := flag.NewFlagSet("queue", flag.ContinueOnError)
	status := fs.String("status", "pending", "pending, approved, rejected or all")
	category := fs.String("category", "", "category name")
	search := fs.String("search", "", "free-text search")
	city := fs.String("city", "", "city")
	lat := fs.Float64("lat", 0, "origin latitude")
	lng := fs.Float64("lng", 0, "origin longitude")
	distance := fs.Float64("distance", 0, "radius in km around lat/lng")
	if err := fs.Parse(args); err != nil {
		return err
	}

	criteria := eventqueue.Criteria{Status: *status, Category: *category, Search: *search, City: *city}
	if *distance > 0 {
		criteria.Origin = &eventqueue.Point{Lat: *lat, Lng: *lng}
		criteria.DistanceKM = distance
	}

	items, err := moderator.Queue(ctx, criteria)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tSTATUS\tTYPE\tCATEGORY\tCITY\tTIME\tTITLE")
	for _, it := range items {
		status := it.Status
		if it.IsDraft {
			status = "Draft"
		}
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\t%s\t%s\n",
			it.ID, status, it.PostType, it.Category, it.City, it.EventTime.Format("2006-01-02 15:04"), it.Title)
	}
	if err := w.Flush(); err != nil {
		return err
	}
	fmt.Printf("%d item(s)\n", len(items))
	return nil
}

func watch(ctx context.Context, base, token string) error {
	u, err := url.Parse(base)
	if err != nil {
		return fmt.Errorf("invalid ADMIN_API_URL: %w", err)
	}
	switch u.Scheme {
	case "https":
		u.Scheme = "wss"
	default:
		u.Scheme = "ws"
	}
	u.Path = strings.TrimRight(u.Path, "/") + "/ws"
	u.RawQuery = url.Values{"token": {token}}.Encode()

	conn, resp, err := websocket.DefaultDialer.DialContext(ctx, u.String(), nil)
	if err != nil {
		if resp != nil {
			return fmt.Errorf("feed handshake failed: %s", resp.Status)
		}
		return fmt.Errorf("connect feed: %w", err)
	}
	defer func() { _ = conn.Close() }()

	go func() {
		<-ctx.Done()
		_ = conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), time.Now().Add(time.Second))
		_ = conn.Close()
	}()

	fmt.Println("📡 watching the admin feed (Ctrl+C to stop)")
	for {
		_, msg, err := conn.ReadMessage()
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return fmt.Errorf("feed closed: %w", err)
		}
		fmt.Printf("%s %s\n", time.Now().Format("15:04:05"), msg)
	}
}
