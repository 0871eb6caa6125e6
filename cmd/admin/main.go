// Package main provides admin management utilities for Postboard.
package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"postboard/internal/bootstrap"
	"postboard/internal/config"
	"postboard/internal/middleware"
	"postboard/internal/repository"
	"postboard/internal/service"
)

func usage() {
	fmt.Println("Usage:")
	fmt.Println("  go run ./cmd/admin hash-password <password>          - Print a bcrypt hash for ADMIN_PASSWORD_HASH")
	fmt.Println("  go run ./cmd/admin token [hours]                     - Issue an admin bearer token")
	fmt.Println("  go run ./cmd/admin ban <ip> [reason]                 - Ban a visitor address")
	fmt.Println("  go run ./cmd/admin unban <ip>                        - Lift a ban")
	fmt.Println("  go run ./cmd/admin moderate <post_id> <status>       - Set active|flagged|deleted|hard_delete")
	fmt.Println("  go run ./cmd/admin flagged                           - List flagged posts")
	fmt.Println("  go run ./cmd/admin banned                            - List banned addresses")
	fmt.Println("  go run ./cmd/admin stats                             - Print dashboard totals")
}

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(1)
	}
	command := os.Args[1]

	// hash-password needs no configuration
	if command == "hash-password" {
		if len(os.Args) < 3 {
			fmt.Println("Usage: go run ./cmd/admin hash-password <password>")
			os.Exit(1)
		}
		hash, err := service.HashAdminPassword(os.Args[2])
		if err != nil {
			log.Fatalf("Failed to hash password: %v", err)
		}
		fmt.Println(hash)
		return
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	if command == "token" {
		issueToken(cfg)
		return
	}

	db, _, err := bootstrap.InitRuntime(cfg, bootstrap.Options{})
	if err != nil {
		log.Fatalf("Failed to initialize runtime: %v", err)
	}
	timeout := service.TuningFromConfig(cfg).LockTimeout
	mod := service.NewModerationService(
		repository.NewPostRepository(db, timeout),
		repository.NewReportRepository(db, timeout),
		repository.NewBlocklistRepository(db),
	)
	ctx := context.Background()

	switch command {
	case "ban":
		requireArgs(3, "ban <ip> [reason]")
		reason := strings.Join(os.Args[3:], " ")
		if err := mod.BanIdentity(ctx, os.Args[2], reason); err != nil {
			log.Fatalf("Failed to ban: %v", err)
		}
		fmt.Printf("✅ IP %s has been banned.\n", os.Args[2])

	case "unban":
		requireArgs(3, "unban <ip>")
		if err := mod.UnbanIdentity(ctx, os.Args[2]); err != nil {
			log.Fatalf("Failed to unban: %v", err)
		}
		fmt.Printf("✅ IP %s unblocked\n", os.Args[2])

	case "moderate":
		requireArgs(4, "moderate <post_id> <status>")
		id, err := strconv.ParseUint(os.Args[2], 10, 64)
		if err != nil {
			log.Fatalf("Invalid post id %q", os.Args[2])
		}
		if err := mod.SetStatus(ctx, uint(id), service.ModerationAction(os.Args[3])); err != nil {
			log.Fatalf("Failed to moderate post %d: %v", id, err)
		}
		fmt.Printf("✅ Post %d set to %s\n", id, os.Args[3])

	case "flagged":
		posts, err := mod.ListFlagged(ctx)
		if err != nil {
			log.Fatalf("Failed to fetch flagged posts: %v", err)
		}
		if len(posts) == 0 {
			fmt.Println("No flagged posts")
			return
		}
		fmt.Println("\n🚩 Flagged posts:")
		fmt.Println("─────────────────────────────────────")
		for _, p := range posts {
			fmt.Printf("ID: %d | %s | %s\n", p.ID, p.CreatedAt.Format(time.RFC3339), p.Title)
		}
		fmt.Println("─────────────────────────────────────")

	case "banned":
		rows, err := mod.ListBanned(ctx)
		if err != nil {
			log.Fatalf("Failed to fetch bans: %v", err)
		}
		if len(rows) == 0 {
			fmt.Println("No banned addresses")
			return
		}
		fmt.Println("\n⛔ Banned addresses:")
		fmt.Println("─────────────────────────────────────")
		for _, b := range rows {
			fmt.Printf("%s | %s | %s\n", b.IPAddress, b.BlockedAt.Format(time.RFC3339), b.Reason)
		}
		fmt.Println("─────────────────────────────────────")

	case "stats":
		stats, err := mod.Stats(ctx)
		if err != nil {
			log.Fatalf("Failed to fetch stats: %v", err)
		}
		fmt.Printf("posts=%d reports=%d banned=%d views=%d\n",
			stats.TotalPosts, stats.TotalReports, stats.BlockedIPs, stats.TotalViews)

	default:
		fmt.Printf("Unknown command: %s\n", command)
		usage()
		os.Exit(1)
	}
}

func issueToken(cfg *config.Config) {
	ttl := service.AdminTokenTTL
	if len(os.Args) > 2 {
		hours, err := strconv.Atoi(os.Args[2])
		if err != nil || hours <= 0 {
			log.Fatalf("Invalid hours %q", os.Args[2])
		}
		ttl = time.Duration(hours) * time.Hour
	}
	token, err := middleware.IssueAdminToken(cfg.AdminJWTSecret, ttl)
	if err != nil {
		log.Fatalf("Failed to issue token: %v", err)
	}
	fmt.Println(token)
}

func requireArgs(n int, form string) {
	if len(os.Args) < n {
		fmt.Printf("Usage: go run ./cmd/admin %s\n", form)
		os.Exit(1)
	}
}
