// Package main runs the interactive mailkeep client: a shell over
// the session manager for recording email accounts, their passwords,
// and usage labels, backed by the remote document server.
package main

import (
	"bufio"
	"cmp"
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/ogrebenko/mailkeep/internal/docstore"
	"github.com/ogrebenko/mailkeep/internal/logger"
	"github.com/ogrebenko/mailkeep/internal/models"
	"github.com/ogrebenko/mailkeep/internal/records"
	"github.com/ogrebenko/mailkeep/internal/session"
	"github.com/ogrebenko/mailkeep/internal/stats"
)

var (
	version   string
	buildDate string
)

// repl runs the interactive shell loop, accepting commands to manage
// email account records.
func repl(mgr *session.Manager) {
	scanner := bufio.NewScanner(os.Stdin)

	for {
		fmt.Print("mailkeep> ")
		if !scanner.Scan() {
			break
		}
		line := strings.TrimSpace(scanner.Text())
		args := strings.Fields(line)
		if len(args) == 0 {
			continue
		}
		switch args[0] {
		case "help":
			fmt.Println("Available commands: help, login, logout, add, list, update <id>, delete <id>, use <id> <label>, unuse <id> <label>, report, sync, save, wipe, exit")
		case "login":
			username := prompt(scanner, "Username: ")
			password := prompt(scanner, "Password: ")
			if mgr.Login(username, password) {
				fmt.Println("Logged in")
			} else {
				fmt.Println("Invalid credentials")
			}
		case "logout":
			mgr.Logout()
			fmt.Println("Logged out")
		case "add":
			email := prompt(scanner, "Email address: ")
			password := prompt(scanner, "Password: ")
			uses := promptUses(scanner)
			acc := mgr.AddAccount(email, password, uses)
			fmt.Printf("Added %s (id %s)\n", acc.Email, acc.ID)
		case "list":
			accounts := mgr.Accounts()
			if len(accounts) == 0 {
				fmt.Println("No accounts")
				continue
			}
			for _, acc := range accounts {
				fmt.Printf("ID: %s\nEmail: %s\nUses: %s\nUpdated: %s\n---\n",
					acc.ID, acc.Email, strings.Join(acc.Uses, ", "),
					acc.UpdatedAt.Format(time.RFC3339))
			}
		case "update":
			if len(args) < 2 {
				fmt.Println("Usage: update <id>")
				continue
			}
			upd := promptUpdate(scanner)
			mgr.UpdateAccount(args[1], upd)
			fmt.Println("Updated")
		case "delete":
			if len(args) < 2 {
				fmt.Println("Usage: delete <id>")
				continue
			}
			mgr.RemoveAccount(args[1])
			fmt.Println("Deleted")
		case "use":
			if len(args) < 3 {
				fmt.Println("Usage: use <id> <label>")
				continue
			}
			mgr.AddUse(args[1], strings.Join(args[2:], " "))
		case "unuse":
			if len(args) < 3 {
				fmt.Println("Usage: unuse <id> <label>")
				continue
			}
			mgr.RemoveUse(args[1], strings.Join(args[2:], " "))
		case "report":
			printReport(mgr)
		case "sync":
			mgr.Resync(context.Background())
			fmt.Printf("Synced, %d accounts\n", len(mgr.Accounts()))
		case "save":
			if err := mgr.SaveAll(context.Background()); err != nil {
				fmt.Println("save failed:", err)
			} else {
				fmt.Println("Saved")
			}
		case "wipe":
			if prompt(scanner, "Delete ALL stored data for every user? (yes/no): ") != "yes" {
				continue
			}
			if err := mgr.WipeAll(context.Background()); err != nil {
				fmt.Println("wipe incomplete:", err)
			} else {
				fmt.Println("All data wiped")
			}
		case "exit":
			mgr.Wait()
			return
		default:
			fmt.Println("Unknown command. Type 'help'.")
		}
	}
}

func prompt(scanner *bufio.Scanner, label string) string {
	fmt.Print(label)
	if !scanner.Scan() {
		return ""
	}
	return strings.TrimSpace(scanner.Text())
}

// promptUses reads a comma-separated label list.
func promptUses(scanner *bufio.Scanner) []string {
	raw := prompt(scanner, "Uses (comma-separated, e.g. Netflix, Work): ")
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	uses := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			uses = append(uses, p)
		}
	}
	return uses
}

// promptUpdate reads the partial-update fields; empty answers leave a
// field untouched.
func promptUpdate(scanner *bufio.Scanner) (upd models.EmailAccountUpdate) {
	if v := prompt(scanner, "New email (empty to keep): "); v != "" {
		upd.Email = &v
	}
	if v := prompt(scanner, "New password (empty to keep): "); v != "" {
		upd.Password = &v
	}
	return upd
}

func printReport(mgr *session.Manager) {
	report := stats.Build(mgr.Accounts())
	fmt.Printf("Accounts: %d\nUsage labels: %d\n", report.TotalAccounts, report.TotalUses)
	for _, uc := range report.UseCounts {
		fmt.Printf("  %s: %d\n", uc.Use, uc.Count)
	}
}

func main() {
	serverURL := flag.String("s", "http://localhost:8080", "document server base URL")
	logLevel := flag.String("l", "error", "log level")
	flag.Parse()

	fmt.Printf("Build version: %s\n", cmp.Or(version, "N/A"))
	fmt.Printf("Build date: %s\n", cmp.Or(buildDate, "N/A"))

	log := logger.New()
	defer func() { _ = log.Log.Sync() }()
	if err := log.Init(*logLevel); err != nil {
		log.Log.Fatal("failed to init logger", zap.Error(err))
	}

	store := docstore.NewClient(&http.Client{Timeout: 15 * time.Second}, *serverURL)
	recordStore := records.New(store, log.Log)
	mgr := session.NewManager(recordStore, log.Log)

	// Startup load: restore whatever the default owner has stored.
	// Failures degrade to an empty, unauthenticated session.
	mgr.LoadAll(context.Background(), session.DefaultOwner)

	repl(mgr)
}
