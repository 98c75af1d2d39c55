// Parallel CLI - command line client for a Parallel AI workspace.
package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/Yug-More/Parallel-AI/clients/go/parallel"
)

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(1)
	}

	baseURL := os.Getenv("PARALLEL_URL")
	client := parallel.NewClient(baseURL)
	cmd := os.Args[1]

	switch cmd {
	case "health":
		resp, err := client.Health()
		exitOnError(err)
		printJSON(resp)

	case "register":
		if len(os.Args) < 5 {
			fmt.Fprintln(os.Stderr, "Usage: parallel register <email> <name> <password> [org]")
			os.Exit(1)
		}
		org := ""
		if len(os.Args) > 5 {
			org = os.Args[5]
		}
		user, err := client.Register(os.Args[2], os.Args[3], os.Args[4], org)
		exitOnError(err)
		printJSON(user)

	case "rooms":
		exitOnError(login(client))
		rooms, err := client.ListRooms()
		exitOnError(err)
		for _, room := range rooms {
			fmt.Printf("  %s  %s (summary v%d)\n", room.ID, room.Name, room.SummaryVersion)
		}

	case "read":
		if len(os.Args) < 3 {
			fmt.Fprintln(os.Stderr, "Usage: parallel read <room-id> ")
			os.Exit(1)
		}
		exitOnError(login(client))
		messages, err := client.GetMessages(os.Args[2], 30)
		exitOnError(err)
		for _, msg := range messages {
			fmt.Printf("%s: %s\n", msg.SenderName, msg.Content)
		}

	case "ask":
		if len(os.Args) < 4 {
			fmt.Fprintln(os.Stderr, "Usage: parallel ask <room-id> <message>")
			os.Exit(1)
		}
		exitOnError(login(client))
		transcript, err := client.Chat(os.Args[2], "self", "", os.Args[3])
		exitOnError(err)
		if transcript.Reply != nil {
			fmt.Println(transcript.Reply.Content)
		}

	case "team":
		if len(os.Args) < 4 {
			fmt.Fprintln(os.Stderr, "Usage: parallel team <room-id> <message>")
			os.Exit(1)
		}
		exitOnError(login(client))
		transcript, err := client.Chat(os.Args[2], "team", "", os.Args[3])
		exitOnError(err)
		if transcript.Reply != nil {
			fmt.Println(transcript.Reply.Content)
		}
		if transcript.SummaryUpdates > 0 {
			fmt.Printf("\n[project summary v%d] %s\n", transcript.SummaryVersion, transcript.ProjectSummary)
		}

	case "transcript":
		if len(os.Args) < 3 {
			fmt.Fprintln(os.Stderr, "Usage: parallel transcript <room-id>")
			os.Exit(1)
		}
		exitOnError(login(client))
		transcript, err := client.GetTranscript(os.Args[2])
		exitOnError(err)
		if transcript.ProjectSummary != "" {
			fmt.Printf("[project summary v%d] %s\n\n", transcript.SummaryVersion, transcript.ProjectSummary)
		}
		for _, msg := range transcript.Messages {
			fmt.Printf("%s: %s\n", msg.SenderName, msg.Content)
		}

	case "online":
		exitOnError(login(client))
		members, err := client.Online()
		exitOnError(err)
		for _, m := range members {
			mark := " "
			if m.Online {
				mark = "*"
			}
			fmt.Printf("  [%s] %s\n", mark, m.Name)
		}

	case "activity":
		exitOnError(login(client))
		feed, err := client.GetActivity(20)
		exitOnError(err)
		for _, a := range feed {
			fmt.Printf("  %s: %s\n", a.UserName, a.Summary)
		}

	case "inbox":
		exitOnError(login(client))
		notifications, err := client.GetNotifications(true)
		exitOnError(err)
		if len(notifications) == 0 {
			fmt.Println("no unread notifications")
		}
		for _, n := range notifications {
			fmt.Printf("  %s\n", n.Message)
		}

	default:
		usage()
		os.Exit(1)
	}
}

// login authenticates with PARALLEL_EMAIL / PARALLEL_PASSWORD.
func login(client *parallel.Client) error {
	email := os.Getenv("PARALLEL_EMAIL")
	password := os.Getenv("PARALLEL_PASSWORD")
	if email == "" || password == "" {
		return fmt.Errorf("set PARALLEL_EMAIL and PARALLEL_PASSWORD")
	}
	return client.Login(email, password)
}

func usage() {
	fmt.Fprintln(os.Stderr, `Parallel CLI

Usage: parallel <command> [args]

Commands:
  health                       server health
  register <email> <name> <password> [org]
  rooms                        list rooms
  read <room-id>               recent messages
  ask <room-id> <message>      ask your own agent
  team <room-id> <message>     ask the whole team
  transcript <room-id>         full room transcript with summary
  online                       member presence
  activity                     team activity feed
  inbox                        unread notifications

Environment:
  PARALLEL_URL       server base URL (default http://localhost:8080)
  PARALLEL_EMAIL     login email
  PARALLEL_PASSWORD  login password`)
}

func exitOnError(err error) {
	if err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func printJSON(v any) {
	data, _ := json.MarshalIndent(v, "", "  ")
	fmt.Println(string(data))
}
