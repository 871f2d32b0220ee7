package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"os/signal"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	// Global flags
	apiURL := "http://localhost:8000"
	if envURL := os.Getenv("API_URL"); envURL != "" {
		apiURL = envURL
	}

	command := os.Args[1]
	args := os.Args[2:]

	switch command {
	case "populate":
		populateCmd(apiURL, args)
	case "watch":
		watchCmd(apiURL, args)
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Printf("Unknown command: %s\n\n", command)
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println(`Channel Simulator - Development tool for exercising subscriptions

USAGE:
  simulator <command> [options]

COMMANDS:
  populate  Register fake users and subscribe them to a channel
  watch     Log in and print the live subscriber feed of a channel
  help      Show this help message

ENVIRONMENT:
  API_URL   Backend API URL (default: http://localhost:8000)

EXAMPLES:
  # Register 10 fake users who all subscribe to "alice"
  simulator populate --channel=alice --count=10

  # Follow alice's subscriber count as alice's fans arrive
  simulator watch --channel=alice --username=bob --password=secret`)
}

func populateCmd(apiURL string, args []string) {
	fs := flag.NewFlagSet("populate", flag.ExitOnError)
	channel := fs.String("channel", "", "Channel username to subscribe to (required)")
	count := fs.Int("count", 10, "Number of users to create")
	password := fs.String("password", "simulated-password", "Password for the created users")
	fs.Parse(args)

	if *channel == "" {
		fmt.Println("Error: --channel is required")
		fmt.Println("\nUsage: simulator populate --channel=alice [--count=10]")
		os.Exit(1)
	}

	client := NewAPIClient(apiURL)

	profile, err := client.GetChannel(*channel, "")
	if err != nil {
		fmt.Printf("Failed to find channel: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Subscribing %d new users to %s (currently %d subscribers)...\n\n", *count, profile.Username, profile.SubscribersCount)

	batch := uuid.NewString()[:6]
	for i := 0; i < *count; i++ {
		username := fmt.Sprintf("sim_%s_%d", batch, i+1)
		if _, err := client.RegisterUser(username, *password); err != nil {
			fmt.Printf("  [%d/%d] FAILED to create user: %v\n", i+1, *count, err)
			continue
		}

		session, err := client.Login(username, *password)
		if err != nil {
			fmt.Printf("  [%d/%d] FAILED to log in: %v\n", i+1, *count, err)
			continue
		}

		state, err := client.ToggleSubscription(session.AccessToken, profile.ID)
		if err != nil {
			fmt.Printf("  [%d/%d] FAILED to subscribe: %v\n", i+1, *count, err)
			continue
		}

		fmt.Printf("  [%d/%d] %s subscribed (%d subscribers)\n", i+1, *count, username, state.SubscribersCount)
	}

	fmt.Println()
	fmt.Println("Done!")
}

type feedMessage struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

func watchCmd(apiURL string, args []string) {
	fs := flag.NewFlagSet("watch", flag.ExitOnError)
	channel := fs.String("channel", "", "Channel username to watch (required)")
	username := fs.String("username", "", "Username to log in with (required)")
	password := fs.String("password", "", "Password to log in with (required)")
	fs.Parse(args)

	if *channel == "" || *username == "" || *password == "" {
		fmt.Println("Error: --channel, --username and --password are required")
		os.Exit(1)
	}

	client := NewAPIClient(apiURL)
	session, err := client.Login(*username, *password)
	if err != nil {
		fmt.Printf("Failed to log in: %v\n", err)
		os.Exit(1)
	}

	conn, _, err := websocket.DefaultDialer.Dial(client.WebSocketURL(*channel, session.AccessToken), nil)
	if err != nil {
		fmt.Printf("Failed to connect: %v\n", err)
		os.Exit(1)
	}
	defer conn.Close()

	interrupt := make(chan os.Signal, 1)
	signal.Notify(interrupt, os.Interrupt)

	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			var msg feedMessage
			if err := conn.ReadJSON(&msg); err != nil {
				fmt.Printf("Connection closed: %v\n", err)
				return
			}
			fmt.Printf("%-20s %s\n", msg.Type, string(msg.Payload))
		}
	}()

	fmt.Printf("Watching %s, press Ctrl+C to stop\n", *channel)
	select {
	case <-done:
	case <-interrupt:
		conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
	}
}
