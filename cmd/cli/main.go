package main

import (
	"bufio"
	"context"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"

	"gemini-chat-be/internal/client"
	"gemini-chat-be/internal/entity"

	"github.com/fatih/color"
	"github.com/joho/godotenv"
)

var (
	userColor  = color.New(color.FgCyan, color.Bold)
	modelColor = color.New(color.FgGreen)
	infoColor  = color.New(color.FgYellow)
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("Note: .env file not found, usage system environment")
	}

	baseURL := os.Getenv("CHAT_SERVER_URL")
	if baseURL == "" {
		baseURL = "http://localhost:3001"
	}

	api := client.NewAPI(baseURL)
	session := client.NewSession(api)
	scanner := bufio.NewScanner(os.Stdin)
	ctx := context.Background()

	if err := authenticate(ctx, session, scanner); err != nil {
		log.Fatalf("Authentication failed: %v", err)
	}

	if err := session.Refresh(ctx); err != nil {
		log.Fatalf("Failed to load conversations: %v", err)
	}
	infoColor.Printf("Logged in. %d conversation(s) loaded. Commands: /new /list /open N /quit\n", len(session.Conversations())-1)

	for {
		fmt.Print("> ")
		if !scanner.Scan() {
			return
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		switch {
		case line == "/quit":
			return
		case line == "/new":
			session.StartNew()
			infoColor.Println("Started a new chat.")
		case line == "/list":
			for i, c := range session.Conversations() {
				marker := " "
				if c == session.Active() {
					marker = "*"
				}
				fmt.Printf("%s [%d] %s\n", marker, i, c.Title())
			}
		case strings.HasPrefix(line, "/open "):
			i, err := strconv.Atoi(strings.TrimPrefix(line, "/open "))
			if err != nil {
				infoColor.Println("Usage: /open N")
				continue
			}
			if err := session.Select(i); err != nil {
				infoColor.Println(err.Error())
				continue
			}
			printHistory(session.Active().History)
		default:
			res, err := session.Send(ctx, line)
			if err != nil {
				infoColor.Printf("Error: %v\n", err)
				continue
			}
			modelColor.Println(res.Reply)
		}
	}
}

func authenticate(ctx context.Context, session *client.Session, scanner *bufio.Scanner) error {
	fmt.Print("Email: ")
	if !scanner.Scan() {
		return fmt.Errorf("no input")
	}
	email := strings.TrimSpace(scanner.Text())

	fmt.Print("Password: ")
	if !scanner.Scan() {
		return fmt.Errorf("no input")
	}
	password := strings.TrimSpace(scanner.Text())

	if err := session.Login(ctx, email, password); err == nil {
		return nil
	}

	fmt.Print("Login failed. Register this account? [y/N] ")
	if !scanner.Scan() || strings.TrimSpace(scanner.Text()) != "y" {
		return fmt.Errorf("login declined")
	}
	return session.Register(ctx, email, password)
}

func printHistory(history []entity.Message) {
	for _, msg := range history {
		c := modelColor
		if msg.Role == entity.RoleUser {
			c = userColor
		}
		for _, part := range msg.Parts {
			c.Printf("[%s] %s\n", msg.Role, part.Text)
		}
	}
}
