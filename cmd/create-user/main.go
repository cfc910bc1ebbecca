package main

import (
	"bufio"
	"context"
	"fmt"
	"log"
	"os"
	"strings"
	"syscall"

	"github.com/orelvisrguez/assistravel/config"
	"github.com/orelvisrguez/assistravel/db"
	"github.com/orelvisrguez/assistravel/models"
	"github.com/orelvisrguez/assistravel/services"

	"golang.org/x/term"
)

func main() {
	// Load configuration
	cfg := config.Load()

	// Initialize database
	if err := db.Initialize(cfg); err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer db.Close()

	// Run migrations
	if err := db.AutoMigrate(models.All()...); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	reader := bufio.NewReader(os.Stdin)

	fmt.Println("=== Create New User ===")
	fmt.Println()

	fmt.Print("Email: ")
	email, _ := reader.ReadString('\n')
	email = strings.TrimSpace(email)

	roleNames := make([]string, len(models.Roles))
	for i, r := range models.Roles {
		roleNames[i] = string(r)
	}
	fmt.Printf("Role (%s): ", strings.Join(roleNames, ", "))
	role, _ := reader.ReadString('\n')
	role = strings.TrimSpace(role)

	// Get password securely
	fmt.Print("Password: ")
	passwordBytes, err := term.ReadPassword(int(syscall.Stdin))
	if err != nil {
		log.Fatalf("Failed to read password: %v", err)
	}
	password := string(passwordBytes)
	fmt.Println() // New line after password input

	if email == "" || password == "" {
		log.Fatal("Email and password are required")
	}

	auth := services.NewAuthClient(db.DB, cfg)
	user, err := auth.ProvisionUser(context.Background(), email, password, models.Role(role))
	if err != nil {
		log.Fatalf("Failed to create user: %v", err)
	}

	fmt.Println()
	fmt.Println("✓ User created successfully!")
	fmt.Printf("  ID: %s\n", user.ID)
	fmt.Printf("  Email: %s\n", user.Email)
	fmt.Printf("  Role: %s\n", role)
	fmt.Println()
	fmt.Printf("The user can now sign in at %s/auth\n", cfg.AppURL)
}
