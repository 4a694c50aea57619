// Package main provides administrator management utilities.
package main

import (
	"errors"
	"fmt"
	"log"
	"os"
	"strings"

	"navega/internal/config"
	"navega/internal/database"
	"navega/internal/models"

	"gorm.io/gorm"
)

func usage() {
	fmt.Println("Usage:")
	fmt.Println("  go run ./cmd/admin promote <user_id|email>   - Grant the administrator role")
	fmt.Println("  go run ./cmd/admin demote <user_id|email>    - Revoke the administrator role")
	fmt.Println("  go run ./cmd/admin list-admins               - List all administrators")
	os.Exit(1)
}

func main() {
	if len(os.Args) < 2 {
		usage()
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	db, err := database.ConnectWithOptions(cfg, database.ConnectOptions{SkipReplica: true})
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	switch os.Args[1] {
	case "promote", "demote":
		if len(os.Args) < 3 {
			usage()
		}
		role := models.RoleAdministrator
		if os.Args[1] == "demote" {
			role = models.RoleUser
		}
		setRole(db, os.Args[2], role)
	case "list-admins":
		listAdmins(db)
	default:
		fmt.Printf("Unknown command: %s\n", os.Args[1])
		usage()
	}
}

func findUser(db *gorm.DB, ref string) (*models.User, error) {
	var user models.User
	query := db.Where("id = ?", ref)
	if strings.Contains(ref, "@") {
		query = db.Where("email = ?", strings.ToLower(strings.TrimSpace(ref)))
	}
	if err := query.First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func setRole(db *gorm.DB, ref string, role models.Role) {
	user, err := findUser(db, ref)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			fmt.Printf("User %s not found\n", ref)
			os.Exit(1)
		}
		log.Fatalf("Database error: %v", err)
	}

	if user.Role == role {
		fmt.Printf("User %s (ID: %d) already has role %s\n", user.Email, user.ID, role)
		return
	}

	if err := db.Model(user).Update("role", role).Error; err != nil {
		log.Fatalf("Failed to update role: %v", err)
	}
	fmt.Printf("Updated %s (ID: %d) to role %s\n", user.Email, user.ID, role)
}

func listAdmins(db *gorm.DB) {
	var admins []models.User
	if err := db.Where("role = ?", models.RoleAdministrator).Order("id").Find(&admins).Error; err != nil {
		log.Fatalf("Failed to fetch admins: %v", err)
	}

	if len(admins) == 0 {
		fmt.Println("No administrators found")
		return
	}
	for _, admin := range admins {
		fmt.Printf("ID: %d | Name: %s | Email: %s\n", admin.ID, admin.Name, admin.Email)
	}
}
