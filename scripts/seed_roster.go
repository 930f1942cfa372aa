package main

import (
	"fmt"
	"log"

	"github.com/google/uuid"

	"github.com/meetwise-team/meetwise/internal/domain/entities"
	"github.com/meetwise-team/meetwise/internal/infrastructure/database"
	"github.com/meetwise-team/meetwise/pkg/config"
)

func main() {
	log.Println("🚀 Seeding demo project roster...")

	// Load configuration from .env
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize database
	log.Println("📦 Connecting to database...")
	db, err := database.NewPostgresDB(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer database.CloseDB(db)

	log.Println("✅ Database connected successfully")

	projectID := uuid.New()

	members := []entities.ProjectMember{
		{ProjectID: projectID, Name: "Alice Smith", Email: "alice@demo.local", Role: "lead"},
		{ProjectID: projectID, Name: "Bob Johnson", Email: "bob@demo.local", Role: "engineer"},
		{ProjectID: projectID, Name: "Charlie Nguyen", Email: "charlie@demo.local", Role: "engineer"},
		{ProjectID: projectID, Name: "Diana Park", Email: "diana@demo.local", Role: "designer"},
	}

	contacts := []entities.ProjectContact{
		{ProjectID: projectID, Name: "Eve Martin", Email: "eve@client.example", Organization: "Acme Corp"},
		{ProjectID: projectID, Name: "Frank Oliver", Email: "frank@client.example", Organization: "Acme Corp"},
	}

	log.Println("🗑️  Cleaning up existing demo roster...")
	db.Where("email LIKE ?", "%@demo.local").Delete(&entities.ProjectMember{})
	db.Where("email LIKE ?", "%@client.example").Delete(&entities.ProjectContact{})

	log.Println("👥 Creating roster entries...")

	for i := range members {
		if err := db.Create(&members[i]).Error; err != nil {
			log.Printf("❌ Failed to create member %s: %v", members[i].Email, err)
			continue
		}
		fmt.Printf("🟢 Member:  %-16s %-24s %s\n", members[i].Name, members[i].Email, members[i].ID)
	}
	for i := range contacts {
		if err := db.Create(&contacts[i]).Error; err != nil {
			log.Printf("❌ Failed to create contact %s: %v", contacts[i].Email, err)
			continue
		}
		fmt.Printf("🟡 Contact: %-16s %-24s %s\n", contacts[i].Name, contacts[i].Email, contacts[i].ID)
	}

	log.Println("✅ Roster seeded successfully!")
	log.Printf("💡 Demo project ID: %s", projectID)
	log.Println("   Use it as project_id when creating meetings.")
}
