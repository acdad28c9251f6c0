package main

import (
	"context"
	"log"
	"os"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/joho/godotenv"

	"github.com/devansh03/FileHaven/internal/db"
	"github.com/devansh03/FileHaven/internal/handlers"
	"github.com/devansh03/FileHaven/internal/middleware"
	"github.com/devansh03/FileHaven/internal/services"
	"github.com/devansh03/FileHaven/internal/storage"
	"github.com/devansh03/FileHaven/internal/store"
)

func main() {
	// Load .env file if it exists
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found or error loading it, using environment variables")
	}

	// Initialize Fiber
	app := fiber.New(fiber.Config{
		BodyLimit: 10 * 1024 * 1024, // upload cap, matches the service-side limit
	})

	// Middleware
	app.Use(logger.New())
	app.Use(cors.New())

	// Get MongoDB URI from environment
	mongoURI := os.Getenv("MONGO_URI")
	if mongoURI == "" {
		mongoURI = "mongodb://localhost:27017/filehaven" // Default fallback
	}

	// Connect to MongoDB and prepare the metadata store
	database := db.ConnectMongoDB(mongoURI, "filehaven")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	metaStore, err := store.NewMongo(ctx, database)
	cancel()
	if err != nil {
		log.Fatalf("Failed to prepare metadata store: %v", err)
	}

	// Connect to MinIO
	blobs, err := storage.NewMinioStore()
	if err != nil {
		log.Fatalf("Failed to connect to MinIO: %v", err)
	}

	jwtSecret := os.Getenv("JWT_SECRET")
	if jwtSecret == "" {
		jwtSecret = "dev-secret-change-me"
	}

	tree := services.NewFolderService(metaStore, metaStore, blobs)
	files := services.NewFileService(metaStore, blobs, tree)
	shares := services.NewShareService(metaStore, metaStore, metaStore, tree)
	auth := services.NewAuthService(metaStore, jwtSecret)

	handlers.InitAuthHandler(auth)
	handlers.InitDriveHandler(tree)
	handlers.InitFileHandler(files)
	handlers.InitShareHandler(shares)

	// Auth Routes
	authGroup := app.Group("/auth")
	authGroup.Post("/register", handlers.RegisterHandler)
	authGroup.Post("/login", handlers.LoginHandler)

	// Drive Routes (owner only)
	drive := app.Group("/mydrive", middleware.AuthMiddleware(jwtSecret))
	drive.Get("/", handlers.GetDrive)
	drive.Get("/folders/:id", handlers.GetDrive)
	drive.Post("/folders", handlers.CreateFolderHandler)
	drive.Delete("/folders/:id", handlers.DeleteFolderHandler)
	drive.Post("/upload", handlers.UploadFileHandler)
	drive.Get("/files/:id/download", handlers.DownloadFileHandler)
	drive.Delete("/files/:id", handlers.DeleteFileHandler)
	drive.Post("/folders/:id/share", handlers.CreateShareHandler)
	drive.Delete("/shares/:token", handlers.RevokeShareHandler)

	// Public Share Routes
	app.Get("/share/:token", handlers.GetSharedFolder)
	app.Get("/share/:token/folders/:id", handlers.GetSharedFolder)
	app.Get("/share/:token/files/:id/download", handlers.DownloadSharedFileHandler)

	// Get port from environment
	port := os.Getenv("PORT")
	if port == "" {
		port = "8080" // Default port
	}

	// Start server
	log.Fatal(app.Listen(":" + port))
}
