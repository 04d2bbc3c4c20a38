package main

import (
	"log"
	"os"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"library_console_echo/internal/handlers"
	authMiddleware "library_console_echo/internal/middleware"
	"library_console_echo/internal/services"
)

func main() {
	// Load environment variables
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment")
	}

	// Initialize Firebase
	credPath := os.Getenv("FIREBASE_CREDENTIALS_PATH")
	if credPath == "" {
		credPath = "./firebase-service-account.json"
	}

	authClient, err := services.InitFirebase(credPath)
	if err != nil {
		log.Printf("Warning: Firebase initialization failed: %v", err)
		log.Println("Auth features will not work until valid credentials are provided")
	}

	// Initialize Database
	databaseURL := os.Getenv("DATABASE_URL")
	if databaseURL == "" {
		log.Fatal("DATABASE_URL not set")
	}

	db, err := services.InitDB(databaseURL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	if err := services.AutoMigrate(db); err != nil {
		log.Fatalf("Failed to run database migrations: %v", err)
	}

	// Redis cache is optional, the dashboard falls back to direct queries
	var cache *services.RedisCache
	if redisURL := os.Getenv("REDIS_URL"); redisURL != "" {
		cache, err = services.NewRedisCache(redisURL)
		if err != nil {
			log.Printf("Warning: Redis initialization failed: %v", err)
			cache = nil
		}
	} else {
		log.Println("REDIS_URL not set, dashboard caching disabled")
	}

	// Local document store
	store, err := services.NewDocumentStore(os.Getenv("DOCUMENT_DIR"))
	if err != nil {
		log.Fatalf("Failed to initialize document store: %v", err)
	}

	// Create Echo instance
	e := echo.New()

	// Middleware
	e.Use(middleware.Logger())
	e.Use(middleware.Recover())
	e.HTTPErrorHandler = authMiddleware.CustomErrorHandler

	// Services
	studentService := services.NewStudentService(db)
	dashboardService := services.NewDashboardService(db, cache)

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(authClient)
	dashboardHandler := handlers.NewDashboardHandler(dashboardService)
	studentHandler := handlers.NewStudentHandler(studentService, dashboardService, store)
	paymentHandler := handlers.NewPaymentHandler(studentService, dashboardService)
	documentHandler := handlers.NewDocumentHandler(db, store, studentService, dashboardService)
	expenseHandler := handlers.NewExpenseHandler(db, dashboardService)

	// Public routes
	e.GET("/api/auth/config", authHandler.ClientConfig)
	e.POST("/auth/login", authHandler.HandleLogin)
	e.POST("/auth/logout", authHandler.HandleLogout)

	// Protected routes
	api := e.Group("/api")
	api.Use(authMiddleware.RequireAuth(authClient))

	api.GET("/auth/me", authHandler.Me)
	api.GET("/dashboard", dashboardHandler.Dashboard)

	// Student routes
	api.GET("/students", studentHandler.ListStudents)
	api.POST("/students", studentHandler.CreateStudent)
	api.GET("/students/:id", studentHandler.GetStudent)
	api.PUT("/students/:id", studentHandler.UpdateStudent)
	api.DELETE("/students/:id", studentHandler.DeleteStudent)

	// Payment routes
	api.GET("/students/:id/payments", paymentHandler.ListPayments)
	api.POST("/students/:id/payments", paymentHandler.AddPayment)
	api.PUT("/students/:id/payments/:entryId", paymentHandler.EditPayment)
	api.GET("/payments/preview", paymentHandler.PreviewNextDue)
	api.GET("/payments/classify", paymentHandler.ClassifyDue)

	// Document routes
	api.GET("/students/:id/documents", documentHandler.ListDocuments)
	api.POST("/students/:id/documents", documentHandler.UploadDocument)
	api.GET("/students/:id/documents/:docId", documentHandler.DownloadDocument)
	api.DELETE("/students/:id/documents/:docId", documentHandler.DeleteDocument)

	// Expense routes
	api.GET("/expenses", expenseHandler.ListExpenses)
	api.POST("/expenses", expenseHandler.CreateExpense)
	api.PUT("/expenses/:id", expenseHandler.UpdateExpense)
	api.DELETE("/expenses/:id", expenseHandler.DeleteExpense)

	// Start server
	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	log.Printf("Server starting on port %s", port)
	e.Logger.Fatal(e.Start(":" + port))
}
