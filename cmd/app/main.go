package main

import (
	"context"
	"log"
	"log/slog"
	"net/http"
	"os"

	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/go-chi/chi/v5"
	"github.com/joho/godotenv"
	"github.com/leonfocus/leonfocus/pkg/booster"
	"github.com/leonfocus/leonfocus/pkg/chat"
	"github.com/leonfocus/leonfocus/pkg/events"
	"github.com/leonfocus/leonfocus/pkg/handlers"
	"github.com/leonfocus/leonfocus/pkg/handlers/accounts"
	"github.com/leonfocus/leonfocus/pkg/handlers/messages"
	"github.com/leonfocus/leonfocus/pkg/handlers/packs"
	"github.com/leonfocus/leonfocus/pkg/handlers/timers"
	"github.com/leonfocus/leonfocus/pkg/ledger"
	"github.com/leonfocus/leonfocus/pkg/middleware"
	"github.com/leonfocus/leonfocus/pkg/timer"
	"github.com/leonfocus/leonfocus/pkg/websockets"

	dydbstore "github.com/leonfocus/leonfocus/pkg/storage/dynamodb"
)

func main() {
	// Load environment variables from .env file
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	// AWS Session
	cfg, err := config.LoadDefaultConfig(context.TODO())
	if err != nil {
		log.Fatalf("unable to load SDK config, %v", err)
	}

	dbClient := dynamodb.NewFromConfig(cfg)
	accountsTable := os.Getenv("DYNAMODB_ACCOUNTS_TABLE_NAME")
	messagesTable := os.Getenv("DYNAMODB_MESSAGES_TABLE_NAME")
	stickersTable := os.Getenv("DYNAMODB_STICKERS_TABLE_NAME")
	assetBaseURL := os.Getenv("STICKER_ASSET_BASE_URL")

	if accountsTable == "" || messagesTable == "" || stickersTable == "" {
		log.Fatal("One or more DynamoDB table name environment variables are not set")
	}

	// Create our storage implementation
	store := dydbstore.New(dbClient, accountsTable, messagesTable, stickersTable, assetBaseURL)

	// Ledger audit feed; optional.
	var publisher events.Publisher = &events.NoOpPublisher{}
	if queueURL := os.Getenv("SQS_LEDGER_EVENTS_QUEUE_URL"); queueURL != "" {
		publisher = events.NewSQSPublisher(sqs.NewFromConfig(cfg), queueURL)
	} else {
		log.Println("SQS_LEDGER_EVENTS_QUEUE_URL not set, ledger events disabled")
	}

	accountLedger := ledger.New(store,
		ledger.WithPublisher(publisher),
		ledger.WithLogger(logger),
	)

	// Realtime push fan-out.
	hub := websockets.NewHub(logger)
	defer hub.Close()

	// Timer sessions, one machine per user, rewards routed to the ledger.
	sessions := timer.NewRegistry(accountLedger,
		timer.WithAwarder(accountLedger),
		timer.WithPhaseSaver(accountLedger),
		timer.WithLogger(logger),
		timer.WithTransitionHook(func(userID string, snap timer.Snapshot) {
			_ = hub.Publish(context.Background(), websockets.Message{
				Type:    websockets.MessageTypeTimerUpdate,
				Channel: "timer",
				Events:  []string{"update"},
				Payload: map[string]interface{}{"user_id": userID, "timer": snap},
			})
		}),
	)
	defer sessions.StopAll()

	packEngine := booster.New(store, accountLedger, booster.WithLogger(logger))
	composer := chat.NewComposer(store, accountLedger, hub, chat.WithComposerLogger(logger))

	api := &handlers.Api{
		Accounts: accounts.NewAccountsHandler(accountLedger),
		Packs:    packs.NewPacksHandler(packEngine, hub),
		Messages: messages.NewMessagesHandler(composer),
		Timers:   timers.NewTimersHandler(sessions),
		ServeWS:  hub.ServeWS,
	}

	// Create a new Chi router
	router := chi.NewRouter()
	router.Use(middleware.NewStructuredLogger(logger))
	router.Mount("/", api.Router())

	port := os.Getenv("HTTP_PORT")
	if port == "" {
		port = "8080" // Default port if not specified
	}

	log.Printf("Starting server on port %s", port)

	// Start the server
	if err := http.ListenAndServe(":"+port, router); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
