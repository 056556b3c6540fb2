package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"

	"github.com/emergingssoftware/faqbot/adapters/embedding"
	"github.com/emergingssoftware/faqbot/adapters/llm"
	faqmongo "github.com/emergingssoftware/faqbot/adapters/mongo"
	"github.com/emergingssoftware/faqbot/adapters/stt"
	"github.com/emergingssoftware/faqbot/adapters/tts"
	"github.com/emergingssoftware/faqbot/domain/repositories"
	"github.com/emergingssoftware/faqbot/internal/api"
	"github.com/emergingssoftware/faqbot/internal/catalog"
	"github.com/emergingssoftware/faqbot/internal/retrieval"
	"github.com/emergingssoftware/faqbot/internal/websocket"
	"github.com/emergingssoftware/faqbot/usecase"
)

func main() {
	// .env is optional; real deployments use the process environment
	_ = godotenv.Load()

	logger, _ := zap.NewProduction()
	defer logger.Sync()

	// Load and index the product catalog
	catalogPath := os.Getenv("PRODUCT_CATALOG_PATH")
	if catalogPath == "" {
		catalogPath = catalog.DefaultPath
	}

	products, err := catalog.Load(catalogPath)
	if err != nil {
		logger.Fatal("Failed to load product catalog", zap.Error(err))
	}
	logger.Info("Loaded products from catalog", zap.Int("count", len(products)))

	chunks := catalog.Flatten(products)
	logger.Info("Created document chunks for vector search", zap.Int("count", len(chunks)))

	embedder := buildEmbedder(logger)
	index := retrieval.NewIndex(embedder, logger)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	if err := index.Add(ctx, chunks); err != nil {
		cancel()
		logger.Fatal("Failed to build vector index", zap.Error(err))
	}
	cancel()

	// LLM provider
	model := buildLLM(logger)

	answerService := usecase.NewAnswerService(model, index, logger)

	// Conversation persistence is optional; without MongoDB the server
	// answers statelessly.
	var sessionRepo repositories.SessionRepository
	mongoClient, err := faqmongo.NewClient(logger)
	if err != nil {
		logger.Warn("MongoDB unavailable, conversation persistence disabled", zap.Error(err))
	} else {
		sessionRepo = faqmongo.NewSessionRepository(mongoClient.Database)
		defer func() {
			shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer shutdownCancel()
			mongoClient.Close(shutdownCtx)
		}()
	}
	conversationService := usecase.NewConversationService(sessionRepo, logger)

	// Server-side speech fallbacks, enabled only when configured
	var speechToText repositories.SpeechToText
	if os.Getenv("GOOGLE_APPLICATION_CREDENTIALS") != "" {
		speechToText = stt.NewGoogleSpeechToText(logger)
	} else {
		logger.Info("Google credentials not set, transcription endpoint disabled")
	}

	var textToSpeech repositories.TextToSpeech
	if os.Getenv("ELEVEN_LABS_API_KEY") != "" {
		textToSpeech = buildTTS(tts.NewElevenLabsConfigFromEnv(), logger)
	} else {
		logger.Info("Eleven Labs API key not set, synthesis endpoint disabled")
	}

	// WebSocket hub
	hub := websocket.NewHub(answerService, conversationService, logger)
	go hub.Run()

	// Echo instance with middleware
	e := echo.New()
	e.Use(middleware.Logger())
	e.Use(middleware.Recover())
	e.Use(middleware.CORS())

	api.InitRoutes(e, api.Deps{
		Answerer:      answerService,
		Conversations: conversationService,
		STT:           speechToText,
		TTS:           textToSpeech,
		Hub:           hub,
		ProductCount:  len(products),
		Logger:        logger,
	})

	port := os.Getenv("PORT")
	if port == "" {
		port = "5000"
	}

	go func() {
		if err := e.Start(":" + port); err != nil && err != http.ErrServerClosed {
			logger.Fatal("shutting down the server", zap.Error(err))
		}
	}()

	logger.Info("FAQ chatbot server started",
		zap.String("port", port),
		zap.Int("products", len(products)),
		zap.Int("chunks", len(chunks)))

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	logger.Info("Server is shutting down...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Fatal("Server forced to shutdown", zap.Error(err))
	}

	logger.Info("Server exited")
}

// buildEmbedder selects the embedding backend. EMBEDDING_PROVIDER=mock
// keeps the server self-contained for development.
func buildEmbedder(logger *zap.Logger) repositories.Embedder {
	if strings.EqualFold(os.Getenv("EMBEDDING_PROVIDER"), "mock") {
		logger.Info("Using mock embedder")
		return embedding.NewMockEmbedder()
	}
	return embedding.NewOllamaEmbedder(embedding.NewOllamaConfigFromEnv(), logger)
}

// buildTTS returns the synthesis adapter, or an untyped nil so the
// capability check downstream sees the endpoint as disabled.
func buildTTS(config tts.ElevenLabsConfig, logger *zap.Logger) repositories.TextToSpeech {
	elevenLabs, err := tts.NewElevenLabsTTS(config, logger)
	if err != nil {
		logger.Warn("Eleven Labs misconfigured, synthesis endpoint disabled", zap.Error(err))
		return nil
	}
	return elevenLabs
}

// buildLLM selects the answering model: Gemini when an API key is
// present, a local Ollama server otherwise.
func buildLLM(logger *zap.Logger) repositories.LargeLanguageModel {
	provider := strings.ToLower(os.Getenv("LLM_PROVIDER"))

	switch provider {
	case "mock":
		logger.Info("Using mock LLM")
		return llm.NewMockLLM()
	case "ollama":
		return llm.NewOllamaLLM(llm.NewOllamaConfigFromEnv(), logger)
	case "gemini", "":
		config := llm.NewGeminiConfigFromEnv()
		if config.APIKey != "" {
			model, err := llm.NewGeminiLLM(config, logger)
			if err != nil {
				logger.Fatal("Failed to initialize Gemini", zap.Error(err))
			}
			return model
		}
		if provider == "gemini" {
			logger.Fatal("GEMINI_API_KEY not found in environment")
		}
		logger.Info("GEMINI_API_KEY not set, falling back to Ollama")
		return llm.NewOllamaLLM(llm.NewOllamaConfigFromEnv(), logger)
	default:
		logger.Fatal("Unknown LLM_PROVIDER", zap.String("provider", provider))
		return nil
	}
}
