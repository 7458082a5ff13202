package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/rekognition"

	"github.com/Brownie44l1/image-classify/internal/config"
	"github.com/Brownie44l1/image-classify/internal/handlers"
	"github.com/Brownie44l1/image-classify/internal/model"
	"github.com/Brownie44l1/image-classify/internal/predictor"
)

func modelFactory(cfg *config.Config) model.Factory {
	switch cfg.Backend {
	case config.BackendRekognition:
		return func() (model.Classifier, error) {
			awsCfg, err := awsconfig.LoadDefaultConfig(context.Background(), awsconfig.WithRegion(cfg.AWSRegion))
			if err != nil {
				return nil, err
			}
			log.Printf("Using AWS Rekognition in region %s", cfg.AWSRegion)
			return model.NewRekognitionClassifier(rekognition.NewFromConfig(awsCfg), cfg.TopK), nil
		}
	default:
		return func() (model.Classifier, error) {
			log.Printf("Loading model from: %s", cfg.ModelPath)
			server, err := model.NewServer(cfg.ModelPath, cfg.MetadataPath, cfg.ONNXLibPath, cfg.TopK)
			if err != nil {
				return nil, err
			}
			log.Printf("Model loaded: %s (%d classes, top %d)", server.Metadata.ModelID, len(server.Metadata.Classes), server.Metadata.TopK)
			return server, nil
		}
	}
}

func main() {
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	loader := model.NewLoader(modelFactory(cfg))
	defer loader.Close()

	if cfg.PreloadModel {
		if _, err := loader.Load(); err != nil {
			log.Fatalf("Failed to initialize model: %v", err)
		}
	}

	handler := handlers.NewHandler(predictor.New(loader), handlers.Options{
		Title:          cfg.AppTitle,
		About:          cfg.AboutText,
		ModelID:        cfg.ModelID,
		MaxUploadBytes: cfg.MaxUploadBytes,
		MaxPixels:      cfg.MaxPixels,
		UploadTypes:    cfg.UploadTypes,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           handlers.NewRouter(handler),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Printf("Server starting on port %s (backend: %s, model: %s)", cfg.Port, cfg.Backend, cfg.ModelID)
		log.Println("Endpoints:")
		log.Println("  GET  /              - Upload / camera page")
		log.Println("  POST /              - Classify from the page form")
		log.Println("  POST /predict/image - Predict from image upload (JSON)")
		log.Println("  GET  /health        - Health check")
		log.Printf("Upload test: curl -X POST -F \"image=@cat.jpg\" http://localhost:%s/predict/image", cfg.Port)

		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Printf("Forced shutdown: %v", err)
	}
	log.Println("Server stopped")
}
