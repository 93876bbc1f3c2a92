package config

import (
	"context"
	"errors"
	"log/slog"
	"os"

	"cloud.google.com/go/firestore"
	firebase "firebase.google.com/go/v4"
	"google.golang.org/api/option"
)

type FirebaseConfig struct {
	ProjectID string
	// Exactly one of CredentialsFile and CredentialsJSON is used; the file
	// wins when both are set.
	CredentialsFile string
	CredentialsJSON string
}

type FirebaseClient struct {
	App       *firebase.App
	Firestore *firestore.Client
}

var FirebaseConnection *FirebaseClient

func LoadFirebaseConfig() (*FirebaseConfig, error) {
	cfg := &FirebaseConfig{
		ProjectID:       os.Getenv("FIREBASE_PROJECT_ID"),
		CredentialsFile: os.Getenv("FIREBASE_CREDENTIALS_FILE"),
		CredentialsJSON: os.Getenv("FIREBASE_CREDENTIALS_JSON"),
	}
	if cfg.ProjectID == "" {
		return nil, errors.New("FIREBASE_PROJECT_ID is required")
	}
	if cfg.CredentialsFile == "" && cfg.CredentialsJSON == "" {
		return nil, errors.New("one of FIREBASE_CREDENTIALS_FILE or FIREBASE_CREDENTIALS_JSON is required")
	}
	return cfg, nil
}

func (c *FirebaseConfig) clientOption() option.ClientOption {
	if c.CredentialsFile != "" {
		return option.WithCredentialsFile(c.CredentialsFile)
	}
	return option.WithCredentialsJSON([]byte(c.CredentialsJSON))
}

func NewFirebaseClient(ctx context.Context, cfg *FirebaseConfig) (*FirebaseClient, error) {
	app, err := firebase.NewApp(ctx, &firebase.Config{ProjectID: cfg.ProjectID}, cfg.clientOption())
	if err != nil {
		slog.Error("Failed to create Firebase app", "error", err)
		return nil, err
	}

	client, err := app.Firestore(ctx)
	if err != nil {
		slog.Error("Failed to create Firestore client", "error", err)
		return nil, err
	}

	return &FirebaseClient{App: app, Firestore: client}, nil
}

func InitFireStore(ctx context.Context) error {
	cfg, err := LoadFirebaseConfig()
	if err != nil {
		slog.Error("Failed to load Firebase config", "error", err)
		return err
	}

	FirebaseConnection, err = NewFirebaseClient(ctx, cfg)
	if err != nil {
		return err
	}

	slog.Info("Firebase connection initialized", "project_id", cfg.ProjectID)
	return nil
}

func CloseFirebaseConnection() error {
	if FirebaseConnection == nil || FirebaseConnection.Firestore == nil {
		return nil
	}
	if err := FirebaseConnection.Firestore.Close(); err != nil {
		slog.Error("Failed to close Firebase connection", "error", err)
		return err
	}
	FirebaseConnection = nil
	return nil
}
