package config

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"log/slog"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/kms"
)

var ErrKMSNotInitialized = errors.New("KMS client not initialized")

// KMSAPI is the part of the KMS client used for site ingest secrets.
type KMSAPI interface {
	Encrypt(ctx context.Context, params *kms.EncryptInput, optFns ...func(*kms.Options)) (*kms.EncryptOutput, error)
	Decrypt(ctx context.Context, params *kms.DecryptInput, optFns ...func(*kms.Options)) (*kms.DecryptOutput, error)
	ReEncrypt(ctx context.Context, params *kms.ReEncryptInput, optFns ...func(*kms.Options)) (*kms.ReEncryptOutput, error)
}

var (
	KMSKeyID  string
	KMSClient KMSAPI
)

func InitKMS(ctx context.Context, keyID string) error {
	if keyID == "" {
		slog.Error("Missing required environment variable", "variable", "AWS_KMS_KEY_ID")
		return fmt.Errorf("AWS_KMS_KEY_ID environment variable is required")
	}

	cfg, err := awsconfig.LoadDefaultConfig(ctx)
	if err != nil {
		slog.Error("Failed to load AWS SDK config", "error", err)
		return fmt.Errorf("unable to load AWS SDK config: %w", err)
	}

	KMSClient = kms.NewFromConfig(cfg)
	KMSKeyID = keyID

	slog.Info("Successfully initialized AWS KMS client")
	return nil
}

// EncryptSecret returns the base64 ciphertext of a site ingest secret.
func EncryptSecret(ctx context.Context, secret string) (string, error) {
	if KMSClient == nil {
		return "", ErrKMSNotInitialized
	}

	result, err := KMSClient.Encrypt(ctx, &kms.EncryptInput{
		KeyId:     aws.String(KMSKeyID),
		Plaintext: []byte(secret),
	})
	if err != nil {
		slog.Error("Failed to encrypt ingest secret", "error", err)
		return "", fmt.Errorf("failed to encrypt ingest secret: %w", err)
	}

	return base64.StdEncoding.EncodeToString(result.CiphertextBlob), nil
}

// DecryptSecret reverses EncryptSecret.
func DecryptSecret(ctx context.Context, encrypted string) (string, error) {
	if KMSClient == nil {
		return "", ErrKMSNotInitialized
	}

	ciphertext, err := base64.StdEncoding.DecodeString(encrypted)
	if err != nil {
		return "", fmt.Errorf("failed to decode encrypted secret: %w", err)
	}

	result, err := KMSClient.Decrypt(ctx, &kms.DecryptInput{CiphertextBlob: ciphertext})
	if err != nil {
		slog.Error("Failed to decrypt ingest secret", "error", err)
		return "", fmt.Errorf("failed to decrypt ingest secret: %w", err)
	}

	return string(result.Plaintext), nil
}

// ReEncryptSecret moves a ciphertext onto the current key without exposing
// the plaintext.
func ReEncryptSecret(ctx context.Context, encrypted string) (string, error) {
	if KMSClient == nil {
		return "", ErrKMSNotInitialized
	}

	ciphertext, err := base64.StdEncoding.DecodeString(encrypted)
	if err != nil {
		return "", fmt.Errorf("failed to decode encrypted secret: %w", err)
	}

	result, err := KMSClient.ReEncrypt(ctx, &kms.ReEncryptInput{
		CiphertextBlob:   ciphertext,
		DestinationKeyId: aws.String(KMSKeyID),
	})
	if err != nil {
		return "", fmt.Errorf("failed to re-encrypt ingest secret: %w", err)
	}

	return base64.StdEncoding.EncodeToString(result.CiphertextBlob), nil
}
