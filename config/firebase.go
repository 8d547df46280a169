package config

import (
	"context"
	"encoding/base64"
	"fmt"

	firebase "firebase.google.com/go/v4"
	"github.com/sirupsen/logrus"
	"google.golang.org/api/option"
)

// NewFirebaseApp initializes the Firebase Admin SDK from base64 encoded
// credentials or a credentials file. It returns nil without error when
// neither is configured, which disables push.
func NewFirebaseApp(ctx context.Context, cfg *Config, log logrus.FieldLogger) (*firebase.App, error) {
	if !cfg.PushEnabled() {
		log.Warn("no Firebase credentials configured, push delivery disabled")
		return nil, nil
	}

	var opt option.ClientOption
	if cfg.FirebaseCredentialsBase64 != "" {
		decoded, err := base64.StdEncoding.DecodeString(cfg.FirebaseCredentialsBase64)
		if err != nil {
			return nil, fmt.Errorf("error decoding base64 credentials: %w", err)
		}
		log.Info("using Firebase credentials from base64 environment variable")
		opt = option.WithCredentialsJSON(decoded)
	} else {
		log.WithField("file", cfg.GoogleApplicationCredentials).Info("using Firebase credentials file")
		opt = option.WithCredentialsFile(cfg.GoogleApplicationCredentials)
	}

	var fbConfig *firebase.Config
	if cfg.FirebaseProjectID != "" {
		fbConfig = &firebase.Config{ProjectID: cfg.FirebaseProjectID}
	}

	app, err := firebase.NewApp(ctx, fbConfig, opt)
	if err != nil {
		return nil, fmt.Errorf("error initializing firebase app: %w", err)
	}
	return app, nil
}
