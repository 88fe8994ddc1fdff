// utils/firebase.go
package utils

import (
	"context"
	"log"

	"agenda/config"

	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/messaging"
	"google.golang.org/api/option"
)

var (
	FirebaseApp *firebase.App
	FCMClient   *messaging.Client
)

// FirebaseInit initializes the Firebase App and Messaging client. Without a
// credentials file the application default credentials are used.
func FirebaseInit() *firebase.App {
	ctx := context.Background()

	var opts []option.ClientOption
	if path := config.AppConfig.FirebaseCredentials; path != "" {
		opts = append(opts, option.WithCredentialsFile(path))
	}
	var fbCfg *firebase.Config
	if id := config.AppConfig.FirebaseProjectID; id != "" {
		fbCfg = &firebase.Config{ProjectID: id}
	}

	app, err := firebase.NewApp(ctx, fbCfg, opts...)
	if err != nil {
		log.Fatalf("firebase: error initializing app: %v", err)
	}

	client, err := app.Messaging(ctx)
	if err != nil {
		log.Fatalf("firebase: error getting Messaging client: %v", err)
	}

	FirebaseApp = app
	FCMClient = client
	return app
}
