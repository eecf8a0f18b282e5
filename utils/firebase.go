package utils

import (
	"context"
	"fmt"
	"log"
	"os"
	"sync"

	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/messaging"
	"google.golang.org/api/option"
)

var (
	firebaseApp   *firebase.App
	fcmClient     *messaging.Client
	firebaseOnce  sync.Once
	firebaseErr   error
	firebaseReady bool
)

// InitFirebase initializes the Firebase Admin SDK and FCM client once.
// Push notifications stay disabled when credentials are absent.
func InitFirebase() error {
	if firebaseReady {
		return firebaseErr
	}

	firebaseOnce.Do(func() {
		ctx := context.Background()

		credentialsPath := os.Getenv("GOOGLE_APPLICATION_CREDENTIALS")
		if credentialsPath == "" {
			credentialsPath = os.Getenv("FCM_CREDENTIALS_PATH")
		}
		if credentialsPath == "" {
			credentialsPath = "./serviceAccountKey.json"
		}

		projectID := os.Getenv("FIREBASE_PROJECT_ID")
		if projectID == "" {
			projectID = os.Getenv("FCM_PROJECT_ID")
		}

		if _, err := os.Stat(credentialsPath); os.IsNotExist(err) {
			log.Printf("⚠️ Firebase credentials file not found at %s, push notifications disabled", credentialsPath)
			firebaseReady = true
			firebaseErr = fmt.Errorf("firebase credentials file not found: %s", credentialsPath)
			return
		}

		if projectID == "" {
			log.Println("⚠️ FIREBASE_PROJECT_ID not set, push notifications disabled")
			firebaseReady = true
			firebaseErr = fmt.Errorf("FIREBASE_PROJECT_ID is required for FCM")
			return
		}

		app, err := firebase.NewApp(ctx, &firebase.Config{ProjectID: projectID},
			option.WithCredentialsFile(credentialsPath))
		if err != nil {
			firebaseReady = true
			firebaseErr = fmt.Errorf("firebase app initialization failed: %w", err)
			return
		}

		client, err := app.Messaging(ctx)
		if err != nil {
			firebaseApp = app
			firebaseReady = true
			firebaseErr = fmt.Errorf("FCM client initialization failed: %w", err)
			return
		}

		log.Printf("✅ Firebase initialized for project %s", projectID)
		firebaseApp = app
		fcmClient = client
		firebaseReady = true
		firebaseErr = nil
	})

	return firebaseErr
}

// GetFCMClient returns the FCM client, nil when push is disabled
func GetFCMClient() *messaging.Client {
	return fcmClient
}

// IsFCMEnabled reports whether push notifications can be sent
func IsFCMEnabled() bool {
	return fcmClient != nil
}

// GetFirebaseInitError returns the initialization error if any
func GetFirebaseInitError() error {
	return firebaseErr
}
