// README: Firebase Admin SDK initialisation for the Firestore rules store.
package infra

import (
	"context"
	"fmt"

	"cloud.google.com/go/firestore"
	firebase "firebase.google.com/go/v4"
	"google.golang.org/api/option"
)

// NewFirestore returns a Firestore client for projectID.
// If credentialsFile is non-empty it is used as the service-account JSON path;
// otherwise application-default credentials are used.
func NewFirestore(ctx context.Context, projectID, credentialsFile string) (*firestore.Client, error) {
	opts := []option.ClientOption{}
	if credentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(credentialsFile))
	}
	app, err := firebase.NewApp(ctx, &firebase.Config{ProjectID: projectID}, opts...)
	if err != nil {
		return nil, fmt.Errorf("firebase.NewApp: %w", err)
	}
	client, err := app.Firestore(ctx)
	if err != nil {
		return nil, fmt.Errorf("firebase app.Firestore: %w", err)
	}
	return client, nil
}
