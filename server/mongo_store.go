package server

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/secretsmanager"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoStore implements the Store interface on MongoDB or AWS DocumentDB.
// The hierarchical document paths (studio -> title, studio -> event name)
// are flattened into one collection per document kind, keyed by compound
// filters; a collection group scan becomes an unfiltered Find.
type MongoStore struct {
	client       *mongo.Client
	database     *mongo.Database
	instructions *mongo.Collection
	events       *mongo.Collection
	admins       *mongo.Collection
	studios      *mongo.Collection
}

// registryItem is an identifier-only document; presence means membership
type registryItem struct {
	ID string `bson:"id"`
}

// passwordFromSecretsManager retrieves the database password from AWS
// Secrets Manager
func passwordFromSecretsManager(secretARN string) (string, error) {
	region := os.Getenv("AWS_REGION")
	if region == "" {
		region = "us-east-1"
	}

	sess, err := session.NewSession(&aws.Config{
		Region: aws.String(region),
	})
	if err != nil {
		return "", fmt.Errorf("failed to create AWS session: %v", err)
	}

	svc := secretsmanager.New(sess)
	result, err := svc.GetSecretValue(&secretsmanager.GetSecretValueInput{
		SecretId: aws.String(secretARN),
	})
	if err != nil {
		return "", fmt.Errorf("failed to get secret value: %v", err)
	}

	if result.SecretString == nil {
		return "", fmt.Errorf("secret value is nil")
	}

	return *result.SecretString, nil
}

// usernameFromURI extracts the username from a mongodb:// connection string
func usernameFromURI(uri string) string {
	rest := uri
	if i := strings.Index(rest, "://"); i >= 0 {
		rest = rest[i+3:]
	}
	if i := strings.Index(rest, "@"); i >= 0 {
		user := rest[:i]
		if j := strings.Index(user, ":"); j >= 0 {
			user = user[:j]
		}
		return user
	}
	return ""
}

// tlsConfigFromCA creates a TLS configuration trusting the given CA bundle,
// as required for DocumentDB connections
func tlsConfigFromCA(certPath string) (*tls.Config, error) {
	caCert, err := os.ReadFile(certPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read CA certificate from %s: %v", certPath, err)
	}

	caCertPool := x509.NewCertPool()
	if !caCertPool.AppendCertsFromPEM(caCert) {
		return nil, fmt.Errorf("failed to parse CA certificate")
	}

	return &tls.Config{RootCAs: caCertPool}, nil
}

// NewMongoStore connects to the document database and returns a store.
// passwordSecretARN and caCertFile are optional; they are used for
// DocumentDB deployments where the password lives in Secrets Manager and
// the connection requires the Amazon CA bundle.
func NewMongoStore(ctx context.Context, uri, database, passwordSecretARN, caCertFile string) (*MongoStore, error) {
	clientOptions := options.Client().ApplyURI(uri)

	if passwordSecretARN != "" {
		password, err := passwordFromSecretsManager(passwordSecretARN)
		if err != nil {
			return nil, fmt.Errorf("failed to get password from Secrets Manager: %v", err)
		}
		clientOptions.SetAuth(options.Credential{
			AuthMechanism: "SCRAM-SHA-1",
			AuthSource:    "admin",
			Username:      usernameFromURI(uri),
			Password:      password,
		})
	}

	if caCertFile != "" {
		tlsConfig, err := tlsConfigFromCA(caCertFile)
		if err != nil {
			return nil, fmt.Errorf("failed to create TLS config: %v", err)
		}
		clientOptions.SetTLSConfig(tlsConfig)
	}

	client, err := mongo.Connect(ctx, clientOptions)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to document store: %v", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx, nil); err != nil {
		return nil, fmt.Errorf("failed to ping document store: %v", err)
	}

	db := client.Database(database)
	return &MongoStore{
		client:       client,
		database:     db,
		instructions: db.Collection("instructions"),
		events:       db.Collection("events"),
		admins:       db.Collection("admins"),
		studios:      db.Collection("studios"),
	}, nil
}

// Close disconnects from the document database
func (s *MongoStore) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

// SetInstruction writes an instruction document, replacing any existing
// document at the same (studio, title) key. Last writer wins.
func (s *MongoStore) SetInstruction(ctx context.Context, instruction *Instruction) error {
	filter := bson.M{"studio_name": instruction.StudioName, "title": instruction.Title}
	_, err := s.instructions.ReplaceOne(ctx, filter, instruction, options.Replace().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("failed to set instruction: %v", err)
	}
	return nil
}

// GetInstruction retrieves a single instruction by its (studio, title) key
func (s *MongoStore) GetInstruction(ctx context.Context, studioName, title string) (*Instruction, error) {
	var instruction Instruction
	err := s.instructions.FindOne(ctx, bson.M{"studio_name": studioName, "title": title}).Decode(&instruction)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get instruction: %v", err)
	}
	return &instruction, nil
}

// DeleteInstruction removes an instruction; deleting a missing document is
// not an error
func (s *MongoStore) DeleteInstruction(ctx context.Context, studioName, title string) error {
	_, err := s.instructions.DeleteOne(ctx, bson.M{"studio_name": studioName, "title": title})
	if err != nil {
		return fmt.Errorf("failed to delete instruction: %v", err)
	}
	return nil
}

// ListInstructions scans every instruction across all studios
func (s *MongoStore) ListInstructions(ctx context.Context) ([]*Instruction, error) {
	cursor, err := s.instructions.Find(ctx, bson.M{})
	if err != nil {
		return nil, fmt.Errorf("failed to list instructions: %v", err)
	}
	defer cursor.Close(ctx)

	instructions := make([]*Instruction, 0)
	for cursor.Next(ctx) {
		var instruction Instruction
		if err := cursor.Decode(&instruction); err != nil {
			return nil, fmt.Errorf("failed to decode instruction: %v", err)
		}
		instructions = append(instructions, &instruction)
	}

	if err := cursor.Err(); err != nil {
		return nil, fmt.Errorf("cursor error: %v", err)
	}

	return instructions, nil
}

// SetEvent writes an event document, replacing any existing document at the
// same (studio, name) key
func (s *MongoStore) SetEvent(ctx context.Context, event *Event) error {
	filter := bson.M{"studio_name": event.StudioName, "name": event.Name}
	_, err := s.events.ReplaceOne(ctx, filter, event, options.Replace().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("failed to set event: %v", err)
	}
	return nil
}

// DeleteEvent removes an event; deleting a missing document is not an error
func (s *MongoStore) DeleteEvent(ctx context.Context, studioName, eventName string) error {
	_, err := s.events.DeleteOne(ctx, bson.M{"studio_name": studioName, "name": eventName})
	if err != nil {
		return fmt.Errorf("failed to delete event: %v", err)
	}
	return nil
}

// ListEvents scans the events of one studio
func (s *MongoStore) ListEvents(ctx context.Context, studioName string) ([]*Event, error) {
	return s.findEvents(ctx, bson.M{"studio_name": studioName})
}

// ListAllEvents scans every event across all studios
func (s *MongoStore) ListAllEvents(ctx context.Context) ([]*Event, error) {
	return s.findEvents(ctx, bson.M{})
}

func (s *MongoStore) findEvents(ctx context.Context, filter bson.M) ([]*Event, error) {
	cursor, err := s.events.Find(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list events: %v", err)
	}
	defer cursor.Close(ctx)

	events := make([]*Event, 0)
	for cursor.Next(ctx) {
		var event Event
		if err := cursor.Decode(&event); err != nil {
			return nil, fmt.Errorf("failed to decode event: %v", err)
		}
		events = append(events, &event)
	}

	if err := cursor.Err(); err != nil {
		return nil, fmt.Errorf("cursor error: %v", err)
	}

	return events, nil
}

// CreateAdmin adds an admin id; creating an existing id fails with
// ErrAlreadyExists
func (s *MongoStore) CreateAdmin(ctx context.Context, adminID string) error {
	return s.createRegistryItem(ctx, s.admins, adminID)
}

// ListAdmins returns every admin id
func (s *MongoStore) ListAdmins(ctx context.Context) ([]string, error) {
	return s.listRegistryItems(ctx, s.admins)
}

// DeleteAdmin removes an admin id; deleting a missing id is not an error
func (s *MongoStore) DeleteAdmin(ctx context.Context, adminID string) error {
	return s.deleteRegistryItem(ctx, s.admins, adminID)
}

// CreateStudio adds a studio name; creating an existing name fails with
// ErrAlreadyExists
func (s *MongoStore) CreateStudio(ctx context.Context, studioName string) error {
	return s.createRegistryItem(ctx, s.studios, studioName)
}

// ListStudios returns every studio name
func (s *MongoStore) ListStudios(ctx context.Context) ([]string, error) {
	return s.listRegistryItems(ctx, s.studios)
}

// DeleteStudio removes a studio name; deleting a missing name is not an error
func (s *MongoStore) DeleteStudio(ctx context.Context, studioName string) error {
	return s.deleteRegistryItem(ctx, s.studios, studioName)
}

func (s *MongoStore) createRegistryItem(ctx context.Context, coll *mongo.Collection, id string) error {
	count, err := coll.CountDocuments(ctx, bson.M{"id": id})
	if err != nil {
		return fmt.Errorf("failed to check existence: %v", err)
	}
	if count > 0 {
		return ErrAlreadyExists
	}

	if _, err := coll.InsertOne(ctx, registryItem{ID: id}); err != nil {
		return fmt.Errorf("failed to insert: %v", err)
	}
	return nil
}

func (s *MongoStore) listRegistryItems(ctx context.Context, coll *mongo.Collection) ([]string, error) {
	cursor, err := coll.Find(ctx, bson.M{})
	if err != nil {
		return nil, fmt.Errorf("failed to list: %v", err)
	}
	defer cursor.Close(ctx)

	ids := make([]string, 0)
	for cursor.Next(ctx) {
		var item registryItem
		if err := cursor.Decode(&item); err != nil {
			return nil, fmt.Errorf("failed to decode: %v", err)
		}
		ids = append(ids, item.ID)
	}

	if err := cursor.Err(); err != nil {
		return nil, fmt.Errorf("cursor error: %v", err)
	}

	return ids, nil
}

func (s *MongoStore) deleteRegistryItem(ctx context.Context, coll *mongo.Collection, id string) error {
	if _, err := coll.DeleteOne(ctx, bson.M{"id": id}); err != nil {
		return fmt.Errorf("failed to delete: %v", err)
	}
	return nil
}
