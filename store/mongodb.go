package store

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const defaultOpTimeout = 5 * time.Second

type DB struct {
	Client   *mongo.Client
	Database *mongo.Database
	// OpTimeout bounds every store call.
	OpTimeout time.Duration
}

func NewMongoDB(ctx context.Context, uri, dbName string, opTimeout time.Duration) (*DB, error) {
	if opTimeout <= 0 {
		opTimeout = defaultOpTimeout
	}
	opts := options.Client().
		ApplyURI(uri).
		SetConnectTimeout(opTimeout).
		SetServerSelectionTimeout(opTimeout)
	client, err := mongo.Connect(ctx, opts)
	if err != nil {
		return nil, classify(err, "connect", "")
	}
	pingCtx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()
	if err := client.Ping(pingCtx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, classify(err, "ping", "")
	}
	logrus.WithField("db", dbName).Info("connected to MongoDB")
	db := &DB{
		Client:    client,
		Database:  client.Database(dbName),
		OpTimeout: opTimeout,
	}
	if err := db.EnsureIndexes(ctx); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, err
	}
	return db, nil
}

func (db *DB) Users() *mongo.Collection {
	return db.Database.Collection("users")
}

func (db *DB) Books() *mongo.Collection {
	return db.Database.Collection("books")
}

// EnsureIndexes creates the unique indexes that make ISBN and username
// collisions fail inside the store, plus the default list order index.
func (db *DB) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := db.opContext(ctx)
	defer cancel()
	_, err := db.Books().Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "isbn", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "createdAt", Value: -1}, {Key: "_id", Value: 1}}},
	})
	if err != nil {
		return classify(err, "create book indexes", "")
	}
	_, err = db.Users().Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "username", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	return classify(err, "create user indexes", "")
}

func (db *DB) opContext(ctx context.Context) (context.Context, context.CancelFunc) {
	timeout := db.OpTimeout
	if timeout <= 0 {
		timeout = defaultOpTimeout
	}
	return context.WithTimeout(ctx, timeout)
}

func (db *DB) Close(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	return db.Client.Disconnect(ctx)
}
