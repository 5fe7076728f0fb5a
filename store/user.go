package store

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/kevinaaaquil/book-inventory/backend/apperr"
	"github.com/kevinaaaquil/book-inventory/backend/models"
)

// UsersCount returns the number of documents in the users collection.
func (db *DB) UsersCount(ctx context.Context) (int64, error) {
	ctx, cancel := db.opContext(ctx)
	defer cancel()
	n, err := db.Users().CountDocuments(ctx, bson.M{})
	return n, classify(err, "count users", "")
}

func (db *DB) findUser(ctx context.Context, filter bson.M) (*models.User, error) {
	ctx, cancel := db.opContext(ctx)
	defer cancel()
	var u models.User
	err := db.Users().FindOne(ctx, filter).Decode(&u)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, classify(err, "find user", "")
	}
	return &u, nil
}

// UserByUsername matches the username exactly, case included.
func (db *DB) UserByUsername(ctx context.Context, username string) (*models.User, error) {
	return db.findUser(ctx, bson.M{"username": username})
}

func (db *DB) UserByID(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	return db.findUser(ctx, bson.M{"_id": id})
}

func (db *DB) CreateUser(ctx context.Context, user *models.User) error {
	ctx, cancel := db.opContext(ctx)
	defer cancel()
	user.ID = primitive.NilObjectID
	res, err := db.Users().InsertOne(ctx, user, options.InsertOne())
	if err != nil {
		return classify(err, "insert user", msgDuplicateUser)
	}
	user.ID = res.InsertedID.(primitive.ObjectID)
	return nil
}

// ListUsers returns one page of users, newest first.
func (db *DB) ListUsers(ctx context.Context, page models.PageRequest) ([]models.User, int64, error) {
	ctx, cancel := db.opContext(ctx)
	defer cancel()
	total, err := db.Users().CountDocuments(ctx, bson.M{})
	if err != nil {
		return nil, 0, classify(err, "count users", "")
	}
	opts := options.Find().
		SetSort(bson.D{{Key: "createdAt", Value: -1}, {Key: "_id", Value: 1}}).
		SetSkip(page.Skip()).
		SetLimit(int64(page.Limit)).
		SetProjection(bson.M{"password": 0})
	cur, err := db.Users().Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, 0, classify(err, "list users", "")
	}
	defer cur.Close(ctx)
	users := []models.User{}
	if err := cur.All(ctx, &users); err != nil {
		return nil, 0, classify(err, "list users", "")
	}
	return users, total, nil
}

func (db *DB) UpdateUser(ctx context.Context, id primitive.ObjectID, patch models.UserPatch) (*models.User, error) {
	if patch.Empty() {
		u, err := db.UserByID(ctx, id)
		if err == nil && u == nil {
			err = apperr.New(apperr.NotFound, msgUserNotFound)
		}
		return u, err
	}
	ctx, cancel := db.opContext(ctx)
	defer cancel()
	set := bson.M{}
	if patch.Name != nil {
		set["name"] = *patch.Name
	}
	if patch.Role != nil {
		set["role"] = *patch.Role
	}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var u models.User
	err := db.Users().FindOneAndUpdate(ctx, bson.M{"_id": id}, bson.M{"$set": set}, opts).Decode(&u)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, apperr.New(apperr.NotFound, msgUserNotFound)
	}
	if err != nil {
		return nil, classify(err, "update user", msgDuplicateUser)
	}
	return &u, nil
}

// UserNames resolves display names for createdBy references. Unknown ids are
// absent from the result.
func (db *DB) UserNames(ctx context.Context, ids []primitive.ObjectID) (map[primitive.ObjectID]string, error) {
	names := make(map[primitive.ObjectID]string, len(ids))
	if len(ids) == 0 {
		return names, nil
	}
	ctx, cancel := db.opContext(ctx)
	defer cancel()
	opts := options.Find().SetProjection(bson.M{"name": 1})
	cur, err := db.Users().Find(ctx, bson.M{"_id": bson.M{"$in": ids}}, opts)
	if err != nil {
		return nil, classify(err, "resolve user names", "")
	}
	defer cur.Close(ctx)
	for cur.Next(ctx) {
		var u struct {
			ID   primitive.ObjectID `bson:"_id"`
			Name string             `bson:"name"`
		}
		if err := cur.Decode(&u); err != nil {
			return nil, classify(err, "resolve user names", "")
		}
		names[u.ID] = u.Name
	}
	return names, classify(cur.Err(), "resolve user names", "")
}
