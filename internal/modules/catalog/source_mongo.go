package catalog

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	apperrors "towquote/internal/errors"
)

// MongoSource reads {_id: name, body: "<json>"} documents. The body stays a string
// so the JSON key order is what the editor wrote.
type MongoSource struct {
	docs *mongo.Collection
}

type mongoDocument struct {
	Name      string    `bson:"_id"`
	Body      string    `bson:"body"`
	UpdatedAt time.Time `bson:"updated_at"`
}

func NewMongoSource(client *mongo.Client, database, collection string) *MongoSource {
	return &MongoSource{docs: client.Database(database).Collection(collection)}
}

func (s *MongoSource) Document(ctx context.Context, name string) ([]byte, error) {
	var doc mongoDocument
	err := s.docs.FindOne(ctx, bson.M{"_id": name}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, apperrors.Configuration("missing configuration document %q", name)
	}
	if err != nil {
		return nil, apperrors.Upstream(err, "read %s from mongodb", name)
	}
	return []byte(doc.Body), nil
}

func (s *MongoSource) Put(ctx context.Context, name string, body []byte) error {
	doc := mongoDocument{Name: name, Body: string(body), UpdatedAt: time.Now().UTC()}
	_, err := s.docs.ReplaceOne(ctx, bson.M{"_id": name}, doc, options.Replace().SetUpsert(true))
	return err
}
