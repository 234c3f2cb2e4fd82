package repository

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"github.com/shariqkhan335/RFI-PROJ/internal/inventory"
)

// mongoDoc wraps a record: the body keeps the raw JSON so unknown fields
// survive, seq keeps insertion order.
type mongoDoc struct {
	ID   string `bson:"_id"`
	Seq  int64  `bson:"seq"`
	Body string `bson:"body"`
}

// MongoRepo keeps one collection per entity.
type MongoRepo struct {
	client *mongo.Client
	db     *mongo.Database
}

func NewMongoRepo(client *mongo.Client, database string) *MongoRepo {
	return &MongoRepo{client: client, db: client.Database(database)}
}

func (m *MongoRepo) col(entity string) *mongo.Collection { return m.db.Collection(entity) }

func (m *MongoRepo) List(ctx context.Context, entity string) ([]inventory.Record, error) {
	cur, err := m.col(entity).Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "seq", Value: 1}}))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	out := []inventory.Record{}
	for cur.Next(ctx) {
		var d mongoDoc
		if err := cur.Decode(&d); err != nil {
			return nil, err
		}
		r, err := inventory.ParseRecord([]byte(d.Body))
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, cur.Err()
}

func (m *MongoRepo) Get(ctx context.Context, entity, id string) (inventory.Record, error) {
	var d mongoDoc
	err := m.col(entity).FindOne(ctx, bson.M{"_id": id}).Decode(&d)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return inventory.ParseRecord([]byte(d.Body))
}

func (m *MongoRepo) Insert(ctx context.Context, entity string, rec inventory.Record) error {
	body, err := json.Marshal(rec)
	if err != nil {
		return err
	}
	_, err = m.col(entity).InsertOne(ctx, mongoDoc{ID: rec.ID(), Seq: time.Now().UnixNano(), Body: string(body)})
	if mongo.IsDuplicateKeyError(err) {
		return ErrDuplicateID
	}
	return err
}

func (m *MongoRepo) Replace(ctx context.Context, entity, id string, rec inventory.Record) error {
	body, err := json.Marshal(rec)
	if err != nil {
		return err
	}
	res, err := m.col(entity).UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": bson.M{"body": string(body)}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (m *MongoRepo) Ping(ctx context.Context) error { return m.client.Ping(ctx, readpref.Primary()) }

func (m *MongoRepo) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return m.client.Disconnect(ctx)
}
