// Package mongostore implements docstore.Database on MongoDB.
package mongostore

import (
	"context"
	"errors"
	"time"

	"github.com/samber/oops"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"taskapi/internal/docstore"
	"taskapi/internal/logger"
)

type Database struct {
	client *mongo.Client
	db     *mongo.Database
}

// Connect dials uri and pings the primary before returning.
func Connect(ctx context.Context, uri, database string) (*Database, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, oops.Code("MONGO_CONNECT_FAILED").With("database", database).Wrap(err)
	}
	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, oops.Code("MONGO_PING_FAILED").With("database", database).Wrap(err)
	}

	logger.Info("mongo connected", "database", database)
	return &Database{client: client, db: client.Database(database)}, nil
}

func (d *Database) Collection(name string) docstore.Collection {
	return &Collection{coll: d.db.Collection(name)}
}

func (d *Database) Ping(ctx context.Context) error {
	return d.client.Ping(ctx, readpref.Primary())
}

func (d *Database) Close(ctx context.Context) error {
	return d.client.Disconnect(ctx)
}

// EnsureIndexes creates the unique email index on the users collection.
func (d *Database) EnsureIndexes(ctx context.Context) error {
	_, err := d.db.Collection(docstore.UsersCollection).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "email", Value: 1}},
		Options: options.Index().SetUnique(true).SetName("users_email_unique"),
	})
	if err != nil {
		return oops.Code("MONGO_INDEX_FAILED").With("collection", docstore.UsersCollection).Wrap(err)
	}
	return nil
}

type Collection struct {
	coll *mongo.Collection
}

func (c *Collection) FindAll(ctx context.Context, filter docstore.Filter) ([]docstore.Document, error) {
	f, ok := toFilter(filter)
	if !ok {
		return []docstore.Document{}, nil
	}

	cur, err := c.coll.Find(ctx, f)
	if err != nil {
		return nil, c.wrap("find", err)
	}
	var raw []bson.M
	if err := cur.All(ctx, &raw); err != nil {
		return nil, c.wrap("decode", err)
	}

	docs := make([]docstore.Document, 0, len(raw))
	for _, m := range raw {
		docs = append(docs, fromBSON(m))
	}
	return docs, nil
}

func (c *Collection) FindOne(ctx context.Context, filter docstore.Filter) (docstore.Document, error) {
	f, ok := toFilter(filter)
	if !ok {
		return nil, docstore.ErrNoDocuments
	}

	var m bson.M
	err := c.coll.FindOne(ctx, f).Decode(&m)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, docstore.ErrNoDocuments
	}
	if err != nil {
		return nil, c.wrap("find one", err)
	}
	return fromBSON(m), nil
}

func (c *Collection) InsertOne(ctx context.Context, doc docstore.Document) (string, error) {
	m := make(bson.M, len(doc))
	for k, v := range doc {
		if k != docstore.IDField {
			m[k] = v
		}
	}

	res, err := c.coll.InsertOne(ctx, m)
	if mongo.IsDuplicateKeyError(err) {
		return "", docstore.ErrDuplicate
	}
	if err != nil {
		return "", c.wrap("insert", err)
	}

	oid, ok := res.InsertedID.(primitive.ObjectID)
	if !ok {
		return "", oops.Code("MONGO_INSERT_FAILED").
			With("collection", c.coll.Name()).
			Errorf("unexpected inserted id type %T", res.InsertedID)
	}
	return oid.Hex(), nil
}

func (c *Collection) UpdateOne(ctx context.Context, filter docstore.Filter, partial docstore.Document) (int64, error) {
	f, ok := toFilter(filter)
	if !ok {
		return 0, nil
	}

	set := make(bson.M, len(partial))
	for k, v := range partial {
		if k != docstore.IDField {
			set[k] = v
		}
	}
	// $set rejects an empty document; report the match count instead.
	if len(set) == 0 {
		n, err := c.coll.CountDocuments(ctx, f, options.Count().SetLimit(1))
		if err != nil {
			return 0, c.wrap("count", err)
		}
		return n, nil
	}

	res, err := c.coll.UpdateOne(ctx, f, bson.M{"$set": set})
	if mongo.IsDuplicateKeyError(err) {
		return 0, docstore.ErrDuplicate
	}
	if err != nil {
		return 0, c.wrap("update", err)
	}
	return res.MatchedCount, nil
}

func (c *Collection) DeleteOne(ctx context.Context, filter docstore.Filter) (int64, error) {
	f, ok := toFilter(filter)
	if !ok {
		return 0, nil
	}

	res, err := c.coll.DeleteOne(ctx, f)
	if err != nil {
		return 0, c.wrap("delete", err)
	}
	return res.DeletedCount, nil
}

func (c *Collection) wrap(op string, err error) error {
	return oops.Code("MONGO_OPERATION_FAILED").
		With("operation", op).
		With("collection", c.coll.Name()).
		Wrap(err)
}

// toFilter converts a docstore filter to BSON. It reports false when the
// identifier is not a valid ObjectID, which can never match.
func toFilter(filter docstore.Filter) (bson.M, bool) {
	m := make(bson.M, len(filter))
	for k, v := range filter {
		if k != docstore.IDField {
			m[k] = v
			continue
		}
		s, ok := v.(string)
		if !ok {
			return nil, false
		}
		oid, err := primitive.ObjectIDFromHex(s)
		if err != nil {
			return nil, false
		}
		m[k] = oid
	}
	return m, true
}

func fromBSON(m bson.M) docstore.Document {
	doc := make(docstore.Document, len(m))
	for k, v := range m {
		doc[k] = fromBSONValue(v)
	}
	return doc
}

func fromBSONValue(v any) any {
	switch val := v.(type) {
	case primitive.ObjectID:
		return val.Hex()
	case primitive.DateTime:
		return val.Time().UTC()
	case bson.M:
		return map[string]any(fromBSON(val))
	case bson.D:
		out := make(map[string]any, len(val))
		for _, e := range val {
			out[e.Key] = fromBSONValue(e.Value)
		}
		return out
	case bson.A:
		out := make([]any, len(val))
		for i, e := range val {
			out[i] = fromBSONValue(e)
		}
		return out
	default:
		return v
	}
}
