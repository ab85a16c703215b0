package mongostore

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"internship-scraper/internal/domain"
	"internship-scraper/internal/fingerprint"
	"internship-scraper/internal/store"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

type Config struct {
	URI        string
	Username   string
	Password   string
	Database   string
	Collection string
}

// Backend stores one document per fingerprint, using the hex fingerprint as
// _id so the server rejects a second insert of the same identity.
type Backend struct {
	client     *mongo.Client
	collection *mongo.Collection
	seq        atomic.Int64
}

var _ store.Backend = (*Backend)(nil)

type jobDoc struct {
	ID        string           `bson:"_id"`
	Seq       int64            `bson:"seq"`
	Record    domain.JobRecord `bson:"record"`
	FirstSeen time.Time        `bson:"first_seen"`
}

func Open(ctx context.Context, cfg Config) (*Backend, error) {
	if cfg.Database == "" {
		cfg.Database = "internships"
	}
	if cfg.Collection == "" {
		cfg.Collection = "jobs"
	}

	opts := options.Client().ApplyURI(cfg.URI)
	if cfg.Username != "" {
		opts.SetAuth(options.Credential{Username: cfg.Username, Password: cfg.Password})
	}
	client, err := mongo.Connect(opts)
	if err != nil {
		return nil, fmt.Errorf("error starting mongodb client: %w", err)
	}

	pctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := client.Ping(pctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("ping mongodb: %w", err)
	}

	coll := client.Database(cfg.Database).Collection(cfg.Collection)
	if _, err := coll.Indexes().CreateOne(pctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "seq", Value: 1}},
		Options: options.Index().SetName("seq_index"),
	}); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("error creating seq index: %w", err)
	}

	b := &Backend{client: client, collection: coll}
	b.seq.Store(time.Now().UnixNano())
	return b, nil
}

func (b *Backend) Insert(ctx context.Context, e store.Entry) (bool, error) {
	doc := jobDoc{
		ID:        e.Fingerprint.String(),
		Seq:       b.seq.Add(1),
		Record:    e.Record,
		FirstSeen: time.Now().UTC(),
	}
	if _, err := b.collection.InsertOne(ctx, doc); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

func (b *Backend) Load(ctx context.Context) ([]store.Entry, error) {
	cursor, err := b.collection.Find(ctx, bson.D{}, options.Find().SetSort(bson.D{{Key: "seq", Value: 1}}))
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var docs []jobDoc
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("error processing jobs: %w", err)
	}

	out := make([]store.Entry, 0, len(docs))
	for _, d := range docs {
		fp, err := fingerprint.Parse(d.ID)
		if err != nil {
			return nil, err
		}
		if d.Seq > b.seq.Load() {
			b.seq.Store(d.Seq)
		}
		out = append(out, store.Entry{Fingerprint: fp, Record: d.Record})
	}
	return out, nil
}

func (b *Backend) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return b.client.Disconnect(ctx)
}

// Drop deletes the collection; used by integration tests.
func (b *Backend) Drop(ctx context.Context) error {
	return b.collection.Drop(ctx)
}
