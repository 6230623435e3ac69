package mongo

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/danapixels/stampboard/internal/core/domain"
)

const collectionBoards = "boards"

// boardID is the _id of the single board document. The whole board lives in
// one document so WriteAll stays a single atomic replace, preserving the
// whole-collection write semantics and the placement order of the stamps.
const boardID = "stampboard"

type boardDocument struct {
	ID     string         `bson:"_id"`
	Stamps []domain.Stamp `bson:"stamps"`
}

type StampRepository struct {
	col *mongo.Collection
}

func NewStampRepository(db *mongo.Database) *StampRepository {
	return &StampRepository{col: db.Collection(collectionBoards)}
}

// ReadAll returns every stamp on the board in placement order.
func (r *StampRepository) ReadAll(ctx context.Context) ([]domain.Stamp, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var doc boardDocument
	err := r.col.FindOne(ctx, bson.M{"_id": boardID}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return []domain.Stamp{}, nil
		}
		return nil, fmt.Errorf("mongo store: read board: %w", err)
	}
	if doc.Stamps == nil {
		doc.Stamps = []domain.Stamp{}
	}
	return doc.Stamps, nil
}

// WriteAll replaces the board document with the given stamps.
func (r *StampRepository) WriteAll(ctx context.Context, stamps []domain.Stamp) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	if stamps == nil {
		stamps = []domain.Stamp{}
	}

	doc := boardDocument{ID: boardID, Stamps: stamps}
	_, err := r.col.ReplaceOne(ctx, bson.M{"_id": boardID}, doc, options.Replace().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("mongo store: write board: %w", err)
	}
	return nil
}
