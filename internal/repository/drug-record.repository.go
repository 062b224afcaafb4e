package repository

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/duccv/medrecords-api/internal/apperror"
	"github.com/duccv/medrecords-api/internal/model"
)

// DrugRecordRepository persists drug records keyed by application number.
type DrugRecordRepository interface {
	// Save inserts or replaces the record with the same application number.
	Save(ctx context.Context, record model.DrugRecord) (model.DrugRecord, error)
	FindByApplicationNumber(ctx context.Context, applicationNumber string) (model.DrugRecord, error)
	FindAll(ctx context.Context, page model.PageRequest) ([]model.DrugRecord, int64, error)
	FindByManufacturerName(ctx context.Context, name string, page model.PageRequest) ([]model.DrugRecord, int64, error)
	FindBySubstanceName(ctx context.Context, name string, page model.PageRequest) ([]model.DrugRecord, int64, error)
	FindByProductNumber(ctx context.Context, productNumber string, page model.PageRequest) ([]model.DrugRecord, int64, error)
}

type mongoDrugRecordRepository struct {
	read  *mongo.Collection
	write *mongo.Collection
}

// NewDrugRecordRepository reads through readDB and writes through writeDB.
func NewDrugRecordRepository(readDB, writeDB *mongo.Database) DrugRecordRepository {
	return &mongoDrugRecordRepository{
		read:  readDB.Collection(model.DrugRecordCollection),
		write: writeDB.Collection(model.DrugRecordCollection),
	}
}

func (r *mongoDrugRecordRepository) Save(ctx context.Context, record model.DrugRecord) (model.DrugRecord, error) {
	if record.ProductNumbers == nil {
		record.ProductNumbers = []string{}
	}

	_, err := r.write.ReplaceOne(ctx, byApplicationNumber(record.ApplicationNumber), record, upsertOptions())
	if err != nil {
		return model.DrugRecord{}, fmt.Errorf("upsert drug record %s: %w", record.ApplicationNumber, err)
	}
	return record, nil
}

func (r *mongoDrugRecordRepository) FindByApplicationNumber(ctx context.Context, applicationNumber string) (model.DrugRecord, error) {
	var record model.DrugRecord
	err := r.read.FindOne(ctx, byApplicationNumber(applicationNumber)).Decode(&record)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return model.DrugRecord{}, apperror.RecordNotFound(applicationNumber)
		}
		return model.DrugRecord{}, fmt.Errorf("find drug record %s: %w", applicationNumber, err)
	}
	return record, nil
}

func (r *mongoDrugRecordRepository) FindAll(ctx context.Context, page model.PageRequest) ([]model.DrugRecord, int64, error) {
	return r.findPage(ctx, bson.D{}, page)
}

func (r *mongoDrugRecordRepository) FindByManufacturerName(ctx context.Context, name string, page model.PageRequest) ([]model.DrugRecord, int64, error) {
	return r.findPage(ctx, byManufacturerName(name), page)
}

func (r *mongoDrugRecordRepository) FindBySubstanceName(ctx context.Context, name string, page model.PageRequest) ([]model.DrugRecord, int64, error) {
	return r.findPage(ctx, bySubstanceName(name), page)
}

// FindByProductNumber matches records whose productNumbers contain productNumber.
func (r *mongoDrugRecordRepository) FindByProductNumber(ctx context.Context, productNumber string, page model.PageRequest) ([]model.DrugRecord, int64, error) {
	return r.findPage(ctx, byProductNumber(productNumber), page)
}

func (r *mongoDrugRecordRepository) findPage(ctx context.Context, filter bson.D, page model.PageRequest) ([]model.DrugRecord, int64, error) {
	total, err := r.read.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("count drug records: %w", err)
	}

	records := []model.DrugRecord{}
	if total == 0 {
		return records, 0, nil
	}

	cursor, err := r.read.Find(ctx, filter, pageOptions(page))
	if err != nil {
		return nil, 0, fmt.Errorf("find drug records: %w", err)
	}
	if err := cursor.All(ctx, &records); err != nil {
		return nil, 0, fmt.Errorf("decode drug records: %w", err)
	}
	return records, total, nil
}

func byApplicationNumber(applicationNumber string) bson.D {
	return bson.D{{Key: "_id", Value: applicationNumber}}
}

func byManufacturerName(name string) bson.D {
	return bson.D{{Key: "manufacturerName", Value: name}}
}

func bySubstanceName(name string) bson.D {
	return bson.D{{Key: "substanceName", Value: name}}
}

// byProductNumber relies on Mongo matching a scalar against every element
// of an array field.
func byProductNumber(productNumber string) bson.D {
	return bson.D{{Key: "productNumbers", Value: productNumber}}
}

// upsertOptions makes Save insert when no record has the application number.
func upsertOptions() *options.ReplaceOptionsBuilder {
	return options.Replace().SetUpsert(true)
}

// pageOptions orders by application number so pages are stable.
func pageOptions(page model.PageRequest) *options.FindOptionsBuilder {
	return options.Find().
		SetSort(bson.D{{Key: "_id", Value: 1}}).
		SetSkip(page.Skip()).
		SetLimit(int64(page.Size))
}

// EnsureDrugRecordIndexes creates the secondary indexes used by the filtered listings.
func EnsureDrugRecordIndexes(ctx context.Context, db *mongo.Database) error {
	_, err := db.Collection(model.DrugRecordCollection).Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "manufacturerName", Value: 1}}},
		{Keys: bson.D{{Key: "substanceName", Value: 1}}},
		{Keys: bson.D{{Key: "productNumbers", Value: 1}}},
	})
	if err != nil {
		return fmt.Errorf("create drug record indexes: %w", err)
	}
	return nil
}
