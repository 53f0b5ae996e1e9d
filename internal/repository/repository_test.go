package repository

import (
	"context"
	"errors"

	"taskapi/internal/docstore"
)

var errBroken = errors.New("store unavailable")

// brokenDB fails every operation.
type brokenDB struct{}

func (brokenDB) Collection(string) docstore.Collection { return brokenCollection{} }
func (brokenDB) Ping(context.Context) error            { return errBroken }
func (brokenDB) Close(context.Context) error           { return nil }

type brokenCollection struct{}

func (brokenCollection) FindAll(context.Context, docstore.Filter) ([]docstore.Document, error) {
	return nil, errBroken
}
func (brokenCollection) FindOne(context.Context, docstore.Filter) (docstore.Document, error) {
	return nil, errBroken
}
func (brokenCollection) InsertOne(context.Context, docstore.Document) (string, error) {
	return "", errBroken
}
func (brokenCollection) UpdateOne(context.Context, docstore.Filter, docstore.Document) (int64, error) {
	return 0, errBroken
}
func (brokenCollection) DeleteOne(context.Context, docstore.Filter) (int64, error) {
	return 0, errBroken
}
