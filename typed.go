/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package contentstore

import (
	"context"
	"fmt"
	"reflect"
	"time"

	"github.com/go-openapi/strfmt"
	"github.com/mitchellh/mapstructure"

	"github.com/suparena/contentstore/storagemodels"
)

// TypedPage is a Page whose documents are decoded into T.
type TypedPage[T any] struct {
	storagemodels.Page
	Docs []T `json:"docs"`
}

// Typed decodes retrieval results into T. Fields are matched by their json tag.
type Typed[T any] struct {
	r *Retriever
}

// NewTyped wraps r for documents of type T.
func NewTyped[T any](r *Retriever) *Typed[T] {
	return &Typed[T]{r: r}
}

// Find returns a decoded page of collection documents.
func (t *Typed[T]) Find(ctx context.Context, args FindArgs) (TypedPage[T], error) {
	page, err := t.r.Find(ctx, args)
	if err != nil {
		return TypedPage[T]{}, err
	}

	docs := make([]T, 0, len(page.Docs))
	for _, doc := range page.Docs {
		v, err := Decode[T](doc)
		if err != nil {
			return TypedPage[T]{}, err
		}
		docs = append(docs, *v)
	}
	page.Docs = nil

	return TypedPage[T]{Page: page, Docs: docs}, nil
}

// FindOne returns the first matching document, or nil.
func (t *Typed[T]) FindOne(ctx context.Context, args FindOneArgs) (*T, error) {
	return decodeOne[T](t.r.FindOne(ctx, args))
}

// FindByID returns the document with id, or nil.
func (t *Typed[T]) FindByID(ctx context.Context, args FindByIDArgs) (*T, error) {
	return decodeOne[T](t.r.FindByID(ctx, args))
}

// FindGlobal returns the document of a global, or nil.
func (t *Typed[T]) FindGlobal(ctx context.Context, args FindGlobalArgs) (*T, error) {
	return decodeOne[T](t.r.FindGlobal(ctx, args))
}

func decodeOne[T any](doc storagemodels.Document, err error) (*T, error) {
	if err != nil || doc == nil {
		return nil, err
	}
	return Decode[T](doc)
}

// Decode converts doc into a T. Strings are converted to time.Time and
// strfmt.DateTime fields, and scalar types are converted weakly.
func Decode[T any](doc storagemodels.Document) (*T, error) {
	var v T
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		TagName:          "json",
		WeaklyTypedInput: true,
		Result:           &v,
		DecodeHook: mapstructure.ComposeDecodeHookFunc(
			stringToDateTimeHook,
			mapstructure.StringToTimeHookFunc(time.RFC3339Nano),
		),
	})
	if err != nil {
		return nil, err
	}
	if err := dec.Decode(doc); err != nil {
		return nil, fmt.Errorf("failed to decode document into %T: %w", v, err)
	}
	return &v, nil
}

var dateTimeType = reflect.TypeOf(strfmt.DateTime{})

func stringToDateTimeHook(from, to reflect.Type, data any) (any, error) {
	if to != dateTimeType {
		return data, nil
	}
	switch v := data.(type) {
	case string:
		return strfmt.ParseDateTime(v)
	case time.Time:
		return strfmt.DateTime(v), nil
	default:
		return data, nil
	}
}
