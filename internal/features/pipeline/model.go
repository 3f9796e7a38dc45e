package pipeline

import (
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

type StageKind string

const (
	StageMatch   StageKind = "match"
	StageGroup   StageKind = "group"
	StageSort    StageKind = "sort"
	StageLimit   StageKind = "limit"
	StageUnwind  StageKind = "unwind"
	StageProject StageKind = "project"
)

// Stage is one aggregation step. The concrete types below are the only
// implementations.
type Stage interface {
	Kind() StageKind
	Document() bson.D
}

// Pipeline is an ordered list of stages; order is significant.
type Pipeline []Stage

// Mongo renders the pipeline for the driver.
func (p Pipeline) Mongo() mongo.Pipeline {
	out := make(mongo.Pipeline, 0, len(p))
	for _, stage := range p {
		out = append(out, stage.Document())
	}
	return out
}

func (p Pipeline) Kinds() []StageKind {
	kinds := make([]StageKind, len(p))
	for i, stage := range p {
		kinds[i] = stage.Kind()
	}
	return kinds
}

// FieldRef turns a field path into an aggregation expression ("$field").
func FieldRef(path string) string {
	return "$" + path
}

type Match struct {
	Filter bson.D
}

func (Match) Kind() StageKind { return StageMatch }

func (m Match) Document() bson.D {
	return bson.D{{Key: "$match", Value: m.Filter}}
}

type AccumulatorOp string

const (
	OpSum  AccumulatorOp = "$sum"
	OpAvg  AccumulatorOp = "$avg"
	OpMin  AccumulatorOp = "$min"
	OpMax  AccumulatorOp = "$max"
	OpPush AccumulatorOp = "$push"
)

type Accumulator struct {
	Field string
	Op    AccumulatorOp
	Expr  any
}

func Count(field string) Accumulator {
	return Accumulator{Field: field, Op: OpSum, Expr: 1}
}

func Sum(field, path string) Accumulator {
	return Accumulator{Field: field, Op: OpSum, Expr: FieldRef(path)}
}

func Avg(field, path string) Accumulator {
	return Accumulator{Field: field, Op: OpAvg, Expr: FieldRef(path)}
}

func Min(field, path string) Accumulator {
	return Accumulator{Field: field, Op: OpMin, Expr: FieldRef(path)}
}

func Max(field, path string) Accumulator {
	return Accumulator{Field: field, Op: OpMax, Expr: FieldRef(path)}
}

// SumProduct accumulates the sum of a*b per document, e.g. quantity x price.
func SumProduct(field, a, b string) Accumulator {
	return Accumulator{Field: field, Op: OpSum, Expr: bson.D{{Key: "$multiply", Value: bson.A{FieldRef(a), FieldRef(b)}}}}
}

// Group groups by Key into "_id". A nil Key produces a single synthetic group.
type Group struct {
	Key          any
	Accumulators []Accumulator
}

func (Group) Kind() StageKind { return StageGroup }

func (g Group) Document() bson.D {
	body := bson.D{{Key: "_id", Value: g.Key}}
	for _, acc := range g.Accumulators {
		body = append(body, bson.E{Key: acc.Field, Value: bson.D{{Key: string(acc.Op), Value: acc.Expr}}})
	}
	return bson.D{{Key: "$group", Value: body}}
}

type SortDirection int

const (
	Ascending  SortDirection = 1
	Descending SortDirection = -1
)

type SortKey struct {
	Field     string
	Direction SortDirection
}

type Sort struct {
	Keys []SortKey
}

func (Sort) Kind() StageKind { return StageSort }

func (s Sort) Document() bson.D {
	body := bson.D{}
	for _, k := range s.Keys {
		body = append(body, bson.E{Key: k.Field, Value: int(k.Direction)})
	}
	return bson.D{{Key: "$sort", Value: body}}
}

type Limit struct {
	N int64
}

func (Limit) Kind() StageKind { return StageLimit }

func (l Limit) Document() bson.D {
	return bson.D{{Key: "$limit", Value: l.N}}
}

type Unwind struct {
	Path string
}

func (Unwind) Kind() StageKind { return StageUnwind }

func (u Unwind) Document() bson.D {
	return bson.D{{Key: "$unwind", Value: FieldRef(u.Path)}}
}

type Project struct {
	Fields bson.D
}

func (Project) Kind() StageKind { return StageProject }

func (p Project) Document() bson.D {
	return bson.D{{Key: "$project", Value: p.Fields}}
}
