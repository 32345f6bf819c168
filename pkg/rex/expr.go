// Copyright 2019-2025 The Polypheny Project
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or
// implied. See the License for the specific language governing
// permissions and limitations under the License.

// Package rex implements the row-expression value nodes used inside operator
// predicates. Expressions are immutable comparable values: two separately
// constructed, structurally identical expressions compare equal and hash
// alike, so they are interchangeable as memo-cache key components.
package rex

import "fmt"

// Type is the static scalar type of an expression.
type Type uint8

const (
	// AnyType is used when the type of an expression is not known.
	AnyType Type = iota
	// BoolType is the boolean type.
	BoolType
	// IntType is the 64-bit integer type.
	IntType
	// FloatType is the 64-bit floating point type.
	FloatType
	// StringType is the string type.
	StringType

	numTypes
)

var typeNames = [numTypes]string{
	AnyType:    "any",
	BoolType:   "bool",
	IntType:    "int",
	FloatType:  "float",
	StringType: "string",
}

func (t Type) String() string {
	if t >= numTypes {
		return fmt.Sprintf("type(%d)", t)
	}
	return typeNames[t]
}

// Expr is a row expression node. All implementations are comparable value
// types, valid as Go map keys.
type Expr interface {
	fmt.Stringer

	// DataType reports the static type of the expression.
	DataType() Type
}

// LocalRef is a reference to a slot in the enclosing program, identified by
// its ordinal position. Equality is structural on (type, index).
type LocalRef struct {
	Index int
	Typ   Type
}

// DataType is part of the Expr interface.
func (r LocalRef) DataType() Type { return r.Typ }

func (r LocalRef) String() string { return fmt.Sprintf("$t%d", r.Index) }

// InputRef is a reference to a column of the input row, identified by its
// ordinal position.
type InputRef struct {
	Index int
	Typ   Type
}

// DataType is part of the Expr interface.
func (r InputRef) DataType() Type { return r.Typ }

func (r InputRef) String() string { return fmt.Sprintf("$%d", r.Index) }

// Literal is a constant value. Value must be a comparable Go value.
type Literal struct {
	Typ   Type
	Value interface{}
}

// DataType is part of the Expr interface.
func (l Literal) DataType() Type { return l.Typ }

func (l Literal) String() string { return fmt.Sprintf("%v", l.Value) }

// True and False are the boolean constant expressions.
var (
	True  = Literal{Typ: BoolType, Value: true}
	False = Literal{Typ: BoolType, Value: false}
)

// ComparisonOp identifies a comparison operator.
type ComparisonOp uint8

const (
	// EqOp is the = operator.
	EqOp ComparisonOp = iota
	// NeOp is the <> operator.
	NeOp
	// LtOp is the < operator.
	LtOp
	// LeOp is the <= operator.
	LeOp
	// GtOp is the > operator.
	GtOp
	// GeOp is the >= operator.
	GeOp

	numComparisonOps
)

var comparisonOpNames = [numComparisonOps]string{
	EqOp: "=",
	NeOp: "<>",
	LtOp: "<",
	LeOp: "<=",
	GtOp: ">",
	GeOp: ">=",
}

func (op ComparisonOp) String() string {
	if op >= numComparisonOps {
		return fmt.Sprintf("op(%d)", op)
	}
	return comparisonOpNames[op]
}

// Comparison applies a comparison operator to two operands.
type Comparison struct {
	Op    ComparisonOp
	Left  Expr
	Right Expr
}

// DataType is part of the Expr interface.
func (c Comparison) DataType() Type { return BoolType }

func (c Comparison) String() string {
	return fmt.Sprintf("(%s %s %s)", c.Left, c.Op, c.Right)
}

// And is the boolean conjunction of two expressions.
type And struct {
	Left  Expr
	Right Expr
}

// DataType is part of the Expr interface.
func (a And) DataType() Type { return BoolType }

func (a And) String() string { return fmt.Sprintf("(%s AND %s)", a.Left, a.Right) }

// Or is the boolean disjunction of two expressions.
type Or struct {
	Left  Expr
	Right Expr
}

// DataType is part of the Expr interface.
func (o Or) DataType() Type { return BoolType }

func (o Or) String() string { return fmt.Sprintf("(%s OR %s)", o.Left, o.Right) }

// Not is the boolean negation of an expression.
type Not struct {
	Input Expr
}

// DataType is part of the Expr interface.
func (n Not) DataType() Type { return BoolType }

func (n Not) String() string { return fmt.Sprintf("(NOT %s)", n.Input) }
