package interpreter

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	eventbus "github.com/graphmill/graphmill/internal/eventbus"
	events "github.com/graphmill/graphmill/internal/events"
	exec "github.com/graphmill/graphmill/internal/exec"
	language "github.com/graphmill/graphmill/internal/language"
	schema "github.com/graphmill/graphmill/internal/schema"
)

// Interpreter executes parsed GraphQL operations against a Runtime.
type Interpreter struct {
	runtime     Runtime
	schema      *schema.Schema
	parallelism int
}

// Option configures an Interpreter.
type Option func(*Interpreter)

// WithParallelism sets how many deferred tasks of one batch may be forced
// concurrently. The default of 1 forces batches sequentially, which keeps
// error order deterministic.
func WithParallelism(n int) Option {
	return func(in *Interpreter) {
		if n > 0 {
			in.parallelism = n
		}
	}
}

// New creates an Interpreter bound to a runtime and a schema.
func New(runtime Runtime, sch *schema.Schema, opts ...Option) *Interpreter {
	in := &Interpreter{runtime: runtime, schema: sch, parallelism: 1}
	for _, opt := range opts {
		opt(in)
	}
	return in
}

// Execute runs one operation from document and returns the response.
// Request errors (unknown operation, variable coercion failures) abort
// before the walk and return a Result without data; field errors during the
// walk are collected while execution continues.
func (in *Interpreter) Execute(
	ctx context.Context,
	document *language.QueryDocument,
	operationName string,
	variableValues map[string]any,
	rootValue any,
) *Result {
	operation := getOperation(document, operationName)
	if operation == nil {
		return &Result{Errors: []GraphQLError{{Message: "operation not found"}}}
	}

	query := &exec.Query{Schema: in.schema, Context: QueryContextFrom(ctx)}
	coerced, err := coerceVariableValues(in.schema, operation, variableValues, query)
	if err != nil {
		return &Result{Errors: []GraphQLError{{Message: err.Error()}}}
	}
	query.Variables = coerced

	var rootType *schema.Type
	switch operation.Operation {
	case language.Query:
		rootType = in.schema.GetQueryType()
	case language.Mutation:
		rootType = in.schema.GetMutationType()
	case language.Subscription:
		rootType = in.schema.GetSubscriptionType()
	default:
		return &Result{Errors: []GraphQLError{{Message: fmt.Sprintf("unsupported operation type: %s", operation.Operation)}}}
	}
	if rootType == nil {
		return &Result{Errors: []GraphQLError{{Message: fmt.Sprintf("root type not found for %s operation", operation.Operation)}}}
	}

	ectx := exec.NewContext(query)
	r := &run{
		in:        in,
		ctx:       ctx,
		document:  document,
		variables: coerced,
		errors:    []GraphQLError{},
	}

	ectx.EnterObject(rootValue, func() {
		if operation.Operation == language.Mutation {
			r.executeRootSerial(ectx, rootType, operation.SelectionSet)
		} else {
			r.executeSelections(ectx, rootType, operation.SelectionSet)
		}
	})
	if operation.Operation != language.Mutation {
		r.drain(ectx)
	}

	result := &Result{Errors: r.errors}
	if !ectx.CompletelyNulled() {
		result.Data = ectx.FinalValue()
	}
	return result
}

// run is the per-execution state shared by the synchronous walk and every
// deferred continuation.
type run struct {
	in        *Interpreter
	ctx       context.Context
	document  *language.QueryDocument
	variables map[string]any

	mu     sync.Mutex
	errors []GraphQLError
}

// executeRootSerial executes root fields one at a time, draining every
// deferred descendant of a field before starting the next one, so mutation
// root fields observe each other's side effects in declaration order.
func (r *run) executeRootSerial(ectx *exec.Context, rootType *schema.Type, selections language.SelectionSet) {
	grouped := r.collectFields(rootType, selections)
	for _, cf := range grouped.orderedFields() {
		r.executeField(ectx, rootType, cf)
		r.drain(ectx)
	}
}

// executeSelections runs every collected field of selections against the
// source object on top of ectx's object stack.
func (r *run) executeSelections(ectx *exec.Context, objectType *schema.Type, selections language.SelectionSet) {
	grouped := r.collectFields(objectType, selections)
	for _, cf := range grouped.orderedFields() {
		r.executeField(ectx, objectType, cf)
	}
}

func (r *run) executeField(ectx *exec.Context, objectType *schema.Type, cf collectedField) {
	field := cf.Fields[0]

	if field.Name == "__typename" {
		ectx.EnterPath(cf.ResponseName, func() {
			ectx.EnterType(schema.NonNullType(schema.NamedType("String")), func() {
				ectx.Write(objectType.Name)
			})
		})
		return
	}

	fieldDef := objectType.Field(field.Name)
	if fieldDef == nil {
		// Unknown field: record the error and leave the slot out of the result.
		ectx.EnterPath(cf.ResponseName, func() {
			r.addError(fmt.Sprintf("Cannot query field '%s' on type '%s'", field.Name, objectType.Name), ectx.Path())
		})
		return
	}

	source := ectx.CurrentObject()
	ectx.EnterPath(cf.ResponseName, func() {
		ectx.EnterType(fieldDef.Type, func() {
			args, err := ectx.CoerceArguments(fieldDef.Arguments, field.Arguments)
			if err == nil {
				err = checkRequiredArguments(fieldDef.Arguments, args)
			}
			if err != nil {
				r.addError(err.Error(), ectx.Path())
				ectx.Write(nil)
				return
			}

			value, err := r.resolve(ectx, objectType.Name, field.Name, source, args, fieldDef.Lazy)
			if err != nil {
				r.addFieldError(err, ectx.Path())
				ectx.Write(nil)
				return
			}
			ectx.AfterLazy(value, func(c *exec.Context, v any) {
				r.completeValue(c, fieldDef.Type, cf.Fields, v)
			})
		})
	})
}

func (r *run) resolve(ectx *exec.Context, objectType, field string, source any, args map[string]any, lazy bool) (any, error) {
	path := ectx.Path().String()
	eventbus.Publish(r.ctx, events.ResolveStart{ObjectType: objectType, Field: field, Path: path, Lazy: lazy})
	start := time.Now()
	value, err := r.in.runtime.Resolve(r.ctx, objectType, field, source, args)
	eventbus.Publish(r.ctx, events.ResolveFinish{ObjectType: objectType, Field: field, Path: path, Lazy: lazy, Err: err, Duration: time.Since(start)})
	return value, err
}

// completeValue finishes one resolved value at ectx's current position. The
// type committed at the position decides nullability; completion records
// errors and hands values to the writer, which performs any propagation.
func (r *run) completeValue(ectx *exec.Context, typ *schema.TypeRef, fields []*language.Field, value any) {
	if err, ok := value.(error); ok && schema.IsResolutionError(err) {
		r.addFieldError(err, ectx.Path())
		ectx.Write(nil)
		return
	}

	if typ.IsNonNull() {
		if isNullish(value) {
			if !r.hasErrorAt(ectx.Path()) {
				r.addError(fmt.Sprintf("Cannot return null for non-nullable field %s", ectx.Path()), ectx.Path())
			}
			ectx.Write(nil)
			return
		}
		r.completeValue(ectx, schema.Unwrap(typ), fields, value)
		return
	}

	if isNullish(value) {
		ectx.Write(nil)
		return
	}

	if typ.IsList() {
		r.completeList(ectx, typ, fields, value)
		return
	}

	namedType := schema.GetNamedType(typ)
	typeObj := r.in.schema.Types[namedType]
	if typeObj == nil {
		r.addError(fmt.Sprintf("Unknown type: %s", namedType), ectx.Path())
		ectx.Write(nil)
		return
	}

	switch typeObj.Kind {
	case schema.TypeKindScalar, schema.TypeKindEnum:
		serialized, err := r.in.runtime.SerializeLeaf(r.ctx, namedType, value)
		if err != nil {
			r.addError(err.Error(), ectx.Path())
			ectx.Write(nil)
			return
		}
		ectx.Write(serialized)
	case schema.TypeKindObject:
		r.completeObject(ectx, typeObj, fields, value)
	case schema.TypeKindInterface, schema.TypeKindUnion:
		r.completeAbstract(ectx, namedType, fields, value)
	default:
		r.addError(fmt.Sprintf("Cannot complete value of unexpected type: %s", typeObj.Kind), ectx.Path())
		ectx.Write(nil)
	}
}

func (r *run) completeList(ectx *exec.Context, listType *schema.TypeRef, fields []*language.Field, value any) {
	items, ok := sliceOf(value)
	if !ok {
		r.addError(fmt.Sprintf("Expected list value, got %T", value), ectx.Path())
		ectx.Write(nil)
		return
	}

	// Size the sequence up front so elements may complete in any order.
	ectx.Write(make([]any, len(items)))

	elemType := schema.Unwrap(listType)
	for i, item := range items {
		ectx.EnterPath(i, func() {
			ectx.EnterType(elemType, func() {
				ectx.AfterLazy(item, func(c *exec.Context, v any) {
					r.completeValue(c, elemType, fields, v)
				})
			})
		})
	}
}

func (r *run) completeObject(ectx *exec.Context, objectType *schema.Type, fields []*language.Field, value any) {
	// The container is written before any child so that children completing
	// later always descend through a live slot.
	ectx.Write(make(map[string]any))
	sub := mergeSelectionSets(fields)
	ectx.EnterObject(value, func() {
		r.executeSelections(ectx, objectType, sub)
	})
}

func (r *run) completeAbstract(ectx *exec.Context, abstractTypeName string, fields []*language.Field, value any) {
	typeName, err := r.in.runtime.ResolveType(r.ctx, abstractTypeName, value)
	if err != nil {
		r.addError(err.Error(), ectx.Path())
		ectx.Write(nil)
		return
	}
	objectType := r.in.schema.Types[typeName]
	if objectType == nil || objectType.Kind != schema.TypeKindObject {
		r.addError(fmt.Sprintf("Abstract type %s must resolve to an Object type at runtime. Got: %s", abstractTypeName, typeName), ectx.Path())
		ectx.Write(nil)
		return
	}
	r.completeObject(ectx, objectType, fields, value)
}

// drain forces deferred tasks in depth-wise batches until the queue is
// empty. Tasks enqueued while a batch runs form the next batch. Resolution
// errors have already been routed to their continuations by Task.Run; any
// other forcing error is a process failure that is recorded at the task's
// position and stops the drain.
func (r *run) drain(ectx *exec.Context) {
	queue := ectx.Queue()
	for queue.Len() > 0 {
		batch := queue.TakeBatch()
		if r.in.parallelism <= 1 {
			for _, task := range batch {
				if err := r.force(task); err != nil {
					return
				}
			}
			continue
		}
		g := new(errgroup.Group)
		g.SetLimit(r.in.parallelism)
		for _, task := range batch {
			g.Go(func() error { return r.force(task) })
		}
		if err := g.Wait(); err != nil {
			return
		}
	}
}

func (r *run) force(task *exec.Task) error {
	path := task.Context().Path().String()
	accessor := task.Accessor()
	eventbus.Publish(r.ctx, events.ResolveStart{Field: accessor, Path: path, Lazy: true})
	start := time.Now()
	err := task.Run(r.ctx)
	eventbus.Publish(r.ctx, events.ResolveFinish{Field: accessor, Path: path, Lazy: true, Err: err, Duration: time.Since(start)})
	if err != nil {
		r.addError(err.Error(), task.Context().Path())
		task.Context().Write(nil)
		return err
	}
	return nil
}

func (r *run) addError(message string, path exec.Path) {
	r.mu.Lock()
	r.errors = append(r.errors, GraphQLError{Message: message, Path: path})
	r.mu.Unlock()
}

// addFieldError records a resolver failure, carrying extensions through
// when the error declares them.
func (r *run) addFieldError(err error, path exec.Path) {
	var execErr *schema.ExecutionError
	if errors.As(err, &execErr) {
		r.mu.Lock()
		r.errors = append(r.errors, GraphQLError{Message: execErr.Message, Path: path, Extensions: execErr.Extensions})
		r.mu.Unlock()
		return
	}
	r.addError(err.Error(), path)
}

func (r *run) hasErrorAt(path exec.Path) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, e := range r.errors {
		if reflect.DeepEqual(e.Path, path) {
			return true
		}
	}
	return false
}

// checkRequiredArguments verifies that every non-null argument without a
// default received a value.
func checkRequiredArguments(defs []*schema.InputValue, args map[string]any) error {
	for _, def := range defs {
		v, ok := args[def.KeywordName()]
		if !ok {
			if def.Type.IsNonNull() {
				return fmt.Errorf("argument '%s' of required type was not provided", def.Name)
			}
			continue
		}
		if v == nil && def.Type.IsNonNull() {
			return fmt.Errorf("argument '%s' of required type must not be null", def.Name)
		}
	}
	return nil
}

// getOperation retrieves the operation from the document.
func getOperation(document *language.QueryDocument, operationName string) *language.OperationDefinition {
	if operationName == "" {
		if len(document.Operations) == 1 {
			return document.Operations[0]
		}
		return nil
	}
	return document.Operations.ForName(operationName)
}

// mergeSelectionSets merges selection sets from multiple fields collected
// under one response name.
func mergeSelectionSets(fields []*language.Field) language.SelectionSet {
	var merged language.SelectionSet
	for _, f := range fields {
		merged = append(merged, f.SelectionSet...)
	}
	return merged
}

func sliceOf(value any) ([]any, bool) {
	if direct, ok := value.([]any); ok {
		return direct, true
	}
	rv := reflect.ValueOf(value)
	if rv.Kind() != reflect.Slice {
		return nil, false
	}
	items := make([]any, rv.Len())
	for i := 0; i < rv.Len(); i++ {
		items[i] = rv.Index(i).Interface()
	}
	return items, true
}

// isNullish returns true for nil interfaces and typed nils.
func isNullish(v any) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Interface, reflect.Ptr, reflect.Slice, reflect.Map, reflect.Func, reflect.Chan:
		return rv.IsNil()
	default:
		return false
	}
}
