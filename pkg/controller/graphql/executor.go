package graphql

import (
	"bytes"
	"context"
	_ "embed"
	"encoding/json"

	"github.com/99designs/gqlgen/graphql"
	"github.com/vektah/gqlparser/v2"
	"github.com/vektah/gqlparser/v2/ast"
	"github.com/vektah/gqlparser/v2/gqlerror"
)

//go:embed schema.graphql
var schemaSource string

var parsedSchema = gqlparser.MustLoadSchema(&ast.Source{
	Name:    "schema.graphql",
	Input:   schemaSource,
	BuiltIn: false,
})

// executableSchema runs validated operations against the resolver. Root fields
// return domain values that are projected onto the selection set through their
// JSON form, so schema field names follow the JSON names of the domain types.
type executableSchema struct {
	schema   *ast.Schema
	resolver *Resolver
}

var _ graphql.ExecutableSchema = (*executableSchema)(nil)

// NewExecutableSchema creates an ExecutableSchema for the report API
func NewExecutableSchema(resolver *Resolver) graphql.ExecutableSchema {
	return &executableSchema{
		schema:   parsedSchema,
		resolver: resolver,
	}
}

func (e *executableSchema) Schema() *ast.Schema {
	return e.schema
}

func (e *executableSchema) Complexity(ctx context.Context, typeName, field string, childComplexity int, rawArgs map[string]any) (int, bool) {
	return 0, false
}

func (e *executableSchema) Exec(ctx context.Context) graphql.ResponseHandler {
	opCtx := graphql.GetOperationContext(ctx)

	var resp *graphql.Response
	switch opCtx.Operation.Operation {
	case ast.Query:
		resp = e.execute(ctx, opCtx, e.schema.Query, e.resolver.queryFields())
	case ast.Mutation:
		resp = e.execute(ctx, opCtx, e.schema.Mutation, e.resolver.mutationFields())
	default:
		resp = &graphql.Response{
			Errors: gqlerror.List{gqlerror.Errorf("unsupported GraphQL operation: %s", opCtx.Operation.Operation)},
		}
	}

	var done bool
	return func(ctx context.Context) *graphql.Response {
		if done {
			return nil
		}
		done = true
		return resp
	}
}

// execute resolves root fields in document order. A failing field becomes null
// and adds an error, leaving the other fields intact.
func (e *executableSchema) execute(ctx context.Context, opCtx *graphql.OperationContext, root *ast.Definition, resolvers map[string]rootField) *graphql.Response {
	data := &object{}
	var errs gqlerror.List

	for _, field := range collectFields(opCtx, opCtx.Operation.SelectionSet) {
		key := responseKey(field)
		path := ast.Path{ast.PathName(key)}

		if field.Name == "__typename" {
			data.set(key, root.Name)
			continue
		}

		resolve, ok := resolvers[field.Name]
		if !ok {
			errs = append(errs, gqlerror.ErrorPathf(path, "field %s is not available", field.Name))
			data.set(key, nil)
			continue
		}

		value, err := resolve(ctx, field.ArgumentMap(opCtx.Variables))
		if err != nil {
			errs = append(errs, toGQLError(ctx, path, err))
			data.set(key, nil)
			continue
		}

		projected, err := e.project(opCtx, field, value)
		if err != nil {
			errs = append(errs, toGQLError(ctx, path, err))
			data.set(key, nil)
			continue
		}
		data.set(key, projected)
	}

	raw, err := json.Marshal(data)
	if err != nil {
		return &graphql.Response{Errors: gqlerror.List{toGQLError(ctx, nil, err)}}
	}
	return &graphql.Response{Data: raw, Errors: errs}
}

func (e *executableSchema) project(opCtx *graphql.OperationContext, field *ast.Field, value any) (any, error) {
	raw, err := json.Marshal(value)
	if err != nil {
		return nil, err
	}
	var generic any
	if err := json.Unmarshal(raw, &generic); err != nil {
		return nil, err
	}
	return e.shape(opCtx, field.SelectionSet, field.Definition.Type, generic), nil
}

func (e *executableSchema) shape(opCtx *graphql.OperationContext, selSet ast.SelectionSet, typ *ast.Type, value any) any {
	if value == nil {
		return nil
	}

	if typ.Elem != nil {
		items, ok := value.([]any)
		if !ok {
			return nil
		}
		out := make([]any, len(items))
		for i, item := range items {
			out[i] = e.shape(opCtx, selSet, typ.Elem, item)
		}
		return out
	}

	def := e.schema.Types[typ.NamedType]
	if def == nil || def.IsLeafType() {
		return value
	}

	fields, ok := value.(map[string]any)
	if !ok {
		return nil
	}
	out := &object{}
	for _, f := range collectFields(opCtx, selSet) {
		key := responseKey(f)
		if f.Name == "__typename" {
			out.set(key, def.Name)
			continue
		}
		out.set(key, e.shape(opCtx, f.SelectionSet, f.Definition.Type, fields[f.Name]))
	}
	return out
}

// collectFields flattens fragments and applies @skip and @include. Fields sharing
// a response key are merged.
func collectFields(opCtx *graphql.OperationContext, selSet ast.SelectionSet) []*ast.Field {
	var fields []*ast.Field
	index := map[string]int{}

	var walk func(ast.SelectionSet)
	walk = func(selSet ast.SelectionSet) {
		for _, sel := range selSet {
			switch sel := sel.(type) {
			case *ast.Field:
				if !shouldInclude(sel.Directives, opCtx.Variables) {
					continue
				}
				key := responseKey(sel)
				if i, ok := index[key]; ok {
					merged := *fields[i]
					merged.SelectionSet = append(append(ast.SelectionSet{}, merged.SelectionSet...), sel.SelectionSet...)
					fields[i] = &merged
					continue
				}
				index[key] = len(fields)
				fields = append(fields, sel)

			case *ast.InlineFragment:
				if shouldInclude(sel.Directives, opCtx.Variables) {
					walk(sel.SelectionSet)
				}

			case *ast.FragmentSpread:
				if sel.Definition != nil && shouldInclude(sel.Directives, opCtx.Variables) {
					walk(sel.Definition.SelectionSet)
				}
			}
		}
	}
	walk(selSet)

	return fields
}

func shouldInclude(directives ast.DirectiveList, vars map[string]any) bool {
	if d := directives.ForName("skip"); d != nil {
		if skip, _ := d.ArgumentMap(vars)["if"].(bool); skip {
			return false
		}
	}
	if d := directives.ForName("include"); d != nil {
		if include, _ := d.ArgumentMap(vars)["if"].(bool); !include {
			return false
		}
	}
	return true
}

func responseKey(f *ast.Field) string {
	if f.Alias != "" {
		return f.Alias
	}
	return f.Name
}

// object is a JSON object that keeps the order of the selection set
type object struct {
	keys   []string
	values map[string]any
}

func (o *object) set(key string, value any) {
	if o.values == nil {
		o.values = map[string]any{}
	}
	if _, ok := o.values[key]; !ok {
		o.keys = append(o.keys, key)
	}
	o.values[key] = value
}

func (o *object) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, key := range o.keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		k, err := json.Marshal(key)
		if err != nil {
			return nil, err
		}
		buf.Write(k)
		buf.WriteByte(':')

		v, err := json.Marshal(o.values[key])
		if err != nil {
			return nil, err
		}
		buf.Write(v)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}
