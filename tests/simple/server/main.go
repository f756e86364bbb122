// Demo server: a GraphQL endpoint over an in-memory document.
//
// Deferred fields (@lazy) resolve through the shared queue with an
// artificial delay, so depth-wise batching is visible in the logs: every
// field of one depth finishes before the next depth starts.
package main

import (
	"context"
	"flag"
	"log"
	"net/http"
	"time"

	"github.com/graphmill/graphmill/internal/docrt"
	"github.com/graphmill/graphmill/internal/eventbus"
	"github.com/graphmill/graphmill/internal/events"
	"github.com/graphmill/graphmill/internal/interpreter"
	"github.com/graphmill/graphmill/internal/introspection"
	"github.com/graphmill/graphmill/internal/otel"
	"github.com/graphmill/graphmill/internal/schema"
	"github.com/graphmill/graphmill/internal/server"
)

const sdl = `
type Query {
  company: Organization
  users(first: Int): [User!]
  featured: Post @lazy
}

type Organization {
  id: ID!
  name: String!
  description: String
  members: [User!] @lazy
}

type User {
  id: ID!
  name: String!
  email: String!
  age: Int
  active: Boolean!
  profile: Profile @lazy
  posts: [Post!] @lazy
}

type Profile {
  bio: String
  avatarUrl: String
}

type Post {
  id: ID!
  title: String!
  content: String
  published: Boolean!
  related: SearchResult
}

union SearchResult = User | Post
`

func seedDocument() map[string]any {
	user1 := map[string]any{
		"id": "user-1", "name": "John Doe", "email": "john@example.com",
		"age": 30, "active": true,
		"profile": map[string]any{
			"bio":       "Software engineer with passion for Go",
			"avatarUrl": "https://example.com/avatar/john.jpg",
		},
		"posts": []any{
			map[string]any{
				"id": "post-1", "title": "Getting Started with Go",
				"content":   "Go is a statically typed, compiled programming language...",
				"published": true,
			},
			map[string]any{
				"id": "post-3", "title": "Draft Post",
				"content":   "This is a draft post...",
				"published": false,
			},
		},
	}
	user2 := map[string]any{
		"id": "user-2", "name": "Jane Smith", "email": "jane@example.com",
		"age": 28, "active": true,
		"profile": map[string]any{
			"bio":       "Full-stack developer",
			"avatarUrl": "https://example.com/avatar/jane.jpg",
		},
		"posts": []any{
			map[string]any{
				"id": "post-2", "title": "GraphQL Best Practices",
				"content":   "When designing GraphQL APIs, consider these best practices...",
				"published": true,
			},
		},
	}
	user3 := map[string]any{
		"id": "user-3", "name": "Bob Johnson", "email": "bob@example.com",
		"age": 35, "active": false,
	}

	return map[string]any{
		"company": map[string]any{
			"id": "org-1", "name": "Tech Corp", "description": "A technology company",
			"members": []any{user1, user2, user3},
		},
		"users": []any{user1, user2, user3},
		"featured": map[string]any{
			"id": "post-1", "title": "Getting Started with Go",
			"content":   "Go is a statically typed, compiled programming language...",
			"published": true,
			"related": map[string]any{
				"__typename": "Post",
				"id":         "post-2", "title": "GraphQL Best Practices", "published": true,
			},
		},
	}
}

func main() {
	addr := flag.String("addr", ":8080", "the address to listen on")
	lazyDelay := flag.Duration("lazy.delay", 150*time.Millisecond, "delay before deferred fields produce values")
	otelEndpoint := flag.String("otel.endpoint", "", "OTLP collector endpoint")
	flag.Parse()

	sch, err := schema.BuildFromSDL(sdl)
	if err != nil {
		log.Fatalf("build schema: %v", err)
	}

	eventbus.Use(eventbus.New())
	subscribeLogging()
	shutdown, err := otel.Setup(*otelEndpoint, "graphmill-demo")
	if err != nil {
		log.Fatalf("otel setup: %v", err)
	}
	defer func() { _ = shutdown(context.Background()) }()

	rt, err := docrt.New(sch, seedDocument(), docrt.WithDelay(*lazyDelay))
	if err != nil {
		log.Fatalf("load document: %v", err)
	}

	var runtime interpreter.Runtime = rt
	wrapper := introspection.Wrap(runtime, sch)
	runtime = wrapper.Runtime
	sch = wrapper.Schema

	h, err := server.New(runtime, sch,
		server.WithPretty(),
		server.WithParallelism(4),
		server.WithContextHeaders("x-demo-user"),
	)
	if err != nil {
		log.Fatalf("server init: %v", err)
	}

	mux := http.NewServeMux()
	mux.Handle("/graphql", h)

	log.Printf("GraphQL demo listening on %s", *addr)
	log.Printf(`try: curl -s localhost%s/graphql -d '{"query":"{ company { name members { name posts { title } } } }"}'`, *addr)
	if err := http.ListenAndServe(*addr, mux); err != nil {
		log.Fatalf("serve: %v", err)
	}
}

// subscribeLogging logs exactly one line per resolution and one per
// operation, with path, duration, and error when present.
func subscribeLogging() {
	eventbus.Subscribe(func(_ context.Context, e events.ResolveFinish) {
		if e.Err != nil {
			log.Printf("resolve path=%s field=%s lazy=%v duration=%s error=%q", e.Path, e.Field, e.Lazy, e.Duration, e.Err)
			return
		}
		log.Printf("resolve path=%s field=%s lazy=%v duration=%s", e.Path, e.Field, e.Lazy, e.Duration)
	})
	eventbus.Subscribe(func(_ context.Context, e events.ExecutionFinish) {
		log.Printf("graphql operation=%q type=%s errors=%d duration=%s", e.OperationName, e.OperationType, e.ErrorCount, e.Duration)
	})
}
