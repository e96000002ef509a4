// Command sample runs a demo API exercising every major svcmap feature:
// typed operations, facet binding, form uploads, content and language
// negotiation, and the redirect/created/accepted response wrappers.
//
// Configuration comes from the environment:
//
//	ADDR=:8080            listen address
//	RATE_LIMIT=50         requests per second per client
//	BODY_LIMIT=1048576    max request body in bytes
//	LOG_LEVEL=info        slog level
//
// Try:
//
//	GET    http://localhost:8080/v1/notes               list (query binding, language negotiation)
//	POST   http://localhost:8080/v1/notes               create (201 + Location)
//	GET    http://localhost:8080/v1/notes/{id}          fetch (path binding)
//	PUT    http://localhost:8080/v1/notes/{id}          update
//	DELETE http://localhost:8080/v1/notes/{id}          delete (204)
//	POST   http://localhost:8080/v1/notes/{id}/export   async export (202)
//	POST   http://localhost:8080/v1/attachments         multipart upload
//	GET    http://localhost:8080/v1/legacy              redirect wrapper
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"slices"
	"sort"
	"sync"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/google/uuid"

	"github.com/svcmap/svcmap"
)

type config struct {
	Addr      string     `env:"ADDR" envDefault:":8080"`
	RateLimit float64    `env:"RATE_LIMIT" envDefault:"50"`
	BodyLimit int64      `env:"BODY_LIMIT" envDefault:"1048576"`
	LogLevel  slog.Level `env:"LOG_LEVEL" envDefault:"info"`
}

func main() {
	var cfg config
	if err := env.Parse(&cfg); err != nil {
		fmt.Fprintln(os.Stderr, "config:", err)
		os.Exit(1)
	}

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.LogLevel}))
	slog.SetDefault(logger)

	r := newRouter(cfg)
	r.Use(
		svcmap.Recovery(),
		svcmap.RequestID(),
		svcmap.Logger(logger),
		svcmap.RateLimit(svcmap.RateLimitConfig{Rate: cfg.RateLimit, Burst: int(cfg.RateLimit)}),
		svcmap.BodyLimit(cfg.BodyLimit),
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	logger.Info("listening", "addr", cfg.Addr)
	if err := r.ListenAndServe(ctx, cfg.Addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("server error", "err", err)
		os.Exit(1)
	}
}

// note is the demo resource.
type note struct {
	ID      string    `json:"id"`
	Title   string    `json:"title"`
	Body    string    `json:"body,omitempty"`
	Tags    []string  `json:"tags,omitempty"`
	Created time.Time `json:"created"`
}

// store is an in-memory note store.
type store struct {
	mu    sync.RWMutex
	notes map[string]note
}

func newRouter(cfg config) *svcmap.Router {
	st := &store{notes: make(map[string]note)}
	r := svcmap.New()

	svc := r.Service("/v1/notes", svcmap.ServiceLanguages("en", "de", "fr"))

	svcmap.Get(svc, "", st.list)
	svcmap.Post(svc, "", st.create, svcmap.Consumes("application/json"))
	svcmap.Get(svc, "/{id}", st.get)
	svcmap.Put(svc, "/{id}", st.update)
	svcmap.Delete(svc, "/{id}", st.remove)
	svcmap.Post(svc, "/{id}/export", st.export)

	svcmap.Post(r, "/v1/attachments", uploadAttachment, svcmap.WithBodyLimit(8<<20))
	svcmap.Get(r, "/v1/legacy", func(_ context.Context, _ *svcmap.Void) (*svcmap.Redirect, error) {
		return &svcmap.Redirect{URL: "/v1/notes", Status: http.StatusMovedPermanently}, nil
	})

	return r
}

type listReq struct {
	Tag   string `query:"tag"`
	Limit int    `query:"limit" default:"20" min:"1" max:"100"`
}

type listResp struct {
	Notes []note `json:"notes"`
	Lang  string `json:"lang,omitempty"`
}

func (s *store) list(ctx context.Context, req *listReq) (*listResp, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]note, 0, len(s.notes))
	for _, n := range s.notes {
		if req.Tag != "" && !slices.Contains(n.Tags, req.Tag) {
			continue
		}
		out = append(out, n)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Created.Before(out[j].Created) })
	if len(out) > req.Limit {
		out = out[:req.Limit]
	}
	return &listResp{Notes: out, Lang: svcmap.LanguageFrom(ctx)}, nil
}

type createReq struct {
	Body struct {
		Title string   `json:"title" required:"true" maxlen:"200"`
		Text  string   `json:"body"`
		Tags  []string `json:"tags"`
	}
}

func (s *store) create(_ context.Context, req *createReq) (*svcmap.Created, error) {
	n := note{
		ID:      uuid.NewString(),
		Title:   req.Body.Title,
		Body:    req.Body.Text,
		Tags:    req.Body.Tags,
		Created: time.Now().UTC(),
	}

	s.mu.Lock()
	s.notes[n.ID] = n
	s.mu.Unlock()

	return &svcmap.Created{Location: "/v1/notes/" + n.ID, Body: n}, nil
}

type idReq struct {
	ID string `path:"id" required:"true"`
}

func (s *store) get(_ context.Context, req *idReq) (*note, error) {
	s.mu.RLock()
	n, ok := s.notes[req.ID]
	s.mu.RUnlock()
	if !ok {
		return nil, svcmap.Errorf(http.StatusNotFound, "note %s not found", req.ID)
	}
	return &n, nil
}

type updateReq struct {
	ID   string `path:"id" required:"true"`
	Body struct {
		Title string   `json:"title" required:"true" maxlen:"200"`
		Text  string   `json:"body"`
		Tags  []string `json:"tags"`
	}
}

func (s *store) update(_ context.Context, req *updateReq) (*note, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	n, ok := s.notes[req.ID]
	if !ok {
		return nil, svcmap.Errorf(http.StatusNotFound, "note %s not found", req.ID)
	}
	n.Title = req.Body.Title
	n.Body = req.Body.Text
	n.Tags = req.Body.Tags
	s.notes[req.ID] = n
	return &n, nil
}

func (s *store) remove(_ context.Context, req *idReq) (*svcmap.Void, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.notes[req.ID]; !ok {
		return nil, svcmap.Errorf(http.StatusNotFound, "note %s not found", req.ID)
	}
	delete(s.notes, req.ID)
	return &svcmap.Void{}, nil
}

type exportStatus struct {
	JobID string `json:"job_id"`
	State string `json:"state"`
}

func (s *store) export(_ context.Context, req *idReq) (*svcmap.Accepted, error) {
	s.mu.RLock()
	_, ok := s.notes[req.ID]
	s.mu.RUnlock()
	if !ok {
		return nil, svcmap.Errorf(http.StatusNotFound, "note %s not found", req.ID)
	}
	// The demo has no job queue; a real service would enqueue here.
	return &svcmap.Accepted{Body: exportStatus{JobID: uuid.NewString(), State: "queued"}}, nil
}

type uploadReq struct {
	Note string            `form:"note"`
	File svcmap.FileUpload `form:"file"`
}

type uploadResp struct {
	Filename string `json:"filename"`
	Size     int64  `json:"size"`
}

func uploadAttachment(_ context.Context, req *uploadReq) (*uploadResp, error) {
	if req.File.Filename == "" {
		return nil, svcmap.Error(http.StatusBadRequest, "file field is required")
	}
	return &uploadResp{Filename: req.File.Filename, Size: req.File.Size}, nil
}
