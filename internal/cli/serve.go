package cli

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"mime"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/matzehuels/umlsvg/pkg/config"
	"github.com/matzehuels/umlsvg/pkg/diagram"
	errs "github.com/matzehuels/umlsvg/pkg/errors"
	"github.com/matzehuels/umlsvg/pkg/observability"
	"github.com/matzehuels/umlsvg/pkg/pipeline"
	"github.com/matzehuels/umlsvg/pkg/render"
)

const (
	headerRequestID = "X-Request-ID"
	headerSkipped   = "X-Umlsvg-Skipped-Links"
	uploadField     = "diagram"
	shutdownTimeout = 5 * time.Second
)

func (c *CLI) serveCommand() *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve diagram rendering over HTTP",
		Long: `Start an HTTP server that renders diagrams.

  POST /render?format=svg&labels=edge   body: JSON or YAML document, or a
                                        multipart upload in field "diagram"
  GET  /schema                          the diagram JSON schema
  GET  /healthz                         liveness probe`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := c.Config
			if cmd.Flags().Changed("addr") {
				cfg.Serve.Addr = addr
			}
			return c.runServe(cmd.Context(), cfg)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", config.Default().Serve.Addr, "listen address")
	return cmd
}

func (c *CLI) runServe(ctx context.Context, cfg config.Config) error {
	srv := &http.Server{
		Addr:              cfg.Serve.Addr,
		Handler:           newServer(cfg, c.Logger).routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()
	printInfo("Listening on %s", StyleHighlight.Render(cfg.Serve.Addr))
	printKeyValue("labels", cfg.Labels)
	printKeyValue("max body", strconv.FormatInt(cfg.Serve.MaxBodyBytes, 10)+" bytes")

	select {
	case err := <-errCh:
		return errs.Wrap(errs.ErrCodeInternal, err, "listen %s", cfg.Serve.Addr)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	printSuccess("Server stopped")
	return nil
}

// server renders diagrams posted over HTTP. Every request decodes its own
// diagram, so handlers share nothing but the read-only config.
type server struct {
	cfg    config.Config
	logger *log.Logger
}

func newServer(cfg config.Config, logger *log.Logger) *server {
	return &server{cfg: cfg, logger: logger}
}

func (s *server) routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(s.requestID)
	r.Use(middleware.RequestSize(s.cfg.Serve.MaxBodyBytes))

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"ok":true,"service":"umlsvg"}`))
	})
	r.Get("/schema", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/schema+json")
		w.Write(diagram.Schema())
	})
	r.Post("/render", s.handleRender)
	return r
}

// requestID tags each request with an id, reports it to the server hooks
// and logs the outcome.
func (s *server) requestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(headerRequestID)
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set(headerRequestID, id)

		hooks := observability.Server()
		hooks.OnRequest(r.Context(), id, r.Method, r.URL.Path)

		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r.WithContext(withLogger(r.Context(), s.logger.With("request_id", id))))

		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		hooks.OnResponse(r.Context(), id, status, time.Since(start))
		s.logger.Info("request", "id", id, "method", r.Method, "path", r.URL.Path, "status", status, "duration", time.Since(start).Round(time.Millisecond))
	})
}

func (s *server) handleRender(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	format := render.FormatSVG
	if v := q.Get("format"); v != "" {
		f, err := render.ParseFormat(v)
		if err != nil {
			writeError(w, err)
			return
		}
		format = f
	}

	cfg := s.cfg
	if v := q.Get("labels"); v != "" {
		cfg.Labels = v
		if err := cfg.Validate(); err != nil {
			writeError(w, err)
			return
		}
	}

	data, syntax, err := s.readDiagram(r)
	if err != nil {
		writeError(w, err)
		return
	}

	runner := pipeline.NewRunner(loggerFromContext(r.Context()))
	result, err := runner.Execute(r.Context(), pipeline.Options{
		Data:         data,
		Syntax:       syntax,
		EAStyles:     cfg.EAStyles,
		Formats:      []render.Format{format},
		Style:        cfg.Style(),
		PNGScale:     cfg.PNGScale,
		PNGConverter: cfg.PNGConverter,
	})
	if err != nil {
		writeError(w, err)
		return
	}

	w.Header().Set("Content-Type", format.ContentType())
	w.Header().Set(headerSkipped, strconv.Itoa(result.Stats.Skipped))
	w.Write(result.Artifacts[format])
}

// readDiagram returns the posted document and its syntax. Multipart uploads
// take the syntax from the file name; raw bodies from the Content-Type.
func (s *server) readDiagram(r *http.Request) ([]byte, diagram.Syntax, error) {
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))

	if mediaType == "multipart/form-data" {
		if err := r.ParseMultipartForm(s.cfg.Serve.MaxBodyBytes); err != nil {
			return nil, "", bodyError(err)
		}
		f, header, err := r.FormFile(uploadField)
		if err != nil {
			return nil, "", errs.Wrap(errs.ErrCodeInvalidInput, err, "multipart field %q", uploadField)
		}
		defer f.Close()
		if err := errs.ValidateUploadName(header.Filename); err != nil {
			return nil, "", err
		}
		data, err := io.ReadAll(f)
		if err != nil {
			return nil, "", bodyError(err)
		}
		return data, diagram.SyntaxFor(header.Filename), nil
	}

	data, err := io.ReadAll(r.Body)
	if err != nil {
		return nil, "", bodyError(err)
	}
	syntax := diagram.SyntaxJSON
	if strings.Contains(mediaType, "yaml") {
		syntax = diagram.SyntaxYAML
	}
	return data, syntax, nil
}

// errBodyTooLarge marks bodies cut off by the request size limit.
var errBodyTooLarge = errors.New("request body too large")

func bodyError(err error) error {
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		return errs.Wrap(errs.ErrCodeInvalidInput, errBodyTooLarge, "limit is %d bytes", tooLarge.Limit)
	}
	return errs.Wrap(errs.ErrCodeInvalidInput, err, "read request body")
}

type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

func writeError(w http.ResponseWriter, err error) {
	status := errs.HTTPStatus(err)
	if errors.Is(err, errBodyTooLarge) {
		status = http.StatusRequestEntityTooLarge
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(errorResponse{Error: errs.UserMessage(err), Code: string(errs.GetCode(err))})
}
