package entityroute

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"regexp"
	"sort"
	"strings"
	"sync"
)

var (
	ErrDuplicateSegment = errors.New("segment already registered")
	ErrInvalidSegment   = errors.New("invalid segment")
	ErrUnknownSegment   = errors.New("unknown segment")
)

var segmentRX = regexp.MustCompile(`^[a-z][a-z0-9-]*$`)

// Loader builds a feature handler. It is called at most once, on first use.
type Loader func() (http.Handler, error)

type entry struct {
	load    Loader
	once    sync.Once
	handler http.Handler
	err     error
}

// Registry maps the first path segment below prefix to a lazily built feature handler.
type Registry struct {
	prefix string
	logger *slog.Logger

	mu      sync.RWMutex
	entries map[string]*entry
}

// New returns a registry for paths under prefix, e.g. "/entities".
func New(prefix string, logger *slog.Logger) *Registry {
	return &Registry{
		prefix:  "/" + strings.Trim(prefix, "/"),
		logger:  logger,
		entries: make(map[string]*entry),
	}
}

func (reg *Registry) Register(segment string, load Loader) error {
	if !segmentRX.MatchString(segment) {
		return fmt.Errorf("%w: %q", ErrInvalidSegment, segment)
	}
	if load == nil {
		return fmt.Errorf("%w: %q has no loader", ErrInvalidSegment, segment)
	}

	reg.mu.Lock()
	defer reg.mu.Unlock()

	if _, ok := reg.entries[segment]; ok {
		return fmt.Errorf("%w: %q", ErrDuplicateSegment, segment)
	}
	reg.entries[segment] = &entry{load: load}

	return nil
}

// Resolve returns the handler of segment, loading it on first use. A failed load is
// remembered and returned on every later call.
func (reg *Registry) Resolve(segment string) (http.Handler, error) {
	reg.mu.RLock()
	e, ok := reg.entries[segment]
	reg.mu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownSegment, segment)
	}

	e.once.Do(func() {
		e.handler, e.err = e.load()
		if e.err == nil && e.handler == nil {
			e.err = fmt.Errorf("loader for %q returned no handler", segment)
		}
	})

	return e.handler, e.err
}

// Path is the mount point of segment.
func (reg *Registry) Path(segment string) string {
	return reg.prefix + "/" + segment
}

func (reg *Registry) Segments() []string {
	reg.mu.RLock()
	defer reg.mu.RUnlock()

	segments := make([]string, 0, len(reg.entries))
	for s := range reg.entries {
		segments = append(segments, s)
	}
	sort.Strings(segments)

	return segments
}

// ServeHTTP dispatches to the feature named by the first segment below the prefix.
// The feature sees the remaining path, always starting with "/".
func (reg *Registry) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	rest, ok := strings.CutPrefix(r.URL.Path, reg.prefix)
	if !ok || (rest != "" && rest[0] != '/') {
		http.NotFound(w, r)
		return
	}

	rest = strings.TrimPrefix(rest, "/")
	segment, tail, _ := strings.Cut(rest, "/")

	h, err := reg.Resolve(segment)
	if err != nil {
		switch {
		case errors.Is(err, ErrUnknownSegment):
			http.NotFound(w, r)
		default:
			reg.logger.Error("could not load feature", slog.String("segment", segment), slog.String("error", err.Error()))
			http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		}
		return
	}

	r2 := new(http.Request)
	*r2 = *r
	r2.URL = new(url.URL)
	*r2.URL = *r.URL
	r2.URL.Path = "/" + tail
	r2.URL.RawPath = ""

	h.ServeHTTP(w, r2)
}
