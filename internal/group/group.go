// Package group fingerprints collected sites and buckets the rendered
// identifiers by owning declaration, member and parameter.
package group

import (
	"context"
	"fmt"
	"runtime"
	"sort"
	"sync"

	"github.com/praefixum/praefixum/internal/decl"
	"github.com/praefixum/praefixum/internal/fingerprint"
	"github.com/praefixum/praefixum/internal/idformat"
	"github.com/praefixum/praefixum/internal/site"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// DuplicatePolicy decides what happens when two distinct sites resolve to
// the same declaration, member and parameter.
type DuplicatePolicy string

const (
	// DuplicatesFail fails the run with a *DuplicateError.
	DuplicatesFail DuplicatePolicy = "error"
	// DuplicatesLastWins keeps the site that sorts last by path, line, column.
	DuplicatesLastWins DuplicatePolicy = "last-wins"
)

// ParseDuplicatePolicy parses a policy name; empty means DuplicatesFail.
func ParseDuplicatePolicy(value string) (DuplicatePolicy, error) {
	switch DuplicatePolicy(value) {
	case "", DuplicatesFail:
		return DuplicatesFail, nil
	case DuplicatesLastWins:
		return DuplicatesLastWins, nil
	default:
		return "", fmt.Errorf("unknown duplicate policy %q (supported: error, last-wins)", value)
	}
}

// Options configures Group.
type Options struct {
	// Workers bounds concurrent fingerprinting; <= 0 means GOMAXPROCS.
	Workers    int
	Duplicates DuplicatePolicy
	Logger     *zap.Logger
}

// Entry is the identifier rendered for one parameter.
type Entry struct {
	Value string    `json:"value"`
	Site  site.Site `json:"site"`
}

// Bucket holds the identifiers of one owning declaration.
type Bucket struct {
	Declaration decl.Declaration
	// Members maps member name -> parameter name -> entry.
	Members map[string]map[string]Entry
}

func newBucket(d decl.Declaration) *Bucket {
	return &Bucket{Declaration: d, Members: make(map[string]map[string]Entry)}
}

// Binding is one constant the bucket will produce.
type Binding struct {
	Member    string
	Parameter string
	Entry
}

// Name is the constant name of the binding.
func (b Binding) Name() string {
	return b.Member + "_" + b.Parameter + "_Id"
}

// Bindings lists the bucket's constants ordered by member then parameter.
func (b *Bucket) Bindings() []Binding {
	members := make([]string, 0, len(b.Members))
	for member := range b.Members {
		members = append(members, member)
	}
	sort.Strings(members)

	var out []Binding
	for _, member := range members {
		params := b.Members[member]
		names := make([]string, 0, len(params))
		for name := range params {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			out = append(out, Binding{Member: member, Parameter: name, Entry: params[name]})
		}
	}
	return out
}

// Len is the number of bindings in the bucket.
func (b *Bucket) Len() int {
	n := 0
	for _, params := range b.Members {
		n += len(params)
	}
	return n
}

// Result maps declaration keys to their buckets.
type Result struct {
	buckets map[decl.Key]*Bucket
}

// Keys returns the declaration keys in sorted order.
func (r *Result) Keys() []decl.Key {
	keys := make([]decl.Key, 0, len(r.buckets))
	for key := range r.buckets {
		keys = append(keys, key)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	return keys
}

// Bucket returns the bucket for key.
func (r *Result) Bucket(key decl.Key) (*Bucket, bool) {
	b, ok := r.buckets[key]
	return b, ok
}

// Len is the number of declarations.
func (r *Result) Len() int {
	return len(r.buckets)
}

// Identifier fingerprints c and renders it in f.
func Identifier(c fingerprint.Coordinates, f idformat.Format) string {
	digest := fingerprint.Sum(c)
	return idformat.Render(digest.Bytes(), f)
}

// siteLess orders sites by coordinates, then format, so the surviving site
// of a duplicate does not depend on insertion order.
func siteLess(a, b site.Site) bool {
	if a.Coordinates != b.Coordinates {
		return a.Coordinates.Less(b.Coordinates)
	}
	return a.Format < b.Format
}

// Group renders every site and buckets the results. Sites are processed in
// parallel; insertion into the shared map is serialized.
func Group(ctx context.Context, sites []site.Site, opts Options) (*Result, error) {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	policy, err := ParseDuplicatePolicy(string(opts.Duplicates))
	if err != nil {
		return nil, err
	}
	workers := opts.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	var (
		mu      sync.Mutex
		buckets = make(map[decl.Key]*Bucket)
	)
	insert := func(s site.Site, value string) error {
		mu.Lock()
		defer mu.Unlock()

		b, ok := buckets[s.Key]
		if !ok {
			b = newBucket(s.Declaration)
			buckets[s.Key] = b
		} else {
			b.Declaration = b.Declaration.Merge(s.Declaration)
		}
		params, ok := b.Members[s.Member]
		if !ok {
			params = make(map[string]Entry)
			b.Members[s.Member] = params
		}

		entry := Entry{Value: value, Site: s}
		prev, exists := params[s.Parameter]
		if !exists {
			params[s.Parameter] = entry
			return nil
		}
		if prev.Site.Coordinates == s.Coordinates && prev.Site.Format == s.Format {
			return nil
		}
		if policy == DuplicatesFail {
			first, second := prev.Site, s
			if siteLess(second, first) {
				first, second = second, first
			}
			return &DuplicateError{Key: s.Key, Member: s.Member, Parameter: s.Parameter, First: first, Second: second}
		}
		if siteLess(prev.Site, s) {
			logger.Debug("duplicate parameter site replaced",
				zap.String("declaration", string(s.Key)),
				zap.String("constant", s.ConstantName()),
				zap.Stringer("previous", prev.Site.Coordinates),
				zap.Stringer("current", s.Coordinates))
			params[s.Parameter] = entry
		}
		return nil
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for _, s := range sites {
		s := s
		if err := gctx.Err(); err != nil {
			break
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			return insert(s, Identifier(s.Coordinates, s.Format))
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	logger.Debug("grouped annotation sites",
		zap.Int("sites", len(sites)),
		zap.Int("declarations", len(buckets)))
	return &Result{buckets: buckets}, nil
}
