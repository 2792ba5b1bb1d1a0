// Package provision sequences name lookups and create mutations to carry out
// the provisioning commands.
//
// Groups referenced by a user are resolved or created before the user is
// created. Group members are enrolled best effort: names that do not resolve
// are skipped and reported. Secrets are created one by one under a secret
// manager that must already exist, and every secret gets its own outcome.
//
// Nothing is rolled back. A failure part way through a list leaves the
// objects created before it in place.
package provision

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/blackwell-systems/harness-provisioner/internal/harness"
)

// maxParallelLookups bounds concurrent lookups when ParallelLookups is set.
const maxParallelLookups = 4

// API is the remote surface the provisioner drives. *harness.Client
// implements it.
type API interface {
	Resolve(ctx context.Context, kind harness.Kind, name string) (harness.Lookup, error)
	CreateUser(ctx context.Context, in harness.CreateUserInput) (string, error)
	CreateUserGroup(ctx context.Context, in harness.CreateUserGroupInput) (string, error)
	CreateSecret(ctx context.Context, in harness.EncryptedTextInput) (string, error)
}

// Options tune a Provisioner.
type Options struct {
	// ParallelLookups resolves independent names concurrently. Creation
	// still happens one object at a time in input order.
	ParallelLookups bool
	Logger          *slog.Logger
}

// Provisioner runs provisioning workflows against an API.
type Provisioner struct {
	api    API
	opts   Options
	logger *slog.Logger
}

// New creates a Provisioner.
func New(api API, opts Options) *Provisioner {
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Provisioner{api: api, opts: opts, logger: logger}
}

// NotFoundError reports a required object that does not exist remotely.
type NotFoundError struct {
	Kind harness.Kind
	Name string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %q does not exist", e.Kind, e.Name)
}

// lookupAll resolves every distinct name in names. The returned slices are
// indexed like names. Lookup failures are recorded per name; the caller
// decides when to stop.
func (p *Provisioner) lookupAll(ctx context.Context, kind harness.Kind, names []string) ([]harness.Lookup, []error) {
	results := make([]harness.Lookup, len(names))
	errs := make([]error, len(names))

	first := make(map[string]int, len(names))
	var unique []int
	for i, name := range names {
		if _, seen := first[name]; !seen {
			first[name] = i
			unique = append(unique, i)
		}
	}

	if p.opts.ParallelLookups && len(unique) > 1 {
		var g errgroup.Group
		g.SetLimit(maxParallelLookups)
		for _, i := range unique {
			i := i
			g.Go(func() error {
				results[i], errs[i] = p.api.Resolve(ctx, kind, names[i])
				return nil
			})
		}
		_ = g.Wait()
	} else {
		for _, i := range unique {
			results[i], errs[i] = p.api.Resolve(ctx, kind, names[i])
		}
	}

	for i, name := range names {
		if j := first[name]; j != i {
			results[i], errs[i] = results[j], errs[j]
		}
	}
	return results, errs
}
