package provision

import (
	"context"

	"github.com/blackwell-systems/harness-provisioner/internal/harness"
)

// GroupRef is a group referenced by name, resolved to its remote id.
type GroupRef struct {
	Name    string
	ID      string
	Created bool
}

// Member is a user enrolled in a group.
type Member struct {
	Name string
	ID   string
}

// GroupRequest asks for a new group with optional members named by user name.
type GroupRequest struct {
	Name    string
	Members []string
}

// GroupResult is the outcome of CreateGroup. Skipped lists requested member
// names that did not resolve to a user.
type GroupResult struct {
	Name     string
	ID       string
	Existed  bool
	Enrolled []Member
	Skipped  []string
}

// EnsureGroups resolves every group name, creating the ones that do not exist
// yet with no initial members. Refs come back in input order. On error the
// refs processed so far are returned with it; groups already created stay.
func (p *Provisioner) EnsureGroups(ctx context.Context, names []string) ([]GroupRef, error) {
	var pre []harness.Lookup
	var preErrs []error
	if p.opts.ParallelLookups {
		pre, preErrs = p.lookupAll(ctx, harness.KindUserGroup, names)
	}

	known := make(map[string]GroupRef, len(names))
	refs := make([]GroupRef, 0, len(names))
	for i, name := range names {
		if ref, ok := known[name]; ok {
			refs = append(refs, GroupRef{Name: name, ID: ref.ID})
			continue
		}

		var lookup harness.Lookup
		var err error
		if pre != nil {
			lookup, err = pre[i], preErrs[i]
		} else {
			lookup, err = p.api.Resolve(ctx, harness.KindUserGroup, name)
		}
		if err != nil {
			return refs, err
		}

		ref := GroupRef{Name: name, ID: lookup.ID}
		if !lookup.Found {
			id, err := p.api.CreateUserGroup(ctx, harness.CreateUserGroupInput{Name: name})
			if err != nil {
				return refs, err
			}
			ref.ID = id
			ref.Created = true
			p.logger.Info("user group created", "group", name, "id", id)
		} else {
			p.logger.Debug("user group exists", "group", name, "id", ref.ID)
		}

		known[name] = ref
		refs = append(refs, ref)
	}
	return refs, nil
}

// CreateGroup creates a group and enrolls the members that resolve. Member
// names that do not exist are skipped, not treated as failures. A lookup
// that fails outright aborts before the group is created.
func (p *Provisioner) CreateGroup(ctx context.Context, req GroupRequest) (*GroupResult, error) {
	result := &GroupResult{Name: req.Name}

	var pre []harness.Lookup
	var preErrs []error
	if p.opts.ParallelLookups {
		pre, preErrs = p.lookupAll(ctx, harness.KindUser, req.Members)
	}

	seen := make(map[string]bool, len(req.Members))
	var userIDs []string
	for i, name := range req.Members {
		if seen[name] {
			continue
		}
		seen[name] = true

		var lookup harness.Lookup
		var err error
		if pre != nil {
			lookup, err = pre[i], preErrs[i]
		} else {
			lookup, err = p.api.Resolve(ctx, harness.KindUser, name)
		}
		if err != nil {
			return result, err
		}

		if !lookup.Found {
			p.logger.Warn("member skipped: user does not exist", "group", req.Name, "user", name)
			result.Skipped = append(result.Skipped, name)
			continue
		}
		result.Enrolled = append(result.Enrolled, Member{Name: name, ID: lookup.ID})
		userIDs = append(userIDs, lookup.ID)
	}

	id, err := p.api.CreateUserGroup(ctx, harness.CreateUserGroupInput{
		Name:    req.Name,
		UserIDs: userIDs,
	})
	if err != nil {
		return result, err
	}
	result.ID = id
	p.logger.Info("user group created", "group", req.Name, "id", id, "members", len(userIDs), "skipped", len(result.Skipped))
	return result, nil
}

// ApplyGroup creates the group described by req unless a group with that
// name already exists, in which case the existing group is left untouched.
func (p *Provisioner) ApplyGroup(ctx context.Context, req GroupRequest) (*GroupResult, error) {
	lookup, err := p.api.Resolve(ctx, harness.KindUserGroup, req.Name)
	if err != nil {
		return &GroupResult{Name: req.Name}, err
	}
	if lookup.Found {
		p.logger.Debug("user group exists, members unchanged", "group", req.Name, "id", lookup.ID)
		return &GroupResult{Name: req.Name, ID: lookup.ID, Existed: true}, nil
	}
	return p.CreateGroup(ctx, req)
}
